// Package calendar implements assistant.Backend on top of the Google Calendar API.
//
// Every call is traced as google.calendar.<operation> and counted in the
// google_api_operations_total metric. Errors are wrapped with the operation that
// failed and keep the underlying *googleapi.Error reachable through errors.As,
// so the assistant can classify them.
//
// Example usage:
//
//	ts, err := google.TokenSource(ctx, conf, provider, "default")
//	if err != nil {
//	    return err
//	}
//	client, err := calendar.NewClient(ctx, "default", ts, calendar.WithMetrics(metrics))
//	if err != nil {
//	    return err
//	}
//	searcher := assistant.NewSearcher(client)
package calendar
