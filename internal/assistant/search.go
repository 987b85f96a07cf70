package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teemow/cassandra/internal/logging"
)

const (
	// DefaultConcurrency bounds the number of sub-searches in flight.
	DefaultConcurrency = 4

	// subsearchMaxResults is the page size of every sub-search.
	subsearchMaxResults = 50

	// nameSearchMaxWords is the longest query still expanded into name variants.
	nameSearchMaxWords = 3

	orderByStartTime = "startTime"
)

// QueryKind is how the searcher interpreted a query.
type QueryKind int

const (
	// QueryPhrase is a longer natural-language query, searched verbatim.
	QueryPhrase QueryKind = iota
	// QueryName is a short query expanded into name variants.
	QueryName
	// QueryCurrentMoment asks about the present; searched by time window only.
	QueryCurrentMoment
)

func (k QueryKind) String() string {
	switch k {
	case QueryName:
		return "name"
	case QueryCurrentMoment:
		return "current_moment"
	default:
		return "phrase"
	}
}

// Sub-search outcomes reported to the Recorder.
const (
	SubsearchSuccess = "success"
	SubsearchError   = "error"
)

// Recorder receives search and creation measurements.
type Recorder interface {
	RecordSubsearch(ctx context.Context, calendarID, status string)
	RecordSearchResults(ctx context.Context, kind string, events int)
	RecordEventCreation(ctx context.Context, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordSubsearch(context.Context, string, string)  {}
func (nopRecorder) RecordSearchResults(context.Context, string, int) {}
func (nopRecorder) RecordEventCreation(context.Context, string)      {}

// SearchRequest is a single search invocation.
type SearchRequest struct {
	Query       string
	Now         time.Time
	CalendarIDs []string
	// Strategy selects the window policy. Nil means PreciseCalendarWindow.
	Strategy WindowStrategy
}

// SearchError records one failed sub-search.
type SearchError struct {
	CalendarID string
	Variant    string
	Message    string
}

// SearchResult is the merged outcome of a search. Events are deduplicated by ID
// and sorted by start; Errors keeps one entry per failed sub-search.
type SearchResult struct {
	Query    string
	Kind     QueryKind
	Window   TimeWindow
	Variants []string
	Events   []Event
	Errors   []SearchError
}

// SingleWord reports whether the query was a single word.
func (r SearchResult) SingleWord() bool {
	return r.Query != "" && len(strings.Fields(r.Query)) == 1
}

// Searcher fans a query out over calendars and name variants.
type Searcher struct {
	backend Backend
	options
}

// NewSearcher creates a Searcher over the given backend.
func NewSearcher(backend Backend, opts ...Option) *Searcher {
	return &Searcher{backend: backend, options: newOptions(opts)}
}

// ClassifyQuery decides how a query is searched.
func ClassifyQuery(query string) QueryKind {
	if IsCurrentMomentQuery(query) {
		return QueryCurrentMoment
	}
	if wordCount(query) <= nameSearchMaxWords {
		return QueryName
	}
	return QueryPhrase
}

// variantsFor returns the text filters to search for a query of the given kind.
func variantsFor(query string, kind QueryKind) []string {
	switch kind {
	case QueryCurrentMoment:
		return []string{""}
	case QueryName:
		return NameVariations(query)
	default:
		return []string{query}
	}
}

// Search runs every (calendar, variant) sub-search and merges the results.
// Backend failures are collected in SearchResult.Errors; Search itself never fails.
func (s *Searcher) Search(ctx context.Context, req SearchRequest) SearchResult {
	query := strings.TrimSpace(req.Query)
	now := req.Now
	if now.IsZero() {
		now = s.clock()
	}
	strategy := req.Strategy
	if strategy == nil {
		strategy = PreciseCalendarWindow
	}

	kind := ClassifyQuery(query)
	result := SearchResult{
		Query:    query,
		Kind:     kind,
		Window:   strategy.Resolve(query, now),
		Variants: variantsFor(query, kind),
	}
	calendars := normalizeCalendarIDs(req.CalendarIDs)

	logger := s.logger.With(logging.Operation("calendar.search"), logging.Query(query))
	logger.Debug("searching calendars",
		"kind", kind.String(),
		"strategy", strategy.Name(),
		"calendars", len(calendars),
		"variants", len(result.Variants))

	type slot struct {
		events []Event
		err    *SearchError
	}
	slots := make([]slot, len(calendars)*len(result.Variants))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for ci, calendarID := range calendars {
		for vi, variant := range result.Variants {
			idx := ci*len(result.Variants) + vi
			g.Go(func() error {
				events, err := s.subsearch(ctx, calendarID, variant, result.Window)
				if err != nil {
					logger.Warn("sub-search failed", logging.Calendar(calendarID), logging.Err(err))
					s.recorder.RecordSubsearch(ctx, calendarID, SubsearchError)
					slots[idx].err = &SearchError{
						CalendarID: calendarID,
						Variant:    variant,
						Message:    fmt.Sprintf("Error searching calendar %s: %v", calendarID, err),
					}
					return nil
				}
				s.recorder.RecordSubsearch(ctx, calendarID, SubsearchSuccess)
				slots[idx].events = events
				return nil
			})
		}
	}
	_ = g.Wait()

	var merged []Event
	for _, sl := range slots {
		if sl.err != nil {
			result.Errors = append(result.Errors, *sl.err)
			continue
		}
		merged = append(merged, sl.events...)
	}
	result.Events = SortByStart(Dedupe(merged), now.Location())

	s.recorder.RecordSearchResults(ctx, kind.String(), len(result.Events))
	logger.Info("search completed",
		"events", len(result.Events),
		"errors", len(result.Errors))
	return result
}

// subsearch issues one backend call. A failed sub-search never cancels its siblings.
func (s *Searcher) subsearch(ctx context.Context, calendarID, variant string, w TimeWindow) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.backend.ListEvents(ctx, ListEventsRequest{
		CalendarID:   calendarID,
		TimeMin:      w.TimeMin,
		TimeMax:      w.TimeMax,
		Query:        variant,
		SingleEvents: true,
		OrderBy:      orderByStartTime,
		MaxResults:   subsearchMaxResults,
	})
}

// normalizeCalendarIDs trims and de-duplicates calendar IDs, defaulting to the primary calendar.
func normalizeCalendarIDs(ids []string) []string {
	set := newOrderedSet()
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			set.add(id)
		}
	}
	if len(set.values()) == 0 {
		return []string{DefaultCalendarID}
	}
	return set.values()
}

// Dedupe keeps the first occurrence of every event ID. Events without an ID are
// always kept.
func Dedupe(events []Event) []Event {
	seen := make(map[string]struct{}, len(events))
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.ID != "" {
			if _, ok := seen[e.ID]; ok {
				continue
			}
			seen[e.ID] = struct{}{}
		}
		out = append(out, e)
	}
	return out
}

// SortByStart orders events by their effective start instant, in place. All-day
// events start at midnight in loc. Events with an unreadable start sort last and
// ties keep their input order.
func SortByStart(events []Event, loc *time.Location) []Event {
	type keyed struct {
		event Event
		at    time.Time
		ok    bool
	}
	ks := make([]keyed, len(events))
	for i, e := range events {
		at, ok := e.Start.Instant(loc)
		ks[i] = keyed{event: e, at: at, ok: ok}
	}
	sort.SliceStable(ks, func(a, b int) bool {
		if ks[a].ok != ks[b].ok {
			return ks[a].ok
		}
		return ks[a].at.Before(ks[b].at)
	})
	for i, k := range ks {
		events[i] = k.event
	}
	return events
}
