package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T, detailedLabels bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), detailedLabels)
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

// counterValues maps the value of one attribute key to the counter total.
func counterValues(t *testing.T, m metricdata.Metrics, key string) map[string]int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	out := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key(key))
		out[v.AsString()] += dp.Value
	}
	return out
}

func TestMetrics_RecordSubsearch(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordSubsearch(ctx, "primary", StatusSuccess)
	m.RecordSubsearch(ctx, "primary", StatusSuccess)
	m.RecordSubsearch(ctx, "team@group.calendar.google.com", StatusError)

	metrics := collect(t, reader)
	got := counterValues(t, metrics["calendar_subsearches_total"], attrStatus)
	assert.Equal(t, map[string]int64{StatusSuccess: 2, StatusError: 1}, got)

	// Calendar IDs stay out of the labels unless detailed labels are on.
	sum := metrics["calendar_subsearches_total"].Data.(metricdata.Sum[int64])
	for _, dp := range sum.DataPoints {
		_, ok := dp.Attributes.Value(attrCalendar)
		assert.False(t, ok)
	}
}

func TestMetrics_RecordSubsearch_DetailedLabels(t *testing.T) {
	m, reader := newTestMetrics(t, true)

	m.RecordSubsearch(context.Background(), "primary", StatusSuccess)

	got := counterValues(t, collect(t, reader)["calendar_subsearches_total"], attrCalendar)
	assert.Equal(t, map[string]int64{"primary": 1}, got)
}

func TestMetrics_RecordSearchResults(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordSearchResults(ctx, "name", 3)
	m.RecordSearchResults(ctx, "name", 0)

	hist, ok := collect(t, reader)["calendar_search_results"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, int64(3), hist.DataPoints[0].Sum)
}

func TestMetrics_RecordEventCreation(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordEventCreation(ctx, "created")
	m.RecordEventCreation(ctx, "created_with_attendee_failure")
	m.RecordEventCreation(ctx, "created")

	got := counterValues(t, collect(t, reader)["calendar_event_creations_total"], attrOutcome)
	assert.Equal(t, map[string]int64{"created": 2, "created_with_attendee_failure": 1}, got)
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	m, reader := newTestMetrics(t, false)

	m.RecordToolInvocation(context.Background(), "calendar_search_events", StatusSuccess, "work", 100*time.Millisecond)

	metrics := collect(t, reader)
	got := counterValues(t, metrics["mcp_tool_invocations_total"], attrTool)
	assert.Equal(t, map[string]int64{"calendar_search_events": 1}, got)
	assert.Equal(t, map[string]int64{"": 1}, counterValues(t, metrics["mcp_tool_invocations_total"], attrAccount))
}

func TestMetrics_RecordToolInvocation_DetailedLabels(t *testing.T) {
	m, reader := newTestMetrics(t, true)

	m.RecordToolInvocation(context.Background(), "calendar_create_event", StatusError, "work", time.Second)

	got := counterValues(t, collect(t, reader)["mcp_tool_invocations_total"], attrAccount)
	assert.Equal(t, map[string]int64{"work": 1}, got)
}

func TestMetrics_RecordGoogleAPIOperation(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationList, StatusSuccess, 200*time.Millisecond)
	m.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationQuickAdd, StatusError, 500*time.Millisecond)

	got := counterValues(t, collect(t, reader)["google_api_operations_total"], attrOperation)
	assert.Equal(t, map[string]int64{OperationList: 1, OperationQuickAdd: 1}, got)
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	m, reader := newTestMetrics(t, false)

	m.RecordHTTPRequest(context.Background(), "POST", "/mcp", 200, 10*time.Millisecond)

	got := counterValues(t, collect(t, reader)["http_requests_total"], attrStatus)
	assert.Equal(t, map[string]int64{"200": 1}, got)
}

func TestMetrics_NoOp(t *testing.T) {
	ctx := context.Background()

	for name, m := range map[string]*Metrics{"zero": {}, "nil": nil} {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				m.RecordHTTPRequest(ctx, "GET", "/mcp", 200, time.Millisecond)
				m.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationGet, StatusSuccess, time.Millisecond)
				m.RecordToolInvocation(ctx, "calendar_current_time", StatusSuccess, "", time.Millisecond)
				m.RecordSubsearch(ctx, "primary", StatusSuccess)
				m.RecordSearchResults(ctx, "phrase", 1)
				m.RecordEventCreation(ctx, "created")
			})
		})
	}
}
