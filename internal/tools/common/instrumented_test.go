package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/cassandra/internal/google"
	"github.com/teemow/cassandra/internal/instrumentation"
	"github.com/teemow/cassandra/internal/server"
)

type instrumentedFixture struct {
	sc     *server.ServerContext
	reader *sdkmetric.ManualReader
	audit  *bytes.Buffer
}

func newInstrumentedFixture(t *testing.T) *instrumentedFixture {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := instrumentation.NewMetrics(mp.Meter("test"), false)
	require.NoError(t, err)

	var buf bytes.Buffer
	audit := instrumentation.NewAuditLogger(
		slog.New(slog.NewJSONHandler(&buf, nil)),
		instrumentation.AuditLoggingConfig{Enabled: true},
	)

	sc, err := server.NewServerContext(context.Background(), server.Config{
		TokenProvider: google.NewFileTokenProviderInDir(t.TempDir()),
		Metrics:       metrics,
		AuditLogger:   audit,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	return &instrumentedFixture{sc: sc, reader: reader, audit: &buf}
}

// invocations maps the status label of mcp_tool_invocations_total to its count.
func (f *instrumentedFixture) invocations(t *testing.T) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, f.reader.Collect(context.Background(), &rm))

	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "mcp_tool_invocations_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(attribute.Key("status"))
				out[v.AsString()] += dp.Value
			}
		}
	}
	return out
}

func (f *instrumentedFixture) auditRecord(t *testing.T) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal(f.audit.Bytes(), &rec))
	return rec
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestInstrumentedToolHandler_Success(t *testing.T) {
	f := newInstrumentedFixture(t)

	called := false
	wrapped := InstrumentedToolHandler("test_tool", f.sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		SetOutcome(ctx, "created")
		return mcp.NewToolResultText("success"), nil
	})

	result, err := wrapped(context.Background(), callRequest(map[string]any{"account": "work"}))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, called)

	assert.Equal(t, map[string]int64{instrumentation.StatusSuccess: 1}, f.invocations(t))

	rec := f.auditRecord(t)
	assert.Equal(t, "tool_executed", rec["msg"])
	assert.Equal(t, "test_tool", rec["tool"])
	assert.Equal(t, "created", rec["outcome"])
	assert.NotContains(t, f.audit.String(), `"work"`)
}

func TestInstrumentedToolHandler_ErrorResult(t *testing.T) {
	f := newInstrumentedFixture(t)

	wrapped := InstrumentedToolHandler("test_tool", f.sc, func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("query is required"), nil
	})

	result, err := wrapped(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	assert.Equal(t, map[string]int64{instrumentation.StatusError: 1}, f.invocations(t))
	rec := f.auditRecord(t)
	assert.Equal(t, "tool_failed", rec["msg"])
	assert.Equal(t, "query is required", rec["error"])
}

func TestInstrumentedToolHandler_Error(t *testing.T) {
	f := newInstrumentedFixture(t)
	boom := errors.New("boom")

	wrapped := InstrumentedToolHandler("test_tool", f.sc, func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, boom
	})

	result, err := wrapped(context.Background(), callRequest(nil))
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, result)
	assert.Equal(t, map[string]int64{instrumentation.StatusError: 1}, f.invocations(t))
}

func TestInstrumentedToolHandler_WithoutInstrumentation(t *testing.T) {
	sc, err := server.NewServerContext(context.Background(), server.Config{
		TokenProvider: google.NewFileTokenProviderInDir(t.TempDir()),
	})
	require.NoError(t, err)
	defer sc.Shutdown()

	wrapped := InstrumentedToolHandler("test_tool", sc, func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	})

	result, err := wrapped(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
}

func TestSetOutcome_OutsideHandler(t *testing.T) {
	assert.NotPanics(t, func() { SetOutcome(context.Background(), "created") })
}
