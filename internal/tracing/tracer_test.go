package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.False(t, cfg.Enabled)
	require.Equal(t, "file", cfg.Exporter)
	require.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, "glboard", cfg.ServiceName)
}

func TestNewProvider_DisabledIsNoop(t *testing.T) {
	provider, err := NewProvider(Config{})
	require.NoError(t, err)
	require.False(t, provider.Enabled())

	_, span := provider.Tracer().Start(context.Background(), "noop")
	require.False(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_FileExporterWritesSpans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "traces.jsonl")

	provider, err := NewProvider(Config{Enabled: true, Exporter: "file", FilePath: path, SampleRate: 1})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	ctx, span := Start(context.Background(), provider.Tracer(), SpanCommit, trace.SpanKindInternal,
		attribute.Int(AttrIssueIID, 5),
		attribute.String(AttrToColumn, "doing"),
	)
	require.True(t, span.SpanContext().IsValid())
	_, child := Start(ctx, provider.Tracer(), SpanGitLabRequest, trace.SpanKindClient)
	End(child, errors.New("HTTP 500: Internal Server Error"))
	End(span, nil)

	require.NoError(t, provider.Shutdown(context.Background()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []SpanRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.Len(t, records, 2)

	byName := map[string]SpanRecord{}
	for _, r := range records {
		byName[r.Name] = r
	}
	require.Equal(t, "ERROR", byName[SpanGitLabRequest].Status)
	require.Equal(t, "CLIENT", byName[SpanGitLabRequest].Kind)
	require.Equal(t, byName[SpanCommit].SpanID, byName[SpanGitLabRequest].ParentSpanID)
	require.Equal(t, "OK", byName[SpanCommit].Status)
	require.Equal(t, "doing", byName[SpanCommit].Attributes[AttrToColumn])
}

func TestNewProvider_Errors(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: "file"})
	require.ErrorContains(t, err, "file_path required")

	_, err = NewProvider(Config{Enabled: true, Exporter: "zipkin"})
	require.ErrorContains(t, err, "unsupported exporter type")
}

func TestStart_NilTracer(t *testing.T) {
	ctx, span := Start(context.Background(), nil, SpanCommit, trace.SpanKindInternal)
	require.NotNil(t, ctx)
	End(span, nil)
}

func TestStart_NilTracerLeavesParentSpanAlone(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ctx, parent := tp.Tracer("test").Start(context.Background(), SpanCommit)

	_, span := Start(ctx, nil, SpanGitLabRequest, trace.SpanKindClient)
	End(span, errors.New("HTTP 500: Internal Server Error"))

	require.True(t, parent.IsRecording(), "parent still open")
	require.Empty(t, recorder.Ended())

	parent.End()
	ended := recorder.Ended()
	require.Len(t, ended, 1)
	require.Equal(t, codes.Unset, ended[0].Status().Code)
	require.Empty(t, ended[0].Events())
}

func TestFileExporter_RejectsAfterShutdown(t *testing.T) {
	exporter, err := NewFileExporter(filepath.Join(t.TempDir(), "t.jsonl"))
	require.NoError(t, err)
	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()))

	stub := tracetest.SpanStub{Name: "late", StartTime: time.Now(), EndTime: time.Now()}
	err = exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()})
	require.Error(t, err)
}

func TestRecordFromSpan(t *testing.T) {
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	stub := tracetest.SpanStub{
		Name:       "gitlab.request",
		SpanKind:   trace.SpanKindClient,
		StartTime:  start,
		EndTime:    start.Add(1500 * time.Microsecond),
		Attributes: []attribute.KeyValue{attribute.String(AttrHTTPMethod, "PUT")},
		Status:     sdktrace.Status{Code: codes.Error, Description: "HTTP 404: Not Found"},
		Events:     []sdktrace.Event{{Name: EventRollback, Time: start}},
	}

	rec := recordFromSpan(stub.Snapshot())
	require.Equal(t, "CLIENT", rec.Kind)
	require.Equal(t, 1.5, rec.DurationMs)
	require.Equal(t, "ERROR", rec.Status)
	require.Equal(t, "HTTP 404: Not Found", rec.StatusMsg)
	require.Equal(t, "PUT", rec.Attributes[AttrHTTPMethod])
	require.Len(t, rec.Events, 1)
	require.Equal(t, EventRollback, rec.Events[0].Name)
}
