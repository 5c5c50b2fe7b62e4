package observability

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestClassifyDBErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{&pgconn.PgError{Code: "23505"}, "unique_violation"},
		{fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}), "foreign_key_violation"},
		{&pgconn.PgError{Code: "42P01"}, "pg_42P01"},
		{context.DeadlineExceeded, "timeout"},
		{errors.New("connection reset by peer"), "connection"},
		{errors.New("weird"), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyDBErr(tt.err), tt.err.Error())
	}
}

func TestObserveDB(t *testing.T) {
	t.Parallel()

	p := NewProm(prometheus.NewRegistry())

	require.NoError(t, p.ObserveDB("users.get", func() error { return nil }))

	boom := &pgconn.PgError{Code: "23505"}
	assert.ErrorIs(t, p.ObserveDB("users.create", func() error { return boom }), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.create", "unique_violation")))
}

func TestPromHandlerExposesAuthResults(t *testing.T) {
	t.Parallel()

	p := NewProm(prometheus.NewRegistry())
	p.AuthResults.WithLabelValues("rejected").Inc()

	w := httptest.NewRecorder()
	p.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `courseapi_auth_results_total{result="rejected"} 1`)
}

func TestNewLogger_LevelByEnv(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	newLogger(&buf, "prod").Debug("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, "dev").Debug("shown", "k", "v")
	assert.True(t, strings.Contains(buf.String(), `"msg":"shown"`), buf.String())
}

func TestTraceHandler_AddsRequestAndTraceIDs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	log.InfoContext(ctx, "hello")

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`)
	assert.Contains(t, out, `"span_id":"00f067aa0ba902b7"`)

	buf.Reset()
	log.Info("plain")
	assert.NotContains(t, buf.String(), "request_id")
	assert.NotContains(t, buf.String(), "trace_id")
}

func TestRequestIDFromContext(t *testing.T) {
	t.Parallel()

	_, ok := RequestIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = RequestIDFromContext(WithRequestID(context.Background(), ""))
	assert.False(t, ok)

	id, ok := RequestIDFromContext(WithRequestID(context.Background(), "abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", id)
}
