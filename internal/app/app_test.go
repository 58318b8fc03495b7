package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

type noopTelemetry struct{}

func (noopTelemetry) TracerProvider() trace.TracerProvider { return tracenoop.NewTracerProvider() }
func (noopTelemetry) MeterProvider() metric.MeterProvider  { return metricnoop.NewMeterProvider() }

func newMemoryServer(t *testing.T) (http.Handler, func(bool)) {
	t.Helper()
	cfg := &Config{Storage: StorageMemory, ExportDir: t.TempDir()}
	st, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(st.Close)

	h, healthSvc, err := NewServer(zap.NewNop(), noopTelemetry{}, cfg, st)
	require.NoError(t, err)
	return h, healthSvc.SetReady
}

func TestNewServer_Health(t *testing.T) {
	h, setReady := newMemoryServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	setReady(true)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewServer_API(t *testing.T) {
	h, _ := newMemoryServer(t)

	r := httptest.NewRequest(http.MethodPost, "/api/products",
		strings.NewReader(`{"name":"Widget","price":"9.99","quantity":"10"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Widget","price":9.99,"quantity":10}]`, w.Body.String())
}

func TestOpenStore_Unknown(t *testing.T) {
	_, err := OpenStore(context.Background(), &Config{Storage: "sqlite"})
	require.Error(t, err)
}
