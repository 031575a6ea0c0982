package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/logger"
)

func productRouter(mw ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(mw...)
	r.Get("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"data":{}}`))
	})
	return r
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	var seen string
	h := RequestLogging(logger.NewWithWriter("storefront", "debug", &buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.CorrelationIDFromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/products/999", nil)
	req.Header.Set(HeaderCorrelationID, "corr-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "corr-42", seen)
	assert.Equal(t, "corr-42", rec.Header().Get(HeaderCorrelationID))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, float64(http.StatusNotFound), line["status"])
	assert.Equal(t, "corr-42", line["correlation_id"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(HeaderCorrelationID), 36, "generated uuid")
}

func TestAccessLevel(t *testing.T) {
	assert.Equal(t, "ERROR", accessLevel("/api/cart", 502).String())
	assert.Equal(t, "WARN", accessLevel("/api/cart", 400).String())
	assert.Equal(t, "DEBUG", accessLevel("/health/live", 200).String())
	assert.Equal(t, "DEBUG", accessLevel("/metrics", 200).String())
	assert.Equal(t, "INFO", accessLevel("/api/products", 200).String())
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewWithWriter("storefront", "info", &buf)
	h := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("cart loaded")
	}))

	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	ctx = ContextWithClaims(ctx, &Claims{UserID: "u-7", Role: "customer"})
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))

	out := buf.String()
	assert.Contains(t, out, `"correlation_id":"corr-1"`)
	assert.Contains(t, out, `"user_id":"u-7"`)
}

func TestPrometheusMetrics(t *testing.T) {
	r := productRouter(PrometheusMetrics("metrics-test"))

	for _, id := range []string{"1", "2", "boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	route := "/api/products/{id}"
	assert.Equal(t, 2.0, testutil.ToFloat64(requestsTotal.WithLabelValues("metrics-test", "GET", route, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(requestsTotal.WithLabelValues("metrics-test", "GET", route, "500")))
	assert.Equal(t, 1.0, testutil.ToFloat64(requestsTotal.WithLabelValues("metrics-test", "GET", unmatchedRoute, "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(requestsInFlight.WithLabelValues("metrics-test")))
}

func TestTracing(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	r := productRouter(Tracing("storefront"))

	req := httptest.NewRequest(http.MethodGet, "/api/products/boom", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	span := ended[0]
	assert.Equal(t, "GET /api/products/{id}", span.Name())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", span.SpanContext().TraceID().String())
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("traceparent"), "00-4bf92f3577b34da6a3ce929d0e0e4736-"))
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name       string
		cfg        CORSConfig
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{"wildcard", DefaultCORSConfig(), http.MethodGet, "http://localhost:3000", http.StatusOK, "*"},
		{"listed origin", CORSConfig{AllowedOrigins: []string{"https://tienda.cl"}}, http.MethodGet, "https://tienda.cl", http.StatusOK, "https://tienda.cl"},
		{"unlisted origin", CORSConfig{AllowedOrigins: []string{"https://tienda.cl"}}, http.MethodGet, "https://evil.example", http.StatusOK, ""},
		{"credentials echo origin", CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}, http.MethodGet, "http://localhost:3000", http.StatusOK, "http://localhost:3000"},
		{"preflight", DefaultCORSConfig(), http.MethodOptions, "http://localhost:3000", http.StatusNoContent, "*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/cart", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			CORS(tt.cfg)(ok).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
			assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
		})
	}
}

func TestCacheControl(t *testing.T) {
	ok := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	rec := httptest.NewRecorder()
	CacheControl(60)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	CacheControl(60)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products", nil))
	assert.Empty(t, rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	CacheControl(0)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestRegisterPprof(t *testing.T) {
	r := chi.NewRouter()
	RegisterPprof(r, []string{"127.0.0.0/8", "not-a-cidr"}, logger.Discard())

	tests := []struct {
		remote string
		path   string
		status int
	}{
		{"127.0.0.1:5000", "/debug/pprof/", http.StatusOK},
		{"127.0.0.1:5000", "/debug/pprof/heap?debug=1", http.StatusOK},
		{"10.1.2.3:5000", "/debug/pprof/", http.StatusForbidden},
		{"garbage", "/debug/pprof/", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.remote+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.RemoteAddr = tt.remote
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusForbidden {
				assert.JSONEq(t, `{"error":{"code":"FORBIDDEN","message":"Acceso restringido"}}`, rec.Body.String())
			}
		})
	}
}

func TestStatusRecorderShared(t *testing.T) {
	rec := recordStatus(httptest.NewRecorder())
	assert.Same(t, rec, recordStatus(rec))
	assert.Equal(t, http.StatusOK, rec.Status())
	rec.WriteHeader(http.StatusCreated)
	rec.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusCreated, rec.Status())
}
