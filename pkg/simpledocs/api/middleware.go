package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/docsys/simple-docs/pkg/simpledocs"
)

type contextKey string

const authContextKey contextKey = "simpledocs.auth"

// Verifier returns the token-verification middleware for the given key.
// Verification is this boundary's job; the core resolver downstream only
// extracts claims.
func Verifier(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return jwtauth.Verifier(ja)
}

// Authenticator resolves the verified token's claims into a typed
// AuthContext and rejects requests that fail resolution. Replaces
// jwtauth's stock authenticator so failures carry the standard error
// body.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			writeError(w, r, simpledocs.NewError(simpledocs.KindUnauthorized, "missing or invalid token"))
			return
		}

		auth, err := simpledocs.ResolveAuthContext(claims)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), authContextKey, auth)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthFromContext returns the AuthContext stored by Authenticator.
func AuthFromContext(ctx context.Context) (simpledocs.AuthContext, error) {
	auth, ok := ctx.Value(authContextKey).(simpledocs.AuthContext)
	if !ok {
		return simpledocs.AuthContext{}, simpledocs.NewError(simpledocs.KindUnauthorized, "missing identity claims")
	}
	return auth, nil
}

// Request metrics.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "simpledocs_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "simpledocs_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// Metrics records request counts and latencies.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		requestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rec.status)).Inc()
		requestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}
