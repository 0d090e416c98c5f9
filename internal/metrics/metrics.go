// Package metrics owns the Prometheus registry for HTTP traffic and the
// domain counters fed from published events.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"happi-app-go/internal/events"
)

const namespace = "happi"

type Registry struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	policiesPurchased    *prometheus.CounterVec
	policiesRenewed      prometheus.Counter
	membershipsPurchased *prometheus.CounterVec
	coinsAwarded         prometheus.Counter
	invitationsCreated   prometheus.Counter
}

func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),
		policiesPurchased: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policies_purchased_total",
			Help:      "Policies purchased, by insurance category.",
		}, []string{"category"}),
		policiesRenewed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policies_renewed_total",
			Help:      "Policies renewed.",
		}),
		membershipsPurchased: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memberships_purchased_total",
			Help:      "Membership plans purchased, by tier.",
		}, []string{"tier"}),
		coinsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "happicoins_awarded_total",
			Help:      "HappiCoins credited by purchases and renewals.",
		}),
		invitationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "family_invitations_created_total",
			Help:      "Family invitations sent.",
		}),
	}

	r.registry.MustRegister(
		r.httpInFlight,
		r.httpRequests,
		r.httpDuration,
		r.policiesPurchased,
		r.policiesRenewed,
		r.membershipsPurchased,
		r.coinsAwarded,
		r.invitationsCreated,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return r
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Middleware labels requests with the matched chi route pattern, so path
// parameters never become label values.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/metrics" {
			next.ServeHTTP(w, req)
			return
		}

		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		start := time.Now()

		r.httpInFlight.Inc()
		defer r.httpInFlight.Dec()

		next.ServeHTTP(ww, req)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(req)
		r.httpRequests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
		r.httpDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routePattern(req *http.Request) string {
	if rctx := chi.RouteContext(req.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// Publish implements events.Publisher.
func (r *Registry) Publish(_ context.Context, event events.Event) {
	switch payload := event.Payload.(type) {
	case events.PolicyPurchased:
		r.policiesPurchased.WithLabelValues(payload.Category).Inc()
		r.addCoins(payload.Coins)
	case events.PolicyRenewed:
		r.policiesRenewed.Inc()
		r.addCoins(payload.Coins)
	case events.MembershipPurchased:
		r.membershipsPurchased.WithLabelValues(payload.Tier).Inc()
		r.addCoins(payload.Coins)
	case events.InvitationCreated:
		r.invitationsCreated.Inc()
	}
}

func (r *Registry) addCoins(coins int64) {
	if coins > 0 {
		r.coinsAwarded.Add(float64(coins))
	}
}
