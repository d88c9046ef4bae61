// Package metrics defines the custom Prometheus metrics of the marketplace API.
// HTTP request metrics come from the echoprometheus middleware; everything
// here counts domain outcomes.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Accounts ─────────────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "created", "duplicate", "weak_password", "invalid" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts token requests.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// VerificationMailsTotal counts verification mail deliveries.
// Label:
//   - result: "sent" or "failed"
var VerificationMailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verification_mails_total",
		Help:      "Total number of verification emails handed to the mail sender, by result.",
	},
	[]string{"result"},
)

// ── Marketplace ──────────────────────────────────────────────────────────────

// FavouritesAddedTotal counts favourites added.
// Label:
//   - kind: "listing" or "job_listing"
var FavouritesAddedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "favourites_added_total",
		Help:      "Total number of favourites added, by kind.",
	},
	[]string{"kind"},
)

// ListingsCreatedTotal counts listings created.
// Label:
//   - kind: "listing" or "job_listing"
var ListingsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_created_total",
		Help:      "Total number of listings created, by kind.",
	},
	[]string{"kind"},
)

// MessagesPostedTotal counts chat messages posted.
var MessagesPostedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_messages_posted_total",
		Help:      "Total number of chat messages posted.",
	},
)

var queueDepthOnce sync.Once

// RegisterMailQueueDepth exposes the number of mails waiting in the dispatcher.
// Only the first call registers the gauge.
func RegisterMailQueueDepth(depth func() int) {
	queueDepthOnce.Do(func() {
		promauto.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "mail_queue_depth",
				Help:      "Current number of emails pending in the mail dispatcher.",
			},
			func() float64 { return float64(depth()) },
		)
	})
}
