package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics exposes the donation-core counters scraped at /metrics.
type BusinessMetrics struct {
	DonationsTotal     prometheus.Counter
	DonatedAmountTotal prometheus.Counter
	DonationFailures   *prometheus.CounterVec
	ProjectsCreated    prometheus.Counter
	ApplicationsTotal  *prometheus.CounterVec
	DustHeld           prometheus.Gauge
	DonateDuration     prometheus.Histogram
}

// Global metrics instance
var Business *BusinessMetrics

func InitBusinessMetrics() {
	Business = &BusinessMetrics{
		DonationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fund_donations_total",
			Help: "The total number of completed donations",
		}),
		DonatedAmountTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fund_donated_amount_total",
			Help: "The total amount donated, in base token units",
		}),
		DonationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fund_donation_failures_total",
			Help: "Failed donate calls by reason",
		}, []string{"reason"}),
		ProjectsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fund_projects_created_total",
			Help: "The total number of registered projects",
		}),
		ApplicationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fund_applications_total",
			Help: "Application workflow transitions by outcome",
		}, []string{"outcome"}),
		DustHeld: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fund_dust_held",
			Help: "Rounding dust currently held in allocator custody",
		}),
		DonateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fund_donate_duration_seconds",
			Help:    "Duration of donate calls",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
