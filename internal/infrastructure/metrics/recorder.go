package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "entitlement"

// Recorder exports settlement, device and view decisions as Prometheus series.
type Recorder struct {
	settlements     *prometheus.CounterVec
	deviceDecisions *prometheus.CounterVec
	views           *prometheus.CounterVec
	gatewayCalls    *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
}

// NewRecorder registers its collectors on reg. Pass prometheus.NewRegistry() in tests.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		settlements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Settlement decisions by operation and outcome.",
		}, []string{"operation", "outcome"}),
		deviceDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "device_decisions_total",
			Help:      "Device session guard decisions.",
		}, []string{"path", "reason"}),
		views: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "views_total",
			Help:      "Tracked views, split by whether they were counted.",
		}, []string{"counted"}),
		gatewayCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_calls_total",
			Help:      "Payment gateway calls by operation and result.",
		}, []string{"operation", "result"}),
		gatewayDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_call_duration_seconds",
			Help:      "Payment gateway call latency.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
	}
}

func (r *Recorder) ObserveSettlement(operation, outcome string) {
	r.settlements.WithLabelValues(operation, outcome).Inc()
}

func (r *Recorder) ObserveDeviceDecision(path, reason string) {
	r.deviceDecisions.WithLabelValues(path, reason).Inc()
}

func (r *Recorder) ObserveView(counted bool) {
	label := "false"
	if counted {
		label = "true"
	}
	r.views.WithLabelValues(label).Inc()
}

func (r *Recorder) ObserveGatewayCall(operation string, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.gatewayCalls.WithLabelValues(operation, result).Inc()
	r.gatewayDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
