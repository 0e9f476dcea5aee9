package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/YelzhanWeb/dinehub/internal/domain"
)

// Recorder exports business counters on its own registry.
type Recorder struct {
	registry           *prometheus.Registry
	ordersPlaced       *prometheus.CounterVec
	orderValue         *prometheus.CounterVec
	statusChanges      *prometheus.CounterVec
	transitionRejected *prometheus.CounterVec
	cartMutations      *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dinehub",
			Name:      "orders_placed_total",
			Help:      "Orders created at checkout.",
		}, []string{"outlet"}),
		orderValue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dinehub",
			Name:      "order_value_inr_total",
			Help:      "Sum of order totals in rupees.",
		}, []string{"outlet"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dinehub",
			Name:      "order_status_changes_total",
			Help:      "Applied order lifecycle transitions.",
		}, []string{"from", "to"}),
		transitionRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dinehub",
			Name:      "order_transitions_rejected_total",
			Help:      "Rejected order lifecycle transitions.",
		}, []string{"from", "to", "stale"}),
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dinehub",
			Name:      "cart_mutations_total",
			Help:      "Successful cart operations.",
		}, []string{"op"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.ordersPlaced,
		r.orderValue,
		r.statusChanges,
		r.transitionRejected,
		r.cartMutations,
	)
	return r
}

func (r *Recorder) OrderPlaced(outletID string, total domain.Money) {
	r.ordersPlaced.WithLabelValues(outletID).Inc()
	f, _ := total.Decimal().Float64()
	r.orderValue.WithLabelValues(outletID).Add(f)
}

func (r *Recorder) StatusChanged(from, to domain.Status) {
	r.statusChanges.WithLabelValues(string(from), string(to)).Inc()
}

func (r *Recorder) TransitionRejected(from, to domain.Status, stale bool) {
	r.transitionRejected.WithLabelValues(string(from), string(to), strconv.FormatBool(stale)).Inc()
}

func (r *Recorder) CartMutated(op string) {
	r.cartMutations.WithLabelValues(op).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Nop discards everything.
type Nop struct{}

func (Nop) OrderPlaced(string, domain.Money)                      {}
func (Nop) StatusChanged(domain.Status, domain.Status)            {}
func (Nop) TransitionRejected(domain.Status, domain.Status, bool) {}
func (Nop) CartMutated(string)                                    {}
