package evaluation

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Exporter publishes evaluation results as Prometheus metrics.
type Exporter struct {
	values  *prometheus.GaugeVec
	batches prometheus.Counter
}

// NewExporter creates an exporter and registers its collectors.
//
// Arguments:
//   - reg: The registerer to add the collectors to.
//   - namespace: Prefix for the metric names, e.g. "eval".
//
// Returns:
//   - The registered exporter.
//   - error if a collector cannot be registered.
func NewExporter(reg prometheus.Registerer, namespace string) (*Exporter, error) {
	x := &Exporter{
		values: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "metric_value",
			Help:      "Latest computed value of each evaluation metric",
		}, []string{"metric"}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batches fed to the evaluator",
		}),
	}

	for _, c := range []prometheus.Collector{x.values, x.batches} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "register evaluation collector")
		}
	}

	return x, nil
}

// ObserveBatch counts one processed batch.
func (x *Exporter) ObserveBatch() {
	x.batches.Inc()
}

// Publish sets the gauge of every metric in results.
func (x *Exporter) Publish(results Results) {
	for name, v := range results {
		x.values.WithLabelValues(string(name)).Set(v)
	}
}
