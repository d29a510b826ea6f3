package evaluation

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/nvr-ai/go-eval/metrics"
	"github.com/pkg/errors"
)

// Results maps each attached metric to its computed value.
type Results map[metrics.MetricName]float64

// Evaluator runs a fixed set of metrics over a batch source.
//
// Every Run resets the attached metrics, feeds each batch to every metric in attach order, then
// computes them. An Evaluator is not safe for concurrent use.
type Evaluator struct {
	names     []metrics.MetricName
	metrics   map[metrics.MetricName]metrics.Metric
	exporter  *Exporter
	debugMode bool
}

// NewEvaluator creates an evaluator with no metrics attached.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		metrics: make(map[metrics.MetricName]metrics.Metric),
	}
}

// NewEvaluatorFromConfig creates an evaluator with every metric in cfg attached.
//
// Arguments:
//   - cfg: The metrics configuration.
//
// Returns:
//   - The evaluator, with debug mode taken from cfg.
//   - error if the configuration is invalid.
func NewEvaluatorFromConfig(cfg *metrics.Config) (*Evaluator, error) {
	built, err := metrics.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	e := NewEvaluator()
	e.SetDebugMode(cfg.Debug)
	for _, args := range cfg.Metrics {
		if err := e.Attach(args.Name, built[args.Name]); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// SetDebugMode enables or disables per-batch logging.
func (e *Evaluator) SetDebugMode(enabled bool) {
	e.debugMode = enabled
}

// SetExporter publishes results and batch counts of later runs through x. A nil x disables
// publishing.
func (e *Evaluator) SetExporter(x *Exporter) {
	e.exporter = x
}

// Attach adds a metric under name.
//
// Arguments:
//   - name: The key the metric's result is reported under.
//   - m: The metric.
//
// Returns:
//   - error if m is nil or name is already attached.
func (e *Evaluator) Attach(name metrics.MetricName, m metrics.Metric) error {
	if m == nil {
		return errors.Errorf("metric %q is nil", name)
	}
	if _, ok := e.metrics[name]; ok {
		return errors.Errorf("metric %q already attached", name)
	}
	e.names = append(e.names, name)
	e.metrics[name] = m
	log.Printf("📊 Attached metric: %s", name)
	return nil
}

// Metric returns the metric attached under name.
func (e *Evaluator) Metric(name metrics.MetricName) (metrics.Metric, bool) {
	m, ok := e.metrics[name]
	return m, ok
}

// Run evaluates every attached metric over all batches of src.
//
// Arguments:
//   - ctx: Checked before every batch.
//   - src: The batches to evaluate. Exhaustion is signalled with io.EOF.
//
// Returns:
//   - Results keyed by metric name.
//   - error if a batch cannot be read, a metric rejects a batch, or a metric cannot be
//     computed (for example because src was empty).
//
// @example
//
//	e := NewEvaluator()
//	_ = e.Attach(metrics.MetricNameAccuracy, metrics.NewAccuracy())
//
//	results, err := e.Run(ctx, NewSliceSource(batches...))
//
//	if err != nil {
//	    return err
//	}
func (e *Evaluator) Run(ctx context.Context, src BatchSource) (Results, error) {
	if len(e.names) == 0 {
		return nil, errors.New("no metrics attached")
	}

	for _, name := range e.names {
		e.metrics[name].Reset()
	}

	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "evaluation stopped after %d batches", n)
		}

		batch, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read batch %d", n)
		}

		for _, name := range e.names {
			if err := e.metrics[name].Update(batch.Predictions, batch.Labels); err != nil {
				return nil, errors.Wrapf(err, "metric %s: batch %d", name, n)
			}
		}

		if e.debugMode {
			fmt.Printf("[DEBUG] Batch %d: predictions %v, labels %v\n", n,
				batch.Predictions.Shape(), batch.Labels.Shape())
		}
		if e.exporter != nil {
			e.exporter.ObserveBatch()
		}
		n++
	}

	results := make(Results, len(e.names))
	for _, name := range e.names {
		v, err := e.metrics[name].Compute()
		if err != nil {
			return nil, errors.Wrapf(err, "metric %s", name)
		}
		results[name] = v
	}

	if e.exporter != nil {
		e.exporter.Publish(results)
	}

	log.Printf("✅ Evaluation complete: %d batches, %d metrics", n, len(results))

	return results, nil
}
