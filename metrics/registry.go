// Package metrics - registry for metrics.
package metrics

import (
	"github.com/pkg/errors"
)

// MetricName identifies a metric implementation.
type MetricName string

const (
	// MetricNameAccuracy is the classification accuracy metric.
	MetricNameAccuracy MetricName = "accuracy"
	// MetricNameMeanIoU is the thresholded intersection over union metric.
	MetricNameMeanIoU MetricName = "mean_iou"
)

// NewMetricArgs describes a metric to create.
type NewMetricArgs struct {
	// Name selects the implementation.
	Name MetricName `json:"name" yaml:"name"`
	// Threshold is the positive probability threshold (mean_iou only).
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// New creates a metric instance based on the specified metric name.
//
// Arguments:
//   - args: The metric name and its parameters.
//
// Returns:
//   - Metric: A freshly reset metric.
//   - error: An error if the metric name is unsupported.
//
// Example:
//
// ```go
//
//	iou, err := New(NewMetricArgs{Name: MetricNameMeanIoU, Threshold: 0.5})
//
//	if err != nil {
//	    log.Fatalf("Failed to create metric: %v", err)
//	}
//
// ```
func New(args NewMetricArgs) (Metric, error) {
	switch args.Name {
	case MetricNameAccuracy:
		return NewAccuracy(), nil
	case MetricNameMeanIoU:
		return NewMeanIoU(args.Threshold), nil
	default:
		return nil, errors.Errorf("unsupported metric name: %q", args.Name)
	}
}

// NewFromConfig creates every metric listed in the configuration, keyed by name.
//
// Arguments:
//   - cfg: A configuration. It is validated before any metric is created.
//
// Returns:
//   - The metrics keyed by name.
//   - error if the configuration is invalid.
func NewFromConfig(cfg *Config) (map[MetricName]Metric, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	out := make(map[MetricName]Metric, len(cfg.Metrics))
	for _, args := range cfg.Metrics {
		m, err := New(args)
		if err != nil {
			return nil, err
		}
		out[args.Name] = m
	}
	return out, nil
}
