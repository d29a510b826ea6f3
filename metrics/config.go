package metrics

import (
	"io"
	"math"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultThreshold is the mean IoU threshold used by DefaultConfig.
const DefaultThreshold = 0.5

// Config lists the metrics an evaluation run attaches.
type Config struct {
	// Metrics are created in order through New.
	Metrics []NewMetricArgs `json:"metrics" yaml:"metrics"`
	// Debug enables per-batch tracing in the evaluator.
	Debug bool `json:"debug" yaml:"debug"`
}

// DefaultConfig returns accuracy and mean IoU at DefaultThreshold.
func DefaultConfig() *Config {
	return &Config{
		Metrics: []NewMetricArgs{
			{Name: MetricNameAccuracy},
			{Name: MetricNameMeanIoU, Threshold: DefaultThreshold},
		},
	}
}

// LoadConfig decodes a YAML configuration and validates it.
//
// Arguments:
//   - r: The YAML document.
//
// Returns:
//   - The decoded configuration.
//   - error if decoding or validation fails.
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := &Config{}
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "decode metrics config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks metric names, uniqueness and thresholds.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("metrics config is nil")
	}
	if len(c.Metrics) == 0 {
		return errors.New("metrics config lists no metrics")
	}

	seen := make(map[MetricName]bool, len(c.Metrics))
	for i, args := range c.Metrics {
		switch args.Name {
		case MetricNameAccuracy:
		case MetricNameMeanIoU:
			if math.IsNaN(args.Threshold) || args.Threshold < 0 || args.Threshold > 1 {
				return errors.Errorf("metrics[%d]: threshold %v outside [0, 1]", i, args.Threshold)
			}
		default:
			return errors.Errorf("metrics[%d]: unsupported metric name: %q", i, args.Name)
		}
		if seen[args.Name] {
			return errors.Errorf("metrics[%d]: duplicate metric %q", i, args.Name)
		}
		seen[args.Name] = true
	}
	return nil
}
