// Package tracing provides OpenTelemetry tracing options.
package tracing

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/onboarding-assistant/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Span exporters.
const (
	ExporterOTLPGRPC = "otlp_grpc"
	ExporterOTLPHTTP = "otlp_http"
	ExporterStdout   = "stdout"
)

// Options 链路追踪配置。Enabled 为 false 时只安装 W3C 传播器，不导出 span。
type Options struct {
	Enabled     bool   `json:"enabled" mapstructure:"enabled"`
	Exporter    string `json:"exporter" mapstructure:"exporter"`
	Endpoint    string `json:"endpoint" mapstructure:"endpoint"`
	Insecure    bool   `json:"insecure" mapstructure:"insecure"`
	Environment string `json:"environment" mapstructure:"environment"`
	// SampleRatio 根 span 的采样比例，子 span 跟随父 span。
	SampleRatio  float64       `json:"sample-ratio" mapstructure:"sample-ratio"`
	BatchTimeout time.Duration `json:"batch-timeout" mapstructure:"batch-timeout"`
}

// NewOptions creates Options with default values.
func NewOptions() *Options {
	return &Options{
		Exporter:     ExporterOTLPGRPC,
		Endpoint:     "localhost:4317",
		Insecure:     true,
		Environment:  "development",
		SampleRatio:  1.0,
		BatchTimeout: 5 * time.Second,
	}
}

// AddFlags adds flags for tracing options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "tracing."
	fs.BoolVar(&o.Enabled, p+"enabled", o.Enabled, "Export OpenTelemetry spans.")
	fs.StringVar(&o.Exporter, p+"exporter", o.Exporter, "Span exporter (otlp_grpc|otlp_http|stdout).")
	fs.StringVar(&o.Endpoint, p+"endpoint", o.Endpoint, "OTLP collector host:port.")
	fs.BoolVar(&o.Insecure, p+"insecure", o.Insecure, "Disable TLS towards the collector.")
	fs.StringVar(&o.Environment, p+"environment", o.Environment, "Deployment environment resource attribute.")
	fs.Float64Var(&o.SampleRatio, p+"sample-ratio", o.SampleRatio, "Sampling ratio of root spans (0.0 to 1.0).")
	fs.DurationVar(&o.BatchTimeout, p+"batch-timeout", o.BatchTimeout, "Maximum delay before a span batch is exported.")
}

// Validate validates the tracing options.
func (o *Options) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}

	var errs []error
	switch o.Exporter {
	case ExporterOTLPGRPC, ExporterOTLPHTTP:
		if o.Endpoint == "" {
			errs = append(errs, fmt.Errorf("tracing.endpoint is required for exporter %s", o.Exporter))
		}
	case ExporterStdout:
	default:
		errs = append(errs, fmt.Errorf("unsupported tracing.exporter %q", o.Exporter))
	}
	if o.SampleRatio < 0 || o.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample-ratio must be between 0.0 and 1.0, got %g", o.SampleRatio))
	}
	if o.BatchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("tracing.batch-timeout must be positive"))
	}
	return errs
}
