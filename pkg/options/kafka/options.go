// Package kafka provides Kafka producer options.
package kafka

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/onboarding-assistant/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options Kafka 事件发布配置。Brokers 为空时不发布事件。
type Options struct {
	Brokers      []string      `json:"brokers" mapstructure:"brokers"`
	Topic        string        `json:"topic" mapstructure:"topic"`
	WriteTimeout time.Duration `json:"write-timeout" mapstructure:"write-timeout"`
	MaxAttempts  int           `json:"max-attempts" mapstructure:"max-attempts"`
	// RequiredAcks: -1 (all), 0 (none), 1 (leader)。
	RequiredAcks int `json:"required-acks" mapstructure:"required-acks"`
}

// NewOptions creates Options with default values.
func NewOptions() *Options {
	return &Options{
		Topic:        "onboarding.events",
		WriteTimeout: 5 * time.Second,
		MaxAttempts:  3,
		RequiredAcks: -1,
	}
}

// Enabled reports whether any broker is configured.
func (o *Options) Enabled() bool {
	return o != nil && len(o.Brokers) > 0
}

// AddFlags adds flags for Kafka options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringSliceVar(&o.Brokers, options.Join(prefixes...)+"kafka.brokers", o.Brokers,
		"Kafka broker addresses. Events are not published when empty.")
	fs.StringVar(&o.Topic, options.Join(prefixes...)+"kafka.topic", o.Topic, "Topic for onboarding events.")
	fs.DurationVar(&o.WriteTimeout, options.Join(prefixes...)+"kafka.write-timeout", o.WriteTimeout, "Kafka write timeout.")
	fs.IntVar(&o.MaxAttempts, options.Join(prefixes...)+"kafka.max-attempts", o.MaxAttempts, "Kafka write attempts per message.")
	fs.IntVar(&o.RequiredAcks, options.Join(prefixes...)+"kafka.required-acks", o.RequiredAcks,
		"Required acks: -1 all, 0 none, 1 leader.")
}

// Validate validates the Kafka options.
func (o *Options) Validate() []error {
	if !o.Enabled() {
		return nil
	}

	var errs []error
	for _, b := range o.Brokers {
		if strings.TrimSpace(b) == "" {
			errs = append(errs, fmt.Errorf("kafka broker address must not be empty"))
			break
		}
	}
	if o.Topic == "" {
		errs = append(errs, fmt.Errorf("kafka topic is required"))
	}
	if o.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("kafka write-timeout must be positive"))
	}
	if o.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("kafka max-attempts must be at least 1"))
	}
	switch o.RequiredAcks {
	case -1, 0, 1:
	default:
		errs = append(errs, fmt.Errorf("kafka required-acks must be -1, 0 or 1, got %d", o.RequiredAcks))
	}
	return errs
}
