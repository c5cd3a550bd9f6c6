package scheduler

import (
	"errors"
	"fmt"
	"time"
)

// Config represents scheduler configuration
type Config struct {
	// TickInterval is the delay of the fallback re-check armed after an
	// operation starts, so further ready operations keep draining.
	TickInterval time.Duration `json:"tickInterval" yaml:"tickInterval"`

	// WatchdogInterval is the delay of the safety re-check armed while
	// unexecuted operations remain. It never cancels a running body.
	WatchdogInterval time.Duration `json:"watchdogInterval" yaml:"watchdogInterval"`
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		TickInterval:     100 * time.Millisecond,
		WatchdogInterval: 500 * time.Millisecond,
	}
}

// Validate reports invalid settings.
func (c Config) Validate() error {
	var errs []error
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.tickInterval must be positive, got %s", c.TickInterval))
	}
	if c.WatchdogInterval <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.watchdogInterval must be positive, got %s", c.WatchdogInterval))
	}
	return errors.Join(errs...)
}
