package config

import (
	"errors"
	"fmt"
)

// Validate checks cross-field constraints that tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}

	if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("auth jwt_secret must be at least 32 characters"))
	}

	if len(c.Habits.MilestoneThresholds) == 0 {
		errs = append(errs, errors.New("habits milestone_thresholds must not be empty"))
	}
	for _, m := range c.Habits.MilestoneThresholds {
		if m <= 0 {
			errs = append(errs, fmt.Errorf("milestone threshold %d must be positive", m))
		}
	}

	if c.Habits.CompletionRetries <= 0 {
		errs = append(errs, errors.New("habits completion_retries must be positive"))
	}

	if c.Worker.ScanInterval <= 0 {
		errs = append(errs, errors.New("worker scan_interval must be positive"))
	}

	return errors.Join(errs...)
}
