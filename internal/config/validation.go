package config

import (
	"fmt"
	"time"
)

// ValidateTimeout validates timeout duration
func ValidateTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s timeout must be positive", name)
	}
	if timeout > 30*time.Minute {
		return fmt.Errorf("%s timeout too large (max 30 minutes)", name)
	}
	return nil
}

// ValidatePollWindow bounds the total time a record may spend polling.
func ValidatePollWindow(attempts int, interval time.Duration) error {
	if attempts <= 0 {
		return fmt.Errorf("poll attempts must be positive")
	}
	if interval < 0 {
		return fmt.Errorf("poll interval cannot be negative")
	}
	if total := time.Duration(attempts) * interval; total > 30*time.Minute {
		return fmt.Errorf("poll window %s too large (max 30 minutes)", total)
	}
	return nil
}
