package err

import (
	"errors"
	"fmt"
)

// ConfigError marks a fatal configuration or collector construction
// failure detected at startup. The process reports it and exits before
// entering the supervisor loop; it is never retried.
type ConfigError struct {
	Section string
	Err     error
}

func NewConfigError(section string, err error) *ConfigError {

	return &ConfigError{Section: section, Err: err}
}

func (e *ConfigError) Error() string {

	if e.Section == "" {
		return fmt.Sprintf("config error: %v", e.Err)
	}
	return fmt.Sprintf("config error in section %q: %v", e.Section, e.Err)
}

func (e *ConfigError) Unwrap() error {

	return e.Err
}

// IsConfigError reports whether any error in err's chain is a ConfigError.
func IsConfigError(err error) bool {

	var ce *ConfigError
	return errors.As(err, &ce)
}
