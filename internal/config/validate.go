package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing every problem found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.MaxLineLength < 1 {
		errs = append(errs, ValidationError{
			Field:   "max_line_length",
			Message: "must be at least 1",
		})
	}

	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, ValidationError{
			Field:   "shutdown_timeout",
			Message: "must be positive",
		})
	}

	if cfg.DrainTimeout <= 0 {
		errs = append(errs, ValidationError{
			Field:   "drain_timeout",
			Message: "must be positive",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.LogFormat] {
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}

	seen := make(map[string]bool, len(cfg.Children))
	for i, child := range cfg.Children {
		field := fmt.Sprintf("children[%d]", i)

		if len(child.Command) == 0 || child.Command[0] == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".command",
				Message: "must name an executable",
			})
		}

		if child.Name == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: "must not be empty",
			})
		} else if seen[child.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate name %q", child.Name),
			})
		}
		seen[child.Name] = true

		if child.TermSignal <= 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".term_signal",
				Message: "must be a valid signal number",
			})
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
