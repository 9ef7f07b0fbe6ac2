package config

import (
	"fmt"

	"github.com/superawat/Gate-QA/internal/logger"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateRequired checks if a string field is not empty.
func ValidateRequired(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// ValidateLogLevel checks if a log level is valid.
func ValidateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "warning", "error", "fatal":
		return nil
	default:
		return &ValidationError{Field: "logging.level", Message: "must be one of: debug, info, warn, error, fatal"}
	}
}

// ValidateLogFormat checks if a log format is valid.
func ValidateLogFormat(format string) error {
	switch format {
	case logger.FormatJSON, logger.FormatConsole:
		return nil
	default:
		return &ValidationError{Field: "logging.format", Message: "must be one of: json, console"}
	}
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if err := ValidateRequired("paths.existing", c.Paths.Existing); err != nil {
		return err
	}
	if err := ValidateRequired("paths.incoming", c.Paths.Incoming); err != nil {
		return err
	}
	if c.Paths.Existing == c.Paths.Incoming {
		return &ValidationError{Field: "paths.incoming", Message: "must differ from paths.existing"}
	}
	if err := ValidateRequired("backup.time_format", c.Backup.TimeFormat); err != nil {
		return err
	}
	if err := ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	return ValidateLogFormat(c.Logging.Format)
}
