package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateTable()...)
	errors = append(errors, c.validateSource()...)

	if c.Source.Driver == DriverMySQL {
		errors = append(errors, c.validateDatabase()...)
	}

	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateTable() ValidationErrors {
	var errors ValidationErrors

	if len(c.Table.PageSizeOptions) == 0 {
		errors = append(errors, ValidationError{
			Field:   "table.page_size_options",
			Message: "at least one page size option is required",
		})
	}

	seen := make(map[int]bool, len(c.Table.PageSizeOptions))
	for i, opt := range c.Table.PageSizeOptions {
		if opt <= 0 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("table.page_size_options[%d]", i),
				Message: "page size must be positive",
			})
		}
		if seen[opt] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("table.page_size_options[%d]", i),
				Message: fmt.Sprintf("duplicate page size %d", opt),
			})
		}
		seen[opt] = true
	}

	if c.Table.DefaultPageSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "table.default_page_size",
			Message: "default_page_size must be positive",
		})
	} else if len(c.Table.PageSizeOptions) > 0 && !c.Table.HasPageSize(c.Table.DefaultPageSize) {
		errors = append(errors, ValidationError{
			Field:   "table.default_page_size",
			Message: fmt.Sprintf("default_page_size %d is not one of page_size_options %v", c.Table.DefaultPageSize, c.Table.PageSizeOptions),
		})
	}

	return errors
}

func (c *Config) validateSource() ValidationErrors {
	var errors ValidationErrors

	validDrivers := map[string]bool{DriverMemory: true, DriverMySQL: true}
	if !validDrivers[c.Source.Driver] {
		errors = append(errors, ValidationError{
			Field:   "source.driver",
			Message: "driver must be 'memory' or 'mysql'",
		})
	}

	if c.Source.DelayMillis < 0 {
		errors = append(errors, ValidationError{
			Field:   "source.delay_ms",
			Message: "delay_ms cannot be negative",
		})
	}

	if c.Source.MinResults < 1 {
		errors = append(errors, ValidationError{
			Field:   "source.min_results",
			Message: "min_results must be at least 1",
		})
	}

	if c.Source.MaxResults < c.Source.MinResults {
		errors = append(errors, ValidationError{
			Field:   "source.max_results",
			Message: "max_results cannot be less than min_results",
		})
	}

	if c.Source.InitialResults < 0 {
		errors = append(errors, ValidationError{
			Field:   "source.initial_results",
			Message: "initial_results cannot be negative",
		})
	}

	if c.Source.SubRowDepth < 0 {
		errors = append(errors, ValidationError{
			Field:   "source.sub_row_depth",
			Message: "sub_row_depth cannot be negative",
		})
	}

	if c.Source.Retry.MaxAttempts < 1 {
		errors = append(errors, ValidationError{
			Field:   "source.retry.max_attempts",
			Message: "max_attempts must be at least 1",
		})
	}

	if c.Source.Retry.BackoffMillis < 0 {
		errors = append(errors, ValidationError{
			Field:   "source.retry.backoff_ms",
			Message: "backoff_ms cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateDatabase() ValidationErrors {
	var errors ValidationErrors
	db := &c.Database

	if db.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "database.host",
			Message: "host is required",
		})
	}

	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "database.port",
			Message: "port must be between 1 and 65535",
		})
	}

	if db.User == "" {
		errors = append(errors, ValidationError{
			Field:   "database.user",
			Message: "user is required",
		})
	}

	if db.Database == "" {
		errors = append(errors, ValidationError{
			Field:   "database.database",
			Message: "database name is required",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   "database.tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "database.max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	if db.MaxIdleConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "database.max_idle_connections",
			Message: "max_idle_connections cannot be negative",
		})
	}

	if c.Source.Table == "" {
		errors = append(errors, ValidationError{
			Field:   "source.table",
			Message: "table is required for the mysql driver",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
