package config

import (
	"fmt"
	"regexp"
	"time"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	msg := "configuration validation failed:"
	for _, err := range e {
		msg += fmt.Sprintf("\n  - %s", err.Error())
	}
	return msg
}

// HasErrors returns true if there are any validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator is a function that validates configuration and returns errors
type Validator func() ValidationErrors

// Validate runs multiple validators and combines their errors
func Validate(validators ...Validator) error {
	var allErrors ValidationErrors

	for _, validator := range validators {
		if errs := validator(); len(errs) > 0 {
			allErrors = append(allErrors, errs...)
		}
	}

	if len(allErrors) > 0 {
		return allErrors
	}
	return nil
}

// RequireNonEmpty validates that a string field is not empty
func RequireNonEmpty(field, value string) *ValidationError {
	if value == "" {
		return &ValidationError{
			Field:   field,
			Message: "is required",
		}
	}
	return nil
}

// RequireMinLength validates that a string has at least min characters
func RequireMinLength(field, value string, min int) *ValidationError {
	if len(value) < min {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at least %d characters, got %d", min, len(value)),
		}
	}
	return nil
}

// RequirePositiveDuration validates that a duration field is positive
func RequirePositiveDuration(field string, value time.Duration) *ValidationError {
	if value <= 0 {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be positive, got %v", value),
		}
	}
	return nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// RequireValidEmail validates that a string is a valid email address (basic check)
func RequireValidEmail(field, value string) *ValidationError {
	if value == "" {
		return &ValidationError{
			Field:   field,
			Message: "is required",
		}
	}

	if !emailRegex.MatchString(value) {
		return &ValidationError{
			Field:   field,
			Message: "invalid email format",
		}
	}
	return nil
}

// RequirePathPrefix validates that a route prefix is set and starts with '/'
func RequirePathPrefix(field, value string) *ValidationError {
	if value == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	if value[0] != '/' {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must start with '/', got %q", value)}
	}
	return nil
}

// CollectErrors is a helper to collect validation errors
// Returns nil if no errors, otherwise returns ValidationErrors
func CollectErrors(errors ...*ValidationError) ValidationErrors {
	var result ValidationErrors
	for _, err := range errors {
		if err != nil {
			result = append(result, *err)
		}
	}
	return result
}
