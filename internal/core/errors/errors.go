// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
//
// Whether an error aborts a request is decided by the orchestrating caller,
// never by the component that produced it.
package errors

import "errors"

// Session and tenancy errors.
var (
	// ErrUnauthenticated indicates there is no valid user session.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrOrganizationNotFound indicates the user is not mapped to an organization.
	ErrOrganizationNotFound = errors.New("organization not found")
)

// Configuration errors.
var (
	// ErrConfigNotFound indicates neither an organization nor a default tool config exists.
	ErrConfigNotFound = errors.New("tool config not found")

	// ErrMissingPrompts indicates the tool config lacks a required prompt.
	ErrMissingPrompts = errors.New("required prompts missing")

	// ErrAPIKeyNotFound indicates no API key is stored for the provider.
	ErrAPIKeyNotFound = errors.New("api key not found")

	// ErrAPIKeyEmpty indicates the stored API key is blank.
	ErrAPIKeyEmpty = errors.New("api key is empty")
)

// Completion errors.
var (
	// ErrUnsupportedProvider indicates an unknown LLM provider name. Never retried.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrSelectionFailed indicates a structured selection call failed or returned
	// a response outside its schema.
	ErrSelectionFailed = errors.New("selection failed")

	// ErrCircuitBreakerOpen indicates the circuit breaker has tripped and requests are blocked.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

	// ErrEmptyResponse indicates an empty response was received.
	ErrEmptyResponse = errors.New("empty response")

	// ErrSchemaValidation indicates a structured response did not match its schema.
	ErrSchemaValidation = errors.New("schema validation failed")
)

// Pipeline errors.
var (
	// ErrInvalidRequest indicates a malformed pipeline request.
	ErrInvalidRequest = errors.New("invalid request")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
