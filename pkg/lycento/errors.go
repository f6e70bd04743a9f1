package lycento

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a licensing failure.
type Kind string

const (
	// KindLicensing is the base kind: not found, unmapped status, or an
	// unexpected failure.
	KindLicensing Kind = "licensing"
	// KindNetwork covers transport failures, timeouts and rate limiting.
	KindNetwork Kind = "network"
	// KindActivation is a rejected activation (HTTP 422).
	KindActivation Kind = "activation"
	// KindValidation is a rejected validation (HTTP 422).
	KindValidation Kind = "validation"
	// KindDeactivation is a rejected deactivation (HTTP 422).
	KindDeactivation Kind = "deactivation"
)

// Error is the single error type returned by the client. Use errors.As to
// inspect the Kind, or errors.Is with one of the Err* sentinels.
type Error struct {
	Kind    Kind
	Message string
	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int
	// Err is the underlying transport or decoding failure, if any.
	Err error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels: ErrLicensing matches every *Error, the other
// sentinels match by Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" {
		return false
	}
	return t.Kind == KindLicensing || t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrLicensing    = &Error{Kind: KindLicensing}
	ErrNetwork      = &Error{Kind: KindNetwork}
	ErrActivation   = &Error{Kind: KindActivation}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrDeactivation = &Error{Kind: KindDeactivation}
)

// Messages used for mapped failures.
const (
	msgNetwork       = "Network error - please check your connection"
	msgRateLimited   = "Rate limit exceeded - please try again later"
	msgNotFound      = "License not found"
	msgUnprocessable = "Validation failed"
	msgUnknown       = "Unknown error occurred"
)

// Operation names the request context used to classify 422 responses.
type Operation string

const (
	OpActivation   Operation = "activation"
	OpValidation   Operation = "validation"
	OpDeactivation Operation = "deactivation"
	OpInfo         Operation = "info"
)

// kind returns the error kind a 422 maps to in this operation.
func (op Operation) kind() Kind {
	switch op {
	case OpActivation:
		return KindActivation
	case OpValidation:
		return KindValidation
	case OpDeactivation:
		return KindDeactivation
	default:
		return KindLicensing
	}
}

// transportError is a failure before any HTTP response was received.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return fmt.Sprintf("send request: %v", e.err) }
func (e *transportError) Unwrap() error { return e.err }

// statusError is a non-2xx HTTP response.
type statusError struct {
	status int
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server returned %d", e.status)
}

// classifyError converts a failure from an operation into an *Error.
func classifyError(op Operation, err error) *Error {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr
	}

	var terr *transportError
	if errors.As(err, &terr) {
		return &Error{Kind: KindNetwork, Message: msgNetwork, Err: terr.err}
	}

	var serr *statusError
	if !errors.As(err, &serr) {
		return &Error{Kind: KindLicensing, Message: msgUnknown, Err: err}
	}

	switch serr.status {
	case http.StatusUnprocessableEntity:
		return &Error{Kind: op.kind(), Message: unprocessableMessage(serr.body), StatusCode: serr.status}
	case http.StatusNotFound:
		return &Error{Kind: KindLicensing, Message: msgNotFound, StatusCode: serr.status}
	case http.StatusTooManyRequests:
		return &Error{Kind: KindNetwork, Message: msgRateLimited, StatusCode: serr.status}
	default:
		return &Error{
			Kind:       KindLicensing,
			Message:    fmt.Sprintf("Server error: %d", serr.status),
			StatusCode: serr.status,
		}
	}
}

// unprocessableMessage extracts the server's reason from a 422 body, preferring
// "error" over "message". Fields that are not non-empty strings are skipped.
func unprocessableMessage(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return msgUnprocessable
	}
	for _, field := range []string{"error", "message"} {
		var reason string
		if err := json.Unmarshal(payload[field], &reason); err == nil && reason != "" {
			return reason
		}
	}
	return msgUnprocessable
}
