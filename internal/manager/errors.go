package manager

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownType is returned for types other than category and unit.
	ErrUnknownType = errors.New("manager: unknown type")
	// ErrNameRequired is returned when a submit carries a blank name.
	ErrNameRequired = errors.New("manager: name is required")
	// ErrUpstreamStatus marks a non-success response from the host.
	ErrUpstreamStatus = errors.New("manager: upstream rejected request")
	// ErrRefreshUnsupported is returned by a Refresher that cannot refresh a
	// type; the page is reloaded instead.
	ErrRefreshUnsupported = errors.New("manager: refresh unsupported")
	// ErrUpstreamUnavailable marks a transport failure talking to the host.
	ErrUpstreamUnavailable = errors.New("manager: upstream unavailable")
)

// StatusError carries the status code of a rejected upstream request.
type StatusError struct {
	Method   string
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("manager: %s %s returned status %d", e.Method, e.Endpoint, e.Code)
}

// Unwrap lets errors.Is match ErrUpstreamStatus.
func (e *StatusError) Unwrap() error {
	return ErrUpstreamStatus
}

// DecodeKind classifies why an Open dataset could not be used.
type DecodeKind string

const (
	DecodeEmpty  DecodeKind = "empty"
	DecodeSyntax DecodeKind = "syntax"
	DecodeShape  DecodeKind = "shape"
)

// DecodeError reports a dataset that degraded to an empty list.
type DecodeError struct {
	Kind DecodeKind
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "manager: decode records: " + string(e.Kind)
	}
	return fmt.Sprintf("manager: decode records (%s): %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
