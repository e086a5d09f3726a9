package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
)

// NotFoundError carries the id of the missing resource so handlers can
// name it in the response. errors.Is(err, ErrProductNotFound) and
// errors.Is(err, ErrCartNotFound) match through the Is method.
type NotFoundError struct {
	Resource string // "product" or "cart"
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	switch e.Resource {
	case "product":
		return target == ErrProductNotFound
	case "cart":
		return target == ErrCartNotFound
	}
	return false
}

// ValidationError marks malformed or missing request fields. It maps to a
// 4xx outcome at the HTTP boundary.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string {
	return e.Msg
}

func Invalid(format string, args ...any) ValidationError {
	return ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type ParseErrorKind string

const (
	ParseMalformed     ParseErrorKind = "malformed"
	ParseUnknownAction ParseErrorKind = "unknown-action"
	ParseMissingParams ParseErrorKind = "missing-params"
	ParseEmptyParams   ParseErrorKind = "empty-params"
)

// ParseError reports why a raw model response could not be turned into an
// Action. It never carries the full raw response, only the offending field.
type ParseError struct {
	Kind  ParseErrorKind
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse action: %s: %s", e.Kind, e.Field)
	}
	return fmt.Sprintf("parse action: %s", e.Kind)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type ModelErrorKind string

const (
	ModelAuth      ModelErrorKind = "auth"
	ModelNetwork   ModelErrorKind = "network"
	ModelTimeout   ModelErrorKind = "timeout"
	ModelUpstream  ModelErrorKind = "upstream"
	ModelMalformed ModelErrorKind = "malformed-response"
)

// ModelError is a typed failure of the text-generation provider.
// Implementations must never put credential material into Msg.
type ModelError struct {
	Kind       ModelErrorKind
	StatusCode int // ModelUpstream only
	Msg        string
	Err        error
}

func (e *ModelError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("model provider: %s: status %d: %s", e.Kind, e.StatusCode, e.Msg)
	}
	if e.Msg != "" {
		return fmt.Sprintf("model provider: %s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("model provider: %s", e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}
