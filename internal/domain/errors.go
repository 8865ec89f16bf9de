package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer. The HTTP adapter maps
// kinds to status codes; everything else propagates wrapped with %w.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindInvalidInput
	KindInternal
)

// Error is a kinded error with a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NotFoundf builds a KindNotFound error.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a KindConflict error.
func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Forbiddenf builds a KindForbidden error.
func Forbiddenf(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// InvalidInputf builds a KindInvalidInput error.
func InvalidInputf(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Internalf wraps err as a KindInternal error.
func Internalf(err error, format string, args ...any) error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from err, unwrapping as needed.
// A BidWindowError reports KindInvalidInput.
func KindOf(err error) Kind {
	var bw *BidWindowError
	if errors.As(err, &bw) {
		return KindInvalidInput
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// BidWindowError reports a bid outside the allowed fare window. The fields
// are surfaced verbatim in the 422 response body so agents can correct
// their bid without another round trip.
type BidWindowError struct {
	MinAllowedFare     float64 `json:"min_allowed_fare"`
	MaxAllowedFare     float64 `json:"max_allowed_fare"`
	SubmittedBidAmount float64 `json:"submitted_bid_amount"`
}

func (e *BidWindowError) Error() string {
	return fmt.Sprintf("bid amount %.2f is outside allowed fare window [%.2f, %.2f]",
		e.SubmittedBidAmount, e.MinAllowedFare, e.MaxAllowedFare)
}
