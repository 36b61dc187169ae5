package types

import (
	"errors"
	"fmt"
)

// Reason classifies why a content service produced no value.
type Reason string

const (
	ReasonUnconfigured Reason = "unconfigured"
	ReasonRemote       Reason = "remote_error"
	ReasonNoResult     Reason = "no_result"
)

// Sentinels matched with errors.Is against an *UnavailableError.
var (
	ErrUnconfigured = errors.New("capability not configured")
	ErrRemote       = errors.New("remote call failed")
	ErrNoResult     = errors.New("no result found")
)

// UnavailableError reports that a service could not produce a value.
type UnavailableError struct {
	Service string
	Reason  Reason
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s unavailable (%s): %v", e.Service, e.Reason, e.Err)
	}

	return fmt.Sprintf("%s unavailable (%s)", e.Service, e.Reason)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel that corresponds to the error's reason.
func (e *UnavailableError) Is(target error) bool {
	switch e.Reason {
	case ReasonUnconfigured:
		return target == ErrUnconfigured
	case ReasonRemote:
		return target == ErrRemote
	case ReasonNoResult:
		return target == ErrNoResult
	default:
		return false
	}
}

// Unconfigured reports a missing credential for service.
func Unconfigured(service string) error {
	return &UnavailableError{Service: service, Reason: ReasonUnconfigured}
}

// RemoteFailure wraps a transport, status or decode failure from service.
func RemoteFailure(service string, err error) error {
	return &UnavailableError{Service: service, Reason: ReasonRemote, Err: err}
}

// NoResult reports a successful call that returned nothing usable.
func NoResult(service string) error {
	return &UnavailableError{Service: service, Reason: ReasonNoResult}
}

// ReasonOf extracts the reason from err. Errors that are not an
// *UnavailableError count as remote failures.
func ReasonOf(err error) Reason {
	if err == nil {
		return ""
	}

	var unavailable *UnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.Reason
	}

	return ReasonRemote
}

// HTTPStatus returns the HTTP status code carried anywhere in err's chain,
// or 0 when the failure happened before a response arrived.
func HTTPStatus(err error) int {
	var statusErr interface{ HTTPStatus() int }
	if errors.As(err, &statusErr) {
		return statusErr.HTTPStatus()
	}

	return 0
}

// MusicMatch is the best track found for a music query.
type MusicMatch struct {
	Title      string
	Artist     string
	URL        string
	PreviewURL string
}

// Quote is a quotation and its attribution. Author may be empty.
type Quote struct {
	Content string
	Author  string
}
