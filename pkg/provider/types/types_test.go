package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestUnavailableErrorMatchesSentinel(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		want   error
		reason Reason
	}{
		{name: "unconfigured", err: Unconfigured("giphy"), want: ErrUnconfigured, reason: ReasonUnconfigured},
		{name: "remote", err: RemoteFailure("jokeapi", errors.New("boom")), want: ErrRemote, reason: ReasonRemote},
		{name: "no result", err: NoResult("spotify"), want: ErrNoResult, reason: ReasonNoResult},
	}

	sentinels := []error{ErrUnconfigured, ErrRemote, ErrNoResult}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("dispatch: %w", tt.err)
			for _, sentinel := range sentinels {
				if got := errors.Is(wrapped, sentinel); got != (sentinel == tt.want) {
					t.Fatalf("errors.Is(%v, %v) = %v", wrapped, sentinel, got)
				}
			}
			if got := ReasonOf(wrapped); got != tt.reason {
				t.Fatalf("ReasonOf = %q, want %q", got, tt.reason)
			}
		})
	}
}

func TestRemoteFailureUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := RemoteFailure("quotable", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected remote failure to unwrap to its cause")
	}
	if got := err.Error(); got != "quotable unavailable (remote_error): connection refused" {
		t.Fatalf("Error() = %q", got)
	}
}

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatus() int { return int(e) }

func TestHTTPStatus(t *testing.T) {
	if got := HTTPStatus(RemoteFailure("giphy", fmt.Errorf("get: %w", statusErr(429)))); got != 429 {
		t.Fatalf("HTTPStatus = %d, want 429", got)
	}
	if got := HTTPStatus(RemoteFailure("giphy", errors.New("dial tcp: refused"))); got != 0 {
		t.Fatalf("HTTPStatus(transport) = %d, want 0", got)
	}
}

func TestReasonOfPlainError(t *testing.T) {
	if got := ReasonOf(errors.New("plain")); got != ReasonRemote {
		t.Fatalf("ReasonOf(plain) = %q, want %q", got, ReasonRemote)
	}
	if got := ReasonOf(nil); got != "" {
		t.Fatalf("ReasonOf(nil) = %q, want empty", got)
	}
}
