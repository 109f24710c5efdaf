package client

import "fmt"

// Kind buckets an API failure by how the caller should react.
type Kind string

const (
	// KindAuthorization: the caller may not do this, ever. Terminal.
	KindAuthorization Kind = "authorization"
	// KindConflict: the request lost to current state (full, closed, already
	// in). Informational; local state is reconciled where possible.
	KindConflict Kind = "conflict"
	// KindFunding: not enough MatchCoins. Actionable; the hint points at a
	// top-up.
	KindFunding Kind = "funding"
	// KindTransient: the request may not have reached the server. Never
	// auto-retried for mutations.
	KindTransient Kind = "transient"
)

// APIError is a typed, user-presentable failure.
type APIError struct {
	Kind Kind
	Code string
	Hint string
	err  error
}

func (e *APIError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Hint)
	}
	return e.Code
}

func (e *APIError) Unwrap() error {
	return e.err
}

func conflictError(code string) *APIError {
	return &APIError{Kind: KindConflict, Code: code}
}

func fundingError(code string) *APIError {
	return &APIError{Kind: KindFunding, Code: code, Hint: "você precisa de mais MatchCoins"}
}

func authorizationError(code string) *APIError {
	return &APIError{Kind: KindAuthorization, Code: code}
}

func transientError(err error) *APIError {
	return &APIError{Kind: KindTransient, Code: "NETWORK", err: err}
}
