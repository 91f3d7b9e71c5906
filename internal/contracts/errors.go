package contracts

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that a ticker could not be resolved or fetched.
var ErrNotFound = errors.New("ticker not found")

// UpstreamError wraps a provider-side failure. The router uses it to decide
// whether a fallback provider should be tried.
type UpstreamError struct {
	Provider ProviderKind
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err is (or wraps) an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
