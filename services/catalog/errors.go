package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the catalog provider does not recognize the
// requested title identifier. Non-retryable.
var ErrNotFound = errors.New("title not found")

// ProviderError wraps transport failures, provider 5xx responses and
// malformed payloads. Anything structurally unexpected at the boundary is
// converted to this type rather than letting loosely-shaped data inward.
type ProviderError struct {
	Op     string
	Status int
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("catalog %s failed: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("catalog %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func providerErr(op string, status int, err error) *ProviderError {
	return &ProviderError{Op: op, Status: status, Err: err}
}
