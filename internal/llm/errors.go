package llm

import (
	"errors"
	"fmt"
)

// Error types for classifying failures of the external call. Response
// format failures are normalize.ParseError and normalize.ShapeError.

// ErrNotConfigured is returned by every call when no API key is configured.
var ErrNotConfigured = errors.New("gateway API key is not configured")

// GatewayError wraps a failure of the external call itself.
type GatewayError struct {
	Flow       string
	InvalidKey bool
	Err        error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: gateway call: %v", e.Flow, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsNotConfigured returns true if err comes from a missing API key.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

// IsGateway returns true if the external call failed.
func IsGateway(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}
