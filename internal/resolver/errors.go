package resolver

import (
	"errors"
	"fmt"
)

// Resolver failures the HTTP layer maps onto status codes. Cache failures
// never surface here; they are logged and swallowed by the cache layer.
var (
	// ErrLoginRequired marks videos upstream gates behind an account.
	ErrLoginRequired = errors.New("Login required")
	// ErrResponseUnplayable marks a playabilityStatus of ERROR.
	ErrResponseUnplayable = errors.New("Response is unplayable")
	// ErrFailedToSerializePlayer marks a non-JSON player body.
	ErrFailedToSerializePlayer = errors.New("Failed to serialize player response")

	ErrFailedToFetchPlaylist         = errors.New("Failed to fetch playlist")
	ErrFailedToParsePlaylist         = errors.New("Failed to parse playlist")
	ErrFailedToGenerateContinuation  = errors.New("Error generating playlist continuation")
	ErrFailedToFetchContinuation     = errors.New("Failed to fetch continuation")
	ErrFailedToParseContinuation     = errors.New("Error parsing continuation response to JSON")
)

// DecipherError carries the sandbox failure text.
type DecipherError struct {
	Text string
}

func (e *DecipherError) Error() string {
	return fmt.Sprintf("failed to decipher: %s", e.Text)
}
