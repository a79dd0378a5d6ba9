package ai

import "errors"

var (
	// ErrMissingCredentials means no API key was configured. This is a server
	// misconfiguration, surfaced at first use, never a client error.
	ErrMissingCredentials = errors.New("ai: api key is not configured")

	// ErrUnprocessable means the collaborator answered but the payload did not
	// parse as the expected JSON shape even after stripping code fences. It is
	// distinct from transport-level failures.
	ErrUnprocessable = errors.New("ai: response is not in the expected format")
)
