package chat

import "errors"

// Sentinel errors surfaced to transport layers. Wrap with %w and test with
// errors.Is.
var (
	// ErrRateLimited means the throttle gate denied the request. Terminal
	// for the request; no retry.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrRetrievalFailed means the knowledge index was unavailable or
	// errored. Fatal for the request; there is no ungrounded fallback.
	ErrRetrievalFailed = errors.New("knowledge retrieval failed")

	// ErrGenerationFailed means the model call errored or returned
	// unusable content.
	ErrGenerationFailed = errors.New("response generation failed")
)
