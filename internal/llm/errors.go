package llm

import "errors"

var (
	// ErrDisabled is returned when the LLM subsystem is switched off.
	ErrDisabled = errors.New("llm is disabled")

	// ErrUnavailable means the provider could not be reached.
	ErrUnavailable = errors.New("llm provider unavailable")

	// ErrMissingAPIKey is returned by hosted providers configured without a key.
	ErrMissingAPIKey = errors.New("llm api key is not set")

	// ErrUnauthorized means the provider rejected the credentials.
	ErrUnauthorized = errors.New("llm provider rejected the api key")

	ErrTimeout = errors.New("llm request timed out")

	// ErrInvalidOutput means the reply could not be decoded into the
	// expected shape.
	ErrInvalidOutput = errors.New("invalid llm output format")

	ErrRetryExhausted = errors.New("llm retry attempts exhausted")
)
