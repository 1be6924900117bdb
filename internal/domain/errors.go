package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoProvider reports that no AI provider credential is configured.
	ErrNoProvider = errors.New("no summarization provider configured")

	// ErrMissingCredential reports that a credential required for a run is absent.
	ErrMissingCredential = errors.New("missing credential")

	// ErrDuplicate is returned by repositories when a record key already exists.
	ErrDuplicate = errors.New("duplicate record")

	// ErrAllSourcesFailed is returned when no configured source produced a response.
	ErrAllSourcesFailed = errors.New("all news sources failed")
)

// ProviderError wraps any failure of a summarization provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("summarize: %v", e.Err)
	}
	return fmt.Sprintf("summarize via %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError is a small helper so adapters can wrap errors uniformly.
func NewProviderError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
