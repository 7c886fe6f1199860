// Package blobstore abstracts the remote object store that holds honeypot
// log segments. The retriever and API layers only see the Store interface;
// SDK-specific errors are translated at this boundary.
package blobstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/OskariKosonen/hunajapannu/internal/model"
)

// Store is the capability the rest of the system consumes. Implementations
// must be safe for concurrent use; the connection handle is shared across
// requests.
type Store interface {
	// List returns up to maxResults descriptors whose names start with
	// prefix, in the store's listing order. maxResults <= 0 means the
	// implementation's page ceiling applies alone.
	List(ctx context.Context, prefix string, maxResults int) ([]model.BlobDescriptor, error)

	// Exists reports whether a named object is present.
	Exists(ctx context.Context, name string) (bool, error)

	// Metadata returns the descriptor for a single named object.
	// Returns ErrNotFound when the object is absent.
	Metadata(ctx context.Context, name string) (model.BlobDescriptor, error)

	// Download returns the full content of a named object.
	// Returns ErrNotFound when the object is absent.
	Download(ctx context.Context, name string) ([]byte, error)

	// Ping verifies connectivity and credentials without downloading data.
	Ping(ctx context.Context) (ConnectionStatus, error)
}

// ConnectionStatus describes the outcome of a connectivity check.
type ConnectionStatus struct {
	Connected bool   `json:"connected"`
	Container string `json:"container"`
	Mode      string `json:"mode"` // "connection-string", "sas-url", "memory"
	HasBlobs  bool   `json:"hasBlobs"`
	Message   string `json:"message,omitempty"`
}

// Sentinel errors. Callers match with errors.Is.
var (
	// ErrNotFound means the named object (or the container) is absent.
	// Non-retryable; callers should treat the result as empty.
	ErrNotFound = errors.New("blobstore: not found")

	// ErrAuth means the store rejected the credentials. Fatal until the
	// configuration is fixed.
	ErrAuth = errors.New("blobstore: authentication failed")
)

// TimeoutError reports that a store operation exceeded its deadline.
// Retryable by the caller, typically with a shorter time range.
type TimeoutError struct {
	Op   string // "list", "download", "metadata", "ping"
	Name string // object name, when the operation targets one
}

func (e *TimeoutError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("blobstore: %s %q timed out", e.Op, e.Name)
	}
	return fmt.Sprintf("blobstore: %s timed out", e.Op)
}

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// timeoutOr converts a context deadline expiry into a TimeoutError,
// passing other errors through untouched.
func timeoutOr(ctx context.Context, err error, op, name string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Name: name}
	}
	return err
}
