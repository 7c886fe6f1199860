// Package multi fans findings out to several sinks.
package multi

import (
	"context"
	"errors"

	"github.com/OskariKosonen/hunajapannu/internal/alert"
	"github.com/OskariKosonen/hunajapannu/internal/model"
)

// Multi delivers each finding to every wrapped sink sequentially. A failing
// sink does not stop delivery to the rest.
type Multi struct {
	sinks []alert.Sink
}

// New creates a Multi over the given sinks.
func New(sinks ...alert.Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Deliver hands the finding to every sink, collecting errors.
func (m *Multi) Deliver(ctx context.Context, finding model.Finding) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Deliver(ctx, finding); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
