// Package alert defines the sink interface for delivering attack findings
// to external systems.
package alert

import (
	"context"

	"github.com/OskariKosonen/hunajapannu/internal/model"
)

// Sink is a finding destination. Implementations must be safe for
// concurrent use. Close flushes any buffered findings.
type Sink interface {
	Deliver(ctx context.Context, finding model.Finding) error
	Close() error
}
