package hunajapannu

import (
	"github.com/OskariKosonen/hunajapannu/internal/blobstore"
	"github.com/OskariKosonen/hunajapannu/internal/model"
)

// The report and event types live in an internal package so the analytics
// layers can share them; they are aliased here to keep the public API
// self-contained.
type (
	// Event is one parsed honeypot log entry.
	Event = model.Event

	// AnalyticsReport is the full aggregate report.
	AnalyticsReport = model.AnalyticsReport

	// ValidationReport is the log-format validation result.
	ValidationReport = model.ValidationReport

	// BlobDescriptor identifies one stored log file.
	BlobDescriptor = model.BlobDescriptor

	// Location is a resolved geo position for a source IP.
	Location = model.Location

	// ConnectionStatus is the outcome of a store connectivity check.
	ConnectionStatus = blobstore.ConnectionStatus
)
