// Package geo resolves source IPs to locations. Resolution is treated as a
// fast, local, side-effect-free lookup; a nil result means "unknown" and is
// never substituted with a default.
package geo

import "github.com/OskariKosonen/hunajapannu/internal/model"

// Resolver maps an IP address to a location, or nil when unresolvable.
// Implementations must be safe for concurrent use.
type Resolver interface {
	Lookup(ip string) *model.Location
}

// Static is a map-backed Resolver for tests and fixtures.
type Static map[string]model.Location

func (s Static) Lookup(ip string) *model.Location {
	if loc, ok := s[ip]; ok {
		l := loc
		return &l
	}
	return nil
}

// None resolves nothing. Used when no geo database is configured.
type None struct{}

func (None) Lookup(string) *model.Location { return nil }
