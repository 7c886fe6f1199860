package geo

import (
	"fmt"
	"net"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oschwald/geoip2-golang"

	"github.com/OskariKosonen/hunajapannu/internal/model"
)

// MaxMind resolves IPs against a local GeoLite2/GeoIP2 City database.
type MaxMind struct {
	reader *geoip2.Reader
}

// OpenMaxMind opens a .mmdb database file.
func OpenMaxMind(path string) (*MaxMind, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geo: open %q: %w", path, err)
	}
	return &MaxMind{reader: reader}, nil
}

func (m *MaxMind) Lookup(ip string) *model.Location {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil
	}
	record, err := m.reader.City(parsed)
	if err != nil || record.Country.IsoCode == "" {
		return nil
	}
	return &model.Location{
		Country:   record.Country.IsoCode,
		City:      record.City.Names["en"],
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
	}
}

// Close releases the database mapping.
func (m *MaxMind) Close() error {
	return m.reader.Close()
}

// Cached wraps a Resolver with an LRU cache. Honeypot traffic repeats the
// same source IPs heavily within a window, so even a small cache removes
// most database reads. Negative results are cached too.
type Cached struct {
	inner Resolver
	cache *lru.Cache[string, *model.Location]
}

// NewCached wraps inner with a cache of the given size. Sizes below 1 fall
// back to 1024.
func NewCached(inner Resolver, size int) *Cached {
	if size < 1 {
		size = 1024
	}
	cache, _ := lru.New[string, *model.Location](size)
	return &Cached{inner: inner, cache: cache}
}

func (c *Cached) Lookup(ip string) *model.Location {
	if loc, ok := c.cache.Get(ip); ok {
		return loc
	}
	loc := c.inner.Lookup(ip)
	c.cache.Add(ip, loc)
	return loc
}
