package hunajapannu

import (
	"log/slog"
	"time"

	"github.com/OskariKosonen/hunajapannu/internal/analyze"
	"github.com/OskariKosonen/hunajapannu/internal/config"
	"github.com/OskariKosonen/hunajapannu/internal/geo"
	"github.com/OskariKosonen/hunajapannu/internal/retrieve"
)

type options struct {
	resolver  geo.Resolver
	rules     analyze.Rules
	retrieval config.RetrievalConfig
	scheme    retrieve.Scheme
	clock     func() time.Time
	log       *slog.Logger
}

// Option configures a Service.
type Option func(*options)

// WithGeoResolver sets the geo-IP resolver used for report enrichment.
// Default: no resolution.
func WithGeoResolver(r geo.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithRules overrides the analytics rule set (detector keywords, brute-force
// threshold, display labels). Default: analyze.DefaultRules.
func WithRules(r analyze.Rules) Option {
	return func(o *options) { o.rules = r }
}

// WithRetrieval overrides the retrieval budgets and timeouts.
func WithRetrieval(cfg config.RetrievalConfig) Option {
	return func(o *options) { o.retrieval = cfg }
}

// WithScheme enables live/archive segment probing during discovery.
func WithScheme(prefix, live, archive string) Option {
	return func(o *options) {
		o.scheme = retrieve.Scheme{Prefix: prefix, Live: live, Archive: archive}
	}
}

// WithClock overrides the wall clock used for window cutoffs.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// WithLogger sets the logger. Default: slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

func defaultOptions() options {
	return options{
		resolver: geo.None{},
		rules:    analyze.DefaultRules(),
		retrieval: config.RetrievalConfig{
			ListTimeout:     30 * time.Second,
			DownloadTimeout: 60 * time.Second,
			MaxTotalBytes:   50 << 20,
			MaxFileBytes:    10 << 20,
			MaxSampleBytes:  1 << 20,
			SampleLines:     50,
			Concurrency:     4,
		},
		clock: time.Now,
		log:   slog.Default(),
	}
}
