package hunajapannu

import (
	"context"
	"sort"

	"github.com/OskariKosonen/hunajapannu/internal/analyze"
	"github.com/OskariKosonen/hunajapannu/internal/blobstore"
	"github.com/OskariKosonen/hunajapannu/internal/metrics"
	"github.com/OskariKosonen/hunajapannu/internal/parse"
	"github.com/OskariKosonen/hunajapannu/internal/retrieve"
	"github.com/OskariKosonen/hunajapannu/internal/validate"
)

// Service is the embeddable analytics engine over one blob store. Stateless
// between calls and safe for concurrent use.
type Service struct {
	store     blobstore.Store
	retriever *retrieve.Retriever
	analyzer  *analyze.Analyzer
	opts      options
}

// Stats describes how much data backed a report.
type Stats struct {
	FilesProcessed int `json:"filesProcessed"`
	TotalLines     int `json:"totalLines"`
}

// New creates a Service over the given store.
func New(store blobstore.Store, opts ...Option) *Service {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	retriever := retrieve.New(store, o.retrieval,
		retrieve.WithScheme(o.scheme),
		retrieve.WithClock(o.clock),
		retrieve.WithLogger(o.log),
	)
	return &Service{
		store:     store,
		retriever: retriever,
		analyzer:  analyze.New(o.resolver, o.rules),
		opts:      o,
	}
}

// RecentEvents fetches and parses recent log content, returning at most
// limit events in file-recency order. Undecodable lines are dropped.
func (s *Service) RecentEvents(ctx context.Context, windowHours, maxFiles, limit int) ([]Event, error) {
	result, err := s.retriever.FetchRecent(ctx, windowHours, maxFiles)
	if err != nil {
		return nil, err
	}
	events := parse.All(result.Content)
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// Analytics fetches recent log content and computes the full analytics
// report. An empty window yields a zero report and zero stats.
func (s *Service) Analytics(ctx context.Context, windowHours, maxFiles int) (AnalyticsReport, Stats, error) {
	result, err := s.retriever.FetchRecent(ctx, windowHours, maxFiles)
	if err != nil {
		return AnalyticsReport{}, Stats{}, err
	}

	events := parse.All(result.Content)
	report := s.analyzer.Analyze(events)
	stats := Stats{
		FilesProcessed: len(result.Files),
		TotalLines:     parse.CountLines(result.Content),
	}
	if dropped := stats.TotalLines - len(events); dropped > 0 {
		metrics.LinesDropped.Add(float64(dropped))
	}
	return report, stats, nil
}

// Validate samples recent log content and checks it against the expected
// line-delimited JSON format. sampleSize bounds the lines inspected.
func (s *Service) Validate(ctx context.Context, windowHours, maxFiles, sampleSize int) (ValidationReport, error) {
	sample, err := s.retriever.FetchSample(ctx, windowHours, maxFiles)
	if err != nil {
		return ValidationReport{}, err
	}
	return validate.Check(sample.Sample, sampleSize), nil
}

// Files lists log files in the store, most recently modified first.
func (s *Service) Files(ctx context.Context, limit int) ([]BlobDescriptor, error) {
	listCtx, cancel := context.WithTimeout(ctx, s.opts.retrieval.ListTimeout)
	defer cancel()

	files, err := s.store.List(listCtx, s.opts.scheme.Prefix, limit)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].LastModified.After(files[j].LastModified)
	})
	return files, nil
}

// Ping verifies store connectivity and credentials.
func (s *Service) Ping(ctx context.Context) (ConnectionStatus, error) {
	pingCtx, cancel := context.WithTimeout(ctx, s.opts.retrieval.ListTimeout)
	defer cancel()
	return s.store.Ping(pingCtx)
}
