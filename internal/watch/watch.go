// Package watch runs the background finding sweeper: it periodically
// samples recent logs, runs the detectors, and pushes findings that have
// not been seen before to the configured alert sinks.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/OskariKosonen/hunajapannu/internal/alert"
	"github.com/OskariKosonen/hunajapannu/internal/analyze"
	"github.com/OskariKosonen/hunajapannu/internal/metrics"
	"github.com/OskariKosonen/hunajapannu/internal/model"
	"github.com/OskariKosonen/hunajapannu/internal/parse"
	"github.com/OskariKosonen/hunajapannu/internal/retrieve"
)

const seenCacheSize = 4096

// Watcher sweeps the store on an interval and delivers fresh findings.
type Watcher struct {
	retriever   *retrieve.Retriever
	analyzer    *analyze.Analyzer
	sink        alert.Sink
	interval    time.Duration
	windowHours int
	maxFiles    int
	log         *slog.Logger
	seen        *lru.Cache[string, struct{}]
}

// New creates a Watcher. interval must be positive; the caller is expected
// to skip construction when sweeping is disabled.
func New(r *retrieve.Retriever, a *analyze.Analyzer, sink alert.Sink, interval time.Duration, windowHours, maxFiles int, log *slog.Logger) (*Watcher, error) {
	seen, err := lru.New[string, struct{}](seenCacheSize)
	if err != nil {
		return nil, fmt.Errorf("watch: seen cache: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		retriever:   r,
		analyzer:    a,
		sink:        sink,
		interval:    interval,
		windowHours: windowHours,
		maxFiles:    maxFiles,
		log:         log,
		seen:        seen,
	}, nil
}

// Run sweeps immediately, then on every interval tick until ctx is
// cancelled. Sweep failures are logged and the loop continues.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.sweep(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Error("sweep failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// sweep samples recent logs, runs the detectors, and delivers findings not
// seen in previous sweeps.
func (w *Watcher) sweep(ctx context.Context) error {
	sample, err := w.retriever.FetchSample(ctx, w.windowHours, w.maxFiles)
	if err != nil {
		return err
	}

	events := parse.All(sample.Sample)
	report := w.analyzer.Analyze(events)
	findings := Flatten(report.AttackPatterns)

	fresh := 0
	for _, f := range findings {
		key := f.Detector + "|" + f.IP + "|" + f.Detail + "|" + f.Timestamp.Format(time.RFC3339)
		if _, ok := w.seen.Get(key); ok {
			continue
		}
		w.seen.Add(key, struct{}{})

		if err := w.sink.Deliver(ctx, f); err != nil {
			w.log.Warn("finding delivery failed", "detector", f.Detector, "ip", f.IP, "error", err)
			continue
		}
		metrics.Findings.WithLabelValues(f.Detector).Inc()
		fresh++
	}

	w.log.Info("sweep complete",
		"files", sample.ProcessedFiles, "events", len(events),
		"findings", len(findings), "fresh", fresh)
	return nil
}

// Flatten converts the detector-specific report structures into the uniform
// alert shape.
func Flatten(p model.AttackPatterns) []model.Finding {
	var findings []model.Finding
	for _, f := range p.BruteForce {
		findings = append(findings, model.Finding{
			Detector:  model.DetectorBruteForce,
			IP:        f.IP,
			Detail:    fmt.Sprintf("%d failed logins within %s", f.FailedAttempts, f.WindowEnd.Sub(f.WindowStart)),
			Timestamp: f.WindowStart,
			Location:  f.Location,
		})
	}
	for _, f := range p.MalwareDownloads {
		findings = append(findings, model.Finding{
			Detector:  model.DetectorMalware,
			IP:        f.IP,
			Detail:    f.URL,
			Timestamp: f.Timestamp,
			Location:  f.Location,
		})
	}
	for _, f := range p.PrivilegeEscalation {
		findings = append(findings, model.Finding{
			Detector:  model.DetectorPrivilegeEscalation,
			IP:        f.IP,
			Detail:    f.Command,
			Timestamp: f.Timestamp,
			Location:  f.Location,
		})
	}
	for _, f := range p.ReconCommands {
		findings = append(findings, model.Finding{
			Detector:  model.DetectorRecon,
			IP:        f.IP,
			Detail:    f.Command,
			Timestamp: f.Timestamp,
			Location:  f.Location,
		})
	}
	return findings
}
