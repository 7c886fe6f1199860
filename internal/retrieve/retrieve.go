// Package retrieve pulls honeypot log segments out of the blob store under
// strict memory and time budgets. Two strategies are offered: FetchRecent
// downloads whole files concurrently under a cumulative size budget, and
// FetchSample streams files one at a time keeping only a bounded sample.
package retrieve

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/OskariKosonen/hunajapannu/internal/blobstore"
	"github.com/OskariKosonen/hunajapannu/internal/config"
	"github.com/OskariKosonen/hunajapannu/internal/metrics"
	"github.com/OskariKosonen/hunajapannu/internal/model"
)

// Scheme describes how log segments are named in the store. When Live is
// empty, discovery falls back to a flat listing under Prefix.
type Scheme struct {
	Prefix  string
	Live    string // current segment name, e.g. "cowrie.json"
	Archive string // dated archive layout in time.Format syntax, e.g. "cowrie.json.2006-01-02"
}

// Retriever fetches bounded batches of log content. Safe for concurrent use.
type Retriever struct {
	store  blobstore.Store
	cfg    config.RetrievalConfig
	scheme Scheme
	log    *slog.Logger
	now    func() time.Time
}

// Option adjusts a Retriever.
type Option func(*Retriever)

// WithScheme enables live/archive segment probing.
func WithScheme(s Scheme) Option {
	return func(r *Retriever) { r.scheme = s }
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(r *Retriever) { r.log = log }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(r *Retriever) { r.now = now }
}

// New creates a Retriever over the given store.
func New(store blobstore.Store, cfg config.RetrievalConfig, opts ...Option) *Retriever {
	r := &Retriever{
		store: store,
		cfg:   cfg,
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FetchResult is the outcome of FetchRecent.
type FetchResult struct {
	// Content is the concatenated file contents, newline-joined in
	// recency order.
	Content string
	// Files lists the descriptors whose content made it into Content.
	Files []model.BlobDescriptor
	// Skipped names files dropped by the size budget or a failed download.
	Skipped []string
}

// SampleResult is the outcome of FetchSample.
type SampleResult struct {
	// Sample holds the retained lines, newline-joined.
	Sample string
	// TotalLines counts every non-blank line seen across processed files,
	// including lines not retained in Sample.
	TotalLines int
	// Files lists the descriptors actually processed.
	Files []model.BlobDescriptor
	// ProcessedFiles is len(Files); kept separate for the wire shape.
	ProcessedFiles int
}

// FetchRecent downloads the most recent log files modified within the last
// windowHours, at most maxFiles of them, under the cumulative size budget.
// Individual download failures are skipped; the call errors only when a
// download times out or every selected file fails. An empty window yields
// an empty result, not an error.
func (r *Retriever) FetchRecent(ctx context.Context, windowHours, maxFiles int) (FetchResult, error) {
	candidates, err := r.discover(ctx, windowHours, maxFiles)
	if err != nil {
		return FetchResult{}, err
	}
	if len(candidates) == 0 {
		r.log.Info("no log files in window", "windowHours", windowHours)
		return FetchResult{}, nil
	}

	var result FetchResult
	selected, dropped := budget(candidates, r.cfg.MaxTotalBytes)
	for _, d := range dropped {
		result.Skipped = append(result.Skipped, d.Name)
	}
	if len(dropped) > 0 {
		r.log.Warn("size budget reduced file count",
			"selected", len(selected), "dropped", len(dropped), "budgetBytes", r.cfg.MaxTotalBytes)
	}

	contents, err := r.downloadAll(ctx, selected)
	if err != nil {
		return FetchResult{}, err
	}

	var parts []string
	var downloaded int64
	failures := 0
	for i, d := range selected {
		if contents[i] == nil {
			result.Skipped = append(result.Skipped, d.Name)
			failures++
			continue
		}
		downloaded += int64(len(contents[i]))
		parts = append(parts, string(contents[i]))
		result.Files = append(result.Files, d)
	}
	if failures == len(selected) {
		return FetchResult{}, errors.New("retrieve: all downloads failed")
	}
	result.Content = strings.Join(parts, "\n")

	metrics.FilesFetched.Add(float64(len(result.Files)))
	metrics.BytesDownloaded.Add(float64(downloaded))
	r.log.Info("fetched recent logs",
		"files", len(result.Files), "skipped", len(result.Skipped), "bytes", len(result.Content))
	return result, nil
}

// FetchSample processes recent files one at a time, keeping only the first
// SampleLines lines of each and stopping once the combined sample exceeds
// MaxSampleBytes. Files over MaxFileBytes are skipped outright. Per-file
// download failures are logged and skipped.
func (r *Retriever) FetchSample(ctx context.Context, windowHours, maxFiles int) (SampleResult, error) {
	candidates, err := r.discover(ctx, windowHours, maxFiles)
	if err != nil {
		return SampleResult{}, err
	}

	var result SampleResult
	var downloaded int64
	var sb strings.Builder
	for _, d := range candidates {
		if err := ctx.Err(); err != nil {
			return SampleResult{}, err
		}
		if d.Size > r.cfg.MaxFileBytes {
			r.log.Warn("skipping oversized file", "name", d.Name, "size", d.Size)
			continue
		}

		content, err := r.download(ctx, d.Name)
		if err != nil {
			r.log.Warn("skipping failed download", "name", d.Name, "error", err)
			continue
		}

		downloaded += int64(len(content))
		lines := nonBlankLines(string(content))
		result.TotalLines += len(lines)
		keep := lines
		if len(keep) > r.cfg.SampleLines {
			keep = keep[:r.cfg.SampleLines]
		}
		sb.WriteString(strings.Join(keep, "\n"))
		sb.WriteString("\n")

		result.Files = append(result.Files, d)
		if int64(sb.Len()) > r.cfg.MaxSampleBytes {
			r.log.Info("sample size limit reached", "bytes", sb.Len())
			break
		}
	}
	result.Sample = sb.String()
	result.ProcessedFiles = len(result.Files)

	metrics.FilesFetched.Add(float64(result.ProcessedFiles))
	metrics.BytesDownloaded.Add(float64(downloaded))
	return result, nil
}

// discover returns the recency-ordered candidates for a window, by segment
// probing when a scheme is configured and by flat listing otherwise.
func (r *Retriever) discover(ctx context.Context, windowHours, maxFiles int) ([]model.BlobDescriptor, error) {
	if maxFiles <= 0 {
		maxFiles = 1
	}
	cutoff := r.now().Add(-time.Duration(windowHours) * time.Hour)

	if r.scheme.Live != "" {
		return r.probeSegments(ctx, windowHours, maxFiles, cutoff)
	}

	listCtx, cancel := context.WithTimeout(ctx, r.cfg.ListTimeout)
	defer cancel()
	all, err := r.store.List(listCtx, r.scheme.Prefix, maxFiles)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].LastModified.After(all[j].LastModified)
	})

	var recent []model.BlobDescriptor
	for _, d := range all {
		if !d.LastModified.After(cutoff) {
			continue
		}
		recent = append(recent, d)
		if len(recent) == maxFiles {
			break
		}
	}
	return recent, nil
}

// probeSegments checks the live segment first, then dated archive segments
// walking calendar days backward far enough to cover the window. A missing
// or failing probe is skipped, not fatal.
func (r *Retriever) probeSegments(ctx context.Context, windowHours, maxFiles int, cutoff time.Time) ([]model.BlobDescriptor, error) {
	days := (windowHours + 23) / 24

	names := []string{r.scheme.Prefix + r.scheme.Live}
	if r.scheme.Archive != "" {
		day := r.now().UTC()
		for i := 0; i < days; i++ {
			names = append(names, r.scheme.Prefix+day.Format(r.scheme.Archive))
			day = day.AddDate(0, 0, -1)
		}
	}

	var found []model.BlobDescriptor
	for _, name := range names {
		if len(found) == maxFiles {
			break
		}
		probeCtx, cancel := context.WithTimeout(ctx, r.cfg.ListTimeout)
		d, err := r.store.Metadata(probeCtx, name)
		cancel()
		if err != nil {
			if !errors.Is(err, blobstore.ErrNotFound) {
				r.log.Warn("segment probe failed", "name", name, "error", err)
			}
			continue
		}
		if !d.LastModified.After(cutoff) {
			continue
		}
		found = append(found, d)
	}
	return found, nil
}

// downloadAll fetches the given files with fixed fan-out. The returned slice
// is parallel to files; a nil entry marks a failed download. A timeout on
// any file aborts the whole batch.
func (r *Retriever) downloadAll(ctx context.Context, files []model.BlobDescriptor) ([][]byte, error) {
	contents := make([][]byte, len(files))
	errs := make([]error, len(files))

	workers := r.cfg.Concurrency
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, d := range files {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			content, err := r.download(ctx, name)
			if err != nil {
				errs[i] = err
				return
			}
			contents[i] = content
		}(i, d.Name)
	}
	wg.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		if blobstore.IsTimeout(err) {
			return nil, err
		}
		r.log.Warn("download failed", "name", files[i].Name, "error", err)
	}
	return contents, nil
}

func (r *Retriever) download(ctx context.Context, name string) ([]byte, error) {
	dlCtx, cancel := context.WithTimeout(ctx, r.cfg.DownloadTimeout)
	defer cancel()
	return r.store.Download(dlCtx, name)
}

// budget selects the longest prefix of files whose cumulative size stays
// within maxBytes, returning the selection and the dropped remainder.
func budget(files []model.BlobDescriptor, maxBytes int64) (selected, dropped []model.BlobDescriptor) {
	if maxBytes <= 0 {
		return files, nil
	}
	var total int64
	for i, d := range files {
		if total+d.Size > maxBytes {
			return files[:i], files[i:]
		}
		total += d.Size
	}
	return files, nil
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
