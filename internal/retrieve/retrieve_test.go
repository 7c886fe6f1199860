package retrieve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OskariKosonen/hunajapannu/internal/blobstore"
	"github.com/OskariKosonen/hunajapannu/internal/config"
	"github.com/OskariKosonen/hunajapannu/internal/metrics"
)

var now = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func testCfg() config.RetrievalConfig {
	return config.RetrievalConfig{
		ListTimeout:     time.Second,
		DownloadTimeout: time.Second,
		MaxTotalBytes:   50 << 20,
		MaxFileBytes:    10 << 20,
		MaxSampleBytes:  1 << 20,
		SampleLines:     50,
		Concurrency:     2,
	}
}

func newRetriever(store blobstore.Store, cfg config.RetrievalConfig, opts ...Option) *Retriever {
	opts = append(opts, WithClock(func() time.Time { return now }))
	return New(store, cfg, opts...)
}

func TestFetchRecentJoinsInRecencyOrder(t *testing.T) {
	store := blobstore.NewMemory()
	store.Put("log-a.json", []byte("oldest"), now.Add(-3*time.Hour))
	store.Put("log-b.json", []byte("middle"), now.Add(-2*time.Hour))
	store.Put("log-c.json", []byte("newest"), now.Add(-1*time.Hour))

	result, err := newRetriever(store, testCfg()).FetchRecent(context.Background(), 24, 10)
	require.NoError(t, err)

	assert.Equal(t, "newest\nmiddle\noldest", result.Content)
	require.Len(t, result.Files, 3)
	assert.Equal(t, "log-c.json", result.Files[0].Name)
	assert.Empty(t, result.Skipped)
}

func TestFetchRecentEmptyWindow(t *testing.T) {
	store := blobstore.NewMemory()
	store.Put("stale.json", []byte("old"), now.Add(-48*time.Hour))

	result, err := newRetriever(store, testCfg()).FetchRecent(context.Background(), 24, 10)
	require.NoError(t, err)
	assert.Empty(t, result.Content)
	assert.Empty(t, result.Files)
}

func TestFetchRecentCutoffIsStrict(t *testing.T) {
	store := blobstore.NewMemory()
	store.Put("edge.json", []byte("x"), now.Add(-24*time.Hour))
	store.Put("inside.json", []byte("y"), now.Add(-23*time.Hour))

	result, err := newRetriever(store, testCfg()).FetchRecent(context.Background(), 24, 10)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "inside.json", result.Files[0].Name)
}

func TestFetchRecentMaxFiles(t *testing.T) {
	store := blobstore.NewMemory()
	for i := 0; i < 8; i++ {
		store.Put(fmt.Sprintf("log-%d.json", i), []byte("x"), now.Add(-time.Duration(i)*time.Minute))
	}

	result, err := newRetriever(store, testCfg()).FetchRecent(context.Background(), 24, 3)
	require.NoError(t, err)
	assert.Len(t, result.Files, 3)
}

func TestFetchRecentSizeBudget(t *testing.T) {
	cfg := testCfg()
	cfg.MaxTotalBytes = 10

	store := blobstore.NewMemory()
	store.Put("log-a.json", []byte("123456"), now.Add(-1*time.Hour)) // 6 bytes
	store.Put("log-b.json", []byte("1234"), now.Add(-2*time.Hour))   // 4 bytes, fills the budget
	store.Put("log-c.json", []byte("12345"), now.Add(-3*time.Hour))  // over budget

	result, err := newRetriever(store, cfg).FetchRecent(context.Background(), 24, 10)
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.Equal(t, "log-a.json", result.Files[0].Name)
	assert.Equal(t, "log-b.json", result.Files[1].Name)
	assert.Equal(t, []string{"log-c.json"}, result.Skipped)
}

// failingStore wraps a Store, failing downloads for selected names.
type failingStore struct {
	blobstore.Store
	fail map[string]error
}

func (f *failingStore) Download(ctx context.Context, name string) ([]byte, error) {
	if err, ok := f.fail[name]; ok {
		return nil, err
	}
	return f.Store.Download(ctx, name)
}

func TestFetchRecentSkipsFailedDownloads(t *testing.T) {
	mem := blobstore.NewMemory()
	mem.Put("good.json", []byte("ok"), now.Add(-1*time.Hour))
	mem.Put("bad.json", []byte("broken"), now.Add(-2*time.Hour))
	store := &failingStore{Store: mem, fail: map[string]error{"bad.json": errors.New("boom")}}

	result, err := newRetriever(store, testCfg()).FetchRecent(context.Background(), 24, 10)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Content)
	assert.Equal(t, []string{"bad.json"}, result.Skipped)
}

func TestFetchRecentAllDownloadsFailed(t *testing.T) {
	mem := blobstore.NewMemory()
	mem.Put("a.json", []byte("x"), now.Add(-1*time.Hour))
	store := &failingStore{Store: mem, fail: map[string]error{"a.json": errors.New("boom")}}

	_, err := newRetriever(store, testCfg()).FetchRecent(context.Background(), 24, 10)
	assert.Error(t, err)
}

func TestFetchRecentTimeoutAborts(t *testing.T) {
	mem := blobstore.NewMemory()
	mem.Put("a.json", []byte("x"), now.Add(-1*time.Hour))
	mem.Put("b.json", []byte("y"), now.Add(-2*time.Hour))
	store := &failingStore{Store: mem, fail: map[string]error{
		"a.json": &blobstore.TimeoutError{Op: "download", Name: "a.json"},
	}}

	_, err := newRetriever(store, testCfg()).FetchRecent(context.Background(), 24, 10)
	require.Error(t, err)
	assert.True(t, blobstore.IsTimeout(err))
}

func TestFetchRecentCountsDownloadedBytes(t *testing.T) {
	store := blobstore.NewMemory()
	store.Put("log-a.json", []byte("abc"), now.Add(-1*time.Hour))
	store.Put("log-b.json", []byte("de"), now.Add(-2*time.Hour))

	before := testutil.ToFloat64(metrics.BytesDownloaded)
	result, err := newRetriever(store, testCfg()).FetchRecent(context.Background(), 24, 10)
	require.NoError(t, err)

	// 5 bytes came off the wire; the join separator is not one of them.
	assert.Equal(t, "abc\nde", result.Content)
	assert.Equal(t, float64(5), testutil.ToFloat64(metrics.BytesDownloaded)-before)
}

func sampleFile(lines int) []byte {
	var sb strings.Builder
	for i := 0; i < lines; i++ {
		fmt.Fprintf(&sb, `{"eventid":"cowrie.session.connect","n":%d}`+"\n", i)
	}
	return []byte(sb.String())
}

func TestFetchSampleKeepsLeadingLines(t *testing.T) {
	cfg := testCfg()
	cfg.SampleLines = 5

	store := blobstore.NewMemory()
	store.Put("log-a.json", sampleFile(20), now.Add(-1*time.Hour))
	store.Put("log-b.json", sampleFile(3), now.Add(-2*time.Hour))

	result, err := newRetriever(store, cfg).FetchSample(context.Background(), 24, 10)
	require.NoError(t, err)

	assert.Equal(t, 23, result.TotalLines)
	assert.Equal(t, 2, result.ProcessedFiles)
	assert.Len(t, result.Files, 2)

	kept := 0
	for _, line := range strings.Split(result.Sample, "\n") {
		if strings.TrimSpace(line) != "" {
			kept++
		}
	}
	assert.Equal(t, 8, kept) // 5 from the first file, 3 from the second
}

func TestFetchSampleCountsDownloadedBytes(t *testing.T) {
	cfg := testCfg()
	cfg.SampleLines = 5

	content := sampleFile(20)
	store := blobstore.NewMemory()
	store.Put("log-a.json", content, now.Add(-time.Hour))

	before := testutil.ToFloat64(metrics.BytesDownloaded)
	result, err := newRetriever(store, cfg).FetchSample(context.Background(), 24, 10)
	require.NoError(t, err)

	// The whole file is downloaded even though only a sample is retained.
	assert.Less(t, len(result.Sample), len(content))
	assert.Equal(t, float64(len(content)), testutil.ToFloat64(metrics.BytesDownloaded)-before)
}

func TestFetchSampleSkipsOversizedFiles(t *testing.T) {
	cfg := testCfg()
	cfg.MaxFileBytes = 100

	store := blobstore.NewMemory()
	store.Put("huge.json", sampleFile(500), now.Add(-1*time.Hour))
	store.Put("small.json", sampleFile(2), now.Add(-2*time.Hour))

	result, err := newRetriever(store, cfg).FetchSample(context.Background(), 24, 10)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "small.json", result.Files[0].Name)
	assert.Equal(t, 2, result.TotalLines)
}

func TestFetchSampleStopsAtSizeLimit(t *testing.T) {
	cfg := testCfg()
	cfg.MaxSampleBytes = 100

	store := blobstore.NewMemory()
	for i := 0; i < 5; i++ {
		store.Put(fmt.Sprintf("log-%d.json", i), sampleFile(10), now.Add(-time.Duration(i+1)*time.Minute))
	}

	result, err := newRetriever(store, cfg).FetchSample(context.Background(), 24, 10)
	require.NoError(t, err)
	// The first file already exceeds the limit, so processing stops there.
	assert.Equal(t, 1, result.ProcessedFiles)
	assert.Equal(t, 10, result.TotalLines)
}

func TestFetchSampleSkipsFailedDownloads(t *testing.T) {
	mem := blobstore.NewMemory()
	mem.Put("good.json", sampleFile(4), now.Add(-1*time.Hour))
	mem.Put("bad.json", sampleFile(4), now.Add(-30*time.Minute))
	store := &failingStore{Store: mem, fail: map[string]error{"bad.json": errors.New("boom")}}

	result, err := newRetriever(store, testCfg()).FetchSample(context.Background(), 24, 10)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "good.json", result.Files[0].Name)
}

func TestDiscoverBySegmentProbing(t *testing.T) {
	store := blobstore.NewMemory()
	store.Put("logs/cowrie.json", []byte("live"), now.Add(-time.Minute))
	store.Put("logs/cowrie.json.2026-08-29", []byte("yesterday"), now.Add(-20*time.Hour))
	store.Put("logs/cowrie.json.2026-08-27", []byte("stale"), now.Add(-70*time.Hour))
	store.Put("logs/unrelated.txt", []byte("noise"), now)

	r := newRetriever(store, testCfg(), WithScheme(Scheme{
		Prefix:  "logs/",
		Live:    "cowrie.json",
		Archive: "cowrie.json.2006-01-02",
	}))

	// 48h window probes the live segment plus two archive days; 2026-08-28
	// is absent and 08-27 is older than the cutoff.
	result, err := r.FetchRecent(context.Background(), 48, 10)
	require.NoError(t, err)
	require.Len(t, result.Files, 2)
	assert.Equal(t, "logs/cowrie.json", result.Files[0].Name)
	assert.Equal(t, "logs/cowrie.json.2026-08-29", result.Files[1].Name)
	assert.Equal(t, "live\nyesterday", result.Content)
}

func TestDiscoverProbingHonorsMaxFiles(t *testing.T) {
	store := blobstore.NewMemory()
	store.Put("cowrie.json", []byte("live"), now.Add(-time.Minute))
	store.Put("cowrie.json.2026-08-30", []byte("today"), now.Add(-2*time.Hour))
	store.Put("cowrie.json.2026-08-29", []byte("yesterday"), now.Add(-20*time.Hour))

	r := newRetriever(store, testCfg(), WithScheme(Scheme{
		Live:    "cowrie.json",
		Archive: "cowrie.json.2006-01-02",
	}))

	result, err := r.FetchRecent(context.Background(), 48, 2)
	require.NoError(t, err)
	require.Len(t, result.Files, 2)
	assert.Equal(t, "cowrie.json", result.Files[0].Name)
	assert.Equal(t, "cowrie.json.2026-08-30", result.Files[1].Name)
}

func TestFetchRecentExpiredContext(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	store := blobstore.NewMemory()
	store.Put("a.json", []byte("x"), now)

	_, err := newRetriever(store, testCfg()).FetchRecent(ctx, 24, 10)
	require.Error(t, err)
	assert.True(t, blobstore.IsTimeout(err))
}
