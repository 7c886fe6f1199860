package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Version is the hunajapannu release version.
const Version = "0.2.0"

// Config holds all hunajapannu configuration.
type Config struct {
	Listen          string
	LogLevel        string
	LogFormat       string // "text" or "json"
	ShutdownTimeout time.Duration
	Store           StoreConfig
	Retrieval       RetrievalConfig
	Geo             GeoConfig
	RulesPath       string // optional YAML detector/label overrides
	Alert           AlertConfig
}

// StoreConfig holds blob store connection settings.
type StoreConfig struct {
	Provider         string // "azure" or "memory" (local development)
	ConnectionString string
	SASURL           string
	Container        string
	Prefix           string
	LiveSegment      string // name of the live log segment, e.g. "cowrie.json"
	ArchivePattern   string // dated archive name layout, e.g. "cowrie.json.2006-01-02"
}

// RetrievalConfig holds the bounded retriever's budgets.
type RetrievalConfig struct {
	ListTimeout     time.Duration
	DownloadTimeout time.Duration
	MaxTotalBytes   int64 // cumulative download budget
	MaxFileBytes    int64 // streaming variant: skip files larger than this
	MaxSampleBytes  int64 // streaming variant: stop once sample exceeds this
	SampleLines     int   // streaming variant: lines retained per file
	Concurrency     int   // parallel download fan-out
}

// GeoConfig holds geo-IP resolution settings.
type GeoConfig struct {
	DatabasePath string // MaxMind .mmdb path; empty disables resolution
	CacheSize    int
}

// AlertConfig holds the optional finding sweeper and its sinks.
// A zero SweepInterval disables the sweeper.
type AlertConfig struct {
	SweepInterval time.Duration
	WindowHours   int
	MaxFiles      int
	WebhookURL    string
	NATSURL       string
	NATSSubject   string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Listen:          getenv("PANNU_LISTEN", ":8080"),
		LogLevel:        getenv("PANNU_LOG_LEVEL", "info"),
		LogFormat:       getenv("PANNU_LOG_FORMAT", "text"),
		ShutdownTimeout: getenvDuration("PANNU_SHUTDOWN_TIMEOUT", 10*time.Second),
		Store: StoreConfig{
			Provider:         getenv("PANNU_STORE", "azure"),
			ConnectionString: os.Getenv("PANNU_AZURE_CONNECTION_STRING"),
			SASURL:           os.Getenv("PANNU_AZURE_SAS_URL"),
			Container:        getenv("PANNU_AZURE_CONTAINER", "cowrie-logs"),
			Prefix:           os.Getenv("PANNU_LOG_PREFIX"),
			LiveSegment:      os.Getenv("PANNU_LIVE_SEGMENT"),
			ArchivePattern:   os.Getenv("PANNU_ARCHIVE_PATTERN"),
		},
		Retrieval: RetrievalConfig{
			ListTimeout:     getenvDuration("PANNU_LIST_TIMEOUT", 30*time.Second),
			DownloadTimeout: getenvDuration("PANNU_DOWNLOAD_TIMEOUT", 60*time.Second),
			MaxTotalBytes:   getenvInt64("PANNU_MAX_TOTAL_BYTES", 50<<20),
			MaxFileBytes:    getenvInt64("PANNU_MAX_FILE_BYTES", 10<<20),
			MaxSampleBytes:  getenvInt64("PANNU_MAX_SAMPLE_BYTES", 1<<20),
			SampleLines:     getenvInt("PANNU_SAMPLE_LINES", 50),
			Concurrency:     getenvInt("PANNU_DOWNLOAD_CONCURRENCY", 4),
		},
		Geo: GeoConfig{
			DatabasePath: os.Getenv("PANNU_GEOIP_DB"),
			CacheSize:    getenvInt("PANNU_GEO_CACHE_SIZE", 4096),
		},
		RulesPath: os.Getenv("PANNU_RULES_FILE"),
		Alert: AlertConfig{
			SweepInterval: getenvDuration("PANNU_SWEEP_INTERVAL", 0),
			WindowHours:   getenvInt("PANNU_SWEEP_WINDOW_HOURS", 24),
			MaxFiles:      getenvInt("PANNU_SWEEP_MAX_FILES", 5),
			WebhookURL:    os.Getenv("PANNU_ALERT_WEBHOOK_URL"),
			NATSURL:       os.Getenv("PANNU_NATS_URL"),
			NATSSubject:   getenv("PANNU_NATS_SUBJECT", "hunajapannu.findings"),
		},
	}
}

// Validate checks the loaded configuration for contradictions. All problems
// are reported in one pass.
func (c Config) Validate() error {
	var errs []error

	switch c.Store.Provider {
	case "azure":
		if c.Store.ConnectionString == "" && c.Store.SASURL == "" {
			errs = append(errs, errors.New("config: azure store requires PANNU_AZURE_CONNECTION_STRING or PANNU_AZURE_SAS_URL"))
		}
		if c.Store.ConnectionString != "" && c.Store.SASURL != "" {
			errs = append(errs, errors.New("config: set only one of PANNU_AZURE_CONNECTION_STRING and PANNU_AZURE_SAS_URL"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("config: unknown store provider %q (want azure or memory)", c.Store.Provider))
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log format %q (want text or json)", c.LogFormat))
	}

	if c.Retrieval.ListTimeout <= 0 {
		errs = append(errs, errors.New("config: list timeout must be positive"))
	}
	if c.Retrieval.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("config: download timeout must be positive"))
	}
	if c.Retrieval.Concurrency < 1 {
		errs = append(errs, errors.New("config: download concurrency must be at least 1"))
	}
	if c.Retrieval.SampleLines < 1 {
		errs = append(errs, errors.New("config: sample lines must be at least 1"))
	}

	if c.Alert.SweepInterval > 0 && c.Alert.WebhookURL == "" && c.Alert.NATSURL == "" {
		errs = append(errs, errors.New("config: sweep interval set but no alert sink configured"))
	}
	if c.Alert.SweepInterval < 0 {
		errs = append(errs, errors.New("config: sweep interval must not be negative"))
	}

	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getenvInt reads an integer env var, falling back on empty or unparseable values.
func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

// getenvDuration reads a duration env var ("30s", "5m"). A bare "0" disables
// the setting. Unparseable values fall back.
func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if v == "0" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
