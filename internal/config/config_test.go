package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PANNU_LISTEN", "PANNU_LOG_LEVEL", "PANNU_LOG_FORMAT",
		"PANNU_SHUTDOWN_TIMEOUT", "PANNU_STORE",
		"PANNU_AZURE_CONNECTION_STRING", "PANNU_AZURE_SAS_URL",
		"PANNU_AZURE_CONTAINER", "PANNU_LOG_PREFIX",
		"PANNU_LIVE_SEGMENT", "PANNU_ARCHIVE_PATTERN",
		"PANNU_LIST_TIMEOUT", "PANNU_DOWNLOAD_TIMEOUT",
		"PANNU_MAX_TOTAL_BYTES", "PANNU_MAX_FILE_BYTES",
		"PANNU_MAX_SAMPLE_BYTES", "PANNU_SAMPLE_LINES",
		"PANNU_DOWNLOAD_CONCURRENCY", "PANNU_GEOIP_DB",
		"PANNU_GEO_CACHE_SIZE", "PANNU_RULES_FILE",
		"PANNU_SWEEP_INTERVAL", "PANNU_SWEEP_WINDOW_HOURS",
		"PANNU_SWEEP_MAX_FILES", "PANNU_ALERT_WEBHOOK_URL",
		"PANNU_NATS_URL", "PANNU_NATS_SUBJECT",
	} {
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Listen != ":8080" {
		t.Fatalf("expected default listen ':8080', got %q", cfg.Listen)
	}
	if cfg.Store.Provider != "azure" {
		t.Fatalf("expected default provider 'azure', got %q", cfg.Store.Provider)
	}
	if cfg.Store.Container != "cowrie-logs" {
		t.Fatalf("expected default container 'cowrie-logs', got %q", cfg.Store.Container)
	}
	if cfg.Retrieval.ListTimeout != 30*time.Second {
		t.Fatalf("expected default list timeout 30s, got %v", cfg.Retrieval.ListTimeout)
	}
	if cfg.Retrieval.DownloadTimeout != 60*time.Second {
		t.Fatalf("expected default download timeout 60s, got %v", cfg.Retrieval.DownloadTimeout)
	}
	if cfg.Retrieval.MaxTotalBytes != 50<<20 {
		t.Fatalf("expected default total budget 50MiB, got %d", cfg.Retrieval.MaxTotalBytes)
	}
	if cfg.Retrieval.MaxFileBytes != 10<<20 {
		t.Fatalf("expected default file ceiling 10MiB, got %d", cfg.Retrieval.MaxFileBytes)
	}
	if cfg.Retrieval.MaxSampleBytes != 1<<20 {
		t.Fatalf("expected default sample budget 1MiB, got %d", cfg.Retrieval.MaxSampleBytes)
	}
	if cfg.Retrieval.SampleLines != 50 {
		t.Fatalf("expected default sample lines 50, got %d", cfg.Retrieval.SampleLines)
	}
	if cfg.Alert.SweepInterval != 0 {
		t.Fatalf("expected sweeper disabled by default, got %v", cfg.Alert.SweepInterval)
	}
	if cfg.Alert.NATSSubject != "hunajapannu.findings" {
		t.Fatalf("expected default NATS subject, got %q", cfg.Alert.NATSSubject)
	}
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	os.Setenv("PANNU_STORE", "memory")
	os.Setenv("PANNU_AZURE_CONTAINER", "honeypot")
	os.Setenv("PANNU_SAMPLE_LINES", "25")
	os.Setenv("PANNU_DOWNLOAD_TIMEOUT", "90s")
	defer clearEnv(t)

	cfg := Load()

	if cfg.Store.Provider != "memory" {
		t.Fatalf("expected provider 'memory', got %q", cfg.Store.Provider)
	}
	if cfg.Store.Container != "honeypot" {
		t.Fatalf("expected container 'honeypot', got %q", cfg.Store.Container)
	}
	if cfg.Retrieval.SampleLines != 25 {
		t.Fatalf("expected 25 sample lines, got %d", cfg.Retrieval.SampleLines)
	}
	if cfg.Retrieval.DownloadTimeout != 90*time.Second {
		t.Fatalf("expected download timeout 90s, got %v", cfg.Retrieval.DownloadTimeout)
	}
}

func validConfig() Config {
	cfg := Config{
		Listen:    ":8080",
		LogFormat: "text",
		Store:     StoreConfig{Provider: "azure", ConnectionString: "DefaultEndpointsProtocol=https;AccountName=x;AccountKey=y", Container: "cowrie-logs"},
		Retrieval: RetrievalConfig{
			ListTimeout:     30 * time.Second,
			DownloadTimeout: 60 * time.Second,
			MaxTotalBytes:   50 << 20,
			MaxFileBytes:    10 << 20,
			MaxSampleBytes:  1 << 20,
			SampleLines:     50,
			Concurrency:     4,
		},
	}
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected nil error for valid config, got: %v", err)
	}
}

func TestValidate_MissingCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Store.ConnectionString = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error when neither connection string nor SAS URL is set")
	}
	if !strings.Contains(err.Error(), "PANNU_AZURE_CONNECTION_STRING") {
		t.Fatalf("expected error to name the missing variables, got: %v", err)
	}
}

func TestValidate_BothCredentialModes(t *testing.T) {
	cfg := validConfig()
	cfg.Store.SASURL = "https://acct.blob.core.windows.net/cowrie-logs?sv=..."
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when both credential modes are set")
	}
}

func TestValidate_MemoryProviderNeedsNoCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Store = StoreConfig{Provider: "memory"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected nil error for memory provider, got: %v", err)
	}
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Provider = "s3"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "provider") {
		t.Fatalf("expected provider error, got: %v", err)
	}
}

func TestValidate_SweepWithoutSink(t *testing.T) {
	cfg := validConfig()
	cfg.Alert.SweepInterval = 5 * time.Minute
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "sink") {
		t.Fatalf("expected sink error, got: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Store.ConnectionString = ""
	cfg.LogFormat = "xml"
	cfg.Retrieval.Concurrency = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for multiple bad fields")
	}
	msg := err.Error()
	for _, want := range []string{"PANNU_AZURE_CONNECTION_STRING", "log format", "concurrency"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected error to mention %q, got: %v", want, msg)
		}
	}
}

func TestGetenvInt(t *testing.T) {
	tests := []struct {
		name     string
		envVal   string
		set      bool
		fallback int
		want     int
	}{
		{"empty uses fallback", "", false, 100, 100},
		{"valid int", "50", true, 100, 50},
		{"zero", "0", true, 100, 0},
		{"invalid falls back", "abc", true, 100, 100},
		{"negative", "-1", true, 100, -1},
	}

	const key = "PANNU_TEST_GETENVINT"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				os.Setenv(key, tt.envVal)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}
			got := getenvInt(key, tt.fallback)
			if got != tt.want {
				t.Errorf("getenvInt(%q, %d) = %d, want %d", tt.envVal, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestGetenvDuration_ZeroDisables(t *testing.T) {
	const key = "PANNU_TEST_GETENVDUR"
	os.Setenv(key, "0")
	defer os.Unsetenv(key)
	if got := getenvDuration(key, 10*time.Second); got != 0 {
		t.Fatalf("expected 0 for %q, got %v", "0", got)
	}
}

func TestVersion_IsSet(t *testing.T) {
	if Version == "" {
		t.Fatal("expected non-empty Version constant")
	}
}
