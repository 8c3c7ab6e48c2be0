package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Document Intelligence connection
	Endpoint string
	Key      string

	// Auth for serve mode
	APIKey string

	// Analysis
	ModelID      string
	APIVersion   string
	OutputFormat string

	// Results
	ResultsDir string

	// Polling
	PollInterval   time.Duration
	AnalyzeTimeout time.Duration

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Local checks before upload
	Preflight bool
}

// OutputFormats lists the accepted values for OutputFormat. "default" means
// no outputContentFormat parameter is sent.
var OutputFormats = map[string]bool{
	"default":  true,
	"text":     true,
	"markdown": true,
	"html":     true,
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		Endpoint: os.Getenv("DOCUMENT_INTELLIGENCE_ENDPOINT"),
		Key:      os.Getenv("DOCUMENT_INTELLIGENCE_KEY"),

		APIKey: os.Getenv("LAYOUTPROBE_API_KEY"),

		ModelID:      envOr("MODEL_ID", "prebuilt-layout"),
		APIVersion:   envOr("API_VERSION", "2024-11-30"),
		OutputFormat: envOr("OUTPUT_FORMAT", "default"),

		ResultsDir: envOr("RESULTS_DIR", "results"),

		PollInterval:   envDuration("POLL_INTERVAL", 2*time.Second),
		AnalyzeTimeout: envDuration("ANALYZE_TIMEOUT", 5*time.Minute),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		Preflight: envBool("PREFLIGHT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.AnalyzeTimeout <= 0 {
		cfg.AnalyzeTimeout = 5 * time.Minute
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("DOCUMENT_INTELLIGENCE_ENDPOINT is required")
	}
	if c.Key == "" {
		return fmt.Errorf("DOCUMENT_INTELLIGENCE_KEY is required")
	}
	if !OutputFormats[c.OutputFormat] {
		return fmt.Errorf("invalid OUTPUT_FORMAT %q (want default, text, markdown, or html)", c.OutputFormat)
	}
	return nil
}

// ValidateServe checks the extra requirements of serve mode.
func (c Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("LAYOUTPROBE_API_KEY is required in serve mode")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
