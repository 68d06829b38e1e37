package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the offerpipe pipeline.
type Config struct {
	LLM       LLMConfig
	Enrich    EnrichConfig
	Storage   StorageConfig
	Warehouse WarehouseConfig
}

// LLMConfig targets an OpenAI-compatible chat-completions endpoint.
type LLMConfig struct {
	BaseURL string
	APIKey  string // expanded from env var by Load
	Model   string
	Timeout time.Duration // per-request timeout
	Stream  bool          // request streamed responses and reassemble them
}

// EnrichConfig tunes the batch enrichment orchestrator.
type EnrichConfig struct {
	BatchSize  int           // offers per LLM call
	MaxRetries int           // full re-invocations after the first failure
	BatchDelay time.Duration // pause between batches (upstream rate limits)
	DataOnly   bool          // keep only is_data_profile records when possible
}

// StorageConfig selects and parameterizes the object-storage backend.
type StorageConfig struct {
	Backend   string // "fs" or "minio"
	Root      string // fs: bucket directories live under this path
	Endpoint  string // minio host:port
	AccessKey string
	SecretKey string
	UseSSL    bool

	RawBucket      string // scraper output
	EnrichedBucket string // enrichment output
	CleanedBucket  string // transform output
}

// WarehouseConfig locates the relational warehouse.
type WarehouseConfig struct {
	Path string // sqlite database file
}

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultModel       = "meta-llama/llama-4-scout-17b-16e-instruct"
)

// rawConfig is used for YAML unmarshaling (snake_case fields, durations as strings).
type rawConfig struct {
	LLM struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		Timeout string `yaml:"timeout"`
		Stream  *bool  `yaml:"stream"`
	} `yaml:"llm"`
	Enrich struct {
		BatchSize  int    `yaml:"batch_size"`
		MaxRetries *int   `yaml:"max_retries"`
		BatchDelay string `yaml:"batch_delay"`
		DataOnly   *bool  `yaml:"data_only"`
	} `yaml:"enrich"`
	Storage struct {
		Backend        string `yaml:"backend"`
		Root           string `yaml:"root"`
		Endpoint       string `yaml:"endpoint"`
		AccessKey      string `yaml:"access_key"`
		SecretKey      string `yaml:"secret_key"`
		UseSSL         bool   `yaml:"use_ssl"`
		RawBucket      string `yaml:"raw_bucket"`
		EnrichedBucket string `yaml:"enriched_bucket"`
		CleanedBucket  string `yaml:"cleaned_bucket"`
	} `yaml:"storage"`
	Warehouse struct {
		Path string `yaml:"path"`
	} `yaml:"warehouse"`
}

// Default returns the configuration the pipeline runs with when no config
// file is present. The LLM key is the only thing that cannot be defaulted;
// it is read from GROQ_API_KEY.
func Default() *Config {
	cfg := &Config{
		LLM: LLMConfig{
			BaseURL: defaultGroqBaseURL,
			APIKey:  os.Getenv("GROQ_API_KEY"),
			Model:   defaultModel,
			Timeout: 60 * time.Second,
			Stream:  true,
		},
		Enrich: EnrichConfig{
			BatchSize:  10,
			MaxRetries: 3,
			BatchDelay: 1 * time.Second,
			DataOnly:   true,
		},
		Storage: StorageConfig{
			Backend:        "fs",
			Root:           "data",
			RawBucket:      "webscraping",
			EnrichedBucket: "traitement",
			CleanedBucket:  "ner",
		},
		Warehouse: WarehouseConfig{Path: "offers.db"},
	}
	applyEnvOverrides(cfg)
	return cfg
}

// Load reads and parses the YAML config file at path, overlays it on the
// defaults, applies OFFERPIPE_* env overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand ${VAR} references (API keys, storage credentials).
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()

	if raw.LLM.BaseURL != "" {
		cfg.LLM.BaseURL = raw.LLM.BaseURL
	}
	if raw.LLM.APIKey != "" {
		cfg.LLM.APIKey = raw.LLM.APIKey
	}
	if raw.LLM.Model != "" {
		cfg.LLM.Model = raw.LLM.Model
	}
	if raw.LLM.Timeout != "" {
		cfg.LLM.Timeout, err = time.ParseDuration(raw.LLM.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse llm.timeout %q: %w", raw.LLM.Timeout, err)
		}
	}
	if raw.LLM.Stream != nil {
		cfg.LLM.Stream = *raw.LLM.Stream
	}

	if raw.Enrich.BatchSize != 0 {
		cfg.Enrich.BatchSize = raw.Enrich.BatchSize
	}
	if raw.Enrich.MaxRetries != nil {
		cfg.Enrich.MaxRetries = *raw.Enrich.MaxRetries
	}
	if raw.Enrich.BatchDelay != "" {
		cfg.Enrich.BatchDelay, err = time.ParseDuration(raw.Enrich.BatchDelay)
		if err != nil {
			return nil, fmt.Errorf("parse enrich.batch_delay %q: %w", raw.Enrich.BatchDelay, err)
		}
	}
	if raw.Enrich.DataOnly != nil {
		cfg.Enrich.DataOnly = *raw.Enrich.DataOnly
	}

	if raw.Storage.Backend != "" {
		cfg.Storage.Backend = raw.Storage.Backend
	}
	if raw.Storage.Root != "" {
		cfg.Storage.Root = raw.Storage.Root
	}
	cfg.Storage.Endpoint = raw.Storage.Endpoint
	cfg.Storage.AccessKey = raw.Storage.AccessKey
	cfg.Storage.SecretKey = raw.Storage.SecretKey
	cfg.Storage.UseSSL = raw.Storage.UseSSL
	if raw.Storage.RawBucket != "" {
		cfg.Storage.RawBucket = raw.Storage.RawBucket
	}
	if raw.Storage.EnrichedBucket != "" {
		cfg.Storage.EnrichedBucket = raw.Storage.EnrichedBucket
	}
	if raw.Storage.CleanedBucket != "" {
		cfg.Storage.CleanedBucket = raw.Storage.CleanedBucket
	}

	if raw.Warehouse.Path != "" {
		cfg.Warehouse.Path = raw.Warehouse.Path
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets the three batch knobs be tuned without a config
// file, matching how the pipeline is invoked from schedulers.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OFFERPIPE_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Enrich.BatchSize = n
		}
	}
	if v := os.Getenv("OFFERPIPE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Enrich.MaxRetries = n
		}
	}
	if v := os.Getenv("OFFERPIPE_BATCH_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.Enrich.BatchDelay = d
		}
	}
}

func validate(cfg *Config) error {
	if cfg.Enrich.BatchSize <= 0 {
		return fmt.Errorf("enrich.batch_size must be positive, got %d", cfg.Enrich.BatchSize)
	}
	if cfg.Enrich.MaxRetries < 0 {
		return fmt.Errorf("enrich.max_retries must not be negative, got %d", cfg.Enrich.MaxRetries)
	}
	if cfg.Enrich.BatchDelay < 0 {
		return fmt.Errorf("enrich.batch_delay must not be negative, got %v", cfg.Enrich.BatchDelay)
	}
	switch cfg.Storage.Backend {
	case "fs":
	case "minio":
		if cfg.Storage.Endpoint == "" {
			return fmt.Errorf("storage.endpoint is required when backend is \"minio\"")
		}
		if cfg.Storage.AccessKey == "" || cfg.Storage.SecretKey == "" {
			return fmt.Errorf("storage.access_key and storage.secret_key are required when backend is \"minio\"")
		}
	default:
		return fmt.Errorf("storage.backend must be \"fs\" or \"minio\", got %q", cfg.Storage.Backend)
	}
	return nil
}

// ValidateLLM checks the credentials the enrichment path cannot run
// without. Called by the enrich command before any processing starts.
func (c *Config) ValidateLLM() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required (set it in the config file or via GROQ_API_KEY)")
	}
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	return nil
}
