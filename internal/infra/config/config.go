package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	LLM       LLMConfig       `yaml:"llm"`
	QA        QAConfig        `yaml:"qa"`
	Routing   RoutingConfig   `yaml:"routing"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Valkey    ValkeyConfig    `yaml:"valkey"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// LLMConfig contains OpenAI-compatible provider settings. An empty API key is
// a valid runtime state: the service degrades to deterministic fallbacks.
type LLMConfig struct {
	APIKey         string        `yaml:"apiKey"`
	BaseURL        string        `yaml:"baseUrl"`
	Model          string        `yaml:"model"`
	EmbeddingModel string        `yaml:"embeddingModel"`
	Temperature    float32       `yaml:"temperature"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// QAConfig tunes the question answering fallback ladder.
type QAConfig struct {
	SimilarityThreshold float64             `yaml:"similarityThreshold"`
	MaxSources          int                 `yaml:"maxSources"`
	KeywordThreshold    float64             `yaml:"keywordThreshold"`
	KeywordFloor        float64             `yaml:"keywordFloor"`
	AllowScopeWidening  bool                `yaml:"allowScopeWidening"`
	ExtraStopWords      []string            `yaml:"extraStopWords"`
	ExtraSynonyms       map[string][]string `yaml:"extraSynonyms"`
}

// RoutingConfig tunes ticket routing.
type RoutingConfig struct {
	AIEnabled         bool   `yaml:"aiEnabled"`
	DefaultDepartment string `yaml:"defaultDepartment"`
}

// KnowledgeConfig bounds document ingestion.
type KnowledgeConfig struct {
	MaxChunkChars    int   `yaml:"maxChunkChars"`
	OverlapSentences int   `yaml:"overlapSentences"`
	MaxFileBytes     int64 `yaml:"maxFileBytes"`
	VectorDim        int   `yaml:"vectorDim"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig enables the background job queue.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// StorageConfig configures S3-compatible object storage for uploads.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// AuthConfig holds the optional bearer-token settings.
type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_EMBEDDING_MODEL"); v != "" {
		cfg.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_REQUEST_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.RequestTimeout = parsed
		}
	}
	if v := os.Getenv("QA_SIMILARITY_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.QA.SimilarityThreshold = parsed
		}
	}
	if v := os.Getenv("QA_MAX_SOURCES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.QA.MaxSources = parsed
		}
	}
	if v := os.Getenv("QA_ALLOW_SCOPE_WIDENING"); v != "" {
		cfg.QA.AllowScopeWidening = isTruthy(v)
	}
	if v := os.Getenv("ROUTING_AI_ENABLED"); v != "" {
		cfg.Routing.AIEnabled = isTruthy(v)
	}
	if v := os.Getenv("ROUTING_DEFAULT_DEPARTMENT"); v != "" {
		cfg.Routing.DefaultDepartment = v
	}
	if v := os.Getenv("KNOWLEDGE_MAX_CHUNK_CHARS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Knowledge.MaxChunkChars = parsed
		}
	}
	if v := os.Getenv("KNOWLEDGE_OVERLAP_SENTENCES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Knowledge.OverlapSentences = parsed
		}
	}
	if v := os.Getenv("KNOWLEDGE_MAX_FILE_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Knowledge.MaxFileBytes = parsed
		}
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("VALKEY_ENABLED"); v != "" {
		cfg.Valkey.Enabled = isTruthy(v)
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Valkey.Addr = v
	}
	if v := os.Getenv("STORAGE_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := os.Getenv("STORAGE_ACCESS_KEY"); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := os.Getenv("STORAGE_SECRET_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}
	if v := os.Getenv("STORAGE_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := os.Getenv("STORAGE_REGION"); v != "" {
		cfg.Storage.Region = v
	}
	if v := os.Getenv("AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = isTruthy(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = isTruthy(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
}

func isTruthy(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/documents/upload",
				},
			},
		},
		LLM: LLMConfig{
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			Temperature:    0.2,
			RequestTimeout: 30 * time.Second,
		},
		QA: QAConfig{
			SimilarityThreshold: 0.7,
			MaxSources:          5,
			KeywordThreshold:    0.05,
			KeywordFloor:        0.6,
			AllowScopeWidening:  true,
		},
		Routing: RoutingConfig{
			AIEnabled:         true,
			DefaultDepartment: "IT",
		},
		Knowledge: KnowledgeConfig{
			MaxChunkChars:    1000,
			OverlapSentences: 2,
			MaxFileBytes:     10 << 20,
			VectorDim:        1536,
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
			MinConns: 0,
		},
		Valkey: ValkeyConfig{
			Enabled: false,
		},
		Storage: StorageConfig{
			Bucket: "deskhelp-documents",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.LLM.EmbeddingModel) == "" {
		return errors.New("llm.embeddingModel cannot be empty")
	}
	if c.QA.SimilarityThreshold < 0 || c.QA.SimilarityThreshold > 1 {
		return errors.New("qa.similarityThreshold must be within [0,1]")
	}
	if c.QA.MaxSources <= 0 {
		return errors.New("qa.maxSources must be positive")
	}
	if c.QA.KeywordThreshold < 0 || c.QA.KeywordThreshold > 1 {
		return errors.New("qa.keywordThreshold must be within [0,1]")
	}
	if c.QA.KeywordFloor < 0 || c.QA.KeywordFloor > 1 {
		return errors.New("qa.keywordFloor must be within [0,1]")
	}
	if c.Routing.DefaultDepartment == "" {
		return errors.New("routing.defaultDepartment cannot be empty")
	}
	if c.Knowledge.MaxChunkChars <= 0 {
		return errors.New("knowledge.maxChunkChars must be positive")
	}
	if c.Knowledge.OverlapSentences < 0 {
		return errors.New("knowledge.overlapSentences cannot be negative")
	}
	if c.Valkey.Enabled && strings.TrimSpace(c.Valkey.Addr) == "" {
		return errors.New("valkey.addr cannot be empty when the queue is enabled")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
