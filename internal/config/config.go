package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Storage   StorageConfig   `yaml:"storage"`
	Data      DataConfig      `yaml:"data"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Lead      LeadConfig      `yaml:"lead"`
	Session   SessionConfig   `yaml:"session"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// AdminToken protects the admin endpoints. Empty leaves them open,
	// which is only sensible for local development.
	AdminToken string `yaml:"admin_token"`
}

type OpenAIConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	ChatModel   string  `yaml:"chat_model"`
	EmbedModel  string  `yaml:"embed_model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

type DataConfig struct {
	PDFPath   string `yaml:"pdf_path"`
	ImagesDir string `yaml:"images_dir"`
}

type RetrievalConfig struct {
	ChunkSize           int     `yaml:"chunk_size"`
	ChunkOverlap        int     `yaml:"chunk_overlap"`
	TopKText            int     `yaml:"top_k_text"`
	TopKImages          int     `yaml:"top_k_images"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

type LeadConfig struct {
	LowThreshold    float64 `yaml:"low_threshold"`
	MediumThreshold float64 `yaml:"medium_threshold"`
	HighThreshold   float64 `yaml:"high_threshold"`
}

type SessionConfig struct {
	TTL           string `yaml:"ttl"`
	SweepInterval string `yaml:"sweep_interval"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		OpenAI: OpenAIConfig{
			ChatModel:   "gpt-4-turbo-preview",
			EmbedModel:  "text-embedding-3-small",
			Temperature: 0.7,
			MaxTokens:   1000,
		},
		Storage: StorageConfig{
			DataDir: "./data",
		},
		Data: DataConfig{
			PDFPath:   "./data/ABVFinalFloorplans.pdf",
			ImagesDir: "./data/WebP",
		},
		Retrieval: RetrievalConfig{
			ChunkSize:           1000,
			ChunkOverlap:        200,
			TopKText:            5,
			TopKImages:          3,
			SimilarityThreshold: 0.7,
		},
		Lead: LeadConfig{
			LowThreshold:    0.3,
			MediumThreshold: 0.6,
			HighThreshold:   0.8,
		},
		Session: SessionConfig{
			TTL:           "24h",
			SweepInterval: "1h",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional YAML file and environment
// variables. Environment variables (VILLACHAT_*) override file values.
// A missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if cfg.OpenAI.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: OpenAI API key (set VILLACHAT_OPENAI_API_KEY or openai.api_key in %s)", path)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setFloat := func(dst *float64, key string) {
		if v := os.Getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	setString(&cfg.Server.Host, "VILLACHAT_HOST")
	setInt(&cfg.Server.Port, "VILLACHAT_PORT")
	setString(&cfg.Server.AdminToken, "VILLACHAT_ADMIN_TOKEN")
	setString(&cfg.OpenAI.APIKey, "VILLACHAT_OPENAI_API_KEY")
	setString(&cfg.OpenAI.BaseURL, "VILLACHAT_OPENAI_BASE_URL")
	setString(&cfg.OpenAI.ChatModel, "VILLACHAT_CHAT_MODEL")
	setString(&cfg.OpenAI.EmbedModel, "VILLACHAT_EMBED_MODEL")
	setString(&cfg.Storage.DataDir, "VILLACHAT_DATA_DIR")
	setString(&cfg.Data.PDFPath, "VILLACHAT_PDF_PATH")
	setString(&cfg.Data.ImagesDir, "VILLACHAT_IMAGES_DIR")
	setInt(&cfg.Retrieval.TopKText, "VILLACHAT_TOP_K_TEXT")
	setInt(&cfg.Retrieval.TopKImages, "VILLACHAT_TOP_K_IMAGES")
	setFloat(&cfg.Retrieval.SimilarityThreshold, "VILLACHAT_SIMILARITY_THRESHOLD")
	setString(&cfg.Session.TTL, "VILLACHAT_SESSION_TTL")
	setString(&cfg.Log.Level, "VILLACHAT_LOG_LEVEL")
}

func validate(cfg Config) error {
	if cfg.Retrieval.SimilarityThreshold < 0 || cfg.Retrieval.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in [0,1], got %g", cfg.Retrieval.SimilarityThreshold)
	}
	if cfg.Retrieval.ChunkOverlap >= cfg.Retrieval.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)", cfg.Retrieval.ChunkOverlap, cfg.Retrieval.ChunkSize)
	}
	if !(cfg.Lead.LowThreshold <= cfg.Lead.MediumThreshold && cfg.Lead.MediumThreshold <= cfg.Lead.HighThreshold) {
		return fmt.Errorf("lead thresholds must be ordered low <= medium <= high")
	}
	if _, err := cfg.SessionTTL(); err != nil {
		return err
	}
	if _, err := cfg.SweepInterval(); err != nil {
		return err
	}
	return nil
}

// SessionTTL parses the session TTL duration string.
func (c Config) SessionTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Session.TTL)
	if err != nil {
		return 0, fmt.Errorf("parsing session ttl %q: %w", c.Session.TTL, err)
	}
	return d, nil
}

// SweepInterval parses the session sweep interval duration string.
func (c Config) SweepInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Session.SweepInterval)
	if err != nil {
		return 0, fmt.Errorf("parsing session sweep_interval %q: %w", c.Session.SweepInterval, err)
	}
	return d, nil
}
