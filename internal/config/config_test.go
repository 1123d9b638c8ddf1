package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_DefaultsWithEnvKey(t *testing.T) {
	t.Setenv("VILLACHAT_OPENAI_API_KEY", "sk-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.OpenAI.ChatModel != "gpt-4-turbo-preview" {
		t.Errorf("chat model = %q", cfg.OpenAI.ChatModel)
	}
	if cfg.Retrieval.ChunkSize != 1000 || cfg.Retrieval.ChunkOverlap != 200 {
		t.Errorf("chunking = %d/%d, want 1000/200", cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	}
	if cfg.Retrieval.SimilarityThreshold != 0.7 {
		t.Errorf("similarity threshold = %g, want 0.7", cfg.Retrieval.SimilarityThreshold)
	}
	if ttl, err := cfg.SessionTTL(); err != nil || ttl != 24*time.Hour {
		t.Errorf("session ttl = %v, %v, want 24h", ttl, err)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("VILLACHAT_OPENAI_API_KEY", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "OpenAI API key") {
		t.Errorf("err = %v, want missing API key error", err)
	}
}

func TestLoad_FileValues(t *testing.T) {
	t.Setenv("VILLACHAT_OPENAI_API_KEY", "sk-test")

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: 9100
  admin_token: secret
retrieval:
  top_k_text: 8
session:
  ttl: 2h
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Server.AdminToken != "secret" {
		t.Errorf("admin token = %q", cfg.Server.AdminToken)
	}
	if cfg.Retrieval.TopKText != 8 {
		t.Errorf("top_k_text = %d, want 8", cfg.Retrieval.TopKText)
	}
	if cfg.Retrieval.TopKImages != 3 {
		t.Errorf("top_k_images = %d, want default 3 to survive partial file", cfg.Retrieval.TopKImages)
	}
	if ttl, _ := cfg.SessionTTL(); ttl != 2*time.Hour {
		t.Errorf("session ttl = %v, want 2h", ttl)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("VILLACHAT_OPENAI_API_KEY", "sk-test")
	t.Setenv("VILLACHAT_PORT", "9200")
	t.Setenv("VILLACHAT_SIMILARITY_THRESHOLD", "0.5")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9100\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("port = %d, want env override 9200", cfg.Server.Port)
	}
	if cfg.Retrieval.SimilarityThreshold != 0.5 {
		t.Errorf("similarity threshold = %g, want 0.5", cfg.Retrieval.SimilarityThreshold)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			"threshold out of range",
			"retrieval:\n  similarity_threshold: 1.5\n",
			"similarity_threshold",
		},
		{
			"overlap not smaller than chunk size",
			"retrieval:\n  chunk_size: 100\n  chunk_overlap: 100\n",
			"chunk_overlap",
		},
		{
			"lead thresholds out of order",
			"lead:\n  medium_threshold: 0.9\n",
			"lead thresholds",
		},
		{
			"unparsable ttl",
			"session:\n  ttl: tomorrow\n",
			"session ttl",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("VILLACHAT_OPENAI_API_KEY", "sk-test")
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tc.body), 0o600); err != nil {
				t.Fatal(err)
			}

			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %v, want mention of %q", err, tc.want)
			}
		})
	}
}
