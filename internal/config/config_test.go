package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
	"time"

	"github.com/nao1215/wordcrawl/internal/parser"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults must be intentional, so they are pinned here.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default MaxDepth is 10", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxDepth != 10 {
			t.Errorf("expected MaxDepth to be 10, got %d", cfg.MaxDepth)
		}
	})

	t.Run("default Timeout is 7 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 7*time.Second {
			t.Errorf("expected Timeout to be 7s, got %v", cfg.Timeout)
		}
	})

	t.Run("default Parallelism is the number of CPUs", func(t *testing.T) {
		t.Parallel()
		if cfg.Parallelism != runtime.NumCPU() {
			t.Errorf("expected Parallelism to be %d, got %d", runtime.NumCPU(), cfg.Parallelism)
		}
	})

	t.Run("default PopularWordCount is 10", func(t *testing.T) {
		t.Parallel()
		if cfg.PopularWordCount != 10 {
			t.Errorf("expected PopularWordCount to be 10, got %d", cfg.PopularWordCount)
		}
	})

	t.Run("default MaxBodySize is 5MB", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxBodySize != 5*1024*1024 {
			t.Errorf("expected MaxBodySize to be 5MB, got %d", cfg.MaxBodySize)
		}
	})

	t.Run("fetch defaults match the parser", func(t *testing.T) {
		t.Parallel()
		if cfg.FetchTimeout != parser.DefaultFetchTimeout {
			t.Errorf("expected FetchTimeout %v, got %v", parser.DefaultFetchTimeout, cfg.FetchTimeout)
		}
		if cfg.MaxBodySize != parser.DefaultMaxBodySize {
			t.Errorf("expected MaxBodySize %d, got %d", int64(parser.DefaultMaxBodySize), cfg.MaxBodySize)
		}
		if cfg.UserAgent != parser.DefaultUserAgent {
			t.Errorf("expected UserAgent %q, got %q", parser.DefaultUserAgent, cfg.UserAgent)
		}
	})

	t.Run("saves to the XDG data directory", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})
}

// TestConfigValidate tests the Validate method, one rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.StartPages = []string{"https://example.com/"}
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("zero depth is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxDepth = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"no start pages", func(c *Config) { c.StartPages = nil }, ErrNoStartPages},
		{"zero parallelism", func(c *Config) { c.Parallelism = 0 }, ErrInvalidParallelism},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, ErrInvalidMaxDepth},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"negative popular word count", func(c *Config) { c.PopularWordCount = -1 }, ErrInvalidPopularWordCount},
		{"zero fetch timeout", func(c *Config) { c.FetchTimeout = 0 }, ErrInvalidFetchTimeout},
		{"zero max body size", func(c *Config) { c.MaxBodySize = 0 }, ErrInvalidMaxBodySize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.wordcrawl")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".wordcrawl")
		content := `startPages:
  - https://example.com/
ignoredUrls:
  - "https://example\\.com/private/.*"
ignoredWords:
  - "^.{1,3}$"
parallelism: 4
maxDepth: 0
timeoutSeconds: 2.5
popularWordCount: 5
fetchTimeout: 3s
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		file, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		if err := file.ApplyTo(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !slices.Equal(cfg.StartPages, []string{"https://example.com/"}) {
			t.Errorf("unexpected start pages %v", cfg.StartPages)
		}
		if len(cfg.IgnoredURLs) != 1 || cfg.IgnoredURLs[0] != `https://example\.com/private/.*` {
			t.Errorf("unexpected ignored urls %v", cfg.IgnoredURLs)
		}
		if cfg.Parallelism != 4 {
			t.Errorf("expected parallelism 4, got %d", cfg.Parallelism)
		}
		if cfg.MaxDepth != 0 {
			t.Errorf("expected explicit zero depth to be applied, got %d", cfg.MaxDepth)
		}
		if cfg.Timeout != 2500*time.Millisecond {
			t.Errorf("expected timeout 2.5s, got %v", cfg.Timeout)
		}
		if cfg.PopularWordCount != 5 {
			t.Errorf("expected popular word count 5, got %d", cfg.PopularWordCount)
		}
		if cfg.FetchTimeout != 3*time.Second {
			t.Errorf("expected fetch timeout 3s, got %v", cfg.FetchTimeout)
		}
		if cfg.UserAgent != DefaultUserAgent {
			t.Errorf("expected absent key to keep default, got %q", cfg.UserAgent)
		}
	})

	t.Run("loads JSON crawl config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "crawl.json")
		content := `{
  "startPages": ["http://localhost:8080/index.html", "http://localhost:8080/about.html"],
  "ignoredUrls": [],
  "ignoredWords": ["^.{1,3}$"],
  "parallelism": 2,
  "maxDepth": 3,
  "timeoutSeconds": 7,
  "popularWordCount": 3,
  "profileOutputPath": "profile.txt",
  "resultPath": "result.json"
}`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		file, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		if err := file.ApplyTo(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.StartPages) != 2 {
			t.Errorf("expected 2 start pages, got %v", cfg.StartPages)
		}
		if cfg.MaxDepth != 3 || cfg.Parallelism != 2 || cfg.Timeout != 7*time.Second {
			t.Errorf("unexpected crawl options %+v", cfg)
		}
		if cfg.ProfileOutputPath != "profile.txt" || cfg.ResultPath != "result.json" {
			t.Errorf("unexpected output paths %q %q", cfg.ProfileOutputPath, cfg.ResultPath)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".wordcrawl")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("rejects invalid fetch timeout", func(t *testing.T) {
		t.Parallel()

		file := &File{FetchTimeout: "soon"}
		if err := file.ApplyTo(NewConfig()); err == nil {
			t.Error("expected error for invalid duration")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("maxDepth: 1"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("finds file in current directory", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("maxDepth: 1"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		t.Chdir(dir)

		if result := FindConfigFile(""); result != filepath.Join(dir, DefaultConfigFile) {
			t.Errorf("expected config in %s, got %q", dir, result)
		}
	})
}

// TestApplyEnvironment tests environment and dotenv overrides.
// It cannot run in parallel because it modifies the process environment.
func TestApplyEnvironment(t *testing.T) {
	t.Run("reads values from dotenv file", func(t *testing.T) {
		t.Setenv(EnvDBDir, "")
		envFile := filepath.Join(t.TempDir(), ".env")
		content := "WORDCRAWL_USER_AGENT=test-agent\nWORDCRAWL_PROXY=127.0.0.1:9050\n"
		if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		cfg := NewConfig()
		if err := ApplyEnvironment(cfg, envFile); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.UserAgent != "test-agent" {
			t.Errorf("expected user agent from file, got %q", cfg.UserAgent)
		}
		if cfg.ProxyAddress != "127.0.0.1:9050" {
			t.Errorf("expected proxy from file, got %q", cfg.ProxyAddress)
		}
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected empty variable to keep default, got %q", cfg.DBDir)
		}
	})

	t.Run("process environment wins over dotenv file", func(t *testing.T) {
		t.Setenv(EnvUserAgent, "from-env")
		t.Setenv(EnvDBDir, "/tmp/wordcrawl-db")

		envFile := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envFile, []byte("WORDCRAWL_USER_AGENT=from-file\n"), 0600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		cfg := NewConfig()
		if err := ApplyEnvironment(cfg, envFile); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.UserAgent != "from-env" {
			t.Errorf("expected user agent from environment, got %q", cfg.UserAgent)
		}
		if cfg.DBDir != "/tmp/wordcrawl-db" {
			t.Errorf("expected db dir from environment, got %q", cfg.DBDir)
		}
	})

	t.Run("missing dotenv file is ignored", func(t *testing.T) {
		cfg := NewConfig()
		if err := ApplyEnvironment(cfg, filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestXDGDataDir tests the XDG data directory.
func TestXDGDataDir(t *testing.T) {
	t.Parallel()

	dir := XDGDataDir()
	if filepath.Base(dir) != AppName {
		t.Errorf("expected directory named %s, got %q", AppName, dir)
	}
}
