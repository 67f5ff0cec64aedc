package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "PEXELS_API_KEY", "TIKTOK_SESSION_ID",
		"YOUTUBE_CLIENT_ID", "YOUTUBE_CLIENT_SECRET", "YOUTUBE_REFRESH_TOKEN",
		"AIRTABLE_API_KEY", "AIRTABLE_BASE_ID", "DATA_ROOT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Posting.MaxPostsPerDay != 8 {
		t.Errorf("MaxPostsPerDay = %d, want 8", cfg.Posting.MaxPostsPerDay)
	}
	if cfg.Posting.CaptionTemplate != "{quote}\n\n{hashtags}" {
		t.Errorf("CaptionTemplate = %q", cfg.Posting.CaptionTemplate)
	}
	if cfg.AI.Model != "gemini-2.5-flash" {
		t.Errorf("Model = %q, want gemini-2.5-flash", cfg.AI.Model)
	}
	if cfg.AI.MaxOutputTokens != 400 {
		t.Errorf("MaxOutputTokens = %d, want 400", cfg.AI.MaxOutputTokens)
	}
	if cfg.AI.MaxCostUSD != 0.75 {
		t.Errorf("MaxCostUSD = %f, want 0.75", cfg.AI.MaxCostUSD)
	}
	if cfg.Paths.StateFile != filepath.Join("data", "state.json") {
		t.Errorf("StateFile = %q", cfg.Paths.StateFile)
	}
	if cfg.Schedule.Cron != "0 0 */3 * * *" {
		t.Errorf("Cron = %q", cfg.Schedule.Cron)
	}
	if cfg.YouTubeEnabled() || cfg.AirtableEnabled() {
		t.Error("credential-gated features enabled with no credentials")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearCredentialEnv(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	yaml := `
paths:
  base_dir: /srv/poster
posting:
  max_posts_per_day: 3
  hashtags: ["#grind"]
ai:
  max_cost_usd: 0.10
`
	if err := os.WriteFile(configPath, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Posting.MaxPostsPerDay != 3 {
		t.Errorf("MaxPostsPerDay = %d, want 3", cfg.Posting.MaxPostsPerDay)
	}
	if len(cfg.Posting.Hashtags) != 1 || cfg.Posting.Hashtags[0] != "#grind" {
		t.Errorf("Hashtags = %v, want [#grind]", cfg.Posting.Hashtags)
	}
	if cfg.AI.MaxCostUSD != 0.10 {
		t.Errorf("MaxCostUSD = %f, want 0.10", cfg.AI.MaxCostUSD)
	}
	// Unset values still pick up defaults relative to the configured base.
	if cfg.Paths.VideosDir != filepath.Join("/srv/poster", "videos") {
		t.Errorf("VideosDir = %q", cfg.Paths.VideosDir)
	}
	if cfg.AI.Model != "gemini-2.5-flash" {
		t.Errorf("Model = %q, defaults should fill unset fields", cfg.AI.Model)
	}
}

func TestLoadZeroCostCeilingGetsDefault(t *testing.T) {
	clearCredentialEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
ai:
  max_cost_usd: 0
`
	if err := os.WriteFile(configPath, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	// Zero is treated as unset; disabling generation is done by omitting
	// the API key, not by a zero budget.
	if cfg.AI.MaxCostUSD != 0.75 {
		t.Errorf("MaxCostUSD = %f, want the 0.75 default", cfg.AI.MaxCostUSD)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("GEMINI_API_KEY", "gem-123")
	t.Setenv("YOUTUBE_CLIENT_ID", "cid")
	t.Setenv("YOUTUBE_CLIENT_SECRET", "secret")
	t.Setenv("YOUTUBE_REFRESH_TOKEN", "refresh")
	t.Setenv("DATA_ROOT", "/var/lib/poster")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.AI.GeminiAPIKey != "gem-123" {
		t.Errorf("GeminiAPIKey = %q, want env value", cfg.AI.GeminiAPIKey)
	}
	if !cfg.YouTubeEnabled() {
		t.Error("YouTubeEnabled() = false with full OAuth env")
	}
	if cfg.Paths.BaseDir != "/var/lib/poster" {
		t.Errorf("BaseDir = %q, want DATA_ROOT value", cfg.Paths.BaseDir)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	clearCredentialEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("posting: [not a mapping"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", configPath)

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "Defaults pass",
			mutate: func(c *Config) {},
		},
		{
			name:    "Zero posts per day",
			mutate:  func(c *Config) { c.Posting.MaxPostsPerDay = 0 },
			wantErr: true,
		},
		{
			name:    "Negative cost ceiling",
			mutate:  func(c *Config) { c.AI.MaxCostUSD = -1 },
			wantErr: true,
		},
		{
			name:    "Negative jitter",
			mutate:  func(c *Config) { c.Schedule.JitterMinutes = -1 },
			wantErr: true,
		},
		{
			name:   "Missing credentials are not an error",
			mutate: func(c *Config) { c.AI.GeminiAPIKey = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.applyDefaults()
			tt.mutate(&cfg)
			err := cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDebugJSONHidesSecrets(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()
	cfg.AI.GeminiAPIKey = "super-secret-gemini"
	cfg.Assets.PexelsAPIKey = "super-secret-pexels"
	cfg.Airtable.APIKey = "super-secret-airtable"

	out := cfg.DebugJSON()
	for _, secret := range []string{"super-secret-gemini", "super-secret-pexels", "super-secret-airtable"} {
		if strings.Contains(out, secret) {
			t.Errorf("DebugJSON() leaks secret %q", secret)
		}
	}
	if !strings.Contains(out, `"gemini_configured": true`) {
		t.Error("DebugJSON() missing gemini_configured flag")
	}
}
