package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Paths      PathsConfig      `yaml:"paths"`
	Posting    PostingConfig    `yaml:"posting"`
	AI         AIConfig         `yaml:"ai"`
	Assets     AssetsConfig     `yaml:"assets"`
	Publish    PublishConfig    `yaml:"publish"`
	Fonts      FontsConfig      `yaml:"fonts"`
	Airtable   AirtableConfig   `yaml:"airtable"`
	Email      EmailConfig      `yaml:"email"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

type PathsConfig struct {
	BaseDir           string `yaml:"base_dir"`
	VideosDir         string `yaml:"videos_dir"`
	MusicDir          string `yaml:"music_dir"`
	FontsDir          string `yaml:"fonts_dir"`
	FeaturedImagesDir string `yaml:"featured_images_dir"`
	InlineImagesDir   string `yaml:"inline_images_dir"`
	OutputDir         string `yaml:"output_dir"`
	BackupsDir        string `yaml:"backups_dir"`
	StateFile         string `yaml:"state_file"`
}

type PostingConfig struct {
	MaxPostsPerDay  int      `yaml:"max_posts_per_day"`
	CaptionTemplate string   `yaml:"caption_template"`
	Hashtags        []string `yaml:"hashtags"`
	SEOKeywords     []string `yaml:"seo_keywords"`
}

type AIConfig struct {
	GeminiAPIKey    string  `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model           string  `yaml:"model"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	MaxCostUSD      float64 `yaml:"max_cost_usd"`
}

type AssetsConfig struct {
	PexelsAPIKey string `yaml:"pexels_api_key" env:"PEXELS_API_KEY"`
	FetchQuery   string `yaml:"fetch_query"`
	FetchCount   int    `yaml:"fetch_count"`
}

type PublishConfig struct {
	TikTokSessionID     string `yaml:"tiktok_session_id" env:"TIKTOK_SESSION_ID"`
	YouTubeClientID     string `yaml:"youtube_client_id" env:"YOUTUBE_CLIENT_ID"`
	YouTubeClientSecret string `yaml:"youtube_client_secret" env:"YOUTUBE_CLIENT_SECRET"`
	YouTubeRefreshToken string `yaml:"youtube_refresh_token" env:"YOUTUBE_REFRESH_TOKEN"`
	YouTubeCategoryID   string `yaml:"youtube_category_id"`
	YouTubePrivacy      string `yaml:"youtube_privacy"`
}

type FontsConfig struct {
	GoogleFontFamily string `yaml:"google_font_family"`
	GoogleFontWeight string `yaml:"google_font_weight"`
}

type AirtableConfig struct {
	APIKey    string `yaml:"api_key" env:"AIRTABLE_API_KEY"`
	BaseID    string `yaml:"base_id" env:"AIRTABLE_BASE_ID"`
	TableName string `yaml:"table_name"`
}

type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username" env:"EMAIL_USERNAME"`
	Password   string `yaml:"password" env:"EMAIL_PASSWORD"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

type ScheduleConfig struct {
	Cron             string `yaml:"cron"`
	JitterMinutes    int    `yaml:"jitter_minutes"`
	StartImmediately bool   `yaml:"start_immediately"`
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		// No config file is fine - defaults plus env cover everything
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.AI.GeminiAPIKey == "" {
		c.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Assets.PexelsAPIKey == "" {
		c.Assets.PexelsAPIKey = os.Getenv("PEXELS_API_KEY")
	}
	if c.Publish.TikTokSessionID == "" {
		c.Publish.TikTokSessionID = os.Getenv("TIKTOK_SESSION_ID")
	}
	if c.Publish.YouTubeClientID == "" {
		c.Publish.YouTubeClientID = os.Getenv("YOUTUBE_CLIENT_ID")
	}
	if c.Publish.YouTubeClientSecret == "" {
		c.Publish.YouTubeClientSecret = os.Getenv("YOUTUBE_CLIENT_SECRET")
	}
	if c.Publish.YouTubeRefreshToken == "" {
		c.Publish.YouTubeRefreshToken = os.Getenv("YOUTUBE_REFRESH_TOKEN")
	}
	if c.Airtable.APIKey == "" {
		c.Airtable.APIKey = os.Getenv("AIRTABLE_API_KEY")
	}
	if c.Airtable.BaseID == "" {
		c.Airtable.BaseID = os.Getenv("AIRTABLE_BASE_ID")
	}
	if c.Email.Username == "" {
		c.Email.Username = os.Getenv("EMAIL_USERNAME")
	}
	if c.Email.Password == "" {
		c.Email.Password = os.Getenv("EMAIL_PASSWORD")
	}
	if c.Paths.BaseDir == "" {
		c.Paths.BaseDir = os.Getenv("DATA_ROOT")
	}
}

func (c *Config) applyDefaults() {
	if c.Paths.BaseDir == "" {
		c.Paths.BaseDir = "data"
	}
	base := c.Paths.BaseDir
	if c.Paths.VideosDir == "" {
		c.Paths.VideosDir = filepath.Join(base, "videos")
	}
	if c.Paths.MusicDir == "" {
		c.Paths.MusicDir = filepath.Join(base, "music")
	}
	if c.Paths.FontsDir == "" {
		c.Paths.FontsDir = filepath.Join(base, "fonts")
	}
	if c.Paths.FeaturedImagesDir == "" {
		c.Paths.FeaturedImagesDir = filepath.Join(base, "featured")
	}
	if c.Paths.InlineImagesDir == "" {
		c.Paths.InlineImagesDir = filepath.Join(base, "inline")
	}
	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = filepath.Join(base, "output")
	}
	if c.Paths.BackupsDir == "" {
		c.Paths.BackupsDir = filepath.Join(base, "backups")
	}
	if c.Paths.StateFile == "" {
		c.Paths.StateFile = filepath.Join(base, "state.json")
	}

	if c.Posting.MaxPostsPerDay == 0 {
		c.Posting.MaxPostsPerDay = 8
	}
	if c.Posting.CaptionTemplate == "" {
		c.Posting.CaptionTemplate = "{quote}\n\n{hashtags}"
	}
	if len(c.Posting.Hashtags) == 0 {
		c.Posting.Hashtags = []string{"#motivation", "#inspiration", "#mindset", "#dailyquote"}
	}
	if len(c.Posting.SEOKeywords) == 0 {
		c.Posting.SEOKeywords = []string{"motivation", "success", "inspiration", "life lessons"}
	}

	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.AI.MaxOutputTokens == 0 {
		c.AI.MaxOutputTokens = 400
	}
	// A zero ceiling is indistinguishable from "unset" here and gets the
	// default. To disable paid generation entirely, omit GEMINI_API_KEY
	// instead of configuring a zero budget.
	if c.AI.MaxCostUSD == 0 {
		c.AI.MaxCostUSD = 0.75
	}

	if c.Assets.FetchQuery == "" {
		c.Assets.FetchQuery = "motivation inspiration"
	}
	if c.Assets.FetchCount == 0 {
		c.Assets.FetchCount = 3
	}

	if c.Publish.YouTubeCategoryID == "" {
		c.Publish.YouTubeCategoryID = "22" // People & Blogs
	}
	if c.Publish.YouTubePrivacy == "" {
		c.Publish.YouTubePrivacy = "public"
	}

	if c.Fonts.GoogleFontFamily == "" {
		c.Fonts.GoogleFontFamily = "Poppins"
	}
	if c.Fonts.GoogleFontWeight == "" {
		c.Fonts.GoogleFontWeight = "600"
	}

	if c.Airtable.TableName == "" {
		c.Airtable.TableName = "tiktok posts"
	}

	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}

	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 0 */3 * * *" // Every 3 hours
	}
	if c.Schedule.JitterMinutes == 0 {
		c.Schedule.JitterMinutes = 5
	}

	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8080
	}
}

// Missing credentials are deliberate degraded modes, not errors: no Gemini
// key means local fallback quotes, no session means simulated uploads.
func (c *Config) validate() error {
	if c.Posting.MaxPostsPerDay < 1 {
		return fmt.Errorf("posting.max_posts_per_day must be at least 1, got %d", c.Posting.MaxPostsPerDay)
	}
	if c.AI.MaxOutputTokens < 1 {
		return fmt.Errorf("ai.max_output_tokens must be positive, got %d", c.AI.MaxOutputTokens)
	}
	if c.AI.MaxCostUSD < 0 {
		return fmt.Errorf("ai.max_cost_usd must not be negative, got %f", c.AI.MaxCostUSD)
	}
	if c.Schedule.JitterMinutes < 0 {
		return fmt.Errorf("schedule.jitter_minutes must not be negative, got %d", c.Schedule.JitterMinutes)
	}
	return nil
}

// EnsureDirs creates every configured directory so a fresh deployment can
// run without manual setup.
func (c *Config) EnsureDirs() error {
	dirs := []string{
		c.Paths.VideosDir,
		c.Paths.MusicDir,
		c.Paths.FontsDir,
		c.Paths.FeaturedImagesDir,
		c.Paths.InlineImagesDir,
		c.Paths.OutputDir,
		c.Paths.BackupsDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// AirtableEnabled reports whether all three Airtable settings are present.
func (c *Config) AirtableEnabled() bool {
	return c.Airtable.APIKey != "" && c.Airtable.BaseID != "" && c.Airtable.TableName != ""
}

// YouTubeEnabled reports whether the YouTube OAuth credentials are complete.
func (c *Config) YouTubeEnabled() bool {
	return c.Publish.YouTubeClientID != "" &&
		c.Publish.YouTubeClientSecret != "" &&
		c.Publish.YouTubeRefreshToken != ""
}

// DebugJSON renders the resolved configuration for the show-config command.
// Secrets are reduced to configured/not-configured booleans.
func (c *Config) DebugJSON() string {
	payload := map[string]interface{}{
		"paths":    c.Paths,
		"posting":  c.Posting,
		"schedule": c.Schedule,
		"ai": map[string]interface{}{
			"model":             c.AI.Model,
			"max_output_tokens": c.AI.MaxOutputTokens,
			"max_cost_usd":      c.AI.MaxCostUSD,
			"gemini_configured": c.AI.GeminiAPIKey != "",
		},
		"assets": map[string]interface{}{
			"fetch_query":       c.Assets.FetchQuery,
			"fetch_count":       c.Assets.FetchCount,
			"pexels_configured": c.Assets.PexelsAPIKey != "",
		},
		"publish": map[string]interface{}{
			"tiktok_configured":  c.Publish.TikTokSessionID != "",
			"youtube_configured": c.YouTubeEnabled(),
		},
		"fonts":               c.Fonts,
		"airtable_configured": c.AirtableEnabled(),
		"email_configured":    c.Email.SMTPServer != "" && c.Email.FromEmail != "" && c.Email.ToEmail != "",
		"monitoring":          c.Monitoring,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Sprintf("failed to render config: %v", err)
	}
	return string(data)
}
