package airtable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"autoposter/internal/models"
	"autoposter/shared/config"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// Logger records post metadata to an Airtable table. It is best-effort by
// contract: every failure is logged and swallowed, and the logger disables
// itself when any of the three settings is missing.
type Logger struct {
	cfg     *config.AirtableConfig
	baseURL string
	enabled bool
	client  *http.Client
}

func NewLogger(cfg *config.AirtableConfig) *Logger {
	enabled := cfg.APIKey != "" && cfg.BaseID != "" && cfg.TableName != ""
	if !enabled {
		log.Println("Airtable logging disabled - missing configuration values")
	}
	return &Logger{
		cfg:     cfg,
		baseURL: defaultBaseURL,
		enabled: enabled,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (l *Logger) Enabled() bool {
	return l.enabled
}

// LogPost sends one record to Airtable. Returns true when the request
// succeeded; false is informational only and never fails the run.
func (l *Logger) LogPost(report *models.PostReport) bool {
	if !l.enabled {
		return false
	}

	payload := map[string]interface{}{
		"fields": map[string]interface{}{
			"Run ID":     report.RunID,
			"Posted At":  report.PostedAt.UTC().Format(time.RFC3339),
			"Quote":      report.Quote,
			"Caption":    report.Caption,
			"Video":      report.VideoPath,
			"Background": report.Background,
			"Published":  report.Published,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Warning: failed to serialize Airtable payload: %v", err)
		return false
	}

	endpoint := fmt.Sprintf("%s/%s/%s", l.baseURL, l.cfg.BaseID, url.PathEscape(l.cfg.TableName))
	req, err := http.NewRequest("POST", endpoint, bytes.NewReader(body))
	if err != nil {
		log.Printf("Warning: failed to build Airtable request: %v", err)
		return false
	}
	req.Header.Set("Authorization", "Bearer "+l.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		log.Printf("Warning: failed to reach Airtable API: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Warning: Airtable logging request failed with status %d", resp.StatusCode)
		return false
	}

	log.Printf("Logged post to Airtable table %q", l.cfg.TableName)
	return true
}
