package fonts

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const cssEndpoint = "https://fonts.googleapis.com/css2"

var client = &http.Client{Timeout: 30 * time.Second}

// EnsureGoogleFont downloads a Google Fonts TTF into dir and returns its
// path. Failures are logged and reported as an empty path so callers can
// fall back to a system font.
func EnsureGoogleFont(dir, family, weight string) string {
	if family == "" {
		return ""
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Warning: failed to create fonts directory %s: %v", dir, err)
		return ""
	}

	fontPath := filepath.Join(dir, fmt.Sprintf("%s_%s.ttf", strings.ReplaceAll(family, " ", "_"), weight))
	if _, err := os.Stat(fontPath); err == nil {
		return fontPath
	}

	ttfURL, err := lookupTTFURL(family, weight)
	if err != nil {
		log.Printf("Warning: failed to resolve Google Font %s: %v", family, err)
		return ""
	}

	log.Printf("Downloading Google Font %s (%s)", family, weight)
	if err := download(ttfURL, fontPath); err != nil {
		log.Printf("Warning: unable to download font %s: %v", family, err)
		return ""
	}
	return fontPath
}

// lookupTTFURL fetches the css2 stylesheet and scans it for the first
// src: url(...) entry.
func lookupTTFURL(family, weight string) (string, error) {
	query := url.Values{}
	query.Set("family", fmt.Sprintf("%s:wght@%s", strings.ReplaceAll(family, " ", "+"), weight))

	resp, err := client.Get(cssEndpoint + "?" + query.Encode())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fonts CSS request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "src:") {
			continue
		}
		start := strings.Index(line, "https://")
		if start == -1 {
			continue
		}
		end := strings.Index(line[start:], ")")
		if end == -1 {
			continue
		}
		return line[start : start+end], nil
	}
	return "", fmt.Errorf("no font URL found in CSS for %s", family)
}

func download(srcURL, destPath string) error {
	resp, err := client.Get(srcURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("font download returned status %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(destPath)
		return err
	}
	return nil
}
