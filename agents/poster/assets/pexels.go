package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const defaultPexelsURL = "https://api.pexels.com/videos/search"

// PexelsFetcher downloads portrait background videos from the Pexels API.
// Fetching is best-effort: partial results are returned and individual
// download failures only cost that one clip.
type PexelsFetcher struct {
	apiKey    string
	targetDir string
	searchURL string
	client    *http.Client
}

type pexelsVideoFile struct {
	Height int    `json:"height"`
	Link   string `json:"link"`
}

type pexelsSearchResponse struct {
	Videos []struct {
		ID         int64             `json:"id"`
		VideoFiles []pexelsVideoFile `json:"video_files"`
	} `json:"videos"`
}

func NewPexelsFetcher(apiKey, targetDir string) *PexelsFetcher {
	return &PexelsFetcher{
		apiKey:    apiKey,
		targetDir: targetDir,
		searchURL: defaultPexelsURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Fetch searches for portrait videos matching query and downloads up to
// count of them into the target directory as pexels_<id>.mp4. Clips already
// on disk are counted without re-downloading.
func (f *PexelsFetcher) Fetch(ctx context.Context, query string, count int) ([]string, error) {
	searchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	reqURL := fmt.Sprintf("%s?query=%s&per_page=%d&orientation=portrait",
		f.searchURL, url.QueryEscape(query), count)
	req, err := http.NewRequestWithContext(searchCtx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pexels request: %w", err)
	}
	req.Header.Set("Authorization", f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query Pexels: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Pexels API returned status %d", resp.StatusCode)
	}

	var search pexelsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("failed to decode Pexels response: %w", err)
	}

	if err := os.MkdirAll(f.targetDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create videos directory: %w", err)
	}

	var downloaded []string
	for _, video := range search.Videos {
		link := bestPortraitFile(video.VideoFiles)
		if link == "" {
			continue
		}

		outPath := filepath.Join(f.targetDir, fmt.Sprintf("pexels_%d.mp4", video.ID))
		if _, err := os.Stat(outPath); err == nil {
			downloaded = append(downloaded, outPath)
			continue
		}

		if err := f.download(ctx, link, outPath); err != nil {
			log.Printf("Warning: failed to download Pexels video %d: %v", video.ID, err)
			continue
		}
		log.Printf("Downloaded Pexels video %d to %s", video.ID, outPath)
		downloaded = append(downloaded, outPath)
	}

	return downloaded, nil
}

// bestPortraitFile prefers files tall enough for vertical video while
// keeping the smallest adequate resolution to limit file size.
func bestPortraitFile(files []pexelsVideoFile) string {
	if len(files) == 0 {
		return ""
	}

	tall := files[:0:0]
	for _, vf := range files {
		if vf.Height >= 1280 {
			tall = append(tall, vf)
		}
	}
	if len(tall) == 0 {
		return files[0].Link
	}
	sort.Slice(tall, func(i, j int) bool { return tall[i].Height < tall[j].Height })
	return tall[0].Link
}

func (f *PexelsFetcher) download(ctx context.Context, link, outPath string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", link, nil)
	if err != nil {
		return err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(outPath)
		return err
	}
	return nil
}
