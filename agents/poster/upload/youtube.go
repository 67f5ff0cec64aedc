package upload

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"autoposter/shared/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTubePublisher uploads rendered videos as YouTube Shorts via the Data
// API v3, authenticating with an OAuth refresh token.
type YouTubePublisher struct {
	cfg *config.PublishConfig
}

func NewYouTubePublisher(cfg *config.PublishConfig) *YouTubePublisher {
	return &YouTubePublisher{cfg: cfg}
}

func (p *YouTubePublisher) Publish(ctx context.Context, videoPath, caption string) error {
	svc, err := youtube.NewService(ctx, option.WithHTTPClient(p.oauthClient(ctx)))
	if err != nil {
		return fmt.Errorf("youtube service: %w", err)
	}

	title := caption
	if idx := strings.IndexByte(title, '\n'); idx > 0 {
		title = title[:idx]
	}
	if len(title) > 100 {
		title = title[:97] + "..."
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title,
			Description: caption,
			CategoryId:  p.cfg.YouTubeCategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: p.cfg.YouTubePrivacy,
		},
	}

	f, err := os.Open(videoPath)
	if err != nil {
		return fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	log.Printf("Uploading %s to YouTube...", filepath.Base(videoPath))

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.Media(f)

	uploaded, err := call.Do()
	if err != nil {
		return fmt.Errorf("youtube upload: %w", err)
	}

	log.Printf("Uploaded to YouTube: https://www.youtube.com/watch?v=%s", uploaded.Id)
	return nil
}

func (p *YouTubePublisher) oauthClient(ctx context.Context) *http.Client {
	conf := &oauth2.Config{
		ClientID:     p.cfg.YouTubeClientID,
		ClientSecret: p.cfg.YouTubeClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeScope},
	}

	token := &oauth2.Token{
		RefreshToken: p.cfg.YouTubeRefreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}

	return oauth2.NewClient(ctx, conf.TokenSource(ctx, token))
}
