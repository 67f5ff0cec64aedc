package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"autoposter/internal/models"
	"autoposter/shared/storage"
)

// Publisher performs the actual network upload to a platform.
type Publisher interface {
	Publish(ctx context.Context, videoPath, caption string) error
}

// Uploader gates publishes behind the upload registry. A nil publisher puts
// the uploader in simulate mode: the fingerprint is recorded and success is
// reported without contacting any external service.
type Uploader struct {
	registry  *storage.UploadRegistry
	publisher Publisher
}

func NewUploader(registry *storage.UploadRegistry, publisher Publisher) *Uploader {
	return &Uploader{registry: registry, publisher: publisher}
}

// Fingerprint derives the deterministic dedup key for a video/caption pair:
// a SHA-256 digest over the file basename, its byte size (0 when the file is
// missing) and the caption text, in that order.
func Fingerprint(videoPath, caption string) string {
	var size int64
	if info, err := os.Stat(videoPath); err == nil {
		size = info.Size()
	}

	digest := sha256.New()
	digest.Write([]byte(filepath.Base(videoPath)))
	digest.Write([]byte(strconv.FormatInt(size, 10)))
	digest.Write([]byte(caption))
	return hex.EncodeToString(digest.Sum(nil))
}

// AlreadyUploaded reports whether this exact video/caption pairing was
// posted before.
func (u *Uploader) AlreadyUploaded(videoPath, caption string) bool {
	return u.registry.Has(Fingerprint(videoPath, caption))
}

// Upload publishes a video unless its fingerprint is already registered.
// It returns true when the video was published (or the publish was
// simulated) and false when the upload was skipped.
func (u *Uploader) Upload(ctx context.Context, videoPath, caption string) (bool, error) {
	fingerprint := Fingerprint(videoPath, caption)
	if u.registry.Has(fingerprint) {
		log.Printf("Skipping upload for %s (already uploaded)", filepath.Base(videoPath))
		return false, nil
	}

	if u.publisher == nil {
		log.Printf("No publish credential configured - simulating upload of %s", filepath.Base(videoPath))
		u.mark(fingerprint, videoPath, caption)
		return true, nil
	}

	if err := u.publisher.Publish(ctx, videoPath, caption); err != nil {
		return false, fmt.Errorf("publish failed for %s: %w", filepath.Base(videoPath), err)
	}

	u.mark(fingerprint, videoPath, caption)
	return true, nil
}

func (u *Uploader) mark(fingerprint, videoPath, caption string) {
	u.registry.Add(models.UploadRecord{
		Fingerprint: fingerprint,
		VideoPath:   videoPath,
		Caption:     caption,
	})
}
