package render

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"autoposter/internal/models"
)

// maxClipSeconds caps the output length; short-video platforms reject
// anything longer.
const maxClipSeconds = 60

// FFmpegRenderer composites the quote text, optional featured image and
// optional music onto a background clip, producing a 1080x1920 H.264 MP4.
type FFmpegRenderer struct {
	fontPath string
}

func NewFFmpegRenderer(fontPath string) *FFmpegRenderer {
	return &FFmpegRenderer{fontPath: fontPath}
}

// Render runs ffmpeg against the request. Any failure is returned to the
// caller: a run without a valid output cannot proceed to publish.
func (r *FFmpegRenderer) Render(ctx context.Context, req models.RenderRequest) (*models.RenderResult, error) {
	if req.BackgroundPath == "" {
		return nil, fmt.Errorf("render request has no background")
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	args := r.buildArgs(req)

	log.Printf("Rendering video from %s", filepath.Base(req.BackgroundPath))
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, tail(string(output), 400))
	}

	log.Printf("Wrote rendered video to %s", req.OutputPath)
	return &models.RenderResult{
		OutputPath:     req.OutputPath,
		BackgroundPath: req.BackgroundPath,
		MusicPath:      req.MusicPath,
		FeaturedImage:  req.FeaturedImage,
		InlineImages:   req.InlineImages,
	}, nil
}

func (r *FFmpegRenderer) buildArgs(req models.RenderRequest) []string {
	args := []string{"-y", "-i", req.BackgroundPath}

	inputs := 1
	featuredIdx := -1
	if req.FeaturedImage != "" {
		args = append(args, "-i", req.FeaturedImage)
		featuredIdx = inputs
		inputs++
	}
	inlineIdx := make([]int, 0, len(req.InlineImages))
	for _, img := range req.InlineImages {
		args = append(args, "-i", img)
		inlineIdx = append(inlineIdx, inputs)
		inputs++
	}
	musicIdx := -1
	if req.MusicPath != "" {
		args = append(args, "-i", req.MusicPath)
		musicIdx = inputs
		inputs++
	}

	// Portrait 1080x1920: scale up to cover, crop the overflow, then draw
	// the quote in the lower third.
	var filter strings.Builder
	filter.WriteString("[0:v]scale=1080:1920:force_original_aspect_ratio=increase,")
	filter.WriteString("crop=1080:1920,setsar=1")
	filter.WriteString(r.drawtextFilter(req.Quote))
	filter.WriteString("[base]")

	last := "[base]"
	if featuredIdx >= 0 {
		fmt.Fprintf(&filter, ";[%d:v]scale=756:-1[feat];%s[feat]overlay=(W-w)/2:H*0.12:enable='lte(t,5)'[withfeat]", featuredIdx, last)
		last = "[withfeat]"
	}

	// Inline images appear one after another in the middle of the clip.
	start := 8
	for i, idx := range inlineIdx {
		fmt.Fprintf(&filter, ";[%d:v]scale=864:-1[in%d];%s[in%d]overlay=(W-w)/2:(H-h)/2:enable='between(t,%d,%d)'[withins%d]",
			idx, i, last, i, start, start+6, i)
		last = fmt.Sprintf("[withins%d]", i)
		start += 7
	}

	args = append(args, "-filter_complex", filter.String(), "-map", last)

	if musicIdx >= 0 {
		args = append(args,
			"-map", fmt.Sprintf("%d:a", musicIdx),
			"-af", "volume=0.6",
			"-shortest",
		)
	} else {
		args = append(args, "-an")
	}

	args = append(args,
		"-t", fmt.Sprintf("%d", maxClipSeconds),
		"-c:v", "libx264",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
		"-r", "30",
	)
	if musicIdx >= 0 {
		args = append(args, "-c:a", "aac")
	}
	return append(args, req.OutputPath)
}

func (r *FFmpegRenderer) drawtextFilter(quote string) string {
	var b strings.Builder
	b.WriteString(",drawtext=text='")
	b.WriteString(escapeDrawtext(quote))
	b.WriteString("'")
	if r.fontPath != "" {
		b.WriteString(":fontfile='")
		b.WriteString(escapeDrawtext(r.fontPath))
		b.WriteString("'")
	}
	b.WriteString(":fontcolor=white:fontsize=64:borderw=3:bordercolor=black")
	b.WriteString(":x=(w-text_w)/2:y=h*0.72")
	return b.String()
}

// escapeDrawtext quotes the characters ffmpeg's drawtext filter treats as
// syntax.
func escapeDrawtext(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return replacer.Replace(s)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
