package poster

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"autoposter/agents/poster/assets"
	"autoposter/agents/poster/render"
	"autoposter/agents/poster/upload"
	"autoposter/internal/models"
	"autoposter/shared/ai"
	"autoposter/shared/airtable"
	"autoposter/shared/config"
	"autoposter/shared/fonts"
	"autoposter/shared/scheduler"
	"autoposter/shared/storage"

	"github.com/google/uuid"
)

// Renderer is the video-rendering collaborator. Render failures are the one
// error category that aborts a run.
type Renderer interface {
	Render(ctx context.Context, req models.RenderRequest) (*models.RenderResult, error)
}

// AssetFetcher downloads fresh background clips on demand. Best-effort;
// partial results are fine.
type AssetFetcher interface {
	Fetch(ctx context.Context, query string, count int) ([]string, error)
}

// RunStatus is the internal outcome of a single run. The external contract
// deliberately keeps publishing and gate-skips indistinguishable (callers
// use logs and the registry), but tests want the precise outcome.
type RunStatus int

const (
	StatusPosted RunStatus = iota
	StatusQuotaReached
	StatusNoBackground
	StatusPublishSkipped
)

func (s RunStatus) String() string {
	switch s {
	case StatusPosted:
		return "posted"
	case StatusQuotaReached:
		return "quota reached"
	case StatusNoBackground:
		return "no background available"
	case StatusPublishSkipped:
		return "rendered, publish skipped"
	default:
		return "unknown"
	}
}

// PosterMetrics implements the scheduler.Metrics interface
type PosterMetrics struct {
	Status     RunStatus `json:"status"`
	OutputPath string    `json:"output_path"`
	PostsToday int       `json:"posts_today"`
}

func (m PosterMetrics) GetSummary() string {
	if m.Status == StatusPosted {
		return fmt.Sprintf("posted video #%d of the day (%s)", m.PostsToday, filepath.Base(m.OutputPath))
	}
	return m.Status.String()
}

// PosterAgent implements the scheduler.Agent interface: one invocation is
// one end-to-end attempt at creating and posting a motivational video.
type PosterAgent struct {
	config     *config.Config
	stateStore *storage.StateStore
	resolver   *ContentResolver
	selector   *assets.Selector
	fetcher    AssetFetcher
	renderer   Renderer
	uploader   *upload.Uploader
	airtable   *airtable.Logger
	now        func() time.Time
}

func NewPosterAgent(cfg *config.Config) *PosterAgent {
	return &PosterAgent{
		config: cfg,
		now:    time.Now,
	}
}

func (p *PosterAgent) Name() string {
	return "Motivation Poster"
}

func (p *PosterAgent) Initialize() error {
	log.Printf("Initializing %s...", p.Name())

	if err := p.config.EnsureDirs(); err != nil {
		return fmt.Errorf("failed to prepare directories: %w", err)
	}

	if p.stateStore == nil {
		store, err := storage.NewStateStore(p.config.Paths.StateFile, p.config.Paths.BackupsDir)
		if err != nil {
			return fmt.Errorf("failed to create state store: %w", err)
		}
		p.stateStore = store
		log.Println("State store initialized")
	}

	if p.uploader == nil {
		registryPath := filepath.Join(p.config.Paths.BackupsDir, "uploads_registry.json")
		registry, err := storage.NewUploadRegistry(registryPath)
		if err != nil {
			return fmt.Errorf("failed to create upload registry: %w", err)
		}
		p.uploader = upload.NewUploader(registry, p.publisher())
		log.Printf("Upload registry initialized (%d uploads recorded)", registry.Count())
	}

	if p.resolver == nil {
		var generator Generator
		if p.config.AI.GeminiAPIKey != "" {
			g, err := ai.NewGenerator(p.config)
			if err != nil {
				log.Printf("Warning: failed to initialise content generator: %v - using local fallback", err)
			} else {
				generator = g
				log.Println("Content generator initialized")
			}
		} else {
			log.Println("No Gemini API key configured - content falls back to the local quote list")
		}
		p.resolver = NewContentResolver(p.config, generator)
	}

	if p.selector == nil {
		p.selector = assets.NewSelector(
			p.config.Paths.VideosDir,
			p.config.Paths.MusicDir,
			p.config.Paths.FeaturedImagesDir,
			p.config.Paths.InlineImagesDir,
		)
	}

	if p.fetcher == nil && p.config.Assets.PexelsAPIKey != "" {
		p.fetcher = assets.NewPexelsFetcher(p.config.Assets.PexelsAPIKey, p.config.Paths.VideosDir)
		log.Println("Pexels fetcher initialized")
	}

	if p.renderer == nil {
		fontPath := fonts.EnsureGoogleFont(
			p.config.Paths.FontsDir,
			p.config.Fonts.GoogleFontFamily,
			p.config.Fonts.GoogleFontWeight,
		)
		p.renderer = render.NewFFmpegRenderer(fontPath)
	}

	if p.airtable == nil {
		p.airtable = airtable.NewLogger(&p.config.Airtable)
	}

	return nil
}

// publisher picks the platform client from the configured credentials.
// No credential at all means simulate mode.
func (p *PosterAgent) publisher() upload.Publisher {
	if p.config.Publish.TikTokSessionID != "" {
		return upload.NewTikTokPublisher(p.config.Publish.TikTokSessionID)
	}
	if p.config.YouTubeEnabled() {
		return upload.NewYouTubePublisher(&p.config.Publish)
	}
	log.Println("No publish credential configured - uploads will be simulated")
	return nil
}

func (p *PosterAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()

	outputPath, status, err := p.runOnce(ctx)
	if err != nil {
		if events != nil && events.OnCriticalFailure != nil {
			events.OnCriticalFailure(err, time.Since(startTime))
		}
		return err
	}

	metrics := PosterMetrics{Status: status, OutputPath: outputPath}
	if status == StatusPosted {
		metrics.PostsToday = p.stateStore.Load().PostsToday
	}
	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, time.Since(startTime))
	}
	return nil
}

// Run performs one posting attempt and returns the rendered output path, or
// "" when nothing was rendered. The path is returned for gate-skipped runs
// too; callers distinguish outcomes via logs and the upload registry.
func (p *PosterAgent) Run(ctx context.Context) (string, error) {
	outputPath, _, err := p.runOnce(ctx)
	return outputPath, err
}

func (p *PosterAgent) runOnce(ctx context.Context) (string, RunStatus, error) {
	runID := uuid.NewString()[:8]

	history := p.stateStore.Load()
	history.ResetIfNewDay(p.now())

	if history.PostsToday >= p.config.Posting.MaxPostsPerDay {
		log.Printf("[%s] Daily post limit of %d reached, skipping run", runID, p.config.Posting.MaxPostsPerDay)
		return "", StatusQuotaReached, nil
	}

	background, ok := p.pickBackground(ctx, runID, history)
	if !ok {
		log.Printf("[%s] No background videos available - add files to %s", runID, p.config.Paths.VideosDir)
		return "", StatusNoBackground, nil
	}

	content := p.resolver.Resolve(ctx)
	if content.Keywords != "" {
		log.Printf("[%s] SEO keywords: %s", runID, content.Keywords)
	}

	if history.HasUsedQuote(content.Quote) {
		log.Printf("[%s] Quote already used today - selecting fallback", runID)
		history.RemoveUsedQuote(content.Quote)
		content = p.resolver.ResolveFallback()
	}

	music, _ := p.selector.PickMusic()
	featured, _ := p.selector.PickFeaturedImage()
	inline := p.selector.PickInlineImages(3)

	outputPath := filepath.Join(p.config.Paths.OutputDir,
		fmt.Sprintf("motivation_%s.mp4", p.now().UTC().Format("20060102_150405")))

	result, err := p.renderer.Render(ctx, models.RenderRequest{
		Quote:          content.Quote,
		Caption:        content.Caption,
		BackgroundPath: background,
		OutputPath:     outputPath,
		MusicPath:      music,
		FeaturedImage:  featured,
		InlineImages:   inline,
	})
	if err != nil {
		return "", 0, fmt.Errorf("render failed: %w", err)
	}

	p.backupVideo(runID, result.OutputPath)

	uploaded, err := p.uploader.Upload(ctx, result.OutputPath, content.Caption)
	if err != nil {
		log.Printf("[%s] Warning: upload failed: %v", runID, err)
		uploaded = false
	}

	p.airtable.LogPost(&models.PostReport{
		RunID:      runID,
		PostedAt:   p.now(),
		Quote:      content.Quote,
		Caption:    content.Caption,
		VideoPath:  result.OutputPath,
		Background: filepath.Base(background),
		Published:  uploaded,
	})

	if !uploaded {
		log.Printf("[%s] Upload skipped for %s", runID, result.OutputPath)
		return result.OutputPath, StatusPublishSkipped, nil
	}

	history.PostsToday++
	history.UsedVideos = append(history.UsedVideos, filepath.Base(background))
	history.UsedQuotes = append(history.UsedQuotes, content.Quote)
	p.stateStore.Save(history)
	log.Printf("[%s] Successfully processed post #%d", runID, history.PostsToday)

	return result.OutputPath, StatusPosted, nil
}

// pickBackground selects an unused clip, attempting one on-demand fetch
// when the local pool is empty.
func (p *PosterAgent) pickBackground(ctx context.Context, runID string, history *models.PostHistory) (string, bool) {
	excluded := make(map[string]bool, len(history.UsedVideos))
	for _, name := range history.UsedVideos {
		excluded[name] = true
	}

	background, ok := p.selector.PickBackground(excluded)
	if ok || p.fetcher == nil {
		return background, ok
	}

	log.Printf("[%s] No local backgrounds found, fetching from Pexels...", runID)
	downloads, err := p.fetcher.Fetch(ctx, p.config.Assets.FetchQuery, p.config.Assets.FetchCount)
	if err != nil {
		log.Printf("[%s] Warning: background fetch failed: %v", runID, err)
		return "", false
	}
	if len(downloads) == 0 {
		return "", false
	}
	return p.selector.PickBackground(excluded)
}

// backupVideo copies the rendered output into the backups dir. Best-effort.
func (p *PosterAgent) backupVideo(runID, videoPath string) {
	backupPath := filepath.Join(p.config.Paths.BackupsDir, filepath.Base(videoPath))

	src, err := os.Open(videoPath)
	if err != nil {
		log.Printf("[%s] Warning: failed to open rendered video for backup: %v", runID, err)
		return
	}
	defer src.Close()

	dst, err := os.Create(backupPath)
	if err != nil {
		log.Printf("[%s] Warning: failed to create video backup: %v", runID, err)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		log.Printf("[%s] Warning: failed to copy video to backup: %v", runID, err)
		return
	}
	log.Printf("[%s] Backup saved to %s", runID, backupPath)
}
