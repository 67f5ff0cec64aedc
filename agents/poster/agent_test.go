package poster

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"autoposter/agents/poster/assets"
	"autoposter/agents/poster/upload"
	"autoposter/internal/models"
	"autoposter/shared/airtable"
	"autoposter/shared/config"
	"autoposter/shared/storage"
)

type stubRenderer struct {
	calls int
	err   error
}

func (r *stubRenderer) Render(ctx context.Context, req models.RenderRequest) (*models.RenderResult, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if err := os.WriteFile(req.OutputPath, []byte("rendered"), 0644); err != nil {
		return nil, err
	}
	return &models.RenderResult{
		OutputPath:     req.OutputPath,
		BackgroundPath: req.BackgroundPath,
		MusicPath:      req.MusicPath,
		FeaturedImage:  req.FeaturedImage,
		InlineImages:   req.InlineImages,
	}, nil
}

type failingPublisher struct {
	calls int
}

func (p *failingPublisher) Publish(ctx context.Context, videoPath, caption string) error {
	p.calls++
	return errors.New("network down")
}

type countingGenerator struct {
	calls int
	post  *models.GeneratedPost
}

func (g *countingGenerator) GeneratePost(ctx context.Context) (*models.GeneratedPost, error) {
	g.calls++
	if g.post == nil {
		return nil, errors.New("no post configured")
	}
	return g.post, nil
}

type testAgent struct {
	agent     *PosterAgent
	cfg       *config.Config
	renderer  *stubRenderer
	generator *countingGenerator
	registry  *storage.UploadRegistry
	publisher upload.Publisher
}

// newTestAgent wires a PosterAgent against temp directories with a stub
// renderer, a counting generator and one background clip (bg1.mp4).
func newTestAgent(t *testing.T, opts testAgent) *testAgent {
	t.Helper()

	base := t.TempDir()
	cfg := testConfig()
	cfg.Paths = config.PathsConfig{
		BaseDir:           base,
		VideosDir:         filepath.Join(base, "videos"),
		MusicDir:          filepath.Join(base, "music"),
		FontsDir:          filepath.Join(base, "fonts"),
		FeaturedImagesDir: filepath.Join(base, "featured"),
		InlineImagesDir:   filepath.Join(base, "inline"),
		OutputDir:         filepath.Join(base, "output"),
		BackupsDir:        filepath.Join(base, "backups"),
		StateFile:         filepath.Join(base, "state.json"),
	}
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs() error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Paths.VideosDir, "bg1.mp4"), []byte("clip"), 0644); err != nil {
		t.Fatalf("failed to seed background clip: %v", err)
	}

	store, err := storage.NewStateStore(cfg.Paths.StateFile, cfg.Paths.BackupsDir)
	if err != nil {
		t.Fatalf("NewStateStore() error: %v", err)
	}
	registry, err := storage.NewUploadRegistry(filepath.Join(cfg.Paths.BackupsDir, "uploads_registry.json"))
	if err != nil {
		t.Fatalf("NewUploadRegistry() error: %v", err)
	}

	renderer := opts.renderer
	if renderer == nil {
		renderer = &stubRenderer{}
	}
	generator := opts.generator

	var gen Generator
	if generator != nil {
		gen = generator
	}

	agent := &PosterAgent{
		config:     cfg,
		stateStore: store,
		resolver:   NewContentResolver(cfg, gen),
		selector: assets.NewSelector(
			cfg.Paths.VideosDir,
			cfg.Paths.MusicDir,
			cfg.Paths.FeaturedImagesDir,
			cfg.Paths.InlineImagesDir,
		),
		renderer: renderer,
		uploader: upload.NewUploader(registry, opts.publisher),
		airtable: airtable.NewLogger(&cfg.Airtable),
		now:      time.Now,
	}

	return &testAgent{
		agent:     agent,
		cfg:       cfg,
		renderer:  renderer,
		generator: generator,
		registry:  registry,
	}
}

func (ta *testAgent) loadStateFile(t *testing.T) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(ta.cfg.Paths.StateFile)
	if err != nil {
		t.Fatalf("failed to read state file: %v", err)
	}
	var state map[string]interface{}
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("failed to parse state file: %v", err)
	}
	return state
}

func TestRunQuotaReached(t *testing.T) {
	ta := newTestAgent(t, testAgent{generator: &countingGenerator{}})
	ta.cfg.Posting.MaxPostsPerDay = 2

	history := models.NewPostHistory(ta.agent.now())
	history.PostsToday = 2
	ta.agent.stateStore.Save(history)
	before, err := os.ReadFile(ta.cfg.Paths.StateFile)
	if err != nil {
		t.Fatalf("failed to read state file: %v", err)
	}

	path, status, err := ta.agent.runOnce(context.Background())
	if err != nil {
		t.Fatalf("runOnce() error: %v", err)
	}
	if path != "" {
		t.Errorf("runOnce() path = %q, want empty", path)
	}
	if status != StatusQuotaReached {
		t.Errorf("runOnce() status = %v, want StatusQuotaReached", status)
	}
	if ta.renderer.calls != 0 {
		t.Errorf("renderer called %d times, want 0", ta.renderer.calls)
	}
	if ta.generator.calls != 0 {
		t.Errorf("generator called %d times, want 0", ta.generator.calls)
	}
	after, err := os.ReadFile(ta.cfg.Paths.StateFile)
	if err != nil {
		t.Fatalf("failed to re-read state file: %v", err)
	}
	if string(before) != string(after) {
		t.Error("state file changed during a quota-reached run")
	}
}

func TestRunEndToEndSimulated(t *testing.T) {
	ta := newTestAgent(t, testAgent{})
	ta.cfg.Posting.MaxPostsPerDay = 1

	path, status, err := ta.agent.runOnce(context.Background())
	if err != nil {
		t.Fatalf("runOnce() error: %v", err)
	}
	if status != StatusPosted {
		t.Fatalf("runOnce() status = %v, want StatusPosted", status)
	}
	if path == "" {
		t.Fatal("runOnce() returned empty path for a posted run")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("rendered output %s missing: %v", path, err)
	}
	if !strings.HasPrefix(filepath.Base(path), "motivation_") {
		t.Errorf("output name %q missing motivation_ prefix", filepath.Base(path))
	}

	if got := ta.registry.Count(); got != 1 {
		t.Errorf("registry Count() = %d, want 1", got)
	}

	state := ta.loadStateFile(t)
	if got := state["posts_today"].(float64); got != 1 {
		t.Errorf("posts_today = %v, want 1", got)
	}
	videos := state["used_videos"].([]interface{})
	if len(videos) != 1 || videos[0] != "bg1.mp4" {
		t.Errorf("used_videos = %v, want [bg1.mp4]", videos)
	}
	quotes := state["used_quotes"].([]interface{})
	if len(quotes) != 1 {
		t.Errorf("used_quotes has %d entries, want 1", len(quotes))
	}

	// A second run on the same day must hit the quota gate.
	path, status, err = ta.agent.runOnce(context.Background())
	if err != nil {
		t.Fatalf("second runOnce() error: %v", err)
	}
	if status != StatusQuotaReached || path != "" {
		t.Errorf("second run = (%q, %v), want quota skip", path, status)
	}
}

func TestRunDuplicateQuoteFallsBack(t *testing.T) {
	gen := &countingGenerator{post: &models.GeneratedPost{
		Quote:   "Already posted this one.",
		Caption: "Already posted this one. #motivation",
	}}
	ta := newTestAgent(t, testAgent{generator: gen})

	history := models.NewPostHistory(ta.agent.now())
	history.UsedQuotes = []string{"Already posted this one."}
	ta.agent.stateStore.Save(history)

	_, status, err := ta.agent.runOnce(context.Background())
	if err != nil {
		t.Fatalf("runOnce() error: %v", err)
	}
	if status != StatusPosted {
		t.Fatalf("runOnce() status = %v, want StatusPosted", status)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want exactly 1", gen.calls)
	}

	state := ta.loadStateFile(t)
	quotes := state["used_quotes"].([]interface{})
	if len(quotes) != 1 {
		t.Fatalf("used_quotes = %v, want a single replacement entry", quotes)
	}
	if quotes[0] == "Already posted this one." {
		t.Error("duplicate quote was posted instead of a fallback")
	}
	found := false
	for _, quote := range fallbackQuotes {
		if quotes[0] == quote {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("replacement quote %v is not from the fallback list", quotes[0])
	}
}

func TestRunPublishFailureSkipsStateSave(t *testing.T) {
	pub := &failingPublisher{}
	ta := newTestAgent(t, testAgent{publisher: pub})

	path, status, err := ta.agent.runOnce(context.Background())
	if err != nil {
		t.Fatalf("runOnce() error: %v", err)
	}
	if status != StatusPublishSkipped {
		t.Errorf("runOnce() status = %v, want StatusPublishSkipped", status)
	}
	if path == "" {
		t.Error("runOnce() should still return the rendered path")
	}
	if pub.calls != 1 {
		t.Errorf("publisher called %d times, want 1", pub.calls)
	}
	if ta.registry.Count() != 0 {
		t.Errorf("registry Count() = %d, want 0 after failed publish", ta.registry.Count())
	}
	if _, err := os.Stat(ta.cfg.Paths.StateFile); !os.IsNotExist(err) {
		t.Error("state file was written for a run that did not post")
	}
}

func TestRunRenderFailureIsFatal(t *testing.T) {
	ta := newTestAgent(t, testAgent{renderer: &stubRenderer{err: errors.New("ffmpeg exploded")}})

	_, _, err := ta.agent.runOnce(context.Background())
	if err == nil {
		t.Fatal("runOnce() error = nil, want render failure")
	}
	if !strings.Contains(err.Error(), "render failed") {
		t.Errorf("error %q does not wrap the render failure", err)
	}
	if ta.registry.Count() != 0 {
		t.Errorf("registry Count() = %d, want 0", ta.registry.Count())
	}
}

func TestRunNoBackgroundAvailable(t *testing.T) {
	ta := newTestAgent(t, testAgent{})
	if err := os.Remove(filepath.Join(ta.cfg.Paths.VideosDir, "bg1.mp4")); err != nil {
		t.Fatalf("failed to remove seeded clip: %v", err)
	}

	path, status, err := ta.agent.runOnce(context.Background())
	if err != nil {
		t.Fatalf("runOnce() error: %v", err)
	}
	if status != StatusNoBackground || path != "" {
		t.Errorf("runOnce() = (%q, %v), want no-background skip", path, status)
	}
	if ta.renderer.calls != 0 {
		t.Errorf("renderer called %d times, want 0", ta.renderer.calls)
	}
}
