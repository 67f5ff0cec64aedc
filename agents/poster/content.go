package poster

import (
	"context"
	"log"
	"math/rand"
	"sort"
	"strings"

	"autoposter/internal/models"
	"autoposter/shared/config"
)

// Generator is the content-generation collaborator. A nil Generator means
// the resolver works purely from the local fallback list.
type Generator interface {
	GeneratePost(ctx context.Context) (*models.GeneratedPost, error)
}

var fallbackQuotes = []string{
	"Success is the sum of small efforts repeated day in and day out.",
	"Discipline beats motivation when motivation disappears.",
	"Dream big, start small, but start today.",
	"Consistency is what transforms average into excellence.",
	"Your only limit is the actions you take right now.",
	"Winners are ordinary people with extraordinary determination.",
}

// ContentResolver obtains a quote/caption pair, trying the generator first
// and falling back to the built-in quote list on any failure. It never
// returns an error: a post can always be assembled locally.
type ContentResolver struct {
	cfg       *config.Config
	generator Generator
}

func NewContentResolver(cfg *config.Config, generator Generator) *ContentResolver {
	return &ContentResolver{cfg: cfg, generator: generator}
}

// Resolve produces post content. Generator failures, malformed payloads and
// cost-ceiling refusals all degrade to ResolveFallback.
func (r *ContentResolver) Resolve(ctx context.Context) *models.GeneratedPost {
	if r.generator == nil {
		log.Println("No content generator configured - using local fallback quote")
		return r.ResolveFallback()
	}

	post, err := r.generator.GeneratePost(ctx)
	if err != nil {
		log.Printf("Content generation failed (%v) - falling back to local quote", err)
		return r.ResolveFallback()
	}

	if !strings.Contains(post.Caption, "#") {
		post.Caption = r.synthesizeCaption(post.Quote)
	}
	return post
}

// ResolveFallback builds content from the local quote list without touching
// the generator. Used directly for duplicate-quote retries so a collision
// never triggers a second paid call.
func (r *ContentResolver) ResolveFallback() *models.GeneratedPost {
	quote := fallbackQuotes[rand.Intn(len(fallbackQuotes))]
	return &models.GeneratedPost{
		Quote:    quote,
		Caption:  r.synthesizeCaption(quote),
		Keywords: strings.Join(r.cfg.Posting.SEOKeywords, ", "),
	}
}

func (r *ContentResolver) synthesizeCaption(quote string) string {
	replacer := strings.NewReplacer(
		"{quote}", quote,
		"{hashtags}", r.HashtagBlock(),
	)
	return replacer.Replace(r.cfg.Posting.CaptionTemplate)
}

// HashtagBlock returns the configured hashtags de-duplicated, sorted and
// space-joined, so synthesized captions are deterministic.
func (r *ContentResolver) HashtagBlock() string {
	seen := make(map[string]bool, len(r.cfg.Posting.Hashtags))
	var tags []string
	for _, tag := range r.cfg.Posting.Hashtags {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return strings.Join(tags, " ")
}
