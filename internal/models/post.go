package models

import "time"

// PostHistory tracks per-day posting state. It is keyed by LastPostDate and
// reset on date rollover; the counters and used-sets move together and are
// only persisted after a successful publish decision.
type PostHistory struct {
	LastPostDate string   `json:"last_post_date"`
	PostsToday   int      `json:"posts_today"`
	UsedVideos   []string `json:"used_videos"`
	UsedQuotes   []string `json:"used_quotes"`
}

// NewPostHistory returns a fresh history dated at now.
func NewPostHistory(now time.Time) *PostHistory {
	return &PostHistory{
		LastPostDate: now.Format("2006-01-02"),
		UsedVideos:   []string{},
		UsedQuotes:   []string{},
	}
}

// ResetIfNewDay clears counters and used-sets when the stored date no longer
// matches the calendar day of now. Idempotent.
func (h *PostHistory) ResetIfNewDay(now time.Time) {
	today := now.Format("2006-01-02")
	if h.LastPostDate == today {
		return
	}
	h.LastPostDate = today
	h.PostsToday = 0
	h.UsedVideos = []string{}
	h.UsedQuotes = []string{}
}

// HasUsedVideo reports whether a background (by basename) was consumed today.
func (h *PostHistory) HasUsedVideo(name string) bool {
	for _, v := range h.UsedVideos {
		if v == name {
			return true
		}
	}
	return false
}

// HasUsedQuote reports whether a quote text was used today.
func (h *PostHistory) HasUsedQuote(quote string) bool {
	for _, q := range h.UsedQuotes {
		if q == quote {
			return true
		}
	}
	return false
}

// RemoveUsedQuote drops every occurrence of quote from the used set.
func (h *PostHistory) RemoveUsedQuote(quote string) {
	kept := h.UsedQuotes[:0]
	for _, q := range h.UsedQuotes {
		if q != quote {
			kept = append(kept, q)
		}
	}
	h.UsedQuotes = kept
}

// UploadRecord is one entry in the upload registry. Records are created once
// per successful or simulated publish and never mutated or deleted.
type UploadRecord struct {
	Fingerprint string `json:"-"`
	VideoPath   string `json:"video_path"`
	Caption     string `json:"caption"`
}

// GeneratedPost is the validated payload produced by the content generator
// or the local fallback.
type GeneratedPost struct {
	Quote    string `json:"quote"`
	Caption  string `json:"caption"`
	Keywords string `json:"keywords"`
}

// PostReport carries the metadata of a completed run for external logging.
type PostReport struct {
	RunID      string    `json:"run_id"`
	PostedAt   time.Time `json:"posted_at"`
	Quote      string    `json:"quote"`
	Caption    string    `json:"caption"`
	VideoPath  string    `json:"video_path"`
	Background string    `json:"background"`
	Published  bool      `json:"published"`
}
