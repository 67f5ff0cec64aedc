package models

// RenderRequest is the boundary object handed to the renderer collaborator.
type RenderRequest struct {
	Quote          string
	Caption        string
	BackgroundPath string
	OutputPath     string
	MusicPath      string   // optional
	FeaturedImage  string   // optional
	InlineImages   []string // ordered, may be empty
}

// RenderResult echoes the inputs actually used alongside the written output
// path, so callers can back up and audit what went into the video.
type RenderResult struct {
	OutputPath     string
	BackgroundPath string
	MusicPath      string
	FeaturedImage  string
	InlineImages   []string
}
