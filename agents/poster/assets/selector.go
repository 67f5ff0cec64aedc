package assets

import (
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	videoExtensions = map[string]bool{".mp4": true, ".mov": true, ".mkv": true}
	audioExtensions = map[string]bool{".mp3": true, ".wav": true, ".m4a": true}
	imageExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}
)

// Selector picks assets for a render from the configured directories. It is
// a pure filesystem reader; an inaccessible directory counts as empty.
type Selector struct {
	videosDir   string
	musicDir    string
	featuredDir string
	inlineDir   string
}

func NewSelector(videosDir, musicDir, featuredDir, inlineDir string) *Selector {
	return &Selector{
		videosDir:   videosDir,
		musicDir:    musicDir,
		featuredDir: featuredDir,
		inlineDir:   inlineDir,
	}
}

// PickBackground returns a random background video whose basename is not in
// excluded. When every candidate is excluded it falls back to the full set:
// repeating a clip beats halting the pipeline. Only an empty directory
// yields not-ok.
func (s *Selector) PickBackground(excluded map[string]bool) (string, bool) {
	all := listFiles(s.videosDir, videoExtensions)
	if len(all) == 0 {
		return "", false
	}

	candidates := all[:0:0]
	for _, path := range all {
		if !excluded[filepath.Base(path)] {
			candidates = append(candidates, path)
		}
	}
	if len(candidates) == 0 {
		candidates = all
	}
	return candidates[rand.Intn(len(candidates))], true
}

// PickMusic returns a random music track, or not-ok when there are none.
func (s *Selector) PickMusic() (string, bool) {
	return pickRandom(listFiles(s.musicDir, audioExtensions))
}

// PickFeaturedImage returns a random featured image, or not-ok.
func (s *Selector) PickFeaturedImage() (string, bool) {
	return pickRandom(listFiles(s.featuredDir, imageExtensions))
}

// PickInlineImages returns up to max inline images in shuffled order.
func (s *Selector) PickInlineImages(max int) []string {
	images := listFiles(s.inlineDir, imageExtensions)
	rand.Shuffle(len(images), func(i, j int) {
		images[i], images[j] = images[j], images[i]
	})
	if len(images) > max {
		images = images[:max]
	}
	return images
}

func pickRandom(paths []string) (string, bool) {
	if len(paths) == 0 {
		return "", false
	}
	return paths[rand.Intn(len(paths))], true
}

func listFiles(dir string, extensions map[string]bool) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if extensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths
}
