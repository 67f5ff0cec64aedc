package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"autoposter/internal/models"
)

// StateStore persists the daily posting history to a JSON file, with a dated
// backup copy written alongside every save. Unreadable or corrupt state is
// treated as "start fresh" so a bad file can never take the scheduler down.
type StateStore struct {
	statePath  string
	backupsDir string
	mu         sync.Mutex
	now        func() time.Time
}

func NewStateStore(statePath, backupsDir string) (*StateStore, error) {
	if err := os.MkdirAll(backupsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}
	if dir := filepath.Dir(statePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	return &StateStore{
		statePath:  statePath,
		backupsDir: backupsDir,
		now:        time.Now,
	}, nil
}

// Load reads the persisted history. A missing file yields a fresh history
// dated today; so does a parse failure, after logging it.
func (s *StateStore) Load() *models.PostHistory {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("State file %s not found, initialising new state", s.statePath)
		} else {
			log.Printf("Failed to read state file %s: %v", s.statePath, err)
		}
		return models.NewPostHistory(s.now())
	}

	var history models.PostHistory
	if err := json.Unmarshal(data, &history); err != nil {
		log.Printf("Failed to parse state file %s: %v - starting fresh", s.statePath, err)
		return models.NewPostHistory(s.now())
	}

	if history.UsedVideos == nil {
		history.UsedVideos = []string{}
	}
	if history.UsedQuotes == nil {
		history.UsedQuotes = []string{}
	}
	history.ResetIfNewDay(s.now())
	return &history
}

// Save writes the history to the primary state file and then a dated copy
// into the backups directory. A backup failure is logged but never fails the
// save; a primary-write failure is logged and swallowed, since losing one
// save beats crashing the scheduler loop.
func (s *StateStore) Save(history *models.PostHistory) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		log.Printf("Failed to serialize post history: %v", err)
		return
	}

	if err := os.WriteFile(s.statePath, data, 0644); err != nil {
		log.Printf("Unable to persist state to %s: %v", s.statePath, err)
		return
	}

	backupPath := filepath.Join(s.backupsDir, fmt.Sprintf("state_%s.json", s.now().Format("2006-01-02")))
	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		log.Printf("Warning: failed to write state backup %s: %v", backupPath, err)
	}
}
