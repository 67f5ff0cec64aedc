package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"autoposter/internal/models"
)

// UploadRegistry is a durable fingerprint -> record map used to suppress
// re-uploading content that was already posted. The registry is loaded once
// at startup and rewritten in full on every add; it grows unbounded, which
// stays small in practice given the daily posting quota.
type UploadRegistry struct {
	path    string
	mu      sync.RWMutex
	records map[string]models.UploadRecord
}

func NewUploadRegistry(path string) (*UploadRegistry, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create registry directory: %w", err)
		}
	}

	r := &UploadRegistry{
		path:    path,
		records: make(map[string]models.UploadRecord),
	}
	r.load()
	return r, nil
}

// Has reports whether a fingerprint is already recorded.
func (r *UploadRegistry) Has(fingerprint string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.records[fingerprint]
	return ok
}

// Add upserts a record by fingerprint and immediately persists the full
// registry.
func (r *UploadRegistry) Add(record models.UploadRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.Fingerprint] = record
	r.save()
}

// Count returns the number of recorded uploads.
func (r *UploadRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (r *UploadRegistry) load() {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: failed to read upload registry %s: %v", r.path, err)
		}
		return
	}

	if err := json.Unmarshal(data, &r.records); err != nil {
		log.Printf("Warning: failed to parse upload registry %s: %v - starting empty", r.path, err)
		r.records = make(map[string]models.UploadRecord)
	}
}

func (r *UploadRegistry) save() {
	data, err := json.MarshalIndent(r.records, "", "  ")
	if err != nil {
		log.Printf("Failed to serialize upload registry: %v", err)
		return
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		log.Printf("Unable to persist upload registry %s: %v", r.path, err)
	}
}
