package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/julianstephens/memosphere/internal/constants"
	"github.com/julianstephens/memosphere/internal/models"
)

// JSONStore persists the whole collection as a single JSON array of entries,
// newest first. The slot is read in full and rewritten in full on every
// mutation; the mutex provides the exclusivity at the slot-access boundary.
type JSONStore struct {
	path string

	mu      sync.Mutex
	entries []models.Entry
	loaded  bool
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		path: path,
	}
}

func (s *JSONStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Create data directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Check if slot already exists
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.entries = []models.Entry{}
	s.loaded = true
	return s.persist(s.entries)
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// An absent slot reads as an empty collection
			s.entries = []models.Entry{}
			s.loaded = true
			return nil
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	var entries []models.Entry
	if len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("failed to parse storage: %w", err)
		}
	}
	if entries == nil {
		entries = []models.Entry{}
	}

	s.entries = entries
	s.loaded = true
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

// persist writes the given collection to the slot. The in-memory collection is
// only replaced by callers after persist succeeds, so a failed write never
// leaves memory ahead of disk.
func (s *JSONStore) persist(entries []models.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) GetAll() ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil, fmt.Errorf("storage not loaded")
	}

	entries := make([]models.Entry, len(s.entries))
	for i, entry := range s.entries {
		entries[i] = cloneEntry(entry)
	}
	return entries, nil
}

// cloneEntry copies an entry along with its tag slices so callers never share
// backing arrays with the in-memory collection.
func cloneEntry(entry models.Entry) models.Entry {
	if entry.Feelings != nil {
		entry.Feelings = append([]models.Feeling(nil), entry.Feelings...)
	}
	if entry.Activities != nil {
		entry.Activities = append([]models.Activity(nil), entry.Activities...)
	}
	return entry
}

func (s *JSONStore) GetByID(id string) (models.Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return models.Entry{}, false, fmt.Errorf("storage not loaded")
	}

	return s.findByID(id)
}

func (s *JSONStore) findByID(id string) (models.Entry, bool, error) {
	for _, entry := range s.entries {
		if entry.ID == id {
			return cloneEntry(entry), true, nil
		}
	}
	return models.Entry{}, false, nil
}

func (s *JSONStore) Save(entry models.NewEntry) (models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return models.Entry{}, fmt.Errorf("storage not loaded")
	}

	saved := models.Entry{
		ID:            uuid.NewString(),
		ContentType:   entry.ContentType,
		Content:       entry.Content,
		Title:         entry.Title,
		Date:          time.Now().UTC().Format(constants.DateFormat),
		Feelings:      entry.Feelings,
		Activities:    entry.Activities,
		IsReflection:  entry.IsReflection,
		LinkedEntryID: entry.LinkedEntryID,
		Prompt:        entry.Prompt,
	}

	// Prepend so GetAll is naturally newest-first
	entries := make([]models.Entry, 0, len(s.entries)+1)
	entries = append(entries, cloneEntry(saved))
	entries = append(entries, s.entries...)

	if err := s.persist(entries); err != nil {
		return models.Entry{}, err
	}
	s.entries = entries

	return saved, nil
}

func (s *JSONStore) Search(query string) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil, fmt.Errorf("storage not loaded")
	}

	query = strings.ToLower(strings.TrimSpace(query))
	matches := []models.Entry{}
	for _, entry := range s.entries {
		if query == "" || matchesQuery(entry, query) {
			matches = append(matches, cloneEntry(entry))
		}
	}
	return matches, nil
}

func (s *JSONStore) GetReflectionChain(id string) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil, fmt.Errorf("storage not loaded")
	}

	return walkChain(id, func(id string) (models.Entry, bool, error) {
		return s.findByID(id)
	})
}

func (s *JSONStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return fmt.Errorf("storage not loaded")
	}

	// Remove the entry and cascade to entries directly linked to it
	entries := make([]models.Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if entry.ID == id || entry.LinkedEntryID == id {
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) == len(s.entries) {
		// Nothing to remove; deleting an unknown id is a no-op
		return nil
	}

	if err := s.persist(entries); err != nil {
		return err
	}
	s.entries = entries

	return nil
}

func (s *JSONStore) GetStoragePath() string {
	return s.path
}
