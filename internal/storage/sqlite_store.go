package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/julianstephens/memosphere/internal/constants"
	"github.com/julianstephens/memosphere/internal/models"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore is a SQLite-backed Provider. It holds the same collection the
// JSON slot store does, with feelings and activities normalized into side
// tables. Newest-first ordering comes from insertion order.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

func (s *SQLiteStore) Init() error {
	// Create data directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	return s.open()
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}
	return s.open()
}

func (s *SQLiteStore) open() error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection avoids "database is locked" errors; mutations are
	// serialized at the store boundary anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s.db = db

	if err := s.migrate(); err != nil {
		db.Close()
		s.db = nil
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// migrate applies embedded SQL migration files that haven't been run yet.
func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	files, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		if strings.HasSuffix(f.Name(), ".sql") {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)

	for i, name := range names {
		version := i + 1

		var applied int
		err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&applied)
		if err != nil {
			return fmt.Errorf("failed to check schema version: %w", err)
		}
		if applied > 0 {
			continue
		}

		stmts, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(stmts)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", name, err)
		}
	}

	return nil
}

const entryColumns = "id, content_type, content, title, date, is_reflection, linked_entry_id, prompt"

func (s *SQLiteStore) GetAll() ([]models.Entry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	// rowid increases with insertion order, so descending rowid is exact
	// reverse order of creation even when timestamps tie
	rows, err := s.db.Query("SELECT " + entryColumns + " FROM entries ORDER BY rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	return s.scanEntries(rows)
}

func (s *SQLiteStore) scanEntries(rows *sql.Rows) ([]models.Entry, error) {
	entries := []models.Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	for i := range entries {
		if err := s.loadTags(&entries[i]); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (models.Entry, error) {
	var entry models.Entry
	var linkedID, prompt sql.NullString
	var isReflection int
	if err := row.Scan(&entry.ID, &entry.ContentType, &entry.Content, &entry.Title,
		&entry.Date, &isReflection, &linkedID, &prompt); err != nil {
		return models.Entry{}, fmt.Errorf("failed to scan entry: %w", err)
	}
	entry.IsReflection = isReflection != 0
	entry.LinkedEntryID = linkedID.String
	entry.Prompt = prompt.String
	return entry, nil
}

func (s *SQLiteStore) loadTags(entry *models.Entry) error {
	feelingRows, err := s.db.Query(
		"SELECT id, name, intensity FROM entry_feelings WHERE entry_id = ?", entry.ID)
	if err != nil {
		return fmt.Errorf("failed to query feelings: %w", err)
	}
	defer feelingRows.Close()

	entry.Feelings = []models.Feeling{}
	for feelingRows.Next() {
		var f models.Feeling
		if err := feelingRows.Scan(&f.ID, &f.Name, &f.Intensity); err != nil {
			return fmt.Errorf("failed to scan feeling: %w", err)
		}
		entry.Feelings = append(entry.Feelings, f)
	}
	if err := feelingRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate feelings: %w", err)
	}

	activityRows, err := s.db.Query(
		"SELECT id, name FROM entry_activities WHERE entry_id = ?", entry.ID)
	if err != nil {
		return fmt.Errorf("failed to query activities: %w", err)
	}
	defer activityRows.Close()

	entry.Activities = []models.Activity{}
	for activityRows.Next() {
		var a models.Activity
		if err := activityRows.Scan(&a.ID, &a.Name); err != nil {
			return fmt.Errorf("failed to scan activity: %w", err)
		}
		entry.Activities = append(entry.Activities, a)
	}
	if err := activityRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate activities: %w", err)
	}

	return nil
}

func (s *SQLiteStore) GetByID(id string) (models.Entry, bool, error) {
	if s.db == nil {
		return models.Entry{}, false, fmt.Errorf("storage not loaded")
	}

	row := s.db.QueryRow("SELECT "+entryColumns+" FROM entries WHERE id = ?", id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Entry{}, false, nil
		}
		return models.Entry{}, false, err
	}

	if err := s.loadTags(&entry); err != nil {
		return models.Entry{}, false, err
	}
	return entry, true, nil
}

func (s *SQLiteStore) Save(entry models.NewEntry) (models.Entry, error) {
	if s.db == nil {
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

	tx, err := s.db.Begin()
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO entries ("+entryColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		saved.ID, string(saved.ContentType), saved.Content, saved.Title, saved.Date,
		boolToInt(saved.IsReflection), nullable(saved.LinkedEntryID), nullable(saved.Prompt),
	); err != nil {
		return models.Entry{}, fmt.Errorf("failed to insert entry: %w", err)
	}

	for _, f := range saved.Feelings {
		if _, err := tx.Exec(
			"INSERT INTO entry_feelings (entry_id, id, name, intensity) VALUES (?, ?, ?, ?)",
			saved.ID, f.ID, f.Name, f.Intensity,
		); err != nil {
			return models.Entry{}, fmt.Errorf("failed to insert feeling: %w", err)
		}
	}

	for _, a := range saved.Activities {
		if _, err := tx.Exec(
			"INSERT INTO entry_activities (entry_id, id, name) VALUES (?, ?, ?)",
			saved.ID, a.ID, a.Name,
		); err != nil {
			return models.Entry{}, fmt.Errorf("failed to insert activity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Entry{}, fmt.Errorf("failed to commit entry: %w", err)
	}

	return saved, nil
}

func (s *SQLiteStore) Search(query string) ([]models.Entry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.GetAll()
	}

	pattern := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT `+entryColumns+` FROM entries e
		WHERE LOWER(e.title) LIKE ?
		   OR LOWER(e.content) LIKE ?
		   OR EXISTS (SELECT 1 FROM entry_feelings f
		              WHERE f.entry_id = e.id AND LOWER(f.name) LIKE ?)
		   OR EXISTS (SELECT 1 FROM entry_activities a
		              WHERE a.entry_id = e.id AND LOWER(a.name) LIKE ?)
		ORDER BY rowid DESC`,
		pattern, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	defer rows.Close()

	return s.scanEntries(rows)
}

func (s *SQLiteStore) GetReflectionChain(id string) ([]models.Entry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	return walkChain(id, s.GetByID)
}

func (s *SQLiteStore) Delete(id string) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Collect the entry plus its direct reflections so tag rows go with them
	rows, err := tx.Query("SELECT id FROM entries WHERE id = ? OR linked_entry_id = ?", id, id)
	if err != nil {
		return fmt.Errorf("failed to query entries for delete: %w", err)
	}
	var ids []string
	for rows.Next() {
		var entryID string
		if err := rows.Scan(&entryID); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan entry id: %w", err)
		}
		ids = append(ids, entryID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to iterate entry ids: %w", err)
	}
	rows.Close()

	for _, entryID := range ids {
		if _, err := tx.Exec("DELETE FROM entry_feelings WHERE entry_id = ?", entryID); err != nil {
			return fmt.Errorf("failed to delete feelings: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM entry_activities WHERE entry_id = ?", entryID); err != nil {
			return fmt.Errorf("failed to delete activities: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM entries WHERE id = ?", entryID); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
	}

	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
