package storage

import (
	"path/filepath"
	"testing"

	"github.com/julianstephens/memosphere/internal/models"
)

func setupSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "entries.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreSaveAndGet(t *testing.T) {
	store := setupSQLiteStore(t)

	saved, err := store.Save(models.NewEntry{
		ContentType: models.ContentTypeText,
		Content:     "first entry",
		Title:       "First",
		Feelings:    []models.Feeling{{ID: "f1", Name: "Happy", Intensity: 5}},
		Activities:  []models.Activity{{ID: "a1", Name: "Writing"}},
		Prompt:      "What made you smile today?",
	})
	if err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}
	if saved.ID == "" || saved.Date == "" {
		t.Fatal("Save() did not assign id and date")
	}

	entry, found, err := store.GetByID(saved.ID)
	if err != nil {
		t.Fatalf("GetByID() returned unexpected error: %v", err)
	}
	if !found {
		t.Fatal("GetByID() did not find saved entry")
	}
	if entry.Title != "First" || entry.Content != "first entry" || entry.Prompt != saved.Prompt {
		t.Errorf("GetByID() = %+v, fields do not round-trip", entry)
	}
	if len(entry.Feelings) != 1 || entry.Feelings[0].Name != "Happy" || entry.Feelings[0].Intensity != 5 {
		t.Errorf("GetByID() feelings = %v, want the saved feeling", entry.Feelings)
	}
	if len(entry.Activities) != 1 || entry.Activities[0].Name != "Writing" {
		t.Errorf("GetByID() activities = %v, want the saved activity", entry.Activities)
	}
}

func TestSQLiteStoreGetByIDAbsent(t *testing.T) {
	store := setupSQLiteStore(t)

	_, found, err := store.GetByID("no-such-id")
	if err != nil {
		t.Fatalf("GetByID() returned unexpected error: %v", err)
	}
	if found {
		t.Error("GetByID() found an entry that doesn't exist")
	}
}

func TestSQLiteStoreNewestFirst(t *testing.T) {
	store := setupSQLiteStore(t)

	var ids []string
	for _, title := range []string{"one", "two", "three", "four"} {
		saved, err := store.Save(models.NewEntry{
			ContentType: models.ContentTypeText, Content: title, Title: title,
		})
		if err != nil {
			t.Fatalf("Save() returned unexpected error: %v", err)
		}
		ids = append(ids, saved.ID)
	}

	entries, err := store.GetAll()
	if err != nil {
		t.Fatalf("GetAll() returned unexpected error: %v", err)
	}
	if len(entries) != len(ids) {
		t.Fatalf("GetAll() returned %d entries, want %d", len(entries), len(ids))
	}
	for i, entry := range entries {
		want := ids[len(ids)-1-i]
		if entry.ID != want {
			t.Errorf("GetAll()[%d] = %s, want %s (newest first)", i, entry.ID, want)
		}
	}
}

func TestSQLiteStoreReflectionChain(t *testing.T) {
	store := setupSQLiteStore(t)

	original, _ := store.Save(models.NewEntry{
		ContentType: models.ContentTypeText, Content: "o", Title: "Original",
	})
	first, _ := store.Save(models.NewEntry{
		ContentType: models.ContentTypeText, Content: "r1", Title: "R1",
		IsReflection: true, LinkedEntryID: original.ID,
	})
	second, _ := store.Save(models.NewEntry{
		ContentType: models.ContentTypeText, Content: "r2", Title: "R2",
		IsReflection: true, LinkedEntryID: first.ID,
	})

	chain, err := store.GetReflectionChain(second.ID)
	if err != nil {
		t.Fatalf("GetReflectionChain() returned unexpected error: %v", err)
	}
	if len(chain) != 2 || chain[0].ID != first.ID || chain[1].ID != original.ID {
		t.Errorf("GetReflectionChain() = %v, want [%s %s]", chainIDs(chain), first.ID, original.ID)
	}
}

func TestSQLiteStoreDeleteCascades(t *testing.T) {
	store := setupSQLiteStore(t)

	original, _ := store.Save(models.NewEntry{
		ContentType: models.ContentTypeText, Content: "o", Title: "Original",
		Feelings: []models.Feeling{{ID: "f1", Name: "Hopeful", Intensity: 3}},
	})
	reflection, _ := store.Save(models.NewEntry{
		ContentType: models.ContentTypeText, Content: "r", Title: "R",
		IsReflection: true, LinkedEntryID: original.ID,
	})
	unrelated, _ := store.Save(models.NewEntry{
		ContentType: models.ContentTypeText, Content: "u", Title: "U",
	})

	if err := store.Delete(original.ID); err != nil {
		t.Fatalf("Delete() returned unexpected error: %v", err)
	}

	if _, found, _ := store.GetByID(original.ID); found {
		t.Error("deleted entry still present")
	}
	if _, found, _ := store.GetByID(reflection.ID); found {
		t.Error("direct reflection was not cascaded")
	}
	if _, found, _ := store.GetByID(unrelated.ID); !found {
		t.Error("unrelated entry was removed")
	}

	// Deleting an unknown id is a no-op
	if err := store.Delete("missing"); err != nil {
		t.Fatalf("Delete() of unknown id returned unexpected error: %v", err)
	}
}

func TestSQLiteStoreSearch(t *testing.T) {
	store := setupSQLiteStore(t)

	if _, err := store.Save(models.NewEntry{
		ContentType: models.ContentTypeText, Content: "hiked the ridge", Title: "Saturday",
		Activities: []models.Activity{{ID: "a1", Name: "Hiking"}},
	}); err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}
	if _, err := store.Save(models.NewEntry{
		ContentType: models.ContentTypeText, Content: "quiet day inside", Title: "Sunday",
		Feelings: []models.Feeling{{ID: "f1", Name: "Restful", Intensity: 2}},
	}); err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"matches title", "saturday", 1},
		{"matches content", "RIDGE", 1},
		{"matches activity", "hik", 1},
		{"matches feeling", "restful", 1},
		{"no match", "ocean", 0},
		{"blank returns everything", "", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Search(tt.query)
			if err != nil {
				t.Fatalf("Search() returned unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Search(%q) returned %d entries, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}

func TestSQLiteStoreReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.db")

	store := NewSQLiteStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() returned unexpected error: %v", err)
	}
	saved, err := store.Save(models.NewEntry{
		ContentType: models.ContentTypeText, Content: "persist me", Title: "Keeper",
	})
	if err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() returned unexpected error: %v", err)
	}

	reloaded := NewSQLiteStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	defer reloaded.Close()

	entry, found, err := reloaded.GetByID(saved.ID)
	if err != nil {
		t.Fatalf("GetByID() returned unexpected error: %v", err)
	}
	if !found || entry.Content != "persist me" {
		t.Errorf("entry did not survive reload: found=%v entry=%+v", found, entry)
	}
}
