package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_New(t *testing.T) {
	s := newTestStore(t)
	if s == nil {
		t.Fatal("expected non-nil store")
	}
}

func TestStore_New_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path/test.db")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestStore_GetCachedTranslation_Miss(t *testing.T) {
	s := newTestStore(t)

	text, found, err := s.GetCachedTranslation(context.Background(), "Hello world.", "auto", "ar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Errorf("expected miss, got %q", text)
	}
}

func TestStore_GetCachedTranslation_Hit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveToMemory(ctx, "Hello world.", "auto", "ar", "مرحبا بالعالم", "ollama"); err != nil {
		t.Fatalf("SaveToMemory failed: %v", err)
	}

	// Surrounding whitespace is not part of the key.
	text, found, err := s.GetCachedTranslation(ctx, "  Hello world.\n", "auto", "ar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || text != "مرحبا بالعالم" {
		t.Errorf("expected hit 'مرحبا بالعالم', got %q (found=%v)", text, found)
	}

	if _, found, _ := s.GetCachedTranslation(ctx, "Hello world.", "auto", "ja"); found {
		t.Error("expected miss for a different target language")
	}
}

func TestStore_GetCachedTranslation_NFC(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// "é" precomposed vs "e" + combining acute.
	if err := s.SaveToMemory(ctx, "caf\u00e9", "auto", "ja", "カフェ", "ollama"); err != nil {
		t.Fatalf("SaveToMemory failed: %v", err)
	}
	text, found, err := s.GetCachedTranslation(ctx, "cafe\u0301", "auto", "ja")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || text != "カフェ" {
		t.Errorf("expected NFC-equivalent hit, got %q (found=%v)", text, found)
	}
}

func TestStore_GetCachedTranslation_Invalidated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveToMemory(ctx, "Hello", "auto", "ar", "مرحبا", "ollama"); err != nil {
		t.Fatalf("SaveToMemory failed: %v", err)
	}
	entries, err := s.ListMemory(ctx, "")
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d (err=%v)", len(entries), err)
	}

	if err := s.InvalidateMemory(ctx, entries[0].ID); err != nil {
		t.Fatalf("InvalidateMemory failed: %v", err)
	}
	if _, found, _ := s.GetCachedTranslation(ctx, "Hello", "auto", "ar"); found {
		t.Error("expected invalidated entry to miss")
	}

	// Saving again revives the entry.
	if err := s.SaveToMemory(ctx, "Hello", "auto", "ar", "أهلا", "ollama"); err != nil {
		t.Fatalf("SaveToMemory failed: %v", err)
	}
	text, found, _ := s.GetCachedTranslation(ctx, "Hello", "auto", "ar")
	if !found || text != "أهلا" {
		t.Errorf("expected revived entry, got %q (found=%v)", text, found)
	}
}

func TestStore_ListMemory_FilterByTarget(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SaveToMemory(ctx, "one", "auto", "ar", "واحد", "ollama")
	s.SaveToMemory(ctx, "one", "auto", "ja", "一", "ollama")
	s.SaveToMemory(ctx, "two", "auto", "ja", "二", "ollama")

	all, err := s.ListMemory(ctx, "")
	if err != nil {
		t.Fatalf("ListMemory failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 entries, got %d", len(all))
	}

	ja, err := s.ListMemory(ctx, "ja")
	if err != nil {
		t.Fatalf("ListMemory failed: %v", err)
	}
	if len(ja) != 2 {
		t.Errorf("expected 2 ja entries, got %d", len(ja))
	}
	for _, e := range ja {
		if e.TargetLang != "ja" || e.ServiceUsed != "ollama" {
			t.Errorf("unexpected entry %+v", e)
		}
	}
}

func TestStore_Stats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SaveToMemory(ctx, "one", "auto", "ar", "واحد", "ollama")
	s.SaveToMemory(ctx, "two", "auto", "ar", "اثنان", "ollama")
	s.GetCachedTranslation(ctx, "one", "auto", "ar")

	entries, _ := s.ListMemory(ctx, "")
	for _, e := range entries {
		if e.SourceText == "two" {
			s.InvalidateMemory(ctx, e.ID)
		}
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalEntries != 2 || stats.ActiveEntries != 1 || stats.InvalidEntries != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.TotalUsage != 3 {
		t.Errorf("expected total usage 3, got %d", stats.TotalUsage)
	}
}

func TestStore_DeleteMemory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SaveToMemory(ctx, "one", "auto", "ar", "واحد", "ollama")
	entries, _ := s.ListMemory(ctx, "")
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if err := s.DeleteMemory(ctx, entries[0].ID); err != nil {
		t.Fatalf("DeleteMemory failed: %v", err)
	}
	if _, found, _ := s.GetCachedTranslation(ctx, "one", "auto", "ar"); found {
		t.Error("expected deleted entry to miss")
	}

	err := s.DeleteMemory(ctx, entries[0].ID)
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestStore_ClearMemory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SaveToMemory(ctx, "one", "auto", "ar", "واحد", "ollama")
	s.SaveToMemory(ctx, "two", "auto", "ar", "اثنان", "ollama")

	n, err := s.ClearMemory(ctx)
	if err != nil {
		t.Fatalf("ClearMemory failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 cleared, got %d", n)
	}
	stats, _ := s.Stats(ctx)
	if stats.TotalEntries != 0 {
		t.Errorf("expected empty memory, got %d entries", stats.TotalEntries)
	}
}

func TestStore_ConcurrentWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := string(rune('a' + i))
			if err := s.SaveToMemory(ctx, text, "auto", "ja", text, "ollama"); err != nil {
				t.Errorf("SaveToMemory(%q) failed: %v", text, err)
			}
		}(i)
	}
	wg.Wait()

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalEntries != 16 {
		t.Errorf("expected 16 entries, got %d", stats.TotalEntries)
	}
}
