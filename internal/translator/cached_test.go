package translator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type fakeService struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeService) Name() string { return "fake" }

func (f *fakeService) Translate(ctx context.Context, req TranslateRequest) (*ServiceResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return &ServiceResult{ServiceName: "fake", Error: f.err.Error()}, f.err
	}
	return &ServiceResult{ServiceName: "fake", TranslatedText: "T(" + req.Text + ")"}, nil
}

func (f *fakeService) IsAvailable(ctx context.Context) error { return nil }

type mapMemory struct {
	mu      sync.Mutex
	entries map[string]string
	failGet bool
}

func (m *mapMemory) GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error) {
	if m.failGet {
		return "", false, errors.New("db locked")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[sourceText+"|"+sourceLang+"|"+targetLang]
	return v, ok, nil
}

func (m *mapMemory) SaveToMemory(ctx context.Context, sourceText, sourceLang, targetLang, finalText, serviceUsed string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sourceText+"|"+sourceLang+"|"+targetLang] = finalText
	return nil
}

func TestCachedService_MissThenHit(t *testing.T) {
	inner := &fakeService{}
	mem := &mapMemory{entries: map[string]string{}}
	svc := NewCachedService(inner, mem, zerolog.Nop())

	for i := 0; i < 3; i++ {
		res, err := svc.Translate(context.Background(), arabicReq)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.TranslatedText != "T(Hello world.)" {
			t.Errorf("unexpected text %q", res.TranslatedText)
		}
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 backend call, got %d", inner.calls)
	}
	if _, ok := mem.entries["Hello world.|auto|ar"]; !ok {
		t.Errorf("expected entry keyed with auto source, got %v", mem.entries)
	}
}

func TestCachedService_ErrorNotCached(t *testing.T) {
	inner := &fakeService{err: errors.New("boom")}
	mem := &mapMemory{entries: map[string]string{}}
	svc := NewCachedService(inner, mem, zerolog.Nop())

	if _, err := svc.Translate(context.Background(), arabicReq); err == nil {
		t.Fatal("expected error from backend")
	}
	if len(mem.entries) != 0 {
		t.Errorf("expected no cached entries, got %v", mem.entries)
	}
}

func TestCachedService_LookupFailureFallsThrough(t *testing.T) {
	inner := &fakeService{}
	mem := &mapMemory{entries: map[string]string{}, failGet: true}
	svc := NewCachedService(inner, mem, zerolog.Nop())

	res, err := svc.Translate(context.Background(), arabicReq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TranslatedText != "T(Hello world.)" || inner.calls != 1 {
		t.Errorf("expected backend result, got %q after %d calls", res.TranslatedText, inner.calls)
	}
	if svc.Name() != "fake+memory" {
		t.Errorf("unexpected name %q", svc.Name())
	}
}
