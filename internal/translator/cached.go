package translator

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Memory is a translation memory keyed by source text and language pair.
type Memory interface {
	GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error)
	SaveToMemory(ctx context.Context, sourceText, sourceLang, targetLang, finalText, serviceUsed string) error
}

// CachedService consults a translation memory before calling the wrapped
// service and records successful results. Memory failures are logged and
// never fail the translation.
type CachedService struct {
	inner  TranslationService
	memory Memory
	log    zerolog.Logger
}

func NewCachedService(inner TranslationService, memory Memory, log zerolog.Logger) *CachedService {
	return &CachedService{inner: inner, memory: memory, log: log}
}

func (s *CachedService) Name() string {
	return s.inner.Name() + "+memory"
}

func (s *CachedService) Translate(ctx context.Context, req TranslateRequest) (*ServiceResult, error) {
	start := time.Now()

	cached, found, err := s.memory.GetCachedTranslation(ctx, req.Text, sourceKey(req.SourceLang), req.TargetLang)
	if err != nil {
		s.log.Warn().Err(err).Str("target", req.TargetLang).Msg("translation memory lookup failed")
	} else if found {
		return &ServiceResult{
			ServiceName:    s.inner.Name(),
			TranslatedText: cached,
			Metadata:       map[string]string{"cache": "hit"},
			Latency:        time.Since(start),
		}, nil
	}

	result, err := s.inner.Translate(ctx, req)
	if err != nil {
		return result, err
	}
	if result.TranslatedText != "" {
		if err := s.memory.SaveToMemory(ctx, req.Text, sourceKey(req.SourceLang), req.TargetLang, result.TranslatedText, result.ServiceName); err != nil {
			s.log.Warn().Err(err).Str("target", req.TargetLang).Msg("translation memory save failed")
		}
	}
	return result, nil
}

func (s *CachedService) IsAvailable(ctx context.Context) error {
	return s.inner.IsAvailable(ctx)
}

func sourceKey(lang string) string {
	if lang == "" {
		return "auto"
	}
	return lang
}
