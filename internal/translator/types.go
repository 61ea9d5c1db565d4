package translator

import (
	"context"
	"time"
)

// TranslateRequest is one unit of text bound for a single target language.
// TargetName is the English display name used in LLM prompts; TargetLang is
// the ISO code used by machine-translation APIs.
type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	TargetName string `json:"target_name"`
}

type ServiceResult struct {
	ServiceName    string            `json:"service_name"`
	TranslatedText string            `json:"translated_text"`
	Metadata       map[string]string `json:"metadata"`
	Latency        time.Duration     `json:"latency"`
	Error          string            `json:"error,omitempty"`
}

// TranslationService is the external translation capability. Implementations
// must be safe for concurrent use: the dispatcher calls Translate from many
// goroutines at once.
type TranslationService interface {
	Name() string
	Translate(ctx context.Context, req TranslateRequest) (*ServiceResult, error)
	IsAvailable(ctx context.Context) error
}

// PromptTemplate is the instruction sent to LLM backends. It ends with the
// answer marker that postprocess.ExtractAnswer looks for.
const PromptTemplate = "Translate the following English text into %s:\n\n%s\n\nTranslation:"
