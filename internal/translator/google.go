package translator

import (
	"context"
	"fmt"
	"sync"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleService calls the Cloud Translation API. The client is created on
// first use and shared by all goroutines until Close.
type GoogleService struct {
	opts []option.ClientOption

	once   sync.Once
	client *translate.Client
	err    error
}

// NewGoogleService returns a Cloud Translation backend. credentialsFile may
// be empty to use Application Default Credentials.
func NewGoogleService(credentialsFile string) *GoogleService {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	return &GoogleService{opts: opts}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) getClient(ctx context.Context) (*translate.Client, error) {
	s.once.Do(func() {
		// Detached from ctx so cancelling the first request does not poison
		// the shared client.
		s.client, s.err = translate.NewClient(context.WithoutCancel(ctx), s.opts...)
	})
	return s.client, s.err
}

func (s *GoogleService) Translate(ctx context.Context, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	target, err := language.Parse(req.TargetLang)
	if err != nil {
		result.Error = fmt.Sprintf("invalid target language: %v", err)
		return result, fmt.Errorf("google: invalid target language %q: %w", req.TargetLang, err)
	}

	client, err := s.getClient(ctx)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create client: %v", err)
		return result, fmt.Errorf("google: failed to create client: %w", err)
	}

	opts := &translate.Options{Format: translate.Text}
	if req.SourceLang != "" && req.SourceLang != "auto" {
		if source, err := language.Parse(req.SourceLang); err == nil {
			opts.Source = source
		}
	}

	translations, err := client.Translate(ctx, []string{req.Text}, target, opts)
	if err != nil {
		result.Error = fmt.Sprintf("translation failed: %v", err)
		return result, fmt.Errorf("google: translation failed: %w", err)
	}
	if len(translations) == 0 {
		result.Error = "no translation returned"
		return result, fmt.Errorf("google: no translation returned")
	}

	result.TranslatedText = translations[0].Text
	if translations[0].Source != language.Und {
		result.Metadata = map[string]string{"detected_source": translations[0].Source.String()}
	}

	return result, nil
}

func (s *GoogleService) IsAvailable(ctx context.Context) error {
	_, err := s.getClient(ctx)
	return err
}

// Close releases the underlying client, if one was created.
func (s *GoogleService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
