// Package dispatch fans chunks out to a translation service on a bounded
// worker pool and gathers the results in input order.
package dispatch

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/docutran/internal/lang"
	"github.com/valpere/docutran/internal/postprocess"
	"github.com/valpere/docutran/internal/translator"
)

// FailedTranslation replaces any chunk the service could not translate.
const FailedTranslation = "[Translation Failed]"

// DefaultWorkers is the pool size used when none is configured:
// max(8, 2 × GOMAXPROCS).
func DefaultWorkers() int {
	return max(8, 2*runtime.GOMAXPROCS(0))
}

// Dispatcher is safe for concurrent use; every call owns its result slots.
type Dispatcher struct {
	service translator.TranslationService
	workers int
	filter  func(string) string
	log     zerolog.Logger
}

type Option func(*Dispatcher)

// WithWorkers sets the pool size. Values below 1 select DefaultWorkers.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithFilter replaces the post-filter applied to every successful result.
// The default is postprocess.StripSourceResidue; nil disables filtering.
func WithFilter(f func(string) string) Option {
	return func(d *Dispatcher) { d.filter = f }
}

func WithLogger(log zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

func New(service translator.TranslationService, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		service: service,
		workers: DefaultWorkers(),
		filter:  postprocess.StripSourceResidue,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Workers() int {
	return d.workers
}

// TranslateAll translates every chunk into target and returns the results
// in input order. A chunk whose translation fails, or whose task panics,
// yields FailedTranslation without affecting the others. The call returns
// once every task has finished.
func (d *Dispatcher) TranslateAll(ctx context.Context, chunks []string, target lang.Language) []string {
	results := make([]string, len(chunks))

	var g errgroup.Group
	g.SetLimit(d.workers)
	for i, chunk := range chunks {
		g.Go(func() error {
			results[i] = d.translateOne(ctx, i, chunk, target)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (d *Dispatcher) translateOne(ctx context.Context, i int, chunk string, target lang.Language) (out string) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Int("chunk", i).Str("target", target.Code).
				Err(fmt.Errorf("panic: %v", r)).Msg("translation task panicked")
			out = FailedTranslation
		}
	}()

	res, err := d.service.Translate(ctx, translator.TranslateRequest{
		Text:       chunk,
		TargetLang: target.Code,
		TargetName: target.Name,
	})
	if err != nil {
		d.log.Warn().Err(err).Int("chunk", i).Str("target", target.Code).Msg("chunk translation failed")
		return FailedTranslation
	}
	if res == nil {
		d.log.Warn().Int("chunk", i).Str("target", target.Code).Msg("chunk translation returned no result")
		return FailedTranslation
	}

	text := res.TranslatedText
	if d.filter != nil {
		text = d.filter(text)
	}
	d.log.Debug().Int("chunk", i).Str("target", target.Code).Str("text", text).Msg("chunk translated")
	return text
}
