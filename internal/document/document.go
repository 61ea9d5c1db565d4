// Package document translates a parsed document into every configured
// target language.
package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/valpere/docutran/internal/chunker"
	"github.com/valpere/docutran/internal/detector"
	"github.com/valpere/docutran/internal/format"
	"github.com/valpere/docutran/internal/lang"
	"github.com/valpere/docutran/internal/segment"
)

// DetectionSampleRunes bounds the text handed to language detection.
const DetectionSampleRunes = 500

// Dispatcher translates an ordered chunk sequence into one language.
type Dispatcher interface {
	TranslateAll(ctx context.Context, chunks []string, target lang.Language) []string
}

// Document is the serialized output for one target language.
type Document struct {
	Language lang.Language
	Body     string
}

type Result struct {
	// SourceLanguage is the detected code, or the adapter's fallback.
	SourceLanguage string
	// Documents follow the configured language order.
	Documents []Document
}

// ByName maps language display names to document bodies.
func (r *Result) ByName() map[string]string {
	out := make(map[string]string, len(r.Documents))
	for _, d := range r.Documents {
		out[d.Language.Name] = d.Body
	}
	return out
}

type Translator struct {
	dispatcher Dispatcher
	detector   detector.Detector
	segmenter  segment.Segmenter
	languages  []lang.Language
	log        zerolog.Logger
}

func New(dispatcher Dispatcher, det detector.Detector, seg segment.Segmenter, languages []lang.Language, log zerolog.Logger) *Translator {
	return &Translator{
		dispatcher: dispatcher,
		detector:   det,
		segmenter:  seg,
		languages:  languages,
		log:        log,
	}
}

// Translate parses raw with adapter, detects its language and produces one
// document per configured language other than the detected source.
// Per-chunk failures and detection failures degrade; only reconstruction
// errors are returned.
func (t *Translator) Translate(ctx context.Context, raw string, adapter format.Adapter) (*Result, error) {
	blocks := adapter.Parse(raw)

	source := t.detectSource(blocks, adapter.FallbackLanguage())

	// Chunks for all blocks go through one dispatch per language; spans
	// record which slice of the results belongs to which block.
	var chunks []string
	spans := make([][2]int, len(blocks))
	for i, b := range blocks {
		start := len(chunks)
		chunks = append(chunks, chunker.Chunk(t.segmenter.Segment(b.Content()))...)
		spans[i] = [2]int{start, len(chunks)}
	}

	result := &Result{SourceLanguage: source}
	for _, target := range t.languages {
		if target.Code == source {
			t.log.Debug().Str("language", target.Code).Msg("skipping source language")
			continue
		}

		start := time.Now()
		translated := t.dispatcher.TranslateAll(ctx, chunks, target)

		out := make([]format.Block, len(blocks))
		for i, b := range blocks {
			out[i] = b.Translated(strings.Join(translated[spans[i][0]:spans[i][1]], " "))
		}

		body, err := adapter.Reconstruct(out)
		if err != nil {
			return nil, fmt.Errorf("reconstruct %s document: %w", target.Code, err)
		}

		t.log.Info().
			Str("language", target.Code).
			Int("blocks", len(blocks)).
			Int("chunks", len(chunks)).
			Dur("elapsed", time.Since(start)).
			Msg("language translated")

		result.Documents = append(result.Documents, Document{Language: target, Body: body})
	}

	return result, nil
}

func (t *Translator) detectSource(blocks []format.Block, fallback string) string {
	texts := make([]string, len(blocks))
	for i, b := range blocks {
		texts[i] = b.Content()
	}
	sample := strings.Join(texts, " ")
	if r := []rune(sample); len(r) > DetectionSampleRunes {
		sample = string(r[:DetectionSampleRunes])
	}

	code, err := t.detector.Detect(sample)
	if err != nil {
		t.log.Warn().Err(err).Str("fallback", fallback).Msg("language detection failed")
		return fallback
	}
	t.log.Info().Str("source", code).Str("name", lang.Display(code)).Msg("detected source language")
	return code
}
