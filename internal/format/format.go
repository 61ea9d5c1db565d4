// Package format parses input documents into ordered Blocks and rebuilds
// them after translation. Three adapters cover the supported families:
// plain text, SubRip subtitles and JSON dialogue transcripts.
package format

import (
	"path"
	"strings"
)

// Block is one structural unit of a document. Only the payload (Text or
// Lines) changes between the source and a translated copy.
type Block struct {
	Index     string
	Timestamp string
	Text      string
	// Lines holds the raw subtitle lines; nil for the other families.
	Lines   []string
	Speaker string
	Flagged bool

	// meta keeps dialogue metadata exactly as it appeared in the source.
	meta dialogueMeta
}

// Content is the translatable payload. Subtitle lines are joined into a
// single unit.
func (b Block) Content() string {
	if b.Lines != nil {
		return strings.TrimSpace(strings.Join(b.Lines, " "))
	}
	return b.Text
}

// Translated returns a copy of b carrying text as its payload. The result
// occupies one subtitle line, or none when text is empty.
func (b Block) Translated(text string) Block {
	b.Text = text
	b.Lines = nil
	if text != "" {
		b.Lines = []string{text}
	}
	return b
}

// Adapter converts between a serialized document and its Blocks.
type Adapter interface {
	// Family names the output directory group: "text", "srt" or "json".
	Family() string
	Parse(raw string) []Block
	Reconstruct(blocks []Block) (string, error)
	// FallbackLanguage is reported when the source language cannot be
	// detected.
	FallbackLanguage() string
	ContentType() string
}

var adapters = map[string]Adapter{
	".txt":  Plain{},
	".srt":  Subtitle{},
	".json": Dialogue{},
}

// ForName picks the adapter by the extension of an object name. The match
// is case-insensitive.
func ForName(name string) (Adapter, bool) {
	a, ok := adapters[strings.ToLower(path.Ext(name))]
	return a, ok
}

const (
	textContentType = "text/plain; charset=utf-8"
	jsonContentType = "application/json; charset=utf-8"
)
