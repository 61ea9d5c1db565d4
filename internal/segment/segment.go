// Package segment splits raw text into sentences.
package segment

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/sentences"
)

// Segmenter turns raw text into an ordered list of sentences.
type Segmenter interface {
	Segment(text string) []string
}

// UAX29 segments text using the Unicode sentence boundary rules (UAX #29).
// It is stateless and safe for concurrent use.
type UAX29 struct{}

// New returns the default sentence segmenter.
func New() UAX29 {
	return UAX29{}
}

// Segment returns the trimmed, non-empty sentences of text in order.
func (UAX29) Segment(text string) []string {
	var out []string
	iter := sentences.FromString(text)
	for iter.Next() {
		if s := strings.TrimSpace(iter.Value()); s != "" {
			out = append(out, s)
		}
	}
	return out
}
