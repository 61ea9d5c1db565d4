package format

import (
	"regexp"
	"strings"
)

// Subtitle handles SubRip (.srt) documents: an index line, a
// "start --> end" line and text lines, with blank lines between entries.
type Subtitle struct{}

func (Subtitle) Family() string           { return "srt" }
func (Subtitle) FallbackLanguage() string { return "en" }
func (Subtitle) ContentType() string      { return textContentType }

var (
	indexRe     = regexp.MustCompile(`^\d+$`)
	timestampRe = regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}[,.]\d{3}\s*-->\s*\d{1,2}:\d{2}:\d{2}[,.]\d{3}`)
)

// Parse reads entries in order. An entry's text ends at a blank line or at
// a bare integer line that is itself followed by a timestamp line, so
// entries missing their blank separator are still split correctly. Lines
// outside any entry are dropped.
func (Subtitle) Parse(raw string) []Block {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	lines := strings.Split(strings.TrimSpace(raw), "\n")

	startsEntry := func(i int) bool {
		return i+1 < len(lines) &&
			indexRe.MatchString(strings.TrimSpace(lines[i])) &&
			timestampRe.MatchString(strings.TrimSpace(lines[i+1]))
	}

	var blocks []Block
	for i := 0; i < len(lines); {
		if !startsEntry(i) {
			i++
			continue
		}
		b := Block{
			Index:     strings.TrimSpace(lines[i]),
			Timestamp: strings.TrimSpace(lines[i+1]),
			Lines:     []string{},
		}
		i += 2
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" && !startsEntry(i) {
			b.Lines = append(b.Lines, strings.TrimRight(lines[i], " \t"))
			i++
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// Reconstruct writes each block as index, timestamp, its lines (a single
// empty line when it has none) and a blank separator.
func (Subtitle) Reconstruct(blocks []Block) (string, error) {
	var out []string
	for _, b := range blocks {
		out = append(out, b.Index, b.Timestamp)
		if len(b.Lines) == 0 {
			out = append(out, "")
		} else {
			out = append(out, b.Lines...)
		}
		out = append(out, "")
	}
	return strings.Join(out, "\n"), nil
}
