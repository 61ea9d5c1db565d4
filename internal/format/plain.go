package format

import "strings"

// Plain treats the whole document as one block. Line structure is not
// preserved: the translation is a single space-joined string.
type Plain struct{}

func (Plain) Family() string           { return "text" }
func (Plain) FallbackLanguage() string { return "unknown" }
func (Plain) ContentType() string      { return textContentType }

func (Plain) Parse(raw string) []Block {
	return []Block{{Text: raw}}
}

func (Plain) Reconstruct(blocks []Block) (string, error) {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, " "), nil
}
