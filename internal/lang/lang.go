// Package lang resolves configured target-language codes to the
// human-readable English names used in prompts and output keys.
package lang

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultCodes is the target set used when none is configured.
var DefaultCodes = []string{"en", "ar", "ja"}

// Language pairs a lowercase ISO code with its English display name.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (l Language) String() string {
	return l.Name
}

// Tag returns the BCP 47 tag for the language.
func (l Language) Tag() language.Tag {
	return language.Make(l.Code)
}

// Parse resolves a language code such as "ar" or "pt-BR".
func Parse(code string) (Language, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Language{}, fmt.Errorf("empty language code")
	}
	tag, err := language.Parse(code)
	if err != nil {
		return Language{}, fmt.Errorf("invalid language code %q: %w", code, err)
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		return Language{}, fmt.Errorf("no display name for language %q", code)
	}
	return Language{Code: strings.ToLower(tag.String()), Name: name}, nil
}

// ParseList resolves codes in order, rejecting duplicates.
func ParseList(codes []string) ([]Language, error) {
	seen := make(map[string]bool, len(codes))
	out := make([]Language, 0, len(codes))
	for _, c := range codes {
		l, err := Parse(c)
		if err != nil {
			return nil, err
		}
		if seen[l.Code] {
			return nil, fmt.Errorf("duplicate language code %q", l.Code)
		}
		seen[l.Code] = true
		out = append(out, l)
	}
	return out, nil
}

// Display returns the English name for code, or code itself when it cannot
// be resolved (e.g. "unknown").
func Display(code string) string {
	l, err := Parse(code)
	if err != nil {
		return code
	}
	return l.Name
}
