// Package detector identifies the language of a text sample.
package detector

import (
	"errors"
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// ErrUndetermined is returned when the sample is empty or no language
// can be identified with confidence.
var ErrUndetermined = errors.New("language could not be determined")

// Detector reports the lowercase ISO 639-1 code of the language of text.
type Detector interface {
	Detect(text string) (string, error)
}

// Lingua is a Detector backed by lingua-go. Building the model is expensive,
// so one instance should be shared; it is safe for concurrent use.
type Lingua struct {
	detector lingua.LanguageDetector
}

func New() *Lingua {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Lingua{detector: detector}
}

// Language returns the detected lingua language.
func (d *Lingua) Language(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

func (d *Lingua) Detect(text string) (string, error) {
	lang, ok := d.Language(text)
	if !ok {
		return "", ErrUndetermined
	}
	return strings.ToLower(lang.IsoCode639_1().String()), nil
}
