// Package postprocess turns raw model output into a usable translation.
//
// LLM-backed services wrap the answer in prompt echoes, reasoning blocks and
// quotes. ExtractAnswer finds the answer after the prompt's answer marker,
// Clean strips the remaining artifacts, and StripSourceResidue removes
// untranslated ASCII fragments that leak through from the source text.
package postprocess

import (
	"regexp"
	"strings"
)

// AnswerMarker terminates the translation prompt; models usually continue
// right after it.
const AnswerMarker = "Translation:"

// ExtractAnswer returns the text following the first AnswerMarker in raw.
// When the marker ends its line the next non-empty line is used. Without a
// marker the last non-empty line is returned, or the trimmed input when it
// has no non-empty lines.
func ExtractAnswer(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	for i, line := range lines {
		idx := strings.Index(line, AnswerMarker)
		if idx < 0 {
			continue
		}
		if rest := strings.TrimSpace(line[idx+len(AnswerMarker):]); rest != "" {
			return rest
		}
		for _, next := range lines[i+1:] {
			if s := strings.TrimSpace(next); s != "" {
				return s
			}
		}
		return ""
	}

	for i := len(lines) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(lines[i]); s != "" {
			return s
		}
	}
	return strings.TrimSpace(raw)
}

// Answer is the full extraction pipeline for a raw LLM response: reasoning
// blocks go first so they cannot hide the marker, then the answer is located
// and cleaned.
func Answer(raw string) string {
	return Clean(ExtractAnswer(removeThinkingBlocks(raw)))
}

// Clean removes reasoning blocks, leading instruction echoes and outer quote
// wrapping, in that order, and returns the trimmed result.
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeInstructionEchoes(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// sourceResidueRe matches runs of ASCII letters, digits and colons.
var sourceResidueRe = regexp.MustCompile(`[A-Za-z0-9:]+`)

// StripSourceResidue deletes ASCII letter/digit/colon runs from text and
// collapses the whitespace left behind. It assumes a target language written
// in a non-Latin script; applied to Latin-script output it removes nearly
// everything.
func StripSourceResidue(text string) string {
	text = sourceResidueRe.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// Go's RE2 has no backreferences, so each tag pair is spelled out.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// An opening tag with no closing tag means the model was cut off mid-thought.
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// echoPatterns are anchored at the start and require a colon so that
// legitimate sentences beginning with "Here is" survive.
var echoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:translated )?(?:translation|text)\s*(?:into \p{L}+\s*)?:`),
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.]? here(?:'s| is)(?: the)? (?:translated )?(?:translation|text)\s*(?:into \p{L}+\s*)?:`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

var quotePairs = [][2]rune{
	{'"', '"'},
	{'\'', '\''},
	{'«', '»'},
	{'“', '”'},
	{'‘', '’'},
	{'「', '」'},
}

func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	for _, p := range quotePairs {
		if runes[0] == p[0] && runes[n-1] == p[1] {
			return strings.TrimSpace(string(runes[1 : n-1]))
		}
	}
	return text
}
