// Package chunker splits sentences into bounded-size translation units.
// Each unit holds at most MaxWords whitespace-delimited words and never
// spans two sentences, which keeps prompts short enough for small local
// models while preserving word order.
package chunker

import "strings"

// MaxWords is the upper bound on words per chunk.
const MaxWords = 10

// Chunk splits each sentence into chunks of at most MaxWords words.
//
// A sentence with MaxWords words or fewer is emitted as a single chunk
// (trimmed, internal spacing untouched). Longer sentences are cut into
// consecutive MaxWords-word groups joined by single spaces; the final group
// may be shorter. Sentences that are empty after trimming are skipped.
func Chunk(sentences []string) []string {
	var chunks []string
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		words := strings.Fields(sentence)
		if len(words) <= MaxWords {
			chunks = append(chunks, sentence)
			continue
		}

		for start := 0; start < len(words); start += MaxWords {
			end := min(start+MaxWords, len(words))
			chunks = append(chunks, strings.Join(words[start:end], " "))
		}
	}
	return chunks
}
