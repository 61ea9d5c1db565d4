package format

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Dialogue handles JSON transcripts: an array of records with timestamp,
// text, speaker and flagged fields.
type Dialogue struct{}

func (Dialogue) Family() string           { return "json" }
func (Dialogue) FallbackLanguage() string { return "en" }
func (Dialogue) ContentType() string      { return jsonContentType }

// dialogueMeta holds the pass-through fields of a record as raw JSON, so a
// numeric timestamp or a null speaker is written back unchanged. Parse
// fills absent fields with their defaults; nil only occurs on blocks built
// outside Parse.
type dialogueMeta struct {
	Timestamp json.RawMessage `json:"timestamp"`
	Speaker   json.RawMessage `json:"speaker"`
	Flagged   json.RawMessage `json:"flagged"`
}

type inputRecord struct {
	dialogueMeta
	Text json.RawMessage `json:"text"`
}

type outputRecord struct {
	Timestamp json.RawMessage `json:"timestamp"`
	Text      string          `json:"text"`
	Speaker   json.RawMessage `json:"speaker"`
	Flagged   json.RawMessage `json:"flagged"`
}

// Parse returns one block per record. Metadata of any JSON type is kept.
// Invalid JSON, a top-level value that is not an array, or an element
// that is not an object yields no blocks.
func (Dialogue) Parse(raw string) []Block {
	var records []inputRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil
	}
	blocks := make([]Block, len(records))
	for i, r := range records {
		meta := dialogueMeta{
			Timestamp: compactRaw(r.Timestamp, `""`),
			Speaker:   compactRaw(r.Speaker, `""`),
			Flagged:   compactRaw(r.Flagged, "false"),
		}
		var flagged bool
		_ = json.Unmarshal(meta.Flagged, &flagged)
		blocks[i] = Block{
			Timestamp: rawString(meta.Timestamp),
			Text:      rawString(r.Text),
			Speaker:   rawString(meta.Speaker),
			Flagged:   flagged,
			meta:      meta,
		}
	}
	return blocks
}

// Reconstruct emits the records as a JSON array indented by four spaces.
// Blocks without source metadata get "" or false. No blocks produce "[]".
func (Dialogue) Reconstruct(blocks []Block) (string, error) {
	records := make([]outputRecord, len(blocks))
	for i, b := range blocks {
		r := outputRecord{
			Timestamp: b.meta.Timestamp,
			Text:      b.Text,
			Speaker:   b.meta.Speaker,
			Flagged:   b.meta.Flagged,
		}
		var err error
		if r.Timestamp == nil {
			if r.Timestamp, err = json.Marshal(b.Timestamp); err != nil {
				return "", err
			}
		}
		if r.Speaker == nil {
			if r.Speaker, err = json.Marshal(b.Speaker); err != nil {
				return "", err
			}
		}
		if r.Flagged == nil {
			if r.Flagged, err = json.Marshal(b.Flagged); err != nil {
				return "", err
			}
		}
		records[i] = r
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func compactRaw(m json.RawMessage, def string) json.RawMessage {
	if m == nil {
		return json.RawMessage(def)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, m); err != nil {
		return m
	}
	return buf.Bytes()
}

// rawString is the string form of a JSON value: the decoded text of a
// string, "" for null or absent, and the literal JSON otherwise.
func rawString(m json.RawMessage) string {
	if m == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(m, &s); err == nil {
		return s
	}
	return string(m)
}
