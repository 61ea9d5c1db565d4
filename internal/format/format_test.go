package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForName(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"uploads/a.txt", "text", true},
		{"uploads/a.srt", "srt", true},
		{"uploads/dir/a.json", "json", true},
		{"uploads/A.SRT", "srt", true},
		{"uploads/a.pdf", "", false},
		{"uploads/txt", "", false},
		{"uploads/a.srt.done", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, ok := ForName(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, a.Family())
			}
		})
	}
}

func TestFallbackLanguages(t *testing.T) {
	assert.Equal(t, "unknown", Plain{}.FallbackLanguage())
	assert.Equal(t, "en", Subtitle{}.FallbackLanguage())
	assert.Equal(t, "en", Dialogue{}.FallbackLanguage())
}

func TestBlock_Translated(t *testing.T) {
	b := Block{Index: "3", Timestamp: "t", Lines: []string{"a", "b"}, Speaker: "S", Flagged: true}

	got := b.Translated("x")
	assert.Equal(t, []string{"x"}, got.Lines)
	assert.Equal(t, "x", got.Text)
	assert.Equal(t, "3", got.Index)
	assert.Equal(t, "S", got.Speaker)
	assert.True(t, got.Flagged)
	assert.Equal(t, []string{"a", "b"}, b.Lines, "source block must not change")

	empty := b.Translated("")
	assert.Nil(t, empty.Lines)
}

func TestPlain_RoundTrip(t *testing.T) {
	raw := "Hello world. This is a test."
	blocks := Plain{}.Parse(raw)
	require.Len(t, blocks, 1)
	assert.Equal(t, raw, blocks[0].Content())

	out, err := Plain{}.Reconstruct([]Block{blocks[0].Translated("مرحبا بالعالم. هذا اختبار.")})
	require.NoError(t, err)
	assert.Equal(t, "مرحبا بالعالم. هذا اختبار.", out)
}
