package ytthumb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicExtractor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain id", "dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts url", "https://youtube.com/shorts/abcdefghijk", "abcdefghijk"},
		{"watch url keeps query", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "watch?v=dQw4w9WgXcQ"},
		{"short host is not recognized", "https://youtu.be/dQw4w9WgXcQ", "https://youtu.be/dQw4w9WgXcQ"},
		{"trailing slash", "https://www.youtube.com/", ""},
		{"youtube without slash", "youtube", "youtube"},
		{"arbitrary text", "not an id at all", "not an id at all"},
		{"empty", "", ""},
	}

	e := HeuristicExtractor{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.input))
		})
	}
}

func TestRegexExtractor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url with params", "https://www.youtube.com/watch?list=PL1&v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ"},
		{"short host", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"nocookie embed", "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"falls back to heuristic", "https://www.youtube.com/channel/abc", "abc"},
		{"plain id", "dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}

	e := RegexExtractor{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.input))
		})
	}
}

func TestNewExtractor(t *testing.T) {
	e, err := NewExtractor("")
	require.NoError(t, err)
	assert.IsType(t, HeuristicExtractor{}, e)

	e, err = NewExtractor(ExtractorRegex)
	require.NoError(t, err)
	assert.IsType(t, RegexExtractor{}, e)

	_, err = NewExtractor("url-parser")
	assert.ErrorIs(t, err, ErrUnknownExtractor)
}
