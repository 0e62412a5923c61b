package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_ParseRendersHTML(t *testing.T) {
	p := NewParser()

	html, err := p.Parse("# Welcome\n\nSome **bold** text.")
	require.NoError(t, err)

	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "Welcome")
	assert.Contains(t, html, "<strong>bold</strong>")
}

func TestParser_ParseGFMTable(t *testing.T) {
	p := NewParser()

	html, err := p.Parse("| a | b |\n|---|---|\n| 1 | 2 |")
	require.NoError(t, err)
	assert.Contains(t, html, "<table>")
}

func TestParser_ParseIsDeterministic(t *testing.T) {
	p := NewParser()
	const script = "# Title\n\nline one\nline two"

	first, err := p.Parse(script)
	require.NoError(t, err)
	second, err := p.Parse(script)
	require.NoError(t, err)

	// Second call is served from the render cache and must be identical.
	assert.Equal(t, first, second)
}

func TestParser_WordCount(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"whitespace only", "  \n\t ", 0},
		{"plain words", "the quick brown fox", 4},
		{"punctuation not counted", "wait... what?!", 2},
		{"numbers count", "chapter 12 of 30", 4},
		{"markdown syntax words", "# Title\n\n- item one\n- item two", 5},
		{"unicode", "héllo wörld", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.WordCount(tt.content))
		})
	}
}

func TestParser_ParseAndWordCountAgreeOnInput(t *testing.T) {
	p := NewParser()
	script := "One two three.\n\nFour five."

	html, err := p.Parse(script)
	require.NoError(t, err)
	words := p.WordCount(script)

	// Both operations see the same raw text: every counted word appears in
	// the rendered output.
	assert.Equal(t, 5, words)
	for _, w := range []string{"One", "two", "three", "Four", "five"} {
		assert.True(t, strings.Contains(html, w), "rendered output should contain %q", w)
	}
}
