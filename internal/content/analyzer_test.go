package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzer_CountWords(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		name string
		html string
		want int
	}{
		{"empty", "", 0},
		{"plain paragraph", "<p>three little words</p>", 3},
		{"tags are not words", "<div><span></span></div>", 0},
		{"script and style stripped", "<script>var x = 1;</script><p>visible text</p><style>p{}</style>", 2},
		{"entities unescaped", "<p>Tom &amp; Jerry</p>", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.CountWords(tt.html))
		})
	}
}

func TestAnalyzer_Sections(t *testing.T) {
	a := NewAnalyzer()
	html := `<h1>Opening</h1><p>hello</p><h2 id="mid">Middle <em>part</em></h2><h3></h3><h2>Closing</h2>`

	assert.Equal(t, []string{"Opening", "Middle part", "Closing"}, a.Sections(html))
}

func TestAnalyzer_Analyze(t *testing.T) {
	a := NewAnalyzer()
	html := "<h1>Intro</h1><p>one two three</p>"

	stats := a.Analyze(html)
	require.Equal(t, 4, stats.WordCount)
	assert.Equal(t, []string{"Intro"}, stats.Sections)
	assert.Equal(t, 1, stats.SectionCount)
	assert.Positive(t, stats.CharCount)
}

func TestAnalyzer_AgreesWithParser(t *testing.T) {
	p := NewParser()
	a := NewAnalyzer()
	script := "# Heading\n\nalpha beta gamma"

	html, err := p.Parse(script)
	require.NoError(t, err)

	// The heading word plus the paragraph words survive rendering.
	assert.Equal(t, p.WordCount(script), a.CountWords(html))
}
