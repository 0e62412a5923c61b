package content

import (
	stdhtml "html"
	"regexp"
	"strings"

	"github.com/cuebird/cuebird/internal/service"
)

var (
	scriptStyleRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	tagRe         = regexp.MustCompile(`<[^>]+>`)
	headingRe     = regexp.MustCompile(`(?is)<h[1-6][^>]*>(.*?)</h[1-6]>`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// Analyzer extracts statistics from rendered HTML: word counts for pace
// estimation and section headings for navigation.
type Analyzer struct{}

// Ensure Analyzer satisfies the content-analysis capability.
var _ service.ContentAnalyzer = (*Analyzer)(nil)

// NewAnalyzer creates an HTML content analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// CountWords counts the words in the HTML's text content.
func (a *Analyzer) CountWords(html string) int {
	return countWords(a.extractText(html))
}

// Sections returns the heading titles (h1-h6) in document order.
func (a *Analyzer) Sections(html string) []string {
	matches := headingRe.FindAllStringSubmatch(html, -1)
	sections := make([]string, 0, len(matches))
	for _, m := range matches {
		title := strings.TrimSpace(tagRe.ReplaceAllString(m[1], ""))
		if title != "" {
			sections = append(sections, stdhtml.UnescapeString(title))
		}
	}
	return sections
}

// Analyze returns the full statistics for the HTML.
func (a *Analyzer) Analyze(html string) service.ContentStats {
	text := a.extractText(html)
	sections := a.Sections(html)
	return service.ContentStats{
		WordCount:    countWords(text),
		CharCount:    len([]rune(text)),
		Sections:     sections,
		SectionCount: len(sections),
	}
}

// extractText strips script/style blocks and tags, collapses whitespace,
// and unescapes entities.
func (a *Analyzer) extractText(html string) string {
	clean := scriptStyleRe.ReplaceAllString(html, "")
	text := tagRe.ReplaceAllString(clean, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return stdhtml.UnescapeString(strings.TrimSpace(text))
}
