package content

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
	"unicode"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rivo/uniseg"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/cuebird/cuebird/internal/log"
	"github.com/cuebird/cuebird/internal/service"
)

const (
	renderCacheExpiration = 10 * time.Minute
	renderCacheCleanup    = 30 * time.Minute
)

// Parser renders markdown scripts to HTML and counts their words.
// Rendered output is memoized by content hash, so re-parsing the same
// script (progress recalculation, watcher reloads) is cheap.
type Parser struct {
	md    goldmark.Markdown
	cache *gocache.Cache
}

// Ensure Parser satisfies the content-parsing capability.
var _ service.ContentParser = (*Parser)(nil)

// NewParser creates a GFM-enabled markdown parser.
func NewParser() *Parser {
	return &Parser{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		cache: gocache.New(renderCacheExpiration, renderCacheCleanup),
	}
}

// Parse renders the content to HTML.
func (p *Parser) Parse(content string) (string, error) {
	key := contentKey(content)
	if cached, found := p.cache.Get(key); found {
		if rendered, ok := cached.(string); ok {
			log.Debug(log.CatCache, "render cache hit", "key", key[:8])
			return rendered, nil
		}
	}

	var buf bytes.Buffer
	if err := p.md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	rendered := buf.String()
	p.cache.Set(key, rendered, gocache.DefaultExpiration)
	return rendered, nil
}

// WordCount counts the words in the raw content.
// It uses Unicode word segmentation over the same input Parse receives,
// counting only segments that contain a letter or digit.
func (p *Parser) WordCount(content string) int {
	return countWords(content)
}

// countWords counts letter- or digit-bearing word segments.
func countWords(text string) int {
	count := 0
	state := -1
	var word string
	for len(text) > 0 {
		word, text, state = uniseg.FirstWordInString(text, state)
		if wordLike(word) {
			count++
		}
	}
	return count
}

func wordLike(segment string) bool {
	for _, r := range segment {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func contentKey(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
