package content

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// AnchorLine returns the number of leading lines shared by old and new.
// When a watched script changes mid-read, the prompter scrolls back to
// this line instead of losing the reader's place: everything above it is
// untouched, so any position at or below the first edit re-anchors there.
func AnchorLine(old, new string) int {
	if old == new {
		return strings.Count(old, "\n")
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(old, new, false)
	if len(diffs) == 0 || diffs[0].Type != diffmatchpatch.DiffEqual {
		return 0
	}
	// Only whole unchanged lines count; a partially edited line re-anchors
	// at its start.
	prefix := diffs[0].Text
	return strings.Count(prefix, "\n")
}
