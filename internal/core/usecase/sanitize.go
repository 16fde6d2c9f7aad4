package usecase

import (
	"regexp"
	"strings"
)

// The model is instructed to answer in plain prose, but smaller models leak
// markdown anyway. Sanitization is a hard guarantee, not a hope.
var (
	mdCodeFence = regexp.MustCompile("(?s)```.*?```")
	mdInline    = regexp.MustCompile("`([^`]*)`")
	mdHeading   = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdBold      = regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`)
	mdEmphasis  = regexp.MustCompile(`\*([^*]+)\*|_([^_]+)_`)
	mdLink      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdBullet    = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	mdNumbered  = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
)

func stripMarkdown(text string) string {
	text = mdCodeFence.ReplaceAllString(text, " ")
	text = mdInline.ReplaceAllString(text, "$1")
	text = mdHeading.ReplaceAllString(text, "")
	text = mdLink.ReplaceAllString(text, "$1")
	text = mdBold.ReplaceAllString(text, "$1$2")
	text = mdEmphasis.ReplaceAllString(text, "$1$2")
	text = mdBullet.ReplaceAllString(text, "")
	text = mdNumbered.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
