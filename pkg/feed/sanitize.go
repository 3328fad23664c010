package feed

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// DescriptionLimit is the max length of an item description, in characters
const DescriptionLimit = 200

const ellipsis = "..."

var (
	cdataRe  = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	markupRe = regexp.MustCompile(`<[a-zA-Z/!]`)

	// strict policy drops every element and keeps the text, it is safe for concurrent use
	stripPolicy = bluemonday.StrictPolicy()
)

// Clean turns raw feed text into plain display text.
// It unwraps CDATA, strips markup, decodes entities, repairs double-encoded utf-8
// and collapses whitespace. Unknown patterns are left as is.
func Clean(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	text := stripTags(unwrapCDATA(raw))
	if markupRe.MatchString(text) {
		// entity-escaped html surfaces only after decoding
		text = stripTags(text)
	}
	text = repairMojibake(text)
	return strings.Join(strings.Fields(text), " ")
}

// Truncate cuts s to limit characters, the last three replaced by an ellipsis
func Truncate(s string, limit int) string {
	if limit <= len(ellipsis) {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}

// stripTags removes markup and decodes entities. A "<" with no ">" after it
// is not a tag and stays in the text.
func stripTags(s string) string {
	tail := strings.LastIndexByte(s, '>') + 1
	if strings.IndexByte(s[tail:], '<') >= 0 {
		s = s[:tail] + strings.ReplaceAll(s[tail:], "<", "&lt;")
	}
	return html.UnescapeString(stripPolicy.Sanitize(s))
}

func unwrapCDATA(s string) string {
	if !strings.Contains(s, "<![CDATA[") {
		return s
	}
	return cdataRe.ReplaceAllString(s, "$1")
}
