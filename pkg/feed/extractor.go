package feed

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"github.com/umputun/newsportal/pkg/domain"
)

// element is one tag occurrence inside an item block
type element struct {
	attrs  string // raw attribute text of the opening tag
	inner  string // raw content up to the matching closing tag
	closed bool   // false for self-closing and unterminated tags
}

type elementPattern struct {
	open  *regexp.Regexp
	close *regexp.Regexp
}

// rawItem keeps unprocessed field values of one block
type rawItem struct {
	title       string
	link        string
	description string
	date        string
	published   time.Time
	category    string
	images      []string
}

var (
	// item and entry blocks are paired by name, non-greedy, attributes allowed on the opening tag
	blockRe = regexp.MustCompile(`(?is)<item(?:\s[^>]*)?>(.*?)</item\s*>|<entry(?:\s[^>]*)?>(.*?)</entry\s*>`)

	attrRe      = regexp.MustCompile(`(?is)([a-z_][a-z0-9_:.-]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	imgRe       = regexp.MustCompile(`(?is)<img\s[^>]*?\bsrc\s*=\s*["']([^"']+)["']`)
	imageAttrRe = regexp.MustCompile(`(?i)\b[a-z_:-]+\s*=\s*["']([^"'\s]+?\.(?:jpe?g|png|webp|gif)(?:\?[^"'\s]*)?)["']`)

	elements = compileElements("title", "link", "description", "summary", "content", "content:encoded",
		"pubDate", "published", "updated", "dc:date", "category", "media:content", "media:thumbnail", "enclosure")
)

// ExtractItems scans feed text for rss items and atom entries and makes feed items out of them.
// Blocks without a title or a link are skipped, document order is kept.
// Items without a parsable date get now as the publication time.
func ExtractItems(text, sourceName, section string, now time.Time) []domain.FeedItem {
	matches := blockRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return extractFallback(text, sourceName, section, now)
	}

	items := make([]domain.FeedItem, 0, len(matches))
	for _, m := range matches {
		block := m[1]
		if block == "" {
			block = m[2]
		}
		if item, ok := newItem(parseBlock(block), sourceName, section, now); ok {
			items = append(items, item)
		}
	}
	return items
}

func parseBlock(block string) rawItem {
	return rawItem{
		title:       elementText(block, "title"),
		link:        blockLink(block),
		description: elementText(block, "description", "summary", "content:encoded", "content"),
		date:        elementText(block, "pubDate", "published", "updated", "dc:date"),
		category:    blockCategory(block),
		images:      imageCandidates(block),
	}
}

// newItem makes a feed item from raw values, ok is false if title or link is empty
func newItem(raw rawItem, sourceName, section string, now time.Time) (domain.FeedItem, bool) {
	title := Clean(raw.title)
	link := cleanLink(raw.link)
	if title == "" || link == "" {
		return domain.FeedItem{}, false
	}

	published := raw.published
	if published.IsZero() {
		published = parseDate(raw.date, now)
	}

	return domain.FeedItem{
		Title:       title,
		Link:        link,
		Description: Truncate(Clean(raw.description), DescriptionLimit),
		Published:   published.UTC(),
		Category:    Clean(raw.category),
		ImageURL:    firstAbsolute(raw.images),
		Source:      sourceName,
		Section:     section,
	}, true
}

// blockLink returns link text content, or the href of an atom link, alternate first
func blockLink(block string) string {
	var withHref []element
	for _, el := range findElements(block, "link", 0) {
		if el.closed {
			if v := strings.TrimSpace(unwrapCDATA(el.inner)); v != "" && !strings.Contains(v, "<") {
				return v
			}
		}
		if attr(el.attrs, "href") != "" {
			withHref = append(withHref, el)
		}
	}

	for _, el := range withHref {
		if rel := strings.ToLower(attr(el.attrs, "rel")); rel == "" || rel == "alternate" {
			return attr(el.attrs, "href")
		}
	}
	if len(withHref) > 0 {
		return attr(withHref[0].attrs, "href")
	}
	return ""
}

func blockCategory(block string) string {
	els := findElements(block, "category", 1)
	if len(els) == 0 {
		return ""
	}
	if els[0].closed && strings.TrimSpace(els[0].inner) != "" {
		return els[0].inner
	}
	if term := attr(els[0].attrs, "term"); term != "" {
		return term
	}
	return attr(els[0].attrs, "label")
}

// imageCandidates lists image urls in priority order: media content, media thumbnail,
// enclosure, inline img and finally any attribute pointing to an image file
func imageCandidates(block string) []string {
	var res []string
	for _, el := range findElements(block, "media:content", 0) {
		if isImageAttrs(el.attrs, "medium") {
			res = append(res, attr(el.attrs, "url"))
		}
	}
	for _, el := range findElements(block, "media:thumbnail", 0) {
		res = append(res, attr(el.attrs, "url"))
	}
	for _, el := range findElements(block, "enclosure", 0) {
		if isImageAttrs(el.attrs, "") {
			res = append(res, attr(el.attrs, "url"))
		}
	}

	// inline html is often entity-escaped inside description
	sources := []string{block}
	if strings.Contains(block, "&lt;") {
		sources = append(sources, html.UnescapeString(block))
	}
	for _, src := range sources {
		for _, m := range imgRe.FindAllStringSubmatch(src, -1) {
			res = append(res, m[1])
		}
	}
	for _, src := range sources {
		for _, m := range imageAttrRe.FindAllStringSubmatch(src, -1) {
			res = append(res, m[1])
		}
	}
	return res
}

// isImageAttrs rejects media explicitly marked as something other than an image
func isImageAttrs(attrs, mediumAttr string) bool {
	if mediumAttr != "" {
		if medium := strings.ToLower(attr(attrs, mediumAttr)); medium != "" && medium != "image" {
			return false
		}
	}
	typ := strings.ToLower(attr(attrs, "type"))
	return typ == "" || strings.HasPrefix(typ, "image/")
}

// firstAbsolute returns the first candidate with an http(s) scheme, relative and protocol-relative urls are skipped
func firstAbsolute(candidates []string) string {
	for _, c := range candidates {
		c = strings.TrimSpace(html.UnescapeString(unwrapCDATA(c)))
		lc := strings.ToLower(c)
		if strings.HasPrefix(lc, "http://") || strings.HasPrefix(lc, "https://") {
			return c
		}
	}
	return ""
}

// cleanLink drops the query string and surrounding whitespace
func cleanLink(link string) string {
	link = html.UnescapeString(strings.TrimSpace(unwrapCDATA(link)))
	if i := strings.IndexByte(link, '?'); i >= 0 {
		link = link[:i]
	}
	return strings.TrimSpace(link)
}

// parseDate parses rss and atom date formats, now is returned for missing or broken dates
func parseDate(value string, now time.Time) (ts time.Time) {
	value = strings.TrimSpace(unwrapCDATA(value))
	if value == "" {
		return now
	}

	defer func() {
		if r := recover(); r != nil {
			ts = now
		}
	}()

	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil || t.IsZero() {
		return now
	}
	return t
}

// elementText returns the inner text of the first non-empty element among names
func elementText(block string, names ...string) string {
	for _, name := range names {
		for _, el := range findElements(block, name, 0) {
			if el.closed && strings.TrimSpace(el.inner) != "" {
				return el.inner
			}
		}
	}
	return ""
}

// findElements returns up to limit occurrences of the named element, limit 0 means all.
// Closing tags are paired by name, self-closing tags keep attributes only.
func findElements(block, name string, limit int) []element {
	p, ok := elements[name]
	if !ok {
		return nil
	}

	var res []element
	pos := 0
	for pos < len(block) && (limit <= 0 || len(res) < limit) {
		loc := p.open.FindStringSubmatchIndex(block[pos:])
		if loc == nil {
			break
		}
		end := pos + loc[1]
		attrs := ""
		if loc[2] >= 0 {
			attrs = strings.TrimSpace(block[pos+loc[2] : pos+loc[3]])
		}

		if strings.HasSuffix(attrs, "/") {
			res = append(res, element{attrs: strings.TrimSuffix(attrs, "/")})
			pos = end
			continue
		}

		cl := p.close.FindStringIndex(block[end:])
		if cl == nil {
			res = append(res, element{attrs: attrs})
			pos = end
			continue
		}
		res = append(res, element{attrs: attrs, inner: block[end : end+cl[0]], closed: true})
		pos = end + cl[1]
	}
	return res
}

// attr returns the decoded value of the named attribute, case-insensitive
func attr(attrs, name string) string {
	if attrs == "" {
		return ""
	}
	for _, m := range attrRe.FindAllStringSubmatch(attrs, -1) {
		if !strings.EqualFold(m[1], name) {
			continue
		}
		v := m[2]
		if v == "" {
			v = m[3]
		}
		return strings.TrimSpace(html.UnescapeString(v))
	}
	return ""
}

func compileElements(names ...string) map[string]elementPattern {
	res := make(map[string]elementPattern, len(names))
	for _, name := range names {
		q := regexp.QuoteMeta(name)
		res[name] = elementPattern{
			open:  regexp.MustCompile(`(?is)<` + q + `(\s[^>]*)?>`),
			close: regexp.MustCompile(`(?i)</` + q + `\s*>`),
		}
	}
	return res
}

// extractFallback handles documents without plain item or entry blocks, like atom with a prefixed
// namespace. gofeed is used only when it recognizes rss or atom, the usual skip rules apply.
func extractFallback(text, sourceName, section string, now time.Time) (items []domain.FeedItem) {
	switch gofeed.DetectFeedType(strings.NewReader(text)) {
	case gofeed.FeedTypeRSS, gofeed.FeedTypeAtom:
	default:
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			items = nil
		}
	}()

	parsed, err := gofeed.NewParser().ParseString(text)
	if err != nil || parsed == nil {
		return nil
	}

	items = make([]domain.FeedItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if it == nil {
			continue
		}
		raw := rawItem{title: it.Title, link: it.Link, description: it.Description, images: gofeedImages(it)}
		if raw.description == "" {
			raw.description = it.Content
		}
		switch {
		case it.PublishedParsed != nil:
			raw.published = *it.PublishedParsed
		case it.UpdatedParsed != nil:
			raw.published = *it.UpdatedParsed
		}
		if len(it.Categories) > 0 {
			raw.category = it.Categories[0]
		}
		if item, ok := newItem(raw, sourceName, section, now); ok {
			items = append(items, item)
		}
	}
	return items
}

func gofeedImages(it *gofeed.Item) []string {
	var res []string
	for _, kind := range []string{"content", "thumbnail"} {
		for _, ext := range it.Extensions["media"][kind] {
			res = append(res, ext.Attrs["url"])
		}
	}
	for _, enc := range it.Enclosures {
		if enc != nil && (enc.Type == "" || strings.HasPrefix(enc.Type, "image/")) {
			res = append(res, enc.URL)
		}
	}
	if it.Image != nil {
		res = append(res, it.Image.URL)
	}
	return append(res, imageCandidates(it.Description+" "+it.Content)...)
}
