package feed

import (
	"encoding/xml"
	"fmt"
	"mime"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/umputun/newsportal/pkg/domain"
)

// Generator re-publishes aggregated sections as RSS and the configured sources as OPML
type Generator struct {
	baseURL string
	title   string
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL, title string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		title:   title,
	}
}

// GenerateRSS creates an RSS 2.0 feed from the items of one section
func (g *Generator) GenerateRSS(items []domain.FeedItem, section string, built time.Time) (string, error) {
	selfLink := fmt.Sprintf("%s/rss/%s", g.baseURL, section)

	rssItems := make([]*RSSItem, 0, len(items))
	for _, item := range items {
		rssItems = append(rssItems, g.convertToRSSItem(item))
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         fmt.Sprintf("%s - %s", g.title, section),
			Link:          g.baseURL + "/",
			Description:   fmt.Sprintf("Aggregated news for section %s", section),
			Language:      "pt-BR",
			AtomLink:      &AtomLink{Href: selfLink, Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: built.Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}

	return xml.Header + string(output), nil
}

// convertToRSSItem converts a feed item to an RSS item
func (g *Generator) convertToRSSItem(item domain.FeedItem) *RSSItem {
	res := &RSSItem{
		Title:       item.Title,
		Link:        item.Link,
		GUID:        &RSSGUID{Value: item.Link, IsPermaLink: true},
		Description: item.Description,
		PubDate:     item.Published.Format(time.RFC1123Z),
	}
	if item.Category != "" {
		res.Categories = []string{item.Category}
	}
	if item.Source != "" {
		res.Source = &RSSSource{Name: item.Source, URL: g.baseURL + "/opml"}
	}
	if item.ImageURL != "" {
		res.Enclosure = &RSSEnclosure{URL: item.ImageURL, Type: imageType(item.ImageURL)}
	}
	return res
}

// imageType guesses mime type from the image url extension, jpeg if unknown
func imageType(imageURL string) string {
	if i := strings.IndexAny(imageURL, "?#"); i >= 0 {
		imageURL = imageURL[:i]
	}
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(imageURL))); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/jpeg"
}

// GenerateOPML creates an OPML file with configured sources grouped by section
func (g *Generator) GenerateOPML(sections map[string][]domain.Source, created time.Time) (string, error) {
	type outline struct {
		XMLName  xml.Name  `xml:"outline"`
		Text     string    `xml:"text,attr"`
		Title    string    `xml:"title,attr,omitempty"`
		Type     string    `xml:"type,attr,omitempty"`
		XMLUrl   string    `xml:"xmlUrl,attr,omitempty"`
		Outlines []outline `xml:"outline"`
	}

	type body struct {
		XMLName  xml.Name  `xml:"body"`
		Outlines []outline `xml:"outline"`
	}

	type head struct {
		XMLName     xml.Name `xml:"head"`
		Title       string   `xml:"title"`
		DateCreated string   `xml:"dateCreated"`
	}

	type opml struct {
		XMLName xml.Name `xml:"opml"`
		Version string   `xml:"version,attr"`
		Head    head     `xml:"head"`
		Body    body     `xml:"body"`
	}

	keys := make([]string, 0, len(sections))
	for k := range sections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]outline, 0, len(keys))
	for _, key := range keys {
		group := outline{Text: key, Title: key}
		for _, src := range sections[key] {
			group.Outlines = append(group.Outlines, outline{
				Text:   src.Name,
				Title:  src.Name,
				Type:   "rss",
				XMLUrl: src.URL,
			})
		}
		groups = append(groups, group)
	}

	doc := opml{
		Version: "2.0",
		Head: head{
			Title:       g.title + " Sources",
			DateCreated: created.Format(time.RFC1123Z),
		},
		Body: body{Outlines: groups},
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal OPML: %w", err)
	}

	return xml.Header + string(output), nil
}
