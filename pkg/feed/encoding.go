package feed

import (
	"bytes"
	"mime"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
)

const (
	defaultCharset = "utf-8"

	// xml declaration is looked up only in the beginning of the body
	declarationWindow = 200
)

var (
	xmlEncodingRe = regexp.MustCompile(`(?i)<\?xml[^>]*?\bencoding\s*=\s*["']\s*([a-z0-9._:-]+)\s*["']`)
	utf8BOM       = []byte{0xEF, 0xBB, 0xBF}

	charsetAliases = map[string]string{
		"latin1":  "iso-8859-1",
		"latin-1": "iso-8859-1",
		"utf8":    "utf-8",
	}
)

// DecodeBody converts a raw feed body to text.
// Charset comes from the content type header, an xml declaration overrides it.
// Unknown charsets and decoding failures fall back to utf-8.
func DecodeBody(body []byte, contentType string) string {
	body = bytes.TrimPrefix(body, utf8BOM)
	label := ResolveCharset(body, contentType)
	if label == defaultCharset {
		return strings.ToValidUTF8(string(body), "\uFFFD")
	}

	enc, _ := charset.Lookup(label)
	if enc == nil {
		return strings.ToValidUTF8(string(body), "\uFFFD")
	}
	text, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return strings.ToValidUTF8(string(body), "\uFFFD")
	}
	return string(text)
}

// ResolveCharset picks the charset label for body: default, then header, then xml declaration
func ResolveCharset(body []byte, contentType string) string {
	label := defaultCharset
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil && params["charset"] != "" {
			label = params["charset"]
		}
	}

	head := body
	if len(head) > declarationWindow {
		head = head[:declarationWindow]
	}
	if m := xmlEncodingRe.FindSubmatch(head); m != nil {
		label = string(m[1])
	}
	return normalizeCharset(label)
}

func normalizeCharset(label string) string {
	label = strings.ToLower(strings.Trim(label, " \t\"'"))
	if alias, ok := charsetAliases[label]; ok {
		return alias
	}
	if label == "" {
		return defaultCharset
	}
	return label
}
