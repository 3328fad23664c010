package feed

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

// DefaultUserAgent is a desktop browser user agent, some publishers reject unknown clients
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// acceptLanguages contains common browser Accept-Language values, portuguese first
var acceptLanguages = []string{
	"pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7",
	"pt-BR,pt;q=0.9",
	"pt-BR,pt;q=0.9,en;q=0.8",
	"pt-PT,pt;q=0.9,pt-BR;q=0.8,en;q=0.7",
}

// addBrowserHeaders adds browser-like headers for feed fetching.
// revalidate is passed as the max-age the client accepts from intermediate caches.
func addBrowserHeaders(req *http.Request, userAgent string, revalidate time.Duration) {
	req.Header.Set("User-Agent", userAgent)

	// accept header for feeds, xml types first
	req.Header.Set("Accept", "application/rss+xml,application/atom+xml,application/xml;q=0.9,text/xml;q=0.8,text/html;q=0.7,*/*;q=0.5")
	// no explicit Accept-Encoding, transport negotiates gzip and decompresses by itself
	if revalidate > 0 {
		req.Header.Set("Cache-Control", fmt.Sprintf("max-age=%d", int(revalidate.Seconds())))
	} else {
		req.Header.Set("Cache-Control", "no-cache")
	}

	// randomized language
	req.Header.Set("Accept-Language", acceptLanguages[rand.Intn(len(acceptLanguages))]) //nolint:gosec // non-cryptographic randomness is fine for header variation

	req.Header.Set("Connection", "keep-alive")

	// dnt - 30% chance
	if rand.Float32() < 0.3 { //nolint:gosec // non-cryptographic randomness is fine
		req.Header.Set("DNT", "1")
	}
}
