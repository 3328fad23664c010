package feed

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// repairTargets lists characters commonly garbled when utf-8 bytes are read as a single-byte charset
const repairTargets = "áàâãäéèêëíìîïóòôõöúùûüçñ" +
	"ÁÀÂÃÄÉÈÊËÍÌÎÏÓÒÔÕÖÚÙÛÜÇÑ" +
	"ºª°§\u00a0" +
	"–—‘’‚“”„…•€"

// garbledAGrave is "à" misread as latin-1, it equals a real "Ã" followed by nbsp
const garbledAGrave = "Ã\u00a0"

// mojibake maps garbled sequences back to the intended characters.
// Built once for both iso-8859-1 and windows-1252 misreads; longer sequences go first.
var mojibake = newMojibakeReplacer()

func repairMojibake(s string) string {
	if !strings.ContainsAny(s, "ÃÂâ") {
		return s
	}
	return mojibake.Replace(repairAGrave(s))
}

// repairAGrave restores "à" unless the sequence follows an uppercase letter, as in "MAMÃ" + nbsp
func repairAGrave(s string) string {
	if !strings.Contains(s, garbledAGrave) {
		return s
	}
	var sb strings.Builder
	for {
		i := strings.Index(s, garbledAGrave)
		if i < 0 {
			break
		}
		sb.WriteString(s[:i])
		prev, _ := utf8.DecodeLastRuneInString(sb.String())
		if unicode.IsUpper(prev) {
			sb.WriteString(garbledAGrave)
		} else {
			sb.WriteString("à")
		}
		s = s[i+len(garbledAGrave):]
	}
	sb.WriteString(s)
	return sb.String()
}

func newMojibakeReplacer() *strings.Replacer {
	decoders := []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1}
	seen := map[string]bool{}
	var long, short []string
	for _, r := range repairTargets {
		raw := []byte(string(r))
		for _, cm := range decoders {
			garbled, err := cm.NewDecoder().Bytes(raw)
			if err != nil {
				continue
			}
			g := string(garbled)
			if g == string(r) || g == garbledAGrave || seen[g] || strings.ContainsRune(g, utf8.RuneError) {
				continue
			}
			seen[g] = true
			if len(raw) > 2 {
				long = append(long, g, string(r))
				continue
			}
			short = append(short, g, string(r))
		}
	}
	return strings.NewReplacer(append(long, short...)...)
}
