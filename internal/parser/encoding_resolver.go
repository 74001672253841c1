package parser

import (
	"bytes"
	"strings"
)

// highByteScanWindow is how many leading bytes are inspected for non-ASCII content.
const highByteScanWindow = 1000

// legacyFallbackEncodings are tried, in order, after UTF-8 and the configured default
// whenever a subtitle contains bytes above 0x7F.
var legacyFallbackEncodings = []string{"gbk", "gb18030", "big5"}

// ResolveEncodings returns the ordered, duplicate-free list of encodings to try for raw.
//
// A UTF-8 byte order mark short-circuits to UTF-8 only. Otherwise UTF-8 always comes
// first; if any of the first 1000 bytes is above 0x7F the defaultEncoding (unless empty
// or UTF-8) and the legacy CJK encodings follow.
func ResolveEncodings(raw []byte, defaultEncoding string) []string {
	if bytes.HasPrefix(raw, utf8BOM) {
		return []string{utf8Label}
	}

	candidates := []string{utf8Label}
	if !hasHighByte(raw) {
		return candidates
	}

	seen := map[string]bool{utf8Label: true}
	add := func(name string) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] || isUTF8Label(name) {
			return
		}
		seen[name] = true
		candidates = append(candidates, name)
	}

	add(defaultEncoding)
	for _, name := range legacyFallbackEncodings {
		add(name)
	}
	return candidates
}

func hasHighByte(raw []byte) bool {
	window := raw
	if len(window) > highByteScanWindow {
		window = window[:highByteScanWindow]
	}
	for _, b := range window {
		if b > 127 {
			return true
		}
	}
	return false
}
