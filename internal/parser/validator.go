package parser

import (
	"regexp"
	"unicode/utf8"
)

const minSubtitleLength = 10

var (
	webVTTHeaderPattern = regexp.MustCompile(`(?i)^WEBVTT`)
	// Sequence number line followed by an SRT "start --> end" line.
	srtBlockPattern     = regexp.MustCompile(`(?m)^\d+\r?\n\d{2}:\d{2}:\d{2}[,.]\d{3} --> \d{2}:\d{2}:\d{2}[,.]\d{3}`)
	timestampPattern    = regexp.MustCompile(`\d{2}:\d{2}:\d{2}[,.]\d{3}`)
)

// LooksLikeSubtitle reports whether text has the shape of an SRT or WebVTT document.
// Text shorter than 10 characters is always rejected.
func LooksLikeSubtitle(text string) bool {
	if utf8.RuneCountInString(text) < minSubtitleLength {
		return false
	}
	return webVTTHeaderPattern.MatchString(text) ||
		srtBlockPattern.MatchString(text) ||
		timestampPattern.MatchString(text)
}
