package models

import "strings"

// Format is the source format tag of a subtitle document.
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

// ParseFormat normalizes a tag like "SRT" or ".vtt". Unknown tags are kept
// as-is (lowercased) so callers can report them.
func ParseFormat(tag string) Format {
	return Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), ".")))
}

// Known reports whether the converter has dedicated handling for the format.
func (f Format) Known() bool {
	return f == FormatSRT || f == FormatVTT
}

// RawSubtitle is the undecoded body of a fetched subtitle resource
type RawSubtitle struct {
	SourceID    string // URL the bytes were fetched from
	Filename    string // Archive entry or URL path base name
	ContentType string // Content-Type reported by the server, may be empty
	Content     []byte
}

// SubtitleDocument is decoded subtitle text that passed the subtitle-shape check
type SubtitleDocument struct {
	Text     string
	Format   Format
	Encoding string // Encoding that produced Text
	Lossy    bool   // Set when no candidate passed and the permissive UTF-8 fallback was used
}

// ConvertedDocument is a subtitle rewritten into WebVTT
type ConvertedDocument struct {
	Text          string
	DroppedBlocks int  // Malformed SRT blocks that were skipped
	Cached        bool // True when served from the cache
}
