package services

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/Belphemur/vttbridge/internal/config"
	"github.com/Belphemur/vttbridge/internal/metrics"
	"github.com/Belphemur/vttbridge/internal/models"
	"golang.org/x/text/encoding/unicode"
)

const webVTTHeader = "WEBVTT"

var blockSeparator = regexp.MustCompile(`\n\s*\n`)

// subtitleExtensions are extensions reported as their own format tag by InferFormat.
var subtitleExtensions = map[string]bool{
	"ass": true, "ssa": true, "sub": true, "smi": true, "sami": true,
	"ttml": true, "dfxp": true, "sbv": true, "lrc": true,
}

// DefaultSubtitleConverter is the default implementation of SubtitleConverter
type DefaultSubtitleConverter struct{}

// NewSubtitleConverter creates a new instance of DefaultSubtitleConverter
func NewSubtitleConverter() SubtitleConverter {
	return &DefaultSubtitleConverter{}
}

// ToWebVTT converts text into WebVTT. Text that is already WebVTT only goes through
// UTF-8 normalization.
func (c *DefaultSubtitleConverter) ToWebVTT(text string, format models.Format) models.ConvertedDocument {
	logger := config.GetLogger()

	if format == models.FormatVTT || strings.HasPrefix(strings.TrimSpace(text), webVTTHeader) {
		return models.ConvertedDocument{Text: NormalizeUTF8(text)}
	}

	if !format.Known() {
		logger.Warn().Str("format", string(format)).Msg("Unsupported subtitle format, converting as SRT")
	}

	return c.convertSRT(text)
}

func (c *DefaultSubtitleConverter) convertSRT(text string) models.ConvertedDocument {
	logger := config.GetLogger()

	normalized := strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))

	var b strings.Builder
	b.WriteString(webVTTHeader)
	b.WriteString("\n\n")

	dropped := 0
	for i, block := range blockSeparator.Split(normalized, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			dropped++
			logger.Debug().Int("block", i).Int("lines", len(lines)).Msg("Dropping malformed SRT block")
			continue
		}

		b.WriteString(strings.ReplaceAll(lines[1], ",", "."))
		b.WriteByte('\n')
		for j, line := range lines[2:] {
			if j > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(NormalizeUTF8(line))
		}
		b.WriteString("\n\n")
	}

	if dropped > 0 {
		metrics.SubtitleDroppedBlocksTotal.Add(float64(dropped))
	}

	return models.ConvertedDocument{Text: b.String(), DroppedBlocks: dropped}
}

// NormalizeUTF8 round-trips s through a UTF-8 encoder and decoder. The original
// string is returned if either step fails.
func NormalizeUTF8(s string) string {
	encoded, err := unicode.UTF8.NewEncoder().String(s)
	if err != nil {
		return s
	}
	decoded, err := unicode.UTF8.NewDecoder().String(encoded)
	if err != nil {
		return s
	}
	return decoded
}

// InferFormat guesses the source format of a subtitle from its file name or URL,
// its Content-Type and the decoded text.
func InferFormat(name, contentType, text string) models.Format {
	if strings.HasPrefix(strings.TrimPrefix(text, "\ufeff"), webVTTHeader) {
		return models.FormatVTT
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "vtt"):
		return models.FormatVTT
	case strings.Contains(ct, "subrip"):
		return models.FormatSRT
	}

	p := name
	if u, err := url.Parse(name); err == nil && u.Path != "" {
		p = u.Path
	}
	ext := models.ParseFormat(path.Ext(p))
	switch {
	case ext == models.FormatVTT || ext == models.FormatSRT:
		return ext
	case subtitleExtensions[string(ext)]:
		return ext
	default:
		return models.FormatSRT
	}
}
