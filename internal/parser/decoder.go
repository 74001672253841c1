package parser

import (
	"github.com/Belphemur/vttbridge/internal/apperrors"
	"github.com/Belphemur/vttbridge/internal/config"
	"github.com/Belphemur/vttbridge/internal/models"
)

// secondaryFallbackEncodings are single-byte encodings tried once every resolved
// candidate has failed the subtitle-shape check.
var secondaryFallbackEncodings = []string{"windows-1252", "iso-8859-1"}

// DecodeOptions configures a SubtitleDecoder.
type DecodeOptions struct {
	// DefaultEncoding is tried right after UTF-8 for content with high bytes.
	DefaultEncoding string
}

// SubtitleDecoder turns raw subtitle bytes into text, picking the first encoding
// whose output looks like a subtitle.
type SubtitleDecoder struct {
	opts DecodeOptions
}

// NewSubtitleDecoder creates a new decoder instance
func NewSubtitleDecoder(opts DecodeOptions) *SubtitleDecoder {
	return &SubtitleDecoder{opts: opts}
}

// DecodeBytes resolves the candidate encodings for raw and decodes it.
func (d *SubtitleDecoder) DecodeBytes(raw []byte) (*models.SubtitleDocument, error) {
	return Decode(raw, ResolveEncodings(raw, d.opts.DefaultEncoding))
}

// Decode tries each candidate in order and returns the first decoding that passes
// LooksLikeSubtitle. UTF-8 candidates are decoded strictly, everything else
// permissively. When no candidate matches, windows-1252 and iso-8859-1 are tried, and
// as a last resort the bytes are decoded as UTF-8 with replacement characters.
func Decode(raw []byte, candidates []string) (*models.SubtitleDocument, error) {
	if raw == nil {
		return nil, &apperrors.DecodeError{Reason: "no input"}
	}

	logger := config.GetLogger()

	if doc := firstMatch(raw, candidates); doc != nil {
		return doc, nil
	}

	logger.Debug().
		Strs("candidates", candidates).
		Msg("No candidate encoding produced subtitle-shaped text, trying single-byte fallbacks")

	if doc := firstMatch(raw, secondaryFallbackEncodings); doc != nil {
		return doc, nil
	}

	logger.Warn().
		Int("size", len(raw)).
		Msg("Falling back to lossy UTF-8 decoding")

	return &models.SubtitleDocument{
		Text:     decodeLossyUTF8(raw),
		Encoding: utf8Label,
		Lossy:    true,
	}, nil
}

func firstMatch(raw []byte, candidates []string) *models.SubtitleDocument {
	logger := config.GetLogger()

	for _, name := range candidates {
		var (
			text string
			ok   bool
		)

		if isUTF8Label(name) {
			text, ok = decodeStrictUTF8(raw)
		} else {
			enc, found := lookupEncoding(name)
			if !found {
				logger.Debug().Str("encoding", name).Msg("Skipping unknown encoding")
				continue
			}
			decoded, err := decodePermissive(enc, raw)
			text, ok = decoded, err == nil
		}

		if !ok {
			logger.Debug().Str("encoding", name).Msg("Decoding failed")
			continue
		}
		if !LooksLikeSubtitle(text) {
			logger.Debug().Str("encoding", name).Msg("Decoded text does not look like a subtitle")
			continue
		}

		logger.Debug().Str("encoding", name).Int("length", len(text)).Msg("Decoded subtitle")
		return &models.SubtitleDocument{Text: text, Encoding: name}
	}
	return nil
}
