package services

import (
	"github.com/Belphemur/vttbridge/internal/models"
)

// SubtitleConverter defines the interface for rewriting decoded subtitles into WebVTT
type SubtitleConverter interface {
	// ToWebVTT converts text in the given source format into WebVTT. Formats other
	// than srt and vtt are converted as srt.
	ToWebVTT(text string, format models.Format) models.ConvertedDocument
}
