package testutil

import (
	"encoding/base64"
	"testing"
)

// rarTwoSubtitlesBase64 is a RAR 4 archive with stored (uncompressed) entries, in this order:
// notes.txt, b_episode.srt, a_episode.srt.
const rarTwoSubtitlesBase64 = "UmFyIRoHAM+QcwAADQAAAAAAAACgGnQAgCkADwAAAA8AAAAC3PZFdgAAIVodMAkAIAAAAG5vdGVzLnR4dG5vdCBhIHN1YnRpdGxlCpildACALQAoAAAAKAAAAALqMFU8AAAhWh0wDQAgAAAAYl9lcGlzb2RlLnNydDEKMDA6MDA6MDUsMDAwIC0tPiAwMDowMDowNiwwMDAKU2Vjb25kCgoMqnQAgC0AJwAAACcAAAACNugghwAAIVodMA0AIAAAAGFfZXBpc29kZS5zcnQxCjAwOjAwOjAxLDAwMCAtLT4gMDA6MDA6MDIsMDAwCkZpcnN0CgoEsHsAAAcA"

// Contents of the subtitle entries in RarTwoSubtitles.
const (
	RarFirstSubtitle  = "1\n00:00:01,000 --> 00:00:02,000\nFirst\n\n"
	RarSecondSubtitle = "1\n00:00:05,000 --> 00:00:06,000\nSecond\n\n"
)

// RarTwoSubtitles returns the decoded RAR fixture. a_episode.srt holds RarFirstSubtitle
// and b_episode.srt holds RarSecondSubtitle.
func RarTwoSubtitles(t *testing.T) []byte {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(rarTwoSubtitlesBase64)
	if err != nil {
		t.Fatalf("decode RAR fixture: %v", err)
	}
	return data
}
