package testutil

import (
	"fmt"
	"strings"
	"testing"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// SRTBlockOptions contains options for generating one SRT block
type SRTBlockOptions struct {
	Start   string   // "00:00:01,000"
	End     string   // "00:00:02,000"
	Lines   []string // Caption lines
	Partial bool     // Omit the caption lines to produce a malformed two-line block
}

// GenerateSRT renders blocks as SRT text, numbering them from 1 and separating them
// with blank lines. The result ends with a blank line.
func GenerateSRT(blocks []SRTBlockOptions) string {
	var b strings.Builder
	for i, block := range blocks {
		fmt.Fprintf(&b, "%d\n%s --> %s\n", i+1, block.Start, block.End)
		if !block.Partial {
			b.WriteString(strings.Join(block.Lines, "\n"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// GenerateWebVTT renders blocks as the WebVTT text the converter produces for them.
// Partial blocks are skipped.
func GenerateWebVTT(blocks []SRTBlockOptions) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, block := range blocks {
		if block.Partial {
			continue
		}
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n",
			strings.ReplaceAll(block.Start, ",", "."),
			strings.ReplaceAll(block.End, ",", "."),
			strings.Join(block.Lines, "\n"))
	}
	return b.String()
}

// DefaultSRTBlocks returns a two-block subtitle with a multi-line caption
func DefaultSRTBlocks() []SRTBlockOptions {
	return []SRTBlockOptions{
		{Start: "00:00:01,000", End: "00:00:02,000", Lines: []string{"Hello"}},
		{Start: "00:00:03,500", End: "00:00:05,250", Lines: []string{"Second caption", "wrapped line"}},
	}
}

// ChineseSRTBlocks returns blocks whose captions need a CJK encoding
func ChineseSRTBlocks() []SRTBlockOptions {
	return []SRTBlockOptions{
		{Start: "00:00:01,000", End: "00:00:02,000", Lines: []string{"你好，世界"}},
		{Start: "00:00:02,500", End: "00:00:04,000", Lines: []string{"中文字幕测试"}},
	}
}

// EncodeGBK encodes s as GBK
func EncodeGBK(t *testing.T, s string) []byte {
	t.Helper()
	return encodeWith(t, simplifiedchinese.GBK, s)
}

// EncodeBig5 encodes s as Big5
func EncodeBig5(t *testing.T, s string) []byte {
	t.Helper()
	return encodeWith(t, traditionalchinese.Big5, s)
}

func encodeWith(t *testing.T, enc encoding.Encoding, s string) []byte {
	t.Helper()
	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("Failed to encode fixture: %v", err)
	}
	return out
}
