package parser

import (
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestLookupEncoding_Aliases(t *testing.T) {
	t.Parallel()
	tests := []struct {
		label string
		input []byte
		want  string
	}{
		{"gbk", []byte{0xC4, 0xE3}, "你"},
		{"gb2312", []byte{0xC4, 0xE3}, "你"},
		{"GB18030", []byte{0xC4, 0xE3}, "你"},
		{"big5", []byte{0xA4, 0xA4}, "中"},
		{"windows-1252", []byte{0x99}, "™"},
		// iso-8859-1 is an alias of windows-1252, as in browsers
		{"iso-8859-1", []byte{0x99}, "™"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			t.Parallel()
			enc, ok := lookupEncoding(tt.label)
			if !ok {
				t.Fatalf("lookupEncoding(%q) not found", tt.label)
			}
			got, err := decodePermissive(enc, tt.input)
			if err != nil {
				t.Fatalf("decodePermissive failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("decoding %x as %s = %q, want %q", tt.input, tt.label, got, tt.want)
			}
		})
	}
}

func TestLookupEncoding_Unknown(t *testing.T) {
	t.Parallel()
	if _, ok := lookupEncoding("klingon-8"); ok {
		t.Error("expected unknown label to be rejected")
	}
}

func TestIsUTF8Label(t *testing.T) {
	t.Parallel()
	for _, label := range []string{"utf-8", "UTF-8", " utf8 "} {
		if !isUTF8Label(label) {
			t.Errorf("isUTF8Label(%q) = false, want true", label)
		}
	}
	if isUTF8Label("gbk") {
		t.Error("isUTF8Label(\"gbk\") = true, want false")
	}
}

func TestDecodeStrictUTF8(t *testing.T) {
	t.Parallel()

	text, ok := decodeStrictUTF8(append([]byte{0xEF, 0xBB, 0xBF}, []byte("WEBVTT")...))
	if !ok {
		t.Fatal("expected valid UTF-8 with BOM to decode")
	}
	if text != "WEBVTT" {
		t.Errorf("expected BOM to be stripped, got %q", text)
	}

	if _, ok := decodeStrictUTF8([]byte{'a', 0xC4, 0xE3}); ok {
		t.Error("expected invalid UTF-8 to fail strict decoding")
	}
}

func TestDecodeLossyUTF8(t *testing.T) {
	t.Parallel()
	got := decodeLossyUTF8([]byte{0xEF, 0xBB, 0xBF, 'h', 0xFF, 'i'})
	if got != "h�i" {
		t.Errorf("decodeLossyUTF8 = %q, want %q", got, "h�i")
	}
}

func TestDecodePermissive_Windows1252(t *testing.T) {
	t.Parallel()
	got, err := decodePermissive(charmap.Windows1252, []byte("Caf\xe9 \x99"))
	if err != nil {
		t.Fatalf("decodePermissive failed: %v", err)
	}
	if got != "Café ™" {
		t.Errorf("decodePermissive = %q, want %q", got, "Café ™")
	}
}
