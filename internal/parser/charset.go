package parser

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

const utf8Label = "utf-8"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// lookupEncoding resolves a WHATWG encoding label ("gbk", "big5", "iso-8859-1", ...)
// to its x/text implementation. Labels follow the same aliasing a browser applies,
// so "gb2312" decodes as GBK and "iso-8859-1" as windows-1252.
func lookupEncoding(label string) (encoding.Encoding, bool) {
	enc, _ := charset.Lookup(strings.TrimSpace(label))
	if enc == nil {
		return nil, false
	}
	return enc, true
}

// isUTF8Label reports whether label names UTF-8.
func isUTF8Label(label string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	return l == "utf-8" || l == "utf8" || l == "unicode-1-1-utf-8"
}

// decodeStrictUTF8 fails on any invalid byte sequence instead of substituting U+FFFD.
func decodeStrictUTF8(raw []byte) (string, bool) {
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(bytes.TrimPrefix(raw, utf8BOM)), true
}

// decodePermissive decodes raw with enc, replacing undecodable sequences.
func decodePermissive(enc encoding.Encoding, raw []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// decodeLossyUTF8 never fails: invalid sequences become U+FFFD and a leading BOM is dropped.
func decodeLossyUTF8(raw []byte) string {
	out, err := unicode.UTF8BOM.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(bytes.TrimPrefix(raw, utf8BOM)), "�")
	}
	return string(out)
}
