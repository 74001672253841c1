package parser

import (
	"bytes"
	"reflect"
	"testing"
)

func TestResolveEncodings_BOM(t *testing.T) {
	t.Parallel()
	inputs := [][]byte{
		{0xEF, 0xBB, 0xBF},
		append([]byte{0xEF, 0xBB, 0xBF}, []byte("1\n00:00:01,000 --> 00:00:02,000\n\xc4\xe3")...),
		append([]byte{0xEF, 0xBB, 0xBF}, bytes.Repeat([]byte{0xFF}, 50)...),
	}
	for i, raw := range inputs {
		got := ResolveEncodings(raw, "gb2312")
		if !reflect.DeepEqual(got, []string{"utf-8"}) {
			t.Errorf("input %d: ResolveEncodings = %v, want [utf-8]", i, got)
		}
	}
}

func TestResolveEncodings_ASCIIOnly(t *testing.T) {
	t.Parallel()
	inputs := [][]byte{
		nil,
		[]byte(""),
		[]byte("1\n00:00:01,000 --> 00:00:02,000\nHello\n"),
		bytes.Repeat([]byte{0x7F}, 2000),
	}
	for i, raw := range inputs {
		got := ResolveEncodings(raw, "gb2312")
		if !reflect.DeepEqual(got, []string{"utf-8"}) {
			t.Errorf("input %d: ResolveEncodings = %v, want [utf-8]", i, got)
		}
	}
}

func TestResolveEncodings_HighByteWithDefault(t *testing.T) {
	t.Parallel()
	raw := []byte("1\n00:00:01,000 --> 00:00:02,000\n\xc4\xe3\xba\xc3\n")

	got := ResolveEncodings(raw, "gb2312")
	want := []string{"utf-8", "gb2312", "gbk", "gb18030", "big5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveEncodings = %v, want %v", got, want)
	}
}

func TestResolveEncodings_NoDuplicates(t *testing.T) {
	t.Parallel()
	raw := []byte{0x80}
	tests := []struct {
		name            string
		defaultEncoding string
		want            []string
	}{
		{"no default", "", []string{"utf-8", "gbk", "gb18030", "big5"}},
		{"default is utf-8", "utf-8", []string{"utf-8", "gbk", "gb18030", "big5"}},
		{"default already in fallbacks", "GBK", []string{"utf-8", "gbk", "gb18030", "big5"}},
		{"default big5 moves first", "big5", []string{"utf-8", "big5", "gbk", "gb18030"}},
		{"single-byte default", "windows-1251", []string{"utf-8", "windows-1251", "gbk", "gb18030", "big5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ResolveEncodings(raw, tt.defaultEncoding)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveEncodings = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveEncodings_HighByteOutsideWindow(t *testing.T) {
	t.Parallel()
	raw := append(bytes.Repeat([]byte("a"), 1000), 0xC4, 0xE3)
	got := ResolveEncodings(raw, "gb2312")
	if !reflect.DeepEqual(got, []string{"utf-8"}) {
		t.Errorf("ResolveEncodings = %v, want [utf-8] when high bytes are past the scan window", got)
	}

	raw = append(bytes.Repeat([]byte("a"), 999), 0xC4)
	got = ResolveEncodings(raw, "")
	if len(got) == 1 {
		t.Errorf("expected high byte at offset 999 to be detected, got %v", got)
	}
}
