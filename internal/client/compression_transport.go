package client

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

const subtitleAccept = "text/plain, text/vtt, application/x-subrip, */*;q=0.8"

// credentialHeaders are never forwarded to subtitle hosts; requests behave like an
// anonymous cross-origin fetch.
var credentialHeaders = []string{"Authorization", "Cookie", "Proxy-Authorization"}

// subtitleTransport wraps an http.RoundTripper to send anonymous subtitle requests and
// transparently decompress gzip, brotli and zstd response bodies.
type subtitleTransport struct {
	transport http.RoundTripper
	userAgent string
}

// newSubtitleTransport creates a transport around base (http.DefaultTransport when nil).
func newSubtitleTransport(base http.RoundTripper, userAgent string) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &subtitleTransport{transport: base, userAgent: userAgent}
}

// RoundTrip strips credentials, fills the default headers and decompresses the response.
func (t *subtitleTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = cloneRequest(req)

	for _, h := range credentialHeaders {
		req.Header.Del(h)
	}
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "gzip, br, zstd")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", subtitleAccept)
	}
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// HEAD, 204 and 304 responses carry nothing to decompress
	if resp.Body == nil || resp.Body == http.NoBody {
		return resp, nil
	}

	var reader io.ReadCloser
	switch parseContentEncoding(resp.Header.Get("Content-Encoding")) {
	case "":
		return resp, nil
	case "gzip":
		reader, err = gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
	case "br":
		reader = io.NopCloser(brotli.NewReader(resp.Body))
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		reader = zr.IOReadCloser()
	default:
		return resp, nil
	}

	resp.Body = &decompressReadCloser{reader: reader, originalBody: resp.Body}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1

	return resp, nil
}

// decompressReadCloser closes both the decompressor and the original body
type decompressReadCloser struct {
	reader       io.ReadCloser
	originalBody io.ReadCloser
}

func (d *decompressReadCloser) Read(p []byte) (int, error) {
	return d.reader.Read(p)
}

func (d *decompressReadCloser) Close() error {
	readerErr := d.reader.Close()
	bodyErr := d.originalBody.Close()
	if readerErr != nil {
		return readerErr
	}
	return bodyErr
}

// cloneRequest creates a shallow copy of the request with its own header map
func cloneRequest(req *http.Request) *http.Request {
	r := new(http.Request)
	*r = *req
	r.Header = req.Header.Clone()
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	return r
}

// parseContentEncoding returns the outermost (last applied) coding of a Content-Encoding
// header, lowercased, e.g. "gzip, br" -> "br". Empty when the header is blank.
func parseContentEncoding(header string) string {
	parts := strings.Split(header, ",")
	return strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
}
