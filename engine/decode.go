package engine

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// acceptEncoding lists every content coding decodeBody understands.
const acceptEncoding = "gzip, deflate, br, zstd"

// decodeBody undoes the Content-Encoding of a response body. Stacked codings
// ("gzip, br") are removed last to first.
func decodeBody(contentEncoding string, body []byte, limit int64) ([]byte, error) {
	codings := strings.Split(contentEncoding, ",")
	for i := len(codings) - 1; i >= 0; i-- {
		coding := strings.ToLower(strings.TrimSpace(codings[i]))
		var err error
		switch coding {
		case "", "identity":
			continue
		case "gzip", "x-gzip":
			body, err = readGzip(body, limit)
		case "deflate":
			body, err = readDeflate(body, limit)
		case "br":
			body, err = readAll(brotli.NewReader(bytes.NewReader(body)), limit)
		case "zstd":
			body, err = readZstd(body, limit)
		default:
			return nil, fmt.Errorf("engine: unsupported content encoding %q", coding)
		}
		if err != nil {
			return nil, fmt.Errorf("engine: decode %s body: %w", coding, err)
		}
	}
	return body, nil
}

func readGzip(body []byte, limit int64) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readAll(r, limit)
}

// readDeflate accepts both zlib-wrapped data (what the RFC specifies) and
// raw DEFLATE streams (what many servers send).
func readDeflate(body []byte, limit int64) ([]byte, error) {
	if r, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
		defer r.Close()
		if out, err := readAll(r, limit); err == nil {
			return out, nil
		}
	}
	r := flate.NewReader(bytes.NewReader(body))
	defer r.Close()
	return readAll(r, limit)
}

func readZstd(body []byte, limit int64) ([]byte, error) {
	r, err := zstd.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readAll(r, limit)
}

func readAll(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	return io.ReadAll(io.LimitReader(r, limit))
}

// toUTF8 transcodes body to UTF-8. A non-empty force label wins over the
// Content-Type header and <meta charset> sniffing.
func toUTF8(body []byte, contentType, force string) (string, string, error) {
	var (
		enc  encoding.Encoding
		name string
	)
	if force != "" {
		enc, name = charset.Lookup(force)
		if enc == nil {
			return "", "", fmt.Errorf("engine: unknown charset %q", force)
		}
	} else {
		enc, name, _ = charset.DetermineEncoding(body, contentType)
	}
	if name == "utf-8" || enc == encoding.Nop {
		return string(bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))), "utf-8", nil
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return "", name, fmt.Errorf("engine: transcode from %s: %w", name, err)
	}
	return string(out), name, nil
}
