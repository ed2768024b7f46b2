package netsocket

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
)

// CompressPayload brotli-compresses payload before framing, an optional
// enrichment for callers exchanging large or highly-redundant messages
// (the SVG/XML payloads xpath and svg hand off over a socket compress
// well). andybalholm/brotli sits in the dependency graph exercised only
// by the original's test helpers; wiring it into the wire protocol as an
// opt-in payload transform gives it a real caller.
func CompressPayload(payload []byte, quality int) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, quality)
	if _, err := w.Write(payload); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecompressPayload reverses CompressPayload.
func DecompressPayload(compressed []byte) ([]byte, error) {
	r := brotli.NewReader(bytes.NewReader(compressed))
	return io.ReadAll(r)
}
