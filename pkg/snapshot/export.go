package snapshot

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteJSON encodes c as JSON, gzip-compressed when compress is set.
func WriteJSON(w io.Writer, c *CompactDesign, compress bool) error {
	if !compress {
		if err := json.NewEncoder(w).Encode(c); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
	zw := gzip.NewWriter(w)
	if err := json.NewEncoder(zw).Encode(c); err != nil {
		zw.Close()
		return fmt.Errorf("encode: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	return nil
}

// EncodeJSON compacts d and returns its encoding.
func EncodeJSON(d *Design, compress bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, d.Compact(), compress); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON writes the compact form of d to a file at path.
func ExportJSON(d *Design, path string, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(f, d.Compact(), compress)
}

// DecodeCompact reads a document written by WriteJSON. Gzip input is
// detected from its magic bytes.
func DecodeCompact(r io.Reader) (*CompactDesign, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("decompress: %w", err)
		}
		defer zr.Close()
		src = zr
	}
	var c CompactDesign
	if err := json.NewDecoder(src).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &c, nil
}
