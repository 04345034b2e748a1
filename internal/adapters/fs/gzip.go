package fs

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"go.trai.ch/zerr"
)

// Gzip frames data for on-disk storage of large cache payloads.
func Gzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, zerr.Wrap(err, "failed to compress cache payload")
	}
	if err := w.Close(); err != nil {
		return nil, zerr.Wrap(err, "failed to finish cache payload frame")
	}
	return buf.Bytes(), nil
}

// Gunzip unframes a payload read back from disk.
func Gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open cache payload frame")
	}
	defer r.Close() //nolint:errcheck // Best effort close in defer

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to decompress cache payload")
	}
	return out, nil
}
