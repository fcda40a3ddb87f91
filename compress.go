package steg

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// compressPayload zlib-compresses data at the given strength (0-9, mapped
// onto flate's compression levels). Mirrors original_source/IST/pattern.py's
// static_compress_data policy: if compression didn't actually shrink the
// payload, the raw bytes are kept instead and a leading flag byte records
// which case happened, so the decoder never has to guess.
//
// Uses github.com/klauspost/compress/zlib rather than the standard
// library's compress/zlib: it is API-compatible and is already part of
// this module's dependency surface (see DESIGN.md), and is measurably
// faster on the block sizes a steganographic payload typically is.
func compressPayload(data []byte, strength int) []byte {
	var buf bytes.Buffer
	buf.WriteByte(1) // flag: compressed

	level := zlibLevel(strength)
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		w = zlib.NewWriter(&buf)
	}
	_, _ = w.Write(data)
	_ = w.Close()

	if buf.Len()-1 >= len(data) {
		out := make([]byte, 0, len(data)+1)
		out = append(out, 0) // flag: stored
		out = append(out, data...)
		return out
	}
	return buf.Bytes()
}

// decompressPayload is the inverse of compressPayload.
func decompressPayload(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, &HeaderCorruptError{Position: "compression flag"}
	}
	flag, body := data[0], data[1:]
	if flag == 0 {
		return append([]byte(nil), body...), nil
	}
	r, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, &IOError{Err: err}
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, &IOError{Err: err}
	}
	return out, nil
}

// zlibLevel maps the pattern's 0-9 compression_strength onto flate's
// constant levels, clamping out-of-range values.
func zlibLevel(strength int) int {
	if strength <= 0 {
		return zlib.NoCompression
	}
	if strength >= 9 {
		return zlib.BestCompression
	}
	return strength
}
