package steg

import (
	"bytes"
	"strings"
	"testing"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("compressible payload data ", 50))
	compressed := compressPayload(data, 6)
	if compressed[0] != 1 {
		t.Fatalf("expected compressed flag byte 1 for a highly compressible payload, got %d", compressed[0])
	}
	back, err := decompressPayload(compressed)
	if err != nil {
		t.Fatalf("decompressPayload: %v", err)
	}
	if !bytes.Equal(back, data) {
		t.Fatalf("round trip mismatch")
	}
}

func TestCompressSkipsWhenNotSmaller(t *testing.T) {
	// Tiny/incompressible input: zlib overhead makes compression larger
	// than storing raw, so the stored-flag path should be taken.
	data := []byte{0x01}
	out := compressPayload(data, 6)
	if out[0] != 0 {
		t.Fatalf("expected stored flag byte 0 for incompressible tiny payload, got %d", out[0])
	}
	back, err := decompressPayload(out)
	if err != nil {
		t.Fatalf("decompressPayload: %v", err)
	}
	if !bytes.Equal(back, data) {
		t.Fatalf("round trip mismatch: got %v, want %v", back, data)
	}
}

func TestDecompressRejectsEmptyInput(t *testing.T) {
	if _, err := decompressPayload(nil); err == nil {
		t.Fatalf("expected error decompressing empty input")
	}
}

func TestZlibLevelClamps(t *testing.T) {
	if zlibLevel(-5) != zlibLevel(0) {
		t.Fatalf("zlibLevel should clamp negative strengths to the same as 0")
	}
	if zlibLevel(20) != zlibLevel(9) {
		t.Fatalf("zlibLevel should clamp large strengths to the same as 9")
	}
}
