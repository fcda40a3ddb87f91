package steg

import (
	"bytes"
	"testing"
)

func TestBitsOfRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"single_byte", []byte{0x48}},
		{"ascii", []byte("Hi")},
		{"all_ones", []byte{0xFF, 0xFF}},
		{"all_zeros", []byte{0x00, 0x00, 0x00}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bits := BitsOf(tc.data)
			if len(bits) != len(tc.data)*8 {
				t.Fatalf("BitsOf length = %d, want %d", len(bits), len(tc.data)*8)
			}
			back, pad := BytesOf(bits)
			if pad != 0 {
				t.Fatalf("unexpected pad %d for byte-aligned input", pad)
			}
			if !bytes.Equal(back, tc.data) && !(len(back) == 0 && len(tc.data) == 0) {
				t.Fatalf("round trip = %v, want %v", back, tc.data)
			}
		})
	}
}

func TestBytesOfPadding(t *testing.T) {
	bits := []byte{1, 0, 1}
	data, pad := BytesOf(bits)
	if pad != 5 {
		t.Fatalf("pad = %d, want 5", pad)
	}
	if len(data) != 1 {
		t.Fatalf("len(data) = %d, want 1", len(data))
	}
	if data[0] != 0xA0 {
		t.Fatalf("data[0] = %#x, want 0xA0", data[0])
	}
}

func TestReadWriteLSBs(t *testing.T) {
	for _, tc := range []struct {
		name   string
		sample uint16
		k      int
		v      int
	}{
		{"k1_set", 0xFE, 1, 1},
		{"k1_clear", 0xFF, 1, 0},
		{"k4", 0xF0, 4, 0x5},
		{"k8", 0x1234, 8, 0xAB},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out := WriteLSBs(tc.sample, tc.k, tc.v)
			got := ReadLSBs(out, tc.k)
			if got != tc.v {
				t.Fatalf("ReadLSBs(WriteLSBs(...)) = %d, want %d", got, tc.v)
			}
			upperMask := ^uint16(0) << uint(tc.k)
			if out&upperMask != tc.sample&upperMask {
				t.Fatalf("WriteLSBs touched bits above k: out=%#x sample=%#x", out, tc.sample)
			}
		})
	}
}

func TestBitWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	bw := newBitWriter(&buf)
	bits := BitsOf([]byte("steganography"))
	bw.writeBits(bits)
	bw.flush()

	br := newBitReader(buf.Bytes())
	got, err := br.readBits(len(bits))
	if err != nil {
		t.Fatalf("readBits: %v", err)
	}
	for i := range bits {
		if got[i] != bits[i] {
			t.Fatalf("bit %d = %d, want %d", i, got[i], bits[i])
		}
	}
}
