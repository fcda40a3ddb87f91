package steg

import (
	"bytes"
	"testing"
)

func TestRSEncodeDecodeNoErrors(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	nsym := 10
	block := rsEncodeBlock(data, nsym)

	got, corrected, err := rsDecodeBlock(block, nsym)
	if err != nil {
		t.Fatalf("rsDecodeBlock: %v", err)
	}
	if corrected != 0 {
		t.Fatalf("corrected = %d, want 0", corrected)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("got %q, want %q", got, data)
	}
}

func TestRSCorrectsErrorsUpToCapacity(t *testing.T) {
	data := make([]byte, 40)
	for i := range data {
		data[i] = byte(i * 7)
	}
	nsym := 10 // corrects up to 5 byte errors

	for _, tc := range []struct {
		name   string
		errors int
	}{
		{"one_error", 1},
		{"max_correctable", 5},
	} {
		t.Run(tc.name, func(t *testing.T) {
			block := rsEncodeBlock(data, nsym)
			corrupted := append([]byte(nil), block...)
			for i := 0; i < tc.errors; i++ {
				pos := i * 7 % len(corrupted)
				corrupted[pos] ^= 0xFF
			}

			got, corrected, err := rsDecodeBlock(corrupted, nsym)
			if err != nil {
				t.Fatalf("rsDecodeBlock: %v", err)
			}
			if corrected != tc.errors {
				t.Fatalf("corrected = %d, want %d", corrected, tc.errors)
			}
			if !bytes.Equal(got, data) {
				t.Fatalf("got %v, want %v", got, data)
			}
		})
	}
}

func TestRSReportsUncorrectableBeyondCapacity(t *testing.T) {
	data := make([]byte, 40)
	for i := range data {
		data[i] = byte(i * 3)
	}
	nsym := 10 // corrects up to 5 byte errors; inject 6

	block := rsEncodeBlock(data, nsym)
	corrupted := append([]byte(nil), block...)
	for i := 0; i < 6; i++ {
		corrupted[i*7%len(corrupted)] ^= 0xFF
	}

	_, _, err := rsDecodeBlock(corrupted, nsym)
	if err == nil {
		t.Fatalf("expected an error decoding a block with more errors than parity can correct")
	}
}
