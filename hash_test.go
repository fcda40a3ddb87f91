package steg

import "testing"

func TestComputeHashSizesMatchAlgoSize(t *testing.T) {
	body := []byte("integrity check payload")
	for _, algo := range []HashAlgo{HashMD5, HashSHA256} {
		got := computeHash(algo, body)
		if len(got) != algo.size() {
			t.Fatalf("computeHash(%v) length = %d, want %d", algo, len(got), algo.size())
		}
	}
}

func TestComputeHashDeterministic(t *testing.T) {
	body := []byte("deterministic input")
	for _, algo := range []HashAlgo{HashMD5, HashSHA256} {
		a := computeHash(algo, body)
		b := computeHash(algo, body)
		if string(a) != string(b) {
			t.Fatalf("computeHash(%v) not deterministic", algo)
		}
	}
}

func TestComputeHashDiffersOnDifferentInput(t *testing.T) {
	for _, algo := range []HashAlgo{HashMD5, HashSHA256} {
		a := computeHash(algo, []byte("input one"))
		b := computeHash(algo, []byte("input two"))
		if string(a) == string(b) {
			t.Fatalf("computeHash(%v) collided on distinct inputs", algo)
		}
	}
}
