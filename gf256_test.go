package steg

import "testing"

func TestGFMulDivInverse(t *testing.T) {
	for a := 1; a < 256; a++ {
		for b := 1; b < 256; b++ {
			prod := gfMul(byte(a), byte(b))
			back := gfDiv(prod, byte(b))
			if back != byte(a) {
				t.Fatalf("gfDiv(gfMul(%d,%d), %d) = %d, want %d", a, b, b, back, a)
			}
		}
	}
}

func TestGFMulByZero(t *testing.T) {
	for a := 0; a < 256; a++ {
		if gfMul(byte(a), 0) != 0 {
			t.Fatalf("gfMul(%d, 0) != 0", a)
		}
	}
}

func TestGFInverseRoundTrip(t *testing.T) {
	for a := 1; a < 256; a++ {
		inv := gfInverse(byte(a))
		if gfMul(byte(a), inv) != 1 {
			t.Fatalf("gfMul(%d, inverse) = %d, want 1", a, gfMul(byte(a), inv))
		}
	}
}

func TestGFPowMatchesRepeatedMul(t *testing.T) {
	for _, a := range []byte{1, 2, 3, 0x1D, 0xFF} {
		want := byte(1)
		for n := 0; n <= 10; n++ {
			got := gfPow(a, n)
			if got != want {
				t.Fatalf("gfPow(%d, %d) = %d, want %d", a, n, got, want)
			}
			want = gfMul(want, a)
		}
	}
}

func TestPolyEvalMatchesDirectComputation(t *testing.T) {
	p := gfPoly{1, 0, 1} // x^2 + 1
	for x := byte(0); x < 255; x++ {
		got := polyEval(p, x)
		want := gfAdd(gfMul(x, x), 1)
		if got != want {
			t.Fatalf("polyEval at %d = %d, want %d", x, got, want)
		}
	}
}
