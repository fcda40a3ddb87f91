package steg

import "testing"

func minimalHeaderPattern() *NormalizedHeaderPattern {
	return &NormalizedHeaderPattern{
		WriteDataSize:        true,
		WritePattern:         false,
		Position:             HeaderAtStart,
		Channels:             []Channel{ChanR},
		BitFrequency:         1,
		ByteSpacing:          1,
		RepetitiveRedundancy: 1,
		AdvancedRedundancy:   RedundancyNone,
	}
}

func TestBuildParseHeaderBodyRoundTrip(t *testing.T) {
	np := basePattern()
	hp := minimalHeaderPattern()

	body := buildHeaderBody(np, hp, 1234)
	if len(body) != headerBodyLen(hp) {
		t.Fatalf("headerBodyLen = %d, actual body = %d", headerBodyLen(hp), len(body))
	}

	ph, err := parseHeaderBody(body, ModeRGB)
	if err != nil {
		t.Fatalf("parseHeaderBody: %v", err)
	}
	if !ph.HasPayloadLength || ph.PayloadLength != 1234 {
		t.Fatalf("got payload length %d (has=%v), want 1234", ph.PayloadLength, ph.HasPayloadLength)
	}
	if ph.HasPattern {
		t.Fatalf("did not expect a pattern descriptor when WritePattern is false")
	}
}

func TestBuildParseHeaderBodyWithPatternDescriptor(t *testing.T) {
	np := basePattern()
	np.HashCheck = HashSHA256
	hp := minimalHeaderPattern()
	hp.WritePattern = true

	body := buildHeaderBody(np, hp, 42)
	ph, err := parseHeaderBody(body, ModeRGB)
	if err != nil {
		t.Fatalf("parseHeaderBody: %v", err)
	}
	if !ph.HasPattern {
		t.Fatalf("expected a decoded pattern descriptor")
	}
	if ph.Pattern.HashCheck != HashSHA256 {
		t.Fatalf("decoded pattern hash_check = %v, want HashSHA256", ph.Pattern.HashCheck)
	}
}

func TestParseHeaderBodyDetectsCRCCorruption(t *testing.T) {
	np := basePattern()
	hp := minimalHeaderPattern()
	body := buildHeaderBody(np, hp, 99)
	body[5] ^= 0xFF // corrupt the flags byte, inside the CRC's coverage

	if _, err := parseHeaderBody(body, ModeRGB); err == nil {
		t.Fatalf("expected a CRC mismatch error on corrupted header body")
	}
}

func TestParseHeaderBodyRejectsBadMagic(t *testing.T) {
	np := basePattern()
	hp := minimalHeaderPattern()
	body := buildHeaderBody(np, hp, 99)
	body[0] = 0x00

	if _, err := parseHeaderBody(body, ModeRGB); err == nil {
		t.Fatalf("expected an error for a body with corrupted magic")
	}
}

func TestFrameDeframeHeaderBodyRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		hp   func() *NormalizedHeaderPattern
	}{
		{"no_redundancy", minimalHeaderPattern},
		{"repetition_only", func() *NormalizedHeaderPattern {
			hp := minimalHeaderPattern()
			hp.RepetitiveRedundancy = 5
			return hp
		}},
		{"rs_only", func() *NormalizedHeaderPattern {
			hp := minimalHeaderPattern()
			hp.AdvancedRedundancy = RedundancyReedSolomon
			hp.AdvancedRedundancyCorrectionFactor = 0.2
			return hp
		}},
		{"rs_and_repetition", func() *NormalizedHeaderPattern {
			hp := minimalHeaderPattern()
			hp.AdvancedRedundancy = RedundancyReedSolomon
			hp.AdvancedRedundancyCorrectionFactor = 0.2
			hp.RepetitiveRedundancy = 3
			return hp
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			hp := tc.hp()
			np := basePattern()
			body := buildHeaderBody(np, hp, 500)

			framed := frameHeaderBody(hp, body)
			back, err := deframeHeaderBody(hp, framed)
			if err != nil {
				t.Fatalf("deframeHeaderBody: %v", err)
			}
			if len(back) < len(body) {
				t.Fatalf("recovered body shorter than original: got %d, want >= %d", len(back), len(body))
			}
			for i := range body {
				if back[i] != body[i] {
					t.Fatalf("byte %d = %#x, want %#x", i, back[i], body[i])
				}
			}
		})
	}
}

func TestEncodeDecodeHeaderOnImage(t *testing.T) {
	width, height := 16, 16
	img := Image{Mode: ModeRGB, Width: width, Height: height, Pix: make([]uint16, width*height*3)}

	np := basePattern()
	hp := minimalHeaderPattern()

	bits, sp := encodeHeader(np, hp, width, height, 777)
	if err := writeBitsToSlots(&img, sp, bits); err != nil {
		t.Fatalf("writeBitsToSlots: %v", err)
	}

	ph, err := decodeHeader(img, hp)
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}
	if !ph.HasPayloadLength || ph.PayloadLength != 777 {
		t.Fatalf("got payload length %d (has=%v), want 777", ph.PayloadLength, ph.HasPayloadLength)
	}
}

func TestHeaderPositionFallsBackFromStartToEnd(t *testing.T) {
	width, height := 16, 16
	img := Image{Mode: ModeRGB, Width: width, Height: height, Pix: make([]uint16, width*height*3)}

	np := basePattern()
	hp := minimalHeaderPattern()
	hp.Position = HeaderAtEnd

	bits, sp := encodeHeader(np, hp, width, height, 321)
	if err := writeBitsToSlots(&img, sp, bits); err != nil {
		t.Fatalf("writeBitsToSlots: %v", err)
	}

	// decodeHeader must find it at the end even though start is tried first.
	ph, err := decodeHeader(img, hp)
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}
	if ph.PayloadLength != 321 {
		t.Fatalf("got payload length %d, want 321", ph.PayloadLength)
	}
}

func TestHeaderEndOffsetLandsOnFinalPixel(t *testing.T) {
	hp := minimalHeaderPattern()
	width, height := 16, 16
	offset := headerEndOffset(hp, width, height)

	bits := headerFramedBitLen(hp)
	slotsPerPixel := len(hp.Channels) * hp.BitFrequency
	neededPixels := (bits + slotsPerPixel - 1) / slotsPerPixel
	lastPixel := offset + (neededPixels-1)*hp.ByteSpacing
	if lastPixel != width*height-1 {
		t.Fatalf("last contributing pixel = %d, want %d (final pixel)", lastPixel, width*height-1)
	}
}
