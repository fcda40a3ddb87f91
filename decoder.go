package steg

// DecodeOptions configures a Decode call (spec §4.H inputs beyond the
// carrier, pattern and data).
type DecodeOptions struct {
	// EnforceProvidedPattern makes the caller's Pattern and DataLength win
	// over anything recovered from an in-image header, per spec §4.F/§4.H.
	EnforceProvidedPattern bool

	// DataLength is the original (pre-framing) payload length in bytes, used
	// when no header is present or EnforceProvidedPattern is set. It can
	// only be turned into an exact bit count when the pattern's compression
	// is off (compressed size isn't derivable from the raw size); otherwise
	// it is ignored and AllowLengthGuessing governs what happens next.
	DataLength int

	// AllowLengthGuessing enables the last-resort, quadratic-time decode
	// path of spec §4.H when no data length can be established any other
	// way. Off by default since that path can be expensive on large
	// carriers; spec explicitly allows disabling it.
	AllowLengthGuessing bool
}

// Decode recovers the payload hidden in img under pattern p. Steps (spec
// §4.H): resolve the true data pattern and length (header decode, subject
// to EnforceProvidedPattern), read that many framed bits, then reverse
// repetition, RS, hash verification and compression in that order.
func Decode(img Image, p Pattern, opts DecodeOptions) ([]byte, error) {
	if err := img.validate(); err != nil {
		return nil, err
	}
	np, err := p.Normalize(img.Mode)
	if err != nil {
		return nil, err
	}

	dataPattern := np
	framedLen := 0
	haveLen := false

	if np.Header != nil {
		ph, herr := decodeHeader(img, np.Header)
		switch {
		case herr == nil:
			if ph.HasPattern && !opts.EnforceProvidedPattern {
				dataPattern = ph.Pattern
			}
			if ph.HasPayloadLength && !opts.EnforceProvidedPattern {
				framedLen = ph.PayloadLength
				haveLen = true
			}
		case !opts.EnforceProvidedPattern:
			return nil, herr
		}
	}

	if !haveLen && opts.DataLength > 0 {
		if fl, ok := framedLenFromRaw(dataPattern, opts.DataLength); ok {
			framedLen = fl
			haveLen = true
		}
	}

	if haveLen {
		bits, err := readBitsFromSlots(img, dataPattern, framedLen*8)
		if err != nil {
			return nil, err
		}
		framed, _ := BytesOf(bits)
		return disassembleFrame(dataPattern, framed)
	}

	if !opts.AllowLengthGuessing {
		return nil, &InvalidPatternError{Reason: "data length unknown and length guessing is disabled"}
	}
	return decodeGuessLength(img, dataPattern)
}

// framedLenFromRaw derives the exact framed byte length assembleFrame
// would produce for a raw payload of rawLen bytes, when that's possible
// without actually running compression (compression's output size isn't a
// function of its input size alone, so ok is false whenever compression is
// enabled; callers must fall back to a header or to length guessing then).
func framedLenFromRaw(np NormalizedPattern, rawLen int) (length int, ok bool) {
	if np.Compression != CompressionNone {
		return 0, false
	}
	body := rawLen
	if np.HashCheck != HashNone {
		body += np.HashCheck.size()
	}
	if np.AdvancedRedundancy == RedundancyReedSolomon {
		_, nsym, k := rsBlockParams(np.AdvancedRedundancyCorrectionFactor)
		nBlocks := (body + k - 1) / k
		if nBlocks == 0 {
			nBlocks = 1
		}
		body = nBlocks*(k+nsym) + 1
	}
	if np.RepetitiveRedundancy > 1 {
		body *= np.RepetitiveRedundancy
	}
	return body, true
}

// readAllBits drains the slot sequence for np over img until the carrier
// is exhausted, used only by decodeGuessLength.
func readAllBits(img Image, np NormalizedPattern) []byte {
	it := newSlotIterator(img.Width, img.Height, np)
	var bits []byte
	for {
		s, err := it.next()
		if err != nil {
			break
		}
		ci := channelIndex(img.Mode, s.Channel)
		if ci < 0 {
			break
		}
		sample := img.sampleAt(s.X, s.Y, ci)
		bits = append(bits, getSlotBit(sample, s.Bit))
	}
	return bits
}

// decodeGuessLength is spec §4.H's last-resort mode: read until the
// carrier is exhausted, then — since a hash is the only thing that can
// tell a correct candidate length from an incorrect one — progressively
// shrink the candidate length from the full read down to one byte until
// one candidate's hash verifies. Without a hash there is no way to find
// the true cut-off, so this mode refuses outright rather than guess and
// silently return a best-effort result (spec.md's mandate: "hash-guided
// trimming as a last resort or immediate failure if no hash is
// configured"). Quadratic in the carrier's bit capacity; gated by
// DecodeOptions.AllowLengthGuessing.
func decodeGuessLength(img Image, np NormalizedPattern) ([]byte, error) {
	if np.HashCheck == HashNone {
		return nil, &InvalidPatternError{Reason: "length guessing requires a hash to verify candidate lengths against"}
	}

	full, _ := BytesOf(readAllBits(img, np))
	for length := len(full); length > 0; length-- {
		if out, err := disassembleFrame(np, full[:length]); err == nil {
			return out, nil
		}
	}
	return nil, &IntegrityFailureError{}
}
