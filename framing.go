package steg

import "bytes"

// rsBlockParams derives the systematic block size n, parity count nsym and
// data size k=n-nsym a pattern implies, per spec §4.D: n is capped at 255
// (a GF(2^8) codeword can't exceed that), nsym = round(factor*n).
func rsBlockParams(factor float64) (n, nsym, k int) {
	n = 255
	nsym = int(factor*float64(n) + 0.5)
	if nsym < 1 {
		nsym = 1
	}
	if nsym >= n {
		nsym = n - 1
	}
	k = n - nsym
	return n, nsym, k
}

// assembleFrame runs the full encode-side framing pipeline in spec order
// (inner to outer): optional compression, optional hash append (over the
// post-compression body), optional Reed-Solomon, then repetition.
func assembleFrame(np NormalizedPattern, payload []byte) []byte {
	body := payload
	if np.Compression == CompressionZlib {
		body = compressPayload(body, np.CompressionStrength)
	}

	if np.HashCheck != HashNone {
		digest := computeHash(np.HashCheck, body)
		body = append(append([]byte(nil), body...), digest...)
	}

	if np.AdvancedRedundancy == RedundancyReedSolomon {
		body = rsEncode(body, np.AdvancedRedundancyCorrectionFactor)
	}

	if np.RepetitiveRedundancy > 1 {
		body = applyRepetition(np, body)
	}

	return body
}

// disassembleFrame reverses assembleFrame. framed must be exactly the bytes
// assembleFrame produced; RS block padding is stripped using the trailing
// pad-length byte rsEncode appends, not a declared payload length.
func disassembleFrame(np NormalizedPattern, framed []byte) ([]byte, error) {
	body := framed

	if np.RepetitiveRedundancy > 1 {
		body = reverseRepetition(np, body)
	}

	var rsErrs int
	if np.AdvancedRedundancy == RedundancyReedSolomon {
		var err error
		body, rsErrs, err = rsDecode(body, np.AdvancedRedundancyCorrectionFactor)
		if err != nil {
			if np.HashCheck != HashNone {
				return nil, &IntegrityFailureError{Recovered: body}
			}
			return body, err
		}
	}
	_ = rsErrs

	if np.HashCheck != HashNone {
		size := np.HashCheck.size()
		if len(body) < size {
			return nil, &HeaderCorruptError{Position: "hash digest"}
		}
		digestBody, digest := body[:len(body)-size], body[len(body)-size:]
		want := computeHash(np.HashCheck, digestBody)
		if !bytes.Equal(digest, want) {
			recovered := digestBody
			if np.Compression == CompressionZlib {
				if dec, err := decompressPayload(digestBody); err == nil {
					recovered = dec
				}
			}
			return nil, &IntegrityFailureError{Recovered: recovered}
		}
		body = digestBody
	}

	if np.Compression == CompressionZlib {
		dec, err := decompressPayload(body)
		if err != nil {
			return nil, err
		}
		body = dec
	}

	return body, nil
}

// rsEncode splits data into k-byte systematic blocks (zero-padding the
// final block) and RS-encodes each independently, per spec §4.D. The pad
// length is recorded as a trailing byte after the last block so the
// decoder can strip it without needing the original payload length
// in hand.
func rsEncode(data []byte, factor float64) []byte {
	_, nsym, k := rsBlockParams(factor)

	nBlocks := (len(data) + k - 1) / k
	if nBlocks == 0 {
		nBlocks = 1
	}
	padded := make([]byte, nBlocks*k)
	copy(padded, data)
	pad := nBlocks*k - len(data)

	out := make([]byte, 0, nBlocks*(k+nsym)+1)
	for i := 0; i < nBlocks; i++ {
		block := padded[i*k : (i+1)*k]
		out = append(out, rsEncodeBlock(block, nsym)...)
	}
	out = append(out, byte(pad))
	return out
}

// rsDecode is the inverse of rsEncode: it splits the codeword stream into
// n=k+nsym blocks, decodes each, concatenates the recovered data bytes and
// strips the trailing pad-length byte's worth of zero padding. It returns
// the total number of byte errors corrected, or an error (with the
// best-effort recovered bytes) if any block is uncorrectable.
func rsDecode(data []byte, factor float64) ([]byte, int, error) {
	_, nsym, k := rsBlockParams(factor)
	n := k + nsym

	if len(data) < 1 {
		return nil, 0, &HeaderCorruptError{Position: "rs stream"}
	}
	stream, pad := data[:len(data)-1], int(data[len(data)-1])

	if len(stream)%n != 0 {
		return nil, 0, &UncorrectableError{}
	}
	nBlocks := len(stream) / n

	out := make([]byte, 0, nBlocks*k)
	totalErrs := 0
	for i := 0; i < nBlocks; i++ {
		block := stream[i*n : (i+1)*n]
		recovered, errs, err := rsDecodeBlock(block, nsym)
		if err != nil {
			return out, totalErrs, &UncorrectableError{BlockIndex: i}
		}
		out = append(out, recovered...)
		totalErrs += errs
	}

	if pad > 0 && pad <= len(out) {
		out = out[:len(out)-pad]
	}
	return out, totalErrs, nil
}

// repetitionUnitSize returns the unit size repetition repeats: the entire
// body as one unit in block mode (grounded on original_source/IST/pattern.py's
// static_apply_redundancy, where "block" mode is `data * r` — the whole
// post-RS stream copied end to end), or a single byte in byte_per_byte mode.
func repetitionUnitSize(np NormalizedPattern, bodyLen int) int {
	if np.RepetitiveRedundancyMode == RepBlockWise {
		return bodyLen
	}
	return 1
}

// applyRepetition repeats body per np.RepetitiveRedundancyMode.
func applyRepetition(np NormalizedPattern, body []byte) []byte {
	unit := repetitionUnitSize(np, len(body))
	return repeatConsecutive(body, unit, np.RepetitiveRedundancy)
}

// reverseRepetition inverts applyRepetition via bit-wise majority vote.
func reverseRepetition(np NormalizedPattern, body []byte) []byte {
	r := np.RepetitiveRedundancy
	unit := len(body) / r
	if np.RepetitiveRedundancyMode == RepByteWise {
		unit = 1
	}
	return majorityVoteConsecutive(body, unit, r)
}
