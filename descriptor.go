package steg

import "encoding/binary"

// descriptorSize is the fixed length of the canonical pattern descriptor
// (spec §6): channel mask, bit_frequency, byte_spacing, offset, hash_check,
// compression, compression_strength, advanced_redundancy,
// rs_correction_factor (Q0.16), repetitive_redundancy,
// repetitive_redundancy_mode.
const descriptorSize = 16

// encodeDescriptor serializes a NormalizedPattern's data-placement and
// framing parameters into the canonical little-endian descriptor, for
// embedding in a header when WritePattern is set.
func encodeDescriptor(np NormalizedPattern) []byte {
	b := make([]byte, descriptorSize)

	var mask byte
	for _, c := range np.Channels {
		mask |= byte(c)
	}
	b[0] = mask
	b[1] = byte(np.BitFrequency)
	binary.LittleEndian.PutUint16(b[2:4], uint16(np.ByteSpacing))
	binary.LittleEndian.PutUint32(b[4:8], uint32(np.Offset))
	b[8] = byte(np.HashCheck)
	b[9] = byte(np.Compression)
	b[10] = byte(np.CompressionStrength)
	b[11] = byte(np.AdvancedRedundancy)
	binary.LittleEndian.PutUint16(b[12:14], floatToQ16(np.AdvancedRedundancyCorrectionFactor))
	b[14] = byte(np.RepetitiveRedundancy)
	b[15] = byte(np.RepetitiveRedundancyMode)

	return b
}

// decodeDescriptor is the inverse of encodeDescriptor. The returned pattern
// has its Channels field resolved against mode (masked channels absent
// from mode are silently dropped, since the descriptor is only ever
// produced for the image it was written into).
func decodeDescriptor(b []byte, mode Mode) (NormalizedPattern, error) {
	if len(b) < descriptorSize {
		return NormalizedPattern{}, &HeaderCorruptError{Position: "pattern descriptor"}
	}

	mask := b[0]
	var channels []Channel
	for _, c := range mode.Channels() {
		if mask&byte(c) != 0 {
			channels = append(channels, c)
		}
	}

	return NormalizedPattern{
		Channels:                           channels,
		BitFrequency:                       int(b[1]),
		ByteSpacing:                        int(binary.LittleEndian.Uint16(b[2:4])),
		Offset:                             int(binary.LittleEndian.Uint32(b[4:8])),
		HashCheck:                          HashAlgo(b[8]),
		Compression:                        Compression(b[9]),
		CompressionStrength:                int(b[10]),
		AdvancedRedundancy:                 AdvancedRedundancy(b[11]),
		AdvancedRedundancyCorrectionFactor: q16ToFloat(binary.LittleEndian.Uint16(b[12:14])),
		RepetitiveRedundancy:               int(b[14]),
		RepetitiveRedundancyMode:           RepetitionMode(b[15]),
	}, nil
}

// floatToQ16 converts a fraction in [0, 1] to Q0.16 fixed point.
func floatToQ16(f float64) uint16 {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	v := f * 65535.0
	return uint16(v + 0.5)
}

// q16ToFloat converts a Q0.16 fixed-point value back to a float64 in [0, 1].
func q16ToFloat(v uint16) float64 {
	return float64(v) / 65535.0
}
