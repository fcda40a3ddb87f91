package steg

import (
	"bytes"
	"encoding/binary"
)

var headerMagic = [4]byte{0x53, 0x54, 0x45, 0x47} // "STEG"

const headerVersion = 1

const (
	headerFlagWriteDataSize   = 1 << 0
	headerFlagWritePattern    = 1 << 1
	headerFlagHashPresent     = 1 << 2
	headerFlagCompressPresent = 1 << 3
	headerFlagRSPresent       = 1 << 4
)

// parsedHeader is the result of successfully decoding and CRC-verifying a
// header frame.
type parsedHeader struct {
	PayloadLength    int
	HasPayloadLength bool
	Pattern          NormalizedPattern
	HasPattern       bool
}

// buildHeaderBody serializes the fixed-layout header payload of spec §4.F:
// magic, version, flags, optional payload length, optional pattern
// descriptor, trailing CRC-16 over everything preceding it.
func buildHeaderBody(np NormalizedPattern, hp *NormalizedHeaderPattern, payloadLength int) []byte {
	var buf bytes.Buffer
	buf.Write(headerMagic[:])
	buf.WriteByte(headerVersion)

	var flags byte
	if hp.WriteDataSize {
		flags |= headerFlagWriteDataSize
	}
	if hp.WritePattern {
		flags |= headerFlagWritePattern
	}
	if np.HashCheck != HashNone {
		flags |= headerFlagHashPresent
	}
	if np.Compression != CompressionNone {
		flags |= headerFlagCompressPresent
	}
	if np.AdvancedRedundancy != RedundancyNone {
		flags |= headerFlagRSPresent
	}
	buf.WriteByte(flags)

	var lenField [4]byte
	if hp.WriteDataSize {
		binary.LittleEndian.PutUint32(lenField[:], uint32(payloadLength))
	}
	buf.Write(lenField[:])

	var descriptor []byte
	if hp.WritePattern {
		descriptor = encodeDescriptor(np)
	}
	var lpField [2]byte
	binary.LittleEndian.PutUint16(lpField[:], uint16(len(descriptor)))
	buf.Write(lpField[:])
	buf.Write(descriptor)

	crc := crc16CCITT(buf.Bytes())
	var crcField [2]byte
	binary.LittleEndian.PutUint16(crcField[:], crc)
	buf.Write(crcField[:])

	return buf.Bytes()
}

// headerBodyLen returns the exact byte length buildHeaderBody produces for
// hp, without needing to build it: 4 (magic) + 1 (version) + 1 (flags) +
// 4 (length) + 2 (descriptor length) + descriptor + 2 (CRC).
func headerBodyLen(hp *NormalizedHeaderPattern) int {
	n := 14
	if hp.WritePattern {
		n += descriptorSize
	}
	return n
}

// parseHeaderBody is the inverse of buildHeaderBody: it validates the
// magic and CRC, then extracts whichever optional fields the flags
// declare present.
func parseHeaderBody(b []byte, mode Mode) (parsedHeader, error) {
	if len(b) < 12 {
		return parsedHeader{}, &HeaderCorruptError{Position: "truncated"}
	}
	if !bytes.Equal(b[0:4], headerMagic[:]) {
		return parsedHeader{}, &HeaderCorruptError{Position: "magic"}
	}
	flags := b[5]
	payloadLen := binary.LittleEndian.Uint32(b[6:10])
	lp := int(binary.LittleEndian.Uint16(b[10:12]))

	if len(b) < 12+lp+2 {
		return parsedHeader{}, &HeaderCorruptError{Position: "truncated"}
	}
	descBytes := b[12 : 12+lp]
	gotCRC := binary.LittleEndian.Uint16(b[12+lp : 14+lp])
	wantCRC := crc16CCITT(b[:12+lp])
	if gotCRC != wantCRC {
		return parsedHeader{}, &HeaderCorruptError{Position: "crc"}
	}

	var ph parsedHeader
	if flags&headerFlagWriteDataSize != 0 {
		ph.HasPayloadLength = true
		ph.PayloadLength = int(payloadLen)
	}
	if flags&headerFlagWritePattern != 0 && lp > 0 {
		np, err := decodeDescriptor(descBytes, mode)
		if err != nil {
			return parsedHeader{}, err
		}
		ph.Pattern = np
		ph.HasPattern = true
	}
	return ph, nil
}

// frameHeaderBody applies the header pattern's own redundancy layers (RS,
// then repetition) to the serialized header body; headers carry no
// compression or hash layer of their own.
func frameHeaderBody(hp *NormalizedHeaderPattern, body []byte) []byte {
	if hp.AdvancedRedundancy == RedundancyReedSolomon {
		body = rsEncode(body, hp.AdvancedRedundancyCorrectionFactor)
	}
	if hp.RepetitiveRedundancy > 1 {
		body = repeatConsecutive(body, 1, hp.RepetitiveRedundancy)
	}
	return body
}

// deframeHeaderBody inverts frameHeaderBody.
func deframeHeaderBody(hp *NormalizedHeaderPattern, framed []byte) ([]byte, error) {
	body := framed
	if hp.RepetitiveRedundancy > 1 {
		body = majorityVoteConsecutive(body, 1, hp.RepetitiveRedundancy)
	}
	if hp.AdvancedRedundancy == RedundancyReedSolomon {
		var err error
		body, _, err = rsDecode(body, hp.AdvancedRedundancyCorrectionFactor)
		if err != nil {
			return nil, err
		}
	}
	return body, nil
}

// headerFramedBitLen computes the exact bit length a header frame occupies
// in the carrier once RS and repetition are applied, by running the
// framing transforms over a correctly-sized dummy body — cheap relative to
// a pixel scan and guaranteed to agree with frameHeaderBody/deframeHeaderBody.
func headerFramedBitLen(hp *NormalizedHeaderPattern) int {
	dummy := make([]byte, headerBodyLen(hp))
	return len(frameHeaderBody(hp, dummy)) * 8
}

// headerSlotPattern adapts a NormalizedHeaderPattern plus a concrete
// starting pixel offset into the NormalizedPattern shape the slot iterator
// consumes.
func headerSlotPattern(hp *NormalizedHeaderPattern, offsetPixels int) NormalizedPattern {
	return NormalizedPattern{
		Channels:     hp.Channels,
		BitFrequency: hp.BitFrequency,
		ByteSpacing:  hp.ByteSpacing,
		Offset:       offsetPixels,
	}
}

// headerPositionOffset converts a header position (start / end / custom)
// into a flattened starting pixel index for the given carrier geometry.
func headerPositionOffset(pos HeaderPositionKind, hp *NormalizedHeaderPattern, width, height int) int {
	switch pos {
	case HeaderAtEnd:
		return headerEndOffset(hp, width, height)
	case HeaderAtCustom:
		return hp.CustomY*width + hp.CustomX
	default:
		return 0
	}
}

// headerEndOffset returns the starting pixel offset such that the header's
// last contributing pixel lands exactly on the carrier's final pixel. When
// the header needs more pixels than the carrier has, the offset is clamped
// to 0.
func headerEndOffset(hp *NormalizedHeaderPattern, width, height int) int {
	bits := headerFramedBitLen(hp)
	slotsPerPixel := len(hp.Channels) * hp.BitFrequency
	if slotsPerPixel == 0 {
		return 0
	}
	neededPixels := (bits + slotsPerPixel - 1) / slotsPerPixel
	span := (neededPixels-1)*hp.ByteSpacing + 1
	offset := width*height - span
	if offset < 0 {
		offset = 0
	}
	return offset
}

// encodeHeader builds the fully framed header bit stream ready to hand to
// writeBitsToSlots, anchored at hp's configured position.
func encodeHeader(np NormalizedPattern, hp *NormalizedHeaderPattern, width, height, payloadLength int) (bits []byte, slotPattern NormalizedPattern) {
	body := buildHeaderBody(np, hp, payloadLength)
	framed := frameHeaderBody(hp, body)
	offset := headerPositionOffset(hp.Position, hp, width, height)
	return BitsOf(framed), headerSlotPattern(hp, offset)
}

// decodeHeaderAt attempts to read and validate a header frame at a single
// starting pixel offset.
func decodeHeaderAt(img Image, hp *NormalizedHeaderPattern, offset int) (parsedHeader, error) {
	sp := headerSlotPattern(hp, offset)
	bits, err := readBitsFromSlots(img, sp, headerFramedBitLen(hp))
	if err != nil {
		return parsedHeader{}, err
	}
	framed, _ := BytesOf(bits)
	body, err := deframeHeaderBody(hp, framed)
	if err != nil {
		return parsedHeader{}, &HeaderCorruptError{Position: "redundancy"}
	}
	return parseHeaderBody(body, img.Mode)
}

// decodeHeader tries the header pattern's candidate positions in the order
// spec §4.F prescribes: image start, then image end, then (if distinct)
// the position the caller's header pattern actually configured.
func decodeHeader(img Image, hp *NormalizedHeaderPattern) (parsedHeader, error) {
	tried := map[int]bool{}
	candidates := []int{
		headerPositionOffset(HeaderAtStart, hp, img.Width, img.Height),
		headerPositionOffset(HeaderAtEnd, hp, img.Width, img.Height),
		headerPositionOffset(hp.Position, hp, img.Width, img.Height),
	}

	var lastErr error
	for _, off := range candidates {
		if tried[off] {
			continue
		}
		tried[off] = true
		ph, err := decodeHeaderAt(img, hp, off)
		if err == nil {
			return ph, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = &HeaderCorruptError{Position: "no candidate position"}
	}
	return parsedHeader{}, lastErr
}
