package steg

// Encode hides data inside a clone of img under pattern p, returning the
// modified image. img is never mutated; callers get a fresh Image back
// (spec §5: the core clones before writing, leaving shared-state questions
// to the caller).
//
// Steps (spec §4.G): frame the payload, build the header bit stream (if
// enabled), verify capacity for both slot sequences, then stream bits into
// slots in that order.
func Encode(img Image, p Pattern, data []byte) (Image, error) {
	if err := img.validate(); err != nil {
		return Image{}, err
	}
	np, err := p.Normalize(img.Mode)
	if err != nil {
		return Image{}, err
	}

	framed := assembleFrame(np, data)
	dataBits := BitsOf(framed)

	dataCap := slotCapacity(img.Width, img.Height, np)
	if dataCap < len(dataBits) {
		return Image{}, &CapacityExceededError{RequiredBits: len(dataBits), AvailableBits: dataCap}
	}

	var headerBits []byte
	var headerSP NormalizedPattern
	if np.Header != nil {
		headerBits, headerSP = encodeHeader(np, np.Header, img.Width, img.Height, len(framed))
		headerCap := slotCapacity(img.Width, img.Height, headerSP)
		if headerCap < len(headerBits) {
			return Image{}, &CapacityExceededError{RequiredBits: len(headerBits), AvailableBits: headerCap}
		}
	}

	out := img.Clone()

	if np.Header != nil {
		if err := writeBitsToSlots(&out, headerSP, headerBits); err != nil {
			return Image{}, err
		}
	}
	if err := writeBitsToSlots(&out, np, dataBits); err != nil {
		return Image{}, err
	}

	return out, nil
}
