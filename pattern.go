package steg

import "strings"

// HashAlgo selects the integrity digest algorithm, if any.
type HashAlgo int

const (
	HashNone HashAlgo = iota
	HashMD5
	HashSHA256
)

func (h HashAlgo) size() int {
	switch h {
	case HashMD5:
		return 16
	case HashSHA256:
		return 32
	default:
		return 0
	}
}

func parseHashAlgo(s string) (HashAlgo, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return HashNone, true
	case "md5":
		return HashMD5, true
	case "sha256":
		return HashSHA256, true
	default:
		return HashNone, false
	}
}

// Compression selects the payload compression transform.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionZlib
)

func parseCompression(s string) (Compression, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, true
	case "zlib":
		return CompressionZlib, true
	default:
		return CompressionNone, false
	}
}

// AdvancedRedundancy selects the block error-correction transform.
type AdvancedRedundancy int

const (
	RedundancyNone AdvancedRedundancy = iota
	RedundancyReedSolomon
)

func parseAdvancedRedundancy(s string) (AdvancedRedundancy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return RedundancyNone, true
	case "reed_solomon", "rs":
		return RedundancyReedSolomon, true
	default:
		return RedundancyNone, false
	}
}

// RepetitionMode selects the unit that repetitive redundancy repeats.
type RepetitionMode int

const (
	RepByteWise RepetitionMode = iota
	RepBlockWise
)

func parseRepetitionMode(s string) (RepetitionMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "byte_per_byte":
		return RepByteWise, true
	case "block":
		return RepBlockWise, true
	default:
		return RepByteWise, false
	}
}

// HeaderPositionKind selects where the header frame is anchored in the
// carrier's slot space.
type HeaderPositionKind int

const (
	HeaderAtStart HeaderPositionKind = iota
	HeaderAtEnd
	HeaderAtCustom
)

// HeaderPattern configures the optional in-image preamble. Its bit
// placement fields are independent of the data pattern's, per spec.
type HeaderPattern struct {
	Enabled          bool
	WriteDataSize    bool
	WritePattern     bool
	Position         HeaderPositionKind
	CustomX, CustomY int

	// Channels accepts "auto" (prefer A, then B, then the image's first
	// channel — the discoverability-driven rule from the source library
	// this core descends from), "all", or an explicit subset string like
	// "RGB".
	Channels string

	BitFrequency int
	ByteSpacing  int

	RepetitiveRedundancy              int
	AdvancedRedundancy                string
	AdvancedRedundancyCorrectionFactor float64
}

// Pattern is the user-facing, unvalidated configuration of a bit-placement
// and framing run. Call Normalize against a carrier Mode before use.
type Pattern struct {
	// Channels accepts "auto" (all non-alpha channels), "all" (every
	// channel in declared order), or an explicit subset like "RGB".
	Channels    string
	BitFrequency int
	ByteSpacing  int
	Offset       int

	HashCheck string

	Compression         string
	CompressionStrength int

	AdvancedRedundancy                 string
	AdvancedRedundancyCorrectionFactor float64

	RepetitiveRedundancy     int
	RepetitiveRedundancyMode string

	Header HeaderPattern
}

// DefaultPattern returns the library's baseline configuration: single-bit
// LSB placement across every non-alpha channel, SHA-256 integrity, no
// compression, Reed-Solomon at a conservative 10% correction factor, no
// repetition, and a minimal size-only header (5x repetition, no
// Reed-Solomon).
func DefaultPattern() Pattern {
	return Pattern{
		Channels:                           "auto",
		BitFrequency:                       1,
		ByteSpacing:                        1,
		Offset:                             0,
		HashCheck:                          "sha256",
		Compression:                        "none",
		CompressionStrength:                6,
		AdvancedRedundancy:                 "reed_solomon",
		AdvancedRedundancyCorrectionFactor: 0.1,
		RepetitiveRedundancy:               1,
		RepetitiveRedundancyMode:           "byte_per_byte",
		Header: HeaderPattern{
			Enabled:                            true,
			WriteDataSize:                      true,
			WritePattern:                       false,
			Position:                           HeaderAtStart,
			Channels:                           "auto",
			BitFrequency:                       1,
			ByteSpacing:                        1,
			RepetitiveRedundancy:               5,
			AdvancedRedundancy:                 "none",
			AdvancedRedundancyCorrectionFactor: 0.1,
		},
	}
}

// NormalizedPattern is a Pattern resolved against a concrete carrier Mode:
// channel strings are expanded to an ordered []Channel and every numeric
// field has been range-checked.
type NormalizedPattern struct {
	Channels     []Channel
	BitFrequency int
	ByteSpacing  int
	Offset       int

	HashCheck HashAlgo

	Compression         Compression
	CompressionStrength int

	AdvancedRedundancy                 AdvancedRedundancy
	AdvancedRedundancyCorrectionFactor float64

	RepetitiveRedundancy     int
	RepetitiveRedundancyMode RepetitionMode

	Header *NormalizedHeaderPattern
}

// NormalizedHeaderPattern is HeaderPattern resolved against a carrier Mode.
type NormalizedHeaderPattern struct {
	WriteDataSize bool
	WritePattern  bool
	Position      HeaderPositionKind
	CustomX, CustomY int

	Channels     []Channel
	BitFrequency int
	ByteSpacing  int

	RepetitiveRedundancy               int
	AdvancedRedundancy                 AdvancedRedundancy
	AdvancedRedundancyCorrectionFactor float64
}

// resolveChannels expands a channel selector ("auto", "all", or an
// explicit subset like "RGB") against a mode's declared channels.
// excludeAlphaOnAuto controls whether "auto" drops the alpha channel (the
// data pattern's rule); header channel resolution uses its own auto rule
// in resolveHeaderChannels instead.
func resolveChannels(selector string, mode Mode, excludeAlphaOnAuto bool) ([]Channel, error) {
	all := mode.Channels()
	sel := strings.ToLower(strings.TrimSpace(selector))

	if sel == "" || sel == "all" {
		return all, nil
	}

	if sel == "auto" {
		if !excludeAlphaOnAuto {
			return all, nil
		}
		out := make([]Channel, 0, len(all))
		for _, c := range all {
			if c != ChanA {
				out = append(out, c)
			}
		}
		return out, nil
	}

	byLetter := map[byte]Channel{'r': ChanR, 'g': ChanG, 'b': ChanB, 'a': ChanA, 'l': ChanL}
	out := make([]Channel, 0, len(sel))
	for i := 0; i < len(sel); i++ {
		ch, ok := byLetter[sel[i]]
		if !ok || channelIndex(mode, ch) < 0 {
			return nil, &InvalidPatternError{Reason: "channel \"" + string(sel[i]) + "\" absent from image mode " + mode.String()}
		}
		out = append(out, ch)
	}
	return out, nil
}

// resolveHeaderChannels implements the "auto" discoverability rule: when
// the header is meant to be found without out-of-band knowledge (it writes
// both the payload size and the pattern, or it's pinned to the image
// start), prefer the alpha channel, then blue, then the mode's first
// channel; otherwise fall back to the data channels.
func resolveHeaderChannels(hp HeaderPattern, mode Mode, discoverable bool, dataChannels []Channel) ([]Channel, error) {
	sel := strings.ToLower(strings.TrimSpace(hp.Channels))
	if sel != "auto" {
		return resolveChannels(hp.Channels, mode, false)
	}
	if !discoverable {
		return dataChannels, nil
	}
	all := mode.Channels()
	for _, prefer := range []Channel{ChanA, ChanB} {
		if channelIndex(mode, prefer) >= 0 {
			return []Channel{prefer}, nil
		}
	}
	return all[:1], nil
}

// Normalize validates p against mode and resolves its channel selectors,
// returning InvalidPatternError on any range violation or absent channel.
func (p Pattern) Normalize(mode Mode) (NormalizedPattern, error) {
	var np NormalizedPattern

	if p.BitFrequency < 1 || p.BitFrequency > 8 {
		return np, &InvalidPatternError{Reason: "bit_frequency must be in [1, 8]"}
	}
	if p.ByteSpacing < 1 {
		return np, &InvalidPatternError{Reason: "byte_spacing must be >= 1"}
	}
	if p.Offset < 0 {
		return np, &InvalidPatternError{Reason: "offset must be >= 0"}
	}
	if p.CompressionStrength < 0 || p.CompressionStrength > 9 {
		return np, &InvalidPatternError{Reason: "compression_strength must be in [0, 9]"}
	}
	if p.AdvancedRedundancyCorrectionFactor < 0 || p.AdvancedRedundancyCorrectionFactor > 1 {
		return np, &InvalidPatternError{Reason: "advanced_redundancy_correction_factor must be in [0, 1]"}
	}
	if p.RepetitiveRedundancy < 1 {
		return np, &InvalidPatternError{Reason: "repetitive_redundancy must be >= 1"}
	}

	channels, err := resolveChannels(p.Channels, mode, true)
	if err != nil {
		return np, err
	}
	if len(channels) == 0 {
		return np, &InvalidPatternError{Reason: "channel set resolved empty"}
	}

	hashCheck, ok := parseHashAlgo(p.HashCheck)
	if !ok {
		return np, &InvalidPatternError{Reason: "invalid hash_check \"" + p.HashCheck + "\""}
	}
	compression, ok := parseCompression(p.Compression)
	if !ok {
		return np, &InvalidPatternError{Reason: "invalid compression \"" + p.Compression + "\""}
	}
	advRedundancy, ok := parseAdvancedRedundancy(p.AdvancedRedundancy)
	if !ok {
		return np, &InvalidPatternError{Reason: "invalid advanced_redundancy \"" + p.AdvancedRedundancy + "\""}
	}
	repMode, ok := parseRepetitionMode(p.RepetitiveRedundancyMode)
	if !ok {
		return np, &InvalidPatternError{Reason: "invalid repetitive_redundancy_mode \"" + p.RepetitiveRedundancyMode + "\""}
	}

	np = NormalizedPattern{
		Channels:                           channels,
		BitFrequency:                       p.BitFrequency,
		ByteSpacing:                        p.ByteSpacing,
		Offset:                             p.Offset,
		HashCheck:                          hashCheck,
		Compression:                        compression,
		CompressionStrength:                p.CompressionStrength,
		AdvancedRedundancy:                 advRedundancy,
		AdvancedRedundancyCorrectionFactor: p.AdvancedRedundancyCorrectionFactor,
		RepetitiveRedundancy:               p.RepetitiveRedundancy,
		RepetitiveRedundancyMode:           repMode,
	}

	if p.Header.Enabled {
		nh, err := p.Header.normalize(mode, np)
		if err != nil {
			return NormalizedPattern{}, err
		}
		np.Header = nh
	}

	return np, nil
}

func (hp HeaderPattern) normalize(mode Mode, dataPattern NormalizedPattern) (*NormalizedHeaderPattern, error) {
	if hp.BitFrequency < 1 || hp.BitFrequency > 8 {
		return nil, &InvalidPatternError{Reason: "header bit_frequency must be in [1, 8]"}
	}
	if hp.ByteSpacing < 1 {
		return nil, &InvalidPatternError{Reason: "header byte_spacing must be >= 1"}
	}
	if hp.RepetitiveRedundancy < 1 {
		return nil, &InvalidPatternError{Reason: "header repetitive_redundancy must be >= 1"}
	}

	discoverable := hp.WriteDataSize && (hp.WritePattern || hp.Position == HeaderAtStart)
	channels, err := resolveHeaderChannels(hp, mode, discoverable, dataPattern.Channels)
	if err != nil {
		return nil, err
	}

	advRedundancy, ok := parseAdvancedRedundancy(hp.AdvancedRedundancy)
	if !ok {
		return nil, &InvalidPatternError{Reason: "invalid header advanced_redundancy \"" + hp.AdvancedRedundancy + "\""}
	}

	return &NormalizedHeaderPattern{
		WriteDataSize:                      hp.WriteDataSize,
		WritePattern:                       hp.WritePattern,
		Position:                           hp.Position,
		CustomX:                            hp.CustomX,
		CustomY:                            hp.CustomY,
		Channels:                           channels,
		BitFrequency:                       hp.BitFrequency,
		ByteSpacing:                        hp.ByteSpacing,
		RepetitiveRedundancy:               hp.RepetitiveRedundancy,
		AdvancedRedundancy:                 advRedundancy,
		AdvancedRedundancyCorrectionFactor: hp.AdvancedRedundancyCorrectionFactor,
	}, nil
}
