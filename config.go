package steg

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlHeaderPattern mirrors HeaderPattern with yaml tags, in the tagged-
// struct configuration style this stack uses (grounded on
// wqim-centi/config/config.go).
type yamlHeaderPattern struct {
	Enabled       bool   `yaml:"enabled"`
	WriteDataSize bool   `yaml:"write_data_size"`
	WritePattern  bool   `yaml:"write_pattern"`
	Position      string `yaml:"position"` // "start", "end", or "custom"
	CustomX       int    `yaml:"custom_x"`
	CustomY       int    `yaml:"custom_y"`

	Channels     string `yaml:"channels"`
	BitFrequency int    `yaml:"bit_frequency"`
	ByteSpacing  int    `yaml:"byte_spacing"`

	RepetitiveRedundancy               int     `yaml:"repetitive_redundancy"`
	AdvancedRedundancy                 string  `yaml:"advanced_redundancy"`
	AdvancedRedundancyCorrectionFactor float64 `yaml:"advanced_redundancy_correction_factor"`
}

// yamlPattern is the on-disk, declarative representation of a Pattern.
type yamlPattern struct {
	Channels     string `yaml:"channels"`
	BitFrequency int    `yaml:"bit_frequency"`
	ByteSpacing  int    `yaml:"byte_spacing"`
	Offset       int    `yaml:"offset"`

	HashCheck string `yaml:"hash_check"`

	Compression         string `yaml:"compression"`
	CompressionStrength int    `yaml:"compression_strength"`

	AdvancedRedundancy                 string  `yaml:"advanced_redundancy"`
	AdvancedRedundancyCorrectionFactor float64 `yaml:"advanced_redundancy_correction_factor"`

	RepetitiveRedundancy     int    `yaml:"repetitive_redundancy"`
	RepetitiveRedundancyMode string `yaml:"repetitive_redundancy_mode"`

	Header yamlHeaderPattern `yaml:"header"`
}

// LoadPatternYAML reads a declarative pattern configuration from r,
// layering it over DefaultPattern so a config only needs to mention the
// fields it overrides.
func LoadPatternYAML(r io.Reader) (Pattern, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Pattern{}, &IOError{Err: err}
	}

	yp := yamlPatternFromPattern(DefaultPattern())
	if err := yaml.Unmarshal(raw, &yp); err != nil {
		return Pattern{}, &IOError{Err: err}
	}

	return yp.toPattern(), nil
}

func yamlPatternFromPattern(p Pattern) yamlPattern {
	return yamlPattern{
		Channels:                           p.Channels,
		BitFrequency:                       p.BitFrequency,
		ByteSpacing:                        p.ByteSpacing,
		Offset:                             p.Offset,
		HashCheck:                          p.HashCheck,
		Compression:                        p.Compression,
		CompressionStrength:                p.CompressionStrength,
		AdvancedRedundancy:                 p.AdvancedRedundancy,
		AdvancedRedundancyCorrectionFactor: p.AdvancedRedundancyCorrectionFactor,
		RepetitiveRedundancy:               p.RepetitiveRedundancy,
		RepetitiveRedundancyMode:           p.RepetitiveRedundancyMode,
		Header: yamlHeaderPattern{
			Enabled:                            p.Header.Enabled,
			WriteDataSize:                      p.Header.WriteDataSize,
			WritePattern:                       p.Header.WritePattern,
			Position:                           headerPositionToYAML(p.Header.Position),
			CustomX:                            p.Header.CustomX,
			CustomY:                            p.Header.CustomY,
			Channels:                           p.Header.Channels,
			BitFrequency:                       p.Header.BitFrequency,
			ByteSpacing:                        p.Header.ByteSpacing,
			RepetitiveRedundancy:               p.Header.RepetitiveRedundancy,
			AdvancedRedundancy:                 p.Header.AdvancedRedundancy,
			AdvancedRedundancyCorrectionFactor: p.Header.AdvancedRedundancyCorrectionFactor,
		},
	}
}

func (yp yamlPattern) toPattern() Pattern {
	return Pattern{
		Channels:                           yp.Channels,
		BitFrequency:                       yp.BitFrequency,
		ByteSpacing:                        yp.ByteSpacing,
		Offset:                             yp.Offset,
		HashCheck:                          yp.HashCheck,
		Compression:                        yp.Compression,
		CompressionStrength:                yp.CompressionStrength,
		AdvancedRedundancy:                 yp.AdvancedRedundancy,
		AdvancedRedundancyCorrectionFactor: yp.AdvancedRedundancyCorrectionFactor,
		RepetitiveRedundancy:               yp.RepetitiveRedundancy,
		RepetitiveRedundancyMode:           yp.RepetitiveRedundancyMode,
		Header: HeaderPattern{
			Enabled:                            yp.Header.Enabled,
			WriteDataSize:                      yp.Header.WriteDataSize,
			WritePattern:                       yp.Header.WritePattern,
			Position:                           yamlToHeaderPosition(yp.Header.Position),
			CustomX:                            yp.Header.CustomX,
			CustomY:                            yp.Header.CustomY,
			Channels:                           yp.Header.Channels,
			BitFrequency:                       yp.Header.BitFrequency,
			ByteSpacing:                        yp.Header.ByteSpacing,
			RepetitiveRedundancy:               yp.Header.RepetitiveRedundancy,
			AdvancedRedundancy:                 yp.Header.AdvancedRedundancy,
			AdvancedRedundancyCorrectionFactor: yp.Header.AdvancedRedundancyCorrectionFactor,
		},
	}
}

// patternMapKeys and headerMapKeys are the recognized keys PatternFromMap
// accepts at each level; anything else is rejected, mirroring
// IST/pattern.py:Pattern.from_dict handing an unexpected key to the
// dataclass constructor and letting it raise.
var patternMapKeys = map[string]bool{
	"channels":                               true,
	"bit_frequency":                          true,
	"byte_spacing":                           true,
	"offset":                                 true,
	"hash_check":                             true,
	"compression":                            true,
	"compression_strength":                   true,
	"advanced_redundancy":                    true,
	"advanced_redundancy_correction_factor":  true,
	"repetitive_redundancy":                  true,
	"repetitive_redundancy_mode":             true,
	"header":                                 true,
}

var headerMapKeys = map[string]bool{
	"enabled":                                true,
	"write_data_size":                        true,
	"write_pattern":                          true,
	"position":                               true,
	"custom_x":                               true,
	"custom_y":                               true,
	"channels":                               true,
	"bit_frequency":                          true,
	"byte_spacing":                           true,
	"repetitive_redundancy":                  true,
	"advanced_redundancy":                    true,
	"advanced_redundancy_correction_factor":  true,
}

// PatternFromMap builds a Pattern from a loosely-typed map, the Go analog
// of IST/pattern.py:Pattern.from_dict — it rejects any key it doesn't
// recognize rather than silently ignoring it, and coerces the numeric and
// channel-list shapes a decoded JSON/YAML document typically produces.
// Fields absent from m keep DefaultPattern()'s values.
func PatternFromMap(m map[string]any) (Pattern, error) {
	for k := range m {
		if !patternMapKeys[k] {
			return Pattern{}, &InvalidPatternError{Reason: "unknown pattern key \"" + k + "\""}
		}
	}

	p := DefaultPattern()
	var err error

	if v, ok := m["channels"]; ok {
		if p.Channels, err = channelsFromAny(v); err != nil {
			return Pattern{}, err
		}
	}
	if v, ok := m["bit_frequency"]; ok {
		if p.BitFrequency, err = intFromAny("bit_frequency", v); err != nil {
			return Pattern{}, err
		}
	}
	if v, ok := m["byte_spacing"]; ok {
		if p.ByteSpacing, err = intFromAny("byte_spacing", v); err != nil {
			return Pattern{}, err
		}
	}
	if v, ok := m["offset"]; ok {
		if p.Offset, err = intFromAny("offset", v); err != nil {
			return Pattern{}, err
		}
	}
	if v, ok := m["hash_check"]; ok {
		if p.HashCheck, err = stringFromAny("hash_check", v); err != nil {
			return Pattern{}, err
		}
	}
	if v, ok := m["compression"]; ok {
		if p.Compression, err = stringFromAny("compression", v); err != nil {
			return Pattern{}, err
		}
	}
	if v, ok := m["compression_strength"]; ok {
		if p.CompressionStrength, err = intFromAny("compression_strength", v); err != nil {
			return Pattern{}, err
		}
	}
	if v, ok := m["advanced_redundancy"]; ok {
		if p.AdvancedRedundancy, err = stringFromAny("advanced_redundancy", v); err != nil {
			return Pattern{}, err
		}
	}
	if v, ok := m["advanced_redundancy_correction_factor"]; ok {
		if p.AdvancedRedundancyCorrectionFactor, err = floatFromAny("advanced_redundancy_correction_factor", v); err != nil {
			return Pattern{}, err
		}
	}
	if v, ok := m["repetitive_redundancy"]; ok {
		if p.RepetitiveRedundancy, err = intFromAny("repetitive_redundancy", v); err != nil {
			return Pattern{}, err
		}
	}
	if v, ok := m["repetitive_redundancy_mode"]; ok {
		if p.RepetitiveRedundancyMode, err = stringFromAny("repetitive_redundancy_mode", v); err != nil {
			return Pattern{}, err
		}
	}
	if v, ok := m["header"]; ok {
		hm, ok := v.(map[string]any)
		if !ok {
			return Pattern{}, &InvalidPatternError{Reason: "header must be a nested map"}
		}
		if p.Header, err = headerPatternFromMap(p.Header, hm); err != nil {
			return Pattern{}, err
		}
	}

	return p, nil
}

func headerPatternFromMap(base HeaderPattern, m map[string]any) (HeaderPattern, error) {
	for k := range m {
		if !headerMapKeys[k] {
			return HeaderPattern{}, &InvalidPatternError{Reason: "unknown header key \"" + k + "\""}
		}
	}

	hp := base
	var err error

	if v, ok := m["enabled"]; ok {
		if hp.Enabled, err = boolFromAny("header.enabled", v); err != nil {
			return HeaderPattern{}, err
		}
	}
	if v, ok := m["write_data_size"]; ok {
		if hp.WriteDataSize, err = boolFromAny("header.write_data_size", v); err != nil {
			return HeaderPattern{}, err
		}
	}
	if v, ok := m["write_pattern"]; ok {
		if hp.WritePattern, err = boolFromAny("header.write_pattern", v); err != nil {
			return HeaderPattern{}, err
		}
	}
	if v, ok := m["position"]; ok {
		s, err := stringFromAny("header.position", v)
		if err != nil {
			return HeaderPattern{}, err
		}
		hp.Position = yamlToHeaderPosition(s)
	}
	if v, ok := m["custom_x"]; ok {
		if hp.CustomX, err = intFromAny("header.custom_x", v); err != nil {
			return HeaderPattern{}, err
		}
	}
	if v, ok := m["custom_y"]; ok {
		if hp.CustomY, err = intFromAny("header.custom_y", v); err != nil {
			return HeaderPattern{}, err
		}
	}
	if v, ok := m["channels"]; ok {
		if hp.Channels, err = channelsFromAny(v); err != nil {
			return HeaderPattern{}, err
		}
	}
	if v, ok := m["bit_frequency"]; ok {
		if hp.BitFrequency, err = intFromAny("header.bit_frequency", v); err != nil {
			return HeaderPattern{}, err
		}
	}
	if v, ok := m["byte_spacing"]; ok {
		if hp.ByteSpacing, err = intFromAny("header.byte_spacing", v); err != nil {
			return HeaderPattern{}, err
		}
	}
	if v, ok := m["repetitive_redundancy"]; ok {
		if hp.RepetitiveRedundancy, err = intFromAny("header.repetitive_redundancy", v); err != nil {
			return HeaderPattern{}, err
		}
	}
	if v, ok := m["advanced_redundancy"]; ok {
		if hp.AdvancedRedundancy, err = stringFromAny("header.advanced_redundancy", v); err != nil {
			return HeaderPattern{}, err
		}
	}
	if v, ok := m["advanced_redundancy_correction_factor"]; ok {
		if hp.AdvancedRedundancyCorrectionFactor, err = floatFromAny("header.advanced_redundancy_correction_factor", v); err != nil {
			return HeaderPattern{}, err
		}
	}

	return hp, nil
}

// channelsFromAny accepts either a plain channel-selector string ("auto",
// "RGB", ...) or a list of single-letter channel strings (["r", "g", "b"]),
// upper-casing and joining the latter — mirroring IST/pattern.py:from_dict's
// `''.join(pattern_dict["channels"]).upper()` handling of a list value.
func channelsFromAny(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []string:
		return strings.ToUpper(strings.Join(t, "")), nil
	case []any:
		var sb strings.Builder
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return "", &InvalidPatternError{Reason: "channels list must contain only strings"}
			}
			sb.WriteString(s)
		}
		return strings.ToUpper(sb.String()), nil
	default:
		return "", &InvalidPatternError{Reason: "channels must be a string or a list of strings"}
	}
}

func stringFromAny(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", &InvalidPatternError{Reason: field + " must be a string"}
	}
	return s, nil
}

func boolFromAny(field string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, &InvalidPatternError{Reason: field + " must be a bool"}
	}
	return b, nil
}

// intFromAny accepts int, int64 or float64 (the shape a decoded JSON
// document hands back for any bare number), per from_dict's blanket
// `int(value)` coercion for every *_redundancy/*_strength/*_frequency/
// *_spacing/offset key.
func intFromAny(field string, v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		return int(t), nil
	default:
		return 0, &InvalidPatternError{Reason: field + " must be a number"}
	}
}

// floatFromAny mirrors from_dict's blanket `float(value)` coercion for
// *_redundancy_correction_factor keys.
func floatFromAny(field string, v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	default:
		return 0, &InvalidPatternError{Reason: field + " must be a number"}
	}
}

func headerPositionToYAML(pos HeaderPositionKind) string {
	switch pos {
	case HeaderAtEnd:
		return "end"
	case HeaderAtCustom:
		return "custom"
	default:
		return "start"
	}
}

func yamlToHeaderPosition(s string) HeaderPositionKind {
	switch s {
	case "end":
		return HeaderAtEnd
	case "custom":
		return HeaderAtCustom
	default:
		return HeaderAtStart
	}
}
