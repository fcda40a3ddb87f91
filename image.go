package steg

// Mode identifies the channel layout of a carrier pixel array. Only the
// three layouts the core actually places bits into are modeled; any other
// container-level mode (e.g. palette images) is the I/O collaborator's
// problem to normalize away before calling into the core.
type Mode int

const (
	ModeGray Mode = iota // single channel "L"
	ModeRGB              // "R", "G", "B"
	ModeRGBA             // "R", "G", "B", "A"
)

// Channels returns the declared channel order for a mode, matching the
// declared order used throughout the pattern and descriptor encoding.
func (m Mode) Channels() []Channel {
	switch m {
	case ModeGray:
		return []Channel{ChanL}
	case ModeRGB:
		return []Channel{ChanR, ChanG, ChanB}
	case ModeRGBA:
		return []Channel{ChanR, ChanG, ChanB, ChanA}
	default:
		return nil
	}
}

func (m Mode) String() string {
	switch m {
	case ModeGray:
		return "L"
	case ModeRGB:
		return "RGB"
	case ModeRGBA:
		return "RGBA"
	default:
		return "unknown"
	}
}

// Channel is a single bitmask bit over a pixel's channel set, matching the
// canonical descriptor layout: R=1, G=2, B=4, A=8, L=16.
type Channel uint8

const (
	ChanR Channel = 1 << iota
	ChanG
	ChanB
	ChanA
	ChanL
)

// Image is the carrier pixel array handed to and returned by the core.
// Pix is row-major and pixel-contiguous: sample (x, y, channel-index) lives
// at Pix[(y*Width+x)*channelsPerPixel(Mode) + channel-index], where
// channel-index follows the declared order of Mode.Channels(). Samples are
// stored as uint16 to tolerate up to 16-bit channels (spec's tolerance),
// though every test in this module exercises 8-bit depth.
type Image struct {
	Mode   Mode
	Width  int
	Height int
	Pix    []uint16
}

// channelsPerPixel returns the number of channel samples stored per pixel.
func channelsPerPixel(m Mode) int {
	return len(m.Channels())
}

// Clone returns a deep copy of the image. The encoder always clones its
// input before mutating, per the single-owner mutation rule in the
// concurrency design: callers that want to keep the original must not rely
// on Encode doing it for them on error paths, but Encode itself never
// mutates the caller's Image value.
func (img Image) Clone() Image {
	pix := make([]uint16, len(img.Pix))
	copy(pix, img.Pix)
	return Image{Mode: img.Mode, Width: img.Width, Height: img.Height, Pix: pix}
}

// validate ensures the image has a supported mode and a Pix slice of the
// expected length for its declared dimensions.
func (img Image) validate() error {
	switch img.Mode {
	case ModeGray, ModeRGB, ModeRGBA:
	default:
		return &UnsupportedImageError{Mode: img.Mode}
	}
	want := img.Width * img.Height * channelsPerPixel(img.Mode)
	if len(img.Pix) != want {
		return &UnsupportedImageError{Mode: img.Mode}
	}
	return nil
}

// sampleAt returns the channel sample at pixel (x, y) for the channel at
// channelIndex within the image's declared channel order.
func (img Image) sampleAt(x, y, channelIndex int) uint16 {
	n := channelsPerPixel(img.Mode)
	return img.Pix[(y*img.Width+x)*n+channelIndex]
}

// setSampleAt writes the channel sample at pixel (x, y) for the channel at
// channelIndex within the image's declared channel order.
func (img *Image) setSampleAt(x, y, channelIndex int, v uint16) {
	n := channelsPerPixel(img.Mode)
	img.Pix[(y*img.Width+x)*n+channelIndex] = v
}

// channelIndex returns the position of ch within mode's declared channel
// order, or -1 if the image's mode doesn't carry that channel.
func channelIndex(m Mode, ch Channel) int {
	for i, c := range m.Channels() {
		if c == ch {
			return i
		}
	}
	return -1
}
