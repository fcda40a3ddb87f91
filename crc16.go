package steg

// CRC-16-CCITT (poly 0x1021, init 0xFFFF), table-driven in the same shape
// as the standard library's hash/crc32: a precomputed 256-entry table and a
// running-update checksum function. No third-party CRC-16 implementation
// appears anywhere in the retrieved corpus, so this is written from the
// textbook algorithm rather than imported (see DESIGN.md).

const crc16Poly = 0x1021
const crc16Init = 0xFFFF

var crc16Table [256]uint16

func init() {
	for i := 0; i < 256; i++ {
		crc := uint16(i) << 8
		for b := 0; b < 8; b++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ crc16Poly
			} else {
				crc <<= 1
			}
		}
		crc16Table[i] = crc
	}
}

// crc16CCITT computes the CRC-16-CCITT checksum of data.
func crc16CCITT(data []byte) uint16 {
	crc := uint16(crc16Init)
	for _, b := range data {
		crc = (crc << 8) ^ crc16Table[byte(crc>>8)^b]
	}
	return crc
}
