package disc

import "github.com/pkg/errors"

// Sector formats carried in the CD_READ packet's sector-format bits.
const (
	FormatMode1      uint8 = 0 // 2048 bytes of user data
	FormatMode2Form1 uint8 = 1 // 2048 bytes of user data, 8-byte subheader
	FormatMode2Form2 uint8 = 2 // 2324 bytes of user data, 8-byte subheader
	FormatRaw        uint8 = 3 // full 2352-byte raw sector
)

// Sector-mask bits selecting which parts of the sector CD_READ returns.
// This 4-bit field mirrors the common Mode1/Mode2 sector layout
// (12-byte sync + 4-byte header + optional 8-byte subheader + user
// data + EDC/ECC).
const (
	MaskHeader    uint8 = 0x1
	MaskSubHeader uint8 = 0x2
	MaskData      uint8 = 0x4
	MaskECC       uint8 = 0x8
)

const (
	syncSize      = 12
	headerSize    = 4
	subHeaderSize = 8

	mode1DataSize      = 2048
	mode2Form1DataSize = 2048
	mode2Form2DataSize = 2324
)

// xaSectorSyncPattern is the fixed 12-byte sync pattern at the start of
// every raw CD-ROM/XA sector.
var xaSectorSyncPattern = [syncSize]byte{
	0x00,
	0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff,
	0x00,
}

// extractSector slices a full MaxSectorSize raw sector down to the
// parts requested by format and mask.
func extractSector(raw []byte, format uint8, mask uint8) ([]byte, error) {
	if len(raw) != MaxSectorSize {
		return nil, errors.Errorf("disc: raw sector must be %d bytes, got %d", MaxSectorSize, len(raw))
	}

	var out []byte
	if mask&MaskHeader != 0 {
		out = append(out, raw[:syncSize+headerSize]...)
	}

	switch format {
	case FormatMode1:
		if mask&MaskData != 0 {
			out = append(out, raw[syncSize+headerSize:syncSize+headerSize+mode1DataSize]...)
		}
		if mask&MaskECC != 0 {
			out = append(out, raw[syncSize+headerSize+mode1DataSize:]...)
		}
	case FormatMode2Form1:
		base := syncSize + headerSize
		if mask&MaskSubHeader != 0 {
			out = append(out, raw[base:base+subHeaderSize]...)
		}
		if mask&MaskData != 0 {
			out = append(out, raw[base+subHeaderSize:base+subHeaderSize+mode2Form1DataSize]...)
		}
		if mask&MaskECC != 0 {
			out = append(out, raw[base+subHeaderSize+mode2Form1DataSize:]...)
		}
	case FormatMode2Form2:
		base := syncSize + headerSize
		if mask&MaskSubHeader != 0 {
			out = append(out, raw[base:base+subHeaderSize]...)
		}
		if mask&MaskData != 0 {
			out = append(out, raw[base+subHeaderSize:base+subHeaderSize+mode2Form2DataSize]...)
		}
		if mask&MaskECC != 0 {
			out = append(out, raw[base+subHeaderSize+mode2Form2DataSize:]...)
		}
	case FormatRaw:
		return raw, nil
	default:
		return nil, errors.Errorf("disc: unsupported sector format %d", format)
	}

	return out, nil
}
