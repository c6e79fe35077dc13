package disc

import (
	"io"

	"github.com/pkg/errors"
)

// pregapSectors is the standard Red Book 2-second lead-in before FAD 0
// of user data (150 sectors at 75 sectors/second).
const pregapSectors = 150

// isoPVDSector is where the ISO9660 primary volume descriptor lives:
// sector 16 of the data track, i.e. FAD 150+16.
const (
	isoPVDSector     = 16
	isoVolumeIDOff   = 40
	isoVolumeIDLen   = 32
	isoIdentifierOff = 1
	isoIdentifier    = "CD001"
)

// BinImage is a single-track raw .bin disc image: everything from FAD
// 150 onward is one Mode 1 data track, with no .cue sheet support.
type BinImage struct {
	r       io.ReadSeekCloser
	sectors uint32 // number of MaxSectorSize sectors in the data track
	meta    Meta
}

// Open wraps r as a BinImage, determining the track length from its
// size and reading the ISO9660 volume label for Meta.
func Open(r io.ReadSeekCloser) (*BinImage, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrap(err, "disc: seek to end")
	}
	if size%MaxSectorSize != 0 {
		return nil, errors.Errorf("disc: image size %d is not a multiple of sector size %d", size, MaxSectorSize)
	}

	img := &BinImage{r: r, sectors: uint32(size / MaxSectorSize)}
	if err := img.readMeta(); err != nil {
		return nil, errors.Wrap(err, "disc: reading volume descriptor")
	}
	return img, nil
}

func (img *BinImage) readMeta() error {
	raw, err := img.readRawSector(pregapSectors + isoPVDSector)
	if err != nil {
		return err
	}
	if string(raw[isoIdentifierOff:isoIdentifierOff+len(isoIdentifier)]) != isoIdentifier {
		// not an ISO9660 image (e.g. a raw audio/data hybrid); leave Meta empty
		return nil
	}
	img.meta = Meta{Name: trimSpacePadded(raw[isoVolumeIDOff : isoVolumeIDOff+isoVolumeIDLen])}
	return nil
}

func trimSpacePadded(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == ' ' {
		end--
	}
	return string(b[:end])
}

func (img *BinImage) readRawSector(fad uint32) ([]byte, error) {
	if fad < pregapSectors || fad-pregapSectors >= img.sectors {
		return nil, errors.Errorf("disc: fad %d out of range", fad)
	}
	index := fad - pregapSectors
	if _, err := img.r.Seek(int64(index)*MaxSectorSize, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "disc: seek")
	}
	raw := make([]byte, MaxSectorSize)
	if _, err := io.ReadFull(img.r, raw); err != nil {
		return nil, errors.Wrap(err, "disc: read")
	}
	return raw, nil
}

// ReadSector implements Image.
func (img *BinImage) ReadSector(fad uint32, format uint8, mask uint8) ([]byte, error) {
	raw, err := img.readRawSector(fad)
	if err != nil {
		return nil, err
	}
	return extractSector(raw, format, mask)
}

// GetTOC implements Image. A BinImage always has exactly one data
// track spanning the whole image.
func (img *BinImage) GetTOC(area int) (TOC, error) {
	var toc TOC
	for i := range toc.Entries {
		toc.Entries[i] = Track{FAD: InvalidFAD}
	}

	track := Track{Num: 1, ADR: 1, Ctrl: 0x4, FAD: pregapSectors}
	toc.Entries[0] = track
	toc.First = track
	toc.Last = track
	toc.LeadoutFAD = pregapSectors + img.sectors
	return toc, nil
}

// GetSession implements Image. A BinImage has exactly one session.
func (img *BinImage) GetSession(index int) (Session, error) {
	if index != 0 {
		return Session{}, ErrNoSession
	}
	return Session{FirstTrack: 1, LeadoutFAD: pregapSectors + img.sectors}, nil
}

// NumSessions implements Image.
func (img *BinImage) NumSessions() int { return 1 }

// GetTrack implements Image.
func (img *BinImage) GetTrack(index int) (Track, error) {
	if index != 0 {
		return Track{}, ErrNoSession
	}
	return Track{Num: 1, ADR: 1, Ctrl: 0x4, FAD: pregapSectors}, nil
}

// Format implements Image. Value 0x4 matches the GD-ROM disc-format
// code the drive's sector-number register expects when media is
// present.
func (img *BinImage) Format() uint8 { return 0x4 }

// Meta implements Image.
func (img *BinImage) Meta() Meta { return img.meta }

// Close implements Image.
func (img *BinImage) Close() error { return img.r.Close() }
