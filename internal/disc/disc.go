// Package disc defines the disc-image collaborator the drive reads
// from, and a concrete reader for single-track raw .bin images.
package disc

import "github.com/pkg/errors"

// MaxSectorSize is the largest sector size the drive will ever ask for
// (a full raw CD-ROM/XA sector).
const MaxSectorSize = 2352

// ErrNoSession is returned by GetSession/GetTrack when the index is out of
// range.
var ErrNoSession = errors.New("disc: no such session")

// Track describes one track's table-of-contents entry.
type Track struct {
	Num  int
	ADR  uint8
	Ctrl uint8
	FAD  uint32
}

// TOC is a full table of contents for one area of the disc.
type TOC struct {
	Entries    [99]Track // indexed by track_num-1; invalid entries are zero-valued with FAD == InvalidFAD
	First      Track
	Last       Track
	LeadoutFAD uint32
}

// InvalidFAD marks an unused TOC entry slot.
const InvalidFAD uint32 = 0xffffffff

// Session describes one session's extent.
type Session struct {
	FirstTrack int
	LeadoutFAD uint32
}

// Meta is descriptive information about the loaded image.
type Meta struct {
	Name    string
	Version string
	ID      string
}

// Image is the interface the drive requires of a disc image decoder.
type Image interface {
	// ReadSector reads one sector at fad in the given format, applying
	// mask to select which parts of the raw sector are returned. It
	// returns the bytes written.
	ReadSector(fad uint32, format uint8, mask uint8) ([]byte, error)
	GetTOC(area int) (TOC, error)
	GetSession(index int) (Session, error)
	NumSessions() int
	GetTrack(index int) (Track, error)
	Format() uint8
	Meta() Meta
	Close() error
}
