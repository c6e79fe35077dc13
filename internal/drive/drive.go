// Package drive implements the emulated GD-ROM drive controller: the
// ATA/SPI command-and-phase state machine and its PIO/DMA streaming
// path.
package drive

import (
	"github.com/sirupsen/logrus"

	"github.com/gdemu/gdrom/internal/disc"
	"github.com/gdemu/gdrom/internal/iobus"
)

// Drive is the emulated GD-ROM drive controller. It aggregates the
// register file, the current phase-state-machine state, the bound disc
// (if any), the hardware-info block, in-flight CD-read progress, and
// the PIO/DMA staging buffers.
type Drive struct {
	bridge iobus.Bridge
	log    *logrus.Entry

	state state

	hwInfo hardwareInfo
	disc   disc.Image

	errorReg     ErrorReg
	featuresReg  FeaturesReg
	intReasonReg IntReasonReg
	sectorNumReg SectorNumReg
	byteCountReg ByteCountReg
	statusReg    StatusReg

	pio pioBuffer
	dma dmaBuffer

	cdRead cdReadProgress
}

// New constructs a Drive with no disc bound, wired to bridge for
// interrupts and DMA copies.
func New(bridge iobus.Bridge) *Drive {
	d := &Drive{
		bridge: bridge,
		log:    logrus.WithField("component", "gdrom"),
		hwInfo: defaultHardwareInfo(),
	}
	d.SetDisc(nil)
	return d
}

// SetDisc replaces the bound disc (destroying the previous one, if
// any) and performs a soft reset of the register file. Passing nil
// unbinds any current disc.
func (d *Drive) SetDisc(img disc.Image) {
	if d.disc != img {
		if d.disc != nil {
			if err := d.disc.Close(); err != nil {
				d.log.WithError(err).Warn("error closing previous disc")
			}
		}
		d.disc = img
		if img != nil {
			meta := img.Meta()
			d.log.WithField("name", meta.Name).Info("disc bound")
		} else {
			d.log.Info("disc unbound")
		}
	}

	d.errorReg.SetFull(0)

	d.statusReg.SetFull(0)
	d.statusReg.SetDRDY(true)
	d.statusReg.SetBusy(false)

	d.sectorNumReg.SetFull(0)
	if d.disc != nil {
		d.sectorNumReg.SetStatus(StatusPause)
		d.sectorNumReg.SetFormat(DiscFormat(d.disc.Format()))
	} else {
		d.sectorNumReg.SetStatus(StatusNoDisc)
	}

	// features/interrupt-reason/byte-count behavior across soft reset
	// is left untouched here.
}

// pioReadWord returns the next 16-bit word from the PIO buffer,
// advancing its cursor, then posts the PIO_READ event.
func (d *Drive) pioReadWord() uint16 {
	v := d.pio.readWord()
	d.dispatch(eventPIORead, 0)
	return v
}

// pioWriteWord appends a 16-bit word to the PIO buffer, advancing its
// cursor, then posts the PIO_WRITE event.
func (d *Drive) pioWriteWord(v uint16) {
	d.pio.writeWord(v)
	d.dispatch(eventPIOWrite, 0)
}
