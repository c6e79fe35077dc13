package drive

import "github.com/gdemu/gdrom/internal/iobus"

// ATA command opcodes.
const (
	ataNOP         uint8 = 0x00
	ataSoftReset   uint8 = 0x08
	ataExecDiag    uint8 = 0x90
	ataPacketCmd   uint8 = 0xa0
	ataIdentifyDev uint8 = 0xa1
	ataSetFeatures uint8 = 0xef
)

// spiPacketSize is the fixed length of an SPI packet carried as ATA
// PIO data following PACKET_CMD.
const spiPacketSize = 12

// ataCmd handles a write to the status/command register.
func (d *Drive) ataCmd(arg uint8) {
	cmd := arg

	d.log.WithField("cmd", cmd).Debug("ata command")

	d.statusReg.SetDRDY(false)
	d.statusReg.SetBusy(true)
	d.statusReg.SetDRQ(false)

	// error bits represent the status of the most recent command; clear
	// before processing a new one.
	d.errorReg.SetFull(0)
	d.statusReg.SetCheck(false)

	readData := false

	switch cmd {
	case ataNOP:
		d.errorReg.SetAbort(true)
		d.statusReg.SetCheck(true)

	case ataSoftReset:
		d.SetDisc(d.disc)

	case ataExecDiag:
		panicf("drive: unsupported ATA command EXEC_DIAG")

	case ataPacketCmd:
		readData = true

	case ataIdentifyDev:
		panicf("drive: unsupported ATA command IDENTIFY_DEV")

	case ataSetFeatures:
		// transfer mode settings are ignored

	default:
		panicf("drive: unsupported ATA command 0x%02x", cmd)
	}

	if readData {
		d.pio.rewind()

		d.intReasonReg.SetCoD(true)
		d.intReasonReg.SetIO(false)
		d.statusReg.SetDRQ(true)
		d.statusReg.SetBusy(false)

		d.state = stateReadATAData
	} else {
		d.ataEnd()
	}
}

// ataEnd completes a non-data ATA command.
func (d *Drive) ataEnd() {
	d.statusReg.SetDRDY(true)
	d.statusReg.SetBusy(false)

	d.bridge.RaiseInterrupt(iobus.LineGDROM)

	d.state = stateReadATACmd
}

// pioWrite handles a write to the data register: once a
// full SPI packet or a full SET_MODE payload has accumulated, it posts
// the next event in the sequence.
func (d *Drive) pioWrite(arg uint8) {
	if d.state == stateReadATAData && d.pio.Head == spiPacketSize {
		d.dispatch(eventSPICmd, 0)
	} else if d.state == stateReadSPIData && d.pio.Head == d.pio.Size {
		d.dispatch(eventSPIData, 0)
	}
}

// pioRead handles a read from the data register: once
// the current PIO payload has been fully drained, it either refills
// for the next batch of CD_READ sectors or completes the command.
func (d *Drive) pioRead(arg uint8) {
	if d.pio.Head == d.pio.Size {
		if d.cdRead.remaining > 0 {
			d.spiCDRead()
		} else {
			d.spiEnd()
		}
	}
}
