package drive

import (
	"github.com/gdemu/gdrom/internal/disc"
	"github.com/gdemu/gdrom/internal/iobus"
)

// SPI packet opcodes, carried as byte[0] of the 12-byte packet.
const (
	spiTestUnit uint8 = 0x00
	spiReqStat  uint8 = 0x10
	spiReqMode  uint8 = 0x11
	spiSetMode  uint8 = 0x12
	spiReqError uint8 = 0x13
	spiGetTOC   uint8 = 0x14
	spiReqSes   uint8 = 0x15
	spiCDOpen   uint8 = 0x16
	spiCDPlay   uint8 = 0x20
	spiCDSeek   uint8 = 0x21
	spiCDScan   uint8 = 0x22
	spiCDRead   uint8 = 0x30
	spiCDRead2  uint8 = 0x31
	spiGetSCD   uint8 = 0x40
	spiChkSecu  uint8 = 0x70
	spiReqSecu  uint8 = 0x71
)

// CD_SEEK parameter-type nibble values (byte[1] & 0xf).
const (
	seekFAD   uint8 = 0x0
	seekMSF   uint8 = 0x1
	seekPause uint8 = 0x2
	seekStop  uint8 = 0x3
)

// cdReadProgress tracks an in-flight CD_READ's remaining work, refilled
// one buffer's worth of sectors at a time.
type cdReadProgress struct {
	dma         bool
	format      uint8
	mask        uint8
	firstSector uint32
	remaining   uint32
}

// spiCmd decodes and dispatches a 12-byte SPI packet.
func (d *Drive) spiCmd(arg uint8) {
	data := d.pio.bytes[:spiPacketSize]
	cmd := data[0]

	d.log.WithField("cmd", cmd).Debug("spi command")

	d.statusReg.SetDRQ(false)
	d.statusReg.SetBusy(true)

	switch cmd {
	case spiTestUnit:
		d.spiEnd()

	case spiReqStat:
		offset := int(data[2])
		size := int(data[4])
		reply := d.buildStatusReply()
		d.spiReply(reply[offset : offset+size])

	case spiReqMode:
		offset := int(data[2])
		size := int(data[4])
		d.spiReply(d.hwInfo[offset : offset+size])

	case spiReqError:
		size := int(data[4])
		reply := buildErrorReply()
		d.spiReply(reply[:size])

	case spiGetTOC:
		area := int(data[1] & 0x1)
		size := int(data[3])<<8 | int(data[4])
		reply := d.buildTOCReply(area)
		d.spiReply(reply[:size])

	case spiReqSes:
		session := int(data[2])
		reply := d.buildSessionReply(session)
		d.spiReply(reply)

	case spiGetSCD:
		format := data[1] & 0xf
		size := int(data[3])<<8 | int(data[4])
		reply := buildSubcodeReply(format)
		d.spiReply(reply[:size])

	case spiCDRead:
		msf := data[1]&0x1 != 0
		d.cdRead.dma = d.featuresReg.DMA()
		d.cdRead.format = (data[1] & 0xe) >> 1
		d.cdRead.mask = (data[1] >> 4) & 0xff
		if msf {
			d.cdRead.firstSector = fadFromMSF(data[2], data[3], data[4])
		} else {
			d.cdRead.firstSector = fadFromBytes(data[2], data[3], data[4])
		}
		d.cdRead.remaining = uint32(data[8])<<16 | uint32(data[9])<<8 | uint32(data[10])

		d.spiCDRead()

	case spiCDRead2:
		panicf("drive: unsupported SPI command CD_READ2")

	case spiSetMode:
		offset := int(data[2])
		size := int(data[4])
		d.spiReceive(offset, size)

	case spiCDOpen:
		panicf("drive: unsupported SPI command CD_OPEN")

	case spiCDPlay:
		d.log.Warn("ignoring CD_PLAY")
		d.sectorNumReg.SetStatus(StatusPause)
		d.spiEnd()

	case spiCDSeek:
		paramType := data[1] & 0xf
		d.log.Warn("ignoring CD_SEEK")
		switch paramType {
		case seekFAD, seekMSF, seekPause:
			d.sectorNumReg.SetStatus(StatusPause)
		case seekStop:
			d.sectorNumReg.SetStatus(StatusStandby)
		}
		d.spiEnd()

	case spiCDScan:
		d.log.Warn("ignoring CD_SCAN")
		d.sectorNumReg.SetStatus(StatusPause)
		d.spiEnd()

	// spiChkSecu and spiReqSecu are part of an undocumented security
	// check that has yet to be fully reverse engineered; it has no
	// observable side effects beyond a canned reply.
	case spiChkSecu:
		d.spiEnd()

	case spiReqSecu:
		d.spiReply(securityReplyStub[:])

	default:
		panicf("drive: unsupported SPI command 0x%02x", cmd)
	}
}

// spiData handles completion of a host-to-device PIO transfer; the
// only command that uses it is SET_MODE.
func (d *Drive) spiData(arg uint8) {
	offset := d.pio.Offset
	size := d.pio.Size
	copy(d.hwInfo[offset:offset+size], d.pio.bytes[:size])
	d.spiEnd()
}

// spiEnd completes an SPI command, returning to the idle ATA state.
func (d *Drive) spiEnd() {
	d.intReasonReg.SetIO(true)
	d.intReasonReg.SetCoD(true)
	d.statusReg.SetDRDY(true)
	d.statusReg.SetBusy(false)
	d.statusReg.SetDRQ(false)

	d.bridge.RaiseInterrupt(iobus.LineGDROM)

	d.state = stateReadATACmd
}

// spiReply arms a device-to-host PIO transfer carrying data.
func (d *Drive) spiReply(data []byte) {
	d.cdRead.remaining = 0

	d.pio.load(data)
	d.byteCountReg.SetFull(uint16(d.pio.Size))
	d.intReasonReg.SetIO(true)
	d.intReasonReg.SetCoD(false)
	d.statusReg.SetDRQ(true)
	d.statusReg.SetBusy(false)

	d.bridge.RaiseInterrupt(iobus.LineGDROM)

	d.state = stateWriteSPIData
}

// spiReceive arms a host-to-device PIO transfer, used only by SET_MODE.
func (d *Drive) spiReceive(offset, size int) {
	d.cdRead.remaining = 0

	d.pio.Head = 0
	d.pio.Size = size
	d.pio.Offset = offset

	d.byteCountReg.SetFull(uint16(size))
	d.intReasonReg.SetIO(true)
	d.intReasonReg.SetCoD(false)
	d.statusReg.SetDRQ(true)
	d.statusReg.SetBusy(false)

	d.bridge.RaiseInterrupt(iobus.LineGDROM)

	d.state = stateReadSPIData
}

// spiCDRead refills the PIO or DMA buffer with as many sectors as fit,
// advancing cdRead progress. Called both when a CD_READ
// packet first arrives and whenever the active buffer is exhausted.
func (d *Drive) spiCDRead() {
	maxSectors := bufferSize / disc.MaxSectorSize
	numSectors := int(d.cdRead.remaining)
	if numSectors > maxSectors {
		numSectors = maxSectors
	}

	if d.cdRead.dma {
		size := d.readSectors(d.cdRead.firstSector, d.cdRead.format, d.cdRead.mask, numSectors, d.dma.bytes[:])
		d.dma.Size = size
		d.dma.Head = 0

		d.cdRead.firstSector += uint32(numSectors)
		d.cdRead.remaining -= uint32(numSectors)

		// state/registers won't be updated again until the DMA transfer
		// completes.
		d.state = stateWriteDMAData
		return
	}

	size := d.readSectors(d.cdRead.firstSector, d.cdRead.format, d.cdRead.mask, numSectors, d.pio.bytes[:])
	d.pio.Size = size
	d.pio.Head = 0

	d.cdRead.firstSector += uint32(numSectors)
	d.cdRead.remaining -= uint32(numSectors)

	d.byteCountReg.SetFull(uint16(d.pio.Size))
	d.intReasonReg.SetIO(true)
	d.intReasonReg.SetCoD(false)
	d.statusReg.SetDRQ(true)
	d.statusReg.SetBusy(false)

	d.bridge.RaiseInterrupt(iobus.LineGDROM)

	d.state = stateWriteSPIData
}

// readSectors reads numSectors sectors starting at fad into dst in the
// given format/mask, returning the number of bytes written.
func (d *Drive) readSectors(fad uint32, format, mask uint8, numSectors int, dst []byte) int {
	if d.disc == nil {
		d.log.Warn("readSectors: no disc")
		return 0
	}

	read := 0
	for i := 0; i < numSectors; i++ {
		data, err := d.disc.ReadSector(fad+uint32(i), format, mask)
		if err != nil {
			panicf("drive: read sector %d: %v", fad+uint32(i), err)
		}
		if read+len(data) > len(dst) {
			panicf("drive: sector read overruns destination buffer")
		}
		copy(dst[read:], data)
		read += len(data)
	}
	return read
}

// CopySectors reads numSectors sectors starting at fad in the given
// format/mask and copies them straight into guest memory at dst via
// the bridge, bypassing the register/PIO/DMA protocol entirely. It
// returns the number of bytes copied.
func (d *Drive) CopySectors(fad uint32, format, mask uint8, numSectors int, dst uint32) int {
	if d.disc == nil {
		d.log.Warn("CopySectors: no disc")
		return 0
	}

	var tmp [disc.MaxSectorSize]byte
	read := 0
	for i := 0; i < numSectors; i++ {
		n := d.readSectors(fad+uint32(i), format, mask, 1, tmp[:])
		read += d.bridge.CopyToGuest(dst+uint32(read), tmp[:n])
	}
	return read
}

// ReadDMA drains up to len(dst) bytes of the active CD_READ DMA
// transfer into dst, refilling the buffer as needed and completing the
// command only once every requested sector has been delivered. It is
// the host-facing entry point a DMA controller collaborator calls.
func (d *Drive) ReadDMA(dst []byte) int {
	if d.dma.Head >= d.dma.Size {
		d.spiCDRead()
	}

	n := d.dma.drain(dst)
	if n <= 0 {
		panicf("drive: DMA read produced no data")
	}

	if d.dma.Head >= d.dma.Size && d.cdRead.remaining == 0 {
		d.spiEnd()
	}

	return n
}

// buildStatusReply builds the REQ_STAT reply.
func (d *Drive) buildStatusReply() []byte {
	reply := make([]byte, 10)
	reply[0] = uint8(d.sectorNumReg.Status())
	reply[1] = 0 // repeat
	reply[2] = uint8(d.sectorNumReg.Format())
	reply[3] = 0x4 // control
	reply[4] = 0   // address
	reply[5] = 2   // scd_track
	reply[6] = 0   // scd_index
	putFAD24BE(reply[7:10], 0)
	return reply
}

// buildErrorReply builds the REQ_ERROR reply: sense key/code reporting
// is unimplemented.
func buildErrorReply() []byte {
	reply := make([]byte, 10)
	reply[0] = 0xf0
	return reply
}

// tocReplySize is the fixed GET_TOC reply size: 99 track entries plus
// first/last/leadout, 4 bytes apiece.
const tocReplySize = (99 + 3) * 4

// buildTOCReply builds the GET_TOC reply for the selected area.
func (d *Drive) buildTOCReply(area int) []byte {
	if d.disc == nil {
		panicf("drive: GET_TOC with no disc bound")
	}

	toc, err := d.disc.GetTOC(area)
	if err != nil {
		panicf("drive: GET_TOC: %v", err)
	}

	reply := make([]byte, tocReplySize)
	for i := range reply {
		reply[i] = 0xff
	}

	for i, t := range toc.Entries {
		if t.FAD == disc.InvalidFAD {
			continue
		}
		off := i * 4
		reply[off] = t.Ctrl<<4 | t.ADR&0xf
		putFAD24BE(reply[off+1:off+4], t.FAD)
	}

	firstOff := 99 * 4
	reply[firstOff] = toc.First.Ctrl<<4 | toc.First.ADR&0xf
	reply[firstOff+1] = byte(toc.First.Num)

	lastOff := firstOff + 4
	reply[lastOff] = toc.Last.Ctrl<<4 | toc.Last.ADR&0xf
	reply[lastOff+1] = byte(toc.Last.Num)

	leadoutOff := lastOff + 4
	putFAD24BE(reply[leadoutOff+1:leadoutOff+4], toc.LeadoutFAD)

	return reply
}

// buildSessionReply builds the REQ_SES reply for sessionNum. sessionNum
// 0 asks for the session count and the lead-out of the final session;
// otherwise it asks for the first track of the given 1-based session.
func (d *Drive) buildSessionReply(sessionNum int) []byte {
	if d.disc == nil {
		panicf("drive: REQ_SES with no disc bound")
	}

	reply := make([]byte, 5)
	reply[0] = uint8(d.sectorNumReg.Status())

	if sessionNum == 0 {
		n := d.disc.NumSessions()
		last, err := d.disc.GetSession(n - 1)
		if err != nil {
			panicf("drive: REQ_SES: %v", err)
		}
		reply[1] = byte(n)
		putFAD24BE(reply[2:5], last.LeadoutFAD)
		return reply
	}

	sess, err := d.disc.GetSession(sessionNum - 1)
	if err != nil {
		panicf("drive: REQ_SES: %v", err)
	}
	track, err := d.disc.GetTrack(sess.FirstTrack - 1)
	if err != nil {
		panicf("drive: REQ_SES: %v", err)
	}
	reply[1] = byte(track.Num)
	putFAD24BE(reply[2:5], track.FAD)
	return reply
}

// audioNoStatus marks the GET_SCD reply as carrying no audio play
// status.
const audioNoStatus uint8 = 0x15

// scdReplySize is a generous stub size for the GET_SCD reply; the
// subcode reader itself is unimplemented.
const scdReplySize = 16

// buildSubcodeReply builds the stubbed GET_SCD reply.
func buildSubcodeReply(format uint8) []byte {
	reply := make([]byte, scdReplySize)
	reply[1] = audioNoStatus
	switch format {
	case 0:
		reply[2] = 0x00
		reply[3] = 0x64
	case 1:
		reply[2] = 0x00
		reply[3] = 0x0e
	}
	return reply
}
