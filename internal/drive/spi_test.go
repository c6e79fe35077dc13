package drive

import (
	"testing"

	"github.com/gdemu/gdrom/internal/disc"
)

func writePacket(d *Drive, packet [spiPacketSize]byte) {
	for i := 0; i < spiPacketSize; i += 2 {
		word := uint16(packet[i]) | uint16(packet[i+1])<<8
		d.WriteRegister(RegData, word)
	}
}

func readBytes(d *Drive, n int) []byte {
	out := make([]byte, 0, n)
	for len(out) < n {
		word := d.ReadRegister(RegData)
		out = append(out, byte(word), byte(word>>8))
	}
	return out[:n]
}

func armPacket(d *Drive, packet [spiPacketSize]byte) {
	d.WriteRegister(RegStatusCommand, uint16(ataPacketCmd))
	writePacket(d, packet)
}

func TestSpiTestUnitCompletesImmediately(t *testing.T) {
	d, bridge := newTestDrive()
	d.SetDisc(newFakeDisc(4))

	armPacket(d, [spiPacketSize]byte{spiTestUnit})

	if d.state != stateReadATACmd {
		t.Fatalf("state = %v, want READ_ATA_CMD", d.state)
	}
	if !bridge.pending {
		t.Fatal("interrupt not raised after TEST_UNIT")
	}
	if d.statusReg.Busy() || d.statusReg.DRQ() {
		t.Fatalf("status = %#x, want BSY and DRQ both clear", d.statusReg.Full())
	}
}

func TestSpiReqStatRoundTrip(t *testing.T) {
	d, _ := newTestDrive()
	d.SetDisc(newFakeDisc(4))

	armPacket(d, [spiPacketSize]byte{spiReqStat, 0, 0, 0, 10})

	if d.state != stateWriteSPIData || !d.statusReg.DRQ() {
		t.Fatalf("state = %v, DRQ = %v, want WRITE_SPI_DATA with DRQ set", d.state, d.statusReg.DRQ())
	}

	reply := readBytes(d, 10)
	if DriveStatus(reply[0]) != StatusPause {
		t.Fatalf("reply status = %#x, want StatusPause", reply[0])
	}
	if d.state != stateReadATACmd {
		t.Fatalf("state after full read = %v, want READ_ATA_CMD", d.state)
	}
}

func TestSpiGetTocLeavesUnusedEntriesInvalid(t *testing.T) {
	d, _ := newTestDrive()
	d.SetDisc(newFakeDisc(4))

	tocLen := uint16(tocReplySize)
	armPacket(d, [spiPacketSize]byte{spiGetTOC, 0, 0, byte(tocLen >> 8), byte(tocLen)})

	reply := readBytes(d, tocReplySize)

	if reply[0] != 0x4<<4|0x1 {
		t.Fatalf("entries[0] ctrl/adr byte = %#x, want 0x41", reply[0])
	}
	gotFAD := uint32(reply[1])<<16 | uint32(reply[2])<<8 | uint32(reply[3])
	if gotFAD != fakeDiscFirstFAD {
		t.Fatalf("entries[0] fad = %d, want %d", gotFAD, fakeDiscFirstFAD)
	}

	unusedOff := 4 * 4
	for i := unusedOff; i < unusedOff+4; i++ {
		if reply[i] != 0xff {
			t.Fatalf("unused toc entry byte %d = %#x, want 0xff", i, reply[i])
		}
	}
}

func TestSpiCdReadPioDeliversAllSectors(t *testing.T) {
	d, bridge := newTestDrive()
	d.SetDisc(newFakeDisc(4))

	const numSectors = 2
	packet := [spiPacketSize]byte{spiCDRead, 0x40, 0, 0, fakeDiscFirstFAD, 0, 0, 0, 0, 0, numSectors}
	armPacket(d, packet)

	wantSize := numSectors * 2048
	if int(d.byteCountReg.Full()) != wantSize {
		t.Fatalf("byte count = %d, want %d", d.byteCountReg.Full(), wantSize)
	}

	reply := readBytes(d, wantSize)
	if len(reply) != wantSize {
		t.Fatalf("got %d bytes, want %d", len(reply), wantSize)
	}
	if d.state != stateReadATACmd {
		t.Fatalf("state after full read = %v, want READ_ATA_CMD", d.state)
	}
	if !bridge.pending {
		t.Fatal("interrupt not raised on CD_READ completion")
	}
}

func TestSpiCdReadDmaDrains(t *testing.T) {
	d, bridge := newTestDrive()
	d.SetDisc(newFakeDisc(4))

	d.WriteRegister(RegErrorFeatures, uint16(featDMA))

	const numSectors = 2
	packet := [spiPacketSize]byte{spiCDRead, 0x40, 0, 0, fakeDiscFirstFAD, 0, 0, 0, 0, 0, numSectors}
	armPacket(d, packet)

	if d.state != stateWriteDMAData {
		t.Fatalf("state = %v, want WRITE_DMA_DATA", d.state)
	}

	wantSize := numSectors * 2048
	got := 0
	buf := make([]byte, 512)
	for got < wantSize {
		got += d.ReadDMA(buf)
	}

	if got != wantSize {
		t.Fatalf("drained %d bytes, want %d", got, wantSize)
	}
	if d.state != stateReadATACmd {
		t.Fatalf("state after full drain = %v, want READ_ATA_CMD", d.state)
	}
	if !bridge.pending {
		t.Fatal("interrupt not raised on DMA completion")
	}
}

func TestSpiCdReadDmaDoesNotEndBeforeLastBuffer(t *testing.T) {
	d, bridge := newTestDrive()
	d.SetDisc(newFakeDisc(100))

	d.WriteRegister(RegErrorFeatures, uint16(featDMA))

	maxSectors := bufferSize / disc.MaxSectorSize
	numSectors := maxSectors + 3
	packet := [spiPacketSize]byte{
		spiCDRead, 0x40, 0, 0, fakeDiscFirstFAD,
		0, 0, 0, byte(numSectors >> 16), byte(numSectors >> 8), byte(numSectors),
	}
	armPacket(d, packet)

	firstBufferSize := maxSectors * 2048
	got := 0
	buf := make([]byte, 512)
	for got < firstBufferSize {
		got += d.ReadDMA(buf)
	}

	if d.state != stateWriteDMAData {
		t.Fatalf("state after first buffer drained = %v, want WRITE_DMA_DATA", d.state)
	}
	if bridge.pending {
		t.Fatal("interrupt raised before the whole CD_READ completed")
	}
	if d.cdRead.remaining != 3 {
		t.Fatalf("remaining = %d, want 3", d.cdRead.remaining)
	}

	wantTotal := numSectors * 2048
	for got < wantTotal {
		got += d.ReadDMA(buf)
	}

	if d.state != stateReadATACmd {
		t.Fatalf("state after full drain = %v, want READ_ATA_CMD", d.state)
	}
	if !bridge.pending {
		t.Fatal("interrupt not raised once the whole CD_READ completed")
	}
}

func TestSpiSetModeThenReqModeRoundTrip(t *testing.T) {
	d, _ := newTestDrive()
	d.SetDisc(newFakeDisc(4))

	const offset = 18
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	armPacket(d, [spiPacketSize]byte{spiSetMode, 0, offset, 0, byte(len(payload))})
	if d.state != stateReadSPIData || !d.statusReg.DRQ() {
		t.Fatalf("state = %v, DRQ = %v, want READ_SPI_DATA with DRQ set", d.state, d.statusReg.DRQ())
	}
	for i := 0; i < len(payload); i += 2 {
		word := uint16(payload[i]) | uint16(payload[i+1])<<8
		d.WriteRegister(RegData, word)
	}
	if d.state != stateReadATACmd {
		t.Fatalf("state after SET_MODE payload = %v, want READ_ATA_CMD", d.state)
	}

	armPacket(d, [spiPacketSize]byte{spiReqMode, 0, offset, 0, byte(len(payload))})
	got := readBytes(d, len(payload))
	for i, b := range payload {
		if got[i] != b {
			t.Fatalf("hwInfo[%d] = %#x after round trip, want %#x", offset+i, got[i], b)
		}
	}
}

func TestSpiReqSecuReturnsStub(t *testing.T) {
	d, _ := newTestDrive()
	d.SetDisc(newFakeDisc(4))

	armPacket(d, [spiPacketSize]byte{spiReqSecu})
	got := readBytes(d, len(securityReplyStub))
	if len(got) != len(securityReplyStub) {
		t.Fatalf("got %d bytes, want %d", len(got), len(securityReplyStub))
	}
}

func TestSpiUnknownOpcodePanics(t *testing.T) {
	d, _ := newTestDrive()
	d.SetDisc(newFakeDisc(4))

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unknown SPI opcode")
		}
	}()
	armPacket(d, [spiPacketSize]byte{0xfe})
}
