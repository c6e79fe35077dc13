package drive

import "github.com/gdemu/gdrom/internal/iobus"

// RegOffset identifies one of the drive's memory-mapped registers.
type RegOffset uint8

const (
	RegAltStatusDevControl RegOffset = iota
	RegData
	RegErrorFeatures
	RegIntReason
	RegSectorNum
	RegByteCountLo
	RegByteCountHi
	RegDriveSelect
	RegStatusCommand
)

// ReadRegister reads a 16-bit value from the register at offset.
// Reading RegStatusCommand clears the drive's pending interrupt;
// reading RegAltStatusDevControl returns the same value without
// clearing anything.
func (d *Drive) ReadRegister(offset RegOffset) uint16 {
	switch offset {
	case RegAltStatusDevControl:
		return d.statusReg.Full()

	case RegData:
		return d.pioReadWord()

	case RegErrorFeatures:
		return d.errorReg.Full()

	case RegIntReason:
		return d.intReasonReg.Full()

	case RegSectorNum:
		return d.sectorNumReg.Full()

	case RegByteCountLo:
		return uint16(d.byteCountReg.Lo())

	case RegByteCountHi:
		return uint16(d.byteCountReg.Hi())

	case RegDriveSelect:
		return 0

	case RegStatusCommand:
		v := d.statusReg.Full()
		d.bridge.ClearInterrupt(iobus.LineGDROM)
		return v

	default:
		panicf("drive: read from unknown register offset %d", offset)
		return 0
	}
}

// WriteRegister writes a 16-bit value to the register at offset.
// Writing RegIntReason or RegSectorNum is a protocol error since both
// are read-only from the host's perspective.
func (d *Drive) WriteRegister(offset RegOffset, value uint16) {
	switch offset {
	case RegAltStatusDevControl:
		// device control is unimplemented; writes are accepted and ignored

	case RegData:
		d.pioWriteWord(value)

	case RegErrorFeatures:
		d.featuresReg.SetFull(value)

	case RegIntReason:
		panicf("drive: invalid write to RegIntReason")

	case RegSectorNum:
		panicf("drive: invalid write to RegSectorNum")

	case RegByteCountLo:
		d.byteCountReg.SetLo(uint8(value))

	case RegByteCountHi:
		d.byteCountReg.SetHi(uint8(value))

	case RegDriveSelect:
		// drive select is unimplemented; writes are accepted and ignored

	case RegStatusCommand:
		d.dispatch(eventATACmd, uint8(value))

	default:
		panicf("drive: write to unknown register offset %d", offset)
	}
}
