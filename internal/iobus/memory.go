package iobus

import "github.com/sirupsen/logrus"

// MemoryBridge is a Bridge backed by a flat guest-memory buffer and a
// pending-interrupt flag, suitable for tests and the CLI demo. It
// mirrors the busSetBusy/busSetDone/interrupt-line contract in
// SMerrony-mvemg/bus.go, adapted to a single interrupt line and a DMA
// memcpy target instead of a PIO bus.
type MemoryBridge struct {
	Guest   []byte
	pending map[Line]bool
	log     *logrus.Entry
}

// NewMemoryBridge returns a bridge over a guestSize-byte memory buffer.
func NewMemoryBridge(guestSize int) *MemoryBridge {
	return &MemoryBridge{
		Guest:   make([]byte, guestSize),
		pending: make(map[Line]bool),
		log:     logrus.WithField("component", "iobus"),
	}
}

// RaiseInterrupt implements Bridge.
func (b *MemoryBridge) RaiseInterrupt(line Line) {
	b.pending[line] = true
	b.log.WithField("line", line).Debug("interrupt raised")
}

// ClearInterrupt implements Bridge.
func (b *MemoryBridge) ClearInterrupt(line Line) {
	b.pending[line] = false
	b.log.WithField("line", line).Debug("interrupt cleared")
}

// Pending reports whether line has an unacknowledged interrupt.
func (b *MemoryBridge) Pending(line Line) bool {
	return b.pending[line]
}

// CopyToGuest implements Bridge.
func (b *MemoryBridge) CopyToGuest(dst uint32, src []byte) int {
	n := copy(b.Guest[dst:], src)
	b.log.WithFields(logrus.Fields{"dst": dst, "n": n}).Debug("copied to guest memory")
	return n
}
