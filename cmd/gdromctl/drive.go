package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gdemu/gdrom/internal/disc"
	"github.com/gdemu/gdrom/internal/drive"
	"github.com/gdemu/gdrom/internal/iobus"
)

var driveCmd = &cobra.Command{
	Use:                   "drive IMAGE",
	Short:                 "Drive the ATA/SPI state machine against an image",
	Args:                  cobra.ExactArgs(1),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		img, err := openImage(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		bridge := iobus.NewMemoryBridge(16 * 1024 * 1024)
		dr := drive.New(bridge)
		dr.SetDisc(img)

		toc, err := img.GetTOC(0)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		logrus.Info("TEST_UNIT")
		sendPacket(dr, [12]byte{0x00})

		logrus.Info("REQ_STAT offset=0 size=10")
		sendPacket(dr, [12]byte{0x10, 0, 0, 0, 10})
		logrus.Infof("status reply: % x", readReply(dr, 10))

		logrus.Info("GET_TOC area=0 size=408")
		sendPacket(dr, [12]byte{0x14, 0, 0, 1, 0x98})
		logrus.Infof("toc reply: %d bytes, first entry fad bytes % x", 408, readReply(dr, 408)[1:4])

		fad := toc.First.FAD
		packet := [12]byte{0x30, 0x40, byte(fad >> 16), byte(fad >> 8), byte(fad), 0, 0, 0, 0, 0, 1}

		logrus.Infof("CD_READ fad=%d count=1, PIO mode", fad)
		sendPacket(dr, packet)
		pioData := readReply(dr, 2048)
		logrus.Infof("pio sector: %d bytes, first byte %#x", len(pioData), pioData[0])

		logrus.Info("CD_READ same sector, DMA mode")
		dr.WriteRegister(drive.RegErrorFeatures, 1)
		sendPacket(dr, packet)
		dmaBuf := make([]byte, 2048)
		got := 0
		for got < len(dmaBuf) {
			got += dr.ReadDMA(dmaBuf[got:])
		}
		logrus.Infof("dma sector: %d bytes", got)

		logrus.Infof("CopySectors fad=%d count=1 straight to guest memory", fad)
		n := dr.CopySectors(fad, disc.FormatMode1, disc.MaskData, 1, 0)
		logrus.Infof("copied %d bytes to guest offset 0, first byte %#x", n, bridge.Guest[0])

		logrus.Info("SET_MODE offset=18 size=4, then REQ_MODE over the same range")
		sendPacket(dr, [12]byte{0x12, 0, 18, 0, 4})
		dr.WriteRegister(drive.RegData, 0x0201)
		dr.WriteRegister(drive.RegData, 0x0403)
		sendPacket(dr, [12]byte{0x11, 0, 18, 0, 4})
		logrus.Infof("round trip: % x", readReply(dr, 4))
	},
}

func init() {
	rootCmd.AddCommand(driveCmd)
}

// sendPacket arms an SPI packet receipt (ATA PACKET_CMD, opcode 0xa0)
// and writes the 12-byte packet into the data register.
func sendPacket(dr *drive.Drive, packet [12]byte) {
	dr.WriteRegister(drive.RegStatusCommand, 0xa0)
	for i := 0; i < 12; i += 2 {
		word := uint16(packet[i]) | uint16(packet[i+1])<<8
		dr.WriteRegister(drive.RegData, word)
	}
}

// readReply drains n bytes from the data register.
func readReply(dr *drive.Drive, n int) []byte {
	out := make([]byte, 0, n)
	for len(out) < n {
		word := dr.ReadRegister(drive.RegData)
		out = append(out, byte(word), byte(word>>8))
	}
	return out
}
