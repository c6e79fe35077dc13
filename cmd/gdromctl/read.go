package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gdemu/gdrom/internal/disc"
)

var (
	readCount  int
	readFormat uint8
	readMask   uint8
)

var readCmd = &cobra.Command{
	Use:                   "read IMAGE FAD",
	Short:                 "Hexdump sectors the way CD_READ would stream them",
	Args:                  cobra.ExactArgs(2),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		img, err := openImage(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		defer img.Close()

		fad, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		for i := 0; i < readCount; i++ {
			cur := uint32(fad) + uint32(i)
			data, err := img.ReadSector(cur, readFormat, readMask)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
			fmt.Printf("sector %d (%d bytes):\n%s\n", cur, len(data), hex.Dump(data))
		}
	},
}

func init() {
	readCmd.Flags().IntVar(&readCount, "count", 1, "number of sectors to read")
	readCmd.Flags().Uint8Var(&readFormat, "format", disc.FormatMode1, "sector format (0=Mode1, 1=Mode2Form1, 2=Mode2Form2, 3=Raw)")
	readCmd.Flags().Uint8Var(&readMask, "mask", disc.MaskData, "sector mask bits (1=header, 2=subheader, 4=data, 8=ecc)")
	rootCmd.AddCommand(readCmd)
}
