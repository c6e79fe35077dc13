// Command gdromctl inspects raw disc images and exercises the emulated
// GD-ROM drive's ATA/SPI state machine against them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gdromctl",
	Short: "Inspect and exercise emulated GD-ROM disc images",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
