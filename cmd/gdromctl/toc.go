package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gdemu/gdrom/internal/disc"
)

var tocArea int

var tocCmd = &cobra.Command{
	Use:                   "toc IMAGE",
	Short:                 "Print the table of contents GET_TOC would serve",
	Args:                  cobra.ExactArgs(1),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		img, err := openImage(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		defer img.Close()

		toc, err := img.GetTOC(tocArea)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		fmt.Printf("first   track=%d adr=%d ctrl=%d\n", toc.First.Num, toc.First.ADR, toc.First.Ctrl)
		fmt.Printf("last    track=%d adr=%d ctrl=%d\n", toc.Last.Num, toc.Last.ADR, toc.Last.Ctrl)
		fmt.Printf("leadout fad=%d\n", toc.LeadoutFAD)
		for i, t := range toc.Entries {
			if t.FAD == disc.InvalidFAD {
				continue
			}
			fmt.Printf("track %3d: adr=%d ctrl=%d fad=%d\n", i+1, t.ADR, t.Ctrl, t.FAD)
		}
	},
}

func init() {
	tocCmd.Flags().IntVar(&tocArea, "area", 0, "TOC area (0 or 1)")
	rootCmd.AddCommand(tocCmd)
}
