package main

import (
	"os"

	"github.com/pkg/errors"

	"github.com/gdemu/gdrom/internal/disc"
)

// openImage opens path as a single-track raw .bin image.
func openImage(path string) (*disc.BinImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "gdromctl: open image")
	}
	img, err := disc.Open(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return img, nil
}
