package render

import (
	"errors"
	"fmt"

	"mandelbrot/palette"
)

var ErrRasterSize = errors.New("raster does not match image size")

// Paint fills every pixel of the surface with its palette color, row by row,
// then flushes the surface.
func Paint(raster []int, width int, height int, p palette.Palette, surface Surface) error {
	if len(raster) != width*height {
		return fmt.Errorf("%d values for %dx%d: %w", len(raster), width, height, ErrRasterSize)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if err := surface.Fill(x, y, p.Color(raster[y*width+x])); err != nil {
				return err
			}
		}
	}

	return surface.Flush()
}
