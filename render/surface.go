package render

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"mandelbrot/palette"
)

var (
	ErrClosed        = errors.New("surface already flushed")
	ErrOutOfBounds   = errors.New("pixel out of bounds")
	ErrUnknownFormat = errors.New("unknown image format")
)

const jpegQuality = 90

// Surface receives one fill per pixel and writes the result out on Flush.
type Surface interface {
	Fill(x int, y int, colorHex string) error
	Flush() error
}

type Format string

const (
	BMP  Format = "bmp"
	JPEG Format = "jpeg"
	PNG  Format = "png"
	TIFF Format = "tiff"
)

func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "bmp":
		return BMP, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "", "png":
		return PNG, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return "", fmt.Errorf("%q: %w", name, ErrUnknownFormat)
}

// ImageSurface paints onto an in-memory gg context and saves it to Path.
type ImageSurface struct {
	closed  bool
	colors  map[string]gg.RGBA
	context *gg.Context
	format  Format
	height  int
	path    string
	width   int
}

func NewImageSurface(width int, height int, path string, format Format) (*ImageSurface, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	return &ImageSurface{
		colors:  make(map[string]gg.RGBA),
		context: gg.NewContext(width, height),
		format:  format,
		height:  height,
		path:    path,
		width:   width,
	}, nil
}

func (s *ImageSurface) Fill(x int, y int, colorHex string) error {
	if s.closed {
		return ErrClosed
	}
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return fmt.Errorf("(%d, %d) on a %dx%d surface: %w", x, y, s.width, s.height, ErrOutOfBounds)
	}

	c, ok := s.colors[colorHex]
	if !ok {
		if err := palette.ValidateColor(colorHex); err != nil {
			return err
		}
		parsed, err := gg.ParseHex(colorHex)
		if err != nil {
			return fmt.Errorf("%s: %w", err, palette.ErrInvalidColor)
		}
		c = parsed
		s.colors[colorHex] = c
	}

	s.context.SetPixel(x, y, c)
	return nil
}

func (s *ImageSurface) Image() image.Image {
	return s.context.Image()
}

// Encode writes the surface in its format to w
func (s *ImageSurface) Encode(w io.Writer) error {
	switch s.format {
	case PNG, "":
		return s.context.EncodePNG(w)
	case JPEG:
		return s.context.EncodeJPEG(w, jpegQuality)
	case BMP:
		return bmp.Encode(w, s.context.Image())
	case TIFF:
		return tiff.Encode(w, s.context.Image(), &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("%q: %w", s.format, ErrUnknownFormat)
}

// Flush saves the surface to its path. The drawing context is released
// whether or not the save succeeds.
func (s *ImageSurface) Flush() error {
	if s.closed {
		return ErrClosed
	}
	err := s.save()
	s.closed = true
	if closeErr := s.context.Close(); err == nil {
		err = closeErr
	}
	return err
}

func (s *ImageSurface) save() error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("unable to create image %s - %w", s.path, err)
	}

	if err := s.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("unable to encode image %s - %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to close image %s - %w", s.path, err)
	}
	return nil
}
