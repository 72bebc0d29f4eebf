package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"mandelbrot/mandelbrot"
	"mandelbrot/palette"
)

type fill struct {
	x, y  int
	color string
}

type recordingSurface struct {
	fills   []fill
	flushed int
}

func (s *recordingSurface) Fill(x int, y int, colorHex string) error {
	s.fills = append(s.fills, fill{x, y, colorHex})
	return nil
}

func (s *recordingSurface) Flush() error {
	s.flushed++
	return nil
}

var testPalette = palette.Palette{
	Colors:     []string{"000000", "808080", "ffffff"},
	InSetColor: "ede7f6",
	Thresholds: []int{1, 4, 9},
}

func TestPaint(t *testing.T) {
	raster := []int{
		1, 4, 9,
		mandelbrot.InSet, 2, 50,
	}
	surface := &recordingSurface{}

	if err := Paint(raster, 3, 2, testPalette, surface); err != nil {
		t.Fatal(err)
	}

	want := []fill{
		{0, 0, "000000"}, {1, 0, "808080"}, {2, 0, "ffffff"},
		{0, 1, "ede7f6"}, {1, 1, "000000"}, {2, 1, "ffffff"},
	}
	if len(surface.fills) != len(want) {
		t.Fatalf("got %d fills, want %d", len(surface.fills), len(want))
	}
	for i := range want {
		if surface.fills[i] != want[i] {
			t.Errorf("fill %d = %v, want %v", i, surface.fills[i], want[i])
		}
	}
	if surface.flushed != 1 {
		t.Errorf("flushed %d times, want 1", surface.flushed)
	}
}

func TestPaintRasterSize(t *testing.T) {
	surface := &recordingSurface{}
	err := Paint([]int{1, 2, 3}, 2, 2, testPalette, surface)
	if !errors.Is(err, ErrRasterSize) {
		t.Errorf("Paint error = %v, want ErrRasterSize", err)
	}
	if len(surface.fills) != 0 || surface.flushed != 0 {
		t.Error("surface touched after a size mismatch")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"", PNG},
		{"png", PNG},
		{".PNG", PNG},
		{"jpg", JPEG},
		{"jpeg", JPEG},
		{"bmp", BMP},
		{"tif", TIFF},
		{"tiff", TIFF},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v, want %q", tt.name, got, err, tt.want)
		}
	}

	if _, err := ParseFormat("gif"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(gif) error = %v", err)
	}
	if _, err := NewImageSurface(2, 2, "out.gif", Format("gif")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("NewImageSurface(gif) error = %v", err)
	}
}

func TestImageSurfaceFill(t *testing.T) {
	surface, err := NewImageSurface(2, 2, "", PNG)
	if err != nil {
		t.Fatal(err)
	}

	if err := surface.Fill(1, 0, "ede7f6"); err != nil {
		t.Fatal(err)
	}
	if err := surface.Fill(2, 0, "000000"); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Fill outside = %v, want ErrOutOfBounds", err)
	}
	if err := surface.Fill(0, 0, "#00ff00"); !errors.Is(err, palette.ErrInvalidColor) {
		t.Errorf("Fill with bad color = %v, want ErrInvalidColor", err)
	}

	got := color.RGBAModel.Convert(surface.Image().At(1, 0)).(color.RGBA)
	if want := (color.RGBA{R: 0xed, G: 0xe7, B: 0xf6, A: 0xff}); got != want {
		t.Errorf("pixel = %v, want %v", got, want)
	}
}

func decodeAt(t *testing.T, img image.Image, x, y int) color.RGBA {
	t.Helper()
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestImageSurfaceFormats(t *testing.T) {
	raster := []int{1, mandelbrot.InSet, 9, 4}

	tests := []struct {
		format Format
		decode func(*bytes.Reader) (image.Image, error)
	}{
		{PNG, func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) }},
		{BMP, func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) }},
		{TIFF, func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) }},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "mandelbrot."+string(tt.format))
			surface, err := NewImageSurface(2, 2, path, tt.format)
			if err != nil {
				t.Fatal(err)
			}
			if err := Paint(raster, 2, 2, testPalette, surface); err != nil {
				t.Fatal(err)
			}

			contents, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			img, err := tt.decode(bytes.NewReader(contents))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}

			if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
				t.Fatalf("bounds = %v", b)
			}
			if got := decodeAt(t, img, 0, 0); got != (color.RGBA{0, 0, 0, 0xff}) {
				t.Errorf("(0,0) = %v", got)
			}
			if got := decodeAt(t, img, 1, 0); got != (color.RGBA{0xed, 0xe7, 0xf6, 0xff}) {
				t.Errorf("(1,0) = %v", got)
			}
			if got := decodeAt(t, img, 0, 1); got != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
				t.Errorf("(0,1) = %v", got)
			}
			if got := decodeAt(t, img, 1, 1); got != (color.RGBA{0x80, 0x80, 0x80, 0xff}) {
				t.Errorf("(1,1) = %v", got)
			}
		})
	}
}

func TestImageSurfaceJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mandelbrot.jpeg")
	surface, err := NewImageSurface(4, 4, path, JPEG)
	if err != nil {
		t.Fatal(err)
	}
	raster := make([]int, 16)
	if err := Paint(raster, 4, 4, testPalette, surface); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("empty jpeg written")
	}
}

func TestImageSurfaceFlushBadPath(t *testing.T) {
	surface, err := NewImageSurface(1, 1, filepath.Join(t.TempDir(), "missing", "out.png"), PNG)
	if err != nil {
		t.Fatal(err)
	}
	if err := surface.Flush(); err == nil {
		t.Error("Flush into a missing directory should fail")
	}
	// The context is released even though nothing was written
	if err := surface.Fill(0, 0, "000000"); !errors.Is(err, ErrClosed) {
		t.Errorf("Fill after a failed Flush = %v, want %v", err, ErrClosed)
	}
	if err := surface.Flush(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Flush = %v, want %v", err, ErrClosed)
	}
}
