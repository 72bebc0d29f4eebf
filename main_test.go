package main

import (
	"context"
	"errors"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"mandelbrot/mandelbrot"
	"mandelbrot/render"
)

func TestRenderOptionsResolve(t *testing.T) {
	tests := []struct {
		name    string
		opts    renderOptions
		want    render.Format
		wantErr error
	}{
		{
			name: "extension picks the format",
			opts: renderOptions{mandel: mandelbrot.Settings{MaxIterations: 10, Width: 9}, output: "out.tif", workers: 2},
			want: render.TIFF,
		},
		{
			name: "flag overrides the extension",
			opts: renderOptions{formatRaw: "bmp", mandel: mandelbrot.Settings{MaxIterations: 10, Width: 9}, output: "out.png", workers: 2},
			want: render.BMP,
		},
		{
			name:    "zero width",
			opts:    renderOptions{mandel: mandelbrot.Settings{MaxIterations: 10}, output: "out.png"},
			wantErr: mandelbrot.ErrInvalidDimension,
		},
		{
			name:    "negative workers",
			opts:    renderOptions{mandel: mandelbrot.Settings{MaxIterations: 10, Width: 9}, output: "out.png", workers: -1},
			wantErr: mandelbrot.ErrInvalidDimension,
		},
		{
			name:    "unknown extension",
			opts:    renderOptions{mandel: mandelbrot.Settings{MaxIterations: 10, Width: 9}, output: "out.gif", workers: 1},
			wantErr: render.ErrUnknownFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.palette.Steps = 10
			err := tt.opts.resolve()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("resolve() = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if tt.opts.format != tt.want {
				t.Errorf("format = %s, want %s", tt.opts.format, tt.want)
			}
			if tt.opts.mandel.Height != 6 {
				t.Errorf("height = %d, want 6", tt.opts.mandel.Height)
			}
		})
	}
}

func TestRenderCommand(t *testing.T) {
	output := filepath.Join(t.TempDir(), "small.png")

	cmd := mainCmd()
	cmd.SetArgs([]string{"render", "--iterations", "80", "--width", "30", "--steps", "16", "--workers", "3", "--output", output})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	file, err := os.Open(output)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 20 {
		t.Errorf("image is %dx%d, want 30x20", b.Dx(), b.Dy())
	}
}

func TestRenderCommandRejectsBadColor(t *testing.T) {
	cmd := mainCmd()
	cmd.SetArgs([]string{"render", "--width", "6", "--start-color", "zzzzzz", "--output", filepath.Join(t.TempDir(), "x.png")})
	cmd.SetErr(io.Discard)
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("render with an invalid color succeeded")
	}
}
