package mandelbrot

import (
	"runtime"
	"sync"

	"mandelbrot/cplx"
	"mandelbrot/misc"
)

// InSet marks a pixel whose orbit did not escape within the iteration cap.
const InSet = -1

// Fixed viewport of the complex plane
const (
	Left   = -2.5
	Right  = 1.5
	Bottom = -1.5
	Top    = 1.5
)

const escapeRadius = 2.0

type Mandelbrot struct {
	settings Settings
}

func NewMandelbrot(settings Settings) Mandelbrot {
	return Mandelbrot{settings: settings}
}

// Build computes the iteration raster for the given cap and image size, row-major.
func Build(iterations int, width int, height int) ([]int, error) {
	settings := Settings{MaxIterations: iterations, Width: width, Height: height}
	if err := settings.validate(); err != nil {
		return nil, err
	}
	m := NewMandelbrot(settings)
	return m.Build(), nil
}

// BuildParallel is Build spread over workers goroutines. workers <= 0 uses one per CPU.
func BuildParallel(iterations int, width int, height int, workers int) ([]int, error) {
	settings := Settings{MaxIterations: iterations, Width: width, Height: height}
	if err := settings.validate(); err != nil {
		return nil, err
	}
	m := NewMandelbrot(settings)
	return m.BuildParallel(workers), nil
}

func (m *Mandelbrot) Settings() Settings {
	return m.settings
}

func (m *Mandelbrot) Build() []int {
	raster := make([]int, 0, m.settings.Width*m.settings.Height)
	for row := 0; row < m.settings.Height; row++ {
		raster = append(raster, m.Row(row)...)
	}
	return raster
}

func (m *Mandelbrot) BuildParallel(workers int) []int {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > m.settings.Height {
		workers = m.settings.Height
	}

	width := m.settings.Width
	raster := make([]int, width*m.settings.Height)

	rows := make(chan int)
	go func() {
		for row := 0; row < m.settings.Height; row++ {
			rows <- row
		}
		close(rows)
	}()

	// Each row owns raster[row*width : (row+1)*width] so workers never overlap
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for row := range rows {
				m.fillRow(row, raster[row*width:(row+1)*width])
			}
		}()
	}
	wg.Wait()

	return raster
}

func (m *Mandelbrot) Row(row int) []int {
	values := make([]int, m.settings.Width)
	m.fillRow(row, values)
	return values
}

func (m *Mandelbrot) fillRow(row int, values []int) {
	for column := range values {
		values[column] = m.EscapeTime(m.ConvertPixelCoordinateToComplexCoordinate(column, row))
	}
}

// EscapeTime iterates z = z*z + c from zero and returns the iteration at which
// |z| first exceeded the escape radius, or InSet when the cap was reached.
func (m *Mandelbrot) EscapeTime(c cplx.Complex) int {
	z := cplx.New(0, 0)
	iteration := 0

	for z.Magnitude() <= escapeRadius && iteration < m.settings.MaxIterations {
		z = z.Multiply(z).Add(c)
		iteration++
	}

	if iteration == m.settings.MaxIterations {
		return InSet
	}
	return iteration
}

// ConvertPixelCoordinateToComplexCoordinate maps a pixel onto the viewport.
// The fraction divides by width and height, so the right column and top row
// of the viewport are never sampled.
func (m *Mandelbrot) ConvertPixelCoordinateToComplexCoordinate(column int, row int) cplx.Complex {
	x := misc.LerpFloat64(Left, Right, float64(column)/float64(m.settings.Width))
	y := misc.LerpFloat64(Bottom, Top, float64(row)/float64(m.settings.Height))
	return cplx.New(x, y)
}
