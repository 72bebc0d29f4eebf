package mandelbrot

import (
	"errors"
	"fmt"
)

var ErrInvalidDimension = errors.New("invalid dimension")

const (
	DefaultMaxIterations = 5000
	DefaultWidth         = 1024
)

type Settings struct {
	Height        int
	MaxIterations int
	Width         int
}

// Verify fills zero values with defaults and rejects negative ones.
func (s *Settings) Verify() error {
	if s.MaxIterations < 0 {
		return fmt.Errorf("max iterations %d: %w", s.MaxIterations, ErrInvalidDimension)
	}
	if s.Width < 0 {
		return fmt.Errorf("width %d: %w", s.Width, ErrInvalidDimension)
	}
	if s.Height < 0 {
		return fmt.Errorf("height %d: %w", s.Height, ErrInvalidDimension)
	}

	if s.MaxIterations == 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	if s.Width == 0 {
		s.Width = DefaultWidth
	}
	// Keep the 3:2 aspect of the viewport
	if s.Height == 0 {
		s.Height = s.Width * 2 / 3
		if s.Height == 0 {
			s.Height = 1
		}
	}

	return nil
}

// validate rejects anything that is not strictly positive
func (s Settings) validate() error {
	if s.MaxIterations <= 0 {
		return fmt.Errorf("iterations %d: %w", s.MaxIterations, ErrInvalidDimension)
	}
	if s.Width <= 0 {
		return fmt.Errorf("width %d: %w", s.Width, ErrInvalidDimension)
	}
	if s.Height <= 0 {
		return fmt.Errorf("height %d: %w", s.Height, ErrInvalidDimension)
	}
	return nil
}

func (s Settings) String() string {
	output := "{Settings "
	output += fmt.Sprintf("MaxIterations: %d ", s.MaxIterations)
	output += fmt.Sprintf("Width: %d ", s.Width)
	output += fmt.Sprintf("Height: %d}", s.Height)
	return output
}
