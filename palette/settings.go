package palette

import (
	"fmt"

	"mandelbrot/mandelbrot"
)

const (
	DefaultStartColor = "512da8"
	DefaultEndColor   = "d1c4e9"
	DefaultInSetColor = "ede7f6"
	DefaultSteps      = 4000
)

type Settings struct {
	EndColor   string
	InSetColor string
	StartColor string
	Steps      int
}

func (s *Settings) Verify() error {
	if s.StartColor == "" {
		s.StartColor = DefaultStartColor
	}
	if s.EndColor == "" {
		s.EndColor = DefaultEndColor
	}
	if s.InSetColor == "" {
		s.InSetColor = DefaultInSetColor
	}
	if s.Steps < 0 {
		return fmt.Errorf("steps %d: %w", s.Steps, mandelbrot.ErrInvalidDimension)
	}
	if s.Steps == 0 {
		s.Steps = DefaultSteps
	}

	for _, color := range []string{s.StartColor, s.EndColor, s.InSetColor} {
		if err := ValidateColor(color); err != nil {
			return err
		}
	}
	return nil
}

func (s Settings) String() string {
	output := "{PaletteSettings "
	output += fmt.Sprintf("StartColor: %s ", s.StartColor)
	output += fmt.Sprintf("EndColor: %s ", s.EndColor)
	output += fmt.Sprintf("InSetColor: %s ", s.InSetColor)
	output += fmt.Sprintf("Steps: %d}", s.Steps)
	return output
}
