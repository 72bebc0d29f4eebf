package palette

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"mandelbrot/mandelbrot"
	"mandelbrot/misc"
)

var ErrInvalidColor = errors.New("invalid color")

// Palette assigns a color to every raster value. Thresholds are the distinct
// percentiles of a raster and Colors the gradient built over them.
type Palette struct {
	Colors     []string
	InSetColor string
	Thresholds []int
}

// New builds the percentile palette for a raster.
func New(raster []int, settings Settings) (Palette, error) {
	if err := settings.Verify(); err != nil {
		return Palette{}, err
	}

	thresholds := Distinct(Percentiles(raster, Percentages(settings.Steps)))
	colors, err := Gradient(settings.StartColor, settings.EndColor, len(thresholds))
	if err != nil {
		return Palette{}, err
	}

	return Palette{
		Colors:     colors,
		InSetColor: settings.InSetColor,
		Thresholds: thresholds,
	}, nil
}

// Bucket returns the index into Colors for an escaped raster value: the
// bucket just below the first threshold that exceeds it, clamped to the
// color range. Values at or above every threshold land on the last color.
func (p Palette) Bucket(value int) int {
	next := len(p.Colors)
	for i, threshold := range p.Thresholds {
		if threshold > value {
			next = i
			break
		}
	}
	bucket := next - 1
	if bucket < 0 {
		bucket = 0
	}
	if bucket > len(p.Colors)-1 {
		bucket = len(p.Colors) - 1
	}
	return bucket
}

func (p Palette) Color(value int) string {
	if value == mandelbrot.InSet {
		return p.InSetColor
	}
	return p.Colors[p.Bucket(value)]
}

// Percentages returns count evenly spaced percentages ending at 100.
func Percentages(count int) []float64 {
	if count <= 0 {
		return []float64{}
	}
	percentages := make([]float64, 0, count)
	for i := 1; i <= count; i++ {
		percentages = append(percentages, (100/float64(count))*float64(i))
	}
	return percentages
}

// Percentiles sorts a copy of values and picks the entry at
// floor(p/100 * (n-1)) for each percentage p.
func Percentiles(values []int, percentages []float64) []int {
	if len(values) == 0 {
		return []int{}
	}

	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	percentiles := make([]int, 0, len(percentages))
	for _, percentage := range percentages {
		index := int(math.Floor((percentage / 100) * float64(len(sorted)-1)))
		percentiles = append(percentiles, sorted[index])
	}
	return percentiles
}

// Distinct drops repeated values, keeping the first occurrence of each.
func Distinct(values []int) []int {
	seen := make(map[int]struct{}, len(values))
	distinct := make([]int, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}
	return distinct
}

// Gradient returns steps colors from color1 to color2, both included. Every
// channel of the intermediate colors is floor(lerp(c1, c2, i/steps)).
func Gradient(color1 string, color2 string, steps int) ([]string, error) {
	r1, g1, b1, err := channels(color1)
	if err != nil {
		return nil, err
	}
	r2, g2, b2, err := channels(color2)
	if err != nil {
		return nil, err
	}

	intermediate := steps - 2
	colors := make([]string, 0, max(steps, 2))
	colors = append(colors, color1)

	for i := 1; i <= intermediate; i++ {
		percentage := float64(i) / float64(intermediate+2)

		r := int(math.Floor(misc.LerpFloat64(float64(r1), float64(r2), percentage)))
		g := int(math.Floor(misc.LerpFloat64(float64(g1), float64(g2), percentage)))
		b := int(math.Floor(misc.LerpFloat64(float64(b1), float64(b2), percentage)))

		colors = append(colors, Hex(r)+Hex(g)+Hex(b))
	}

	colors = append(colors, color2)
	return colors, nil
}

// Dec parses a two digit hexadecimal byte.
func Dec(hex string) (int, error) {
	value, err := strconv.ParseUint(hex, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("hex byte %q: %w", hex, ErrInvalidColor)
	}
	return int(value), nil
}

// Hex formats a byte as two lower case hexadecimal digits.
func Hex(dec int) string {
	return fmt.Sprintf("%02x", dec&0xff)
}

// ValidateColor accepts exactly six hexadecimal digits, no leading '#'.
func ValidateColor(color string) error {
	if len(color) != 6 {
		return fmt.Errorf("color %q must be 6 hex digits: %w", color, ErrInvalidColor)
	}
	if strings.IndexFunc(color, func(r rune) bool {
		return !strings.ContainsRune("0123456789abcdefABCDEF", r)
	}) >= 0 {
		return fmt.Errorf("color %q has a non hex digit: %w", color, ErrInvalidColor)
	}
	return nil
}

func channels(color string) (int, int, int, error) {
	if err := ValidateColor(color); err != nil {
		return 0, 0, 0, err
	}
	r, err := Dec(color[0:2])
	if err != nil {
		return 0, 0, 0, err
	}
	g, err := Dec(color[2:4])
	if err != nil {
		return 0, 0, 0, err
	}
	b, err := Dec(color[4:6])
	if err != nil {
		return 0, 0, 0, err
	}
	return r, g, b, nil
}
