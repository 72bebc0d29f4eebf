package task

import "fmt"

// Pixel is the escape time computed for one coordinate
type Pixel struct {
	Column     int
	Iterations int
	Row        int
}

func (p *Pixel) String() string {
	output := "{Pixel "
	output += fmt.Sprintf("Column: %d ", p.Column)
	output += fmt.Sprintf("Iterations: %d ", p.Iterations)
	output += fmt.Sprintf("Row: %d}", p.Row)
	return output
}
