package cplx

import (
	"fmt"
	"math"
)

// Complex is a point in the complex plane. Every operation returns a new value.
type Complex struct {
	Real      float64
	Imaginary float64
}

func New(real float64, imaginary float64) Complex {
	return Complex{Real: real, Imaginary: imaginary}
}

func (c Complex) Add(other Complex) Complex {
	return Complex{
		Real:      c.Real + other.Real,
		Imaginary: c.Imaginary + other.Imaginary,
	}
}

func (c Complex) Multiply(other Complex) Complex {
	return Complex{
		Real:      c.Real*other.Real - c.Imaginary*other.Imaginary,
		Imaginary: c.Real*other.Imaginary + c.Imaginary*other.Real,
	}
}

// Magnitude returns the absolute value sqrt(re² + im²)
func (c Complex) Magnitude() float64 {
	return math.Sqrt(c.Real*c.Real + c.Imaginary*c.Imaginary)
}

func (c Complex) String() string {
	return fmt.Sprintf("(%g%+gi)", c.Real, c.Imaginary)
}
