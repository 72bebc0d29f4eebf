package misc

// LerpFloat64 interpolates between v1 and v2. The (1-f)*v1 + f*v2 form keeps
// fraction 0 and 1 exact at both ends.
func LerpFloat64(v1 float64, v2 float64, fraction float64) float64 {
	return (1-fraction)*v1 + fraction*v2
}
