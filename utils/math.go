package utils

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

// ReshapeRows views a flat row-major slice as nr rows of length nc. The rows
// share storage with data.
func ReshapeRows(data []float64, nc int) (R [][]float64) {
	if nc <= 0 {
		return nil
	}
	nr := len(data) / nc
	R = make([][]float64, nr)
	for i := range R {
		R[i] = data[i*nc : (i+1)*nc : (i+1)*nc]
	}
	return
}
