package parameterize

import (
	"fmt"

	"github.com/notargets/godirectional/utils"
)

// AugmentConstraints embeds a symmetric matrix H and the homogeneous equality
// constraints C x = 0 into the saddle-point system
//
//	A = [ H  C^T ]    b = [ rhs ]
//	    [ C   0  ]        [  0  ]
//
// Every entry of C is placed twice, below H and mirrored to its right, so A is
// symmetric whenever H is. A zero value C means no constraints. The rank of C
// is not examined here.
func AugmentConstraints(H, C utils.CSR, rhs []float64) (A utils.CSR, b []float64, err error) {
	if C.M == nil {
		_, n := H.Dims()
		C = utils.NewTriplets(0, n).ToCSR()
	}
	var (
		n, nc  = H.Dims()
		nC, cc = C.Dims()
	)
	switch {
	case n != nc:
		err = fmt.Errorf("%w: energy matrix is %dx%d, must be square", ErrInvalidInputShape, n, nc)
		return
	case len(rhs) != n:
		err = fmt.Errorf("%w: right hand side has length %d, energy size = %d", ErrInvalidInputShape, len(rhs), n)
		return
	case nC != 0 && cc != n:
		err = fmt.Errorf("%w: constraint matrix has %d columns, unknowns = %d", ErrInvalidInputShape, cc, n)
		return
	}
	T := utils.NewTriplets(n+nC, n+nC, H.NNZ()+2*C.NNZ())
	H.DoNonZero(func(i, j int, v float64) {
		T.Add(i, j, v)
	})
	C.DoNonZero(func(i, j int, v float64) {
		T.Add(n+i, j, v)
		T.Add(j, n+i, v)
	})
	A = T.ToCSR()
	b = make([]float64, n+nC)
	copy(b, rhs)
	return
}
