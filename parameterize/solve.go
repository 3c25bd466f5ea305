package parameterize

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/godirectional/utils"
)

// Solution of a saddle-point system split at the end of the primal unknowns.
type Solution struct {
	X           []float64 // primal unknowns
	Multipliers []float64 // Lagrange multipliers, one per constraint row
	RCond       float64   // reciprocal condition estimate of the factorized system
	Residual    float64   // max norm of A*[X;Multipliers] - b
}

// Solve factorizes A with partial pivoting, which handles the symmetric
// indefinite structure of a KKT matrix, and solves A z = b. A singular or
// numerically degenerate A (reciprocal condition below rcondMin) reports
// ErrSolveFailed and no solution.
//
// The factorization is dense: memory grows as 8n^2 bytes and time as n^3 in
// the system size n = unknowns + constraints. About 3400 unknowns take 90 MB
// and a second; past roughly 10^4 unknowns the solve needs gigabytes.
func Solve(A utils.CSR, b []float64, nUnknowns int, rcondMin float64) (s *Solution, err error) {
	var (
		n, nc = A.Dims()
		lu    mat.LU
		z     mat.VecDense
		log   = utils.Logger()
	)
	switch {
	case n != nc || n == 0:
		err = fmt.Errorf("%w: system matrix is %dx%d", ErrInvalidInputShape, n, nc)
		return
	case len(b) != n:
		err = fmt.Errorf("%w: right hand side has length %d, system size = %d", ErrInvalidInputShape, len(b), n)
		return
	case nUnknowns < 0 || nUnknowns > n:
		err = fmt.Errorf("%w: %d primal unknowns in a system of size %d", ErrInvalidInputShape, nUnknowns, n)
		return
	}
	log.Debug("factorizing saddle-point system", "size", n, "nnz", A.NNZ(), "dense_bytes", 8*n*n)
	lu.Factorize(A.ToDense())
	rcond := 1. / lu.Cond()
	if math.IsNaN(rcond) || rcond < rcondMin {
		log.Warn("factorization failed", "rcond", rcond, "limit", rcondMin)
		err = fmt.Errorf("%w: matrix is singular to working precision (rcond = %g)", ErrSolveFailed, rcond)
		return
	}
	if err = lu.SolveVecTo(&z, false, mat.NewVecDense(n, b)); err != nil {
		log.Warn("triangular solve failed", "error", err)
		err = fmt.Errorf("%w: %v", ErrSolveFailed, err)
		return
	}
	zD := z.RawVector().Data
	if !utils.IsFinite(zD) {
		err = fmt.Errorf("%w: solution is not finite", ErrSolveFailed)
		return
	}
	r := A.MulVec(zD)
	floats.Sub(r, b)
	s = &Solution{
		X:           append([]float64(nil), zD[:nUnknowns]...),
		Multipliers: append([]float64(nil), zD[nUnknowns:]...),
		RCond:       rcond,
		Residual:    floats.Norm(r, math.Inf(1)),
	}
	log.Info("solved saddle-point system", "size", n, "rcond", rcond, "residual", s.Residual)
	return
}

// CornerValues maps the vertex-copy values x through P onto the face
// unknowns and lays them out as one row per triangle corner: row 3f+j holds
// the N values of corner j of face f.
func CornerValues(P utils.CSR, x []float64, fi utils.FaceIndexer) (cornerUV *mat.Dense) {
	v := P.MulVec(x)
	cornerUV = mat.NewDense(3*fi.NFaces, fi.N, nil)
	for f := 0; f < fi.NFaces; f++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < fi.N; k++ {
				cornerUV.Set(fi.Corner(f, j), k, v[fi.Index(f, j, k)])
			}
		}
	}
	return
}
