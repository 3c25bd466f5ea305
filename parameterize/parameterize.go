// Package parameterize computes a seam-aware global parameterization of a
// triangle mesh from a per-face N-directional field. The integral curves of
// the field become axis-aligned isolines of the N corner functions everywhere
// away from the cut encoded in the vertex-to-corner map.
//
// The pipeline is a single forward pass:
//
//	BuildDifferentials -> AssembleEnergy -> AugmentConstraints -> Solve -> CornerValues
//
// Mesh topology, field combing, the cut graph, the vertex-to-corner map and
// the constraint matrix are inputs; see the topology package for simple
// builders of the last three.
package parameterize

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/godirectional/utils"
)

type Input struct {
	V           mat.Matrix // #V x 3 vertex positions
	F           [][3]int   // #F triangles, CCW
	FE          [][3]int   // #F x 3 global edge of local edge j (corner j -> corner (j+1)%3)
	Field       mat.Matrix // #F x 3N raw field, xyz interleaved, CCW
	EdgeWeights []float64  // #E smoothing weights, >= 0
	VtoC        mat.Matrix // 3N#F x #unknowns vertex-to-corner map
	Constraints mat.Matrix // #C x #unknowns, nil for none
}

type Result struct {
	// CornerUV has one row per triangle corner (row 3f+j is corner j of face
	// f) and one column per function.
	CornerUV    *mat.Dense
	X           []float64 // values of the global unknowns
	Multipliers []float64 // one per constraint row
	RCond       float64
	Residual    float64
}

// Parameterize runs the whole pipeline once. Inconsistent input dimensions
// return ErrInvalidInputShape before anything is assembled; a singular or
// degenerate saddle-point system returns ErrSolveFailed. Either way no partial
// result is returned.
func Parameterize(in Input, opts ...Option) (res *Result, err error) {
	var (
		o    = defaultOptions()
		P, C utils.CSR
		N    int
	)
	for _, opt := range opts {
		opt(&o)
	}
	if N, err = checkFaceTables(in.V, in.F, in.FE, in.Field, in.EdgeWeights); err != nil {
		return
	}
	if P, C, err = checkMaps(in.VtoC, in.Constraints, 3*N*len(in.F)); err != nil {
		return
	}
	if o.rankCheck {
		if err = checkConstraintRank(C); err != nil {
			return
		}
	}
	var (
		d      *Differentials
		EtE, A utils.CSR
		rhs, b []float64
		s      *Solution
		_, nU  = P.Dims()
	)
	if d, err = BuildDifferentials(in.V, in.F, in.FE, in.Field, in.EdgeWeights, o.parallelDegree); err != nil {
		return
	}
	if EtE, rhs, err = AssembleEnergy(d, P, o.weightedRHS); err != nil {
		return
	}
	if A, b, err = AugmentConstraints(EtE, C, rhs); err != nil {
		return
	}
	if s, err = Solve(A, b, nU, o.rcondMin); err != nil {
		return
	}
	res = &Result{
		CornerUV:    CornerValues(P, s.X, d.Indexer),
		X:           s.X,
		Multipliers: s.Multipliers,
		RCond:       s.RCond,
		Residual:    s.Residual,
	}
	return
}

// checkFaceTables validates the mesh, field and weight tables against each
// other and returns the field degree N.
func checkFaceTables(V mat.Matrix, F, FE [][3]int, field mat.Matrix, weights []float64) (N int, err error) {
	if V == nil || field == nil {
		err = fmt.Errorf("%w: vertex and field matrices are required", ErrInvalidInputShape)
		return
	}
	var (
		nV, vc = V.Dims()
		nF     = len(F)
		fr, fc = field.Dims()
		nE     int
	)
	switch {
	case nF == 0:
		err = fmt.Errorf("%w: mesh has no faces", ErrInvalidInputShape)
	case vc != 3:
		err = fmt.Errorf("%w: vertices have %d columns, want 3", ErrInvalidInputShape, vc)
	case fr != nF:
		err = fmt.Errorf("%w: field has %d rows, faces = %d", ErrInvalidInputShape, fr, nF)
	case fc == 0 || fc%3 != 0:
		err = fmt.Errorf("%w: field has %d columns, not a positive multiple of 3", ErrInvalidInputShape, fc)
	case len(FE) != nF:
		err = fmt.Errorf("%w: face-edge table has %d rows, faces = %d", ErrInvalidInputShape, len(FE), nF)
	}
	if err != nil {
		return
	}
	N = fc / 3
	for i := 0; i < nF; i++ {
		for j := 0; j < 3; j++ {
			if iv := F[i][j]; iv < 0 || iv >= nV {
				err = fmt.Errorf("%w: face %d references vertex %d, vertices = %d", ErrInvalidInputShape, i, iv, nV)
				return
			}
			if ie := FE[i][j]; ie < 0 {
				err = fmt.Errorf("%w: face %d references edge %d", ErrInvalidInputShape, i, ie)
				return
			} else if ie+1 > nE {
				nE = ie + 1
			}
		}
	}
	if len(weights) != nE {
		err = fmt.Errorf("%w: %d edge weights, edges = %d", ErrInvalidInputShape, len(weights), nE)
		return
	}
	for ie, w := range weights {
		if math.IsNaN(w) || w < 0 {
			err = fmt.Errorf("%w: edge %d has weight %g, want a non-negative number", ErrInvalidInputShape, ie, w)
			return
		}
	}
	if !finiteMatrix(V) || !finiteMatrix(field) {
		err = fmt.Errorf("%w: vertex or field values are not finite", ErrInvalidInputShape)
	}
	return
}

func checkMaps(VtoC, Constraints mat.Matrix, nDof int) (P, C utils.CSR, err error) {
	if VtoC == nil {
		err = fmt.Errorf("%w: vertex-to-corner map is required", ErrInvalidInputShape)
		return
	}
	P = utils.NewCSRFrom(VtoC)
	nr, nU := P.Dims()
	switch {
	case nr != nDof:
		err = fmt.Errorf("%w: vertex-to-corner map has %d rows, face unknowns = %d", ErrInvalidInputShape, nr, nDof)
		return
	case nU == 0:
		err = fmt.Errorf("%w: vertex-to-corner map has no columns", ErrInvalidInputShape)
		return
	}
	if Constraints == nil {
		C = utils.NewTriplets(0, nU).ToCSR()
		return
	}
	C = utils.NewCSRFrom(Constraints)
	if nC, cc := C.Dims(); nC != 0 && cc != nU {
		err = fmt.Errorf("%w: constraint matrix has %d columns, unknowns = %d", ErrInvalidInputShape, cc, nU)
	}
	return
}

func finiteMatrix(A mat.Matrix) bool {
	nr, nc := A.Dims()
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			if v := A.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
