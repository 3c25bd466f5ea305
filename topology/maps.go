package topology

import (
	"fmt"

	"github.com/notargets/godirectional/utils"
)

// CornerMap builds the vertex-to-corner map for N functions. Unknown c*N+k is
// function k at vertex copy c; row 3N*f + N*j + k selects the unknown of
// function k at the copy of corner j of face f.
func CornerMap(copyOf [][3]int, nCopies, N int) (P utils.CSR) {
	var (
		fi = utils.NewFaceIndexer(len(copyOf), N)
		T  = utils.NewTriplets(fi.Len(), nCopies*N, fi.Len())
	)
	for f := range copyOf {
		for j := 0; j < 3; j++ {
			for k := 0; k < N; k++ {
				T.Add(fi.Index(f, j, k), copyOf[f][j]*N+k, 1)
			}
		}
	}
	return T.ToCSR()
}

// PinConstraints fixes, for every patch and function, the copy at corner 0 of
// the patch's first face to zero. This removes the constant null space of the
// energy on each patch.
func PinConstraints(copyOf [][3]int, faceComp []int, nComp, nCopies, N int) (C utils.CSR) {
	var (
		T    = utils.NewTriplets(nComp*N, nCopies*N, nComp*N)
		seen = make([]bool, nComp)
	)
	for f, comp := range faceComp {
		if seen[comp] {
			continue
		}
		seen[comp] = true
		for k := 0; k < N; k++ {
			T.Add(comp*N+k, copyOf[f][0]*N+k, 1)
		}
	}
	return T.ToCSR()
}

// EqualityConstraints returns one row x[a] - x[b] = 0 per pair.
func EqualityConstraints(pairs [][2]int, nUnknowns int) (C utils.CSR) {
	T := utils.NewTriplets(len(pairs), nUnknowns, 2*len(pairs))
	for i, p := range pairs {
		T.Add(i, p[0], 1)
		T.Add(i, p[1], -1)
	}
	return T.ToCSR()
}

// StackConstraints concatenates constraint matrices over the same unknowns.
func StackConstraints(nUnknowns int, Cs ...utils.CSR) (C utils.CSR, err error) {
	var nr int
	for _, c := range Cs {
		r, nc := c.Dims()
		if nc != nUnknowns {
			err = fmt.Errorf("constraint block has %d columns, unknowns = %d", nc, nUnknowns)
			return
		}
		nr += r
	}
	T := utils.NewTriplets(nr, nUnknowns)
	nr = 0
	for _, c := range Cs {
		r, _ := c.Dims()
		T.Append(c.Triplets(), nr, 0)
		nr += r
	}
	return T.ToCSR(), nil
}
