package utils

import (
	"fmt"
)

type Index []int

// FaceIndexer flattens the per-face unknowns of a triangle mesh carrying N
// scalar functions into one dimension. Within a face block of 3N entries the
// local slot (corner or edge) is the slow index and the function the fast one:
//
//	ind = 3*N*face + N*local + k
//
// Local edge j runs from corner j to corner (j+1)%3.
type FaceIndexer struct {
	NFaces, N int
}

func NewFaceIndexer(nFaces, N int) FaceIndexer {
	if nFaces < 0 || N < 1 {
		panic(fmt.Errorf("invalid face indexer dimensions: nFaces = %d, N = %d", nFaces, N))
	}
	return FaceIndexer{NFaces: nFaces, N: N}
}

// Len is the size of the flattened space, 3*N*NFaces.
func (fi FaceIndexer) Len() int { return 3 * fi.N * fi.NFaces }

func (fi FaceIndexer) Index(face, local, k int) (ind int) {
	switch {
	case face < 0 || face >= fi.NFaces:
		panic(fmt.Errorf("face index out of range: face = %d, NFaces = %d", face, fi.NFaces))
	case local < 0 || local > 2:
		panic(fmt.Errorf("local index out of range: local = %d", local))
	case k < 0 || k >= fi.N:
		panic(fmt.Errorf("function index out of range: k = %d, N = %d", k, fi.N))
	}
	ind = 3*fi.N*face + fi.N*local + k
	return
}

// Next returns the index of the same function at the corner following local
// slot j, which is the head of local edge j.
func (fi FaceIndexer) Next(face, local, k int) int {
	return fi.Index(face, (local+1)%3, k)
}

// Split inverts Index.
func (fi FaceIndexer) Split(ind int) (face, local, k int) {
	if ind < 0 || ind >= fi.Len() {
		panic(fmt.Errorf("flat index out of range: ind = %d, len = %d", ind, fi.Len()))
	}
	face = ind / (3 * fi.N)
	rem := ind - face*3*fi.N
	local = rem / fi.N
	k = rem - local*fi.N
	return
}

// Corner is the row of a corner in a (3*NFaces) x N corner table.
func (fi FaceIndexer) Corner(face, local int) int {
	return 3*face + local
}
