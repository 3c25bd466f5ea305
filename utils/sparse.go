package utils

import (
	"fmt"
	"math"
	"sort"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// Triplets accumulates (row, col, value) entries of a sparse matrix in
// insertion order. Entries sharing a (row, col) are summed on assembly.
type Triplets struct {
	RI, CI Index
	Data   []float64
	nr, nc int
}

func NewTriplets(nr, nc int, capacityO ...int) (T *Triplets) {
	var capacity int
	if len(capacityO) != 0 {
		capacity = capacityO[0]
	}
	T = &Triplets{
		RI:   make(Index, 0, capacity),
		CI:   make(Index, 0, capacity),
		Data: make([]float64, 0, capacity),
		nr:   nr,
		nc:   nc,
	}
	return
}

func (t *Triplets) Dims() (r, c int) { return t.nr, t.nc }
func (t *Triplets) Len() int         { return len(t.Data) }

func (t *Triplets) Add(i, j int, val float64) {
	if i < 0 || i >= t.nr || j < 0 || j >= t.nc {
		panic(fmt.Errorf("triplet out of bounds: (%d,%d) in %dx%d", i, j, t.nr, t.nc))
	}
	t.RI = append(t.RI, i)
	t.CI = append(t.CI, j)
	t.Data = append(t.Data, val)
}

// Append copies the entries of o after the receiver's, offset by (rOff, cOff).
func (t *Triplets) Append(o *Triplets, rOff, cOff int) {
	for n, val := range o.Data {
		t.Add(o.RI[n]+rOff, o.CI[n]+cOff, val)
	}
}

// ToCSR sums duplicates and compresses the triplets into row storage. Summation
// order for duplicate entries follows insertion order, so assembly is
// reproducible bit for bit.
func (t *Triplets) ToCSR() CSR {
	var (
		nnz  = len(t.Data)
		perm = make([]int, nnz)
	)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		pa, pb := perm[a], perm[b]
		if t.RI[pa] != t.RI[pb] {
			return t.RI[pa] < t.RI[pb]
		}
		return t.CI[pa] < t.CI[pb]
	})
	var (
		indptr = make([]int, t.nr+1)
		ind    = make([]int, 0, nnz)
		data   = make([]float64, 0, nnz)
	)
	for n := 0; n < nnz; {
		i, j := t.RI[perm[n]], t.CI[perm[n]]
		var sum float64
		for n < nnz && t.RI[perm[n]] == i && t.CI[perm[n]] == j {
			sum += t.Data[perm[n]]
			n++
		}
		if sum == 0 {
			continue
		}
		ind = append(ind, j)
		data = append(data, sum)
		indptr[i+1]++
	}
	for i := 0; i < t.nr; i++ {
		indptr[i+1] += indptr[i]
	}
	return CSR{M: sparse.NewCSR(t.nr, t.nc, indptr, ind, data)}
}

type CSR struct {
	M *sparse.CSR
}

// NewCSRFrom copies the nonzeros of any matrix into row storage. Sparse
// sources are walked through their nonzeros only.
func NewCSRFrom(A mat.Matrix) CSR {
	switch a := A.(type) {
	case CSR:
		return a
	case *sparse.CSR:
		return CSR{M: a}
	}
	var (
		nr, nc = A.Dims()
		T      = NewTriplets(nr, nc)
	)
	if nz, ok := A.(interface {
		DoNonZero(fn func(i, j int, v float64))
	}); ok {
		nz.DoNonZero(func(i, j int, v float64) {
			T.Add(i, j, v)
		})
		return T.ToCSR()
	}
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			if v := A.At(i, j); v != 0 {
				T.Add(i, j, v)
			}
		}
	}
	return T.ToCSR()
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix       { return m.M.T() }
func (m CSR) NNZ() int            { return m.M.NNZ() }

func (m CSR) DoNonZero(fn func(i, j int, v float64)) {
	m.M.DoNonZero(fn)
}

// Triplets returns the nonzeros in row order.
func (m CSR) Triplets() (T *Triplets) {
	var nr, nc = m.Dims()
	T = NewTriplets(nr, nc, m.NNZ())
	m.DoNonZero(func(i, j int, v float64) {
		T.Add(i, j, v)
	})
	return
}

func (m CSR) Transpose() (R CSR) { // Does not change receiver
	if csc, ok := m.M.T().(*sparse.CSC); ok {
		return CSR{M: csc.ToCSR()}
	}
	return NewCSRFrom(m.M.T())
}

func (m CSR) Mul(A CSR) (R CSR) { // Does not change receiver
	var (
		_, nc = m.Dims()
		nr, _ = A.Dims()
	)
	if nc != nr {
		panic(fmt.Errorf("dimension mismatch in sparse product: %d columns x %d rows", nc, nr))
	}
	R.M = &sparse.CSR{}
	R.M.Mul(m.M, A.M)
	return
}

// MulChain multiplies left to right: m * A[0] * A[1] ...
func (m CSR) MulChain(A ...CSR) (R CSR) {
	R = m
	for _, a := range A {
		R = R.Mul(a)
	}
	return
}

func (m CSR) MulVec(x []float64) (y []float64) {
	var nr, nc = m.Dims()
	if len(x) != nc {
		panic(fmt.Errorf("dimension mismatch in sparse matvec: %d columns, len(x) = %d", nc, len(x)))
	}
	y = make([]float64, nr)
	m.M.MulVecTo(y, false, x)
	return
}

// MulVecT computes m^T * x without forming the transpose.
func (m CSR) MulVecT(x []float64) (y []float64) {
	var nr, nc = m.Dims()
	if len(x) != nr {
		panic(fmt.Errorf("dimension mismatch in sparse matvec: %d rows, len(x) = %d", nr, len(x)))
	}
	y = make([]float64, nc)
	m.M.MulVecTo(y, true, x)
	return
}

func (m CSR) ToDense() (D *mat.Dense) { return m.M.ToDense() }

// IsSymmetric reports whether |m(i,j) - m(j,i)| <= tol*max(1,|m(i,j)|) for
// every stored entry.
func (m CSR) IsSymmetric(tol float64) (ok bool) {
	var nr, nc = m.Dims()
	if nr != nc {
		return false
	}
	ok = true
	m.DoNonZero(func(i, j int, v float64) {
		if math.Abs(v-m.At(j, i)) > tol*math.Max(1, math.Abs(v)) {
			ok = false
		}
	})
	return
}
