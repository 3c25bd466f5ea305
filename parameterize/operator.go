package parameterize

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"golang.org/x/sync/errgroup"

	"github.com/notargets/godirectional/utils"
)

// Differentials holds the per-face discrete gradient of the N corner
// functions, the diagonal edge weighting aligned with its rows, and the target
// gradient of every row. All three are indexed by Indexer.
type Differentials struct {
	D0, M1  utils.CSR
	Gamma   []float64
	Indexer utils.FaceIndexer
}

// BuildDifferentials emits, for every face i, local edge j and function k, the
// row 3Ni+Nj+k of d0 holding -1 at corner j and +1 at corner (j+1)%3 of the
// same face. The matching entry of gamma is the k-th field vector of face i
// dotted with the edge vector V[F(i,j+1)] - V[F(i,j)], and the diagonal of M1
// carries the weight of the global edge FE(i,j).
//
// Faces are split into parallelDegree contiguous buckets; buckets are merged
// in order so the result does not depend on parallelDegree.
func BuildDifferentials(V mat.Matrix, F, FE [][3]int, field mat.Matrix,
	weights []float64, parallelDegree int) (d *Differentials, err error) {
	var (
		N int
	)
	if N, err = checkFaceTables(V, F, FE, field, weights); err != nil {
		return
	}
	var (
		nF   = len(F)
		fi   = utils.NewFaceIndexer(nF, N)
		nDof = fi.Len()
		pm   = utils.NewPartitionMap(parallelDegree, nF)
		d0s  = make([]*utils.Triplets, pm.ParallelDegree)
		m1s  = make([]*utils.Triplets, pm.ParallelDegree)
	)
	d = &Differentials{
		Gamma:   make([]float64, nDof),
		Indexer: fi,
	}
	vertex := func(iv int) r3.Vec {
		return r3.Vec{X: V.At(iv, 0), Y: V.At(iv, 1), Z: V.At(iv, 2)}
	}
	var g errgroup.Group
	for bn := 0; bn < pm.ParallelDegree; bn++ {
		bn := bn
		g.Go(func() error {
			var (
				kMin, kMax = pm.GetBucketRange(bn)
				nRows      = 3 * N * pm.GetBucketDimension(bn)
				d0         = utils.NewTriplets(nDof, nDof, 2*nRows)
				m1         = utils.NewTriplets(nDof, nDof, nRows)
			)
			for i := kMin; i < kMax; i++ {
				for j := 0; j < 3; j++ {
					edge := r3.Sub(vertex(F[i][(j+1)%3]), vertex(F[i][j]))
					w := weights[FE[i][j]]
					for k := 0; k < N; k++ {
						row := fi.Index(i, j, k)
						d0.Add(row, row, -1)
						d0.Add(row, fi.Next(i, j, k), 1)
						dir := r3.Vec{X: field.At(i, 3*k), Y: field.At(i, 3*k+1), Z: field.At(i, 3*k+2)}
						gamma := r3.Dot(dir, edge)
						if math.IsNaN(gamma) || math.IsInf(gamma, 0) {
							return fmt.Errorf("%w: target of face %d edge %d function %d overflows",
								ErrInvalidInputShape, i, j, k)
						}
						d.Gamma[row] = gamma
						m1.Add(row, row, w)
					}
				}
			}
			d0s[bn], m1s[bn] = d0, m1
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	D0 := utils.NewTriplets(nDof, nDof, 2*nDof)
	M1 := utils.NewTriplets(nDof, nDof, nDof)
	for bn := range d0s {
		D0.Append(d0s[bn], 0, 0)
		M1.Append(m1s[bn], 0, 0)
	}
	d.D0, d.M1 = D0.ToCSR(), M1.ToCSR()
	utils.Logger().Debug("built face differentials",
		"faces", nF, "N", N, "rows", nDof, "d0_nnz", d.D0.NNZ(), "partitions", pm.ParallelDegree)
	return
}
