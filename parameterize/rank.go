package parameterize

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/godirectional/utils"
)

// ConstraintRank returns the numerical row rank of C from its singular values,
// counting those above max(rows, cols) * eps * sigma_max.
func ConstraintRank(C utils.CSR) (rank int, err error) {
	var (
		nr, nc = C.Dims()
		svd    mat.SVD
	)
	if nr == 0 || nc == 0 {
		return 0, nil
	}
	if ok := svd.Factorize(C.ToDense(), mat.SVDNone); !ok {
		err = fmt.Errorf("%w: singular value decomposition of the constraint matrix did not converge", ErrSolveFailed)
		return
	}
	sv := svd.Values(nil)
	if len(sv) == 0 || sv[0] == 0 {
		return 0, nil
	}
	tol := float64(max(nr, nc)) * (math.Nextafter(1, 2) - 1) * sv[0]
	for _, s := range sv {
		if s > tol {
			rank++
		}
	}
	return
}

func checkConstraintRank(C utils.CSR) (err error) {
	var (
		nr, _ = C.Dims()
		rank  int
	)
	if rank, err = ConstraintRank(C); err != nil {
		return
	}
	if rank < nr {
		err = fmt.Errorf("%w: constraint matrix has rank %d with %d rows", ErrSolveFailed, rank, nr)
	}
	return
}
