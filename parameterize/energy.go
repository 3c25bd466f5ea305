package parameterize

import (
	"fmt"

	"github.com/notargets/godirectional/utils"
)

// AssembleEnergy conjugates the weighted face differential with the
// vertex-to-corner map P:
//
//	EtE = P^T d0^T M1 d0 P
//
// and projects the target gradients onto the same unknowns. The right hand
// side is P^T d0^T gamma, or P^T d0^T M1 gamma when weighted is set.
func AssembleEnergy(d *Differentials, P utils.CSR, weighted bool) (EtE utils.CSR, rhs []float64, err error) {
	var (
		nr, nc = P.Dims()
		nDof   = d.Indexer.Len()
	)
	if nr != nDof {
		err = fmt.Errorf("%w: vertex-to-corner map has %d rows, face unknowns = %d",
			ErrInvalidInputShape, nr, nDof)
		return
	}
	D0P := d.D0.Mul(P)
	EtE = D0P.Transpose().MulChain(d.M1, D0P)
	target := d.Gamma
	if weighted {
		target = d.M1.MulVec(d.Gamma)
	}
	rhs = D0P.MulVecT(target)
	utils.Logger().Debug("assembled energy", "unknowns", nc, "nnz", EtE.NNZ())
	return
}
