package parameterize

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/godirectional/topology"
	"github.com/notargets/godirectional/utils"
)

type fixture struct {
	V      *mat.Dense
	F      [][3]int
	Layout *topology.Layout
}

func newFixture(t *testing.T, verts [][3]float64, F [][3]int, N int, cutPairs [][2]int) (fx *fixture) {
	data := make([]float64, 0, 3*len(verts))
	for _, v := range verts {
		data = append(data, v[:]...)
	}
	layout, err := topology.NewLayout(F, len(verts), N, cutPairs)
	require.NoError(t, err)
	return &fixture{
		V:      mat.NewDense(len(verts), 3, data),
		F:      F,
		Layout: layout,
	}
}

// uniformField repeats the same N vectors on every face.
func (fx *fixture) uniformField(dirs ...[3]float64) *mat.Dense {
	var (
		nF    = len(fx.F)
		field = mat.NewDense(nF, 3*len(dirs), nil)
	)
	for i := 0; i < nF; i++ {
		for k, d := range dirs {
			for c := 0; c < 3; c++ {
				field.Set(i, 3*k+c, d[c])
			}
		}
	}
	return field
}

func (fx *fixture) input(field mat.Matrix, C mat.Matrix) Input {
	return Input{
		V:           fx.V,
		F:           fx.F,
		FE:          fx.Layout.FE,
		Field:       field,
		EdgeWeights: utils.ConstArray(fx.Layout.NumEdges(), 1),
		VtoC:        fx.Layout.P,
		Constraints: C,
	}
}

func singleTriangle(t *testing.T, N int) *fixture {
	return newFixture(t,
		[][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[][3]int{{0, 1, 2}}, N, nil)
}

// unitSquare is two triangles sharing the diagonal 0-2.
func unitSquare(t *testing.T, N int, cutPairs [][2]int) *fixture {
	return newFixture(t,
		[][3]float64{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		[][3]int{{0, 1, 2}, {0, 2, 3}}, N, cutPairs)
}

// grid triangulates [0,n]x[0,n] with two triangles per unit square, lifted
// onto a gentle bump so the surface is not planar.
func grid(t *testing.T, n, N int) *fixture {
	var (
		verts [][3]float64
		F     [][3]int
	)
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			x, y := float64(i), float64(j)
			verts = append(verts, [3]float64{x, y, 0.05 * x * y})
		}
	}
	vid := func(i, j int) int { return j*(n+1) + i }
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			F = append(F,
				[3]int{vid(i, j), vid(i+1, j), vid(i+1, j+1)},
				[3]int{vid(i, j), vid(i+1, j+1), vid(i, j+1)})
		}
	}
	return newFixture(t, verts, F, N, nil)
}

// energy evaluates sum_e w_e (d0 P x - gamma)_e^2.
func energy(d *Differentials, P utils.CSR, x []float64) (E float64) {
	g := d.D0.MulVec(P.MulVec(x))
	for i, gi := range g {
		r := gi - d.Gamma[i]
		E += d.M1.At(i, i) * r * r
	}
	return
}
