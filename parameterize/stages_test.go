package parameterize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/godirectional/utils"
)

func TestBuildDifferentials(t *testing.T) {
	var (
		fx      = unitSquare(t, 2, nil)
		field   = fx.uniformField([3]float64{1, 0, 0}, [3]float64{0, 1, 0})
		weights = []float64{1, 2, 3, 4, 5}
	)
	d, err := BuildDifferentials(fx.V, fx.F, fx.Layout.FE, field, weights, 1)
	require.NoError(t, err)
	n := d.Indexer.Len()
	assert.Equal(t, 12, n)
	{ // Every row of d0 is a directed difference inside one face block
		plus, minus := make([]int, n), make([]int, n)
		d.D0.DoNonZero(func(i, j int, v float64) {
			face, _, k := d.Indexer.Split(i)
			cf, _, ck := d.Indexer.Split(j)
			assert.Equal(t, face, cf)
			assert.Equal(t, k, ck)
			switch v {
			case 1:
				plus[i]++
			case -1:
				minus[i]++
			default:
				t.Errorf("unexpected d0 entry %v at (%d,%d)", v, i, j)
			}
		})
		for i := 0; i < n; i++ {
			assert.Equal(t, [2]int{1, 1}, [2]int{plus[i], minus[i]}, "row %d", i)
		}
		// Edge 1 of face 1 runs from corner 1 to corner 2
		row := d.Indexer.Index(1, 1, 0)
		assert.Equal(t, -1., d.D0.At(row, d.Indexer.Index(1, 1, 0)))
		assert.Equal(t, 1., d.D0.At(row, d.Indexer.Index(1, 2, 0)))
		// Edge 2 wraps around to corner 0
		row = d.Indexer.Index(0, 2, 1)
		assert.Equal(t, 1., d.D0.At(row, d.Indexer.Index(0, 0, 1)))
	}
	{ // M1 carries the weight of the global edge of each row
		for f := range fx.F {
			for j := 0; j < 3; j++ {
				for k := 0; k < 2; k++ {
					row := d.Indexer.Index(f, j, k)
					assert.Equal(t, weights[fx.Layout.FE[f][j]], d.M1.At(row, row))
				}
			}
		}
		assert.Equal(t, n, d.M1.NNZ())
	}
	{ // gamma projects field vector k onto the edge
		// Face 1 = (0,2,3): edge 1 is (1,1,0) -> (0,1,0)
		assert.Equal(t, -1., d.Gamma[d.Indexer.Index(1, 1, 0)])
		assert.Equal(t, 0., d.Gamma[d.Indexer.Index(1, 1, 1)])
		// Face 0 = (0,1,2): edge 0 is (0,0,0) -> (1,0,0)
		assert.Equal(t, 1., d.Gamma[d.Indexer.Index(0, 0, 0)])
		assert.Equal(t, 0., d.Gamma[d.Indexer.Index(0, 0, 1)])
	}
}

func TestAssembleEnergy(t *testing.T) {
	fx := grid(t, 3, 1)
	in := fx.input(fx.uniformField([3]float64{0.3, -1, 0.2}), nil)
	in.EdgeWeights = make([]float64, fx.Layout.NumEdges())
	for i := range in.EdgeWeights {
		in.EdgeWeights[i] = 0.5 + float64(i%4)
	}
	d, err := BuildDifferentials(in.V, in.F, in.FE, in.Field, in.EdgeWeights, 2)
	require.NoError(t, err)
	EtE, rhs, err := AssembleEnergy(d, fx.Layout.P, false)
	require.NoError(t, err)
	n, nc := EtE.Dims()
	assert.Equal(t, fx.Layout.NumUnknowns(), n)
	assert.Equal(t, n, nc)
	assert.Equal(t, n, len(rhs))
	assert.True(t, EtE.IsSymmetric(1.e-12))
	{ // Positive semi-definite with the constants as null space
		var es mat.EigenSym
		D := EtE.ToDense()
		S := mat.NewSymDense(n, D.RawMatrix().Data)
		require.True(t, es.Factorize(S, false))
		vals := es.Values(nil)
		assert.InDelta(t, 0., vals[0], 1.e-10)
		assert.Greater(t, vals[1], 1.e-8)
		ones := utils.ConstArray(n, 1)
		assert.InDeltaSlice(t, make([]float64, n), EtE.MulVec(ones), 1.e-12)
	}
	{ // Matches the dense triple product
		var (
			D0   = d.D0.ToDense()
			M1   = d.M1.ToDense()
			P    = fx.Layout.P.ToDense()
			D0P  mat.Dense
			tmp  mat.Dense
			want mat.Dense
		)
		D0P.Mul(D0, P)
		tmp.Mul(D0P.T(), M1)
		want.Mul(&tmp, &D0P)
		assert.True(t, mat.EqualApprox(&want, EtE.ToDense(), 1.e-12))

		// The default right hand side leaves the weights out of the target
		var (
			gamma        = mat.NewVecDense(len(d.Gamma), d.Gamma)
			want0, wantW mat.VecDense
			mg           mat.VecDense
		)
		want0.MulVec(D0P.T(), gamma)
		assert.InDeltaSlice(t, want0.RawVector().Data, rhs, 1.e-12)
		assert.InDeltaSlice(t, d.D0.Mul(fx.Layout.P).MulVecT(d.Gamma), rhs, 1.e-12)
		_, rhsW, err := AssembleEnergy(d, fx.Layout.P, true)
		require.NoError(t, err)
		mg.MulVec(M1, gamma)
		wantW.MulVec(D0P.T(), &mg)
		assert.InDeltaSlice(t, wantW.RawVector().Data, rhsW, 1.e-12)
		assert.False(t, floats.EqualApprox(rhs, rhsW, 1.e-6))
	}
	{ // A wrong sized map is rejected
		_, _, err = AssembleEnergy(d, utils.NewTriplets(3, 3).ToCSR(), false)
		assert.ErrorIs(t, err, ErrInvalidInputShape)
	}
}

func TestAugmentConstraints(t *testing.T) {
	H := utils.NewTriplets(3, 3)
	H.Add(0, 0, 2)
	H.Add(1, 1, 3)
	H.Add(2, 2, 4)
	H.Add(0, 1, -1)
	H.Add(1, 0, -1)
	C := utils.NewTriplets(2, 3)
	C.Add(0, 0, 1)
	C.Add(1, 1, 1)
	C.Add(1, 2, -1)
	A, b, err := AugmentConstraints(H.ToCSR(), C.ToCSR(), []float64{1, 2, 3})
	require.NoError(t, err)
	want := mat.NewDense(5, 5, []float64{
		2, -1, 0, 1, 0,
		-1, 3, 0, 0, 1,
		0, 0, 4, 0, -1,
		1, 0, 0, 0, 0,
		0, 1, -1, 0, 0,
	})
	assert.True(t, mat.Equal(want, A.ToDense()))
	assert.True(t, A.IsSymmetric(0))
	assert.Equal(t, []float64{1, 2, 3, 0, 0}, b)
	{ // No constraints leaves the system untouched
		A, b, err = AugmentConstraints(H.ToCSR(), utils.CSR{}, []float64{1, 2, 3})
		require.NoError(t, err)
		assert.True(t, mat.Equal(H.ToCSR().ToDense(), A.ToDense()))
		assert.Equal(t, []float64{1, 2, 3}, b)
	}
	{
		_, _, err = AugmentConstraints(H.ToCSR(), utils.NewTriplets(1, 2).ToCSR(), []float64{1, 2, 3})
		assert.ErrorIs(t, err, ErrInvalidInputShape)
		_, _, err = AugmentConstraints(H.ToCSR(), C.ToCSR(), []float64{1, 2})
		assert.ErrorIs(t, err, ErrInvalidInputShape)
	}
}

func TestSolve(t *testing.T) {
	{ // Symmetric indefinite system with a zero diagonal block
		A := utils.NewTriplets(3, 3)
		A.Add(0, 0, 2)
		A.Add(1, 1, 2)
		A.Add(0, 2, 1)
		A.Add(2, 0, 1)
		A.Add(1, 2, 1)
		A.Add(2, 1, 1)
		s, err := Solve(A.ToCSR(), []float64{2, 4, 0}, 2, utils.RCONDMIN)
		require.NoError(t, err)
		// x0 + x1 = 0, 2x0 + l = 2, 2x1 + l = 4
		assert.InDeltaSlice(t, []float64{-0.5, 0.5}, s.X, tol)
		assert.InDeltaSlice(t, []float64{3}, s.Multipliers, tol)
		assert.Less(t, s.Residual, tol)
	}
	{ // Singular
		A := utils.NewTriplets(2, 2)
		A.Add(0, 0, 1)
		A.Add(0, 1, 1)
		A.Add(1, 0, 1)
		A.Add(1, 1, 1)
		s, err := Solve(A.ToCSR(), []float64{1, 1}, 2, utils.RCONDMIN)
		assert.ErrorIs(t, err, ErrSolveFailed)
		assert.Nil(t, s)
	}
	{
		_, err := Solve(utils.NewTriplets(2, 2).ToCSR(), []float64{1}, 2, utils.RCONDMIN)
		assert.ErrorIs(t, err, ErrInvalidInputShape)
	}
}

func TestCornerValues(t *testing.T) {
	fx := unitSquare(t, 2, nil)
	x := make([]float64, fx.Layout.NumUnknowns())
	for i := range x {
		x[i] = float64(i)
	}
	uv := CornerValues(fx.Layout.P, x, utils.NewFaceIndexer(2, 2))
	for f := range fx.F {
		for j := 0; j < 3; j++ {
			// Row 3f+j holds the copy of corner j of face f
			c := fx.Layout.CopyOf[f][j]
			assert.Equal(t, float64(2*c), uv.At(3*f+j, 0))
			assert.Equal(t, float64(2*c+1), uv.At(3*f+j, 1))
		}
	}
	// Shared vertices agree across faces
	assert.Equal(t, uv.RawRowView(0), uv.RawRowView(3))
	assert.Equal(t, uv.RawRowView(2), uv.RawRowView(4))
}

func TestConstraintRank(t *testing.T) {
	C := utils.NewTriplets(3, 4)
	C.Add(0, 0, 1)
	C.Add(1, 1, 1)
	C.Add(1, 2, -1)
	C.Add(2, 0, 2)
	C.Add(2, 1, 1)
	C.Add(2, 2, -1)
	rank, err := ConstraintRank(C.ToCSR())
	require.NoError(t, err)
	assert.Equal(t, 2, rank)
	assert.ErrorIs(t, checkConstraintRank(C.ToCSR()), ErrSolveFailed)
	rank, err = ConstraintRank(utils.NewTriplets(0, 4).ToCSR())
	require.NoError(t, err)
	assert.Equal(t, 0, rank)
}

func TestZeroWeightDisablesEdge(t *testing.T) {
	var (
		fx      = unitSquare(t, 1, nil)
		field   = fx.uniformField([3]float64{1, 0.5, 0})
		ie, ok  = fx.Layout.EdgeIndex(0, 2)
		weights = utils.ConstArray(fx.Layout.NumEdges(), 1)
	)
	require.True(t, ok)
	full, err := BuildDifferentials(fx.V, fx.F, fx.Layout.FE, field, weights, 1)
	require.NoError(t, err)
	weights[ie] = 0
	d, err := BuildDifferentials(fx.V, fx.F, fx.Layout.FE, field, weights, 1)
	require.NoError(t, err)

	// The diagonal is local edge 2 of face 0 and local edge 0 of face 1
	var rows []int
	for f := range fx.F {
		for j := 0; j < 3; j++ {
			if fx.Layout.FE[f][j] == ie {
				rows = append(rows, d.Indexer.Index(f, j, 0))
			}
		}
	}
	require.Equal(t, []int{d.Indexer.Index(0, 2, 0), d.Indexer.Index(1, 0, 0)}, rows)
	for _, row := range rows {
		assert.Equal(t, 0., d.M1.At(row, row))
	}
	assert.Equal(t, d.Indexer.Len()-len(rows), d.M1.NNZ())

	// EtE loses exactly the outer products of the disabled rows
	EtE, _, err := AssembleEnergy(d, fx.Layout.P, false)
	require.NoError(t, err)
	EtEFull, _, err := AssembleEnergy(full, fx.Layout.P, false)
	require.NoError(t, err)
	var (
		D0P  = full.D0.Mul(fx.Layout.P).ToDense()
		_, n = D0P.Dims()
		want = mat.DenseCopyOf(EtEFull.ToDense())
	)
	for _, row := range rows {
		r := mat.Row(nil, row, D0P)
		var outer mat.Dense
		outer.Outer(1, mat.NewVecDense(n, r), mat.NewVecDense(n, r))
		want.Sub(want, &outer)
	}
	assert.True(t, mat.EqualApprox(want, EtE.ToDense(), 1.e-12))

	// The weighted target drops the same rows
	_, rhsW, err := AssembleEnergy(d, fx.Layout.P, true)
	require.NoError(t, err)
	target := append([]float64(nil), d.Gamma...)
	for _, row := range rows {
		target[row] = 0
	}
	var wantRHS mat.VecDense
	wantRHS.MulVec(D0P.T(), mat.NewVecDense(len(target), target))
	assert.InDeltaSlice(t, wantRHS.RawVector().Data, rhsW, 1.e-12)
}

func TestBuildDifferentialsOverflow(t *testing.T) {
	// Finite coordinates whose difference overflows
	fx := newFixture(t,
		[][3]float64{{-1.e308, 0, 0}, {1.e308, 0, 0}, {0, 1, 0}},
		[][3]int{{0, 1, 2}}, 1, nil)
	field := fx.uniformField([3]float64{1, 0, 0})
	for _, np := range []int{1, 2} {
		d, err := BuildDifferentials(fx.V, fx.F, fx.Layout.FE, field,
			utils.ConstArray(fx.Layout.NumEdges(), 1), np)
		assert.ErrorIs(t, err, ErrInvalidInputShape)
		assert.Nil(t, d)
	}
	res, err := Parameterize(fx.input(field, fx.Layout.Pins))
	assert.ErrorIs(t, err, ErrInvalidInputShape)
	assert.Nil(t, res)
}
