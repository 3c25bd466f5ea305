package InputParameters

import (
	"fmt"
	"math"

	"github.com/ghodss/yaml"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/godirectional/utils"
)

type Constraint struct {
	Row   int     `yaml:"Row"`
	Col   int     `yaml:"Col"`
	Value float64 `yaml:"Value"`
}

// Parameters obtained from the YAML input file
type ParamInput struct {
	Title          string       `yaml:"Title"`
	Vertices       [][]float64  `yaml:"Vertices"` // Each row is x, y[, z]
	Faces          [][3]int     `yaml:"Faces"`
	Field          [][]float64  `yaml:"Field"`        // One row of 3N per face
	UniformField   [][3]float64 `yaml:"UniformField"` // N directions used on every face
	EdgeWeights    []float64    `yaml:"EdgeWeights"`  // Unit weights when empty
	CutEdges       [][2]int     `yaml:"CutEdges"`     // Vertex pairs
	Constraints    []Constraint `yaml:"Constraints"`  // Entries of C over the global unknowns
	ParallelDegree int          `yaml:"ParallelDegree"`
	ConditionLimit float64      `yaml:"ConditionLimit"`
	WeightedRHS    bool         `yaml:"WeightedRHS"`
	RankCheck      bool         `yaml:"RankCheck"`
	FreeGauge      bool         `yaml:"FreeGauge"` // Do not pin one corner per patch
}

func (ip *ParamInput) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *ParamInput) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d]\t\t\t= Vertices\n", len(ip.Vertices))
	fmt.Printf("[%d]\t\t\t= Faces\n", len(ip.Faces))
	fmt.Printf("[%d]\t\t\t= Field Degree\n", ip.Degree())
	fmt.Printf("[%d]\t\t\t= Cut Edges\n", len(ip.CutEdges))
	fmt.Printf("[%d]\t\t\t= Constraint Entries\n", len(ip.Constraints))
	fmt.Printf("[%d]\t\t\t= Parallel Degree\n", ip.ParallelDegree)
	fmt.Printf("%8.2e\t\t= Condition Limit\n", ip.ConditionLimit)
	fmt.Printf("%v\t\t\t= Weighted RHS\n", ip.WeightedRHS)
	fmt.Printf("%v\t\t\t= Rank Check\n", ip.RankCheck)
}

// Degree is the number N of field directions per face, zero if no field is
// given.
func (ip *ParamInput) Degree() int {
	switch {
	case len(ip.UniformField) != 0:
		return len(ip.UniformField)
	case len(ip.Field) != 0:
		return len(ip.Field[0]) / 3
	}
	return 0
}

// Validate checks the parts of the input that do not depend on the mesh
// source. Mesh consistency is checked when the problem is assembled.
func (ip *ParamInput) Validate() (err error) {
	if len(ip.Field) != 0 && len(ip.UniformField) != 0 {
		return fmt.Errorf("only one of Field and UniformField can be given")
	}
	if ip.Degree() == 0 {
		return fmt.Errorf("a Field or UniformField is required")
	}
	for i, row := range ip.Field {
		if len(row) == 0 || len(row)%3 != 0 || len(row) != len(ip.Field[0]) {
			return fmt.Errorf("field row %d has %d values, want %d", i, len(row), len(ip.Field[0]))
		}
	}
	for i, v := range ip.Vertices {
		if len(v) != 2 && len(v) != 3 {
			return fmt.Errorf("vertex %d has %d coordinates, want 2 or 3", i, len(v))
		}
	}
	for i, c := range ip.Constraints {
		if c.Row < 0 || c.Col < 0 {
			return fmt.Errorf("constraint entry %d has a negative index", i)
		}
	}
	if ip.ParallelDegree < 0 {
		return fmt.Errorf("parallel degree %d is negative", ip.ParallelDegree)
	}
	if ip.ConditionLimit < 0 || math.IsNaN(ip.ConditionLimit) {
		return fmt.Errorf("condition limit %g should be a non-negative number", ip.ConditionLimit)
	}
	return
}

// VertexMatrix returns the vertices as a #V x 3 matrix, 2D vertices land in
// the z = 0 plane.
func (ip *ParamInput) VertexMatrix() (V *mat.Dense, err error) {
	if len(ip.Vertices) == 0 {
		return nil, fmt.Errorf("no vertices")
	}
	V = mat.NewDense(len(ip.Vertices), 3, nil)
	for i, v := range ip.Vertices {
		if len(v) != 2 && len(v) != 3 {
			return nil, fmt.Errorf("vertex %d has %d coordinates, want 2 or 3", i, len(v))
		}
		for j, x := range v {
			V.Set(i, j, x)
		}
	}
	return
}

// FieldMatrix returns the #F x 3N field for a mesh with nF faces.
func (ip *ParamInput) FieldMatrix(nF int) (field *mat.Dense, err error) {
	N := ip.Degree()
	if N == 0 || nF == 0 {
		return nil, fmt.Errorf("field degree %d with %d faces", N, nF)
	}
	field = mat.NewDense(nF, 3*N, nil)
	if len(ip.UniformField) != 0 {
		for i := 0; i < nF; i++ {
			for k, dir := range ip.UniformField {
				field.Set(i, 3*k, dir[0])
				field.Set(i, 3*k+1, dir[1])
				field.Set(i, 3*k+2, dir[2])
			}
		}
		return
	}
	if len(ip.Field) != nF {
		return nil, fmt.Errorf("field has %d rows, faces = %d", len(ip.Field), nF)
	}
	for i, row := range ip.Field {
		if len(row) != 3*N {
			return nil, fmt.Errorf("field row %d has %d values, want %d", i, len(row), 3*N)
		}
		field.SetRow(i, row)
	}
	return
}

// Weights returns the edge weights, unit weights for nE edges when none are
// given.
func (ip *ParamInput) Weights(nE int) (w []float64, err error) {
	if len(ip.EdgeWeights) == 0 {
		return utils.ConstArray(nE, 1), nil
	}
	if len(ip.EdgeWeights) != nE {
		return nil, fmt.Errorf("%d edge weights, edges = %d", len(ip.EdgeWeights), nE)
	}
	return ip.EdgeWeights, nil
}

// ConstraintMatrix builds the user constraints over nUnknowns columns. The
// row count is one past the largest row named, repeated entries are summed.
func (ip *ParamInput) ConstraintMatrix(nUnknowns int) (C utils.CSR, err error) {
	var nr int
	for i, c := range ip.Constraints {
		if c.Col >= nUnknowns {
			err = fmt.Errorf("constraint entry %d references unknown %d, unknowns = %d", i, c.Col, nUnknowns)
			return
		}
		if c.Row+1 > nr {
			nr = c.Row + 1
		}
	}
	T := utils.NewTriplets(nr, nUnknowns, len(ip.Constraints))
	for _, c := range ip.Constraints {
		T.Add(c.Row, c.Col, c.Value)
	}
	return T.ToCSR(), nil
}
