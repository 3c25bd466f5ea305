// Package topology builds the inputs the parameterization consumes but does
// not derive itself: edge tables, vertex copies separated by a cut, the
// vertex-to-corner map and gauge constraints.
package topology

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrBadFace         = errors.New("topology: bad face")
	ErrNonManifoldEdge = errors.New("topology: edge shared by more than two faces")
)

// EdgeNumber packs the two vertices of an edge, smallest first, into one key.
type EdgeNumber uint64

func NewEdgeNumber(verts [2]int) (packed EdgeNumber) {
	var (
		limit = math.MaxUint32
	)
	for _, vert := range verts {
		if vert < 0 || vert > limit {
			panic(fmt.Errorf("unable to pack two ints into a uint64, have %d and %d as inputs",
				verts[0], verts[1]))
		}
	}
	var i1, i2 int
	if verts[0] < verts[1] {
		i1, i2 = verts[0], verts[1]
	} else {
		i1, i2 = verts[1], verts[0]
	}
	packed = EdgeNumber(i1 + i2<<32)
	return
}

func (en EdgeNumber) GetVertices() (verts [2]int) {
	var (
		enTmp = en >> 32
	)
	verts[1] = int(enTmp)
	verts[0] = int(en - enTmp*(1<<32))
	return
}

type Topology struct {
	NV, NF int
	EV     [][2]int // vertices of each edge, smallest first
	EF     [][2]int // faces of each edge in order of appearance, -1 when on the boundary
	FE     [][3]int // edge of local edge j, which joins corner j to corner (j+1)%3
	Edges  map[EdgeNumber]int
}

// EdgeTopology numbers the edges of F in order of first appearance.
func EdgeTopology(F [][3]int, nV int) (t *Topology, err error) {
	t = &Topology{
		NV:    nV,
		NF:    len(F),
		FE:    make([][3]int, len(F)),
		Edges: make(map[EdgeNumber]int, 3*len(F)/2+1),
	}
	for k, tri := range F {
		for j := 0; j < 3; j++ {
			if tri[j] < 0 || tri[j] >= nV {
				return nil, fmt.Errorf("%w: face %d references vertex %d, vertices = %d", ErrBadFace, k, tri[j], nV)
			}
			if tri[j] == tri[(j+1)%3] {
				return nil, fmt.Errorf("%w: face %d repeats vertex %d", ErrBadFace, k, tri[j])
			}
		}
		for j := 0; j < 3; j++ {
			en := NewEdgeNumber([2]int{tri[j], tri[(j+1)%3]})
			ie, ok := t.Edges[en]
			if !ok {
				ie = len(t.EV)
				t.Edges[en] = ie
				t.EV = append(t.EV, en.GetVertices())
				t.EF = append(t.EF, [2]int{k, -1})
			} else {
				if t.EF[ie][1] != -1 {
					return nil, fmt.Errorf("%w: edge %v", ErrNonManifoldEdge, t.EV[ie])
				}
				t.EF[ie][1] = k
			}
			t.FE[k][j] = ie
		}
	}
	return
}

func (t *Topology) NumEdges() int { return len(t.EV) }

// IsBoundary reports whether edge ie has a single adjacent face.
func (t *Topology) IsBoundary(ie int) bool { return t.EF[ie][1] == -1 }

// EdgeIndex returns the edge joining v1 and v2.
func (t *Topology) EdgeIndex(v1, v2 int) (ie int, ok bool) {
	if v1 < 0 || v2 < 0 {
		return -1, false
	}
	ie, ok = t.Edges[NewEdgeNumber([2]int{v1, v2})]
	return
}
