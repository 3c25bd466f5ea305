package topology

import (
	"fmt"
)

type disjointSet struct {
	parent, rank []int
}

func newDisjointSet(n int) *disjointSet {
	ds := &disjointSet{parent: make([]int, n), rank: make([]int, n)}
	for i := range ds.parent {
		ds.parent[i] = i
	}
	return ds
}

func (ds *disjointSet) find(u int) int {
	for ds.parent[u] != u {
		ds.parent[u] = ds.parent[ds.parent[u]]
		u = ds.parent[u]
	}
	return u
}

func (ds *disjointSet) union(u, v int) {
	ru, rv := ds.find(u), ds.find(v)
	switch {
	case ru == rv:
	case ds.rank[ru] < ds.rank[rv]:
		ds.parent[ru] = rv
	case ds.rank[ru] > ds.rank[rv]:
		ds.parent[rv] = ru
	default:
		ds.parent[rv] = ru
		ds.rank[ru]++
	}
}

// labels numbers the sets consecutively in order of their first member.
func (ds *disjointSet) labels() (label []int, n int) {
	var (
		root = make(map[int]int)
	)
	label = make([]int, len(ds.parent))
	for i := range ds.parent {
		r := ds.find(i)
		l, ok := root[r]
		if !ok {
			l = n
			root[r] = l
			n++
		}
		label[i] = l
	}
	return
}

// Cut is a set of edge indices across which corner values are independent.
type Cut map[int]bool

// NewCut looks up the edges joining each vertex pair.
func NewCut(t *Topology, pairs [][2]int) (c Cut, err error) {
	c = make(Cut, len(pairs))
	for _, p := range pairs {
		ie, ok := t.EdgeIndex(p[0], p[1])
		if !ok {
			return nil, fmt.Errorf("%w: no edge joins vertices %d and %d", ErrBadFace, p[0], p[1])
		}
		c[ie] = true
	}
	return
}

// VertexCopies assigns every corner of F to a copy of its vertex. Corners
// around a vertex share a copy when they can be reached from each other across
// interior edges not in the cut. copyOf[f][j] is the copy of corner j of face f.
func VertexCopies(t *Topology, F [][3]int, cut Cut) (copyOf [][3]int, nCopies int) {
	var (
		ds = newDisjointSet(3 * len(F))
	)
	cornerOf := func(f, v int) int {
		for j := 0; j < 3; j++ {
			if F[f][j] == v {
				return 3*f + j
			}
		}
		panic(fmt.Errorf("vertex %d is not a corner of face %d", v, f))
	}
	for ie, ef := range t.EF {
		if ef[1] == -1 || cut[ie] {
			continue
		}
		for _, v := range t.EV[ie] {
			ds.union(cornerOf(ef[0], v), cornerOf(ef[1], v))
		}
	}
	label, nCopies := ds.labels()
	copyOf = make([][3]int, len(F))
	for f := range F {
		for j := 0; j < 3; j++ {
			copyOf[f][j] = label[3*f+j]
		}
	}
	return
}

// Components labels each face with the connected patch it belongs to once the
// mesh is opened along the cut.
func Components(t *Topology, cut Cut) (faceComp []int, nComp int) {
	ds := newDisjointSet(t.NF)
	for ie, ef := range t.EF {
		if ef[1] == -1 || cut[ie] {
			continue
		}
		ds.union(ef[0], ef[1])
	}
	return ds.labels()
}
