package topology

import (
	"github.com/notargets/godirectional/utils"
)

// Layout gathers everything derived from a face table and a cut: the edge
// topology, the vertex copies, the vertex-to-corner map and one gauge pin per
// patch and function.
type Layout struct {
	*Topology
	N        int
	Cut      Cut
	CopyOf   [][3]int
	NCopies  int
	FaceComp []int
	NComp    int
	P, Pins  utils.CSR
}

func NewLayout(F [][3]int, nV, N int, cutPairs [][2]int) (l *Layout, err error) {
	l = &Layout{N: N}
	if l.Topology, err = EdgeTopology(F, nV); err != nil {
		return nil, err
	}
	if l.Cut, err = NewCut(l.Topology, cutPairs); err != nil {
		return nil, err
	}
	l.CopyOf, l.NCopies = VertexCopies(l.Topology, F, l.Cut)
	l.FaceComp, l.NComp = Components(l.Topology, l.Cut)
	l.P = CornerMap(l.CopyOf, l.NCopies, N)
	l.Pins = PinConstraints(l.CopyOf, l.FaceComp, l.NComp, l.NCopies, N)
	utils.Logger().Debug("built layout",
		"faces", l.NF, "edges", l.NumEdges(), "cut", len(l.Cut), "copies", l.NCopies, "patches", l.NComp)
	return
}

func (l *Layout) NumUnknowns() int { return l.NCopies * l.N }

// Unknown is the column of function k at the copy of corner j of face f.
func (l *Layout) Unknown(f, j, k int) int { return l.CopyOf[f][j]*l.N + k }
