package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/notargets/godirectional/utils"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle      SU2ElementType = 5
	ELType_Quadrilateral SU2ElementType = 9
)

// Mesh is a triangle mesh read from a grid file. 2D grids are placed in the
// z = 0 plane. Markers holds the line elements of each MARKER_TAG as vertex
// pairs.
type Mesh struct {
	V       [][3]float64
	F       [][3]int
	Markers map[string][][2]int
}

func ReadSU2(filename string) (m *Mesh, err error) {
	var (
		file *os.File
	)
	utils.Logger().Debug("reading SU2 file", "name", filename)
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", filename, err)
	}
	defer file.Close()
	return ParseSU2(file)
}

func ParseSU2(r io.Reader) (m *Mesh, err error) {
	var (
		reader = bufio.NewReader(r)
		dim    int
	)
	m = &Mesh{}
	if dim, err = readNumber(reader); err != nil {
		return nil, err
	}
	if dim != 2 && dim != 3 {
		return nil, fmt.Errorf("unsupported dimensionality NDIME = %d", dim)
	}
	if m.F, err = readElements(reader); err != nil {
		return nil, err
	}
	if m.V, err = readVertices(reader, dim); err != nil {
		return nil, err
	}
	if m.Markers, err = readMarkers(reader); err != nil {
		return nil, err
	}
	if !utils.IsFinite(m.V) {
		return nil, fmt.Errorf("vertex coordinates are not finite")
	}
	for k, tri := range m.F {
		for _, iv := range tri {
			if iv < 0 || iv >= len(m.V) {
				return nil, fmt.Errorf("element %d references vertex %d, have %d vertices", k, iv, len(m.V))
			}
		}
	}
	utils.Logger().Debug("read SU2 grid", "dim", dim, "elements", len(m.F), "vertices", len(m.V), "markers", len(m.Markers))
	return
}

func readElements(reader *bufio.Reader) (F [][3]int, err error) {
	var (
		K          int
		nType      int
		v1, v2, v3 int
		line       string
	)
	if K, err = readNumber(reader); err != nil {
		return
	}
	F = make([][3]int, K)
	for k := 0; k < K; k++ {
		if line, err = getLine(reader); err != nil {
			return
		}
		if _, err = fmt.Sscanf(line, "%d %d %d %d", &nType, &v1, &v2, &v3); err != nil {
			return nil, fmt.Errorf("unable to read element %d from [%s]: %w", k, line, err)
		}
		if SU2ElementType(nType) != ELType_Triangle {
			return nil, fmt.Errorf("element %d has type %d, only triangles (%d) are supported", k, nType, ELType_Triangle)
		}
		F[k] = [3]int{v1, v2, v3}
	}
	return
}

func readVertices(reader *bufio.Reader, dim int) (V [][3]float64, err error) {
	var (
		Nv      int
		x, y, z float64
		line    string
	)
	if Nv, err = readNumber(reader); err != nil {
		return
	}
	V = make([][3]float64, Nv)
	for i := 0; i < Nv; i++ {
		if line, err = getLine(reader); err != nil {
			return
		}
		if dim == 3 {
			_, err = fmt.Sscanf(line, "%f %f %f", &x, &y, &z)
		} else {
			_, err = fmt.Sscanf(line, "%f %f", &x, &y)
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read coordinates of vertex %d from [%s]: %w", i, line, err)
		}
		V[i] = [3]float64{x, y, z}
	}
	return
}

func readMarkers(reader *bufio.Reader) (markers map[string][][2]int, err error) {
	var (
		nMark, nEdges int
		nType, v1, v2 int
		label, line   string
	)
	if nMark, err = readNumber(reader); err != nil {
		if err == io.EOF {
			return map[string][][2]int{}, nil
		}
		return
	}
	markers = make(map[string][][2]int, nMark)
	for n := 0; n < nMark; n++ {
		if label, err = readLabel(reader); err != nil {
			return
		}
		if nEdges, err = readNumber(reader); err != nil {
			return
		}
		for i := 0; i < nEdges; i++ {
			if line, err = getLine(reader); err != nil {
				return
			}
			if _, err = fmt.Sscanf(line, "%d %d %d", &nType, &v1, &v2); err != nil {
				return nil, fmt.Errorf("unable to read marker edge from [%s]: %w", line, err)
			}
			if SU2ElementType(nType) != ELType_LINE {
				return nil, fmt.Errorf("marker %s should only contain line elements", label)
			}
			// Repeated tags accumulate, periodic pairs come in two blocks
			markers[label] = append(markers[label], [2]int{v1, v2})
		}
	}
	return
}

func getToken(reader *bufio.Reader) (token string, err error) {
	var (
		line string
	)
	if line, err = getLineNoComments(reader); err != nil {
		return
	}
	ind := strings.Index(line, "=")
	if ind < 0 {
		err = fmt.Errorf("badly formed input line [%s], should have an =", line)
		return
	}
	token = line[ind+1:]
	return
}

func readLabel(reader *bufio.Reader) (label string, err error) {
	var (
		token string
	)
	if token, err = getToken(reader); err != nil {
		return
	}
	if _, err = fmt.Sscanf(token, "%s", &label); err != nil {
		err = fmt.Errorf("unable to read label from token: [%s]", token)
		return
	}
	label = strings.Trim(label, " ")
	return
}

func readNumber(reader *bufio.Reader) (num int, err error) {
	var (
		token string
	)
	if token, err = getToken(reader); err != nil {
		return
	}
	if _, err = fmt.Sscanf(token, "%d", &num); err != nil {
		err = fmt.Errorf("unable to read number from token: [%s]", token)
	}
	return
}

func getLineNoComments(reader *bufio.Reader) (line string, err error) {
	for {
		if line, err = getLine(reader); err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if len(line) != 0 && !strings.HasPrefix(line, "%") {
			return
		}
	}
}

func getLine(reader *bufio.Reader) (line string, err error) {
	line, err = reader.ReadString('\n')
	if err == io.EOF && len(line) != 0 {
		err = nil
	}
	line = strings.TrimRight(line, "\r\n")
	return
}
