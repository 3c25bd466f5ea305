package readfiles

import (
	"fmt"
	"image/color"

	"github.com/notargets/avs/chart2d"
	graphics2D "github.com/notargets/avs/geometry"
	utils2 "github.com/notargets/avs/utils"
	"gonum.org/v1/gonum/mat"
)

// UVTriMesh lays the corner values of a parameterization out as a triangle
// mesh in the plane of the first two functions. Corner j of face f becomes
// point 3f+j, so every face keeps its own copy of a seam vertex. faceAttr
// colors the faces, one value per face, and may be nil.
func UVTriMesh(cornerUV mat.Matrix, faceAttr []float64) (trimesh graphics2D.TriMesh, err error) {
	var (
		nr, nc = cornerUV.Dims()
		K      = nr / 3
	)
	if nc < 2 || nr%3 != 0 {
		return trimesh, fmt.Errorf("corner values should be (3F)x(N>=2), have %dx%d", nr, nc)
	}
	if faceAttr != nil && len(faceAttr) != K {
		return trimesh, fmt.Errorf("have %d face attributes for %d faces", len(faceAttr), K)
	}
	points := make([]graphics2D.Point, nr)
	for i := 0; i < nr; i++ {
		points[i].X[0] = float32(cornerUV.At(i, 0))
		points[i].X[1] = float32(cornerUV.At(i, 1))
	}
	trimesh.Triangles = make([]graphics2D.Triangle, K)
	trimesh.Attributes = make([][]float32, K)
	for k := 0; k < K; k++ {
		trimesh.Attributes[k] = make([]float32, 3)
		for i := 0; i < 3; i++ {
			trimesh.Triangles[k].Nodes[i] = int32(3*k + i)
			if faceAttr != nil {
				trimesh.Attributes[k][i] = float32(faceAttr[k])
			}
		}
	}
	trimesh.Geometry = points
	return
}

// PlotUV opens a chart of the parameterized mesh, faces colored by faceAttr.
func PlotUV(cornerUV mat.Matrix, faceAttr []float64, plotPoints bool) (chart *chart2d.Chart2D, err error) {
	var (
		trimesh graphics2D.TriMesh
		maxAttr = 1.
	)
	if trimesh, err = UVTriMesh(cornerUV, faceAttr); err != nil {
		return
	}
	for _, a := range faceAttr {
		if a > maxAttr {
			maxAttr = a
		}
	}
	colorMap := utils2.NewColorMap(0, float32(maxAttr), 1)
	box := graphics2D.NewBoundingBox(trimesh.GetGeometry())
	box = box.Scale(1.5)
	chart = chart2d.NewChart2D(1920, 1920, box.XMin[0], box.XMax[0], box.XMin[1], box.XMax[1])
	chart.AddColorMap(colorMap)
	go chart.Plot()
	white := color.RGBA{
		R: 255,
		G: 255,
		B: 255,
		A: 0,
	}
	black := color.RGBA{
		R: 0,
		G: 0,
		B: 0,
		A: 0,
	}
	if err = chart.AddTriMesh("UV", trimesh,
		chart2d.CrossGlyph, chart2d.Solid, white); err != nil {
		return nil, fmt.Errorf("unable to add graph series: %w", err)
	}
	var ptsGlyph chart2d.GlyphType
	ptsGlyph = chart2d.NoGlyph
	if plotPoints {
		ptsGlyph = chart2d.CircleGlyph
	}
	nr, _ := cornerUV.Dims()
	U, W := make([]float64, nr), make([]float64, nr)
	for i := range U {
		U[i], W[i] = cornerUV.At(i, 0), cornerUV.At(i, 1)
	}
	if err = chart.AddSeries("Corners", U, W,
		ptsGlyph, chart2d.NoLine, black); err != nil {
		return nil, err
	}
	return
}
