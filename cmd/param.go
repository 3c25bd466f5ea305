/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ghodss/yaml"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/godirectional/InputParameters"
	"github.com/notargets/godirectional/parameterize"
	"github.com/notargets/godirectional/readfiles"
	"github.com/notargets/godirectional/topology"
	"github.com/notargets/godirectional/utils"
)

type ModelParam struct {
	InputFile      string
	GridFile       string
	CutMarker      string
	OutputFile     string
	Graph          bool
	PlotPoints     bool
	Profile        string
	ParallelDegree int
}

// ParamOutput is written as YAML after a successful solve.
type ParamOutput struct {
	Title       string      `yaml:"Title"`
	Functions   int         `yaml:"Functions"`
	Unknowns    int         `yaml:"Unknowns"`
	Patches     int         `yaml:"Patches"`
	CornerUV    [][]float64 `yaml:"CornerUV"` // Row 3f+j is corner j of face f
	X           []float64   `yaml:"X"`
	Multipliers []float64   `yaml:"Multipliers"`
	RCond       float64     `yaml:"RCond"`
	Residual    float64     `yaml:"Residual"`
}

// ParamCmd represents the param command
var ParamCmd = &cobra.Command{
	Use:   "param",
	Short: "Parameterize a triangle mesh from a directional field",
	Long: `
Solves the constrained least squares problem for the corner functions of a
directional field and writes them as YAML. The mesh comes from the input file
or from an SU2 grid, the cut from CutEdges and optionally an SU2 marker.

godirectional param -I problem.yaml [-F grid.su2 --cutMarker Cut] [-o out.yaml]`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			ip  *InputParameters.ParamInput
			out *ParamOutput
		)
		mp := &ModelParam{}
		mp.InputFile, _ = cmd.Flags().GetString("inputFile")
		mp.GridFile, _ = cmd.Flags().GetString("gridFile")
		mp.CutMarker, _ = cmd.Flags().GetString("cutMarker")
		mp.OutputFile, _ = cmd.Flags().GetString("outputFile")
		mp.Graph, _ = cmd.Flags().GetBool("graph")
		mp.PlotPoints, _ = cmd.Flags().GetBool("plotPoints")
		mp.Profile, _ = cmd.Flags().GetString("profile")
		mp.ParallelDegree = viper.GetInt("parallelDegree")
		if ip, err = processParamInput(mp); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		if viper.GetBool("verbose") {
			ip.Print()
		}
		switch mp.Profile {
		case "cpu":
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
		}
		if out, err = RunParam(mp, ip); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		if len(mp.OutputFile) == 0 {
			var data []byte
			if data, err = yaml.Marshal(out); err != nil {
				panic(err)
			}
			fmt.Print(string(data))
		}
		if mp.Graph {
			if _, err = readfiles.PlotUV(mat.NewDense(len(out.CornerUV), out.Functions, flatten(out.CornerUV)),
				nil, mp.PlotPoints); err != nil {
				fmt.Printf("error: %s\n", err.Error())
				os.Exit(1)
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			fmt.Println("interrupt to exit")
			<-ctx.Done()
		}
	},
}

func init() {
	rootCmd.AddCommand(ParamCmd)
	ParamCmd.Flags().StringP("inputFile", "I", "", "YAML file with the field, weights, cut and constraints")
	ParamCmd.Flags().StringP("gridFile", "F", "", "Grid file to read in SU2 (.su2) format, replaces Vertices and Faces")
	ParamCmd.Flags().String("cutMarker", "", "SU2 marker whose edges are added to the cut")
	ParamCmd.Flags().StringP("outputFile", "o", "", "YAML file for the corner values, stdout when empty")
	ParamCmd.Flags().BoolP("graph", "g", false, "display the first two corner functions as a mesh")
	ParamCmd.Flags().Bool("plotPoints", false, "draw the corners when graphing")
	ParamCmd.Flags().String("profile", "", "write a pprof profile of the run: cpu or mem")
	ParamCmd.Flags().IntP("parallelDegree", "p", 0, "workers for operator assembly, overrides the input file")
	_ = viper.BindPFlag("parallelDegree", ParamCmd.Flags().Lookup("parallelDegree"))
}

func processParamInput(mp *ModelParam) (ip *InputParameters.ParamInput, err error) {
	var (
		data []byte
	)
	if len(mp.InputFile) == 0 {
		exampleFile := `
########################################
Title: "Two triangles"
Vertices: [[0, 0], [1, 0], [1, 1], [0, 1]]
Faces: [[0, 1, 2], [0, 2, 3]]
UniformField: [[1, 0, 0], [0, 1, 0]]
CutEdges: [[0, 2]] # Optional
ParallelDegree: 1
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		return nil, fmt.Errorf("must supply an input parameters file (-I, --inputFile) in YAML format")
	}
	if data, err = os.ReadFile(mp.InputFile); err != nil {
		return
	}
	ip = &InputParameters.ParamInput{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", mp.InputFile, err)
	}
	if err = ip.Validate(); err != nil {
		return nil, err
	}
	return
}

// ParamProblem is an assembled run: the layout built from the mesh and the
// cut, and the inputs and options for the solve.
type ParamProblem struct {
	Layout  *topology.Layout
	Input   parameterize.Input
	Options []parameterize.Option
}

func BuildProblem(mp *ModelParam, ip *InputParameters.ParamInput) (pp *ParamProblem, err error) {
	var (
		V       *mat.Dense
		F       = ip.Faces
		cut     = ip.CutEdges
		N       = ip.Degree()
		weights []float64
		C       utils.CSR
	)
	if len(mp.GridFile) != 0 {
		var m *readfiles.Mesh
		if m, err = readfiles.ReadSU2(mp.GridFile); err != nil {
			return
		}
		V, F = mat.NewDense(len(m.V), 3, nil), m.F
		for i, v := range m.V {
			V.SetRow(i, v[:])
		}
		if len(mp.CutMarker) != 0 {
			edges, ok := m.Markers[mp.CutMarker]
			if !ok {
				return nil, fmt.Errorf("grid file has no marker %s", mp.CutMarker)
			}
			cut = append(append([][2]int{}, cut...), edges...)
		}
	} else if V, err = ip.VertexMatrix(); err != nil {
		return
	}
	pp = &ParamProblem{}
	nV, _ := V.Dims()
	if pp.Layout, err = topology.NewLayout(F, nV, N, cut); err != nil {
		return nil, err
	}
	l := pp.Layout
	if weights, err = ip.Weights(l.NumEdges()); err != nil {
		return nil, err
	}
	if C, err = ip.ConstraintMatrix(l.NumUnknowns()); err != nil {
		return nil, err
	}
	if !ip.FreeGauge {
		if C, err = topology.StackConstraints(l.NumUnknowns(), C, l.Pins); err != nil {
			return nil, err
		}
	}
	pp.Input = parameterize.Input{
		V:           V,
		F:           F,
		FE:          l.FE,
		EdgeWeights: weights,
		VtoC:        l.P,
	}
	if pp.Input.Field, err = ip.FieldMatrix(len(F)); err != nil {
		return nil, err
	}
	if nC, _ := C.Dims(); nC != 0 {
		pp.Input.Constraints = C
	}
	pd := ip.ParallelDegree
	if mp.ParallelDegree > 0 {
		pd = mp.ParallelDegree
	}
	pp.Options = append(pp.Options, parameterize.WithParallelDegree(pd),
		parameterize.WithConditionLimit(ip.ConditionLimit))
	if ip.WeightedRHS {
		pp.Options = append(pp.Options, parameterize.WithWeightedRHS())
	}
	if ip.RankCheck {
		pp.Options = append(pp.Options, parameterize.WithRankCheck())
	}
	return
}

func RunParam(mp *ModelParam, ip *InputParameters.ParamInput) (out *ParamOutput, err error) {
	var (
		pp  *ParamProblem
		res *parameterize.Result
	)
	if pp, err = BuildProblem(mp, ip); err != nil {
		return
	}
	if res, err = parameterize.Parameterize(pp.Input, pp.Options...); err != nil {
		return
	}
	_, nc := res.CornerUV.Dims()
	out = &ParamOutput{
		Title:       ip.Title,
		Functions:   nc,
		Unknowns:    len(res.X),
		Patches:     pp.Layout.NComp,
		CornerUV:    utils.ReshapeRows(res.CornerUV.RawMatrix().Data, nc),
		X:           res.X,
		Multipliers: res.Multipliers,
		RCond:       res.RCond,
		Residual:    res.Residual,
	}
	utils.Logger().Info("parameterized", "title", ip.Title, "faces", len(pp.Input.F),
		"unknowns", out.Unknowns, "patches", out.Patches, "rcond", out.RCond, "residual", out.Residual)
	utils.Logger().Debug("memory", "usage", utils.GetMemUsage())
	if len(mp.OutputFile) != 0 {
		var data []byte
		if data, err = yaml.Marshal(out); err != nil {
			return nil, err
		}
		if err = os.WriteFile(mp.OutputFile, data, 0644); err != nil {
			return nil, err
		}
	}
	return
}

func flatten(rows [][]float64) (data []float64) {
	for _, r := range rows {
		data = append(data, r...)
	}
	return
}
