package config

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type InputParameters struct {
	Title           string    `yaml:"Title"`
	CFL             float64   `yaml:"CFL"`
	FinalTime       float64   `yaml:"FinalTime"`
	PolynomialOrder int       `yaml:"PolynomialOrder"`
	NumElements     int       `yaml:"NumElements"`
	XMin            float64   `yaml:"XMin"`
	XMax            float64   `yaml:"XMax"`
	Periodic        bool      `yaml:"Periodic"`
	System          string    `yaml:"System"` // advection, burgers, euler1d
	Velocity        []float64 `yaml:"Velocity"`
	Gamma           float64   `yaml:"Gamma"`
	Limiter         string    `yaml:"Limiter"` // limited, highorder, loworder
	Lumping         string    `yaml:"Lumping"` // rowsum, diagonal
	ParallelDegree  int       `yaml:"ParallelDegree"`
	MaxSteps        int       `yaml:"MaxSteps"`
	FarField        []float64 `yaml:"FarField"`
	MeshFile        string    `yaml:"MeshFile"` // SU2 triangle mesh, overrides the line mesh
}

// DefaultParameters fills the knobs most inputs leave out.
func DefaultParameters() *InputParameters {
	return &InputParameters{
		Title:           "gomcl",
		CFL:             0.5,
		FinalTime:       1,
		PolynomialOrder: 3,
		NumElements:     20,
		XMin:            0,
		XMax:            1,
		System:          "advection",
		Velocity:        []float64{1, 0},
		Gamma:           1.4,
		Limiter:         "limited",
		Lumping:         "rowsum",
		ParallelDegree:  1,
	}
}

func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%8.5f\t\t= CFL\n", ip.CFL)
	fmt.Printf("%8.5f\t\t= FinalTime\n", ip.FinalTime)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", ip.PolynomialOrder)
	fmt.Printf("[%d]\t\t\t\t= Num Elements\n", ip.NumElements)
	fmt.Printf("[%s]\t\t\t= System\n", ip.System)
	fmt.Printf("[%s]\t\t\t= Limiter\n", ip.Limiter)
	fmt.Printf("[%s]\t\t\t= Lumping\n", ip.Lumping)
	fmt.Printf("[%d]\t\t\t\t= Parallel Degree\n", ip.ParallelDegree)
}
