/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

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
	"fmt"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/dgsolve/gomcl/config"
	"github.com/dgsolve/gomcl/element"
	"github.com/dgsolve/gomcl/hypsys"
	"github.com/dgsolve/gomcl/mcl"
	"github.com/dgsolve/gomcl/mesh"
	"github.com/dgsolve/gomcl/space"
	"github.com/dgsolve/gomcl/timestep"
	"github.com/dgsolve/gomcl/utils"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

// solveCmd represents the solve command
var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Run a model problem with convex limiting",
	Long: `
Builds a uniform line mesh (or reads an SU2 triangle mesh), assembles
the limited evolution operator and advances the selected system to the
final time with SSP-RK3,

gomcl solve -I input.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			icf string
		)
		if icf, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		ip := config.DefaultParameters()
		if len(icf) != 0 {
			var data []byte
			if data, err = os.ReadFile(icf); err != nil {
				panic(err)
			}
			if err = ip.Parse(data); err != nil {
				panic(err)
			}
		}
		if prof, _ := cmd.Flags().GetBool("profile"); prof {
			defer profile.Start().Stop()
		}
		ip.Print()
		RunSolve(ip)
	},
}

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- CFL\n\t- System\n\t- Limiter")
	solveCmd.Flags().Bool("profile", false, "write a CPU profile of the run")
}

func RunSolve(ip *config.InputParameters) {
	var (
		msh *mesh.Mesh
		re  *element.RefElement
	)
	if len(ip.MeshFile) != 0 {
		msh = mesh.ReadSU2(ip.MeshFile)
		re = element.NewTriangle()
	} else {
		msh = mesh.NewMesh1D(ip.XMin, ip.XMax, ip.NumElements, ip.Periodic)
		re = element.NewSegment(ip.PolynomialOrder)
	}
	var (
		sp  = space.NewSpace(msh, re)
		sys = makeSystem(ip)
		np  = ip.ParallelDegree
	)
	if np <= 0 {
		np = runtime.NumCPU()
		if np > msh.K {
			np = msh.K
		}
	}
	opts := mcl.Options{
		Lumping: element.NewLumping(ip.Lumping),
		Mode:    mcl.NewLimitMode(ip.Limiter),
		BCs:     makeBCs(ip, sys),
	}
	op := mcl.NewParallelEvolution(sp, sys, opts, np)
	U := initialState(ip, sp, sys)
	fmt.Printf("System: %s, K = %d, N = %d, NP = %d\n", ip.System, msh.K, ip.PolynomialOrder, np)

	start := time.Now()
	it := &timestep.Integrator{
		Op:        op,
		CFL:       ip.CFL,
		FinalTime: ip.FinalTime,
		MaxSteps:  ip.MaxSteps,
		Verbose:   true,
	}
	tFinal, steps := it.Run(U)
	elapsed := time.Since(start)
	fmt.Printf("Time = %8.4f in %d steps, elapsed = %v\n", tFinal, steps, elapsed)
	for n := range U {
		fmt.Printf("q[%d]: min = %8.5f, max = %8.5f\n", n, U[n].Min(), U[n].Max())
	}
	if ip.System == "euler1d" && !ip.Periodic && len(ip.MeshFile) == 0 {
		reportSodError(ip, sp, U, tFinal)
	}
}

// reportSodError prints the mass-weighted L1 density error against the
// exact shock tube solution.
func reportSodError(ip *config.InputParameters, sp *space.Space, U []utils.Matrix, tFinal float64) {
	var (
		sod       = hypsys.NewSodSolution(ip.Gamma, 0.5*(ip.XMin+ip.XMax), tFinal)
		err, mass float64
	)
	for k := 0; k < sp.K; k++ {
		for i := 0; i < sp.Np; i++ {
			rho, _, _ := sod.At(sp.X.At(i, k))
			err += math.Abs(U[0].DataP[k+i*sp.K] - rho)
			mass++
		}
	}
	fmt.Printf("Sod L1 density error = %8.5f\n", err/mass)
}

func makeSystem(ip *config.InputParameters) hypsys.System {
	switch ip.System {
	case "advection":
		var ax, ay float64 = 1, 0
		if len(ip.Velocity) > 0 {
			ax = ip.Velocity[0]
		}
		if len(ip.Velocity) > 1 {
			ay = ip.Velocity[1]
		}
		return hypsys.NewAdvection(ax, ay)
	case "burgers":
		return hypsys.NewBurgers()
	case "euler1d":
		return hypsys.NewEuler1D(ip.Gamma)
	default:
		panic(fmt.Errorf("unknown system %q", ip.System))
	}
}

func makeBCs(ip *config.InputParameters, sys hypsys.System) map[mesh.BCTag]mcl.BoundaryCondition {
	bcs := make(map[mesh.BCTag]mcl.BoundaryCondition)
	if len(ip.FarField) == sys.NumComponents() {
		bcs[mesh.BCFar] = &mcl.FixedState{Q: append([]float64{}, ip.FarField...)}
	} else {
		bcs[mesh.BCFar] = &mcl.Extrapolate{}
	}
	return bcs
}

// initialState seeds a sine profile for the scalar systems and the Sod
// shock tube for Euler.
func initialState(ip *config.InputParameters, sp *space.Space, sys hypsys.System) (U []utils.Matrix) {
	var (
		nc = sys.NumComponents()
		K  = sp.K
		Np = sp.Np
	)
	U = make([]utils.Matrix, nc)
	for n := 0; n < nc; n++ {
		U[n] = utils.NewMatrix(Np, K)
	}
	for k := 0; k < K; k++ {
		for i := 0; i < Np; i++ {
			var (
				x   = sp.X.At(i, k)
				ind = k + i*K
			)
			switch s := sys.(type) {
			case *hypsys.Euler1D:
				var rho, p float64 = 1, 1
				if x > 0.5*(ip.XMin+ip.XMax) {
					rho, p = 0.125, 0.1
				}
				U[0].DataP[ind] = rho
				U[1].DataP[ind] = 0
				U[2].DataP[ind] = p / (s.Gamma - 1)
			default:
				xr := (x - ip.XMin) / (ip.XMax - ip.XMin)
				U[0].DataP[ind] = math.Sin(2 * math.Pi * xr)
			}
		}
	}
	return
}
