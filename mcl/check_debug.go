//go:build mclcheck

package mcl

import "fmt"

func checkArena(fa *FluxArena, k, i, j, n int) {
	if k < 0 || k >= fa.K || i < 0 || i >= fa.Np || j < 0 || j >= fa.Np || n < 0 || n >= fa.Nc {
		panic(fmt.Errorf("flux arena index (%d,%d,%d,%d) out of range (%d,%d,%d,%d)",
			k, i, j, n, fa.K, fa.Np, fa.Np, fa.Nc))
	}
}

func checkIndex4(k, i, j, kmax, npmax int) {
	if k < 0 || k >= kmax || i < 0 || i >= npmax || j < 0 || j >= npmax {
		panic(fmt.Errorf("gradient coefficient index (%d,%d,%d) out of range (%d,%d)",
			k, i, j, kmax, npmax))
	}
}
