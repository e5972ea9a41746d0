//go:build !mclcheck

package mcl

func checkArena(fa *FluxArena, k, i, j, n int) {}

func checkIndex4(k, i, j, kmax, npmax int) {}
