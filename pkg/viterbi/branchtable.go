package viterbi

import "math/bits"

// branchTable holds, for each of the B butterflies, the expected antipodal
// symbol (0 or 255) for each of the two generator polynomials. It is owned
// by exactly one Decoder and never shared, so two decoders built from
// different profiles can never race on a common table.
type branchTable struct {
	gen0 []uint8
	gen1 []uint8
}

// parity returns the XOR of all set bits of x.
func parity(x uint32) bool {
	return bits.OnesCount32(x)&1 != 0
}

// buildBranchTable precomputes the B-entry branch table for p.
func buildBranchTable(p Profile) *branchTable {
	bt := &branchTable{
		gen0: make([]uint8, B),
		gen1: make([]uint8, B),
	}
	for i := 0; i < B; i++ {
		next := uint32(2 * i)
		if p.G1Flip != parity(next&p.Poly1) {
			bt.gen0[i] = 255
		}
		if p.G2Flip != parity(next&p.Poly2) {
			bt.gen1[i] = 255
		}
	}
	return bt
}
