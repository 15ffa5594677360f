package viterbi

import "fmt"

// Constraint length and derived trellis dimensions. K is fixed at 24 for this
// decoder; arbitrary K at runtime is explicitly out of scope.
const (
	K = 24
	// S is the number of trellis states: 2^(K-1).
	S = 1 << (K - 1)
	// B is the number of butterflies per step: 2^(K-2).
	B = 1 << (K - 2)

	// defaultRenormThreshold is the shipped default for Profile.RenormThreshold.
	defaultRenormThreshold = 25000
)

// Profile bundles the polynomial/flip/length parameters a Decoder is built
// from. K itself is not part of a Profile: it is the package constant above.
type Profile struct {
	Name string

	// Poly1 and Poly2 are the K-bit generator polynomials.
	Poly1, Poly2 uint32

	// G1Flip and G2Flip invert the corresponding generator's branch table.
	G1Flip, G2Flip bool

	// Len is the depth of the cyclic decision buffer, in symbol-pair steps.
	Len int

	// RenormThreshold is the new[0] trigger for renormalization. Zero means
	// "use the shipped default" (defaultRenormThreshold).
	RenormThreshold int16
}

// DefaultProfile returns the K=24, rate-1/2 polynomial pair used throughout
// this codebase's tests: POLY1=0o42631773, POLY2=0o47245753, with the first
// generator inverted.
func DefaultProfile() Profile {
	return Profile{
		Name:            "k24-r12-default",
		Poly1:           0o42631773,
		Poly2:           0o47245753,
		G1Flip:          true,
		G2Flip:          false,
		Len:             1024,
		RenormThreshold: defaultRenormThreshold,
	}
}

// Validate checks that p is usable to construct a Decoder.
func (p Profile) Validate() error {
	if p.Len <= 0 {
		return fmt.Errorf("viterbi: profile %q: len must be positive, got %d", p.Name, p.Len)
	}
	if p.Poly1 == 0 || p.Poly2 == 0 {
		return fmt.Errorf("viterbi: profile %q: poly1 and poly2 must be non-zero", p.Name)
	}
	if p.Poly1>>K != 0 || p.Poly2>>K != 0 {
		return fmt.Errorf("viterbi: profile %q: polynomials must fit in %d bits", p.Name, K)
	}
	return nil
}

// renormThreshold returns the effective renormalization trigger for p.
func (p Profile) renormThreshold() int16 {
	if p.RenormThreshold == 0 {
		return defaultRenormThreshold
	}
	return p.RenormThreshold
}
