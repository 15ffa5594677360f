// Package refenc implements a minimal rate-1/2, constraint-length-24
// convolutional encoder: a shift register of prior input bits XORed against
// two generator polynomials each step, taking its taps from a
// viterbi.Profile. It exists to produce known-good symbol streams for
// testing and benchmarking the decoder in package viterbi; it has no
// bearing on decoder state and is not part of the decoder's public
// contract.
package refenc

import (
	"math/bits"

	"github.com/dbehnke/viterbi224/pkg/viterbi"
)

// Encoder performs convolutional encoding matching the polynomials of a
// viterbi.Profile.
type Encoder struct {
	poly1, poly2   uint32
	g1Flip, g2Flip bool
}

// New builds an Encoder whose generator polynomials match p.
func New(p viterbi.Profile) *Encoder {
	return &Encoder{
		poly1:  p.Poly1,
		poly2:  p.Poly2,
		g1Flip: p.G1Flip,
		g2Flip: p.G2Flip,
	}
}

// EncodeBits runs nbits of data through the encoder's shift register,
// returning 2*nbits soft symbols in hard-decision antipodal form (each byte
// is 0 or 255). bits is a slice of 0/1 values, one per input bit; the
// caller is responsible for padding with K-1 trailing zero flush bits so a
// decoder can be chained back to a known terminal state.
func (e *Encoder) EncodeBits(bits []uint8) []uint8 {
	syms := make([]uint8, 2*len(bits))

	var shift uint32
	for i, b := range bits {
		shift = (shift << 1) | uint32(b&1)

		g1 := parity(shift & e.poly1)
		g2 := parity(shift & e.poly2)
		if e.g1Flip {
			g1 = !g1
		}
		if e.g2Flip {
			g2 = !g2
		}

		syms[2*i] = boolToSym(g1)
		syms[2*i+1] = boolToSym(g2)
	}
	return syms
}

func parity(x uint32) bool {
	return bits.OnesCount32(x)&1 != 0
}

func boolToSym(b bool) uint8 {
	if b {
		return 255
	}
	return 0
}
