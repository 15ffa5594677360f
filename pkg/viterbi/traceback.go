package viterbi

// stateMask masks a state value to K-1 bits.
const stateMask = S - 1

// Chainback walks the decision buffer backward from endstate for nbits
// steps and writes out the nbits most recently decoded input bits, earliest
// first. Output bytes are packed MSB-first: bit 7 of data[0] is the
// earliest bit of the window. A caller decoding a zero-flushed frame passes
// the full padded step count as nbits and endstate 0, then reads the data
// bits off the front of the buffer, ignoring the trailing flush zeros.
//
// If endstate is negative, the terminal state is found by a best-path
// search over the current old-metric array (slow, O(S)). Chainback does not
// mutate any decoder state; it is safe to call repeatedly over the same
// window as long as no intervening UpdateBlock has overwritten the slots
// being read.
func (d *Decoder) Chainback(data []byte, nbits int, endstate int32) error {
	if d == nil {
		return ErrNilDecoder
	}
	if nbits == 0 {
		return nil
	}
	if nbits > d.profile.Len {
		return ErrTracebackTooLong
	}
	if nbits%8 != 0 {
		return ErrBitCountNotByteAligned
	}
	if len(data) < nbits/8 {
		return ErrShortOutputBuffer
	}

	state := d.resolveEndstate(endstate)

	slot := d.slot
	var dbyte byte
	for i := nbits - 1; i >= 0; i-- {
		dbyte = byte((state&1)<<7) | (dbyte >> 1)
		if i&7 == 0 {
			data[i/8] = dbyte
		}

		slot--
		if slot < 0 {
			slot = d.profile.Len - 1
		}
		bit := decisionBit(d.decisions[slot], state)
		state = (bit << (K - 2)) | (state >> 1)
	}
	return nil
}

// DecodeBit walks back delay steps from the current slot without writing
// output, returning the last decoded bit observed. Used for sliding-window
// decoding where the caller wants one bit at a time rather than a whole
// block. endstate < 0 triggers a best-path search.
func (d *Decoder) DecodeBit(delay int, endstate int32) (int, error) {
	if d == nil {
		return 0, ErrNilDecoder
	}

	state := d.resolveEndstate(endstate)
	slot := d.slot
	bit := uint32(0)
	for delay > 0 {
		delay--
		slot--
		if slot < 0 {
			slot = d.profile.Len - 1
		}
		bit = decisionBit(d.decisions[slot], state)
		state = (bit << (K - 2)) | (state >> 1)
	}
	return int(bit), nil
}

// DecodeWord performs the same walk as DecodeBit but packs 64 consecutive
// decoded bits into a uint64, most-significant bit produced first.
func (d *Decoder) DecodeWord(delay int, endstate int32) (uint64, error) {
	if d == nil {
		return 0, ErrNilDecoder
	}

	state := d.resolveEndstate(endstate)
	slot := d.slot
	var result uint64
	for delay > 0 {
		delay--
		slot--
		if slot < 0 {
			slot = d.profile.Len - 1
		}
		bit := decisionBit(d.decisions[slot], state)
		state = (bit << (K - 2)) | (state >> 1)
		result = (uint64(bit) << 63) | (result >> 1)
	}
	return result, nil
}

// resolveEndstate masks a non-negative endstate to K-1 bits, or, if
// endstate < 0, runs the O(S) best-path search over the current old-metric
// array.
func (d *Decoder) resolveEndstate(endstate int32) uint32 {
	if endstate >= 0 {
		return uint32(endstate) & stateMask
	}
	return d.bestPathState()
}

// bestPathState returns the state with the minimum current old metric.
func (d *Decoder) bestPathState() uint32 {
	best := uint32(0)
	bestMetric := d.old[0]
	for i := 1; i < S; i++ {
		if d.old[i] < bestMetric {
			bestMetric = d.old[i]
			best = uint32(i)
		}
	}
	return best
}
