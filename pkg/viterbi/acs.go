package viterbi

import (
	"math"
	"runtime"

	"github.com/sourcegraph/conc"
)

// butterflyChunk is the number of butterflies whose decision bits pack into
// a single uint64 decision word (two bits per butterfly). Work is always
// split on multiples of this so that concurrent workers never OR bits into
// the same word.
const butterflyChunk = 32

// UpdateBlock runs nbits steps of the ACS recursion, consuming 2*nbits
// symbols from syms (generator-0, generator-1 pairs). It returns the number
// of renormalizations that fired during this call. UpdateBlock is
// synchronous: it does not return until all nbits steps, including any
// fanned-out butterfly work, have completed.
func (d *Decoder) UpdateBlock(syms []uint8, nbits int) (int, error) {
	if d == nil {
		return 0, ErrNilDecoder
	}
	if nbits == 0 {
		return 0, nil
	}
	if len(syms)%2 != 0 {
		return 0, ErrOddSymbolLength
	}
	if len(syms) < 2*nbits {
		return 0, ErrShortSymbolBuffer
	}

	workers := d.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > B/butterflyChunk {
		workers = B / butterflyChunk
	}
	if workers < 1 {
		workers = 1
	}

	renormalizations := 0
	for step := 0; step < nbits; step++ {
		sym0, sym1 := syms[2*step], syms[2*step+1]
		record := d.decisions[d.slot]
		for i := range record {
			record[i] = 0
		}

		d.runButterflies(sym0, sym1, record, workers)

		if d.new[0] >= d.profile.renormThreshold() {
			d.renormals += d.renormalize()
			renormalizations++
		}

		d.old, d.new = d.new, d.old
		d.slot = (d.slot + 1) % d.profile.Len
		d.stepsProcessed++
	}

	return renormalizations, nil
}

// runButterflies processes all B butterflies of one step, fanning the work
// out across a bounded pool of goroutines. Each butterfly i reads old[i]
// and old[i+B] and writes new[2i], new[2i+1], and the two decision bits for
// states 2i and 2i+1, all disjoint from every other butterfly's reads and
// writes, so chunks may run fully in parallel.
func (d *Decoder) runButterflies(sym0, sym1 uint8, record []uint64, workers int) {
	if workers == 1 {
		processButterflies(0, B, sym0, sym1, d.branch, d.old, d.new, record)
		return
	}

	chunk := (B/workers + butterflyChunk - 1) / butterflyChunk * butterflyChunk
	if chunk == 0 {
		chunk = butterflyChunk
	}

	var wg conc.WaitGroup
	for lo := 0; lo < B; lo += chunk {
		hi := lo + chunk
		if hi > B {
			hi = B
		}
		lo, hi := lo, hi
		wg.Go(func() {
			processButterflies(lo, hi, sym0, sym1, d.branch, d.old, d.new, record)
		})
	}
	wg.Wait()
}

// processButterflies runs the ACS recursion for butterflies in [lo, hi).
func processButterflies(lo, hi int, sym0, sym1 uint8, bt *branchTable, old, new []int16, record []uint64) {
	for i := lo; i < hi; i++ {
		m := int32(bt.gen0[i]^sym0) + int32(bt.gen1[i]^sym1)
		mc := 510 - m

		a0 := saturatingAdd(old[i], m)
		a1 := saturatingAdd(old[i+B], mc)
		a2 := saturatingAdd(old[i], mc)
		a3 := saturatingAdd(old[i+B], m)

		lowState := 2 * i
		highState := lowState + 1

		if a0 > a1 {
			new[lowState] = a1
			setDecisionBit(record, lowState)
		} else {
			new[lowState] = a0
		}

		if a2 > a3 {
			new[highState] = a3
			setDecisionBit(record, highState)
		} else {
			new[highState] = a2
		}
	}
}

// saturatingAdd adds m (a non-negative branch metric, 0..510) to a and
// clamps the result to the int16 range, mirroring the SIMD variant's
// saturating signed add.
func saturatingAdd(a int16, m int32) int16 {
	sum := int32(a) + m
	if sum > math.MaxInt16 {
		return math.MaxInt16
	}
	if sum < math.MinInt16 {
		return math.MinInt16
	}
	return int16(sum)
}

func setDecisionBit(record []uint64, state int) {
	record[state/64] |= uint64(1) << uint(state%64)
}

func decisionBit(record []uint64, state uint32) uint32 {
	return uint32(record[state/64]>>(state%64)) & 1
}
