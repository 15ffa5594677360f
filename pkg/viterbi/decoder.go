package viterbi

import "math"

// wordsPerRecord is the number of uint64 words needed to hold one decision
// bit per trellis state.
const wordsPerRecord = S / 64

// bias is the "infinity" value of the signed 16-bit metric representation.
const bias = math.MinInt16

// growthMargin is an upper bound on one-step metric growth (the branch
// metric's maximum value), used to bias every non-starting state away from
// the starting state during Init.
const growthMargin = 510

// Decoder owns the trellis state for one K=24, rate-1/2 Viterbi decode: two
// ping-pong path-metric arrays, a cyclic decision buffer, and the branch
// table derived from its Profile. A Decoder is not safe for concurrent use
// by multiple goroutines; each Decoder is a single mutable unit owned by one
// caller. Parallel frames want parallel Decoders.
type Decoder struct {
	profile Profile
	branch  *branchTable

	metricsA []int16
	metricsB []int16
	old      []int16
	new      []int16

	decisions [][]uint64 // len(decisions) == profile.Len, each wordsPerRecord long
	slot      int        // next slot to be written, mod profile.Len

	renormals      int64
	stepsProcessed int64 // cumulative symbol-pair steps since the last Init, never wraps

	workers int // fan-out width for the ACS loop; 0 means runtime.GOMAXPROCS(0)
}

// New allocates and initializes a Decoder from the given profile. The
// decision buffer alone is profile.Len * S/8 bytes (~1 MiB per slot at
// K=24); the two metric arrays together are 2*S*2 bytes (~32 MiB). Callers
// should size Len deliberately.
func New(p Profile) (*Decoder, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	d := &Decoder{
		profile:  p,
		branch:   buildBranchTable(p),
		metricsA: make([]int16, S),
		metricsB: make([]int16, S),
	}

	d.decisions = make([][]uint64, p.Len)
	for i := range d.decisions {
		d.decisions[i] = make([]uint64, wordsPerRecord)
	}

	d.Init(0)
	return d, nil
}

// Init resets the decoder to the start of a new frame: every state's old
// metric is set to bias+growthMargin except startingState, which is set to
// bias; the slot pointer and renormalization counter are reset. Init may be
// called again on a Decoder that has already processed symbols, to begin
// decoding a new independent frame with the same allocated buffers.
func (d *Decoder) Init(startingState uint32) {
	startingState &= S - 1

	for i := range d.metricsA {
		d.metricsA[i] = bias + growthMargin
	}
	d.metricsA[startingState] = bias
	for i := range d.metricsB {
		d.metricsB[i] = 0
	}

	d.old = d.metricsA
	d.new = d.metricsB
	d.slot = 0
	d.renormals = 0
	d.stepsProcessed = 0
}

// Len returns the depth of the decision buffer.
func (d *Decoder) Len() int { return d.profile.Len }

// Profile returns the profile the decoder was constructed from.
func (d *Decoder) Profile() Profile { return d.profile }

// Renormals returns the cumulative renormalization offset applied over the
// decoder's lifetime (since the last Init).
func (d *Decoder) Renormals() int64 {
	if d == nil {
		return 0
	}
	return d.renormals
}

// Snapshot is a point-in-time, read-only view of a Decoder's progress,
// intended for observability consumers (pkg/metrics, pkg/web) that must not
// otherwise reach into decoder internals.
type Snapshot struct {
	StepsProcessed int64
	Renormals      int64
	Slot           int
	MinMetric      int64
	MaxMetric      int64
}

// Snapshot captures the decoder's current progress. It is safe to call
// between UpdateBlock calls; calling it concurrently with an in-flight
// UpdateBlock is not supported, matching the rest of the Decoder API.
func (d *Decoder) Snapshot() Snapshot {
	min, _ := d.MinMetric()
	max, _ := d.MaxMetric()
	return Snapshot{
		StepsProcessed: d.stepsProcessed,
		Renormals:      d.renormals,
		Slot:           d.slot,
		MinMetric:      min,
		MaxMetric:      max,
	}
}

// Close releases nothing and always returns nil: the metric and decision
// slices are reclaimed by the garbage collector, and a Decoder holds no
// reference to a session ledger or status dashboard, so those are shut down
// through their own APIs (store.Store.Close, canceling the StatusServer's
// context).
func (d *Decoder) Close() error {
	return nil
}
