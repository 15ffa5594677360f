package viterbi

import "math"

// renormalize subtracts the minimum current metric (brought down to
// math.MinInt16) from every state's new metric, returning the adjustment
// applied. The subtraction is done in int32 headroom since the adjustment
// can exceed half the int16 range; a saturating subtract would clamp it
// incorrectly.
func (d *Decoder) renormalize() int64 {
	min := d.new[0]
	for _, m := range d.new[1:] {
		if m < min {
			min = m
		}
	}

	adjust := int32(min) - math.MinInt16
	if adjust == 0 {
		return 0
	}

	for i, m := range d.new {
		d.new[i] = int16(int32(m) - adjust)
	}

	return int64(adjust)
}
