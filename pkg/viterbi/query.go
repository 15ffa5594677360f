package viterbi

// MaxMetric returns the largest current path metric plus the cumulative
// renormalization offset, making it meaningful across the decoder's whole
// lifetime rather than just since the last renormalization.
func (d *Decoder) MaxMetric() (int64, error) {
	if d == nil {
		return 0, ErrNilDecoder
	}
	best := d.old[0]
	for _, m := range d.old[1:] {
		if m > best {
			best = m
		}
	}
	return int64(best) + d.renormals, nil
}

// MinMetric returns the smallest current path metric plus the cumulative
// renormalization offset.
func (d *Decoder) MinMetric() (int64, error) {
	if d == nil {
		return 0, ErrNilDecoder
	}
	best := d.old[0]
	for _, m := range d.old[1:] {
		if m < best {
			best = m
		}
	}
	return int64(best) + d.renormals, nil
}
