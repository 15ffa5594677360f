package viterbi

import (
	"testing"
)

func smallProfile() Profile {
	p := DefaultProfile()
	p.Len = 64
	return p
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p Profile) Profile
		wantErr bool
	}{
		{"default ok", func(p Profile) Profile { return p }, false},
		{"zero len", func(p Profile) Profile { p.Len = 0; return p }, true},
		{"negative len", func(p Profile) Profile { p.Len = -1; return p }, true},
		{"zero poly1", func(p Profile) Profile { p.Poly1 = 0; return p }, true},
		{"zero poly2", func(p Profile) Profile { p.Poly2 = 0; return p }, true},
		{"oversized poly1", func(p Profile) Profile { p.Poly1 = 1 << K; return p }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.mutate(DefaultProfile())
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewRejectsZeroLen(t *testing.T) {
	p := DefaultProfile()
	p.Len = 0
	if _, err := New(p); err == nil {
		t.Fatal("New() with Len=0 should return an error")
	}
}

func TestParity(t *testing.T) {
	cases := []struct {
		x    uint32
		want bool
	}{
		{0, false},
		{1, true},
		{3, false},
		{0x7, true},
		{0xFF, false},
	}
	for _, c := range cases {
		if got := parity(c.x); got != c.want {
			t.Errorf("parity(%#x) = %v, want %v", c.x, got, c.want)
		}
	}
}

func TestSaturatingAdd(t *testing.T) {
	if got := saturatingAdd(100, 50); got != 150 {
		t.Errorf("saturatingAdd(100,50) = %d, want 150", got)
	}
	if got := saturatingAdd(32700, 510); got != 32767 {
		t.Errorf("saturatingAdd should clamp to MaxInt16, got %d", got)
	}
	if got := saturatingAdd(bias, 0); got != bias {
		t.Errorf("saturatingAdd(bias,0) = %d, want %d", got, bias)
	}
}

func TestDecisionBitRoundTrip(t *testing.T) {
	record := make([]uint64, wordsPerRecord)
	setDecisionBit(record, 0)
	setDecisionBit(record, 63)
	setDecisionBit(record, 64)
	setDecisionBit(record, S-1)

	for _, s := range []uint32{0, 63, 64, S - 1} {
		if decisionBit(record, s) != 1 {
			t.Errorf("decisionBit(%d) = 0, want 1", s)
		}
	}
	if decisionBit(record, 1) != 0 {
		t.Errorf("decisionBit(1) should be unset")
	}
}

func TestBranchTableOnlyTakesAntipodalValues(t *testing.T) {
	bt := buildBranchTable(DefaultProfile())
	for i := 0; i < B; i += B/997 + 1 { // sparse sample, full B is 4M entries
		if bt.gen0[i] != 0 && bt.gen0[i] != 255 {
			t.Fatalf("gen0[%d] = %d, want 0 or 255", i, bt.gen0[i])
		}
		if bt.gen1[i] != 0 && bt.gen1[i] != 255 {
			t.Fatalf("gen1[%d] = %d, want 0 or 255", i, bt.gen1[i])
		}
	}
}

func TestBranchTableFlipInvertsOutput(t *testing.T) {
	p := DefaultProfile()
	unflipped := buildBranchTable(p)
	p.G1Flip = !p.G1Flip
	flipped := buildBranchTable(p)

	for i := 0; i < B; i += B/137 + 1 {
		if unflipped.gen0[i] == flipped.gen0[i] {
			t.Fatalf("gen0[%d] unchanged after flipping G1Flip", i)
		}
		if unflipped.gen1[i] != flipped.gen1[i] {
			t.Fatalf("gen1[%d] changed after flipping G1Flip only", i)
		}
	}
}

func TestInitInvariants(t *testing.T) {
	d, err := New(smallProfile())
	if err != nil {
		t.Fatal(err)
	}

	if d.old[0] != bias {
		t.Errorf("old[0] = %d, want bias %d", d.old[0], bias)
	}
	for i := 1; i < S; i *= 7919 {
		if i == 0 {
			continue
		}
		if d.old[i] != bias+growthMargin {
			t.Errorf("old[%d] = %d, want %d", i, d.old[i], bias+growthMargin)
		}
	}
	if d.renormals != 0 {
		t.Errorf("renormals = %d, want 0", d.renormals)
	}
	if d.slot != 0 {
		t.Errorf("slot = %d, want 0", d.slot)
	}
}

func TestInitWithNonZeroStartingState(t *testing.T) {
	d, err := New(smallProfile())
	if err != nil {
		t.Fatal(err)
	}
	d.Init(42)
	if d.old[42] != bias {
		t.Errorf("old[42] = %d, want bias", d.old[42])
	}
	if d.old[0] != bias+growthMargin {
		t.Errorf("old[0] = %d, want bias+growthMargin after Init(42)", d.old[0])
	}
}

func TestUpdateBlockZeroNbitsNoop(t *testing.T) {
	d, err := New(smallProfile())
	if err != nil {
		t.Fatal(err)
	}
	n, err := d.UpdateBlock(nil, 0)
	if err != nil || n != 0 {
		t.Fatalf("UpdateBlock(nil, 0) = (%d, %v), want (0, nil)", n, err)
	}
}

func TestUpdateBlockRejectsOddSymbolLength(t *testing.T) {
	d, err := New(smallProfile())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.UpdateBlock([]uint8{0, 0, 0}, 1); err != ErrOddSymbolLength {
		t.Errorf("expected ErrOddSymbolLength, got %v", err)
	}
}

func TestUpdateBlockRejectsShortBuffer(t *testing.T) {
	d, err := New(smallProfile())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.UpdateBlock([]uint8{0, 0}, 2); err != ErrShortSymbolBuffer {
		t.Errorf("expected ErrShortSymbolBuffer, got %v", err)
	}
}

func TestNilDecoderErrors(t *testing.T) {
	var d *Decoder
	if _, err := d.UpdateBlock(nil, 1); err != ErrNilDecoder {
		t.Errorf("UpdateBlock on nil decoder: got %v", err)
	}
	if err := d.Chainback(make([]byte, 1), 8, 0); err != ErrNilDecoder {
		t.Errorf("Chainback on nil decoder: got %v", err)
	}
	if _, err := d.DecodeBit(1, 0); err != ErrNilDecoder {
		t.Errorf("DecodeBit on nil decoder: got %v", err)
	}
	if _, err := d.DecodeWord(1, 0); err != ErrNilDecoder {
		t.Errorf("DecodeWord on nil decoder: got %v", err)
	}
	if _, err := d.MaxMetric(); err != ErrNilDecoder {
		t.Errorf("MaxMetric on nil decoder: got %v", err)
	}
	if _, err := d.MinMetric(); err != ErrNilDecoder {
		t.Errorf("MinMetric on nil decoder: got %v", err)
	}
}

func TestMetricGrowthBound(t *testing.T) {
	d, err := New(smallProfile())
	if err != nil {
		t.Fatal(err)
	}

	const nbits = 4
	syms := make([]uint8, 2*nbits)
	for i := range syms {
		syms[i] = 128
	}

	if _, err := d.UpdateBlock(syms, nbits); err != nil {
		t.Fatal(err)
	}

	const maxStepGrowth = 510
	for _, m := range d.old {
		growth := int64(m) - int64(bias) // relative to the initial bias floor
		if growth < 0 {
			t.Fatalf("metric below bias floor: %d", m)
		}
		if growth > int64(maxStepGrowth)*nbits+growthMargin {
			t.Fatalf("metric grew too much: %d (growth %d)", m, growth)
		}
	}
}

func TestChainbackRejectsOversizedDepth(t *testing.T) {
	d, err := New(smallProfile())
	if err != nil {
		t.Fatal(err)
	}
	out := make([]byte, 64)
	if err := d.Chainback(out, d.profile.Len+8, 0); err != ErrTracebackTooLong {
		t.Errorf("expected ErrTracebackTooLong, got %v", err)
	}
}

func TestChainbackRejectsNonByteAligned(t *testing.T) {
	d, err := New(smallProfile())
	if err != nil {
		t.Fatal(err)
	}
	out := make([]byte, 64)
	if err := d.Chainback(out, 5, 0); err != ErrBitCountNotByteAligned {
		t.Errorf("expected ErrBitCountNotByteAligned, got %v", err)
	}
}

func TestChainbackZeroNbitsNoop(t *testing.T) {
	d, err := New(smallProfile())
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Chainback(nil, 0, 0); err != nil {
		t.Errorf("Chainback(nil, 0, 0) should be a no-op, got %v", err)
	}
}

func TestBestPathEndstateMatchesExplicitArgmin(t *testing.T) {
	p := DefaultProfile()
	p.Len = 64
	d, err := New(p)
	if err != nil {
		t.Fatal(err)
	}

	syms := make([]uint8, 2*32)
	for i := range syms {
		syms[i] = uint8(i * 7 % 256)
	}
	if _, err := d.UpdateBlock(syms, 32); err != nil {
		t.Fatal(err)
	}

	best := d.bestPathState()

	outA := make([]byte, 4)
	if err := d.Chainback(outA, 32, -1); err != nil {
		t.Fatal(err)
	}
	outB := make([]byte, 4)
	if err := d.Chainback(outB, 32, int32(best)); err != nil {
		t.Fatal(err)
	}
	for i := range outA {
		if outA[i] != outB[i] {
			t.Fatalf("best-path search disagrees with explicit argmin endstate at byte %d", i)
		}
	}
}

func TestSnapshotReflectsProgress(t *testing.T) {
	d, err := New(smallProfile())
	if err != nil {
		t.Fatal(err)
	}
	before := d.Snapshot()
	if before.StepsProcessed != 0 {
		t.Fatalf("fresh decoder should report 0 steps processed")
	}

	syms := make([]uint8, 2*4)
	if _, err := d.UpdateBlock(syms, 4); err != nil {
		t.Fatal(err)
	}
	after := d.Snapshot()
	if after.StepsProcessed != 4 {
		t.Fatalf("StepsProcessed = %d, want 4", after.StepsProcessed)
	}
}
