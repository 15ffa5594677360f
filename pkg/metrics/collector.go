package metrics

import (
	"sync"
)

// Collector collects decoder throughput and trellis-health statistics
// across however many Decoder instances a process drives.
type Collector struct {
	mu sync.RWMutex

	// Decoder lifecycle
	decodersStarted uint64
	activeDecoders  map[string]bool // keyed by session ID

	// Throughput
	blocksProcessed     uint64
	stepsProcessed      uint64
	renormalizations    uint64
	chainbacksPerformed uint64
	bitsDecoded         uint64

	// Trellis health, last observed values
	lastMinMetric int64
	lastMaxMetric int64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		activeDecoders: make(map[string]bool),
	}
}

// DecoderStarted records a decoder session beginning.
func (c *Collector) DecoderStarted(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.decodersStarted++
	c.activeDecoders[sessionID] = true
}

// DecoderFinished records a decoder session ending.
func (c *Collector) DecoderFinished(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.activeDecoders, sessionID)
}

// BlockProcessed records one UpdateBlock call: how many symbol-pair steps
// it advanced and how many renormalizations fired during it.
func (c *Collector) BlockProcessed(steps int, renormalizations int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.blocksProcessed++
	c.stepsProcessed += uint64(steps)
	c.renormalizations += uint64(renormalizations)
}

// ChainbackPerformed records a traceback call decoding nbits output bits.
func (c *Collector) ChainbackPerformed(bits int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.chainbacksPerformed++
	c.bitsDecoded += uint64(bits)
}

// ObserveMetrics records the most recently observed min/max path metric,
// typically read from Decoder.Snapshot after a block.
func (c *Collector) ObserveMetrics(min, max int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastMinMetric = min
	c.lastMaxMetric = max
}

// Reset clears active-session tracking; cumulative counters are left alone
// since they are meant to survive across sessions (useful for testing).
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.activeDecoders = make(map[string]bool)
}

// Getters for metrics

// GetDecodersStarted returns the total number of decoder sessions started.
func (c *Collector) GetDecodersStarted() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.decodersStarted
}

// GetActiveDecoders returns the number of currently active decoder sessions.
func (c *Collector) GetActiveDecoders() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.activeDecoders)
}

// GetBlocksProcessed returns the total number of UpdateBlock calls observed.
func (c *Collector) GetBlocksProcessed() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocksProcessed
}

// GetStepsProcessed returns the cumulative number of symbol-pair steps.
func (c *Collector) GetStepsProcessed() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stepsProcessed
}

// GetRenormalizations returns the cumulative number of renormalizations.
func (c *Collector) GetRenormalizations() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.renormalizations
}

// GetChainbacksPerformed returns the total number of traceback calls.
func (c *Collector) GetChainbacksPerformed() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.chainbacksPerformed
}

// GetBitsDecoded returns the cumulative number of output bits produced by
// traceback calls.
func (c *Collector) GetBitsDecoded() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bitsDecoded
}

// GetLastMinMetric returns the most recently observed minimum path metric.
func (c *Collector) GetLastMinMetric() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastMinMetric
}

// GetLastMaxMetric returns the most recently observed maximum path metric.
func (c *Collector) GetLastMaxMetric() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastMaxMetric
}
