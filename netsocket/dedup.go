package netsocket

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Deduplicator filters repeat message IDs out of an inbound stream using
// a bloom filter, grounded on kernel/core/mesh/gossip.go's seenFilter
// (same NewWithEstimates sizing, same periodic-reset strategy to bound
// the false-positive rate as the filter fills). NetSocket frames carry
// no message ID of their own; callers that layer a request/response
// protocol on top of raw frames can tag each frame with an ID and use
// Deduplicator to drop retransmitted duplicates.
type Deduplicator struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
	seen   uint64
	resetAt uint64
}

// NewDeduplicator builds a filter sized for expectedElements at the
// given falsePositiveRate, resetting itself every resetAfter
// insertions to bound long-run false-positive growth.
func NewDeduplicator(expectedElements uint, falsePositiveRate float64, resetAfter uint64) *Deduplicator {
	return &Deduplicator{
		filter:  bloom.NewWithEstimates(expectedElements, falsePositiveRate),
		resetAt: resetAfter,
	}
}

// Seen reports whether id has already been observed, recording it as
// seen if not (a single-call test-and-set, matching how the gossip
// dedup check is used at each message's ingestion point).
func (d *Deduplicator) Seen(id []byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.filter.Test(id) {
		return true
	}
	d.filter.Add(id)
	d.seen++
	if d.resetAt > 0 && d.seen >= d.resetAt {
		d.filter.ClearAll()
		d.seen = 0
	}
	return false
}
