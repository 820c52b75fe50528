// SPDX-License-Identifier: MIT
package analysis

import "sync/atomic"

// Publisher hands completed spectrum snapshots from the acquisition
// context to the presentation context without blocking either side.
//
// It is a double buffer with a sequence counter: the writer fills the
// slot the counter does not currently select, then advances the counter
// to publish it atomically. The reader copies the selected slot and
// re-checks the counter; any movement means the writer may already be
// filling the slot it just read (the fill for publish s+2 starts while
// the counter still reads s+1), so it retries. Retries are bounded in
// practice because a publish takes far longer than a copy.
//
// Older snapshots are discarded, never queued: only the most recently
// completed snapshot is observable.
type Publisher struct {
	slots [2][]float64
	seq   atomic.Uint64 // 0 = nothing published; slot index is seq&1.
}

// NewPublisher returns a publisher for snapshots of the given band count.
func NewPublisher(bands int) *Publisher {
	return &Publisher{
		slots: [2][]float64{
			make([]float64, bands),
			make([]float64, bands),
		},
	}
}

// Publish copies bands into the inactive slot and makes it the latest
// snapshot. Acquisition context only; never blocks.
func (p *Publisher) Publish(bands []float64) {
	next := p.seq.Load() + 1
	copy(p.slots[next&1], bands)
	p.seq.Store(next) // Release: the snapshot is complete before this.
}

// Latest copies the most recent snapshot into dst and returns its
// sequence number, with fresh=false when that snapshot is the one the
// caller already holds (seq == lastSeq) or nothing has been published
// yet. In the stale case dst is left untouched so the caller can reuse
// its previous copy. Presentation context only; never blocks.
func (p *Publisher) Latest(dst []float64, lastSeq uint64) (seq uint64, fresh bool) {
	for {
		s := p.seq.Load()
		if s == 0 || s == lastSeq {
			return s, false
		}
		if p.tryCopy(dst, s) {
			return s, true
		}
	}
}

// tryCopy copies the snapshot for sequence s into dst and reports
// whether the copy is provably untorn. The slot is rewritten by publish
// s+2, and that rewrite begins while the counter still reads s+1, so
// only an unchanged counter is proof.
func (p *Publisher) tryCopy(dst []float64, s uint64) bool {
	copy(dst, p.slots[s&1])
	return p.seq.Load() == s
}

// Seq returns the current sequence number, 0 before the first publish.
func (p *Publisher) Seq() uint64 {
	return p.seq.Load()
}
