// SPDX-License-Identifier: MIT
/*
Package ring implements the single-producer single-consumer sample buffer
that carries raw converter readings from the acquisition context to the
analysis consumer.

The two cursors grow monotonically and are reduced modulo capacity only
when indexing, so "unread count" is a plain subtraction. The producer owns
the write cursor; the read cursor is normally owned by the consumer but is
advanced by the producer on overflow (drop-oldest), which is why it is
updated with compare-and-swap rather than a plain store. No mutex is
taken anywhere: the producer runs inside the sample timer and must never
be blocked by the consumer.
*/
package ring

import (
	"sync/atomic"

	"spectrum/pkg/bitint"
)

// Buffer is a fixed-capacity SPSC ring of raw 12-bit samples.
// One slot is kept free so a reader can never observe more than
// capacity-1 unread samples while a write is in flight.
type Buffer struct {
	data []uint16
	mask uint64

	write     atomic.Uint64 // Producer-owned, monotonic.
	read      atomic.Uint64 // Consumer-advanced, producer-advanced on overflow.
	overflows atomic.Uint64
}

// New returns a buffer holding at least capacity samples. The capacity is
// rounded up to a power of two so index masking replaces division.
func New(capacity int) *Buffer {
	if capacity < 2 {
		capacity = 2
	}
	capacity = bitint.NextPowerOfTwo(capacity)
	return &Buffer{
		data: make([]uint16, capacity),
		mask: uint64(capacity - 1),
	}
}

// Cap returns the buffer capacity in samples.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Push stores one sample. Producer context only. It never blocks: when the
// buffer is full the oldest unread sample is dropped first and the
// overflow counter incremented. Freshness beats completeness here.
func (b *Buffer) Push(s uint16) {
	w := b.write.Load()
	for {
		r := b.read.Load()
		if w-r < uint64(len(b.data))-1 {
			break
		}
		// Full. Claim the oldest slot; a concurrent Drain may win the
		// race, in which case there is room and the retry exits.
		if b.read.CompareAndSwap(r, r+1) {
			b.overflows.Add(1)
			break
		}
	}
	b.data[w&b.mask] = s
	b.write.Store(w + 1) // Publishes the sample (release).
}

// Available returns the number of unread samples. Safe from either
// context under concurrent Push; the result is a snapshot and may be
// stale by the time the caller acts on it.
func (b *Buffer) Available() int {
	r := b.read.Load() // Read cursor first: write never trails it.
	w := b.write.Load()
	n := w - r
	if n > uint64(len(b.data))-1 {
		n = uint64(len(b.data)) - 1
	}
	return int(n)
}

// Drain copies up to len(dst) samples into dst in production order and
// advances the read cursor. Consumer context only. Returns the number
// copied; never blocks, never pads.
func (b *Buffer) Drain(dst []uint16) int {
	n := 0
	for n < len(dst) {
		r := b.read.Load()
		w := b.write.Load()
		if r == w {
			break
		}
		v := b.data[r&b.mask]
		// The producer may have dropped this sample from under us; the
		// CAS fails in that case and the value is discarded and reread.
		if b.read.CompareAndSwap(r, r+1) {
			dst[n] = v
			n++
		}
	}
	return n
}

// Overflows returns the number of samples dropped to keep capture
// real-time. Overflow is an expected steady-state condition under load,
// not a fault.
func (b *Buffer) Overflows() uint64 {
	return b.overflows.Load()
}
