// SPDX-License-Identifier: MIT
// Package transport fans processed spectrum frames out to external
// consumers. Senders must be non-blocking: the acquisition loop calls
// Send once per published snapshot and must never wait on a slow client.
package transport

// Frame is one published spectrum snapshot with its diagnostics.
type Frame struct {
	Seq       uint64    `json:"seq"`
	Bands     []float64 `json:"bands"`
	Overflows uint64    `json:"overflows,omitempty"`
	Failures  uint64    `json:"failures,omitempty"`
}

// Transport delivers frames to external consumers. Implementations are
// thread-safe and drop frames rather than block.
type Transport interface {
	Send(f Frame) error
	Close() error
}
