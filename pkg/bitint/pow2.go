// SPDX-License-Identifier: MIT
/*
Package bitint provides power-of-two helpers used for FFT block sizing
and ring buffer capacity. All operations are O(1), allocation-free and
safe to call from real-time paths.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size.
// Exact powers of 2 are returned unchanged; the (size-1) subtraction is
// what preserves them, otherwise 8 would round up to 16.
// Zero and negative inputs return 1.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len64(uint64(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2.
// Powers of 2 have exactly one bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
