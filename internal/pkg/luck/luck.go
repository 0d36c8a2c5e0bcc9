// Package luck maps seed strings to reproducible values in [0, 1).
package luck

import "github.com/cespare/xxhash/v2"

// Luck returns a deterministic value in [0, 1) for seed.
// The value depends only on the seed bytes, so it is stable across processes.
func Luck(seed string) float64 {
	// 53 high bits fill a float64 mantissa exactly.
	return float64(xxhash.Sum64String(seed)>>11) / (1 << 53)
}
