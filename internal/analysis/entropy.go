// Package analysis provides format-independent statistics over raw byte
// buffers: Shannon entropy and cryptographic content hashes.
package analysis

import "math"

// Entropy computes the Shannon entropy of the byte-value distribution of
// data, in bits. The result is in [0.0, 8.0]: 0.0 for an empty buffer or a
// buffer of one repeated value, 8.0 for a uniform distribution over all 256
// values. High entropy (>7.0) is a rough indicator of packed or encrypted
// content.
func Entropy(data []byte) float64 {
	if len(data) == 0 {
		return 0.0
	}

	var freq [256]int
	for _, b := range data {
		freq[b]++
	}

	length := float64(len(data))
	var entropy float64
	for _, count := range freq {
		if count == 0 {
			continue
		}
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}

	return entropy
}
