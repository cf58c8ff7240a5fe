// Package common holds small helpers shared across client layers.
package common

// WipeByteArray overwrites the slice with zeros. Used to drop passwords
// from memory as soon as they have been handed to the API client. A nil
// slice is a no-op.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
