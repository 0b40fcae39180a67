package hashes

import "crypto/sha256"

// HashB calculates the sha256 hash of the given bytes.
func HashB(b []byte) []byte {
	hash := sha256.Sum256(b)
	return hash[:]
}

// DoubleHashB calculates sha256(sha256(b)) and returns the resulting bytes.
// This is the digest used for message payload checksums.
func DoubleHashB(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}
