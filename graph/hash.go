package graph

import "github.com/minio/highwayhash"

// hashKey is a fixed 32-byte key, since StableHash is used for deterministic
// dedup/memoization within a single build, not as a security primitive.
var hashKey = []byte("cpgkit-stable-hash-0123456789ABC")

// StableHash returns a deterministic 64-bit hash of data, grounded on the
// teacher's inspector/graph/hash.go (same highwayhash.New64 call). Used to
// key CallResolver's method-candidate memoization table without relying on
// pointer identity, which changes across Graph.Clone.
func StableHash(data []byte) (uint64, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, err
	}
	if _, err := h.Write(data); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
