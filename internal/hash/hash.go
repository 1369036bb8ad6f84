// Package hash computes content digests of snapshot bytes.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/keshon/verskeep/internal/fs"
	"github.com/zeebo/xxh3"
)

const (
	SHA256 = "sha256"
	XXH3   = "xxh3" // xxh3-128
)

// Hasher computes lowercase hex digests with one algorithm.
type Hasher struct {
	algo string
	fs   fs.FS
}

// New returns a Hasher for algo. An empty algo selects SHA256.
func New(algo string, fsys fs.FS) (*Hasher, error) {
	if algo == "" {
		algo = SHA256
	}
	if algo != SHA256 && algo != XXH3 {
		return nil, fmt.Errorf("unsupported hash algorithm %q", algo)
	}
	if fsys == nil {
		fsys = fs.NewOSFS()
	}
	return &Hasher{algo: algo, fs: fsys}, nil
}

// Algorithm returns the configured algorithm name.
func (h *Hasher) Algorithm() string { return h.algo }

// Hash returns the digest of data.
func (h *Hasher) Hash(data []byte) string {
	return sum(h.algo, data)
}

// HashFile reads path in full and returns its digest.
func (h *Hasher) HashFile(path string) (string, error) {
	data, err := h.fs.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %q for hashing: %w", path, err)
	}
	return h.Hash(data), nil
}

// HasChanged reports whether the digest of path differs from previous.
func (h *Hasher) HasChanged(path, previous string) (bool, error) {
	current, err := h.HashFile(path)
	if err != nil {
		return false, err
	}
	return current != previous, nil
}

// Verify checks data against digest, picking the algorithm from the digest
// length so snapshots written under a different configuration still verify.
func Verify(data []byte, digest string) bool {
	algo, ok := AlgorithmOf(digest)
	if !ok {
		return false
	}
	return sum(algo, data) == digest
}

// AlgorithmOf guesses the algorithm that produced digest.
func AlgorithmOf(digest string) (string, bool) {
	switch len(digest) {
	case sha256.Size * 2:
		return SHA256, true
	case 32:
		return XXH3, true
	}
	return "", false
}

func sum(algo string, data []byte) string {
	if algo == XXH3 {
		h := xxh3.Hash128(data).Bytes()
		return hex.EncodeToString(h[:])
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
