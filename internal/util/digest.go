package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/gowebpki/jcs"
)

// CanonicalDigest returns the hex sha256 of the RFC 8785 canonical form of a
// JSON document. Documents that differ only in key order or whitespace share a
// digest.
func CanonicalDigest(raw []byte) (string, error) {
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize json: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
