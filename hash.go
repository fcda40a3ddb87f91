package steg

import (
	"crypto/md5"
	"crypto/sha256"
)

// computeHash returns the digest of body under algorithm a. Callers must
// not invoke this with HashNone.
func computeHash(a HashAlgo, body []byte) []byte {
	switch a {
	case HashMD5:
		sum := md5.Sum(body)
		return sum[:]
	case HashSHA256:
		sum := sha256.Sum256(body)
		return sum[:]
	default:
		return nil
	}
}
