// Package checksum derives the agreement token exchanged for a sequence number.
package checksum

import (
	"crypto/md5" // nolint: gosec // agreement token, not integrity protection
	"encoding/hex"
	"strconv"
)

// Size is the length of a digest string returned by Sum.
const Size = md5.Size * 2

// Sum returns the lowercase hex MD5 digest of the decimal form of seq.
// The same seq always produces the same digest.
func Sum(seq uint64) string {
	sum := md5.Sum([]byte(strconv.FormatUint(seq, 10))) // nolint: gosec
	return hex.EncodeToString(sum[:])
}

// Valid reports whether digest has the shape of a value returned by Sum.
func Valid(digest string) bool {
	if len(digest) != Size {
		return false
	}
	_, err := hex.DecodeString(digest)
	return err == nil
}
