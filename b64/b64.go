// Package b64 implements the unpadded base64url codec and the byte
// primitives the JOSE engines build on: constant-time comparison,
// tolerant concatenation, and bounds-checked slicing.
package b64

import (
	"crypto/subtle"
	"encoding/base64"
)

// Encoding is the base64url alphabet without padding, as required by
// every JOSE compact-serialization segment.
var Encoding = base64.RawURLEncoding

// Encode returns the base64url (unpadded) encoding of src.
func Encode(src []byte) string {
	return Encoding.EncodeToString(src)
}

// Decode decodes s as base64url (unpadded). It fails with a
// base64.CorruptInputError on any character outside the alphabet or
// on a length congruent to 1 mod 4.
func Decode(s string) ([]byte, error) {
	return Encoding.DecodeString(s)
}

// ConstantTimeEqual reports whether a and b hold the same bytes,
// using a comparison whose running time does not depend on where the
// first mismatch occurs. Used for signature and authentication-tag
// comparisons so a verifier cannot be timed into an oracle.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Concat concatenates all segments into one slice, skipping nil or
// empty segments.
func Concat(segments ...[]byte) []byte {
	n := 0
	for _, seg := range segments {
		n += len(seg)
	}
	out := make([]byte, 0, n)
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		out = append(out, seg...)
	}
	return out
}

// SubArray returns src[offset : offset+length]. It panics if the
// range is out of bounds: callers are expected to have already
// validated lengths derived from untrusted input before calling this,
// so an out-of-bounds request here is an implementation bug, not a
// user error.
func SubArray(src []byte, offset, length int) []byte {
	return src[offset : offset+length : offset+length]
}
