// Package pbkdf2 hand-implements PBKDF2 (RFC 8018 §5.2) as its own
// leaf component, separate from the PBES2 key-wrapping algorithms
// that call it. Keeping the per-block U_j chain and the XOR fold
// explicit, rather than delegating to golang.org/x/crypto/pbkdf2,
// lets both be tested directly against the block-construction law.
package pbkdf2

import (
	"crypto/hmac"
	"encoding/binary"
	"hash"
	"math"

	"github.com/joseflow/jose/joseerr"
)

// MinSaltLength is the minimum raw-salt length spec.md requires
// before formatting it with the algorithm identifier.
const MinSaltLength = 8

// FormatSalt builds the PBES2 salt input UTF8(alg) || 0x00 || salt.
// It fails InvalidSalt if salt is shorter than MinSaltLength.
func FormatSalt(alg string, salt []byte) ([]byte, error) {
	if len(salt) < MinSaltLength {
		return nil, joseerr.Wrap(joseerr.InvalidSalt, "salt must be at least 8 bytes")
	}
	out := make([]byte, 0, len(alg)+1+len(salt))
	out = append(out, alg...)
	out = append(out, 0x00)
	out = append(out, salt...)
	return out, nil
}

// Key derives a dkLen-byte key from password and salt using iter
// iterations of prf, following the per-block construction of
// RFC 8018 §5.2:
//
//	U_1 = PRF(P, S || INT32BE(i))
//	U_j = PRF(P, U_{j-1})          for j in [2, c]
//	T_i = U_1 XOR U_2 XOR ... XOR U_c
//
// The derived key is T_1 || T_2 || ... || T_l, truncated to dkLen.
func Key(password, salt []byte, iter, dkLen int, prf func() hash.Hash) ([]byte, error) {
	if iter < 1 {
		return nil, joseerr.Wrap(joseerr.InvalidIterationCount, "iteration count must be >= 1")
	}

	h := prf()
	hLen := h.Size()
	if dkLen > int(math.MaxUint32)*hLen {
		return nil, joseerr.Wrap(joseerr.MalformedEncoding, "derived key length too large")
	}

	numBlocks := (dkLen + hLen - 1) / hLen
	dk := make([]byte, 0, numBlocks*hLen)

	mac := hmac.New(prf, password)
	buf := make([]byte, 4)
	for block := 1; block <= numBlocks; block++ {
		mac.Reset()
		mac.Write(salt)
		binary.BigEndian.PutUint32(buf, uint32(block))
		mac.Write(buf)
		u := mac.Sum(nil)

		t := make([]byte, hLen)
		copy(t, u)

		for j := 2; j <= iter; j++ {
			mac.Reset()
			mac.Write(u)
			u = mac.Sum(u[:0])
			for k := range t {
				t[k] ^= u[k]
			}
		}
		dk = append(dk, t...)
	}

	return dk[:dkLen], nil
}
