// Package zero wraps byte slices that hold sensitive key material
// (CEKs, KEKs, MAC keys, passwords) so callers have a single release
// path that zeroizes the underlying array on every exit, including
// error paths.
package zero

// Bytes owns a sensitive byte slice. The zero value is not usable;
// construct with New or NewFromLen.
type Bytes struct {
	b []byte
}

// New wraps an existing slice. The caller must not retain its own
// reference to b after handing it to New: Release overwrites it.
func New(b []byte) *Bytes {
	return &Bytes{b: b}
}

// NewFromLen allocates a fresh n-byte slice.
func NewFromLen(n int) *Bytes {
	return &Bytes{b: make([]byte, n)}
}

// Bytes returns the wrapped slice. It is only valid until Release is
// called.
func (z *Bytes) Bytes() []byte {
	if z == nil {
		return nil
	}
	return z.b
}

// Release overwrites the wrapped slice with zeros. It is safe to call
// more than once and safe to call on a nil *Bytes.
func (z *Bytes) Release() {
	if z == nil {
		return
	}
	for i := range z.b {
		z.b[i] = 0
	}
}
