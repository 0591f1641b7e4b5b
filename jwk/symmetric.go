package jwk

import (
	"github.com/joseflow/jose/internal/jsonutils"
	"github.com/joseflow/jose/jwa"
)

// RFC7518 6.4. Parameters for Symmetric Keys
func parseSymmetricKey(d *jsonutils.Decoder, key *Key) {
	key.privateKey = d.MustBytes("k")
}

func encodeSymmetricKey(e *jsonutils.Encoder, priv []byte) {
	e.Set("kty", jwa.Oct.String())
	e.SetBytes("k", priv)
}
