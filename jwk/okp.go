package jwk

import (
	"fmt"

	"github.com/joseflow/jose/internal/jsonutils"
	"github.com/joseflow/jose/jwa"
)

// RFC8037 2. Key Type "OKP"
func parseOKPKey(d *jsonutils.Decoder, key *Key) {
	crv := jwa.EllipticCurve(d.MustString("crv"))
	switch crv {
	case jwa.Ed25519:
		parseEd25519Key(d, key)
	default:
		d.SaveError(fmt.Errorf("jwk: unknown crv: %q", crv))
	}
}
