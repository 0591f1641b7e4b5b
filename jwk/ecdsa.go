package jwk

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"errors"
	"fmt"
	"math/big"

	"github.com/joseflow/jose/internal/jsonutils"
	"github.com/joseflow/jose/jwa"
)

// RFC7518 6.2.2. Parameters for Elliptic Curve Private Keys
func parseEcdsaKey(d *jsonutils.Decoder, key *Key) {
	var privateKey ecdsa.PrivateKey
	crv := jwa.EllipticCurve(d.MustString("crv"))
	switch crv {
	case jwa.P256:
		privateKey.Curve = elliptic.P256()
	case jwa.P384:
		privateKey.Curve = elliptic.P384()
	case jwa.P521:
		privateKey.Curve = elliptic.P521()
	default:
		d.SaveError(fmt.Errorf("jwk: unknown crv: %q", crv))
		return
	}

	// parameters for public key
	privateKey.X = new(big.Int).SetBytes(d.MustBytes("x"))
	privateKey.Y = new(big.Int).SetBytes(d.MustBytes("y"))
	if d.Err() != nil {
		return
	}
	ecdhPub, err := privateKey.PublicKey.ECDH()
	if err != nil {
		d.SaveError(errors.New("jwk: invalid public key"))
		return
	}
	key.publicKey = &privateKey.PublicKey

	// parameters for private key
	if param, ok := d.GetBytes("d"); ok {
		privateKey.D = new(big.Int).SetBytes(param)
		ecdhPriv, err := privateKey.ECDH()
		if err != nil || !ecdhPriv.PublicKey().Equal(ecdhPub) {
			d.SaveError(errors.New("jwk: invalid private key"))
			return
		}
		key.privateKey = &privateKey
	}

	// sanity check of the certificate
	if certs := key.x509CertificateChain; len(certs) > 0 {
		cert := certs[0]
		publicKey, ok := cert.PublicKey.(*ecdsa.PublicKey)
		if !ok {
			d.SaveError(errors.New("jwk: public key types are mismatch"))
			return
		}
		if !privateKey.PublicKey.Equal(publicKey) {
			d.SaveError(errors.New("jwk: public keys are mismatch"))
		}
	}
}

func encodeEcdsaKey(e *jsonutils.Encoder, priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey) {
	e.Set("kty", jwa.EC.String())

	var crv jwa.EllipticCurve
	var size int
	switch pub.Curve {
	case elliptic.P256():
		crv, size = jwa.P256, 32
	case elliptic.P384():
		crv, size = jwa.P384, 48
	case elliptic.P521():
		crv, size = jwa.P521, 66
	default:
		e.SaveError(fmt.Errorf("jwk: unknown elliptic curve: %v", pub.Curve))
		return
	}
	e.Set("crv", crv.String())

	x := make([]byte, size)
	pub.X.FillBytes(x)
	e.SetBytes("x", x)

	y := make([]byte, size)
	pub.Y.FillBytes(y)
	e.SetBytes("y", y)

	if priv != nil {
		d := make([]byte, size)
		priv.D.FillBytes(d)
		e.SetBytes("d", d)
	}
}
