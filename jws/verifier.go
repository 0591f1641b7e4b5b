package jws

import (
	"context"
	"errors"

	joseb64 "github.com/joseflow/jose/b64"
	"github.com/joseflow/jose/config"
	"github.com/joseflow/jose/joseerr"
	"github.com/joseflow/jose/jwa"
)

// AlgorithmVerfier verifies the algorithm used for signing.
type AlgorithmVerfier interface {
	VerifyAlgorithm(ctx context.Context, alg jwa.SignatureAlgorithm) error
}

type AllowedAlgorithms []jwa.SignatureAlgorithm

func (a AllowedAlgorithms) VerifyAlgorithm(ctx context.Context, alg jwa.SignatureAlgorithm) error {
	for _, allowed := range a {
		if alg == allowed {
			return nil
		}
	}
	return joseerr.Wrap(joseerr.UnsupportedAlgorithm, "signing algorithm is not allowed")
}

// UnsecureAnyAlgorithm is an AlgorithmVerfier that accepts any algorithm,
// including "none". Most callers want AllowedAlgorithms instead; this
// exists for tests and for callers who have already decided to accept
// unsecured tokens.
var UnsecureAnyAlgorithm = unsecureAnyAlgorithmVerifier{}

type unsecureAnyAlgorithmVerifier struct{}

func (unsecureAnyAlgorithmVerifier) VerifyAlgorithm(ctx context.Context, alg jwa.SignatureAlgorithm) error {
	return nil
}

// Verifier verifies the JWS message.
type Verifier struct {
	_NamedFieldsRequired struct{}

	AlgorithmVerfier AlgorithmVerfier
	KeyFinder        KeyFinder

	// Options gates policy-controlled algorithms. A nil Options
	// falls back to config.Default, which forbids "none".
	Options *config.Options
}

func (v *Verifier) options() *config.Options {
	if v.Options != nil {
		return v.Options
	}
	return config.Default
}

// Verify verifies the JWS message. On success it returns the
// protected header and payload of whichever signature verified; a
// multi-signature JSON-serialized message verifies if any one
// signature is both accepted by AlgorithmVerfier and cryptographically
// valid. Every failure path — algorithm rejected, key not found,
// cryptographic mismatch — collapses to joseerr.SignatureInvalid so a
// caller cannot distinguish why verification failed.
func (v *Verifier) Verify(ctx context.Context, msg *Message) (protected *Header, payload []byte, err error) {
	_ = v._NamedFieldsRequired
	if v.AlgorithmVerfier == nil || v.KeyFinder == nil {
		return nil, nil, errors.New("jws: verifier is not configured")
	}
	opts := v.options()

	// pre-allocate buffer
	size := 0
	for _, sig := range msg.Signatures {
		if len(sig.rawProtected) > size {
			size = len(sig.rawProtected)
		}
	}
	size += len(msg.payload) + 1 // +1 for '.'
	buf := make([]byte, size)

	for _, sig := range msg.Signatures {
		if sig.protected.Algorithm() == jwa.None && !opts.AllowNone {
			continue
		}
		if err := v.AlgorithmVerfier.VerifyAlgorithm(ctx, sig.protected.alg); err != nil {
			continue
		}
		key, err := v.KeyFinder.FindKey(ctx, sig.protected, sig.header)
		if err != nil {
			continue
		}
		buf = buf[:0]
		buf = append(buf, sig.rawProtected...)
		buf = append(buf, '.')
		buf = append(buf, msg.payload...)
		err = key.Verify(buf, sig.signature)
		if err == nil {
			var ret []byte
			if sig.protected.Base64() {
				ret, err = joseb64.Decode(string(msg.payload))
				if err != nil {
					return nil, nil, joseerr.Wrapf(joseerr.SignatureInvalid, err, "payload is not valid base64url")
				}
			} else {
				ret = msg.payload
			}
			return sig.protected, ret, nil
		}
	}
	return nil, nil, joseerr.SignatureInvalid
}
