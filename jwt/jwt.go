// Package jwt handles JSON Web Token defined in RFC 7519.
package jwt

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joseflow/jose/internal/jsonutils"
	"github.com/joseflow/jose/jwe"
	"github.com/joseflow/jose/jws"
	"github.com/joseflow/jose/sig"
)

var b64 = base64.RawURLEncoding
var nowFunc = time.Now // for testing

// Claims is a JWT Claims Set defined in RFC7519.
type Claims struct {
	// RFC7519 Section 4.1.1. "iss" (Issuer) Claim
	Issuer string

	// RFC7519 Section 4.1.2. "sub" (Subject) Claim
	Subject string

	// RFC7519 Section 4.1.3. "aud" (Audience) Claim
	Audience []string

	// RFC7519 Section 4.1.4. "exp" (Expiration Time) Claim
	ExpirationTime time.Time

	// RFC7519 Section 4.1.5. "nbf" (Not Before) Claim
	NotBefore time.Time

	// RFC7519 Section 4.1.6. "iat" (Issued At) Claim
	IssuedAt time.Time

	// RFC7519 Section 4.1.7. "jti" (JWT ID) Claim
	JWTID string

	// Raw is the raw data of the JSON-decoded JWT Claims Set.
	// JSON numbers are decoded as json.Number to avoid data loss.
	Raw map[string]any
}

// Token is the classified result of Parse: exactly one of *PlainToken,
// *SignedToken, or *EncryptedToken, depending on the compact form's
// segment count and, for the three-segment form, its "alg". Consumers
// that need to act differently per kind should use Handle rather than
// a type switch, so that a new Token kind cannot silently fall through.
type Token interface {
	Claims() *Claims
}

// PlainToken is an unsecured JWT (alg: none). Parse only ever produces
// one when the Parser's Options allow it; see config.Options.AllowNone.
type PlainToken struct {
	Header *jws.Header
	claims *Claims
}

func (t *PlainToken) Claims() *Claims { return t.claims }

// SignedToken is a JWS-secured JWT.
type SignedToken struct {
	Header *jws.Header
	claims *Claims
}

func (t *SignedToken) Claims() *Claims { return t.claims }

// EncryptedToken is a JWE-secured JWT: a nested JWT whose claims were
// only recoverable by decrypting the outer JWE.
type EncryptedToken struct {
	Header *jwe.Header
	claims *Claims
}

func (t *EncryptedToken) Claims() *Claims { return t.claims }

// Handler dispatches on a Token's concrete kind, so callers classify
// once at the call site instead of repeating a type switch at every
// use (spec.md §4.7/§9: tagged variants over runtime type checks).
type Handler interface {
	OnPlain(*PlainToken) error
	OnSigned(*SignedToken) error
	OnEncrypted(*EncryptedToken) error
}

// Handle dispatches token to the Handler method matching its kind.
func Handle(token Token, h Handler) error {
	switch t := token.(type) {
	case *PlainToken:
		return h.OnPlain(t)
	case *SignedToken:
		return h.OnSigned(t)
	case *EncryptedToken:
		return h.OnEncrypted(t)
	default:
		return fmt.Errorf("jwt: unknown token kind %T", token)
	}
}

func Sign(header *jws.Header, claims *Claims, key sig.SigningKey) ([]byte, error) {
	payload, err := encodeClaims(claims)
	if err != nil {
		return nil, err
	}

	headerBytes, err := header.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("jwt: failed to encode header: %w", err)
	}

	l1 := b64.EncodedLen(len(headerBytes))
	l2 := b64.EncodedLen(len(payload))
	buf := make([]byte, l1+l2+2+b64.EncodedLen(512))
	b64.Encode(buf[:l1], headerBytes)
	buf[l1] = '.'
	b64.Encode(buf[l1+1:l1+1+l2:l1+1+l2], payload)

	// sign
	sig, err := key.Sign(buf[:l1+1+l2])
	if err != nil {
		return nil, err
	}

	// encode signature to base64
	l3 := b64.EncodedLen(len(sig))
	if len(buf) < l1+l2+l3+2 {
		tmp := make([]byte, l1+l2+l3+2)
		copy(tmp, buf)
		buf = tmp
	} else {
		buf = buf[:l1+l2+l3+2]
	}
	buf[l1+1+l2] = '.'
	b64.Encode(buf[l1+l2+2:], sig)
	return buf, nil
}

func encodeClaims(c *Claims) ([]byte, error) {
	raw := make(map[string]any, len(c.Raw))
	for k, v := range c.Raw {
		raw[k] = v
	}
	e := jsonutils.NewEncoder(raw)

	if iss := c.Issuer; iss != "" {
		e.Set("iss", iss)
	}
	if sub := c.Subject; sub != "" {
		e.Set("sub", sub)
	}
	if aud := c.Audience; aud != nil {
		if len(aud) == 1 {
			e.Set("aud", aud[0])
		} else {
			e.Set("aud", aud)
		}
	}
	if exp := c.ExpirationTime; !exp.IsZero() {
		e.Set("exp", jsonutils.NumericDate{Time: exp})
	}
	if nbf := c.NotBefore; !nbf.IsZero() {
		e.Set("nbf", jsonutils.NumericDate{Time: nbf})
	}
	if iat := c.IssuedAt; !iat.IsZero() {
		e.Set("iat", jsonutils.NumericDate{Time: iat})
	}
	if jti := c.JWTID; jti != "" {
		e.Set("jti", jti)
	}

	if err := e.Err(); err != nil {
		return nil, err
	}
	return json.Marshal(e.Data())
}
