package jwt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/joseflow/jose/config"
	"github.com/joseflow/jose/internal/jsonutils"
	"github.com/joseflow/jose/jwa"
	"github.com/joseflow/jose/joseerr"
	"github.com/joseflow/jose/jwe"
	"github.com/joseflow/jose/jws"
	"github.com/joseflow/jose/sig"
)

// KeyFinder finds the key used for verifying a JWS-secured JWT.
// e.g, you can return a key corresponding to the KID.
type KeyFinder interface {
	FindKey(ctx context.Context, header *jws.Header) (key sig.SigningKey, err error)
}

// FindKeyFunc is an adapter to allow the use of ordinary functions as KeyFinder interfaces.
// If f is a function with the appropriate signature, FindKeyFunc(f) is a KeyFinder that calls f.
type FindKeyFunc func(ctx context.Context, header *jws.Header) (key sig.SigningKey, err error)

// FindKey calls f(ctx, header).
func (f FindKeyFunc) FindKey(ctx context.Context, header *jws.Header) (sig.SigningKey, error) {
	return f(ctx, header)
}

// AlgorithmVerfier verifies the algorithm used for signing.
type AlgorithmVerfier interface {
	VerifyAlgorithm(ctx context.Context, alg jwa.SignatureAlgorithm) error
}

// UnsecureAnyAlgorithm is an AlgorithmVerfier that accepts any algorithm.
// Note that this does not by itself admit alg: none; that is gated
// separately by config.Options.AllowNone.
var UnsecureAnyAlgorithm = unsecureAnyAlgorithmVerifier{}

type unsecureAnyAlgorithmVerifier struct{}

func (unsecureAnyAlgorithmVerifier) VerifyAlgorithm(ctx context.Context, alg jwa.SignatureAlgorithm) error {
	return nil
}

// AllowedAlgorithms is an AlgorithmVerfier that accepts only the specified algorithms.
type AllowedAlgorithms []jwa.SignatureAlgorithm

func (a AllowedAlgorithms) VerifyAlgorithm(ctx context.Context, alg jwa.SignatureAlgorithm) error {
	for _, allowed := range a {
		if alg == allowed {
			return nil
		}
	}
	return joseerr.Wrap(joseerr.UnsupportedAlgorithm, "signing algorithm is not allowed")
}

// IssuerSubjectVerifier verifies the issuer and the subject.
type IssuerSubjectVerifier interface {
	VerifyIssuer(ctx context.Context, iss, sub string) error
}

// Issuer is a verifier that accepts only the specified issuer.
type Issuer string

func (i Issuer) VerifyIssuer(ctx context.Context, iss, sub string) error {
	if iss != string(i) {
		return fmt.Errorf("jwt: invalid issuer: %s", iss)
	}
	return nil
}

// UnsecureAnyIssuerSubject is an IssuerSubjectVerifier that accepts any issuer and subject.
// This is not recommended.
var UnsecureAnyIssuerSubject = unsecureAnyIssuerSubjectVerifier{}

type unsecureAnyIssuerSubjectVerifier struct{}

func (unsecureAnyIssuerSubjectVerifier) VerifyIssuer(ctx context.Context, iss, sub string) error {
	return nil
}

// AudienceVerifier verifies the audience.
type AudienceVerifier interface {
	VerifyAudience(ctx context.Context, aud []string) error
}

// Audience is an AudienceVerifier that accepts only tokens whose aud
// claim contains the given value.
type Audience string

func (a Audience) VerifyAudience(ctx context.Context, aud []string) error {
	for _, v := range aud {
		if v == string(a) {
			return nil
		}
	}
	return fmt.Errorf("jwt: audience %q not found in %v", string(a), aud)
}

var UnsecureAnyAudience = unsecureAnyAudienceVerifier{}

type unsecureAnyAudienceVerifier struct{}

func (unsecureAnyAudienceVerifier) VerifyAudience(ctx context.Context, aud []string) error {
	return nil
}

// Parser parses and classifies a compact JWT into a PlainToken,
// SignedToken, or EncryptedToken, per the segment count and "alg" of
// the compact form (spec.md §4.6/§4.7).
type Parser struct {
	_NamedFieldsRequired struct{}

	// KeyFinder finds the verification key for a JWS-secured token.
	// Required for the three-segment (JWS or unsecured) form.
	KeyFinder KeyFinder

	// KeyWrapperFinder finds the key-unwrapping key for a JWE-secured
	// token. Required for the five-segment (encrypted) form.
	KeyWrapperFinder jwe.KeyWrapperFinder

	AlgorithmVerfier      AlgorithmVerfier
	IssuerSubjectVerifier IssuerSubjectVerifier
	AudienceVerifier      AudienceVerifier

	// Options gates policy-controlled behavior: alg: none acceptance
	// and the PBES2 iteration-count bounds of an encrypted token's key
	// management. A nil Options falls back to config.Default.
	Options *config.Options
}

func (p *Parser) options() *config.Options {
	if p.Options != nil {
		return p.Options
	}
	return config.Default
}

func (p *Parser) algVerifier() AlgorithmVerfier {
	if p.AlgorithmVerfier != nil {
		return p.AlgorithmVerfier
	}
	return UnsecureAnyAlgorithm
}

func (p *Parser) issuerVerifier() IssuerSubjectVerifier {
	if p.IssuerSubjectVerifier != nil {
		return p.IssuerSubjectVerifier
	}
	return UnsecureAnyIssuerSubject
}

func (p *Parser) audienceVerifier() AudienceVerifier {
	if p.AudienceVerifier != nil {
		return p.AudienceVerifier
	}
	return UnsecureAnyAudience
}

// Parse classifies data by its compact-serialization dot count (two
// for a JWS/unsecured JWT, four for a JWE) and returns the matching
// Token kind. Anything else is joseerr.MalformedToken.
func (p *Parser) Parse(ctx context.Context, data []byte) (Token, error) {
	_ = p._NamedFieldsRequired

	switch bytes.Count(data, []byte{'.'}) {
	case 2:
		if p.KeyFinder == nil {
			return nil, errors.New("jwt: parser has no KeyFinder for a JWS-secured token")
		}
		return p.parseJWS(ctx, data)
	case 4:
		if p.KeyWrapperFinder == nil {
			return nil, errors.New("jwt: parser has no KeyWrapperFinder for an encrypted token")
		}
		return p.parseJWE(ctx, data)
	default:
		return nil, joseerr.MalformedToken
	}
}

func (p *Parser) parseJWS(ctx context.Context, data []byte) (Token, error) {
	opts := p.options()

	// split to segments
	idx1 := bytes.IndexByte(data, '.')
	if idx1 < 0 {
		return nil, joseerr.MalformedToken
	}
	idx2 := bytes.IndexByte(data[idx1+1:], '.')
	if idx2 < 0 {
		return nil, joseerr.MalformedToken
	}
	idx2 += idx1 + 1
	b64header := data[:idx1]
	b64payload := data[idx1+1 : idx2]
	b64signature := data[idx2+1:]

	// pre-allocate buffer
	size := len(b64header)
	if len(b64payload) > size {
		size = len(b64payload)
	}
	if len(b64signature) > size {
		size = len(b64signature)
	}
	buf := make([]byte, b64.DecodedLen(size))

	// parse header
	n, err := b64.Decode(buf[:cap(buf)], b64header)
	if err != nil {
		return nil, joseerr.Wrapf(joseerr.MalformedToken, err, "failed to decode header")
	}
	buf = buf[:n]
	var header jws.Header
	if err := header.UnmarshalJSON(buf); err != nil {
		return nil, joseerr.Wrapf(joseerr.MalformedToken, err, "failed to parse header")
	}

	// alg: none is rejected by default, mirroring jws.Verifier's gate
	// (jws/verifier.go); a caller must opt in via config.WithAllowNone.
	alg := header.Algorithm()
	unsecured := alg == jwa.None
	if unsecured && !opts.AllowNone {
		return nil, joseerr.Wrap(joseerr.UnsupportedAlgorithm, `"none" is rejected by policy`)
	}

	if err := p.algVerifier().VerifyAlgorithm(ctx, alg); err != nil {
		return nil, joseerr.Wrapf(joseerr.UnsupportedAlgorithm, err, "signing algorithm is not allowed")
	}

	key, err := p.KeyFinder.FindKey(ctx, &header)
	if err != nil {
		return nil, joseerr.Wrapf(joseerr.SignatureInvalid, err, "failed to find key")
	}
	n, err = b64.Decode(buf[:cap(buf)], b64signature)
	if err != nil {
		return nil, joseerr.Wrapf(joseerr.MalformedToken, err, "failed to decode signature")
	}
	buf = buf[:n]
	if err := key.Verify(data[:idx2], buf[:n]); err != nil {
		return nil, joseerr.Wrapf(joseerr.SignatureInvalid, err, "signature verification failed")
	}

	n, err = b64.Decode(buf[:cap(buf)], b64payload)
	if err != nil {
		return nil, joseerr.Wrapf(joseerr.MalformedToken, err, "failed to decode payload")
	}
	buf = buf[:n]

	claims, err := p.parseAndVerifyClaims(ctx, buf)
	if err != nil {
		return nil, err
	}
	if unsecured {
		return &PlainToken{Header: &header, claims: claims}, nil
	}
	return &SignedToken{Header: &header, claims: claims}, nil
}

// parseJWE decrypts the outer JWE and parses the inner plaintext as a
// JWT claims set, producing an EncryptedToken. The PBES2 p2c
// iteration-count policy and the RSA1_5 opt-in gate are enforced by
// jwe.Message.DecryptWithOptions using the same *config.Options.
func (p *Parser) parseJWE(ctx context.Context, data []byte) (Token, error) {
	opts := p.options()

	msg, err := jwe.Parse(data)
	if err != nil {
		return nil, err
	}
	plaintext, err := msg.DecryptWithOptions(p.KeyWrapperFinder, opts)
	if err != nil {
		return nil, err
	}

	claims, err := p.parseAndVerifyClaims(ctx, plaintext)
	if err != nil {
		return nil, err
	}
	return &EncryptedToken{Header: msg.Header(), claims: claims}, nil
}

func (p *Parser) parseAndVerifyClaims(ctx context.Context, data []byte) (*Claims, error) {
	c, err := decodeClaims(data)
	if err != nil {
		return nil, joseerr.Wrapf(joseerr.MalformedToken, err, "failed to parse claims")
	}

	if err := p.issuerVerifier().VerifyIssuer(ctx, c.Issuer, c.Subject); err != nil {
		return nil, fmt.Errorf("jwt: failed to verify issuer and subject: %w", err)
	}
	if err := p.audienceVerifier().VerifyAudience(ctx, c.Audience); err != nil {
		return nil, fmt.Errorf("jwt: failed to verify audience: %w", err)
	}

	now := nowFunc()
	if t := c.ExpirationTime; !t.IsZero() && !now.Before(t) {
		return nil, errors.New("jwt: token is expired")
	}
	if t := c.NotBefore; !t.IsZero() && now.Before(t) {
		return nil, errors.New("jwt: token is not valid yet")
	}
	return c, nil
}

func decodeClaims(data []byte) (*Claims, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("jwt: failed to parse claims: %w", err)
	}
	c := &Claims{
		Raw: raw,
	}
	d := jsonutils.NewDecoder("jwt", raw)

	c.Issuer, _ = d.GetString("iss")
	c.Subject, _ = d.GetString("sub")

	// In RFC 7519, the "aud" claim is defined as a string or an array of strings.
	if aud, ok := raw["aud"]; ok {
		switch aud := aud.(type) {
		case []any:
			for _, v := range aud {
				s, ok := v.(string)
				if !ok {
					d.SaveError(fmt.Errorf("jwt: invalid type of aud claim: %T", v))
				}
				c.Audience = append(c.Audience, s)
			}
		case string:
			c.Audience = []string{aud}
		}
	}

	c.ExpirationTime, _ = d.GetTime("exp")
	c.NotBefore, _ = d.GetTime("nbf")
	c.IssuedAt, _ = d.GetTime("iat")
	c.JWTID, _ = d.GetString("jti")

	if err := d.Err(); err != nil {
		return nil, err
	}
	return c, nil
}
