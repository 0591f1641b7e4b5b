// Package jwk handles JSON Web Key [RFC7517] key material: the opaque
// key type the JOSE core consumes and the capability vector (sign,
// verify, encrypt, decrypt, wrap, unwrap, deriveBits) attached to it.
//
// Loading JWK Sets from a network key store is out of scope; this
// package only parses/serializes individual keys and sets supplied by
// the caller.
package jwk

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"net/url"
	"reflect"

	"github.com/joseflow/jose/internal/jsonutils"
	"github.com/joseflow/jose/jwa"
	"github.com/joseflow/jose/jwk/jwktypes"
)

// Key is a JSON Web Key.
//
// *Key implements [github.com/joseflow/jose/sig.Key] and
// [github.com/joseflow/jose/keymanage.Key] directly: it exposes its key
// material through the PrivateKey/PublicKey methods rather than public
// fields, and its key-use/key-ops restrictions through PublicKeyUse/
// KeyOperations, so the engines' capability checks
// ([github.com/joseflow/jose/jwk/jwktypes.CanUseFor]) work against a *Key
// with no adapter needed.
type Key struct {
	// keyType is RFC7517 4.1. "kty" (Key Type) Parameter.
	keyType jwa.KeyType

	// publicKeyUse is RFC7517 4.2. "use" (Public Key Use) Parameter.
	publicKeyUse jwktypes.KeyUse

	// keyOperations is RFC7517 4.3. "key_ops" (Key Operations) Parameter.
	keyOperations []jwktypes.KeyOp

	// algorithm is RFC7517 4.4. "alg" (Algorithm) Parameter.
	algorithm jwa.KeyAlgorithm

	// keyID is RFC7517 4.5. "kid" (Key ID) Parameter.
	keyID string

	// x509URL is RFC7517 4.6. "x5u" (X.509 URL) Parameter.
	x509URL *url.URL

	// x509CertificateChain is RFC7517 4.7. "x5c" (X.509 Certificate Chain) Parameter.
	x509CertificateChain []*x509.Certificate

	// x509CertificateSHA1 is RFC7517 4.8. "x5t" (X.509 Certificate SHA-1 Thumbprint) Parameter.
	x509CertificateSHA1 []byte

	// x509CertificateSHA256 is RFC7517 4.9. "x5t#S256" (X.509 Certificate SHA-256 Thumbprint) Parameter.
	x509CertificateSHA256 []byte

	// privateKey holds the private key material, if any.
	//
	// It is one of *ecdsa.PrivateKey, *rsa.PrivateKey, ed25519.PrivateKey, or []byte.
	privateKey crypto.PrivateKey

	// publicKey holds the public key material.
	//
	// It is one of *ecdsa.PublicKey, *rsa.PublicKey, or ed25519.PublicKey.
	// It is nil for symmetric keys.
	publicKey crypto.PublicKey

	// Raw is the raw data of the JSON-decoded JWK.
	// JSON numbers are decoded as json.Number to avoid data loss.
	Raw map[string]any
}

// KeyType returns the RFC7517 4.1. "kty" (Key Type) Parameter.
func (key *Key) KeyType() jwa.KeyType { return key.keyType }

// PublicKeyUse returns the RFC7517 4.2. "use" (Public Key Use) Parameter.
func (key *Key) PublicKeyUse() jwktypes.KeyUse { return key.publicKeyUse }

// KeyOperations returns the RFC7517 4.3. "key_ops" (Key Operations) Parameter.
func (key *Key) KeyOperations() []jwktypes.KeyOp { return key.keyOperations }

// Algorithm returns the RFC7517 4.4. "alg" (Algorithm) Parameter.
func (key *Key) Algorithm() jwa.KeyAlgorithm { return key.algorithm }

// KeyID returns the RFC7517 4.5. "kid" (Key ID) Parameter.
func (key *Key) KeyID() string { return key.keyID }

// X509URL returns the RFC7517 4.6. "x5u" (X.509 URL) Parameter.
func (key *Key) X509URL() *url.URL { return key.x509URL }

// X509CertificateChain returns the RFC7517 4.7. "x5c" (X.509 Certificate Chain) Parameter.
func (key *Key) X509CertificateChain() []*x509.Certificate { return key.x509CertificateChain }

// X509CertificateSHA1 returns the RFC7517 4.8. "x5t" (X.509 Certificate SHA-1 Thumbprint) Parameter.
func (key *Key) X509CertificateSHA1() []byte { return key.x509CertificateSHA1 }

// X509CertificateSHA256 returns the RFC7517 4.9. "x5t#S256" (X.509 Certificate SHA-256 Thumbprint) Parameter.
func (key *Key) X509CertificateSHA256() []byte { return key.x509CertificateSHA256 }

// PrivateKey returns the private key material, if any.
//
// It implements [github.com/joseflow/jose/sig.Key] and
// [github.com/joseflow/jose/keymanage.Key].
func (key *Key) PrivateKey() crypto.PrivateKey { return key.privateKey }

// PublicKey returns the public key material. It is nil for symmetric keys.
//
// It implements [github.com/joseflow/jose/sig.Key] and
// [github.com/joseflow/jose/keymanage.Key].
func (key *Key) PublicKey() crypto.PublicKey { return key.publicKey }

// NewPrivateKey returns a new JWK from the private key.
//
// key must be one of [*crypto/ecdsa.PrivateKey], [*crypto/rsa.PrivateKey],
// [crypto/ed25519.PrivateKey] or []byte (a symmetric key).
func NewPrivateKey(key crypto.PrivateKey) (*Key, error) {
	switch key := key.(type) {
	case *ecdsa.PrivateKey:
		if key == nil {
			return nil, errors.New("jwk: nil ecdsa private key")
		}
		return &Key{keyType: jwa.EC, privateKey: key, publicKey: key.Public()}, nil
	case *rsa.PrivateKey:
		if key == nil {
			return nil, errors.New("jwk: nil rsa private key")
		}
		return &Key{keyType: jwa.RSA, privateKey: key, publicKey: key.Public()}, nil
	case ed25519.PrivateKey:
		if len(key) != ed25519.PrivateKeySize {
			return nil, errors.New("jwk: invalid ed25519 private key size")
		}
		return &Key{keyType: jwa.OKP, privateKey: key, publicKey: key.Public()}, nil
	case []byte:
		return &Key{keyType: jwa.Oct, privateKey: append([]byte(nil), key...)}, nil
	default:
		return nil, fmt.Errorf("jwk: unknown private key type: %T", key)
	}
}

// NewPublicKey returns a new JWK from the public key.
func NewPublicKey(key crypto.PublicKey) (*Key, error) {
	switch key := key.(type) {
	case *ecdsa.PublicKey:
		if key == nil {
			return nil, errors.New("jwk: nil ecdsa public key")
		}
		return &Key{keyType: jwa.EC, publicKey: key}, nil
	case *rsa.PublicKey:
		if key == nil {
			return nil, errors.New("jwk: nil rsa public key")
		}
		return &Key{keyType: jwa.RSA, publicKey: key}, nil
	case ed25519.PublicKey:
		if len(key) != ed25519.PublicKeySize {
			return nil, errors.New("jwk: invalid ed25519 public key size")
		}
		return &Key{keyType: jwa.OKP, publicKey: key}, nil
	default:
		return nil, fmt.Errorf("jwk: unknown public key type: %T", key)
	}
}

// NewSymmetricKey returns a new JWK wrapping a symmetric secret.
func NewSymmetricKey(secret []byte) *Key {
	return &Key{keyType: jwa.Oct, privateKey: append([]byte(nil), secret...)}
}

func decodeCommonParameters(d *jsonutils.Decoder, key *Key) {
	key.keyType = jwa.KeyType(d.MustString("kty"))
	key.keyID, _ = d.GetString("kid")
	if use, ok := d.GetString("use"); ok {
		key.publicKeyUse = jwktypes.KeyUse(use)
	}
	if ops, ok := d.GetStringArray("key_ops"); ok {
		key.keyOperations = make([]jwktypes.KeyOp, len(ops))
		for i := range ops {
			key.keyOperations[i] = jwktypes.KeyOp(ops[i])
		}
	}
	if alg, ok := d.GetString("alg"); ok {
		key.algorithm = jwa.KeyAlgorithm(alg)
	}

	if x5u, ok := d.GetURL("x5u"); ok {
		key.x509URL = x5u
	}
	var cert0 []byte
	if x5c, ok := d.GetStringArray("x5c"); ok {
		var certs []*x509.Certificate
		for i, s := range x5c {
			der, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				d.SaveError(fmt.Errorf("jwk: failed to parse the parameter x5c[%d]: %w", i, err))
				continue
			}
			cert, err := x509.ParseCertificate(der)
			if err != nil {
				d.SaveError(fmt.Errorf("jwk: failed to parse certificate: %w", err))
				return
			}
			if cert0 == nil {
				cert0 = der
			}
			certs = append(certs, cert)
		}
		key.x509CertificateChain = certs
	}

	if x5t, ok := d.GetBytes("x5t"); ok {
		key.x509CertificateSHA1 = x5t
		if cert0 != nil {
			sum := sha1.Sum(cert0)
			if subtle.ConstantTimeCompare(sum[:], x5t) == 0 {
				d.SaveError(errors.New("jwk: sha-1 thumbprint of certificate is mismatch"))
			}
		}
	}
	if x5t256, ok := d.GetBytes("x5t#S256"); ok {
		key.x509CertificateSHA256 = x5t256
		if cert0 != nil {
			sum := sha256.Sum256(cert0)
			if subtle.ConstantTimeCompare(sum[:], x5t256) == 0 {
				d.SaveError(errors.New("jwk: sha-256 thumbprint of certificate is mismatch"))
			}
		}
	}
}

func encodeCommonParameters(e *jsonutils.Encoder, key *Key) {
	e.Set("kty", key.keyType.String())
	if v := key.keyID; v != "" {
		e.Set("kid", v)
	}
	if v := key.publicKeyUse; v != "" {
		e.Set("use", string(v))
	}
	if v := key.keyOperations; v != nil {
		ops := make([]string, len(v))
		for i := range v {
			ops[i] = string(v[i])
		}
		e.Set("key_ops", ops)
	}
	if v := key.algorithm; v != "" {
		e.Set("alg", string(v))
	}
	if x5u := key.x509URL; x5u != nil {
		e.Set("x5u", x5u.String())
	}
	if x5c := key.x509CertificateChain; x5c != nil {
		chain := make([][]byte, 0, len(x5c))
		for _, cert := range x5c {
			chain = append(chain, cert.Raw)
		}
		e.Set("x5c", chain)
	}
	if x5t := key.x509CertificateSHA1; x5t != nil {
		e.SetBytes("x5t", x5t)
	} else if len(key.x509CertificateChain) > 0 {
		sum := sha1.Sum(key.x509CertificateChain[0].Raw)
		e.SetBytes("x5t", sum[:])
	}
	if x5t256 := key.x509CertificateSHA256; x5t256 != nil {
		e.SetBytes("x5t#S256", x5t256)
	} else if len(key.x509CertificateChain) > 0 {
		sum := sha256.Sum256(key.x509CertificateChain[0].Raw)
		e.SetBytes("x5t#S256", sum[:])
	}
}

// ParseKey parses a JWK.
func ParseKey(data []byte) (*Key, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return ParseMap(raw)
}

var _ json.Unmarshaler = (*Key)(nil)

func (key *Key) UnmarshalJSON(data []byte) error {
	k, err := ParseKey(data)
	if err != nil {
		return err
	}
	*key = *k
	return nil
}

var _ json.Marshaler = (*Key)(nil)

func (key *Key) MarshalJSON() ([]byte, error) {
	raw := make(map[string]any, len(key.Raw))
	for k, v := range key.Raw {
		raw[k] = v
	}
	e := jsonutils.NewEncoder(raw)
	encodeCommonParameters(e, key)

	switch priv := key.privateKey.(type) {
	case *ecdsa.PrivateKey:
		pub, ok := key.publicKey.(*ecdsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("jwk: public key type is mismatch for ecdsa: %T", key.publicKey)
		}
		encodeEcdsaKey(e, priv, pub)
	case *rsa.PrivateKey:
		pub, ok := key.publicKey.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("jwk: public key type is mismatch for rsa: %T", key.publicKey)
		}
		encodeRSAKey(e, priv, pub)
	case ed25519.PrivateKey:
		pub, ok := key.publicKey.(ed25519.PublicKey)
		if !ok {
			return nil, fmt.Errorf("jwk: public key type is mismatch for ed25519: %T", key.publicKey)
		}
		encodeEd25519Key(e, priv, pub)
	case []byte:
		if key.publicKey != nil {
			return nil, errors.New("jwk: public key is not allowed for symmetric keys")
		}
		encodeSymmetricKey(e, priv)
	case nil:
		switch pub := key.publicKey.(type) {
		case *ecdsa.PublicKey:
			encodeEcdsaKey(e, nil, pub)
		case *rsa.PublicKey:
			encodeRSAKey(e, nil, pub)
		case ed25519.PublicKey:
			encodeEd25519Key(e, nil, pub)
		default:
			return nil, newUnknownKeyTypeError(key)
		}
	default:
		return nil, newUnknownKeyTypeError(key)
	}

	if err := e.Err(); err != nil {
		return nil, err
	}
	return json.Marshal(e.Data())
}

// Thumbprint computes the thumbprint of the key defined in RFC 7638.
func (key *Key) Thumbprint(h hash.Hash) ([]byte, error) {
	thumbKey := &Key{keyType: key.keyType, publicKey: key.publicKey}
	data, err := thumbKey.MarshalJSON()
	if err != nil {
		return nil, err
	}
	if _, err := h.Write(data); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// ParseMap parses a JWK already decoded into a map[string]any by the json package.
func ParseMap(raw map[string]any) (*Key, error) {
	d := jsonutils.NewDecoder("jwk", raw)
	key := &Key{Raw: raw}
	decodeCommonParameters(d, key)
	if err := d.Err(); err != nil {
		return nil, err
	}

	switch key.keyType {
	case jwa.EC:
		parseEcdsaKey(d, key)
	case jwa.RSA:
		parseRSAKey(d, key)
	case jwa.OKP:
		parseOKPKey(d, key)
	case jwa.Oct:
		parseSymmetricKey(d, key)
	default:
		return nil, fmt.Errorf("jwk: unknown key type: %q", key.keyType)
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	return key, nil
}

// Set is a JWK Set.
type Set struct {
	Keys []*Key
}

// ParseSet parses a JWK Set.
func ParseSet(data []byte) (*Set, error) {
	var keys struct {
		Keys []map[string]any `json:"keys"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&keys); err != nil {
		return nil, err
	}

	list := make([]*Key, 0, len(keys.Keys))
	for _, raw := range keys.Keys {
		// RFC7517 Section 5: ignore JWKs with unsupported kty or
		// missing/out-of-range parameters, rather than failing the set.
		if key, err := ParseMap(raw); err == nil {
			list = append(list, key)
		}
	}
	return &Set{Keys: list}, nil
}

// Find finds the key with the given kid.
func (set *Set) Find(kid string) (key *Key, found bool) {
	for _, k := range set.Keys {
		if k.keyID == kid {
			return k, true
		}
	}
	return nil, false
}

var _ json.Unmarshaler = (*Set)(nil)

func (set *Set) UnmarshalJSON(data []byte) error {
	s, err := ParseSet(data)
	if err != nil {
		return err
	}
	*set = *s
	return nil
}

var _ json.Marshaler = (*Set)(nil)

func (set *Set) MarshalJSON() ([]byte, error) {
	keys := make([]json.RawMessage, 0, len(set.Keys))
	for _, k := range set.Keys {
		data, err := k.MarshalJSON()
		if err != nil {
			return nil, err
		}
		keys = append(keys, data)
	}
	return json.Marshal(map[string]any{"keys": keys})
}

type unknownKeyTypeError struct {
	pub  reflect.Type
	priv reflect.Type
}

func newUnknownKeyTypeError(key *Key) *unknownKeyTypeError {
	return &unknownKeyTypeError{
		pub:  reflect.TypeOf(key.publicKey),
		priv: reflect.TypeOf(key.privateKey),
	}
}

func (err *unknownKeyTypeError) Error() string {
	return fmt.Sprintf("jwk: unknown private and public key type: %v, %v", err.priv, err.pub)
}
