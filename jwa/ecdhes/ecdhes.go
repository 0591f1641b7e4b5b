// Package ecdhes implements Key Agreement with Elliptic Curve Diffie-Hellman Ephemeral Static (ECDH-ES).
package ecdhes

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	_ "crypto/sha256" // for crypto.SHA256
	"errors"
	"fmt"
	"hash"
	"io"

	"github.com/joseflow/jose/jwa"
	"github.com/joseflow/jose/jwa/akw"
	"github.com/joseflow/jose/jwa/dir"
	"github.com/joseflow/jose/jwk"
	"github.com/joseflow/jose/keymanage"
)

// rawKey adapts a derived symmetric secret to [keymanage.Key] so it
// can be handed to the "dir" and "AxxxKW" wrappers that perform the
// second stage of ECDH-ES+AxxxKW.
type rawKey []byte

func (k rawKey) PrivateKey() crypto.PrivateKey { return []byte(k) }
func (k rawKey) PublicKey() crypto.PublicKey   { return nil }

var alg = &Algorithm{
	f: func(key []byte) keymanage.KeyWrapper {
		return dir.New().NewKeyWrapper(rawKey(key))
	},
}

// New returns a new algorithm
// Elliptic Curve Diffie-Hellman Ephemeral Static key agreement using Concat KDF.
func New() keymanage.Algorithm {
	return alg
}

var a128kw = &Algorithm{
	size: 16,
	f: func(key []byte) keymanage.KeyWrapper {
		return akw.New128().NewKeyWrapper(rawKey(key))
	},
}

// NewA128KW returns a new algorithm ECDH-ES using Concat KDF and CEK wrapped with "A128KW".
func NewA128KW() keymanage.Algorithm {
	return a128kw
}

var a192kw = &Algorithm{
	size: 24,
	f: func(key []byte) keymanage.KeyWrapper {
		return akw.New192().NewKeyWrapper(rawKey(key))
	},
}

// NewA192KW returns a new algorithm ECDH-ES using Concat KDF and CEK wrapped with "A192KW".
func NewA192KW() keymanage.Algorithm {
	return a192kw
}

var a256kw = &Algorithm{
	size: 32,
	f: func(key []byte) keymanage.KeyWrapper {
		return akw.New256().NewKeyWrapper(rawKey(key))
	},
}

// NewA256KW returns a new algorithm ECDH-ES using Concat KDF and CEK wrapped with "A256KW".
func NewA256KW() keymanage.Algorithm {
	return a256kw
}

func init() {
	jwa.RegisterKeyManagementAlgorithm(jwa.ECDH_ES, New)
	jwa.RegisterKeyManagementAlgorithm(jwa.ECDH_ES_A128KW, NewA128KW)
	jwa.RegisterKeyManagementAlgorithm(jwa.ECDH_ES_A192KW, NewA192KW)
	jwa.RegisterKeyManagementAlgorithm(jwa.ECDH_ES_A256KW, NewA256KW)
}

var _ keymanage.Algorithm = (*Algorithm)(nil)

type Algorithm struct {
	size int
	f    func([]byte) keymanage.KeyWrapper
}

// NewKeyWrapper implements [github.com/joseflow/jose/keymanage.Algorithm].
// key's private half is used on the recipient side to unwrap; its
// public half is used on the sender side to derive the shared secret
// against a freshly generated ephemeral key.
func (alg *Algorithm) NewKeyWrapper(key keymanage.Key) keymanage.KeyWrapper {
	return &KeyWrapper{
		alg: alg,
		key: key,
	}
}

var (
	_ keymanage.KeyWrapper = (*KeyWrapper)(nil)
	_ keymanage.KeyDeriver = (*KeyWrapper)(nil)
)

type KeyWrapper struct {
	alg *Algorithm
	key keymanage.Key
}

// headerOpts is implemented by [github.com/joseflow/jose/jwe.Header]
// and its merged-recipient counterpart. It exposes the "enc", "epk",
// "apu" and "apv" parameters ECDH-ES key agreement needs.
type headerOpts interface {
	EncryptionAlgorithm() jwa.EncryptionAlgorithm
	EphemeralPublicKey() *jwk.Key
	AgreementPartyUInfo() []byte
	AgreementPartyVInfo() []byte
}

type ephemeralKeySetter interface {
	SetEphemeralPublicKey(epk *jwk.Key)
}

// deriveSenderKey generates an ephemeral EC key pair on the
// recipient's curve, records its public half as "epk" on opts via
// ephemeralKeySetter, and derives the ECDH-ES key of the given size.
func (w *KeyWrapper) deriveSenderKey(header headerOpts, opts any, size int) ([]byte, error) {
	pub, ok := w.key.PublicKey().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("ecdhes: invalid public key type: %T", w.key.PublicKey())
	}
	priv, err := ecdsa.GenerateKey(pub.Curve, rand.Reader)
	if err != nil {
		return nil, err
	}
	epk, err := jwk.NewPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, err
	}
	if setter, ok := opts.(ephemeralKeySetter); ok {
		setter.SetEphemeralPublicKey(epk)
	}

	return deriveECDHES(
		[]byte(header.EncryptionAlgorithm().String()),
		header.AgreementPartyUInfo(),
		header.AgreementPartyVInfo(),
		priv,
		pub,
		size,
	)
}

// DeriveKey implements [github.com/joseflow/jose/keymanage.KeyDeriver].
// It derives the content encryption key directly (plain ECDH-ES) or a
// key-wrapping key that then wraps a freshly generated CEK
// (ECDH-ES+AxxxKW). encryptedKey is empty for plain ECDH-ES.
func (w *KeyWrapper) DeriveKey(opts any) (cek, encryptedKey []byte, err error) {
	header, ok := opts.(headerOpts)
	if !ok {
		return nil, nil, fmt.Errorf("ecdhes: invalid option type: %T", opts)
	}

	size := w.alg.size
	if size == 0 {
		size = header.EncryptionAlgorithm().New().CEKSize()
	}
	key, err := w.deriveSenderKey(header, opts, size)
	if err != nil {
		return nil, nil, err
	}

	// plain ECDH-ES: the derived key is used directly as the CEK.
	if w.alg.size == 0 {
		return key, nil, nil
	}

	// ECDH-ES+AxxxKW: the derived key wraps a freshly generated CEK.
	cek, err = header.EncryptionAlgorithm().New().GenerateCEK()
	if err != nil {
		return nil, nil, err
	}
	encryptedKey, err = w.alg.f(key).WrapKey(cek, opts)
	if err != nil {
		return nil, nil, err
	}
	return cek, encryptedKey, nil
}

// WrapKey implements [github.com/joseflow/jose/keymanage.KeyWrapper].
// It wraps an externally supplied CEK with ECDH-ES+AxxxKW, so that
// the same CEK can be shared with other, non-ECDH-ES recipients of a
// multi-recipient message. Plain ECDH-ES has no wrapped form of an
// externally supplied CEK; callers should use
// [github.com/joseflow/jose/keymanage.KeyDeriver] instead.
func (w *KeyWrapper) WrapKey(cek []byte, opts any) ([]byte, error) {
	if w.alg.size == 0 {
		return nil, errors.New("ecdhes: direct ECDH-ES cannot wrap an existing CEK, use DeriveKey")
	}
	header, ok := opts.(headerOpts)
	if !ok {
		return nil, fmt.Errorf("ecdhes: invalid option type: %T", opts)
	}
	key, err := w.deriveSenderKey(header, opts, w.alg.size)
	if err != nil {
		return nil, err
	}
	return w.alg.f(key).WrapKey(cek, opts)
}

// UnwrapKey implements [github.com/joseflow/jose/keymanage.KeyWrapper].
// opts must expose the "enc", "epk", "apu" and "apv" header parameters
// of the recipient.
func (w *KeyWrapper) UnwrapKey(data []byte, opts any) ([]byte, error) {
	header, ok := opts.(headerOpts)
	if !ok {
		return nil, fmt.Errorf("ecdhes: invalid option type: %T", opts)
	}

	epk := header.EphemeralPublicKey()
	if epk == nil {
		return nil, errors.New("ecdhes: epk header parameter is missing")
	}
	pub, ok := epk.PublicKey().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("ecdhes: invalid epk type: %T", epk.PublicKey())
	}

	priv, ok := w.key.PrivateKey().(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("ecdhes: invalid private key type: %T", w.key.PrivateKey())
	}

	size := w.alg.size
	if size == 0 {
		size = header.EncryptionAlgorithm().New().CEKSize()
	}
	key, err := deriveECDHES(
		[]byte(header.EncryptionAlgorithm().String()),
		header.AgreementPartyUInfo(),
		header.AgreementPartyVInfo(),
		priv,
		pub,
		size,
	)
	if err != nil {
		return nil, err
	}

	return w.alg.f(key).UnwrapKey(data, opts)
}

func deriveECDHES(alg, apu, apv []byte, priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey, keySize int) ([]byte, error) {
	z, err := deriveZ(priv, pub)
	if err != nil {
		return nil, err
	}

	var pubinfo [4]byte
	bits := keySize * 8
	pubinfo[0] = byte(bits >> 24)
	pubinfo[1] = byte(bits >> 16)
	pubinfo[2] = byte(bits >> 8)
	pubinfo[3] = byte(bits)

	r := newKDF(crypto.SHA256, z, alg, apu, apv, pubinfo[:], []byte{})
	key := make([]byte, keySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

func deriveZ(priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey) ([]byte, error) {
	crv := priv.Curve
	if pub.Curve != crv || !crv.IsOnCurve(pub.X, pub.Y) {
		return nil, errors.New("ecdhes: public key must be on the same curve as private key")
	}
	z, _ := crv.ScalarMult(pub.X, pub.Y, priv.D.Bytes())
	size := (crv.Params().BitSize + 7) / 8
	buf := make([]byte, size)
	return z.FillBytes(buf), nil
}

type kdf struct {
	hash hash.Hash

	z []byte

	// AlgorithmID
	alg []byte

	// PartyUInfo, PartyVInfo
	apu, apv []byte

	// SuppPubInfo, SuppPrivInfo
	pub, priv []byte

	round uint32
	n     int
	buf   []byte
}

func newKDF(hash crypto.Hash, z, alg, apu, apv, pub, priv []byte) *kdf {
	h := hash.New()
	size := h.Size()
	if size < 4 {
		size = 4
	}
	return &kdf{
		z:    z,
		hash: h,
		alg:  alg,
		apu:  apu,
		apv:  apv,
		pub:  pub,
		priv: priv,
		buf:  make([]byte, size),
	}
}

func (r *kdf) Read(data []byte) (n int, err error) {
	if r.n == 0 {
		r.round++
		r.hash.Reset()

		r.putUint32(r.round)
		r.hash.Write(r.z)
		r.putUint32(uint32(len(r.alg)))
		r.hash.Write(r.alg)
		r.putUint32(uint32(len(r.apu)))
		r.hash.Write(r.apu)
		r.putUint32(uint32(len(r.apv)))
		r.hash.Write(r.apv)
		r.hash.Write(r.pub)
		r.hash.Write(r.priv)

		r.buf = r.hash.Sum(r.buf[:0])
		r.n = len(r.buf)
	}
	n = copy(data, r.buf[len(r.buf)-r.n:])
	r.n -= n
	return
}

func (r *kdf) putUint32(v uint32) {
	buf := r.buf[:4]
	buf[0] = byte(v >> 24)
	buf[1] = byte(v >> 16)
	buf[2] = byte(v >> 8)
	buf[3] = byte(v)
	r.hash.Write(buf)
}
