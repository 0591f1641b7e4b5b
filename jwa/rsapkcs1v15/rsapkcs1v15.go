// Package rsapkcs1v15 implements a Key Encryption Algorithm RSAES-PKCS1-v1_5.
package rsapkcs1v15

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"io"

	"github.com/joseflow/jose/jwa"
	"github.com/joseflow/jose/keymanage"
)

var alg = &Algorithm{}

func New() keymanage.Algorithm {
	return alg
}

func init() {
	jwa.RegisterKeyManagementAlgorithm(jwa.RSA1_5, New)
}

var _ keymanage.Algorithm = (*Algorithm)(nil)

type Algorithm struct{}

// NewKeyWrapper implements [github.com/joseflow/jose/keymanage.Algorithm].
func (alg *Algorithm) NewKeyWrapper(key keymanage.Key) keymanage.KeyWrapper {
	privateKey := key.PrivateKey()
	priv, ok := privateKey.(*rsa.PrivateKey)
	if !ok && privateKey != nil {
		return keymanage.NewInvalidKeyWrapper(fmt.Errorf("rsapkcs1v15: invalid private key type: %T", privateKey))
	}

	publicKey := key.PublicKey()
	pub, ok := publicKey.(*rsa.PublicKey)
	if !ok && publicKey != nil {
		return keymanage.NewInvalidKeyWrapper(fmt.Errorf("rsapkcs1v15: invalid public key type: %T", publicKey))
	}

	if priv != nil {
		return &KeyWrapper{
			priv: priv,
			pub:  &priv.PublicKey,
		}
	}

	return &KeyWrapper{
		pub: pub,
	}
}

var _ keymanage.KeyWrapper = (*KeyWrapper)(nil)

type KeyWrapper struct {
	priv *rsa.PrivateKey
	pub  *rsa.PublicKey
}

func (w *KeyWrapper) WrapKey(cek []byte, opts any) ([]byte, error) {
	return rsa.EncryptPKCS1v15(rand.Reader, w.pub, cek)
}

// encryptionAlgorithm is implemented by the JWE header passed in opts;
// it lets UnwrapKey size the random fallback CEK to the content
// encryption algorithm the message declares.
type encryptionAlgorithm interface {
	EncryptionAlgorithm() jwa.EncryptionAlgorithm
}

// UnwrapKey treats a malformed or invalid PKCS#1 v1.5 block the same
// as a valid one decrypting to a random key (RFC 7518 §4.2, the
// Bleichenbacher countermeasure): an attacker probing ciphertexts
// can't use padding errors as an oracle. This requires knowing the
// expected CEK length up front, which opts supplies via the message's
// "enc" header; cek is pre-filled with random bytes of that length,
// and DecryptPKCS1v15SessionKey overwrites it in constant time only
// when the padding is valid, otherwise leaving the random fallback in
// place. Without that hint there's no safe length to pre-allocate, so
// this falls back to a direct decrypt.
func (w *KeyWrapper) UnwrapKey(data []byte, opts any) ([]byte, error) {
	enc, ok := opts.(encryptionAlgorithm)
	if !ok {
		return rsa.DecryptPKCS1v15(rand.Reader, w.priv, data)
	}
	size := enc.EncryptionAlgorithm().CEKSize()
	if size <= 0 {
		return rsa.DecryptPKCS1v15(rand.Reader, w.priv, data)
	}

	cek := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, cek); err != nil {
		return nil, err
	}
	if err := rsa.DecryptPKCS1v15SessionKey(rand.Reader, w.priv, data, cek); err != nil {
		return nil, err
	}
	return cek, nil
}
