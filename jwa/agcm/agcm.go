// Package agcm implements the content encryption algorithms based on AES GCM.
package agcm

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"math"
	"sync"

	"github.com/joseflow/jose/enc"
	"github.com/joseflow/jose/jwa"
)

const (
	ivSize     = 12
	prefixSize = 4
)

var a128gcm = &algorithm{keyLen: 16}

// New128 returns the AES GCM content encryption algorithm using a 128-bit key.
func New128() enc.Algorithm {
	return a128gcm
}

var a192gcm = &algorithm{keyLen: 24}

// New192 returns the AES GCM content encryption algorithm using a 192-bit key.
func New192() enc.Algorithm {
	return a192gcm
}

var a256gcm = &algorithm{keyLen: 32}

// New256 returns the AES GCM content encryption algorithm using a 256-bit key.
func New256() enc.Algorithm {
	return a256gcm
}

func init() {
	jwa.RegisterEncryptionAlgorithm(jwa.A128GCM, New128)
	jwa.RegisterEncryptionAlgorithm(jwa.A192GCM, New192)
	jwa.RegisterEncryptionAlgorithm(jwa.A256GCM, New256)
}

var _ enc.Algorithm = (*algorithm)(nil)

// algorithm implements AEAD_AES_*_GCM content encryption, as defined in
// RFC 7518 Section 5.3. GenerateIV builds the 96-bit IV from a random
// per-key prefix plus a monotonic counter, so two IVs generated for the
// same CEK never collide; GenerateCEK reseeds the prefix and resets the
// counter, since a fresh CEK starts a fresh nonce space.
type algorithm struct {
	keyLen int

	mu      sync.Mutex
	seeded  bool
	prefix  [prefixSize]byte
	counter uint64
}

func (alg *algorithm) CEKSize() int {
	return alg.keyLen
}

func (alg *algorithm) IVSize() int {
	return ivSize
}

func (alg *algorithm) GenerateCEK() ([]byte, error) {
	cek := make([]byte, alg.keyLen)
	if _, err := rand.Read(cek); err != nil {
		return nil, err
	}

	alg.mu.Lock()
	defer alg.mu.Unlock()
	if _, err := rand.Read(alg.prefix[:]); err != nil {
		return nil, err
	}
	alg.counter = 0
	alg.seeded = true
	return cek, nil
}

func (alg *algorithm) GenerateIV() ([]byte, error) {
	alg.mu.Lock()
	defer alg.mu.Unlock()

	if !alg.seeded {
		if _, err := rand.Read(alg.prefix[:]); err != nil {
			return nil, err
		}
		alg.seeded = true
	}
	if alg.counter == math.MaxUint64 {
		return nil, errors.New("agcm: iv counter exhausted, generate a new content encryption key")
	}
	alg.counter++

	iv := make([]byte, ivSize)
	copy(iv, alg.prefix[:])
	binary.BigEndian.PutUint64(iv[prefixSize:], alg.counter)
	return iv, nil
}

func (alg *algorithm) Decrypt(cek, iv, aad, ciphertext, authTag []byte) (plaintext []byte, err error) {
	if len(cek) != alg.keyLen {
		return nil, errors.New("agcm: invalid content encryption key")
	}
	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(iv) != aead.NonceSize() {
		return nil, errors.New("agcm: invalid size of iv")
	}
	sealed := make([]byte, 0, len(ciphertext)+len(authTag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, authTag...)
	return aead.Open(nil, iv, sealed, aad)
}

func (alg *algorithm) Encrypt(cek, iv, aad, plaintext []byte) (ciphertext, authTag []byte, err error) {
	if len(cek) != alg.keyLen {
		return nil, nil, errors.New("agcm: invalid content encryption key")
	}
	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}
	if len(iv) != aead.NonceSize() {
		return nil, nil, errors.New("agcm: invalid size of iv")
	}
	sealed := aead.Seal(nil, iv, plaintext, aad)
	tagStart := len(sealed) - aead.Overhead()
	ciphertext = sealed[:tagStart]
	authTag = sealed[tagStart:]
	return ciphertext, authTag, nil
}
