// Package provider gives the JWS/JWE engines an explicit handle onto
// the algorithm registry instead of reaching into package jwa's
// package-level maps directly at every call site. A Registry is
// initialize-once/read-many: build it once (or use Default, which
// lazily builds itself on first use behind a sync.Once) and share it
// across concurrent callers; re-configuring a Registry concurrently
// with in-flight operations that hold it is undefined, the same
// contract spec.md places on the host crypto provider.
package provider

import (
	"sync"

	"github.com/joseflow/jose/enc"
	"github.com/joseflow/jose/jwa"
	"github.com/joseflow/jose/keymanage"
	"github.com/joseflow/jose/sig"
)

// Registry resolves a header's alg/enc identifiers to the capability
// object that implements it. It is a thin facade over package jwa's
// constructor maps, so algorithm packages still register themselves
// with jwa via their own init(), but engines depend on Registry
// rather than on jwa's globals.
type Registry struct{}

// Signer returns the signing/verification capability for alg, or
// false if alg is not registered (e.g. its package was never
// imported).
func (Registry) Signer(alg jwa.SignatureAlgorithm) (sig.Algorithm, bool) {
	if !alg.Available() {
		return nil, false
	}
	return alg.New(), true
}

// KeyWrapper returns the key-management capability for alg, or false
// if alg is not registered.
func (Registry) KeyWrapper(alg jwa.KeyManagementAlgorithm) (keymanage.Algorithm, bool) {
	if !alg.Available() {
		return nil, false
	}
	return alg.New(), true
}

// ContentCipher returns the content-encryption capability for enc, or
// false if enc is not registered.
func (Registry) ContentCipher(encAlg jwa.EncryptionAlgorithm) (enc.Algorithm, bool) {
	if !encAlg.Available() {
		return nil, false
	}
	return encAlg.New(), true
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide Registry, built once on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = &Registry{}
	})
	return defaultReg
}
