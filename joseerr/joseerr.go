// Package joseerr defines the closed error taxonomy returned by the
// JOSE engines. Every error the public API surfaces wraps one of the
// sentinels below, so callers can branch with errors.Is regardless of
// which internal detail produced it. Cryptographic verification
// failures are deliberately collapsed onto a single coarse sentinel
// each (SignatureInvalid, DecryptionFailed) so that a caller cannot
// distinguish, say, a bad MAC from bad padding by inspecting the
// error kind.
package joseerr

import "errors"

var (
	// MalformedEncoding covers a wrong compact-serialization segment
	// count, invalid base64url, invalid JSON, or a header field of
	// the wrong type.
	MalformedEncoding = errors.New("jose: malformed encoding")

	// UnsupportedAlgorithm means the header's alg is not recognized,
	// or is recognized but disabled by policy.
	UnsupportedAlgorithm = errors.New("jose: unsupported algorithm")

	// UnsupportedEncryption means the header's enc is not
	// recognized, or is recognized but disabled by policy.
	UnsupportedEncryption = errors.New("jose: unsupported encryption method")

	// UnsupportedCritical means crit names a header parameter the
	// implementation does not understand.
	UnsupportedCritical = errors.New("jose: unsupported critical parameter")

	// KeyTypeMismatch means the supplied key material does not match
	// what alg requires (an RSA key for ES256, for example).
	KeyTypeMismatch = errors.New("jose: key type mismatch")

	// InvalidKeyLength means a symmetric key is too short or an RSA
	// modulus is too small for the algorithm's minimum.
	InvalidKeyLength = errors.New("jose: invalid key length")

	// SignatureInvalid is returned for any JWS verification failure.
	// It is never refined further, to avoid leaking which stage of
	// verification rejected the token.
	SignatureInvalid = errors.New("jose: signature verification failed")

	// DecryptionFailed is returned for any JWE authentication-tag or
	// key-unwrap failure. It is never refined further, for the same
	// reason as SignatureInvalid.
	DecryptionFailed = errors.New("jose: decryption failed")

	// InvalidSalt means a PBES2 salt was shorter than 8 bytes.
	InvalidSalt = errors.New("jose: invalid PBES2 salt")

	// InvalidIterationCount means a PBKDF2/PBES2 iteration count was
	// less than 1.
	InvalidIterationCount = errors.New("jose: invalid iteration count")

	// IterationPolicyExceeded means a PBES2 p2c value fell outside
	// the caller's configured [min, max] bounds.
	IterationPolicyExceeded = errors.New("jose: PBES2 iteration count outside policy bounds")

	// CompressionExpansionLimit means a JWE zip: DEF plaintext
	// inflated past the configured size ceiling.
	CompressionExpansionLimit = errors.New("jose: decompressed payload exceeds configured limit")

	// ProviderError wraps a host cryptography failure that is not
	// attributable to the caller's input (e.g. the system RNG
	// failed).
	ProviderError = errors.New("jose: cryptography provider error")

	// MalformedToken is MalformedEncoding's JWT-facade-facing alias:
	// a compact JWT whose segment count disagrees with the variant
	// its alg selects.
	MalformedToken = MalformedEncoding
)

// Wrap returns an error reporting as kind to errors.Is while carrying
// msg as additional context in its message.
func Wrap(kind error, msg string) error {
	if msg == "" {
		return kind
	}
	return &wrapped{kind: kind, msg: msg}
}

// Wrapf is Wrap with a caused-by error appended to the message via %w
// so the original cause remains inspectable with errors.Unwrap, while
// errors.Is(err, kind) continues to report true.
func Wrapf(kind error, cause error, msg string) error {
	if cause == nil {
		return Wrap(kind, msg)
	}
	return &wrapped{kind: kind, msg: msg, cause: cause}
}

type wrapped struct {
	kind  error
	msg   string
	cause error
}

func (e *wrapped) Error() string {
	if e.cause != nil {
		return e.kind.Error() + ": " + e.msg + ": " + e.cause.Error()
	}
	return e.kind.Error() + ": " + e.msg
}

func (e *wrapped) Is(target error) bool {
	return e.kind == target
}

func (e *wrapped) Unwrap() error {
	return e.cause
}
