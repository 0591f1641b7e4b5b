// Package config defines the runtime-tunable policy the JOSE core
// consults: iteration-count bounds, decompression limits, and the
// opt-in gates for algorithms that are disabled by default because
// they are deprecated or dangerous unless the caller has a specific
// reason to allow them.
//
// An *Options value is read-only once built: construct it with New
// and the supplied Option functions, then pass it down into the
// engines that need it. Re-building a new Options concurrently with
// in-flight operations that hold an older one is safe; mutating one
// in place is not supported.
package config

// Options holds the policy knobs spec.md's external-interfaces
// section names. The zero value is not directly usable; use New to
// get the documented defaults.
type Options struct {
	// MaxPBES2Iterations is the upper bound enforced on a PBES2
	// token's p2c at decryption time.
	MaxPBES2Iterations int

	// MinPBES2Iterations is the lower bound enforced on a PBES2
	// token's p2c at decryption time.
	MinPBES2Iterations int

	// MaxDecompressedSize bounds the inflated size of a zip: DEF
	// JWE plaintext, to defeat compression bombs.
	MaxDecompressedSize int

	// AllowRSA1_5 enables the deprecated RSA1_5 key-management
	// algorithm. Disabled by default.
	AllowRSA1_5 bool

	// AllowNone enables alg: none (unsecured JWS / plain JWT)
	// verification and claim access. Disabled by default.
	AllowNone bool

	// MaxSymmetricKeyBits holds a symmetric-key size ceiling, 0
	// meaning none. No engine in this module reads it: symmetric
	// keys are checked only against each algorithm's own minimum.
	MaxSymmetricKeyBits int

	// ECDSARequireLowS records whether ECDSA signatures must use the
	// lower of the two canonical S values (BIP-0062-style
	// normalization). No engine in this module reads it: ECDSA
	// verification accepts either S value.
	ECDSARequireLowS bool
}

// Default values, per spec.md §6.
const (
	DefaultMaxPBES2Iterations  = 1_000_000
	DefaultMinPBES2Iterations  = 1000
	DefaultMaxDecompressedSize = 250_000
)

// Option configures an Options value constructed by New.
type Option func(*Options)

// New builds an Options value from the documented defaults, applying
// opts in order.
func New(opts ...Option) *Options {
	o := &Options{
		MaxPBES2Iterations:  DefaultMaxPBES2Iterations,
		MinPBES2Iterations:  DefaultMinPBES2Iterations,
		MaxDecompressedSize: DefaultMaxDecompressedSize,
		AllowRSA1_5:         false,
		AllowNone:           false,
		MaxSymmetricKeyBits: 0,
		ECDSARequireLowS:    false,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithMaxPBES2Iterations overrides the PBES2 p2c upper bound.
func WithMaxPBES2Iterations(n int) Option {
	return func(o *Options) { o.MaxPBES2Iterations = n }
}

// WithMinPBES2Iterations overrides the PBES2 p2c lower bound.
func WithMinPBES2Iterations(n int) Option {
	return func(o *Options) { o.MinPBES2Iterations = n }
}

// WithMaxDecompressedSize overrides the zip: DEF inflation ceiling.
func WithMaxDecompressedSize(n int) Option {
	return func(o *Options) { o.MaxDecompressedSize = n }
}

// WithAllowRSA1_5 enables or disables the deprecated RSA1_5
// key-management algorithm.
func WithAllowRSA1_5(allow bool) Option {
	return func(o *Options) { o.AllowRSA1_5 = allow }
}

// WithAllowNone enables or disables alg: none.
func WithAllowNone(allow bool) Option {
	return func(o *Options) { o.AllowNone = allow }
}

// WithMaxSymmetricKeyBits sets MaxSymmetricKeyBits.
func WithMaxSymmetricKeyBits(n int) Option {
	return func(o *Options) { o.MaxSymmetricKeyBits = n }
}

// WithECDSARequireLowS sets ECDSARequireLowS.
func WithECDSARequireLowS(require bool) Option {
	return func(o *Options) { o.ECDSARequireLowS = require }
}

// Default is the zero-configuration policy: every JOSE engine
// constructed without an explicit *Options falls back to this.
var Default = New()
