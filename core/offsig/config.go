package offsig

import (
	"fmt"

	"github.com/morph-l2/offsig/core/types"
)

// Config carries the deployment specific identities of the trusted verifier
// programs.
type Config struct {
	Secp256k1Program types.Pubkey // verifier of recoverable secp256k1 signatures
	Ed25519Program   types.Pubkey // verifier of ed25519 signatures

	// AcceptSelfReference lets ed25519 entries point at the verifier
	// instruction through the 0xFFFF marker instead of its absolute index.
	AcceptSelfReference bool
}

// check ensures both verifier ids are configured.
func (c *Config) check() error {
	if c.Secp256k1Program.IsZero() {
		return fmt.Errorf("%w for %v", ErrMissingVerifier, types.Secp256k1)
	}
	if c.Ed25519Program.IsZero() {
		return fmt.Errorf("%w for %v", ErrMissingVerifier, types.Ed25519)
	}
	return nil
}

// Verifier returns the program id trusted for scheme.
func (c *Config) Verifier(scheme types.Scheme) (types.Pubkey, error) {
	switch scheme {
	case types.Secp256k1:
		return c.Secp256k1Program, nil
	case types.Ed25519:
		return c.Ed25519Program, nil
	}
	return types.Pubkey{}, fmt.Errorf("%w: %v", ErrUnknownScheme, scheme)
}

// SchemeOf returns the scheme whose verifier is program, if any.
func (c *Config) SchemeOf(program types.Pubkey) (types.Scheme, bool) {
	switch program {
	case c.Secp256k1Program:
		return types.Secp256k1, true
	case c.Ed25519Program:
		return types.Ed25519, true
	}
	return 0, false
}
