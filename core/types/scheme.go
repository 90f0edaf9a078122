package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownScheme         = errors.New("unknown signature scheme")
	ErrInvalidIdentityLength = errors.New("invalid signer identity length")
)

// Scheme identifies the native verifier a companion instruction was
// produced by.
type Scheme uint8

const (
	// Secp256k1 signatures are recoverable; the signer is identified by the
	// 20 byte address derived from the recovered public key.
	Secp256k1 Scheme = iota + 1
	// Ed25519 signers are identified by their 32 byte public key.
	Ed25519
)

const (
	Secp256k1IdentityLength = 20
	Ed25519IdentityLength   = 32
)

// ParseScheme converts the textual scheme name into a Scheme.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "secp256k1", "secp", "ec":
		return Secp256k1, nil
	case "ed25519", "ed":
		return Ed25519, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, s)
}

// Valid reports whether s is one of the supported schemes.
func (s Scheme) Valid() bool {
	return s == Secp256k1 || s == Ed25519
}

// IdentityLength returns the width of the signer identity for the scheme, or
// zero for an unknown scheme.
func (s Scheme) IdentityLength() int {
	switch s {
	case Secp256k1:
		return Secp256k1IdentityLength
	case Ed25519:
		return Ed25519IdentityLength
	}
	return 0
}

func (s Scheme) String() string {
	switch s {
	case Secp256k1:
		return "secp256k1"
	case Ed25519:
		return "ed25519"
	}
	return fmt.Sprintf("scheme(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Scheme) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownScheme, uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scheme) UnmarshalText(input []byte) error {
	parsed, err := ParseScheme(string(input))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
