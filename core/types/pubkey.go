package types

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
)

// PubkeyLength is the expected length of a program id or account key.
const PubkeyLength = 32

// Pubkey is an opaque 32 byte identifier, rendered in base58. Program ids of
// the native verifiers and signer accounts are both expressed as Pubkeys.
type Pubkey [PubkeyLength]byte

// BytesToPubkey returns a Pubkey with value b. If b is larger than
// PubkeyLength, b will be cropped from the left.
func BytesToPubkey(b []byte) Pubkey {
	var p Pubkey
	if len(b) > len(p) {
		b = b[len(b)-PubkeyLength:]
	}
	copy(p[PubkeyLength-len(b):], b)
	return p
}

// ParsePubkey decodes a base58 encoded key.
func ParsePubkey(s string) (Pubkey, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Pubkey{}, fmt.Errorf("invalid base58 key %q: %v", s, err)
	}
	if len(raw) != PubkeyLength {
		return Pubkey{}, fmt.Errorf("invalid key length %d for %q, want %d", len(raw), s, PubkeyLength)
	}
	return BytesToPubkey(raw), nil
}

// MustParsePubkey is like ParsePubkey but panics on malformed input. It is
// meant for package level constants.
func MustParsePubkey(s string) Pubkey {
	p, err := ParsePubkey(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Bytes gets the byte representation of the key.
func (p Pubkey) Bytes() []byte { return p[:] }

// IsZero reports whether the key is unset.
func (p Pubkey) IsZero() bool { return p == Pubkey{} }

// String implements fmt.Stringer.
func (p Pubkey) String() string { return base58.Encode(p[:]) }

// Equal reports whether both keys carry the same bytes.
func (p Pubkey) Equal(other Pubkey) bool { return bytes.Equal(p[:], other[:]) }

// MarshalText implements encoding.TextMarshaler.
func (p Pubkey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pubkey) UnmarshalText(input []byte) error {
	parsed, err := ParsePubkey(string(input))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
