package types

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ExpectedSigner is the identity the primary signer of a companion
// instruction has to match. It is written once by an initialisation step
// and only read afterwards.
type ExpectedSigner struct {
	Scheme   Scheme        `json:"scheme"`
	Identity hexutil.Bytes `json:"identity"`
}

// NewExpectedSigner returns a signer after checking the identity width
// against the scheme.
func NewExpectedSigner(scheme Scheme, identity []byte) (*ExpectedSigner, error) {
	s := &ExpectedSigner{Scheme: scheme, Identity: common.CopyBytes(identity)}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that the identity has the width mandated by the scheme.
func (s *ExpectedSigner) Validate() error {
	if !s.Scheme.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownScheme, uint8(s.Scheme))
	}
	if want := s.Scheme.IdentityLength(); len(s.Identity) != want {
		return fmt.Errorf("%w: have %d, want %d for %v", ErrInvalidIdentityLength, len(s.Identity), want, s.Scheme)
	}
	return nil
}

// Matches reports whether identity equals the expected one.
func (s *ExpectedSigner) Matches(identity []byte) bool {
	return bytes.Equal(s.Identity, identity)
}

func (s *ExpectedSigner) String() string {
	return fmt.Sprintf("%v:%s", s.Scheme, hexutil.Encode(s.Identity))
}
