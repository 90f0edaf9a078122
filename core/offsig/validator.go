package offsig

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/morph-l2/offsig/core/types"
	"github.com/morph-l2/offsig/params"
)

// Validator checks that the instruction preceding the current one was
// executed by a trusted verifier and attests to a single message signed by
// the expected signer.
type Validator struct {
	config Config
}

// NewValidator creates a validator trusting the verifiers named in config.
func NewValidator(config Config) (*Validator, error) {
	if err := config.check(); err != nil {
		return nil, err
	}
	log.Debug("Created companion validator", "secp256k1", config.Secp256k1Program, "ed25519", config.Ed25519Program, "selfref", config.AcceptSelfReference)
	return &Validator{config: config}, nil
}

// Config returns the configuration the validator was created with.
func (v *Validator) Config() Config { return v.config }

// Validate returns the message attested by the companion instruction of the
// instruction currently executing in accessor. Every failure is final; no
// message is returned alongside an error.
func (v *Validator) Validate(accessor BatchAccessor, scheme types.Scheme, expected []byte) ([]byte, error) {
	idx := accessor.CurrentIndex()
	if idx <= 0 {
		return nil, fmt.Errorf("%w: current index %d", ErrInstructionAtWrongIndex, idx)
	}
	companionIdx := idx - 1
	companion, err := accessor.InstructionAt(companionIdx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCompanionInstruction, err)
	}
	verifier, err := v.config.Verifier(scheme)
	if err != nil {
		return nil, err
	}
	if companion.ProgramID != verifier {
		return nil, fmt.Errorf("%w: have %v, want %v", ErrInvalidProgramID, companion.ProgramID, verifier)
	}
	parsed, err := Decode(scheme, companion.Data)
	if err != nil {
		return nil, err
	}
	if len(parsed.Entries) == 0 {
		return nil, fmt.Errorf("%w: no signature entries", ErrInvalidCompanionInstruction)
	}
	for i, entry := range parsed.Entries {
		if !v.referencesCompanion(scheme, entry.IdentityInstructionIndex, companionIdx) {
			return nil, fmt.Errorf("%w: entry %d identity references instruction %d, want %d", ErrInvalidCompanionInstruction, i, entry.IdentityInstructionIndex, companionIdx)
		}
		if !v.referencesCompanion(scheme, entry.MessageInstructionIndex, companionIdx) {
			return nil, fmt.Errorf("%w: entry %d message references instruction %d, want %d", ErrInvalidCompanionInstruction, i, entry.MessageInstructionIndex, companionIdx)
		}
	}
	first := parsed.Entries[0]
	for i := 1; i < len(parsed.Entries); i++ {
		entry := parsed.Entries[i]
		if entry.MessageOffset != first.MessageOffset || entry.MessageSize != first.MessageSize {
			return nil, fmt.Errorf("%w: entry %d covers message [%d+%d], entry 0 covers [%d+%d]", ErrInvalidCompanionInstruction,
				i, entry.MessageOffset, entry.MessageSize, first.MessageOffset, first.MessageSize)
		}
	}
	if first.MessageSize != params.DigestLength {
		return nil, fmt.Errorf("%w: message size %d, want %d", ErrInvalidArgument, first.MessageSize, params.DigestLength)
	}
	message := parsed.Message()

	if !bytes.Equal(first.SignerIdentity, expected) {
		return nil, fmt.Errorf("%w: have %x, want %x", ErrInvalidGroupKey, first.SignerIdentity, expected)
	}
	return message, nil
}

// ValidateSigner is Validate with the scheme and identity taken from a
// persisted signer.
func (v *Validator) ValidateSigner(accessor BatchAccessor, signer *types.ExpectedSigner) ([]byte, error) {
	return v.Validate(accessor, signer.Scheme, signer.Identity)
}

// referencesCompanion reports whether an entry's instruction index names the
// companion instruction.
func (v *Validator) referencesCompanion(scheme types.Scheme, index uint16, companionIdx int) bool {
	if int(index) == companionIdx {
		return true
	}
	return v.config.AcceptSelfReference && scheme == types.Ed25519 && index == params.Ed25519SelfIndex
}

// Validate is a convenience wrapper creating a one-off validator.
func Validate(config Config, accessor BatchAccessor, scheme types.Scheme, expected []byte) ([]byte, error) {
	v, err := NewValidator(config)
	if err != nil {
		return nil, err
	}
	return v.Validate(accessor, scheme, expected)
}
