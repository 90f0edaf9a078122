// Package native emulates the trusted signature verifier programs that run as
// companion instructions. The validator in core/offsig never calls it; hosts
// and tools use it to execute or build verifier instructions.
package native

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hdevalence/ed25519consensus"

	"github.com/morph-l2/offsig/core/offsig"
	"github.com/morph-l2/offsig/core/types"
	"github.com/morph-l2/offsig/params"
)

var (
	ErrNotVerifierProgram         = errors.New("instruction is not addressed to a verifier program")
	ErrInvalidInstructionDataSize = errors.New("invalid instruction data size")
	ErrInvalidDataOffsets         = errors.New("invalid data offsets")
	ErrInvalidSignature           = errors.New("invalid signature")
)

// Verify executes the verifier instruction at index of batch the way the
// native program configured for its program id would.
func Verify(config offsig.Config, batch types.Batch, index int) error {
	if index < 0 || index >= len(batch) {
		return fmt.Errorf("%w: index %d, batch length %d", offsig.ErrInstructionIndexOutOfRange, index, len(batch))
	}
	scheme, ok := config.SchemeOf(batch[index].ProgramID)
	if !ok {
		return fmt.Errorf("%w: %v", ErrNotVerifierProgram, batch[index].ProgramID)
	}
	return VerifyInstruction(scheme, batch, index)
}

// VerifyInstruction checks every signature record of the instruction at
// index, resolving offsets against whichever instruction each record names.
func VerifyInstruction(scheme types.Scheme, batch types.Batch, index int) error {
	data := batch[index].Data
	entries, err := offsig.DecodeOffsets(scheme, data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInstructionDataSize, err)
	}
	if len(entries) == 0 && len(data) > offsig.HeaderSize(scheme) {
		return fmt.Errorf("%w: no signatures but %d bytes", ErrInvalidInstructionDataSize, len(data))
	}
	for i, entry := range entries {
		sig, err := fetch(scheme, batch, index, entry.SignatureInstructionIndex, entry.SignatureOffset, offsig.SignatureLength(scheme))
		if err != nil {
			return fmt.Errorf("entry %d signature: %w", i, err)
		}
		identity, err := fetch(scheme, batch, index, entry.IdentityInstructionIndex, entry.IdentityOffset, offsig.IdentityLength(scheme))
		if err != nil {
			return fmt.Errorf("entry %d identity: %w", i, err)
		}
		msg, err := fetch(scheme, batch, index, entry.MessageInstructionIndex, entry.MessageOffset, int(entry.MessageSize))
		if err != nil {
			return fmt.Errorf("entry %d message: %w", i, err)
		}
		switch scheme {
		case types.Secp256k1:
			err = verifySecp256k1(sig, identity, msg)
		case types.Ed25519:
			err = verifyEd25519(sig, identity, msg)
		}
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

// fetch returns size bytes at offset of the instruction named by ixIndex.
func fetch(scheme types.Scheme, batch types.Batch, current int, ixIndex, offset uint16, size int) ([]byte, error) {
	target := int(ixIndex)
	if scheme == types.Ed25519 && ixIndex == params.Ed25519SelfIndex {
		target = current
	}
	if target >= len(batch) {
		return nil, fmt.Errorf("%w: instruction %d, batch length %d", ErrInvalidDataOffsets, target, len(batch))
	}
	data := batch[target].Data
	start, end := int(offset), int(offset)+size
	if end > len(data) {
		return nil, fmt.Errorf("%w: [%d, %d) of instruction %d with %d bytes", ErrInvalidDataOffsets, start, end, target, len(data))
	}
	return data[start:end], nil
}

// verifySecp256k1 recovers the signer of keccak256(msg) and compares its
// address with the 20 byte identity.
func verifySecp256k1(sig, address, msg []byte) error {
	if sig[crypto.RecoveryIDOffset] > 1 {
		return fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, sig[crypto.RecoveryIDOffset])
	}
	pub, err := crypto.Ecrecover(crypto.Keccak256(msg), sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if recovered := crypto.Keccak256(pub[1:])[12:]; !bytes.Equal(recovered, address) {
		return fmt.Errorf("%w: recovered %x, want %x", ErrInvalidSignature, recovered, address)
	}
	return nil
}

func verifyEd25519(sig, pubkey, msg []byte) error {
	if !ed25519consensus.Verify(ed25519.PublicKey(pubkey), msg, sig) {
		return ErrInvalidSignature
	}
	return nil
}
