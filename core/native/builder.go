package native

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/morph-l2/offsig/core/offsig"
	"github.com/morph-l2/offsig/core/types"
	"github.com/morph-l2/offsig/params"
)

var (
	ErrNoSigners      = errors.New("no signers")
	ErrTooManySigners = errors.New("too many signers")
)

// maxSigners is bounded by the one byte signature count.
const maxSigners = 255

// signature is one signer's identity and signature over the shared message.
type signature struct {
	identity []byte
	sig      []byte
}

// Secp256k1Identity returns the 20 byte address the secp256k1 verifier
// compares recovered keys against.
func Secp256k1Identity(pub *ecdsa.PublicKey) []byte {
	return crypto.PubkeyToAddress(*pub).Bytes()
}

// NewSecp256k1Instruction signs keccak256(message) with every key and packs
// the signatures into one verifier instruction. index is the position the
// instruction will take in its batch.
func NewSecp256k1Instruction(program types.Pubkey, index uint8, message []byte, keys ...*ecdsa.PrivateKey) (*types.Instruction, error) {
	hash := crypto.Keccak256(message)
	sigs := make([]signature, len(keys))
	for i, key := range keys {
		sig, err := crypto.Sign(hash, key)
		if err != nil {
			return nil, fmt.Errorf("signer %d: %w", i, err)
		}
		sigs[i] = signature{identity: Secp256k1Identity(&key.PublicKey), sig: sig}
	}
	data, err := pack(types.Secp256k1, uint16(index), message, sigs)
	if err != nil {
		return nil, err
	}
	return &types.Instruction{ProgramID: program, Data: data}, nil
}

// NewEd25519Instruction signs message with every key and packs the
// signatures into one verifier instruction. Pass params.Ed25519SelfIndex as
// index to let the verifier resolve the instruction itself.
func NewEd25519Instruction(program types.Pubkey, index uint16, message []byte, keys ...ed25519.PrivateKey) (*types.Instruction, error) {
	sigs := make([]signature, len(keys))
	for i, key := range keys {
		sigs[i] = signature{
			identity: key.Public().(ed25519.PublicKey),
			sig:      ed25519.Sign(key, message),
		}
	}
	data, err := pack(types.Ed25519, index, message, sigs)
	if err != nil {
		return nil, err
	}
	return &types.Instruction{ProgramID: program, Data: data}, nil
}

// pack lays out the header, one record per signer, each signer's identity
// followed by its signature, and finally the shared message.
func pack(scheme types.Scheme, index uint16, message []byte, sigs []signature) ([]byte, error) {
	switch {
	case len(sigs) == 0:
		return nil, ErrNoSigners
	case len(sigs) > maxSigners:
		return nil, fmt.Errorf("%w: %d, max %d", ErrTooManySigners, len(sigs), maxSigners)
	}
	var (
		header    = offsig.HeaderSize(scheme)
		record    = offsig.RecordSize(scheme)
		perSigner = offsig.IdentityLength(scheme) + offsig.SignatureLength(scheme)
		msgOffset = header + len(sigs)*(record+perSigner)
		size      = msgOffset + len(message)
	)
	if size > params.MaxInstructionDataSize {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrInvalidInstructionDataSize, size, params.MaxInstructionDataSize)
	}
	data := make([]byte, header, size)
	data[0] = byte(len(sigs))

	cursor := header + len(sigs)*record
	for _, s := range sigs {
		offsets := offsig.SignatureOffsets{
			IdentityOffset:            uint16(cursor),
			IdentityInstructionIndex:  index,
			SignatureOffset:           uint16(cursor + len(s.identity)),
			SignatureInstructionIndex: index,
			MessageOffset:             uint16(msgOffset),
			MessageSize:               uint16(len(message)),
			MessageInstructionIndex:   index,
		}
		data = appendRecord(data, scheme, offsets)
		cursor += perSigner
	}
	for _, s := range sigs {
		data = append(data, s.identity...)
		data = append(data, s.sig...)
	}
	return append(data, message...), nil
}

func appendRecord(data []byte, scheme types.Scheme, o offsig.SignatureOffsets) []byte {
	if scheme == types.Ed25519 {
		data = binary.LittleEndian.AppendUint16(data, o.SignatureOffset)
		data = binary.LittleEndian.AppendUint16(data, o.SignatureInstructionIndex)
		data = binary.LittleEndian.AppendUint16(data, o.IdentityOffset)
		data = binary.LittleEndian.AppendUint16(data, o.IdentityInstructionIndex)
		data = binary.LittleEndian.AppendUint16(data, o.MessageOffset)
		data = binary.LittleEndian.AppendUint16(data, o.MessageSize)
		return binary.LittleEndian.AppendUint16(data, o.MessageInstructionIndex)
	}
	data = binary.LittleEndian.AppendUint16(data, o.SignatureOffset)
	data = append(data, byte(o.SignatureInstructionIndex))
	data = binary.LittleEndian.AppendUint16(data, o.IdentityOffset)
	data = append(data, byte(o.IdentityInstructionIndex))
	data = binary.LittleEndian.AppendUint16(data, o.MessageOffset)
	data = binary.LittleEndian.AppendUint16(data, o.MessageSize)
	return append(data, byte(o.MessageInstructionIndex))
}
