package params

import "github.com/morph-l2/offsig/core/types"

var (
	// Secp256k1ProgramID is the id of the native program that checks
	// recoverable secp256k1 signatures against keccak256 of the message.
	Secp256k1ProgramID = types.MustParsePubkey("KeccakSecp256k11111111111111111111111111111")

	// Ed25519ProgramID is the id of the native ed25519 verifier program.
	Ed25519ProgramID = types.MustParsePubkey("Ed25519SigVerify111111111111111111111111111")
)

const (
	// DigestLength is the width of the message every signature of a companion
	// instruction has to cover.
	DigestLength = 32

	// Ed25519SelfIndex is the instruction index the ed25519 verifier accepts
	// as "the verifier instruction itself".
	Ed25519SelfIndex = 0xFFFF

	// MaxInstructionDataSize bounds instruction data so that every offset
	// stays addressable by a 16 bit field.
	MaxInstructionDataSize = 0xFFFF
)
