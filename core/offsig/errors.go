package offsig

import (
	"errors"

	"github.com/morph-l2/offsig/core/types"
)

var (
	// ErrInstructionAtWrongIndex is returned when the validated instruction is
	// the first of its batch, so no companion instruction can precede it.
	ErrInstructionAtWrongIndex = errors.New("instruction at wrong index")

	// ErrInvalidCompanionInstruction is returned when the companion instruction
	// cannot be loaded, carries no signatures, or its entries reference another
	// instruction or another message.
	ErrInvalidCompanionInstruction = errors.New("invalid companion instruction")

	// ErrInvalidProgramID is returned when the companion instruction was not
	// addressed to the trusted verifier of the requested scheme.
	ErrInvalidProgramID = errors.New("invalid program id")

	ErrMalformedHeader  = errors.New("malformed companion header")
	ErrTruncatedEntry   = errors.New("truncated signature entry")
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrInvalidArgument is returned when the shared message is not a digest.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidGroupKey is returned when the primary signer differs from the
	// expected signer.
	ErrInvalidGroupKey = errors.New("invalid group key")

	ErrUnknownScheme = types.ErrUnknownScheme

	ErrMissingVerifier            = errors.New("missing verifier program id")
	ErrInstructionIndexOutOfRange = errors.New("instruction index out of range")
)

// Code is the numeric error reported to hosts that only carry integer
// program errors.
type Code uint32

// CustomErrorOffset is the first code used for validator errors.
const CustomErrorOffset Code = 6000

const (
	CodeInstructionAtWrongIndex Code = CustomErrorOffset + iota
	CodeInvalidCompanionInstruction
	CodeInvalidProgramID
	CodeMalformedHeader
	CodeTruncatedEntry
	CodeOffsetOutOfRange
	CodeInvalidArgument
	CodeInvalidGroupKey
	CodeUnknownScheme
)

var codes = []struct {
	err  error
	code Code
	name string
}{
	{ErrInstructionAtWrongIndex, CodeInstructionAtWrongIndex, "InstructionAtWrongIndex"},
	{ErrInvalidCompanionInstruction, CodeInvalidCompanionInstruction, "InvalidCompanionInstruction"},
	{ErrInvalidProgramID, CodeInvalidProgramID, "InvalidProgramId"},
	{ErrMalformedHeader, CodeMalformedHeader, "MalformedHeader"},
	{ErrTruncatedEntry, CodeTruncatedEntry, "TruncatedEntry"},
	{ErrOffsetOutOfRange, CodeOffsetOutOfRange, "OffsetOutOfRange"},
	{ErrInvalidArgument, CodeInvalidArgument, "InvalidArgument"},
	{ErrInvalidGroupKey, CodeInvalidGroupKey, "InvalidGroupKey"},
	{ErrUnknownScheme, CodeUnknownScheme, "UnknownScheme"},
}

// ErrorCode maps a validation failure onto its numeric code. The second
// return value is false for errors not produced by this package.
func ErrorCode(err error) (Code, bool) {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code, true
		}
	}
	return 0, false
}

func (c Code) String() string {
	for _, entry := range codes {
		if entry.code == c {
			return entry.name
		}
	}
	return "Unknown"
}
