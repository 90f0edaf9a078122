package native

import (
	"testing"

	"github.com/morph-l2/offsig/core/types"
	"github.com/morph-l2/offsig/params"
)

// FuzzVerifyInstruction checks that arbitrary verifier data never panics the
// emulated verifiers.
// Run with: go test -fuzz=FuzzVerifyInstruction -fuzztime=30s
func FuzzVerifyInstruction(f *testing.F) {
	ed, err := NewEd25519Instruction(params.Ed25519ProgramID, params.Ed25519SelfIndex, digest, edKeys(2)...)
	if err != nil {
		f.Fatal(err)
	}
	f.Add(true, ed.Data)
	f.Add(false, []byte{1, 0, 0, 0})
	f.Add(true, []byte{0, 0})

	f.Fuzz(func(t *testing.T, edwards bool, data []byte) {
		scheme := types.Secp256k1
		if edwards {
			scheme = types.Ed25519
		}
		batch := types.Batch{{ProgramID: appProgram, Data: data}, {ProgramID: appProgram, Data: data}}
		VerifyInstruction(scheme, batch, 1)
	})
}
