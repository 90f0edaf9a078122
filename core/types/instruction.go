package types

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Instruction is a single entry of a batch: the program it is addressed to
// and its raw data.
type Instruction struct {
	ProgramID Pubkey
	Data      []byte
}

type instructionMarshaling struct {
	ProgramID Pubkey        `json:"programId"`
	Data      hexutil.Bytes `json:"data"`
}

// Copy returns a deep copy of the instruction.
func (ix *Instruction) Copy() *Instruction {
	return &Instruction{ProgramID: ix.ProgramID, Data: common.CopyBytes(ix.Data)}
}

// MarshalJSON encodes the instruction with a base58 program id and hex data.
func (ix Instruction) MarshalJSON() ([]byte, error) {
	return json.Marshal(instructionMarshaling{ProgramID: ix.ProgramID, Data: ix.Data})
}

// UnmarshalJSON implements json.Unmarshaler.
func (ix *Instruction) UnmarshalJSON(input []byte) error {
	var dec instructionMarshaling
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	ix.ProgramID = dec.ProgramID
	ix.Data = dec.Data
	return nil
}

// Batch is the ordered list of instructions that execute together. It is
// assembled by the host and never modified while being validated.
type Batch []Instruction

// Len returns the number of instructions in the batch.
func (b Batch) Len() int { return len(b) }
