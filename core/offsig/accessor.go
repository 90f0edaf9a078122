package offsig

import (
	"fmt"

	"github.com/morph-l2/offsig/core/types"
)

// BatchAccessor exposes the batch the validated instruction is part of. It is
// implemented by the host; the validator only ever reads through it.
type BatchAccessor interface {
	// CurrentIndex returns the zero based position of the executing
	// instruction.
	CurrentIndex() int

	// InstructionAt returns the instruction at index, or an error if index is
	// outside the batch.
	InstructionAt(index int) (*types.Instruction, error)
}

// batchAccessor serves a BatchAccessor out of an in-memory batch.
type batchAccessor struct {
	batch   types.Batch
	current int
}

// NewBatchAccessor returns an accessor positioned at current.
func NewBatchAccessor(batch types.Batch, current int) BatchAccessor {
	return &batchAccessor{batch: batch, current: current}
}

func (a *batchAccessor) CurrentIndex() int { return a.current }

func (a *batchAccessor) InstructionAt(index int) (*types.Instruction, error) {
	if index < 0 || index >= len(a.batch) {
		return nil, fmt.Errorf("%w: index %d, batch length %d", ErrInstructionIndexOutOfRange, index, len(a.batch))
	}
	return &a.batch[index], nil
}
