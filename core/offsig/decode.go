package offsig

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/morph-l2/offsig/core/types"
)

// SignatureOffsets is one raw record of a companion instruction. Offsets are
// relative to the data of the instruction named by the matching index.
type SignatureOffsets struct {
	SignatureOffset           uint16
	SignatureInstructionIndex uint16
	IdentityOffset            uint16
	IdentityInstructionIndex  uint16
	MessageOffset             uint16
	MessageSize               uint16
	MessageInstructionIndex   uint16
}

// SignatureEntry is a decoded record together with the signer identity it
// points at. SignerIdentity aliases the companion data.
type SignatureEntry struct {
	SignatureOffsets
	SignerIdentity []byte
}

// ParsedBatch holds the entries of a companion instruction in encoding order.
type ParsedBatch struct {
	Scheme  types.Scheme
	Entries []SignatureEntry

	data []byte
}

// Message returns a copy of the message window of the first entry, or nil if
// there are no entries.
func (p *ParsedBatch) Message() []byte {
	if len(p.Entries) == 0 {
		return nil
	}
	first := p.Entries[0]
	start := int(first.MessageOffset)
	return common.CopyBytes(p.data[start : start+int(first.MessageSize)])
}

// DecodeOffsets reads the header and all records of a companion instruction
// without resolving any of the offsets they carry.
func DecodeOffsets(scheme types.Scheme, data []byte) ([]SignatureOffsets, error) {
	l, err := layoutFor(scheme)
	if err != nil {
		return nil, err
	}
	if len(data) < minHeaderSize {
		return nil, fmt.Errorf("%w: have %d bytes, want at least %d", ErrMalformedHeader, len(data), minHeaderSize)
	}
	var (
		count   = int(data[0])
		entries = make([]SignatureOffsets, 0, count)
		cursor  = l.headerSize
	)
	for i := 0; i < count; i++ {
		end := cursor + l.recordSize
		if end > len(data) {
			return nil, fmt.Errorf("%w: entry %d of %d needs %d bytes, have %d", ErrTruncatedEntry, i, count, end, len(data))
		}
		entries = append(entries, l.readRecord(data[cursor:end]))
		cursor = end
	}
	return entries, nil
}

// Decode parses a companion instruction and resolves the signer identity of
// every entry against the instruction's own data. The identity and message
// windows have to lie inside data; signature offsets are left unchecked
// since the verifier program already consumed them.
func Decode(scheme types.Scheme, data []byte) (*ParsedBatch, error) {
	offsets, err := DecodeOffsets(scheme, data)
	if err != nil {
		return nil, err
	}
	width := layouts[scheme].identityLength

	parsed := &ParsedBatch{
		Scheme:  scheme,
		Entries: make([]SignatureEntry, len(offsets)),
		data:    data,
	}
	for i, off := range offsets {
		if err := checkWindow(data, "identity", i, int(off.IdentityOffset), width); err != nil {
			return nil, err
		}
		if err := checkWindow(data, "message", i, int(off.MessageOffset), int(off.MessageSize)); err != nil {
			return nil, err
		}
		start := int(off.IdentityOffset)
		parsed.Entries[i] = SignatureEntry{
			SignatureOffsets: off,
			SignerIdentity:   data[start : start+width : start+width],
		}
	}
	return parsed, nil
}

func checkWindow(data []byte, what string, entry, offset, size int) error {
	if offset+size > len(data) {
		return fmt.Errorf("%w: entry %d %s [%d, %d) exceeds %d bytes", ErrOffsetOutOfRange, entry, what, offset, offset+size, len(data))
	}
	return nil
}
