package offsig

import (
	"encoding/binary"

	"github.com/morph-l2/offsig/core/types"
)

// encodeRecords is the reference inverse of DecodeOffsets.
func encodeRecords(scheme types.Scheme, offsets []SignatureOffsets) []byte {
	l := layouts[scheme]
	buf := make([]byte, l.headerSize, l.headerSize+len(offsets)*l.recordSize)
	buf[0] = byte(len(offsets))
	for _, o := range offsets {
		rec := make([]byte, l.recordSize)
		if l.wideIndices {
			binary.LittleEndian.PutUint16(rec[0:], o.SignatureOffset)
			binary.LittleEndian.PutUint16(rec[2:], o.SignatureInstructionIndex)
			binary.LittleEndian.PutUint16(rec[4:], o.IdentityOffset)
			binary.LittleEndian.PutUint16(rec[6:], o.IdentityInstructionIndex)
			binary.LittleEndian.PutUint16(rec[8:], o.MessageOffset)
			binary.LittleEndian.PutUint16(rec[10:], o.MessageSize)
			binary.LittleEndian.PutUint16(rec[12:], o.MessageInstructionIndex)
		} else {
			binary.LittleEndian.PutUint16(rec[0:], o.SignatureOffset)
			rec[2] = byte(o.SignatureInstructionIndex)
			binary.LittleEndian.PutUint16(rec[3:], o.IdentityOffset)
			rec[5] = byte(o.IdentityInstructionIndex)
			binary.LittleEndian.PutUint16(rec[6:], o.MessageOffset)
			binary.LittleEndian.PutUint16(rec[8:], o.MessageSize)
			rec[10] = byte(o.MessageInstructionIndex)
		}
		buf = append(buf, rec...)
	}
	return buf
}

// companion describes a well formed companion instruction: every signer
// covers the same message and all entries reference index.
type companion struct {
	scheme     types.Scheme
	index      uint16
	identities [][]byte
	message    []byte
}

// encode lays out records, then identity and a zeroed signature per signer,
// then the shared message.
func (c companion) encode() ([]byte, []SignatureOffsets) {
	l := layouts[c.scheme]
	var (
		offsets = make([]SignatureOffsets, len(c.identities))
		payload []byte
		cursor  = l.headerSize + len(c.identities)*l.recordSize
	)
	for i, id := range c.identities {
		offsets[i].IdentityOffset = uint16(cursor)
		offsets[i].IdentityInstructionIndex = c.index
		payload = append(payload, id...)
		cursor += len(id)

		offsets[i].SignatureOffset = uint16(cursor)
		offsets[i].SignatureInstructionIndex = c.index
		payload = append(payload, make([]byte, l.signatureLength)...)
		cursor += l.signatureLength
	}
	for i := range offsets {
		offsets[i].MessageOffset = uint16(cursor)
		offsets[i].MessageSize = uint16(len(c.message))
		offsets[i].MessageInstructionIndex = c.index
	}
	payload = append(payload, c.message...)
	return append(encodeRecords(c.scheme, offsets), payload...), offsets
}

func filled(n int, b byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b + byte(i)
	}
	return out
}

// withOffsets replaces the records of data, keeping its payload. The number
// of records must not change.
func withOffsets(scheme types.Scheme, data []byte, offsets []SignatureOffsets) []byte {
	records := encodeRecords(scheme, offsets)
	return append(records, data[len(records):]...)
}
