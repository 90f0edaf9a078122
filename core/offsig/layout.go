package offsig

import (
	"encoding/binary"

	"github.com/morph-l2/offsig/core/types"
)

const (
	// Secp256k1RecordSize is the width of one secp256k1 signature record:
	// three u16 offsets, one u16 size and three u8 instruction indices.
	Secp256k1RecordSize = 11
	// Ed25519RecordSize is the width of one ed25519 signature record: seven
	// u16 fields, the instruction indices included.
	Ed25519RecordSize = 14

	// Secp256k1SignatureSize is r || s || recovery id.
	Secp256k1SignatureSize = 65
	Ed25519SignatureSize   = 64

	// minHeaderSize is the shortest buffer either verifier accepts.
	minHeaderSize = 2
)

// layout describes how a verifier encodes its signature records. Both
// schemes share one decoding loop and only differ in these values.
type layout struct {
	headerSize      int  // count byte plus padding
	recordSize      int  // bytes per record
	identityLength  int  // width of the signer identity
	signatureLength int  // width of the signature itself
	wideIndices     bool // instruction indices are u16 instead of u8
}

var layouts = map[types.Scheme]layout{
	types.Secp256k1: {
		headerSize:      1,
		recordSize:      Secp256k1RecordSize,
		identityLength:  types.Secp256k1IdentityLength,
		signatureLength: Secp256k1SignatureSize,
	},
	types.Ed25519: {
		headerSize:      2,
		recordSize:      Ed25519RecordSize,
		identityLength:  types.Ed25519IdentityLength,
		signatureLength: Ed25519SignatureSize,
		wideIndices:     true,
	},
}

func layoutFor(scheme types.Scheme) (layout, error) {
	l, ok := layouts[scheme]
	if !ok {
		return layout{}, ErrUnknownScheme
	}
	return l, nil
}

// readRecord decodes one record. rec must be exactly recordSize bytes long.
func (l layout) readRecord(rec []byte) SignatureOffsets {
	if l.wideIndices {
		return SignatureOffsets{
			SignatureOffset:           binary.LittleEndian.Uint16(rec[0:]),
			SignatureInstructionIndex: binary.LittleEndian.Uint16(rec[2:]),
			IdentityOffset:            binary.LittleEndian.Uint16(rec[4:]),
			IdentityInstructionIndex:  binary.LittleEndian.Uint16(rec[6:]),
			MessageOffset:             binary.LittleEndian.Uint16(rec[8:]),
			MessageSize:               binary.LittleEndian.Uint16(rec[10:]),
			MessageInstructionIndex:   binary.LittleEndian.Uint16(rec[12:]),
		}
	}
	return SignatureOffsets{
		SignatureOffset:           binary.LittleEndian.Uint16(rec[0:]),
		SignatureInstructionIndex: uint16(rec[2]),
		IdentityOffset:            binary.LittleEndian.Uint16(rec[3:]),
		IdentityInstructionIndex:  uint16(rec[5]),
		MessageOffset:             binary.LittleEndian.Uint16(rec[6:]),
		MessageSize:               binary.LittleEndian.Uint16(rec[8:]),
		MessageInstructionIndex:   uint16(rec[10]),
	}
}

// IdentityLength returns the signer identity width of scheme.
func IdentityLength(scheme types.Scheme) int {
	return layouts[scheme].identityLength
}

// SignatureLength returns the signature width of scheme.
func SignatureLength(scheme types.Scheme) int {
	return layouts[scheme].signatureLength
}

// HeaderSize returns the number of bytes preceding the first record.
func HeaderSize(scheme types.Scheme) int {
	return layouts[scheme].headerSize
}

// RecordSize returns the width of a single signature record.
func RecordSize(scheme types.Scheme) int {
	return layouts[scheme].recordSize
}
