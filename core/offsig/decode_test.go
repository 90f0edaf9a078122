package offsig

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morph-l2/offsig/core/types"
)

func randomOffsets(rng *rand.Rand, scheme types.Scheme) SignatureOffsets {
	index := func() uint16 {
		if scheme == types.Secp256k1 {
			return uint16(rng.Intn(256))
		}
		return uint16(rng.Intn(1 << 16))
	}
	return SignatureOffsets{
		SignatureOffset:           uint16(rng.Intn(1 << 16)),
		SignatureInstructionIndex: index(),
		IdentityOffset:            uint16(rng.Intn(1 << 16)),
		IdentityInstructionIndex:  index(),
		MessageOffset:             uint16(rng.Intn(1 << 16)),
		MessageSize:               uint16(rng.Intn(1 << 16)),
		MessageInstructionIndex:   index(),
	}
}

func TestDecodeOffsetsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, scheme := range []types.Scheme{types.Secp256k1, types.Ed25519} {
		for _, n := range []int{0, 1, 2, 3, 17, 255} {
			want := make([]SignatureOffsets, n)
			for i := range want {
				want[i] = randomOffsets(rng, scheme)
			}
			data := encodeRecords(scheme, want)
			if len(data) < minHeaderSize {
				data = append(data, 0)
			}
			have, err := DecodeOffsets(scheme, data)
			require.NoError(t, err, "scheme %v, %d entries", scheme, n)
			require.Len(t, have, n)
			assert.Equal(t, want, have, "scheme %v, %d entries", scheme, n)
		}
	}
}

func TestDecodeRecordWidth(t *testing.T) {
	assert.Equal(t, 1+2*11, len(encodeRecords(types.Secp256k1, make([]SignatureOffsets, 2))))
	assert.Equal(t, 2+2*14, len(encodeRecords(types.Ed25519, make([]SignatureOffsets, 2))))
	assert.Equal(t, Secp256k1RecordSize, RecordSize(types.Secp256k1))
	assert.Equal(t, Ed25519RecordSize, RecordSize(types.Ed25519))
}

func TestDecodeMultipleEntries(t *testing.T) {
	for _, scheme := range []types.Scheme{types.Secp256k1, types.Ed25519} {
		width := IdentityLength(scheme)
		c := companion{
			scheme:     scheme,
			index:      3,
			identities: [][]byte{filled(width, 0x10), filled(width, 0x40), filled(width, 0x70)},
			message:    filled(32, 0xa0),
		}
		data, offsets := c.encode()

		parsed, err := Decode(scheme, data)
		require.NoError(t, err)
		require.Len(t, parsed.Entries, 3)
		for i, entry := range parsed.Entries {
			assert.Equal(t, offsets[i], entry.SignatureOffsets, "%v entry %d", scheme, i)
			assert.Equal(t, c.identities[i], entry.SignerIdentity, "%v entry %d", scheme, i)
		}
		assert.Equal(t, c.message, parsed.Message())
	}
}

func TestDecodeMalformedHeader(t *testing.T) {
	for _, scheme := range []types.Scheme{types.Secp256k1, types.Ed25519} {
		for _, data := range [][]byte{nil, {}, {1}} {
			_, err := Decode(scheme, data)
			assert.ErrorIs(t, err, ErrMalformedHeader, "%v %x", scheme, data)
		}
	}
}

func TestDecodeTruncatedEntry(t *testing.T) {
	for _, scheme := range []types.Scheme{types.Secp256k1, types.Ed25519} {
		data := encodeRecords(scheme, make([]SignatureOffsets, 2))
		data[0] = 3

		_, err := Decode(scheme, data)
		assert.ErrorIs(t, err, ErrTruncatedEntry, "%v", scheme)

		// One byte short of the second record.
		data = encodeRecords(scheme, make([]SignatureOffsets, 2))
		_, err = Decode(scheme, data[:len(data)-1])
		assert.ErrorIs(t, err, ErrTruncatedEntry, "%v", scheme)
	}
}

func TestDecodeOffsetOutOfRange(t *testing.T) {
	for _, scheme := range []types.Scheme{types.Secp256k1, types.Ed25519} {
		width := IdentityLength(scheme)
		c := companion{scheme: scheme, identities: [][]byte{filled(width, 1)}, message: filled(32, 2)}

		data, offsets := c.encode()
		offsets[0].IdentityOffset = uint16(len(data) - width + 1)
		_, err := Decode(scheme, withOffsets(scheme, data, offsets))
		assert.ErrorIs(t, err, ErrOffsetOutOfRange, "%v identity", scheme)

		data, offsets = c.encode()
		offsets[0].MessageSize = 33
		_, err = Decode(scheme, withOffsets(scheme, data, offsets))
		assert.ErrorIs(t, err, ErrOffsetOutOfRange, "%v message", scheme)

		data, offsets = c.encode()
		offsets[0].MessageOffset = 0xffff
		offsets[0].MessageSize = 0xffff
		_, err = Decode(scheme, withOffsets(scheme, data, offsets))
		assert.ErrorIs(t, err, ErrOffsetOutOfRange, "%v wrapped message", scheme)
	}
}

func TestDecodeIgnoresSignatureOffsets(t *testing.T) {
	for _, scheme := range []types.Scheme{types.Secp256k1, types.Ed25519} {
		c := companion{scheme: scheme, identities: [][]byte{filled(IdentityLength(scheme), 1)}, message: filled(32, 2)}
		data, offsets := c.encode()
		offsets[0].SignatureOffset = 0xffff
		offsets[0].SignatureInstructionIndex = 7
		parsed, err := Decode(scheme, withOffsets(scheme, data, offsets))
		require.NoError(t, err)
		assert.Equal(t, uint16(0xffff), parsed.Entries[0].SignatureOffset)
	}
}

func TestDecodeEmpty(t *testing.T) {
	parsed, err := Decode(types.Ed25519, []byte{0, 0})
	require.NoError(t, err)
	assert.Empty(t, parsed.Entries)
	assert.Nil(t, parsed.Message())
}

func TestDecodeUnknownScheme(t *testing.T) {
	_, err := Decode(types.Scheme(9), []byte{0, 0})
	assert.ErrorIs(t, err, ErrUnknownScheme)
}
