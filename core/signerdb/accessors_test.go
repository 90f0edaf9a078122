package signerdb

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morph-l2/offsig/core/types"
)

func newSigner(t *testing.T, scheme types.Scheme, fill byte) *types.ExpectedSigner {
	signer, err := types.NewExpectedSigner(scheme, bytes.Repeat([]byte{fill}, scheme.IdentityLength()))
	require.NoError(t, err)
	return signer
}

func TestReadWriteExpectedSigner(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	account := types.BytesToPubkey([]byte{1})

	assert.Nil(t, ReadExpectedSigner(db, account))
	assert.False(t, HasExpectedSigner(db, account))

	signer := newSigner(t, types.Ed25519, 0xaa)
	require.NoError(t, WriteExpectedSigner(db, account, signer))

	got := ReadExpectedSigner(db, account)
	require.NotNil(t, got)
	assert.Equal(t, signer.Scheme, got.Scheme)
	assert.Equal(t, signer.Identity, got.Identity)
}

func TestWriteRejectsBadWidth(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	signer := &types.ExpectedSigner{Scheme: types.Secp256k1, Identity: make([]byte, 32)}
	err := WriteExpectedSigner(db, types.Pubkey{}, signer)
	assert.ErrorIs(t, err, types.ErrInvalidIdentityLength)
}

func TestInitExpectedSignerOnce(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	account := types.BytesToPubkey([]byte{2})

	require.NoError(t, InitExpectedSigner(db, account, newSigner(t, types.Secp256k1, 1)))
	err := InitExpectedSigner(db, account, newSigner(t, types.Secp256k1, 2))
	assert.ErrorIs(t, err, ErrSignerExists)

	got := ReadExpectedSigner(db, account)
	require.NotNil(t, got)
	assert.Equal(t, bytes.Repeat([]byte{1}, 20), []byte(got.Identity))
}

func TestIterateExpectedSigners(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	want := map[types.Pubkey]*types.ExpectedSigner{
		types.BytesToPubkey([]byte{1}): newSigner(t, types.Secp256k1, 1),
		types.BytesToPubkey([]byte{2}): newSigner(t, types.Ed25519, 2),
		types.BytesToPubkey([]byte{3}): newSigner(t, types.Ed25519, 3),
	}
	for account, signer := range want {
		require.NoError(t, InitExpectedSigner(db, account, signer))
	}
	// Corrupt entries are skipped.
	require.NoError(t, db.Put(append(append([]byte{}, expectedSignerPrefix...), 9), []byte{1}))
	require.NoError(t, db.Put(ExpectedSignerKey(types.BytesToPubkey([]byte{4})), []byte{byte(types.Ed25519), 1}))

	got := IterateExpectedSigners(db)
	require.Len(t, got, len(want))
	for account, signer := range want {
		assert.Equal(t, signer.Identity, got[account].Identity)
		assert.Equal(t, signer.Scheme, got[account].Scheme)
	}
	assert.Nil(t, ReadExpectedSigner(db, types.BytesToPubkey([]byte{4})))
}
