package main

import (
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morph-l2/offsig/core/native"
	"github.com/morph-l2/offsig/core/offsig"
	"github.com/morph-l2/offsig/core/signerdb"
	"github.com/morph-l2/offsig/core/types"
	"github.com/morph-l2/offsig/params"
)

var (
	appProgram = types.BytesToPubkey([]byte("offsig-app"))
	digest     = crypto.Keccak256([]byte("release escrow 7"))
)

func testKey(seed byte) ed25519.PrivateKey {
	b := make([]byte, ed25519.SeedSize)
	b[0] = seed
	return ed25519.NewKeyFromSeed(b)
}

func testSigner(t *testing.T, key ed25519.PrivateKey) *types.ExpectedSigner {
	signer, err := types.NewExpectedSigner(types.Ed25519, key.Public().(ed25519.PublicKey))
	require.NoError(t, err)
	return signer
}

// signedCase returns a two instruction batch whose companion carries
// signatures of keys over digest.
func signedCase(t *testing.T, keys ...ed25519.PrivateKey) *validationCase {
	ix, err := native.NewEd25519Instruction(params.Ed25519ProgramID, 0, digest, keys...)
	require.NoError(t, err)
	return &validationCase{
		Batch:   types.Batch{*ix, {ProgramID: appProgram, Data: []byte("settle")}},
		Current: 1,
	}
}

func newTestRunner(t *testing.T, signers *signerSource, withNative bool) *runner {
	validator, err := offsig.NewValidator(defaultConfig.Verifiers)
	require.NoError(t, err)
	if signers == nil {
		signers = new(signerSource)
	}
	return &runner{validator: validator, signers: signers, native: withNative}
}

func TestReadCases(t *testing.T) {
	c := signedCase(t, testKey(1))
	c.Name = "first"
	c.Signer = testSigner(t, testKey(1))
	c.Expect = "ok"
	line, err := json.Marshal(c)
	require.NoError(t, err)

	corpus := string(line) + "\n\n  \n" + string(line) + "\n"
	cases, err := readCases(strings.NewReader(corpus))
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, c, cases[0])
	assert.Equal(t, "first", cases[1].label(1))

	_, err = readCases(strings.NewReader(string(line) + "\n{not json}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadCase(t *testing.T) {
	c := signedCase(t, testKey(1))
	blob, err := json.Marshal(c)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "case.json")
	require.NoError(t, os.WriteFile(path, blob, 0644))

	loaded, err := readCase(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
	assert.Equal(t, "case #3", loaded.label(3))
}

func TestSignerSource(t *testing.T) {
	var (
		db      = rawdb.NewMemoryDatabase()
		stored  = testSigner(t, testKey(1))
		inline  = testSigner(t, testKey(2))
		own     = testSigner(t, testKey(3))
		account = types.BytesToPubkey([]byte("account"))
		other   = types.BytesToPubkey([]byte("other"))
	)
	require.NoError(t, signerdb.InitExpectedSigner(db, account, stored))

	source := &signerSource{db: db, account: account, inline: inline}
	signer, err := source.resolve(&validationCase{Signer: own})
	require.NoError(t, err)
	assert.Equal(t, own, signer)

	signer, err = source.resolve(&validationCase{})
	require.NoError(t, err)
	assert.Equal(t, stored, signer)

	_, err = source.resolve(&validationCase{Account: &other})
	assert.ErrorIs(t, err, errSignerNotFound)

	signer, err = (&signerSource{inline: inline}).resolve(&validationCase{})
	require.NoError(t, err)
	assert.Equal(t, inline, signer)

	_, err = (&signerSource{}).resolve(&validationCase{})
	assert.ErrorIs(t, err, errNoSigner)

	_, err = (&signerSource{account: account}).resolve(&validationCase{})
	assert.ErrorIs(t, err, errNoStore)
}

func TestRunnerVerdicts(t *testing.T) {
	key := testKey(1)
	r := newTestRunner(t, &signerSource{inline: testSigner(t, key)}, true)

	v, err := r.run(signedCase(t, key, testKey(2)))
	require.NoError(t, err)
	require.NoError(t, v.Err)
	assert.Equal(t, digest, v.Message)
	assert.Equal(t, "ok", v.Label())

	v, err = r.run(signedCase(t, testKey(9)))
	require.NoError(t, err)
	assert.ErrorIs(t, v.Err, offsig.ErrInvalidGroupKey)
	assert.Equal(t, "InvalidGroupKey", v.Label())

	c := signedCase(t, key)
	c.Current = 0
	v, err = r.run(c)
	require.NoError(t, err)
	assert.Equal(t, "InstructionAtWrongIndex", v.Label())
}

func TestRunnerNative(t *testing.T) {
	key := testKey(1)
	c := signedCase(t, key)
	// Flip a signature byte: the structure still validates but the
	// emulated verifier rejects the instruction.
	c.Batch[0].Data[offsig.HeaderSize(types.Ed25519)+offsig.RecordSize(types.Ed25519)+types.Ed25519IdentityLength] ^= 0xff

	v, err := newTestRunner(t, &signerSource{inline: testSigner(t, key)}, false).run(c)
	require.NoError(t, err)
	assert.Equal(t, "ok", v.Label())

	v, err = newTestRunner(t, &signerSource{inline: testSigner(t, key)}, true).run(c)
	require.NoError(t, err)
	assert.ErrorIs(t, v.Err, native.ErrInvalidSignature)
	assert.Equal(t, "InvalidSignature", v.Label())
}
