// Package signerdb persists the expected signer of each account. Entries are
// written once by an initialisation step and read by every validation.
package signerdb

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"

	"github.com/morph-l2/offsig/core/types"
)

var ErrSignerExists = errors.New("expected signer already initialized")

func encodeSigner(signer *types.ExpectedSigner) []byte {
	return append([]byte{byte(signer.Scheme)}, signer.Identity...)
}

func decodeSigner(blob []byte) (*types.ExpectedSigner, error) {
	if len(blob) == 0 {
		return nil, errors.New("empty signer record")
	}
	signer := &types.ExpectedSigner{Scheme: types.Scheme(blob[0]), Identity: blob[1:]}
	if err := signer.Validate(); err != nil {
		return nil, err
	}
	return signer, nil
}

// HasExpectedSigner reports whether account has been initialized.
func HasExpectedSigner(db ethdb.KeyValueReader, account types.Pubkey) bool {
	has, err := db.Has(ExpectedSignerKey(account))
	if err != nil {
		log.Crit("Failed to check expected signer existence", "account", account, "err", err)
	}
	return has
}

// ReadExpectedSigner retrieves the expected signer of account, or nil if the
// account was never initialized.
func ReadExpectedSigner(db ethdb.KeyValueReader, account types.Pubkey) *types.ExpectedSigner {
	if !HasExpectedSigner(db, account) {
		return nil
	}
	blob, err := db.Get(ExpectedSignerKey(account))
	if err != nil {
		log.Crit("Failed to read expected signer", "account", account, "err", err)
	}
	signer, err := decodeSigner(blob)
	if err != nil {
		log.Error("Invalid expected signer record", "account", account, "blob", hexutil.Encode(blob), "err", err)
		return nil
	}
	return signer
}

// WriteExpectedSigner stores signer for account, replacing any previous entry.
func WriteExpectedSigner(db ethdb.KeyValueWriter, account types.Pubkey, signer *types.ExpectedSigner) error {
	if err := signer.Validate(); err != nil {
		return err
	}
	return db.Put(ExpectedSignerKey(account), encodeSigner(signer))
}

// InitExpectedSigner stores signer for account unless one is already present.
func InitExpectedSigner(db ethdb.KeyValueStore, account types.Pubkey, signer *types.ExpectedSigner) error {
	if HasExpectedSigner(db, account) {
		return fmt.Errorf("%w: %v", ErrSignerExists, account)
	}
	if err := WriteExpectedSigner(db, account, signer); err != nil {
		return err
	}
	log.Info("Initialized expected signer", "account", account, "signer", signer)
	return nil
}

// IterateExpectedSigners returns every stored signer keyed by account.
// Corrupt records are logged and skipped.
func IterateExpectedSigners(db ethdb.Iteratee) map[types.Pubkey]*types.ExpectedSigner {
	it := db.NewIterator(expectedSignerPrefix, nil)
	defer it.Release()

	signers := make(map[types.Pubkey]*types.ExpectedSigner)
	for it.Next() {
		accountBytes := it.Key()[len(expectedSignerPrefix):]
		if len(accountBytes) != types.PubkeyLength {
			log.Error("Invalid expected signer key", "key", hexutil.Encode(it.Key()))
			continue
		}
		signer, err := decodeSigner(append([]byte{}, it.Value()...))
		if err != nil {
			log.Error("Invalid expected signer record", "key", hexutil.Encode(it.Key()), "err", err)
			continue
		}
		signers[types.BytesToPubkey(accountBytes)] = signer
	}
	return signers
}
