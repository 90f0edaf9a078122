package signerdb

import "github.com/morph-l2/offsig/core/types"

var expectedSignerPrefix = []byte("ES-") // expectedSignerPrefix + account -> scheme || identity

// ExpectedSignerKey = expectedSignerPrefix + account
func ExpectedSignerKey(account types.Pubkey) []byte {
	return append(append([]byte{}, expectedSignerPrefix...), account.Bytes()...)
}
