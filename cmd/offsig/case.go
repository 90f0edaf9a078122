package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/ethdb"

	"github.com/morph-l2/offsig/core/native"
	"github.com/morph-l2/offsig/core/offsig"
	"github.com/morph-l2/offsig/core/signerdb"
	"github.com/morph-l2/offsig/core/types"
)

var (
	errNoSigner       = errors.New("no expected signer configured")
	errSignerNotFound = errors.New("expected signer not initialized")
	errNoStore        = errors.New("account given without a signer store")
)

// maxCaseLine bounds a single JSON line of a replay corpus.
const maxCaseLine = 4 * 1024 * 1024

// validationCase is one batch together with the position of the validated
// instruction and, optionally, the signer it has to carry.
type validationCase struct {
	Name    string                `json:"name,omitempty"`
	Batch   types.Batch           `json:"batch"`
	Current int                   `json:"current"`
	Signer  *types.ExpectedSigner `json:"signer,omitempty"`
	Account *types.Pubkey         `json:"account,omitempty"`
	Expect  string                `json:"expect,omitempty"` // "ok" or an error code name
}

func (c *validationCase) label(n int) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("case #%d", n)
}

// verdict is the outcome of validating one case.
type verdict struct {
	Message []byte
	Err     error
}

// Label names the verdict the way cases spell their expectation.
func (v verdict) Label() string {
	if v.Err == nil {
		return "ok"
	}
	if code, ok := offsig.ErrorCode(v.Err); ok {
		return code.String()
	}
	switch {
	case errors.Is(v.Err, native.ErrInvalidSignature):
		return "InvalidSignature"
	case errors.Is(v.Err, native.ErrInvalidDataOffsets):
		return "InvalidDataOffsets"
	case errors.Is(v.Err, native.ErrInvalidInstructionDataSize):
		return "InvalidInstructionDataSize"
	case errors.Is(v.Err, native.ErrNotVerifierProgram):
		return "NotVerifierProgram"
	}
	return "Error"
}

// signerSource resolves the expected signer of a case. The case's own signer
// wins, then an account (from the case or the configuration) looked up in the
// store, then the inline signer of the configuration.
type signerSource struct {
	db      ethdb.KeyValueReader // nil without a signer store
	account types.Pubkey
	inline  *types.ExpectedSigner
}

func (s *signerSource) resolve(c *validationCase) (*types.ExpectedSigner, error) {
	if c.Signer != nil {
		return c.Signer, nil
	}
	account := s.account
	if c.Account != nil {
		account = *c.Account
	}
	if !account.IsZero() {
		if s.db == nil {
			return nil, fmt.Errorf("%w: %v", errNoStore, account)
		}
		signer := signerdb.ReadExpectedSigner(s.db, account)
		if signer == nil {
			return nil, fmt.Errorf("%w: %v", errSignerNotFound, account)
		}
		return signer, nil
	}
	if s.inline != nil {
		return s.inline, nil
	}
	return nil, errNoSigner
}

// runner validates cases against one validator.
type runner struct {
	validator *offsig.Validator
	signers   *signerSource
	native    bool // execute the companion with the emulated verifier first
}

func (r *runner) run(c *validationCase) (verdict, error) {
	signer, err := r.signers.resolve(c)
	if err != nil {
		return verdict{}, err
	}
	return r.check(c, signer), nil
}

// check validates c against an already resolved signer.
func (r *runner) check(c *validationCase, signer *types.ExpectedSigner) verdict {
	if r.native && c.Current > 0 && c.Current <= len(c.Batch) {
		if err := native.Verify(r.validator.Config(), c.Batch, c.Current-1); err != nil {
			return verdict{Err: err}
		}
	}
	msg, err := r.validator.ValidateSigner(offsig.NewBatchAccessor(c.Batch, c.Current), signer)
	return verdict{Message: msg, Err: err}
}

// readCase loads a single JSON case file.
func readCase(path string) (*validationCase, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := new(validationCase)
	if err := json.Unmarshal(blob, c); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return c, nil
}

// readCases decodes a JSON lines corpus. Blank lines are skipped.
func readCases(r io.Reader) ([]*validationCase, error) {
	var (
		cases   []*validationCase
		scanner = bufio.NewScanner(r)
		line    int
	)
	scanner.Buffer(make([]byte, 64*1024), maxCaseLine)
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		c := new(validationCase)
		if err := json.Unmarshal(text, c); err != nil {
			return nil, fmt.Errorf("line %d: %v", line, err)
		}
		cases = append(cases, c)
	}
	return cases, scanner.Err()
}
