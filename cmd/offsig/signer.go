package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"

	"github.com/morph-l2/offsig/core/offsig"
	"github.com/morph-l2/offsig/core/signerdb"
	"github.com/morph-l2/offsig/core/types"
)

const (
	signerStoreCache   = 16 // megabytes
	signerStoreHandles = 16
	signerStoreSpace   = "offsig/signers/"
)

var errNoDataDir = errors.New("no signer store, use --datadir")

var signerCommand = cli.Command{
	Name:     "signer",
	Usage:    "Manage the expected signer store",
	Category: "SIGNER COMMANDS",
	Subcommands: []cli.Command{
		{
			Name:      "init",
			Usage:     "Initialize the expected signer of an account",
			ArgsUsage: " ",
			Action:    migrateFlags(initSigner),
			Flags:     []cli.Flag{dataDirFlag, accountFlag, schemeFlag, identityFlag},
			Description: `
    offsig signer init --datadir <dir> --account <base58> --scheme <scheme> --identity <hex>

Stores the expected signer of an account. An account can only be initialized
once.`,
		},
		{
			Name:      "show",
			Usage:     "Print the expected signer of an account",
			ArgsUsage: " ",
			Action:    migrateFlags(showSigner),
			Flags:     []cli.Flag{dataDirFlag, accountFlag},
		},
		{
			Name:      "list",
			Usage:     "List every initialized account",
			ArgsUsage: " ",
			Action:    migrateFlags(listSigners),
			Flags:     []cli.Flag{dataDirFlag},
		},
	},
}

// openSignerStore opens the leveldb backed signer store below datadir.
func openSignerStore(datadir string, readonly bool) (ethdb.KeyValueStore, error) {
	if datadir == "" {
		return nil, errNoDataDir
	}
	db, err := leveldb.New(datadir, signerStoreCache, signerStoreHandles, signerStoreSpace, readonly)
	if err != nil {
		return nil, fmt.Errorf("failed to open signer store %s: %v", datadir, err)
	}
	return db, nil
}

func initSigner(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Signer.Account.IsZero() {
		return fmt.Errorf("missing --%s", accountFlag.Name)
	}
	signer, err := cfg.inlineSigner()
	if err != nil {
		return err
	}
	if signer == nil {
		return fmt.Errorf("missing --%s", identityFlag.Name)
	}
	db, err := openSignerStore(cfg.Signer.DataDir, false)
	if err != nil {
		return err
	}
	defer db.Close()

	return signerdb.InitExpectedSigner(db, cfg.Signer.Account, signer)
}

func showSigner(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Signer.Account.IsZero() {
		return fmt.Errorf("missing --%s", accountFlag.Name)
	}
	db, err := openSignerStore(cfg.Signer.DataDir, true)
	if err != nil {
		return err
	}
	defer db.Close()

	signer := signerdb.ReadExpectedSigner(db, cfg.Signer.Account)
	if signer == nil {
		return fmt.Errorf("%w: %v", errSignerNotFound, cfg.Signer.Account)
	}
	fmt.Printf("account:  %v\nscheme:   %v\nidentity: %s\n", cfg.Signer.Account, signer.Scheme, hexutil.Encode(signer.Identity))
	return nil
}

func listSigners(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	db, err := openSignerStore(cfg.Signer.DataDir, true)
	if err != nil {
		return err
	}
	defer db.Close()

	signers := signerdb.IterateExpectedSigners(db)
	accounts := make([]types.Pubkey, 0, len(signers))
	for account := range signers {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].String() < accounts[j].String()
	})

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Account", "Scheme", "Identity"})
	for _, account := range accounts {
		signer := signers[account]
		table.Append([]string{account.String(), signer.Scheme.String(), hexutil.Encode(signer.Identity)})
	}
	table.Render()
	return nil
}

// newRunner assembles the validator and signer sources a command needs. The
// returned closer releases the signer store, if one was opened.
func newRunner(ctx *cli.Context, cfg offsigConfig) (*runner, func(), error) {
	cfg.Verifiers.AcceptSelfReference = cfg.Verifiers.AcceptSelfReference || ctx.GlobalBool(selfReferenceFlag.Name)
	validator, err := offsig.NewValidator(cfg.Verifiers)
	if err != nil {
		return nil, nil, err
	}
	inline, err := cfg.inlineSigner()
	if err != nil {
		return nil, nil, err
	}
	signers := &signerSource{account: cfg.Signer.Account, inline: inline}

	closer := func() {}
	if cfg.Signer.DataDir != "" {
		db, err := openSignerStore(cfg.Signer.DataDir, true)
		if err != nil {
			return nil, nil, err
		}
		signers.db = db
		closer = func() {
			if err := db.Close(); err != nil {
				log.Warn("Failed to close signer store", "err", err)
			}
		}
	}
	r := &runner{
		validator: validator,
		signers:   signers,
		native:    ctx.GlobalBool(nativeFlag.Name),
	}
	return r, closer, nil
}
