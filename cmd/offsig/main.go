// offsig inspects and validates companion signature-verification instructions.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"gopkg.in/urfave/cli.v1"

	"github.com/morph-l2/offsig/core/types"
	"github.com/morph-l2/offsig/internal/debug"
)

var (
	schemeFlag = cli.StringFlag{
		Name:  "scheme",
		Usage: "Signature scheme of the companion instruction (secp256k1, ed25519)",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory of the expected signer store",
	}
	accountFlag = cli.StringFlag{
		Name:  "account",
		Usage: "Base58 account whose stored expected signer is used",
	}
	identityFlag = cli.StringFlag{
		Name:  "identity",
		Usage: "Hex encoded expected signer identity (20 byte address or 32 byte public key)",
	}
	selfReferenceFlag = cli.BoolFlag{
		Name:  "selfref",
		Usage: "Accept the ed25519 0xFFFF marker as a reference to the companion instruction",
	}
	nativeFlag = cli.BoolFlag{
		Name:  "native",
		Usage: "Execute the companion instruction with the emulated verifier before validating",
	}
	workersFlag = cli.IntFlag{
		Name:  "workers",
		Usage: "Number of cases validated in parallel (0 = number of CPUs)",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Usage: "Megabytes of memory allocated to the verdict cache (0 = disabled)",
		Value: 32,
	}
)

var app = cli.NewApp()

func init() {
	app.Name = filepath.Base(os.Args[0])
	app.Usage = "companion signature verification inspector"
	app.Version = "0.1.0"
	app.HideVersion = true
	app.Commands = []cli.Command{
		decodeCommand,
		validateCommand,
		replayCommand,
		signerCommand,
		dumpConfigCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))

	app.Flags = append([]cli.Flag{
		configFileFlag,
		schemeFlag,
		dataDirFlag,
		accountFlag,
		identityFlag,
		selfReferenceFlag,
		nativeFlag,
		workersFlag,
		cacheFlag,
	}, debug.Flags...)

	app.Before = func(ctx *cli.Context) error {
		return debug.Setup(ctx)
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// migrateFlags makes all flags of a subcommand readable through the
// Global* accessors, so they may be given before or after the command name.
func migrateFlags(action func(ctx *cli.Context) error) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		for _, name := range ctx.FlagNames() {
			if ctx.IsSet(name) {
				ctx.GlobalSet(name, ctx.String(name))
			}
		}
		return action(ctx)
	}
}

// applySignerFlags overrides the configured signer with the command line.
func applySignerFlags(ctx *cli.Context, cfg *signerConfig) error {
	if ctx.GlobalIsSet(dataDirFlag.Name) {
		cfg.DataDir = ctx.GlobalString(dataDirFlag.Name)
	}
	if ctx.GlobalIsSet(accountFlag.Name) {
		account, err := types.ParsePubkey(ctx.GlobalString(accountFlag.Name))
		if err != nil {
			return fmt.Errorf("invalid --%s: %v", accountFlag.Name, err)
		}
		cfg.Account = account
	}
	if ctx.GlobalIsSet(schemeFlag.Name) {
		scheme, err := types.ParseScheme(ctx.GlobalString(schemeFlag.Name))
		if err != nil {
			return fmt.Errorf("invalid --%s: %v", schemeFlag.Name, err)
		}
		cfg.Scheme = scheme
	}
	if ctx.GlobalIsSet(identityFlag.Name) {
		identity, err := hexutil.Decode(ctx.GlobalString(identityFlag.Name))
		if err != nil {
			return fmt.Errorf("invalid --%s: %v", identityFlag.Name, err)
		}
		cfg.Identity = identity
	}
	return nil
}
