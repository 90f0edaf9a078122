package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/morph-l2/offsig/core/offsig"
	"github.com/morph-l2/offsig/core/types"
	"github.com/morph-l2/offsig/params"
)

var (
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "[<dumpfile>]",
		Description: `The dumpconfig command shows configuration values.`,
	}

	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// signerConfig selects the expected signer used when a case does not carry
// one itself.
type signerConfig struct {
	DataDir  string        `toml:",omitempty"` // signer store, see the signer command
	Account  types.Pubkey  // account looked up in DataDir, ignored when zero
	Scheme   types.Scheme  // scheme of the inline Identity
	Identity hexutil.Bytes `toml:",omitempty"`
}

type offsigConfig struct {
	Verifiers offsig.Config
	Signer    signerConfig
}

var defaultConfig = offsigConfig{
	Verifiers: offsig.Config{
		Secp256k1Program: params.Secp256k1ProgramID,
		Ed25519Program:   params.Ed25519ProgramID,
	},
	Signer: signerConfig{
		Scheme: types.Ed25519,
	},
}

// sanitize checks the provided user configuration and changes anything that's
// unreasonable or unworkable.
func (c *offsigConfig) sanitize() {
	if c.Verifiers.Secp256k1Program.IsZero() {
		log.Warn("Sanitizing unset secp256k1 verifier", "updated", defaultConfig.Verifiers.Secp256k1Program)
		c.Verifiers.Secp256k1Program = defaultConfig.Verifiers.Secp256k1Program
	}
	if c.Verifiers.Ed25519Program.IsZero() {
		log.Warn("Sanitizing unset ed25519 verifier", "updated", defaultConfig.Verifiers.Ed25519Program)
		c.Verifiers.Ed25519Program = defaultConfig.Verifiers.Ed25519Program
	}
	if c.Verifiers.Secp256k1Program == c.Verifiers.Ed25519Program {
		log.Warn("Sanitizing shared verifier id", "provided", c.Verifiers.Ed25519Program)
		c.Verifiers.Secp256k1Program = defaultConfig.Verifiers.Secp256k1Program
		c.Verifiers.Ed25519Program = defaultConfig.Verifiers.Ed25519Program
	}
	if !c.Signer.Scheme.Valid() {
		log.Warn("Sanitizing invalid signer scheme", "provided", uint8(c.Signer.Scheme), "updated", defaultConfig.Signer.Scheme)
		c.Signer.Scheme = defaultConfig.Signer.Scheme
	}
}

// inlineSigner returns the signer configured through Signer.Identity, or nil.
func (c *offsigConfig) inlineSigner() (*types.ExpectedSigner, error) {
	if len(c.Signer.Identity) == 0 {
		return nil, nil
	}
	return types.NewExpectedSigner(c.Signer.Scheme, c.Signer.Identity)
}

func loadConfig(file string, cfg *offsigConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the configuration file if one is given and applies the
// command line overrides on top of it.
func makeConfig(ctx *cli.Context) (offsigConfig, error) {
	cfg := defaultConfig
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := applySignerFlags(ctx, &cfg.Signer); err != nil {
		return cfg, err
	}
	cfg.sanitize()
	return cfg, nil
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	_, err = dump.Write(out)
	return err
}
