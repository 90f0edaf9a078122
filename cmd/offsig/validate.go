package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"gopkg.in/urfave/cli.v1"

	"github.com/morph-l2/offsig/core/offsig"
)

var validateCommand = cli.Command{
	Action:    migrateFlags(validateCase),
	Name:      "validate",
	Usage:     "Validate the companion instruction of a batch",
	ArgsUsage: "<case.json>",
	Flags: []cli.Flag{
		dataDirFlag,
		accountFlag,
		schemeFlag,
		identityFlag,
		selfReferenceFlag,
		nativeFlag,
	},
	Description: `
The validate command loads a JSON case

    {"batch": [{"programId": "...", "data": "0x..."}, ...], "current": 1,
     "signer": {"scheme": "ed25519", "identity": "0x..."}}

and checks the instruction before "current" against the expected signer. The
signer is taken from the case, from the store (--datadir with --account, or
the case's "account"), or from --scheme and --identity. With --native the
companion's signatures are also checked cryptographically.`,
}

func validateCase(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("need a case file as the only argument")
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	c, err := readCase(ctx.Args().First())
	if err != nil {
		return err
	}
	r, closer, err := newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer()

	v, err := r.run(c)
	if err != nil {
		return err
	}
	log.Debug("Validated case", "name", c.Name, "current", c.Current, "verdict", v.Label())
	printVerdict(os.Stdout, v)

	if c.Expect != "" {
		if have := v.Label(); have != c.Expect {
			return fmt.Errorf("verdict mismatch: have %s, want %s", have, c.Expect)
		}
		return nil
	}
	if v.Err != nil {
		return cli.NewExitError("", 1)
	}
	return nil
}

func printVerdict(w io.Writer, v verdict) {
	if v.Err == nil {
		fmt.Fprintf(w, "%s message %s\n", color.GreenString("OK"), hexutil.Encode(v.Message))
		return
	}
	if code, ok := offsig.ErrorCode(v.Err); ok {
		fmt.Fprintf(w, "%s %s (%d): %v\n", color.RedString("FAIL"), code, uint32(code), v.Err)
		return
	}
	fmt.Fprintf(w, "%s %s: %v\n", color.RedString("FAIL"), v.Label(), v.Err)
}
