package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"

	"github.com/morph-l2/offsig/core/offsig"
	"github.com/morph-l2/offsig/core/types"
)

var decodeCommand = cli.Command{
	Action:    migrateFlags(decodeInstruction),
	Name:      "decode",
	Usage:     "Decode the signature records of a verifier instruction",
	ArgsUsage: "<hexdata>",
	Flags:     []cli.Flag{schemeFlag},
	Description: `
The decode command parses hex encoded verifier instruction data with the
record layout of --scheme and prints every signature record together with
the signer identity and the shared message.`,
}

func decodeInstruction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("need instruction data as the only argument")
	}
	if !ctx.GlobalIsSet(schemeFlag.Name) {
		return fmt.Errorf("missing --%s", schemeFlag.Name)
	}
	scheme, err := types.ParseScheme(ctx.GlobalString(schemeFlag.Name))
	if err != nil {
		return err
	}
	data, err := hexutil.Decode(ctx.Args().First())
	if err != nil {
		return fmt.Errorf("invalid instruction data: %v", err)
	}
	parsed, err := offsig.Decode(scheme, data)
	if err != nil {
		return err
	}
	printParsedBatch(os.Stdout, parsed)
	return nil
}

func printParsedBatch(w io.Writer, parsed *offsig.ParsedBatch) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Signature", "Identity", "Message", "Signer"})
	for i, entry := range parsed.Entries {
		table.Append([]string{
			strconv.Itoa(i),
			fmt.Sprintf("%d@%d", entry.SignatureOffset, entry.SignatureInstructionIndex),
			fmt.Sprintf("%d@%d", entry.IdentityOffset, entry.IdentityInstructionIndex),
			fmt.Sprintf("%d+%d@%d", entry.MessageOffset, entry.MessageSize, entry.MessageInstructionIndex),
			hexutil.Encode(entry.SignerIdentity),
		})
	}
	table.SetFooter([]string{"", "", "", parsed.Scheme.String(), fmt.Sprintf("%d entries", len(parsed.Entries))})
	table.Render()

	if msg := parsed.Message(); msg != nil {
		fmt.Fprintf(w, "message: %s\n", hexutil.Encode(msg))
	}
}
