package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"gopkg.in/urfave/cli.v1"

	"github.com/morph-l2/offsig/core/types"
)

var replayCommand = cli.Command{
	Action:    migrateFlags(replayCorpus),
	Name:      "replay",
	Usage:     "Validate a corpus of cases and compare the verdicts",
	ArgsUsage: "<cases.jsonl>",
	Flags: []cli.Flag{
		dataDirFlag,
		accountFlag,
		schemeFlag,
		identityFlag,
		selfReferenceFlag,
		nativeFlag,
		workersFlag,
		cacheFlag,
	},
	Description: `
The replay command validates every case of a JSON lines file (one case per
line, see the validate command) in parallel and prints the verdicts grouped
by error code. Cases carrying an "expect" field are compared against it and
any mismatch fails the command. Identical cases are served from a verdict
cache sized by --cache.`,
}

// mismatch is a case whose verdict differs from its expectation.
type mismatch struct {
	Case string
	Want string
	Have string
}

type replayReport struct {
	Total      int
	Cached     int
	Counts     map[string]int
	Mismatches []mismatch
	Elapsed    time.Duration
}

// replayer validates independent cases concurrently, memoizing verdict labels
// by the content of each case.
type replayer struct {
	runner  *runner
	cache   *fastcache.Cache // nil disables memoization
	workers int
}

func newReplayer(r *runner, workers, cacheMB int) *replayer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	rp := &replayer{runner: r, workers: workers}
	if cacheMB > 0 {
		rp.cache = fastcache.New(cacheMB * 1024 * 1024)
	}
	return rp
}

// caseKey identifies everything a verdict depends on besides the validator
// configuration.
func (rp *replayer) caseKey(c *validationCase, signer *types.ExpectedSigner) ([]byte, error) {
	blob, err := json.Marshal(struct {
		Batch   types.Batch           `json:"batch"`
		Current int                   `json:"current"`
		Signer  *types.ExpectedSigner `json:"signer"`
		Native  bool                  `json:"native"`
	}{c.Batch, c.Current, signer, rp.runner.native})
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(blob), nil
}

func (rp *replayer) label(c *validationCase) (string, bool, error) {
	signer, err := rp.runner.signers.resolve(c)
	if err != nil {
		return "", false, err
	}
	if rp.cache == nil {
		return rp.runner.check(c, signer).Label(), false, nil
	}
	key, err := rp.caseKey(c, signer)
	if err != nil {
		return "", false, err
	}
	if enc, ok := rp.cache.HasGet(nil, key); ok {
		return string(enc), true, nil
	}
	label := rp.runner.check(c, signer).Label()
	rp.cache.Set(key, []byte(label))
	return label, false, nil
}

// replay validates all cases, reporting progress to bar if it is non-nil.
func (rp *replayer) replay(ctx context.Context, cases []*validationCase, bar *progressbar.ProgressBar) (*replayReport, error) {
	var (
		start  = time.Now()
		labels = make([]string, len(cases))
		cached atomic.Int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rp.workers)
	for i := range cases {
		i := i
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			label, hit, err := rp.label(cases[i])
			if err != nil {
				return fmt.Errorf("%s: %w", cases[i].label(i), err)
			}
			if hit {
				cached.Add(1)
			}
			labels[i] = label
			if bar != nil {
				bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	report := &replayReport{
		Total:   len(cases),
		Cached:  int(cached.Load()),
		Counts:  make(map[string]int),
		Elapsed: time.Since(start),
	}
	for i, c := range cases {
		report.Counts[labels[i]]++
		if c.Expect != "" && c.Expect != labels[i] {
			report.Mismatches = append(report.Mismatches, mismatch{Case: c.label(i), Want: c.Expect, Have: labels[i]})
		}
	}
	return report, nil
}

func (r *replayReport) print(w io.Writer) {
	labels := make([]string, 0, len(r.Counts))
	for label := range r.Counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Verdict", "Cases"})
	for _, label := range labels {
		table.Append([]string{label, strconv.Itoa(r.Counts[label])})
	}
	table.SetFooter([]string{"Total", strconv.Itoa(r.Total)})
	table.Render()

	for _, m := range r.Mismatches {
		fmt.Fprintf(w, "%s %s: have %s, want %s\n", color.RedString("MISMATCH"), m.Case, m.Have, m.Want)
	}
}

func replayCorpus(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("need a case corpus as the only argument")
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	f, err := os.Open(ctx.Args().First())
	if err != nil {
		return err
	}
	cases, err := readCases(f)
	f.Close()
	if err != nil {
		return err
	}
	r, closer, err := newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer()

	rp := newReplayer(r, ctx.GlobalInt(workersFlag.Name), ctx.GlobalInt(cacheFlag.Name))
	log.Info("Replaying cases", "cases", len(cases), "workers", rp.workers, "native", r.native)

	bar := progressbar.NewOptions(len(cases),
		progressbar.OptionSetDescription("replay"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)
	report, err := rp.replay(context.Background(), cases, bar)
	if err != nil {
		return err
	}
	bar.Finish()

	report.print(os.Stdout)
	log.Info("Replay finished", "cases", report.Total, "cached", report.Cached, "mismatches", len(report.Mismatches), "elapsed", report.Elapsed)
	if len(report.Mismatches) > 0 {
		return fmt.Errorf("%d of %d cases did not match their expected verdict", len(report.Mismatches), report.Total)
	}
	return nil
}
