package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"

	guda "github.com/LynnColeArt/guda-wmma"
	"github.com/LynnColeArt/guda-wmma/harness"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Round-trip A, B and C tiles through fragments",
	Long: `run loads every tile of the A (MxK), B (KxN) and C (MxN) matrices into
fragments, stores them to a second buffer and compares the result with the
input, for every configuration, layout combination and element type of the
sweep. The exit status is non-zero if any case fails.`,
	Args: cobra.NoArgs,
	RunE: runLoadStore,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// selectSweep returns the sweep named by the --sweep and --smoke flags,
// restricted to --types.
func selectSweep() (harness.Sweep, error) {
	sweep := harness.DefaultSweep()
	switch path := viper.GetString("sweep"); {
	case path != "":
		var err error
		if sweep, err = harness.LoadSweep(path); err != nil {
			return harness.Sweep{}, err
		}
	case viper.GetBool("smoke"):
		sweep = harness.SmokeSweep()
	}
	types := splitList(viper.GetStringSlice("types"))
	if unknown := lo.Without(types, harness.ElementTypes...); len(unknown) > 0 {
		return harness.Sweep{}, errors.Errorf("unknown element types %v, want some of %v", unknown, harness.ElementTypes)
	}
	return sweep.WithTypes(types), nil
}

// splitList splits comma-joined items, as GUDA_WMMA_TYPES=f32,bf16 arrives
// from the environment as a single item.
func splitList(items []string) []string {
	return lo.Compact(lo.FlatMap(items, func(item string, _ int) []string {
		return lo.Map(strings.Split(item, ","), func(s string, _ int) string {
			return strings.TrimSpace(s)
		})
	}))
}

func runLoadStore(cmd *cobra.Command, args []string) error {
	sweep, err := selectSweep()
	if err != nil {
		return err
	}
	t, err := tiling()
	if err != nil {
		return err
	}
	cases := sweep.Expand(t)
	report := harness.NewReport(guda.GetDevice().String(), versionString())
	printHeader("wmma load/store_matrix_sync", len(cases))

	ctx := guda.DefaultContext()
	bar := newProgressBar(len(cases), "load/store")
	start := time.Now()
	for _, c := range cases {
		res := harness.RunCase(ctx, c)
		report.Add(res)
		klog.V(1).Infof("%s %s (%s)", res.Status, c, res.Duration)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	return finish(report, time.Since(start))
}

// finish prints the summary, writes the report if requested and turns
// failures into an error.
func finish(report *harness.Report, elapsed time.Duration) error {
	printSummary(report, elapsed)
	if path := viper.GetString("report"); path != "" {
		if err := report.Write(path); err != nil {
			return err
		}
		klog.Infof("report %s written to %s", report.RunID, path)
	}
	if failures := report.Failures(); len(failures) > 0 {
		return fmt.Errorf("%d of %d cases failed", len(failures), len(report.Results))
	}
	return nil
}
