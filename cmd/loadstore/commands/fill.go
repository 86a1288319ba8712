package commands

import (
	"time"

	"github.com/janpfeifer/must"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"

	guda "github.com/LynnColeArt/guda-wmma"
	"github.com/LynnColeArt/guda-wmma/harness"
	"github.com/LynnColeArt/guda-wmma/wmma"
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill accumulator fragments and store them",
	Long: `fill broadcasts --value into the accumulator fragment of every lane, stores
the fragments as an MxN matrix in row-major and column-major order, and
checks that every element holds the value.`,
	Args: cobra.NoArgs,
	RunE: runFill,
}

func init() {
	fillCmd.Flags().Float32("value", 1.5, "value broadcast into every fragment")
	must.M(viper.BindPFlag("value", fillCmd.Flags().Lookup("value")))
	rootCmd.AddCommand(fillCmd)
}

func runFill(cmd *cobra.Command, args []string) error {
	sweep, err := selectSweep()
	if err != nil {
		return err
	}
	t, err := tiling()
	if err != nil {
		return err
	}
	value := float32(viper.GetFloat64("value"))
	layouts := []wmma.Layout{wmma.MemRowMajor, wmma.MemColMajor}
	total := len(sweep.Types) * len(sweep.Configs) * len(layouts)

	report := harness.NewReport(guda.GetDevice().String(), versionString())
	printHeader("wmma fill_fragment", total)

	ctx := guda.DefaultContext()
	bar := newProgressBar(total, "fill")
	start := time.Now()
	for _, typ := range sweep.Types {
		for _, cfg := range sweep.Configs {
			for _, layout := range layouts {
				res := harness.RunFillCase(ctx, cfg, typ, layout, value, t)
				report.Add(res)
				klog.V(1).Infof("%s %s (%s)", res.Status, res.Case, res.Duration)
				_ = bar.Add(1)
			}
		}
	}
	_ = bar.Finish()

	return finish(report, time.Since(start))
}
