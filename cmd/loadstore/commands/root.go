// Package commands implements the loadstore command line.
package commands

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/janpfeifer/must"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"

	"github.com/LynnColeArt/guda-wmma/wmma"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "loadstore",
	Short: "Check wmma fragment load, store and fill on the CPU device",
	Long: `loadstore launches wave-level kernels that load matrix tiles into
fragments and store them back, or fill fragments and store them, over a
sweep of thread block shapes, fragment shapes, problem sizes, storage
layouts and element types. Every output is compared element by element with
its input.

Settings can also come from a YAML config file or from GUDA_WMMA_*
environment variables, e.g. GUDA_WMMA_TILING=interleaved.`,
	SilenceUsage:      true,
	PersistentPreRunE: applySettings,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./loadstore.yaml if present)")
	flags.String("tiling", "linear", "lane tiling: linear or interleaved")
	flags.Bool("bounds-checks", false, "validate every vector transaction against the buffer bounds")
	flags.StringSlice("types", nil, "element types (default f16,h16,bf16,f32)")
	flags.String("sweep", "", "YAML sweep file replacing the built-in table")
	flags.Bool("smoke", false, "run the small smoke sweep instead of the full table")
	flags.String("report", "", "write a YAML or JSON report to this path")
	flags.BoolP("quiet", "q", false, "only print the summary")
	must.M(viper.BindPFlags(flags))

	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	flags.AddGoFlagSet(klogFlags)
}

// initConfig reads the config file and environment.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("loadstore")
	}

	viper.SetEnvPrefix("GUDA_WMMA")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		klog.V(1).Infof("using config file %s", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "reading config %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

func applySettings(cmd *cobra.Command, args []string) error {
	wmma.SetBoundsChecks(viper.GetBool("bounds-checks"))
	_, err := tiling()
	return err
}

func tiling() (wmma.Tiling, error) {
	return wmma.ParseTiling(viper.GetString("tiling"))
}
