package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	guda "github.com/LynnColeArt/guda-wmma"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version and host features",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("loadstore %s\n", versionString())
		fmt.Printf("go %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Println(guda.GetDevice())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func versionString() string {
	v, sum := guda.Version()
	switch {
	case v == "":
		return "(devel)"
	case sum == "":
		return v
	}
	return v + " " + sum
}
