package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/LynnColeArt/guda-wmma/harness"
	"github.com/LynnColeArt/guda-wmma/wmma"
)

var layoutCmd = &cobra.Command{
	Use:   "layout <a|b|c> <m> <n> <k>",
	Short: "Print the coordinates each lane visits",
	Long: `layout builds a fragment type and prints, for each lane, the tile
coordinates of its vector transactions in issue order. Tiles of up to 64
columns also get a map of which lane owns each element.`,
	Args: cobra.ExactArgs(4),
	RunE: runLayout,
}

func init() {
	flags := layoutCmd.Flags()
	flags.String("type", "f32", "element type")
	flags.String("layout", "row", "storage layout: row or col")
	flags.Int("lane", -1, "only print this lane")
	flags.Uint32("vw", 0, "vector width (0 picks the widest that fits)")
	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	use, err := wmma.ParseUse(args[0])
	if err != nil {
		return err
	}
	var mnk [3]uint32
	for i, s := range args[1:] {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return errors.Wrapf(err, "block dimension %q", s)
		}
		mnk[i] = uint32(v)
	}

	flags := cmd.Flags()
	typ, _ := flags.GetString("type")
	layoutName, _ := flags.GetString("layout")
	lane, _ := flags.GetInt("lane")
	vw, _ := flags.GetUint32("vw")

	layout, err := wmma.ParseLayout(layoutName)
	if err != nil {
		return err
	}
	t, err := tiling()
	if err != nil {
		return err
	}
	info, err := harness.DescribeFragment(typ, use, mnk[0], mnk[1], mnk[2], layout,
		wmma.WithTiling(t), wmma.WithVectorWidth(vw))
	if err != nil {
		return errors.WithMessage(err, "building fragment")
	}

	fmt.Println(headerStyle.Render(info.Name))
	fmt.Println(dimStyle.Render(fmt.Sprintf("%s, %s vectors, tiling %s",
		info.Traits, info.Layout.Orientation(), info.Layout.Tiling())))

	l := info.Layout
	for ln := uint32(0); ln < wmma.WaveSize; ln++ {
		if lane >= 0 && uint32(lane) != ln {
			continue
		}
		coords := wmma.Coordinates(l, ln)
		parts := make([]string, len(coords))
		for i, c := range coords {
			parts[i] = c.String()
		}
		fmt.Printf("lane %2d: %s\n", ln, strings.Join(parts, " "))
		klog.V(2).Infof("lane %d elements %v", ln, wmma.ElementCoords(l, ln))
	}

	if lane < 0 && l.Cols() <= 64 {
		fmt.Println()
		fmt.Print(ownerMap(l))
	}
	return wmma.CheckCoverage(l)
}

// ownerMap renders the lane that owns each element of the tile.
func ownerMap(l wmma.MatrixLayout) string {
	owner := make([]int, int(l.Rows())*int(l.Cols()))
	for ln := uint32(0); ln < wmma.WaveSize; ln++ {
		for _, c := range wmma.ElementCoords(l, ln) {
			owner[int(c.Row)*int(l.Cols())+int(c.Col)] = int(ln)
		}
	}
	var b strings.Builder
	for r := 0; r < int(l.Rows()); r++ {
		for c := 0; c < int(l.Cols()); c++ {
			fmt.Fprintf(&b, "%3d", owner[r*int(l.Cols())+c])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
