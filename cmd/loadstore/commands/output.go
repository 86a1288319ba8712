package commands

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/viper"

	guda "github.com/LynnColeArt/guda-wmma"
	"github.com/LynnColeArt/guda-wmma/harness"
)

var (
	passStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	headerStyle = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func quiet() bool {
	return viper.GetBool("quiet")
}

func printHeader(title string, cases int) {
	fmt.Println(headerStyle.Render(title))
	fmt.Println(dimStyle.Render(guda.GetDevice().String()))
	fmt.Println(dimStyle.Render(fmt.Sprintf("%d cases, tiling %s, bounds checks %v",
		cases, viper.GetString("tiling"), viper.GetBool("bounds-checks"))))
	fmt.Println()
}

func newProgressBar(n int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(!quiet()),
	)
}

func status(res harness.Result) string {
	if res.Passed() {
		return passStyle.Render("PASS")
	}
	return failStyle.Render("FAIL")
}

// printSummary prints one row per type and kind with pass and fail counts,
// then the failures.
func printSummary(report *harness.Report, elapsed time.Duration) {
	type key struct{ kind, typ string }
	type counts struct {
		pass, fail int
		bytes      int64
	}
	var order []key
	byKey := map[key]*counts{}
	for _, res := range report.Results {
		k := key{res.Kind, res.Type}
		c, ok := byKey[k]
		if !ok {
			c = &counts{}
			byKey[k] = c
			order = append(order, k)
		}
		if res.Passed() {
			c.pass++
		} else {
			c.fail++
		}
		c.bytes += res.Bytes
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("kind", "type", "pass", "fail", "moved").
		StyleFunc(func(row, col int) lipgloss.Style { return cellStyle })
	for _, k := range order {
		c := byKey[k]
		fail := strconv.Itoa(c.fail)
		if c.fail > 0 {
			fail = failStyle.Render(fail)
		}
		t.Row(k.kind, k.typ, strconv.Itoa(c.pass), fail, humanize.IBytes(uint64(c.bytes)))
	}
	fmt.Println(t)

	passed, failed, errored := report.Summary()
	line := fmt.Sprintf("%d passed, %d failed, %d errors in %s", passed, failed, errored, elapsed.Round(time.Millisecond))
	if failed+errored > 0 {
		fmt.Println(failStyle.Render(line))
		for _, res := range report.Failures() {
			fmt.Printf("  %s %s\n      %s\n", status(res), res.Case, dimStyle.Render(res.Error))
		}
	} else {
		fmt.Println(passStyle.Render(line))
	}
}
