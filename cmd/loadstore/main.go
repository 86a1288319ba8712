// Command loadstore checks wmma fragment loads, stores and fills on the GUDA
// CPU device.
package main

import (
	"os"

	"k8s.io/klog/v2"

	"github.com/LynnColeArt/guda-wmma/cmd/loadstore/commands"
)

func main() {
	err := commands.Execute()
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
