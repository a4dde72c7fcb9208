package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	guda "github.com/LynnColeArt/gudahawkes"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("hawkesbg %s (%s %s/%s)\n", guda.BuildVersion(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
