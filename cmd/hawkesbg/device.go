package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	guda "github.com/LynnColeArt/gudahawkes"
)

func newDeviceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "device",
		Short: "Show the compute device",
		Run: func(cmd *cobra.Command, args []string) {
			d := guda.GetDevice()
			fmt.Printf("Devices:     %d\n", guda.GetDeviceCount())
			fmt.Printf("Name:        %s\n", d.Name)
			fmt.Printf("Cores:       %d\n", d.NumCores)
			fmt.Printf("Max threads: %d\n", d.MaxThreads)
			fmt.Printf("Memory:      %.1f GiB\n", float64(d.TotalMem)/(1<<30))
			fmt.Printf("Features:    %s\n", strings.Join(d.Features, " "))
		},
	}
}
