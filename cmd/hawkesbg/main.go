// Command hawkesbg runs the background-rate stages of a Hawkes-process
// sampler on synthetic data and exercises the device kernels.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LynnColeArt/gudahawkes/internal/config"
	"github.com/LynnColeArt/gudahawkes/internal/logutil"
)

var logLevel string

func main() {
	base, err := config.FromEnv(config.Default(), "HAWKES")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCmd(base).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(base config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "hawkesbg",
		Short: "Hawkes background-rate kernels on the GUDA CPU device",
		Long: `hawkesbg drives the background-rate part of a Hawkes-process Gibbs
sweep: background counting, the conjugate Gamma update, rate expansion,
time-of-day modulation and log-likelihood scoring.

Settings default to HAWKES_* environment variables; flags override them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logutil.InitLogger(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", base.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(newRunCmd(base), newGammaCmd(base), newDeviceCmd(), newVersionCmd())
	return root
}
