package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/FJORD/internal/logging"
)

var (
	logLevel string
	logger   *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fjord",
	Short: "Derivative-free optimization of declarative models",
	Long: `FJORD adapts declarative optimization models into parameter spaces
and black-box callables, then solves them with derivative-free search
drivers. Models declare typed variables, objectives and constraints;
the adapter translates them into the form the drivers consume.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.New(logging.ParseLevel(logLevel), os.Stderr)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
