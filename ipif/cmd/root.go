// Package cmd provides the command-line interface of ipif.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sarchlab/ipif/config"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var (
	envFile  string
	logLevel string

	// cfg holds the settings loaded before any subcommand runs. Flags that
	// are not given on the command line take their values from it.
	cfg = config.Default()

	exitCode int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ipif",
	Short: "ipif checks the interrupt registers of Xilinx IPIF devices.",
	Long: `ipif runs the IPIF interrupt self-test against simulated ` +
		`devices. It can run the test once from the command line, serve a ` +
		`bus of devices over HTTP, and report on recorded runs.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"File to load IPIF_* variables from, if it exists")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level (debug, info, warn, error); overrides IPIF_LOG_LEVEL")
}

func loadConfig(_ *cobra.Command, _ []string) error {
	c, err := config.Load(envFile)
	if err != nil {
		return err
	}

	if logLevel != "" {
		err = c.LogLevel.UnmarshalText([]byte(logLevel))
		if err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
	}

	cfg = c

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: cfg.LogLevel})))

	return nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It exits the process, running the atexit handlers.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(exitCode)
}
