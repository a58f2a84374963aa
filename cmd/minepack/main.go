package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/codewithboateng/minepack/internal/shared"
)

var rootCmd = &cobra.Command{
	Use:   "minepack",
	Short: "Scaffold, validate and package behavior/resource packs",
	Long: `minepack scaffolds new add-on projects, validates behavior and resource
packages against a registry of rules, keeps a history of validation runs
and builds distributable archives.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupColor(cmd)
	},
}

var (
	flagConfig   string
	flagColor    string
	flagLogLevel string
)

var timeNow = time.Now

// exitError carries a process exit code without an extra message.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func init() {
	rootCmd.Version = versionString()

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level override (debug|info|warn|error)")
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return exitCode(rootCmd.ExecuteContext(ctx), os.Stderr)
}

// exitCode maps a command error to the process exit code, printing any
// error that is not a bare exit status to stderr.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	color.New(color.FgRed).Fprintln(stderr, "✖ "+err.Error())
	return 1
}

func setupColor(cmd *cobra.Command) error {
	switch flagColor {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
	default:
		return fmt.Errorf("--color must be auto, on or off, got %q", flagColor)
	}
	return nil
}

// loadConfig reads configuration and installs the logger.
func loadConfig() (shared.Config, *slog.Logger, error) {
	cfg, err := shared.LoadConfig(flagConfig)
	if err != nil {
		return cfg, nil, err
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	logger := shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	return cfg, logger, nil
}
