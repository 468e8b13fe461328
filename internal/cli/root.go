// Package cli implements the sift command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crimson-sun/sift/internal/config"
	"github.com/crimson-sun/sift/internal/logging"

	// Register connector implementations.
	_ "github.com/crimson-sun/sift/internal/connector/file"
	_ "github.com/crimson-sun/sift/internal/connector/ndjson"
)

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	envFile    string
	logLevel   string

	cfg       config.Config
	logger    *zap.Logger
	logCloser io.Closer
}

// NewRootCommand returns the sift command wired to the process streams.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithIO(os.Stdin, os.Stdout, os.Stderr)
}

// NewRootCommandWithIO returns the sift command wired to the given streams.
func NewRootCommandWithIO(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{stdin: in, stdout: out, stderr: errOut, logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "sift",
		Short: "Classify debugging artifacts and compress them for an LLM context window",
		Long: `sift decides what kind of artifact it was given (logs, config, metrics,
text, source code, screenshots) and reduces it to the parts worth reading:
the errors in a log, the anomalies in a metrics export, the structure of a
source file, a config with its secrets redacted. No model calls are made.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Version:           config.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
		PersistentPostRun: func(*cobra.Command, []string) { a.teardown() },
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML, TOML or JSON config file")
	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the config; missing is fine")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	cmd.AddCommand(
		newPreprocessCmd(a),
		newClassifyCmd(a),
		newStrategiesCmd(a),
	)
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sift:", err)
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	a.cfg = cfg
	a.logger, a.logCloser = logging.New(cfg.Log)
	return nil
}

func (a *app) teardown() {
	_ = a.logger.Sync()
	if a.logCloser != nil {
		a.logCloser.Close()
	}
}
