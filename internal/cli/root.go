package cli

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Config  string // path to a YAML config file
}

// NewRootCommand creates the root command for the csvstream CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "csvstream",
		Short: "Stream structured records as CSV",
		Long: `Convert streams of YAML or JSON documents into CSV rows.

Each document becomes one row. Named fields of the first document supply
the header row.`,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "YAML config file")

	cmd.AddCommand(NewEncodeCommand(opts))

	return cmd
}

// newLogger writes human-readable logs to w.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}
