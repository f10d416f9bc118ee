package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/oleg578/csvstream"
	"github.com/oleg578/csvstream/internal/document"
	"github.com/oleg578/csvstream/structure"
)

// EncodeOptions holds the flags of the encode command.
type EncodeOptions struct {
	Input           string
	Compress        string
	Delimiter       string
	Quote           string
	Escape          string
	QuoteStyle      string
	Terminator      string
	NoDoubleQuote   bool
	NoHeader        bool
	Flexible        bool
	ContinueOnError bool
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EncodeOptions{}

	cmd := &cobra.Command{
		Use:   "encode [file...]",
		Short: "Encode YAML or JSON-lines documents as CSV",
		Long: `Read documents from the named files, or from stdin when no file is
given or the name is "-", and write one CSV row per document to stdout.

Nested records and lists are flattened in place. The first document decides
the header row and the number of fields every later row must have, unless
--flexible is set.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, rootOpts, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Input, "input", "i", string(document.JSONLines), "input format (jsonl|yaml)")
	f.StringVar(&opts.Compress, "compress", "none", "output compression (none|gzip|zstd)")
	f.StringVarP(&opts.Delimiter, "delimiter", "d", ",", "field delimiter")
	f.StringVar(&opts.Quote, "quote", `"`, "quote character")
	f.StringVar(&opts.Escape, "escape", `\`, "escape character used with --no-double-quote")
	f.StringVar(&opts.QuoteStyle, "quote-style", "necessary", "quoting style (necessary|always|non_numeric|never)")
	f.StringVar(&opts.Terminator, "terminator", "lf", "record terminator (lf|crlf|cr or a single byte)")
	f.BoolVar(&opts.NoDoubleQuote, "no-double-quote", false, "escape quotes with --escape instead of doubling them")
	f.BoolVar(&opts.NoHeader, "no-header", false, "do not write a header row")
	f.BoolVar(&opts.Flexible, "flexible", false, "allow rows of differing lengths")
	f.BoolVar(&opts.ContinueOnError, "continue-on-error", false, "log and skip rows that fail to encode")

	return cmd
}

// resolve merges defaults, the config file and explicitly set flags, in
// that order of precedence from lowest to highest.
func (o *EncodeOptions) resolve(cmd *cobra.Command, configPath string) (csvstream.Config, error) {
	cfg := csvstream.DefaultConfig()

	if configPath != "" {
		fc, err := LoadFileConfig(configPath)
		if err != nil {
			return cfg, err
		}
		if err := fc.Apply(&cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", configPath, err)
		}
		if fc.Input != "" && !cmd.Flags().Changed("input") {
			o.Input = fc.Input
		}
		if fc.Compress != "" && !cmd.Flags().Changed("compress") {
			o.Compress = fc.Compress
		}
		if fc.ContinueOnError != nil && !cmd.Flags().Changed("continue-on-error") {
			o.ContinueOnError = *fc.ContinueOnError
		}
	}

	changed := cmd.Flags().Changed
	flags := FileConfig{}
	if changed("delimiter") {
		flags.Delimiter = o.Delimiter
	}
	if changed("quote") {
		flags.Quote = o.Quote
	}
	if changed("escape") {
		flags.Escape = o.Escape
	}
	if changed("quote-style") {
		flags.QuoteStyle = o.QuoteStyle
	}
	if changed("terminator") {
		flags.Terminator = o.Terminator
	}
	if changed("no-double-quote") {
		v := !o.NoDoubleQuote
		flags.DoubleQuote = &v
	}
	if changed("no-header") {
		v := !o.NoHeader
		flags.Header = &v
	}
	if changed("flexible") {
		flags.Flexible = &o.Flexible
	}
	if err := flags.Apply(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func runEncode(cmd *cobra.Command, rootOpts *RootOptions, opts *EncodeOptions, args []string) error {
	log := newLogger(cmd.ErrOrStderr(), rootOpts.Verbose)
	defer func() { _ = log.Sync() }()

	cfg, err := opts.resolve(cmd, rootOpts.Config)
	if err != nil {
		return err
	}
	format, err := document.ParseFormat(opts.Input)
	if err != nil {
		return err
	}
	out, err := compressWriter(cmd.OutOrStdout(), opts.Compress)
	if err != nil {
		return err
	}

	cfg.Logger = log
	w, err := cfg.Build()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"-"}
	}
	log.Debug("encoding",
		zap.Strings("inputs", args),
		zap.String("format", string(format)),
		zap.Stringer("quote_style", cfg.QuoteStyle),
		zap.Stringer("terminator", cfg.Terminator),
	)

	p := pipeline{
		log:             log,
		in:              cmd.InOrStdin(),
		out:             out,
		format:          format,
		continueOnError: opts.ContinueOnError,
	}
	runErr := p.run(cmd.Context(), w, args)
	return errors.Join(runErr, out.Close())
}

type pipeline struct {
	log             *zap.Logger
	in              io.Reader
	out             io.Writer
	format          document.Format
	continueOnError bool
}

// run decodes the inputs in one goroutine and encodes rows in another,
// connected by a Stream.
func (p pipeline) run(ctx context.Context, w *csvstream.Writer, inputs []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	g, ctx := errgroup.WithContext(ctx)
	values := make(chan structure.Value)

	g.Go(func() error {
		defer close(values)
		for _, name := range inputs {
			if err := p.decodeInput(ctx, name, values); err != nil {
				return err
			}
		}
		return nil
	})

	g.Go(func() error {
		var n, failed int
		for row := range csvstream.NewStream(values, w).Rows(ctx) {
			n++
			if len(row.Data) > 0 {
				if _, err := p.out.Write(row.Data); err != nil {
					return fmt.Errorf("write: %w", err)
				}
			}
			if row.Err == nil {
				continue
			}
			if !p.continueOnError {
				return fmt.Errorf("document %d: %w", n, row.Err)
			}
			failed++
			p.log.Warn("skipping document", zap.Int("document", n), zap.Error(row.Err))
		}
		if failed > 0 {
			p.log.Info("encoding finished with skipped documents",
				zap.Int("documents", n), zap.Int("skipped", failed))
		}
		return nil
	})

	return g.Wait()
}

func (p pipeline) decodeInput(ctx context.Context, name string, values chan<- structure.Value) error {
	r := p.in
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	p.log.Debug("reading input", zap.String("name", name))
	if err := document.Decode(ctx, r, p.format, values); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
