package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/minuteman3/log-find-date/internal/config"
	"github.com/minuteman3/log-find-date/internal/extract"
	"github.com/minuteman3/log-find-date/internal/logging"
	"github.com/minuteman3/log-find-date/internal/logsearch"
	"github.com/minuteman3/log-find-date/internal/watch"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var longHelp = strings.TrimSpace(`
Log Find Date - Extract the lines of one day from a date-sorted log file

Every line of the log must begin with a YYYY-MM-DD date and lines must be in
ascending date order. The lines for the requested day are located with a
binary search over the file's bytes, so only a handful of reads are needed
regardless of the file's size, and are written to <output-dir>/<date>_logs.txt.

The input may be a local path or an s3://bucket/key URL.

Configuration file format (.ini, default $HOME/.log-find-date.ini):
  [input]
  file = /var/log/app.log
  chunk_size = 4096

  [output]
  dir = output
  strip_cr = false

  [log]
  level = info
  format = console

  [watch]
  enabled = false
  debounce = 250ms

  [s3]
  region = us-east-1
  endpoint = http://localhost:9000
  path_style = true

TOML (.toml) and YAML (.yaml, .yml) files use the flat keys input,
output_dir, output, chunk_size, strip_cr, log_level, log_format, watch,
debounce, telemetry and an s3 table. Every setting can also be given as a
LOG_FIND_DATE_* environment variable, e.g. LOG_FIND_DATE_INPUT.
`)

var exampleUsage = strings.TrimSpace(`
  log-find-date 2024-01-02
  log-find-date --input /var/log/app.log --output-dir /tmp/out 2024-01-02
  log-find-date --input s3://logs/app.log --s3-region eu-west-1 2024-01-02
  log-find-date --config my-config.toml --watch 2024-01-02
`)

// usageError marks a failure caused by how the command was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	cfg := config.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:     "log-find-date [flags] <YYYY-MM-DD>",
		Short:   "Extract the lines of one day from a date-sorted log file",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usagef("expected exactly one date argument, got %d", len(args))
			}
			if _, err := logsearch.ParseDate(args[0]); err != nil {
				return &usageError{err: err}
			}
			return nil
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			date := logsearch.MustParseDate(args[0])

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if err := loadConfigFile(&cfg, cfgPath, changed); err != nil {
				return err
			}
			if err := config.ApplyEnvConfig(&cfg, changed); err != nil {
				return &usageError{err: err}
			}
			if err := cfg.Validate(); err != nil {
				return &usageError{err: err}
			}

			base, err := logging.New(stderr, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return &usageError{err: err}
			}
			base.Debug().Interface("config", cfg.Masked()).Msg("configuration")

			output := cfg.Output
			if output == "" {
				output = extract.OutputPath(cfg.OutputDir, date)
			}

			opts := extract.Options{
				Date:      date,
				Input:     cfg.Input,
				Output:    output,
				ChunkSize: cfg.ChunkSize,
				StripCR:   cfg.StripCR,
				Telemetry: cfg.Telemetry,
				Source:    cfg.SourceOptions(),
			}

			ctx := cmd.Context()
			if err := runExtraction(ctx, opts, base, stdout); err != nil {
				return err
			}

			if !cfg.Watch {
				return nil
			}

			w := watch.New(cfg.Input, cfg.Debounce, base)
			err = w.Run(ctx, func(ctx context.Context) {
				if err := runExtraction(ctx, opts, base, stdout); err != nil && ctx.Err() == nil {
					base.Error().Err(err).Msg("extraction failed")
				}
			})
			if err != nil {
				return fmt.Errorf("watch %s: %w", cfg.Input, err)
			}

			base.Info().Msg("stopped watching")
			return nil
		},
	}

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.log-find-date.ini)")
	root.Flags().StringVarP(&cfg.Input, "input", "i", cfg.Input, "log file to search (path or s3://bucket/key)")
	root.Flags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "artifact path (default: <output-dir>/<date>_logs.txt)")
	root.Flags().StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "directory for the artifact")
	root.Flags().IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "bytes read per step when scanning for a newline")
	root.Flags().BoolVar(&cfg.StripCR, "strip-cr", cfg.StripCR, "remove a trailing carriage return from each extracted line")

	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.Flags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (console, json)")

	root.Flags().BoolVar(&cfg.Watch, "watch", cfg.Watch, "re-run the extraction whenever the input file changes")
	root.Flags().DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "how long writes must settle before a re-run")

	root.Flags().StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "AWS region for s3:// inputs")
	root.Flags().StringVar(&cfg.S3Endpoint, "s3-endpoint", cfg.S3Endpoint, "custom S3 endpoint URL")
	root.Flags().BoolVar(&cfg.S3PathStyle, "s3-path-style", cfg.S3PathStyle, "use path-style S3 addressing")

	root.Flags().BoolVar(&cfg.Telemetry, "telemetry", cfg.Telemetry, "record OpenTelemetry spans and metrics for file reads")

	root.SetOut(stdout)
	root.SetErr(stderr)

	return root
}

// loadConfigFile applies the config file at path, or the default config file
// if path is empty. Only an explicitly named file has to exist.
func loadConfigFile(cfg *config.Config, path string, changed map[string]bool) error {
	if path == "" {
		path = config.DefaultConfigPath()
		if !config.FileExists(path) {
			return nil
		}
	} else if !config.FileExists(path) {
		return usagef("config file %s does not exist", path)
	}

	fc, err := config.LoadFile(path)
	if err != nil {
		return &usageError{err: err}
	}
	if err := config.ApplyFileConfig(cfg, fc, changed); err != nil {
		return &usageError{err: err}
	}
	return nil
}

// runExtraction performs one extraction under a fresh run_id and prints its
// summary.
func runExtraction(ctx context.Context, opts extract.Options, base zerolog.Logger, stdout io.Writer) error {
	opts.Logger = logging.WithRunID(base)

	res, err := extract.Run(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%d lines for %s written to %s\n", res.Lines, res.Date, res.Output)
	return nil
}

// execute runs the command with args and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)

	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", root.Name())
		return exitUsage
	}
	return exitError
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
