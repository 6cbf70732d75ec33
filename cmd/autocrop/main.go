// Command autocrop trims logo images to their content plus padding.
//
// With a single path it behaves like the one-off cropper: the image is
// overwritten (or written to --output) and the command fails when nothing in
// the image differs from the background. With several paths or a --config job
// file every image is reported on its own and the run always succeeds.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ironsheep/autocrop/internal/batch"
	"github.com/ironsheep/autocrop/internal/config"
	"github.com/ironsheep/autocrop/internal/logger"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Exit codes.
const (
	exitOK        = 0
	exitNoContent = 1
	exitUsage     = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("autocrop", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	config.RegisterFlags(fs)
	showVersion := fs.BoolP("version", "v", false, "print version information")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "autocrop - crop logo images to their content")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Usage: autocrop [flags] <image>...")
		fmt.Fprintln(stderr, "       autocrop --config jobs.yaml")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Flags:")
		fmt.Fprint(stderr, fs.FlagUsages())
		fmt.Fprintln(stderr)
		fmt.Fprintf(stderr, "Every flag can also be set as %s_<FLAG>, e.g. %s_PADDING=10.\n",
			config.EnvPrefix, config.EnvPrefix)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "autocrop: %v\n", err)
		fs.Usage()
		return exitUsage
	}
	if *showVersion {
		fmt.Fprintf(stdout, "autocrop %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return exitOK
	}

	v, err := config.New(fs)
	if err != nil {
		fmt.Fprintf(stderr, "autocrop: %v\n", err)
		return exitUsage
	}
	cfg, err := config.Load(v, fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "autocrop: %v\n", err)
		return exitUsage
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "autocrop: %v\n", err)
		return exitUsage
	}
	defer log.Sync()

	log.Debug("starting",
		zap.String("version", Version),
		zap.Int("jobs", len(cfg.Jobs)),
		zap.Int("workers", cfg.Workers),
		zap.Bool("dry_run", cfg.DryRun))

	runner := &batch.Runner{
		Workers: cfg.Workers,
		DryRun:  cfg.DryRun,
		Out:     stdout,
		Log:     log,
	}
	summary := runner.Run(ctx, cfg.Jobs)

	if cfg.Single {
		if summary.NoContent > 0 {
			return exitNoContent
		}
		return exitOK
	}

	fmt.Fprintf(stdout, "Done: %s\n", summary)
	return exitOK
}
