package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ironsheep/autocrop/internal/logger"
	"github.com/ironsheep/autocrop/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("autocrop-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("autocrop-mcp - MCP server for content-aware logo cropping")
			fmt.Println()
			fmt.Println("Usage: autocrop-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  AUTOCROP_LOG_LEVEL=debug    Log level (debug, info, warn, error)")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Logs are written to stderr.")
			return
		}
	}

	log, err := logger.NewSugared(os.Getenv("AUTOCROP_LOG_LEVEL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "autocrop-mcp: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()

	log.Debugf("autocrop-mcp %s (built %s, commit %s)", Version, BuildTime, GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(log.Desugar())
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Errorw("server error", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}
