package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/mcp-timetable-reader/internal/config"
	"github.com/a3tai/mcp-timetable-reader/internal/mcp"
	"github.com/a3tai/mcp-timetable-reader/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the server mode and returns the
// logger handed to the service and server.
func setupLogging(cfg *config.Config, stderr io.Writer) *log.Logger {
	if cfg.IsStdioMode() {
		// stdout carries the MCP protocol in stdio mode
		out := io.Discard
		if cfg.IsDebug() {
			out = stderr
		}
		log.SetOutput(out)
		return log.New(out, "", log.LstdFlags)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	return log.New(log.Writer(), "", log.LstdFlags|log.Lshortfile)
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, server *mcp.Server) {
	// the parent process controls our lifecycle; exit when stdin closes
	if err := server.Run(ctx); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion(os.Stdout)
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := setupLogging(cfg, os.Stderr)

	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		logger.Printf("Starting with configuration: %s", cfg.String())
	}

	service, err := pdf.NewService(newServiceConfig(cfg, logger))
	if err != nil {
		log.Fatalf("Failed to create timetable service: %v", err)
	}

	server, err := mcp.NewServer(cfg, service, logger)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server)
	} else {
		runStdioMode(ctx, server)
	}
}

// newServiceConfig maps the loaded configuration onto the document service
func newServiceConfig(cfg *config.Config, logger *log.Logger) pdf.ServiceConfig {
	// page-level diagnostics only at debug level
	extractor := cfg.ExtractorConfig()
	extractor.Logger = log.New(io.Discard, "", 0)
	if cfg.IsDebug() {
		extractor.Logger = logger
	}

	return pdf.ServiceConfig{
		Directory:       cfg.PDFDirectory,
		DefaultDocument: cfg.DocumentPath,
		DefaultSection:  cfg.DefaultSection,
		MaxFileSize:     cfg.MaxFileSize,
		CachePages:      cfg.CachePages,
		Extractor:       extractor,
		Logger:          logger,
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "MCP Timetable Reader\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
