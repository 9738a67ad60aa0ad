package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/a3tai/mcp-timetable-reader/internal/config"
	"github.com/a3tai/mcp-timetable-reader/internal/pdf"
	"github.com/a3tai/mcp-timetable-reader/internal/timetable"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type options struct {
	dir           string
	section       string
	format        string
	rowClustering string
	headerScope   string
	maxFileSize   int64
	verbose       bool
	help          bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts := &options{}
	fs := newFlagSet(opts, stderr)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		printUsage(fs, stderr)
		return exitUsage
	}

	if opts.help {
		printUsage(fs, stdout)
		return exitOK
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "Error: exactly one PDF file path required\n\n")
		printUsage(fs, stderr)
		return exitUsage
	}

	switch opts.format {
	case "text", "json", "yaml":
	default:
		fmt.Fprintf(stderr, "Error: unsupported output format: %s\n", opts.format)
		return exitUsage
	}

	pdfPath := fs.Arg(0)
	if _, err := os.Stat(pdfPath); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "Error: File not found: %s\n", pdfPath)
		return exitError
	}

	cfg, document, err := buildServiceConfig(opts, pdfPath, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	service, err := pdf.NewService(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	result, err := service.ExtractTimetable(context.Background(), pdf.TimetableRequest{
		Path:    document,
		Section: opts.section,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error extracting timetable: %v\n", err)
		return exitError
	}

	if err := outputResults(stdout, opts.format, result); err != nil {
		fmt.Fprintf(stderr, "Error outputting results: %v\n", err)
		return exitError
	}

	if !result.Found() {
		return exitError
	}
	return exitOK
}

func newFlagSet(opts *options, output io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("timetable_extract", pflag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {}

	fs.StringVar(&opts.dir, "dir", "", "Directory the document must live in (defaults to the document's directory)")
	fs.StringVarP(&opts.section, "section", "s", config.DefaultSection, "Section code to extract")
	fs.StringVarP(&opts.format, "format", "f", "text", "Output format: text, json, yaml")
	fs.StringVar(&opts.rowClustering, "row-clustering", config.DefaultRowClustering, "Row clustering strategy: greedy, sweep")
	fs.StringVar(&opts.headerScope, "header-scope", config.DefaultHeaderScope, "Time slot header scope: page, document")
	fs.Int64Var(&opts.maxFileSize, "max-file-size", config.DefaultMaxFileSize, "Maximum PDF file size in bytes")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Log extraction decisions to stderr")
	fs.BoolVarP(&opts.help, "help", "h", false, "Show help message")
	return fs
}

// buildServiceConfig scopes the service to the document's directory unless
// --dir is given, in which case the document must lie inside --dir.
func buildServiceConfig(opts *options, pdfPath string, stderr io.Writer) (pdf.ServiceConfig, string, error) {
	dir := opts.dir
	document, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdf.ServiceConfig{}, "", err
	}
	if dir == "" {
		dir = filepath.Dir(document)
	}

	extractorConfig := timetable.DefaultExtractorConfig()
	strategy, err := timetable.ParseRowStrategy(opts.rowClustering)
	if err != nil {
		return pdf.ServiceConfig{}, "", err
	}
	scope, err := timetable.ParseHeaderScope(opts.headerScope)
	if err != nil {
		return pdf.ServiceConfig{}, "", err
	}
	extractorConfig.RowStrategy = strategy
	extractorConfig.HeaderScope = scope

	logger := log.New(io.Discard, "", 0)
	if opts.verbose {
		logger = log.New(stderr, "[timetable_extract] ", 0)
	}
	extractorConfig.Logger = logger

	return pdf.ServiceConfig{
		Directory:       dir,
		DefaultDocument: document,
		DefaultSection:  opts.section,
		MaxFileSize:     opts.maxFileSize,
		Extractor:       extractorConfig,
		Logger:          logger,
	}, document, nil
}

func printUsage(fs *pflag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, "Timetable Extractor\n\n")
	fmt.Fprintf(w, "Rebuilds one section's weekly timetable from a PDF.\n\n")
	fmt.Fprintf(w, "USAGE:\n")
	fmt.Fprintf(w, "  timetable_extract [OPTIONS] <pdf-file>\n\n")
	fmt.Fprintf(w, "OPTIONS:\n")
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprintf(w, "\nEXAMPLES:\n")
	fmt.Fprintf(w, "  timetable_extract --section BE-CSE-2A timetable.pdf\n")
	fmt.Fprintf(w, "  timetable_extract -f json --row-clustering sweep timetable.pdf\n")
}

func outputResults(w io.Writer, format string, result *pdf.TimetableResult) error {
	switch format {
	case "json":
		return outputJSON(w, result)
	case "yaml":
		return outputYAML(w, result)
	case "text":
		return outputText(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func outputJSON(w io.Writer, result *pdf.TimetableResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputYAML(w io.Writer, result *pdf.TimetableResult) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(result); err != nil {
		return err
	}
	return encoder.Close()
}

func outputText(w io.Writer, result *pdf.TimetableResult) error {
	if !result.Found() {
		fmt.Fprintf(w, "Section %q not found in %s (%d pages searched)\n",
			result.Requested, result.Path, result.PageCount)
		return nil
	}

	fmt.Fprintf(w, "Timetable for %s\n", *result.Section)
	fmt.Fprintf(w, "Pages: %v of %d\n", result.MatchedPages, result.PageCount)
	fmt.Fprintf(w, "Entries: %d\n\n", len(result.Entries))

	if len(result.Entries) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tTIME\tSUBJECT\tROOM\tGROUP\tRAW")
	for _, entry := range result.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			entry.Day, entry.Time,
			orDash(entry.Subject), orDash(entry.Room), orDash(entry.Group),
			strings.Join(strings.Fields(entry.RawText), " "))
	}
	return tw.Flush()
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
