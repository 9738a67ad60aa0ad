package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-timetable-reader/internal/config"
	"github.com/a3tai/mcp-timetable-reader/internal/descriptions"
	"github.com/a3tai/mcp-timetable-reader/internal/pdf"
)

const shutdownTimeout = 10 * time.Second

// TimetableService is the document service behind the tools and endpoints
type TimetableService interface {
	ExtractTimetable(ctx context.Context, req pdf.TimetableRequest) (*pdf.TimetableResult, error)
	DocumentInfo(ctx context.Context, req pdf.DocumentInfoRequest) (*pdf.DocumentInfoResult, error)
}

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   TimetableService
	mcpServer *server.MCPServer
	logger    *log.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, service TimetableService, logger *log.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // tool set is fixed
		server.WithRecovery(),
	)

	s := &Server{
		config:    cfg,
		service:   service,
		mcpServer: mcpServer,
		logger:    logger,
	}

	s.registerTools()
	logger.Printf("registered tools: %s", strings.Join(descriptions.GetAllToolNames(), ", "))

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	extractTool := mcp.NewTool(
		"timetable_extract",
		mcp.WithDescription(descriptions.GetToolDescription("timetable_extract")),
		mcp.WithString("section",
			mcp.Description(fmt.Sprintf("Section label as printed in the PDF (default %q)", s.config.DefaultSection)),
		),
		mcp.WithString("path",
			mcp.Description("PDF path, relative to the configured directory (uses the default document if empty)"),
		),
	)
	s.mcpServer.AddTool(extractTool, s.handleTimetableExtract)

	infoTool := mcp.NewTool(
		"timetable_document_info",
		mcp.WithDescription(descriptions.GetToolDescription("timetable_document_info")),
		mcp.WithString("path",
			mcp.Description("PDF path, relative to the configured directory (uses the default document if empty)"),
		),
		mcp.WithString("section",
			mcp.Description("Optional section to locate in the document"),
		),
	)
	s.mcpServer.AddTool(infoTool, s.handleDocumentInfo)
}

// Handler functions
func (s *Server) handleTimetableExtract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := pdf.TimetableRequest{
		Path:    request.GetString("path", ""),
		Section: request.GetString("section", ""),
	}

	result, err := s.service.ExtractTimetable(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatTimetableResult(result)), nil
}

func (s *Server) handleDocumentInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := pdf.DocumentInfoRequest{
		Path:    request.GetString("path", ""),
		Section: request.GetString("section", ""),
	}

	result, err := s.service.DocumentInfo(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatDocumentInfoResult(req.Section, result)), nil
}

func (s *Server) formatTimetableResult(result *pdf.TimetableResult) string {
	if !result.Found() {
		return fmt.Sprintf("Section %q not found in %s (%d pages searched)\n",
			result.Requested, result.Path, result.PageCount)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Timetable for %s\n", *result.Section)
	fmt.Fprintf(&b, "Document: %s\n", result.Path)
	fmt.Fprintf(&b, "Pages: %v of %d\n", result.MatchedPages, result.PageCount)
	fmt.Fprintf(&b, "Entries: %d\n\n", len(result.Entries))

	data, err := json.MarshalIndent(result.Entries, "", "  ")
	if err != nil {
		fmt.Fprintf(&b, "failed to encode entries: %v\n", err)
		return b.String()
	}
	b.Write(data)
	b.WriteString("\n")
	return b.String()
}

func (s *Server) formatDocumentInfoResult(section string, result *pdf.DocumentInfoResult) string {
	text := fmt.Sprintf("Document: %s\n", result.Path)
	text += fmt.Sprintf("Size: %d bytes\n", result.Size)
	text += fmt.Sprintf("Pages: %d\n", result.PageCount)
	if result.Version != "" {
		text += fmt.Sprintf("PDF version: %s\n", result.Version)
	}
	text += fmt.Sprintf("Encrypted: %t\n", result.Encrypted)

	if section == "" {
		return text
	}
	if result.Section == nil {
		return text + fmt.Sprintf("Section %q: not found\n", section)
	}
	text += fmt.Sprintf("Section %q: found as %q on pages %v\n", section, *result.Section, result.MatchedPages)
	text += fmt.Sprintf("Entries: %d\n", result.EntryCount)
	return text
}

// Run starts the server in the configured mode and blocks until ctx is done
// or the transport fails.
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves MCP over standard input and output
func (s *Server) runStdioMode(ctx context.Context) error {
	if s.config.IsDebug() {
		s.logger.Printf("Starting timetable MCP server in stdio mode")
		s.logger.Printf("PDF directory: %s", s.config.PDFDirectory)
	}

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(s.logger)

	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves the HTTP endpoints and MCP over SSE
func (s *Server) runServerMode(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Address(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	sse := s.newSSEServer(server.WithHTTPServer(httpServer))
	httpServer.Handler = s.routes(sse)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Starting timetable server on %s", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// closes open SSE sessions before shutting down the listener
	s.logger.Printf("Shutting down timetable server")
	if err := sse.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
