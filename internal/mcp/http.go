package mcp

import (
	"encoding/json"
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-timetable-reader/internal/pdf"
	pdferrors "github.com/a3tai/mcp-timetable-reader/internal/pdf/errors"
	"github.com/a3tai/mcp-timetable-reader/internal/pdf/layout"
	"github.com/a3tai/mcp-timetable-reader/internal/timetable"
)

const (
	ssePath          = "/mcp"
	maxRequestBytes  = 1 << 20
	notFoundMessage  = "No timetable data found for this section."
	badRequestReason = "section is required"
)

// timetableRequest is the body of POST /timetable, sent as a form or JSON
type timetableRequest struct {
	Section  string `json:"section"`
	Document string `json:"document"`
}

type timetableResponse struct {
	Section   string            `json:"section"`
	Timetable []timetable.Entry `json:"timetable"`
}

// cacheReporter is implemented by services that keep a page cache
type cacheReporter interface {
	CacheStats() layout.CacheStats
}

type errorResponse struct {
	Error   string `json:"error"`
	Section string `json:"section,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Handler returns the HTTP surface: the timetable endpoint, a health check
// and MCP over SSE under /mcp.
func (s *Server) Handler() http.Handler {
	return s.routes(s.newSSEServer())
}

func (s *Server) newSSEServer(opts ...server.SSEOption) *server.SSEServer {
	opts = append([]server.SSEOption{server.WithStaticBasePath(ssePath)}, opts...)
	return server.NewSSEServer(s.mcpServer, opts...)
}

func (s *Server) routes(sse *server.SSEServer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.logger, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.With(middleware.RequestSize(maxRequestBytes)).Post("/timetable", s.handleTimetable)

	r.Handle(ssePath+"/sse", sse.SSEHandler())
	r.Handle(ssePath+"/message", sse.MessageHandler())

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":  "ok",
		"name":    s.config.ServerName,
		"version": s.config.Version,
	}
	if reporter, ok := s.service.(cacheReporter); ok {
		health["cache"] = reporter.CacheStats()
	}
	writeJson(w, http.StatusOK, health)
}

func (s *Server) handleTimetable(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTimetableRequest(r)
	if err != nil {
		writeJson(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.service.ExtractTimetable(r.Context(), pdf.TimetableRequest{
		Path:    req.Document,
		Section: req.Section,
	})
	if err != nil {
		status, message := extractionFailure(err)
		s.logger.Printf("timetable extraction for %q failed (%d): %v", req.Section, status, err)
		writeJson(w, status, errorResponse{Error: message, Section: req.Section, Detail: err.Error()})
		return
	}

	if !result.Found() || len(result.Entries) == 0 {
		writeJson(w, http.StatusNotFound, errorResponse{Error: notFoundMessage, Section: req.Section})
		return
	}

	writeJson(w, http.StatusOK, timetableResponse{Section: *result.Section, Timetable: result.Entries})
}

// extractionFailure maps a service error to a status and message. Problems
// with the requested document are the caller's; anything else is ours.
func extractionFailure(err error) (int, string) {
	if errors.Is(err, fs.ErrNotExist) {
		return http.StatusNotFound, "Document not found."
	}
	switch pdferrors.TypeOf(err) {
	case pdferrors.ErrorTypeSecurityRestriction:
		return http.StatusBadRequest, "Document is outside the configured directory."
	case pdferrors.ErrorTypeInvalidDocument, pdferrors.ErrorTypeFileTooLarge:
		return http.StatusBadRequest, "Document cannot be read as a timetable."
	}
	return http.StatusInternalServerError, "An error occurred while extracting the timetable."
}

// decodeTimetableRequest reads the section from a JSON body or from form values
func decodeTimetableRequest(r *http.Request) (*timetableRequest, error) {
	var req timetableRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, errors.New("invalid JSON body")
		}
	} else {
		req.Section = r.FormValue("section")
		req.Document = r.FormValue("document")
	}

	req.Section = strings.TrimSpace(req.Section)
	if req.Section == "" {
		return nil, errors.New(badRequestReason)
	}
	return &req, nil
}

func writeJson(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(v)
}
