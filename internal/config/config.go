package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/mcp-timetable-reader/internal/timetable"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort          = 8080
	DefaultHost          = "127.0.0.1"
	DefaultLogLevel      = "info"
	DefaultMaxFileSize   = 100 * 1024 * 1024 // 100MB
	DefaultDocument      = "CSE 1st Year Section Wise.pdf"
	DefaultSection       = "BE-CSE-2A"
	DefaultRowClustering = string(timetable.RowStrategyGreedy)
	DefaultHeaderScope   = string(timetable.HeaderScopePage)
	DefaultCachePages    = 256
	DefaultServerName    = "mcp-timetable-reader"
	DefaultVersion       = "1.0.0"

	// Directory permissions
	DefaultDirPerm = 0o750

	environmentPrefix = "MCP_TIMETABLE"
)

// Config holds all configuration for the timetable server
type Config struct {
	// Server configuration
	Mode        string // "server" or "stdio"
	Host        string
	Port        int
	CORSOrigins []string

	// Document configuration
	PDFDirectory   string
	DocumentPath   string // resolved inside PDFDirectory when relative
	DefaultSection string
	MaxFileSize    int64 // Maximum PDF file size in bytes
	CachePages     int   // Parsed pages kept in memory, 0 disables

	// Extraction configuration
	RowClustering string
	HeaderScope   string

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:           ModeStdio,
		Host:           DefaultHost,
		Port:           DefaultPort,
		CORSOrigins:    []string{"*"},
		PDFDirectory:   currentDir,
		DocumentPath:   DefaultDocument,
		DefaultSection: DefaultSection,
		MaxFileSize:    DefaultMaxFileSize,
		CachePages:     DefaultCachePages,
		RowClustering:  DefaultRowClustering,
		HeaderScope:    DefaultHeaderScope,
		Version:        DefaultVersion,
		ServerName:     DefaultServerName,
		LogLevel:       DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// flag name -> viper key
var flagKeys = map[string]string{
	"mode":           "mode",
	"host":           "host",
	"port":           "port",
	"cors-origins":   "cors_origins",
	"dir":            "dir",
	"document":       "document",
	"section":        "section",
	"max-file-size":  "max_file_size",
	"cache-pages":    "cache_pages",
	"row-clustering": "row_clustering",
	"header-scope":   "header_scope",
	"log-level":      "log_level",
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(environmentPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("cors_origins", cfg.CORSOrigins)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("document", cfg.DocumentPath)
	viper.SetDefault("section", cfg.DefaultSection)
	viper.SetDefault("max_file_size", cfg.MaxFileSize)
	viper.SetDefault("cache_pages", cfg.CachePages)
	viper.SetDefault("row_clustering", cfg.RowClustering)
	viper.SetDefault("header_scope", cfg.HeaderScope)
	viper.SetDefault("log_level", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.StringSlice("cors-origins", cfg.CORSOrigins, "Allowed CORS origins (server mode only)")
	pflag.String("dir", cfg.PDFDirectory, "Directory containing timetable PDF files")
	pflag.String("document", cfg.DocumentPath, "Default timetable document, relative to --dir")
	pflag.String("section", cfg.DefaultSection, "Section used when a request names none")
	pflag.Int64("max-file-size", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Int("cache-pages", cfg.CachePages, "Parsed pages kept in memory between requests (0 disables)")
	pflag.String("row-clustering", cfg.RowClustering, "Row clustering strategy (greedy, sweep)")
	pflag.String("header-scope", cfg.HeaderScope, "Header scope across pages (page, document)")
	pflag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for flag, key := range flagKeys {
		_ = viper.BindPFlag(key, pflag.Lookup(flag))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP Timetable Reader - extracts weekly class timetables from section-wise PDFs\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/srv/timetables --section=BE-CSE-2B "+
			"# stdio mode with custom directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --dir=/srv/timetables       # HTTP server mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %s_MODE            Server mode\n", environmentPrefix)
		fmt.Fprintf(os.Stderr, "  %s_HOST            Server host\n", environmentPrefix)
		fmt.Fprintf(os.Stderr, "  %s_PORT            Server port\n", environmentPrefix)
		fmt.Fprintf(os.Stderr, "  %s_CORS_ORIGINS    Allowed CORS origins (comma separated)\n", environmentPrefix)
		fmt.Fprintf(os.Stderr, "  %s_DIR             PDF directory\n", environmentPrefix)
		fmt.Fprintf(os.Stderr, "  %s_DOCUMENT        Default document\n", environmentPrefix)
		fmt.Fprintf(os.Stderr, "  %s_SECTION         Default section\n", environmentPrefix)
		fmt.Fprintf(os.Stderr, "  %s_MAX_FILE_SIZE   Maximum file size\n", environmentPrefix)
		fmt.Fprintf(os.Stderr, "  %s_CACHE_PAGES     Page cache size\n", environmentPrefix)
		fmt.Fprintf(os.Stderr, "  %s_ROW_CLUSTERING  Row clustering strategy\n", environmentPrefix)
		fmt.Fprintf(os.Stderr, "  %s_HEADER_SCOPE    Header scope\n", environmentPrefix)
		fmt.Fprintf(os.Stderr, "  %s_LOG_LEVEL       Log level\n", environmentPrefix)
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.CORSOrigins = splitList(viper.GetStringSlice("cors_origins"))
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.DocumentPath = viper.GetString("document")
	cfg.DefaultSection = viper.GetString("section")
	cfg.MaxFileSize = viper.GetInt64("max_file_size")
	cfg.CachePages = viper.GetInt("cache_pages")
	cfg.RowClustering = viper.GetString("row_clustering")
	cfg.HeaderScope = viper.GetString("header_scope")
	cfg.LogLevel = viper.GetString("log_level")
}

// splitList flattens comma separated values, as given in environment variables
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// port only matters in server mode
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	if c.DocumentPath == "" {
		return errors.New("document path cannot be empty")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.CachePages < 0 {
		return errors.New("cache pages cannot be negative")
	}

	if _, err := timetable.ParseRowStrategy(c.RowClustering); err != nil {
		return err
	}
	if _, err := timetable.ParseHeaderScope(c.HeaderScope); err != nil {
		return err
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// ExtractorConfig returns the extractor settings selected by the configuration.
// Call Validate first; unknown strategy or scope names fall back to defaults.
func (c *Config) ExtractorConfig() timetable.ExtractorConfig {
	ec := timetable.DefaultExtractorConfig()
	if strategy, err := timetable.ParseRowStrategy(c.RowClustering); err == nil {
		ec.RowStrategy = strategy
	}
	if scope, err := timetable.ParseHeaderScope(c.HeaderScope); err == nil {
		ec.HeaderScope = scope
	}
	return ec
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, Document: %s, "+
		"Section: %s, RowClustering: %s, HeaderScope: %s, LogLevel: %s, MaxFileSize: %d, CachePages: %d}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.DocumentPath,
		c.DefaultSection, c.RowClustering, c.HeaderScope, c.LogLevel, c.MaxFileSize, c.CachePages)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
