package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a3tai/mcp-timetable-reader/internal/timetable"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != "stdio" {
		t.Errorf("Expected default mode to be 'stdio', got '%s'", cfg.Mode)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}
	if cfg.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Port)
	}
	if cfg.ServerName != "mcp-timetable-reader" {
		t.Errorf("Expected default server name to be 'mcp-timetable-reader', got '%s'", cfg.ServerName)
	}
	if cfg.DocumentPath != "CSE 1st Year Section Wise.pdf" {
		t.Errorf("Unexpected default document '%s'", cfg.DocumentPath)
	}
	if cfg.DefaultSection != "BE-CSE-2A" {
		t.Errorf("Expected default section to be 'BE-CSE-2A', got '%s'", cfg.DefaultSection)
	}
	if cfg.RowClustering != "greedy" {
		t.Errorf("Expected default row clustering to be 'greedy', got '%s'", cfg.RowClustering)
	}
	if cfg.HeaderScope != "page" {
		t.Errorf("Expected default header scope to be 'page', got '%s'", cfg.HeaderScope)
	}
	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}

	currentDir, _ := os.Getwd()
	if cfg.PDFDirectory != currentDir {
		t.Errorf("Expected default PDF directory to be '%s', got '%s'", currentDir, cfg.PDFDirectory)
	}
}

func TestConfigValidate(t *testing.T) {
	tempDir := t.TempDir()

	valid := func(mutate func(*Config)) *Config {
		cfg := DefaultConfig()
		cfg.PDFDirectory = tempDir
		if mutate != nil {
			mutate(cfg)
		}
		return cfg
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr string
	}{
		{"valid stdio config", valid(nil), ""},
		{"valid server config", valid(func(c *Config) { c.Mode = ModeServer }), ""},
		{"sweep and document scope", valid(func(c *Config) { c.RowClustering = "sweep"; c.HeaderScope = "document" }), ""},
		{"empty strategy means default", valid(func(c *Config) { c.RowClustering = "" }), ""},
		{"invalid mode", valid(func(c *Config) { c.Mode = "grpc" }), "mode must be"},
		{"port ignored in stdio", valid(func(c *Config) { c.Port = 0 }), ""},
		{"invalid port in server mode", valid(func(c *Config) { c.Mode = ModeServer; c.Port = 70000 }), "port must be"},
		{"empty directory", valid(func(c *Config) { c.PDFDirectory = "" }), "PDF directory cannot be empty"},
		{"empty document", valid(func(c *Config) { c.DocumentPath = "" }), "document path cannot be empty"},
		{"zero file size", valid(func(c *Config) { c.MaxFileSize = 0 }), "maximum file size must be positive"},
		{"unknown strategy", valid(func(c *Config) { c.RowClustering = "kmeans" }), "row clustering strategy"},
		{"unknown scope", valid(func(c *Config) { c.HeaderScope = "global" }), "header scope"},
		{"invalid log level", valid(func(c *Config) { c.LogLevel = "trace" }), "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateDirectoryCreation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "non-existent", "pdfs")

	cfg := DefaultConfig()
	cfg.PDFDirectory = dir

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("expected directory to be created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory", dir)
	}
}

func TestConfigExtractorConfig(t *testing.T) {
	cfg := DefaultConfig()
	ec := cfg.ExtractorConfig()
	if ec.RowStrategy != timetable.RowStrategyGreedy {
		t.Errorf("expected greedy strategy, got %s", ec.RowStrategy)
	}
	if ec.HeaderScope != timetable.HeaderScopePage {
		t.Errorf("expected page scope, got %s", ec.HeaderScope)
	}
	if ec.Thresholds != timetable.DefaultThresholds() {
		t.Errorf("expected default thresholds, got %+v", ec.Thresholds)
	}

	cfg.RowClustering = "sweep"
	cfg.HeaderScope = "document"
	ec = cfg.ExtractorConfig()
	if ec.RowStrategy != timetable.RowStrategySweep {
		t.Errorf("expected sweep strategy, got %s", ec.RowStrategy)
	}
	if ec.HeaderScope != timetable.HeaderScopeDocument {
		t.Errorf("expected document scope, got %s", ec.HeaderScope)
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{Host: "0.0.0.0", Port: 9090}
	if got := cfg.Address(); got != "0.0.0.0:9090" {
		t.Errorf("Address() = %s, want 0.0.0.0:9090", got)
	}
}

func TestConfigModes(t *testing.T) {
	tests := []struct {
		mode       string
		logLevel   string
		wantServer bool
		wantStdio  bool
		wantDebug  bool
	}{
		{ModeStdio, "info", false, true, false},
		{ModeServer, "debug", true, false, true},
		{"invalid", "warn", false, false, false},
	}

	for _, tt := range tests {
		cfg := &Config{Mode: tt.mode, LogLevel: tt.logLevel}
		if cfg.IsServerMode() != tt.wantServer {
			t.Errorf("IsServerMode(%s) = %v, want %v", tt.mode, cfg.IsServerMode(), tt.wantServer)
		}
		if cfg.IsStdioMode() != tt.wantStdio {
			t.Errorf("IsStdioMode(%s) = %v, want %v", tt.mode, cfg.IsStdioMode(), tt.wantStdio)
		}
		if cfg.IsDebug() != tt.wantDebug {
			t.Errorf("IsDebug(%s) = %v, want %v", tt.logLevel, cfg.IsDebug(), tt.wantDebug)
		}
	}
}

func TestConfigString(t *testing.T) {
	cfg := DefaultConfig()
	s := cfg.String()
	for _, want := range []string{"Mode: stdio", "Section: BE-CSE-2A", "RowClustering: greedy", "HeaderScope: page"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %s, missing %q", s, want)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList([]string{"http://a.test, http://b.test", "", "http://c.test"})
	want := []string{"http://a.test", "http://b.test", "http://c.test"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("splitList() = %v, want %v", got, want)
	}
}
