// ABOUTME: Tests for config loading, merging, env expansion, and validation
// ABOUTME: Uses temp directories for isolated file-based tests

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	base := &Settings{LogLevel: "info", MaxLineBytes: 100, CallTimeout: Duration(time.Second)}
	over := &Settings{LogLevel: "debug"}

	got := merge(base, over)

	if got.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", got.LogLevel, "debug")
	}
	if got.MaxLineBytes != 100 {
		t.Errorf("MaxLineBytes = %d, want 100", got.MaxLineBytes)
	}
	if got.CallTimeout.Std() != time.Second {
		t.Errorf("CallTimeout = %v, want 1s", got.CallTimeout.Std())
	}
}

func TestMerge_Nil(t *testing.T) {
	t.Parallel()

	if got := merge(nil, nil); got == nil {
		t.Fatal("merge(nil, nil) should return non-nil")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()

	s, err := loadFile(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != nil {
		t.Errorf("expected nil settings for a missing file, got %+v", s)
	}
}

func TestLoadFile_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "yaml",
			file:    "config.yaml",
			content: "log_level: debug\nresponse_mode: results\ncall_timeout: 2s\ncontext_menu_ttl: 1m\nmax_line_bytes: 4096\n",
		},
		{
			name:    "toml",
			file:    "config.toml",
			content: "log_level = \"debug\"\nresponse_mode = \"results\"\ncall_timeout = \"2s\"\ncontext_menu_ttl = \"1m\"\nmax_line_bytes = 4096\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tt.file)
			writeFile(t, path, tt.content)

			s, err := loadFile(path)
			if err != nil {
				t.Fatalf("loadFile: %v", err)
			}
			if s.LogLevel != "debug" {
				t.Errorf("LogLevel = %q, want debug", s.LogLevel)
			}
			if s.ResponseMode != "results" {
				t.Errorf("ResponseMode = %q, want results", s.ResponseMode)
			}
			if s.CallTimeout.Std() != 2*time.Second {
				t.Errorf("CallTimeout = %v, want 2s", s.CallTimeout.Std())
			}
			if s.ContextMenuTTL.Std() != time.Minute {
				t.Errorf("ContextMenuTTL = %v, want 1m", s.ContextMenuTTL.Std())
			}
			if s.MaxLineBytes != 4096 {
				t.Errorf("MaxLineBytes = %d, want 4096", s.MaxLineBytes)
			}
		})
	}
}

func TestLoadFile_InvalidDuration(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "call_timeout: soon\n")

	if _, err := loadFile(path); err == nil {
		t.Fatal("expected an error for an invalid duration")
	}
}

func TestLoad_LocalOverridesGlobal(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeFile(t, filepath.Join(home, ".flowplugin", "config.yaml"), "log_level: warn\nmax_line_bytes: 2048\n")

	pluginDir := t.TempDir()
	writeFile(t, filepath.Join(pluginDir, ".flowplugin", "config.toml"), "log_level = \"debug\"\n")

	s, err := Load(pluginDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", s.LogLevel)
	}
	if s.MaxLineBytes != 2048 {
		t.Errorf("MaxLineBytes = %d, want 2048", s.MaxLineBytes)
	}
	if s.ResponseMode != DefaultResponseMode {
		t.Errorf("ResponseMode = %q, want default %q", s.ResponseMode, DefaultResponseMode)
	}
	if s.ContextMenuTTL.Std() != DefaultContextMenuTTL {
		t.Errorf("ContextMenuTTL = %v, want %v", s.ContextMenuTTL.Std(), DefaultContextMenuTTL)
	}
}

func TestLoad_NoFiles(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Defaults()
	if *s != *want {
		t.Errorf("Load = %+v, want defaults %+v", s, want)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("FLOWPLUGIN_TEST_LOG", "/tmp/flow.log")
	writeFile(t, filepath.Join(home, ".flowplugin", "config.yml"), "log_file: ${FLOWPLUGIN_TEST_LOG}\n")

	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.LogFile != "/tmp/flow.log" {
		t.Errorf("LogFile = %q, want /tmp/flow.log", s.LogFile)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		s       Settings
		wantErr string
	}{
		{name: "defaults", s: *Defaults()},
		{name: "bad level", s: Settings{LogLevel: "loud"}, wantErr: "log_level"},
		{name: "bad mode", s: Settings{ResponseMode: "verbose"}, wantErr: "response_mode"},
		{name: "negative timeout", s: Settings{CallTimeout: Duration(-time.Second)}, wantErr: "call_timeout"},
		{name: "negative line cap", s: Settings{MaxLineBytes: -1}, wantErr: "max_line_bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("FLOWPLUGIN_TEST_HOST", "localhost")

	tests := []struct {
		in, want string
	}{
		{"${FLOWPLUGIN_TEST_HOST}", "localhost"},
		{"http://${FLOWPLUGIN_TEST_HOST}:8080", "http://localhost:8080"},
		{"${DEFINITELY_NOT_SET_12345}", ""},
		{"plain string", "plain string"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := expandEnv(tt.in); got != tt.want {
			t.Errorf("expandEnv(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
