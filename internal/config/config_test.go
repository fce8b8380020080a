package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyDefaults_Bind(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.Bind != "127.0.0.1:11112" {
		t.Errorf("expected default bind 127.0.0.1:11112, got %q", cfg.Bind)
	}
}

func TestApplyDefaults_Lease(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.Lease != 60*time.Second {
		t.Errorf("expected default lease 60s, got %v", cfg.Lease)
	}
}

func TestApplyDefaults_Fsid(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.FSIDMajor != 152 || cfg.FSIDMinor != 152 {
		t.Errorf("expected default fsid 152/152, got %d/%d", cfg.FSIDMajor, cfg.FSIDMinor)
	}
}

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected default log level INFO, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected default log format text, got %q", cfg.Logging.Format)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Bind:  "0.0.0.0:2049",
		Lease: 90 * time.Second,
	}
	applyDefaults(cfg)

	if cfg.Bind != "0.0.0.0:2049" {
		t.Errorf("expected explicit bind preserved, got %q", cfg.Bind)
	}
	if cfg.Lease != 90*time.Second {
		t.Errorf("expected explicit lease preserved, got %v", cfg.Lease)
	}
}

func TestValidate_RejectsBadLogLevel(t *testing.T) {
	cfg := &Config{
		Root:    ".",
		Bind:    "127.0.0.1:11112",
		Lease:   60 * time.Second,
		Logging: LoggingConfig{Level: "VERBOSE", Format: "text"},
	}
	if err := validate(cfg); err == nil {
		t.Error("expected validation error for unrecognized log level")
	}
}

func TestCheckRoot_RejectsMissingDir(t *testing.T) {
	if err := checkRoot("/nonexistent/nfs4d-root"); err == nil {
		t.Error("expected error for nonexistent root")
	}
}

func TestCheckRoot_RejectsFile(t *testing.T) {
	if err := checkRoot("config_test.go"); err == nil {
		t.Error("expected error when root is a regular file")
	}
}

func TestCheckRoot_AcceptsDirectory(t *testing.T) {
	if err := checkRoot("."); err != nil {
		t.Errorf("expected current directory to be a valid root, got %v", err)
	}
}

func TestDefaultConfigDir_RespectsXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	got := DefaultConfigDir()
	if got != "/tmp/xdg-test/nfs4d" {
		t.Errorf("expected /tmp/xdg-test/nfs4d, got %q", got)
	}
}

func TestDefaultConfigPath_EndsInConfigYaml(t *testing.T) {
	got := DefaultConfigPath()
	if filepath.Base(got) != "config.yaml" {
		t.Errorf("expected config.yaml basename, got %q", got)
	}
	if !strings.HasSuffix(filepath.Dir(got), "nfs4d") {
		t.Errorf("expected nfs4d directory component, got %q", got)
	}
}
