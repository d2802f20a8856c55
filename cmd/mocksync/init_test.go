package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/prasenjit/go-mocksync/internal/config"
)

func runInitIn(t *testing.T, dir string, force bool) error {
	t.Helper()

	initPath, initForce = dir, force
	t.Cleanup(func() { initPath, initForce = ".", false })

	var out bytes.Buffer
	initCmd.SetOut(&out)
	return runInit(initCmd, nil)
}

func TestRunInit(t *testing.T) {
	dir := t.TempDir()

	if err := runInitIn(t, dir, false); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}

	if info, err := os.Stat(filepath.Join(dir, "data", "files")); err != nil || !info.IsDir() {
		t.Error("Expected data/files directory to be created")
	}

	cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("Generated config does not load: %v", err)
	}
	if cfg.Storage.Type != "file" {
		t.Errorf("Expected storage type 'file', got %q", cfg.Storage.Type)
	}
	if cfg.Mocking.Host != config.Default().Mocking.Host {
		t.Errorf("Expected default mocking host, got %q", cfg.Mocking.Host)
	}
}

func TestRunInit_ExistingConfig(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	_ = os.WriteFile(configFile, []byte("server:\n  port: 1234\n"), 0644)

	if err := runInitIn(t, dir, false); err == nil {
		t.Error("Expected error when config.yaml exists")
	}

	if err := runInitIn(t, dir, true); err != nil {
		t.Fatalf("runInit with force failed: %v", err)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected overwritten port 8080, got %d", cfg.Server.Port)
	}
}
