package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/prasenjit/go-mocksync/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize mocksync with default configuration and directory structure",
	Long: `Creates the default configuration file (config.yaml) and data directory structure.

This command will:
  - Create config.yaml with default settings and file storage
  - Create data/files/ for stored RAML files

If config.yaml already exists, it will not be overwritten unless --force is used.`,
	RunE: runInit,
}

var (
	initForce bool
	initPath  string
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing config file")
	initCmd.Flags().StringVarP(&initPath, "path", "p", ".", "Path where to initialize (default: current directory)")
}

func runInit(cmd *cobra.Command, args []string) error {
	absPath, err := filepath.Abs(initPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	configFile := filepath.Join(absPath, "config.yaml")
	filesDir := filepath.Join(absPath, "data", "files")

	if _, err := os.Stat(configFile); err == nil && !initForce {
		return fmt.Errorf("config.yaml already exists. Use --force to overwrite")
	}

	if err := os.MkdirAll(filesDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filesDir, err)
	}
	cmd.Printf("Created directory: %s\n", filesDir)

	cfg := config.Default()
	cfg.Storage.Type = "file"

	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("failed to generate config: %w", err)
	}

	header := "# mocksync configuration\n\n"
	if err := os.WriteFile(configFile, []byte(header+string(data)), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	cmd.Printf("Created config file: %s\n", configFile)

	cmd.Println()
	cmd.Println("Initialization complete! You can now start the server with:")
	cmd.Println()
	cmd.Printf("  cd %s\n", absPath)
	cmd.Println("  mocksync serve")
	cmd.Println()

	return nil
}
