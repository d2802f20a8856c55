package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prasenjit/go-mocksync/internal/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "mocksync",
		Short: "mocksync - keeps RAML documents in sync with hosted mocks",
		Long: `mocksync manages one hosted mock per RAML document.

Enabling a mock creates it on the mocking service, records its identity on the
file, and writes a "baseUrl:" line pointing at it into the document. Disabling
reverses all three. Saved documents are pushed to their active mock.`,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
}

// initConfig reads in .env, the config file and MOCKSYNC_* environment variables
func initConfig() {
	// A missing .env file is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "."
		}

		viper.AddConfigPath(cwd)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// MOCKSYNC_MOCKING_HOST overrides mocking.host
	viper.SetEnvPrefix("MOCKSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults mirrors config.Default
func setDefaults() {
	d := config.Default()

	viper.SetDefault("server.port", d.Server.Port)
	viper.SetDefault("server.host", d.Server.Host)

	viper.SetDefault("storage.type", d.Storage.Type)
	viper.SetDefault("storage.path", d.Storage.Path)

	viper.SetDefault("mocking.host", d.Mocking.Host)
	viper.SetDefault("mocking.basePath", d.Mocking.BasePath)
	viper.SetDefault("mocking.timeout", d.Mocking.Timeout)

	viper.SetDefault("events.maxEvents", d.Events.MaxEvents)

	viper.SetDefault("logging.level", d.Logging.Level)
	viper.SetDefault("logging.format", d.Logging.Format)
}

// loadConfig builds the effective configuration from viper
func loadConfig() (*config.Config, error) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port: viper.GetInt("server.port"),
			Host: viper.GetString("server.host"),
		},
		Storage: config.StorageConfig{
			Type: viper.GetString("storage.type"),
			Path: viper.GetString("storage.path"),
		},
		Mocking: config.MockingConfig{
			Host:     viper.GetString("mocking.host"),
			BasePath: viper.GetString("mocking.basePath"),
			Timeout:  viper.GetDuration("mocking.timeout"),
		},
		Events: config.EventsConfig{
			MaxEvents: viper.GetInt("events.maxEvents"),
		},
		Logging: config.LoggingConfig{
			Level:  viper.GetString("logging.level"),
			Format: viper.GetString("logging.format"),
		},
	}

	// Resolve relative storage path to absolute
	if cfg.Storage.Path != "" && !filepath.IsAbs(cfg.Storage.Path) {
		if cwd, err := os.Getwd(); err == nil {
			cfg.Storage.Path = filepath.Join(cwd, cfg.Storage.Path)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
