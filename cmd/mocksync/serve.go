package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prasenjit/go-mocksync/internal/api"
	"github.com/prasenjit/go-mocksync/internal/events"
	"github.com/prasenjit/go-mocksync/internal/lifecycle"
	"github.com/prasenjit/go-mocksync/internal/logging"
	"github.com/prasenjit/go-mocksync/internal/mocking"
	"github.com/prasenjit/go-mocksync/internal/stats"
	"github.com/prasenjit/go-mocksync/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the mocksync server",
	Long: `Starts the mocksync API server.

The server will:
  - Load stored RAML files from the data directory
  - Expose the editor API at /_api/
  - Stream lifecycle events at /_api/events/stream

Configuration is loaded from config.yaml in the current directory,
or specify a custom config file with the --config flag.`,
	RunE: runServe,
}

var (
	portFlag     int
	mockHostFlag string
)

func init() {
	serveCmd.Flags().IntVarP(&portFlag, "port", "p", 0, "Override server port")
	serveCmd.Flags().StringVar(&mockHostFlag, "mock-host", "", "Override the mocking service host")

	_ = viper.BindPFlag("mocking.host", serveCmd.Flags().Lookup("mock-host"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Override port if flag was explicitly set
	if portFlag > 0 {
		cfg.Server.Port = portFlag
	}
	if mockHostFlag != "" {
		cfg.Mocking.Host = mockHostFlag
	}

	logger := logging.FromStrings(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	var store storage.Storage
	if cfg.Storage.Type == "file" {
		logger.Info("using data directory", "path", cfg.Storage.Path)
		store, err = storage.NewFileStorage(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("failed to initialize file storage: %w", err)
		}
	} else {
		store = storage.NewMemoryStorage()
	}
	defer store.Close()

	statsCollector := stats.NewCollector()
	eventsService := events.NewService(cfg.Events.MaxEvents)

	client := mocking.NewClient(cfg.Mocking.Host, cfg.Mocking.BasePath,
		mocking.WithTimeout(cfg.Mocking.Timeout),
		mocking.WithRecorder(statsCollector),
	)
	manager := lifecycle.NewManager(client, lifecycle.WithObserver(eventsService))

	router := api.NewRouter(store, manager, statsCollector, eventsService, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Mocking.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting mocksync server", "addr", addr, "mockingHost", cfg.Mocking.Host)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
	return nil
}
