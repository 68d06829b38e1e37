package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hamzaelk/offerpipe/internal/config"
	"github.com/hamzaelk/offerpipe/internal/storage"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "offerpipe",
	Short: "Job-offer normalization and enrichment pipeline",
	Long: "Offerpipe takes raw scraped job offers from object storage, enriches them\n" +
		"through an LLM into structured profiles, cleans them for the warehouse and\n" +
		"loads the result into SQLite.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: OFFERPIPE_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > OFFERPIPE_CONFIG env var > "./config.yaml".
// A missing default file is not an error; the built-in defaults apply.
func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if path == "" {
		if env := os.Getenv("OFFERPIPE_CONFIG"); env != "" {
			path = env
			explicit = true
		} else {
			path = "config.yaml"
		}
	}

	cfg, err := config.Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupStore(cfg *config.Config, logger *slog.Logger) (storage.ObjectStore, error) {
	s := cfg.Storage
	if s.Backend == "minio" {
		logger.Info("using minio storage", "endpoint", s.Endpoint)
	} else {
		logger.Info("using filesystem storage", "root", s.Root)
	}
	return storage.NewFromBackend(s.Backend, s.Root, s.Endpoint, s.AccessKey, s.SecretKey, s.UseSSL)
}
