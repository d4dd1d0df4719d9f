// Command creditrisk runs the credit-risk classification HTTP service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeffreire/creditrisk-api/pkg/log"
	"github.com/jeffreire/creditrisk-api/server"
)

var (
	configPath   string
	addr         string
	logLevel     string
	snapshotPath string
)

var rootCmd = &cobra.Command{
	Use:     "creditrisk",
	Short:   "Credit-risk classification service",
	Long:    "Serves a logistic regression credit-risk classifier over HTTP: configure, train, predict, and snapshot persistence.",
	Version: server.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to YAML config file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "model snapshot to restore at startup (overrides config)")
}

func run() error {
	cfg, err := server.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if snapshotPath != "" {
		cfg.Model.SnapshotPath = snapshotPath
	}

	// A typo in log.level should fail startup cleanly, not panic.
	if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
		return err
	}

	if cfg.Log.File != "" {
		log.SetupLoggerToFile(cfg.Log.Level, cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups)
	} else {
		log.SetupLogger(cfg.Log.Level)
	}

	svc := server.NewModelService(cfg.Model.NumFeatures, cfg.Model.LearningRate)
	if cfg.Model.SnapshotPath != "" {
		if err := svc.Load(cfg.Model.SnapshotPath); err != nil {
			return err
		}
	}

	srv := server.NewServer(cfg, svc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
