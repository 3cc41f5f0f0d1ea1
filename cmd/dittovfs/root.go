package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/marmos91/dittovfs/internal/logger"
	"github.com/marmos91/dittovfs/pkg/config"
	"github.com/marmos91/dittovfs/pkg/vfs"
	"github.com/spf13/cobra"
)

// app holds the flags shared by every subcommand.
type app struct {
	configPath string
	envFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "dittovfs",
		Short:        "dittovfs mounts pluggable filesystem drives behind L:/path names",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadEnv()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/dittovfs/config.yaml)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file with DITTOVFS_* overrides, loaded if present")
	flags.StringVar(&a.logLevel, "log-level", "", "override the configured log level (DEBUG, INFO, WARN, ERROR)")

	root.AddCommand(
		newDemoCmd(a),
		newShellCmd(a),
		newExecCmd(a),
		newDrivesCmd(a),
		newConfigCmd(a),
	)
	return root
}

// loadEnv loads the dotenv file. Variables already set in the environment
// win over the file.
func (a *app) loadEnv() error {
	if a.envFile == "" {
		return nil
	}
	if err := godotenv.Load(a.envFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", a.envFile, err)
	}
	return nil
}

// loadConfig loads the configuration and applies it to the logger.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		return nil, err
	}
	return cfg, nil
}

// boot loads the configuration, starts the metrics endpoint when enabled
// and mounts every configured drive. The returned shutdown function
// unmounts the drives and stops the metrics server.
func (a *app) boot(ctx context.Context) (*vfs.Kernel, func(), error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	metricsResult := config.InitializeMetrics(cfg)

	serverCtx, stopServer := context.WithCancel(ctx)
	serverDone := make(chan struct{})
	if metricsResult.Server != nil {
		go func() {
			defer close(serverDone)
			if err := metricsResult.Server.Start(serverCtx); err != nil {
				logger.Error("Metrics server error: %v", err)
			}
		}()
	} else {
		close(serverDone)
	}

	kernel := vfs.NewKernel(metricsResult.Kernel)
	if err := config.MountDrives(ctx, kernel, cfg.Drives, metricsResult.Backend); err != nil {
		stopServer()
		<-serverDone
		return nil, nil, err
	}

	shutdown := func() {
		if err := kernel.Close(context.Background()); err != nil {
			logger.Warn("Unmount errors: %v", err)
		}
		stopServer()
		<-serverDone
	}
	return kernel, shutdown, nil
}
