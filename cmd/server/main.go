package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-tcp/internal/app"
	"github.com/vovakirdan/wirechat-tcp/internal/config"
	"github.com/vovakirdan/wirechat-tcp/internal/log"
)

type flags struct {
	configPath  string
	addr        string
	port        int
	poolSize    int
	idleTimeout time.Duration
	logLevel    string
	debug       int
	adminAddr   string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           "wirechat-tcp-server",
		Short:         "Run the TCP chat server",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.configPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&f.addr, "addr", "", "listen address (host:port)")
	cmd.Flags().IntVarP(&f.port, "port", "p", 0, "listen port, overrides the port in --addr")
	cmd.Flags().IntVar(&f.poolSize, "pool-size", 0, "maximum concurrently served connections")
	cmd.Flags().DurationVar(&f.idleTimeout, "idle-timeout", 0, "stop after this long without clients")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().IntVarP(&f.debug, "debug", "d", 0, "debug level: 0 logs errors only, 1 logs everything")
	cmd.Flags().StringVar(&f.adminAddr, "admin-addr", "", "admin API listen address, empty disables it")

	return cmd
}

func run(cmd *cobra.Command, f flags) error {
	bootLevel := "info"
	if f.logLevel != "" {
		bootLevel = f.logLevel
	}
	bootLogger := log.New(bootLevel)

	cfg, path, err := config.Load(bootLogger, f.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	overrides := config.Config{
		Addr:        f.addr,
		PoolSize:    f.poolSize,
		IdleTimeout: f.idleTimeout,
		LogLevel:    f.logLevel,
		AdminAddr:   f.adminAddr,
	}
	if cmd.Flags().Changed("debug") && f.logLevel == "" {
		overrides.LogLevel = log.LevelFromDebug(f.debug)
	}
	cfg.UpdateFrom(overrides)

	if f.port != 0 {
		host, _, err := net.SplitHostPort(cfg.Addr)
		if err != nil {
			host = ""
		}
		cfg.Addr = net.JoinHostPort(host, strconv.Itoa(f.port))
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := log.New(cfg.LogLevel)
	logger.Info().Str("config", path).Str("addr", cfg.Addr).Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}

	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	return nil
}
