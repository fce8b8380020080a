// Command nfs4d serves a single directory tree over NFSv4.0 (RFC 7530).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kelpfs/nfs4d/internal/config"
	"github.com/kelpfs/nfs4d/internal/logger"
	"github.com/kelpfs/nfs4d/internal/nfs4/client"
	"github.com/kelpfs/nfs4d/internal/nfs4/file"
	"github.com/kelpfs/nfs4d/internal/server"
	"github.com/kelpfs/nfs4d/internal/telemetry"
	"github.com/kelpfs/nfs4d/pkg/vfs/osfs"
)

var (
	version = "dev"
	v       = viper.New()
)

func main() {
	root := &cobra.Command{
		Use:   "nfs4d <export-path>",
		Short: "NFSv4.0 file server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v.Set("root", args[0])
			return run(cmd.Context())
		},
	}

	flags := root.Flags()
	flags.String("bind", "", "address to bind the NFSv4.0 TCP listener (default 127.0.0.1:11112)")
	flags.String("config", "", "path to a YAML config file")
	flags.Bool("debug", false, "enable debug logging")
	flags.Duration("lease", 0, "NFSv4.0 lease duration (default 60s)")
	flags.Uint32("fsid-major", 0, "major fsid reported by GETATTR (default 152)")
	flags.Uint32("fsid-minor", 0, "minor fsid reported by GETATTR (default 152)")
	flags.Bool("metrics", true, "serve Prometheus metrics")
	flags.String("metrics-bind", "", "address to bind the Prometheus /metrics endpoint")

	_ = v.BindPFlag("bind", flags.Lookup("bind"))
	_ = v.BindPFlag("lease", flags.Lookup("lease"))
	_ = v.BindPFlag("fsid_major", flags.Lookup("fsid-major"))
	_ = v.BindPFlag("fsid_minor", flags.Lookup("fsid-minor"))
	_ = v.BindPFlag("metrics.enabled", flags.Lookup("metrics"))
	_ = v.BindPFlag("metrics.bind", flags.Lookup("metrics-bind"))

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := flags.GetString("config")
		if cfgFile == "" {
			if _, err := os.Stat(config.DefaultConfigPath()); err == nil {
				cfgFile = config.DefaultConfigPath()
			}
		}
		if cfgFile != "" {
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config: %w", err)
			}
		}
		if debug, _ := flags.GetBool("debug"); debug {
			v.Set("logging.level", "DEBUG")
		}
		return nil
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(parent context.Context) error {
	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "nfs4d",
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	fsys, err := osfs.New(cfg.Root)
	if err != nil {
		return fmt.Errorf("open export root: %w", err)
	}

	bootTime := uint64(time.Now().Unix())
	files := file.New(fsys, bootTime, uint64(cfg.FSIDMajor), uint64(cfg.FSIDMinor))
	clients := client.New(cfg.Lease)

	srv := server.New(cfg.Bind, bootTime, clients, files)

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Bind)
	}

	serverDone := make(chan error, 1)
	go func() { serverDone <- srv.ListenAndServe(ctx) }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("nfs4d serving", "root", cfg.Root, "bind", cfg.Bind)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received")
		cancel()
		return <-serverDone
	case err := <-serverDone:
		return err
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}
