package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/GoSim-25-26J-441/smetana-core/internal/metrics"
	"github.com/GoSim-25-26J-441/smetana-core/internal/smetanad"
	"github.com/GoSim-25-26J-441/smetana-core/internal/solver/simplex"
	"github.com/GoSim-25-26J-441/smetana-core/internal/store"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/config"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/logger"
)

type globalFlags struct {
	configPath string
	logLevel   string
}

type serveFlags struct {
	grpcAddr    string
	metricsAddr string
	dbPath      string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		global globalFlags
		serve  serveFlags
	)
	root := &cobra.Command{
		Use:          "smetanad",
		Short:        "Community interaction scoring service",
		Long:         "smetanad scores metabolic interactions in microbial communities (MRO, MIP, MP, MU, SC, SMETANA) and serves the scores over gRPC.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, global)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("grpc-addr") {
				cfg.Server.GRPCAddr = serve.grpcAddr
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.Server.MetricsAddr = serve.metricsAddr
			}
			if cmd.Flags().Changed("db") {
				cfg.Server.DBPath = serve.dbPath
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVar(&global.configPath, "config", "", "config file (defaults are used when empty)")
	root.PersistentFlags().StringVar(&global.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")
	root.Flags().StringVar(&serve.grpcAddr, "grpc-addr", ":50051", "gRPC listen address")
	root.Flags().StringVar(&serve.metricsAddr, "metrics-addr", ":9090", "metrics listen address")
	root.Flags().StringVar(&serve.dbPath, "db", "smetana.db", "report database path")

	root.AddCommand(newScoreCommand(&global), newScreenCommand(&global))
	return root
}

// loadConfig reads the config file, applies the log level and installs the
// default logger
func loadConfig(cmd *cobra.Command, global globalFlags) (*config.Config, error) {
	cfg := config.Default()
	if global.configPath != "" {
		loaded, err := config.LoadConfig(global.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = global.logLevel
	}
	logger.SetDefault(logger.NewText(cfg.LogLevel, os.Stderr))
	return cfg, nil
}

func newSolver(cfg config.SolverConfig) *simplex.Solver {
	return simplex.New(
		simplex.WithTolerance(cfg.Tolerance),
		simplex.WithInfinity(cfg.Infinity),
		simplex.WithMaxNodes(cfg.MaxNodes),
	)
}

func runServer(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	st, err := store.Open(cfg.Server.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	grpcServer := grpc.NewServer()
	smetanad.RegisterScoringServiceServer(grpcServer,
		smetanad.NewServer(st, newSolver(cfg.Solver), cfg, smetanad.WithMetrics(collector)))

	grpcLis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen for gRPC on %s: %w", cfg.Server.GRPCAddr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	httpSrv := &http.Server{
		Addr:              cfg.Server.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("gRPC server listening", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(grpcLis); err != nil {
			logger.Error("gRPC server error", "error", err)
			stop()
		}
	}()

	go func() {
		logger.Info("metrics server listening", "addr", cfg.Server.MetricsAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown error", "error", err)
	}
	return nil
}
