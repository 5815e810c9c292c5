package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wyfcoding/jobportal/pkg/config"
	"github.com/wyfcoding/jobportal/pkg/grpcclient"
	"github.com/wyfcoding/jobportal/pkg/idgen"
	"github.com/wyfcoding/jobportal/pkg/logger"
	"github.com/wyfcoding/jobportal/pkg/metrics"
	"github.com/wyfcoding/jobportal/pkg/middleware"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

var (
	configPath = flag.String("config", "configs/portal/config.toml", "config file path")
	migrate    = flag.Bool("migrate", false, "run schema migration and seed before serving")
	probe      = flag.Bool("probe", false, "check the gRPC health endpoint of a running portal and exit")
)

func main() {
	flag.Parse()

	// 1. 配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	if *probe {
		os.Exit(runProbe(cfg))
	}

	// 2. 日志
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
		Service:    cfg.ServiceName,
	}); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}
	if err := idgen.Init(cfg.NodeID); err != nil {
		slog.Error("failed to init id generator", "error", err)
		os.Exit(1)
	}

	// 3. 指标
	m := metrics.New(cfg.ServiceName)

	// 4. 基础设施与业务组件
	app, cleanup, err := initApp(cfg, m)
	if err != nil {
		slog.Error("failed to init portal", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	if *migrate || cfg.Database.AutoMigrate || cfg.IsDev() {
		if err := app.migrateAndSeed(context.Background()); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	// 5. 接口层
	router := app.router()
	httpSrv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	grpcSrv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		middleware.GRPCRecoveryInterceptor(),
		middleware.GRPCLoggingInterceptor(),
	))
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = m.NewServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// 6. 启动
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.GRPC.Enabled {
		g.Go(func() error {
			addr := fmt.Sprintf(":%d", cfg.GRPC.Port)
			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
			slog.Info("gRPC server starting", "addr", addr)
			return grpcSrv.Serve(lis)
		})
	}

	if metricsSrv != nil {
		g.Go(func() error {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down servers...")
		healthSrv.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP shutdown failed", "error", err)
		}
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		grpcSrv.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// runProbe 供容器健康检查调用，SERVING 返回 0
func runProbe(cfg *config.Config) int {
	if !cfg.GRPC.Enabled {
		fmt.Fprintln(os.Stderr, "grpc is disabled")
		return 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := grpcclient.Probe(ctx, grpcclient.ClientConfig{
		Target:         fmt.Sprintf("127.0.0.1:%d", cfg.GRPC.Port),
		RequestTimeout: 2 * time.Second,
		MaxRetries:     2,
		RetryDelay:     500 * time.Millisecond,
	}, "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
