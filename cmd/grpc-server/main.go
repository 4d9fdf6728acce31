package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"ziwei/internal/chart"
	"ziwei/internal/grpcserver"
	"ziwei/internal/kb"
	"ziwei/internal/session"
	"ziwei/pkg/logger"
	"ziwei/pkg/utils"
)

func main() {
	logger.Bootstrap(os.Stderr)
	cfg, err := utils.Load(os.Getenv("ZIWEI_CONFIG"))
	if err != nil {
		logger.Logger.Fatalw("load config failed", "path", os.Getenv("ZIWEI_CONFIG"), "err", err)
	}
	if err := logger.Initialize(cfg.Log.JSON, cfg.Log.Level); err != nil {
		logger.Logger.Fatalw("init logger failed", "err", err)
	}
	defer logger.Sync()
	log := logger.Named("grpc")

	kbStore, err := kb.Open(cfg.KBPath)
	if err != nil {
		log.Fatalw("load knowledge base failed", "path", cfg.KBPath, "err", err)
	}
	provider, err := chart.FromConfig(cfg.Provider)
	if err != nil {
		log.Fatalw("chart provider", "err", err)
	}

	listener, err := net.Listen("tcp", cfg.Grpc.Addr)
	if err != nil {
		log.Fatalw("grpc listen failed", "addr", cfg.Grpc.Addr, "err", err)
	}

	svc := grpcserver.NewServer(provider, kbStore, session.Options{
		Locale:  cfg.Provider.Locale,
		FixLeap: cfg.Provider.FixLeap,
		MinYear: cfg.Form.MinYear,
		MaxYear: cfg.Form.MaxYear,
	})
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.UnaryLogger()))
	grpcserver.RegisterChartServiceServer(grpcServer, svc)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		log.Infow("shutdown signal received", "signal", sig.String())
		grpcServer.GracefulStop()
	}()

	log.Infow("gRPC server listening", "addr", cfg.Grpc.Addr)
	if err := grpcServer.Serve(listener); err != nil {
		log.Fatalw("grpc server stopped", "err", err)
	}
}
