package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/ogurasousui/daily-report-grpc/internal/adapters/grpc/handler"
	"github.com/ogurasousui/daily-report-grpc/internal/adapters/grpc/interceptor"
	"github.com/ogurasousui/daily-report-grpc/internal/adapters/password"
	"github.com/ogurasousui/daily-report-grpc/internal/adapters/repository/postgres"
	"github.com/ogurasousui/daily-report-grpc/internal/core/employee"
	"github.com/ogurasousui/daily-report-grpc/internal/core/report"
	"github.com/ogurasousui/daily-report-grpc/internal/platform/config"
	pg "github.com/ogurasousui/daily-report-grpc/internal/platform/db/postgres"
	"github.com/ogurasousui/daily-report-grpc/internal/platform/logger"
	"github.com/ogurasousui/daily-report-grpc/internal/platform/server"
	"github.com/ogurasousui/daily-report-grpc/internal/platform/token"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	isolation, err := pg.ParseIsolationLevel(cfg.Database.IsolationLevel)
	if err != nil {
		lg.Fatal("invalid isolation level", zap.Error(err))
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		lg.Fatal("failed to initialize database pool", zap.Error(err))
	}
	defer dbPool.Close()

	tm := pg.NewTransactionManager(dbPool, pg.WithIsolationLevel(isolation))

	reportSvc := report.NewService(postgres.NewReportRepository(dbPool), nil, tm, lg.Named("report"))
	employeeSvc := employee.NewService(
		postgres.NewEmployeeRepository(dbPool),
		reportSvc,
		password.NewBcryptHasher(cfg.Auth.BcryptCost),
		nil,
		tm,
		lg.Named("employee"),
	)
	tokens := token.NewManager(cfg.Auth)

	grpcServer := server.New(cfg.Server.ListenAddr, server.Services{
		Auth:     handler.NewAuthGrpcHandler(employeeSvc, tokens),
		Employee: handler.NewEmployeeGrpcHandler(employeeSvc),
		Report:   handler.NewReportGrpcHandler(reportSvc),
	}, []grpc.UnaryServerInterceptor{
		interceptor.NewLogging(lg.Named("grpc")),
		interceptor.NewAuth(employeeSvc, tokens, interceptor.AuthPolicy{
			Public: handler.PublicMethods(),
			Admin:  handler.AdminMethods(),
		}, lg.Named("auth")),
	})

	lg.Info("gRPC server listening", zap.String("addr", cfg.Server.ListenAddr))

	if err := grpcServer.Run(ctx); err != nil {
		lg.Fatal("server stopped with error", zap.Error(err))
	}
}
