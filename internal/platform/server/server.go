package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"

	"github.com/ogurasousui/daily-report-grpc/internal/adapters/grpc/handler"
)

// Services はサーバーへ登録する各サービスの実装です。
type Services struct {
	Auth     handler.AuthServiceServer
	Employee handler.EmployeeServiceServer
	Report   handler.ReportServiceServer
}

// Server は gRPC サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr string
	grpcServer *grpc.Server
}

// New は指定されたアドレスで待ち受ける gRPC サーバーを構築します。
// インターセプターは渡された順に外側から適用されます。
func New(listenAddr string, services Services, interceptors []grpc.UnaryServerInterceptor, opts ...grpc.ServerOption) *Server {
	if len(interceptors) > 0 {
		opts = append(opts, grpc.ChainUnaryInterceptor(interceptors...))
	}
	srv := grpc.NewServer(opts...)

	if services.Auth != nil {
		handler.RegisterAuthServiceServer(srv, services.Auth)
	}
	if services.Employee != nil {
		handler.RegisterEmployeeServiceServer(srv, services.Employee)
	}
	if services.Report != nil {
		handler.RegisterReportServiceServer(srv, services.Report)
	}

	return &Server{
		listenAddr: listenAddr,
		grpcServer: srv,
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}
	return s.RunWithListener(ctx, lis)
}

// RunWithListener は指定したリスナーでサーバーを起動します。
func (s *Server) RunWithListener(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		s.grpcServer.GracefulStop()
	}()

	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	return nil
}

// GracefulStop はサーバーを安全に停止します。
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}
