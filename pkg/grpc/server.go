// Package grpc exposes the standard gRPC health and reflection services so
// orchestrators can health-check the storefront and its datastores.
package grpc

import (
	"context"
	"fmt"
	"net"
	"sort"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/config"
)

const pingTimeout = 2 * time.Second

// Checker reports whether a dependency is reachable.
type Checker interface {
	Ping(ctx context.Context) error
}

type Server struct {
	addr   string
	srv    *grpc.Server
	health *health.Server
	checks map[string]Checker
	names  []string
	logger *zap.Logger
}

// NewServer builds a server whose overall health is SERVING only while every
// check passes. Each check is also reported under its own service name.
func NewServer(cfg *config.GRPCConfig, checks map[string]Checker, logger *zap.Logger) *Server {
	logger = logger.Named("grpc")
	srv := grpc.NewServer(grpc.UnaryInterceptor(unaryLogger(logger)))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
		hs.SetServingStatus(name, healthpb.HealthCheckResponse_UNKNOWN)
	}
	sort.Strings(names)

	return &Server{
		addr:   cfg.Addr(),
		srv:    srv,
		health: hs,
		checks: checks,
		names:  names,
		logger: logger,
	}
}

func unaryLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("grpc call",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)),
		)
		return resp, err
	}
}

// Refresh pings every check once and publishes the result.
func (s *Server) Refresh(ctx context.Context) {
	overall := healthpb.HealthCheckResponse_SERVING
	for _, name := range s.names {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := s.checks[name].Ping(pctx)
		cancel()

		st := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			st = healthpb.HealthCheckResponse_NOT_SERVING
			overall = st
			s.logger.Warn("dependency unhealthy", zap.String("dependency", name), zap.Error(err))
		}
		s.health.SetServingStatus(name, st)
	}
	s.health.SetServingStatus("", overall)
}

// Watch refreshes health every interval until ctx is done.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	s.Refresh(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Refresh(ctx)
		}
	}
}

func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC health server started", zap.String("address", lis.Addr().String()))
	return s.srv.Serve(lis)
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(lis)
}

// Stop marks every service NOT_SERVING and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}
