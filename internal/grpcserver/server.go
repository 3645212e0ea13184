// Package grpcserver exposes the standard gRPC health service next to the
// HTTP API so orchestrators can probe the ledger process.
package grpcserver

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"finledger/internal/log"
)

// ServiceName is the health service name reported for the ledger.
const ServiceName = "finledger.Ledger"

type Server struct {
	addr   string
	lis    net.Listener
	health *health.Server
	Server *grpc.Server
}

func New(addr string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Nop()
	}
	s := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(logger.WithComponent(log.ComponentGRPC))))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Server{
		addr:   addr,
		health: hs,
		Server: s,
	}
}

// SetServing flips both the overall and the ledger service status.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Start listens on the configured address and serves until Stop.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Serve serves on an existing listener.
func (s *Server) Serve(lis net.Listener) error {
	s.lis = lis
	return s.Server.Serve(lis)
}

// Stop marks the service as not serving and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.Server.GracefulStop()
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

// LoggingInterceptor logs every unary call with its method, status code and
// duration. Health probes are logged at debug level.
func LoggingInterceptor(logger *log.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		args := []any{
			log.FieldMethod, info.FullMethod,
			"code", status.Code(err).String(),
			log.FieldDuration, time.Since(start).Milliseconds(),
		}
		switch {
		case err != nil:
			logger.WarnContext(ctx, "gRPC call failed", append(args, log.FieldError, err)...)
		case info.FullMethod == healthpb.Health_Check_FullMethodName:
			logger.DebugContext(ctx, "gRPC call", args...)
		default:
			logger.InfoContext(ctx, "gRPC call", args...)
		}
		return resp, err
	}
}
