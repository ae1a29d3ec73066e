// Package server exposes simulations over gRPC and streams game events to
// websocket observers.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	"github.com/magefree/mage-sim/internal/simulation"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	GRPCAddress      string
	WebsocketAddress string // empty disables the websocket endpoint
	Simulation       simulation.Config
	Sink             simulation.Sink
}

// Server hosts the simulation gRPC service, the health service and the
// websocket observer endpoint.
type Server struct {
	opts       Options
	logger     *zap.Logger
	grpcServer *grpc.Server
	health     *health.Server
	hub        *Hub
	httpServer *http.Server
}

// New builds a server; nothing listens until Serve.
func New(opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	hub := NewHub(logger.Named("hub"))
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(ChainUnaryInterceptors(
			RecoveryInterceptor(logger),
			LoggingInterceptor(logger),
		)),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle: 15 * time.Minute,
			Time:              5 * time.Minute,
			Timeout:           1 * time.Minute,
		}),
	)

	var observer simulation.Observer
	if opts.WebsocketAddress != "" {
		observer = hub
	}
	RegisterSimulationServer(grpcServer, NewSimulationService(opts.Simulation, opts.Sink, observer, logger))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(SimulationServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)

	return &Server{
		opts:       opts,
		logger:     logger,
		grpcServer: grpcServer,
		health:     healthServer,
		hub:        hub,
		httpServer: &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second},
	}
}

// Hub returns the websocket hub of the server.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Serve listens on the configured addresses and serves until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	grpcListener, err := net.Listen("tcp", s.opts.GRPCAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.GRPCAddress, err)
	}
	var wsListener net.Listener
	if s.opts.WebsocketAddress != "" {
		wsListener, err = net.Listen("tcp", s.opts.WebsocketAddress)
		if err != nil {
			grpcListener.Close()
			return fmt.Errorf("listen on %s: %w", s.opts.WebsocketAddress, err)
		}
	}
	return s.serve(ctx, grpcListener, wsListener)
}

func (s *Server) serve(ctx context.Context, grpcListener, wsListener net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("gRPC server listening", zap.String("address", grpcListener.Addr().String()))
		if err := s.grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}
		return nil
	})

	if wsListener != nil {
		g.Go(func() error {
			s.hub.Run(ctx)
			return nil
		})
		g.Go(func() error {
			s.logger.Info("websocket server listening", zap.String("address", wsListener.Addr().String()))
			if err := s.httpServer.Serve(wsListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve websocket: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down server")
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		if wsListener != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Warn("websocket shutdown failed", zap.Error(err))
			}
		}
		return nil
	})

	return g.Wait()
}
