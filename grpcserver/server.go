package grpcserver

import (
	"context"
	"net"
	"sync"
	"time"

	"moviecatalog/pkg/logger"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// MovieService is the health service name reported for the movie store.
const MovieService = "movie"

const defaultProbeInterval = 15 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Addr          string
	ProbeInterval time.Duration
	Logger        *zap.SugaredLogger

	store      Pinger
	health     *health.Server
	grpcServer *grpc.Server

	stopOnce sync.Once
	done     chan struct{}
}

func New(addr string, store Pinger) *Server {
	s := &Server{
		Addr:          addr,
		ProbeInterval: defaultProbeInterval,
		Logger:        logger.NOOPLogger,
		store:         store,
		health:        health.NewServer(),
		done:          make(chan struct{}),
	}

	s.grpcServer = grpc.NewServer()
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	reflection.Register(s.grpcServer)
	return s
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Serve probes the store once, keeps probing in the background and serves on lis
// until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.Probe(context.Background())
	go s.probeLoop()
	return s.grpcServer.Serve(lis)
}

// Probe pings the store and updates the serving status of the movie service.
func (s *Server) Probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.store.Ping(ctx); err != nil {
		s.Logger.Warnw("movie store unreachable", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(MovieService, status)
	s.health.SetServingStatus("", status)
}

func (s *Server) probeLoop() {
	ticker := time.NewTicker(s.ProbeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.Probe(context.Background())
		}
	}
}

func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
	})
}
