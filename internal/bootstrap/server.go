package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	log "github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	shutdownTimeout = 5 * time.Second
	checkInterval   = 10 * time.Second
	swaggerFile     = "flightdesk.swagger.json"
)

// HealthCheck is a dependency check that drives the health status.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	health     *health.Server
	healthConn *grpc.ClientConn
}

// Run starts the gRPC health server and the HTTP server (API, gateway
// health endpoint, swagger) and blocks until ctx is cancelled or a server
// fails.
func Run(ctx context.Context, cfg *config.Config, api http.Handler, checks ...HealthCheck) error {
	s, err := newServers(cfg, api)
	if err != nil {
		return err
	}
	defer s.healthConn.Close()

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("address", cfg.GRPC.Address).Info("gRPC server listening")
		return s.grpcServer.Serve(lis)
	})

	g.Go(func() error {
		log.WithField("address", cfg.HTTP.Address).Info("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		s.watch(gctx, checks)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down servers")
		s.health.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newServers(cfg *config.Config, api http.Handler) (*Servers, error) {
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)

	conn, err := grpc.NewClient(dialTarget(cfg.GRPC.Address), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial gRPC health: %w", err)
	}
	gateway := runtime.NewServeMux(runtime.WithHealthzEndpoint(healthpb.NewHealthClient(conn)))

	handler := http.NewServeMux()
	handler.Handle("/healthz", gateway)
	handler.Handle("/", api)

	if cfg.HTTP.SwaggerDir != "" {
		fs := http.FileServer(http.Dir(cfg.HTTP.SwaggerDir))
		handler.Handle("/swagger/", http.StripPrefix("/swagger/", fs))
		handler.Handle("/docs/", httpSwagger.Handler(httpSwagger.URL("/swagger/"+swaggerFile)))
	}

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		health:     healthSrv,
		healthConn: conn,
	}, nil
}

// watch flips the overall health status whenever a check starts or stops
// failing.
func (s *Servers) watch(ctx context.Context, checks []HealthCheck) {
	if len(checks) == 0 {
		return
	}
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for {
		s.health.SetServingStatus("", checkStatus(ctx, checks))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func checkStatus(ctx context.Context, checks []HealthCheck) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	for _, hc := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := hc.Check(checkCtx)
		cancel()
		if err != nil {
			log.WithError(err).WithField("check", hc.Name).Warn("health check failed")
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	return status
}

// dialTarget turns a listen address such as ":9090" into something a client
// can dial.
func dialTarget(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || host != "" {
		return addr
	}
	return net.JoinHostPort("localhost", port)
}
