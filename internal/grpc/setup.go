package grpc

import (
	"sync"

	"github.com/Belphemur/vttbridge/internal/config"
	"github.com/Belphemur/vttbridge/internal/services"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// maxDocumentMessageSize bounds a single GetSubtitle response. Converted documents
// come from archive entries of at most 16 MiB, plus WebVTT overhead.
const maxDocumentMessageSize = 32 << 20

var (
	grpcServerMetrics         *grpcprom.ServerMetrics
	registerServerMetricsOnce sync.Once
)

// NewGRPCServer builds the SubtitleService server. Calls pass through Prometheus
// metrics, zerolog call logging and panic recovery, in that order; health and
// reflection services are registered alongside.
func NewGRPCServer(p services.SubtitlePipeline) *grpc.Server {
	registerServerMetricsOnce.Do(func() {
		grpcServerMetrics = grpcprom.NewServerMetrics(
			grpcprom.WithServerHandlingTimeHistogram(),
		)
		prometheus.MustRegister(grpcServerMetrics)
	})

	srvMetrics := grpcServerMetrics
	callLogger := interceptorLogger(config.GetLogger())
	logOpts := []logging.Option{logging.WithLogOnEvents(logging.FinishCall)}
	recoveryOpts := []recovery.Option{recovery.WithRecoveryHandlerContext(recoverPanic)}

	grpcServer := grpc.NewServer(
		grpc.MaxSendMsgSize(maxDocumentMessageSize),
		grpc.ChainUnaryInterceptor(
			srvMetrics.UnaryServerInterceptor(),
			logging.UnaryServerInterceptor(callLogger, logOpts...),
			recovery.UnaryServerInterceptor(recoveryOpts...),
		),
		grpc.ChainStreamInterceptor(
			srvMetrics.StreamServerInterceptor(),
			logging.StreamServerInterceptor(callLogger, logOpts...),
			recovery.StreamServerInterceptor(recoveryOpts...),
		),
	)

	RegisterSubtitleServiceServer(grpcServer, NewServer(p))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(SubtitleServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	// grpcurl
	reflection.Register(grpcServer)

	srvMetrics.InitializeMetrics(grpcServer)

	return grpcServer
}
