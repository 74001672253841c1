package grpc

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection/grpc_reflection_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/Belphemur/vttbridge/internal/cache"
	"github.com/Belphemur/vttbridge/internal/models"
	"github.com/Belphemur/vttbridge/internal/parser"
	"github.com/Belphemur/vttbridge/internal/services"
	"github.com/Belphemur/vttbridge/internal/testutil"
)

// startServer serves srv on a random local port and returns a connected client.
func startServer(t *testing.T, srv *grpc.Server) *grpc.ClientConn {
	t.Helper()

	lis, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.GracefulStop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestNewGRPCServer_ReturnsNonNil(t *testing.T) {
	srv := NewGRPCServer(&mockPipeline{})
	if srv == nil {
		t.Fatal("Expected non-nil gRPC server")
	}
}

func TestNewGRPCServer_HealthCheck(t *testing.T) {
	conn := startServer(t, NewGRPCServer(&mockPipeline{}))
	healthClient := grpc_health_v1.NewHealthClient(conn)

	for _, service := range []string{"", SubtitleServiceName} {
		resp, err := healthClient.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: service})
		if err != nil {
			t.Fatalf("Health check for %q failed: %v", service, err)
		}
		if resp.Status != grpc_health_v1.HealthCheckResponse_SERVING {
			t.Errorf("Expected SERVING status for %q, got %v", service, resp.Status)
		}
	}
}

func TestNewGRPCServer_ReflectionEnabled(t *testing.T) {
	conn := startServer(t, NewGRPCServer(&mockPipeline{}))

	reflectionClient := grpc_reflection_v1.NewServerReflectionClient(conn)
	stream, err := reflectionClient.ServerReflectionInfo(context.Background())
	if err != nil {
		t.Fatalf("Failed to create reflection stream: %v", err)
	}

	err = stream.Send(&grpc_reflection_v1.ServerReflectionRequest{
		MessageRequest: &grpc_reflection_v1.ServerReflectionRequest_ListServices{
			ListServices: "",
		},
	})
	if err != nil {
		t.Fatalf("Failed to send reflection request: %v", err)
	}

	resp, err := stream.Recv()
	if err != nil {
		t.Fatalf("Failed to receive reflection response: %v", err)
	}

	listResp := resp.GetListServicesResponse()
	if listResp == nil {
		t.Fatal("Expected list services response")
	}

	found := false
	for _, svc := range listResp.Service {
		if svc.Name == SubtitleServiceName {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected %s to be registered", SubtitleServiceName)
	}
}

func TestNewGRPCServer_CalledMultipleTimes(t *testing.T) {
	// Verify sync.Once prevents double-registration panics
	srv1 := NewGRPCServer(&mockPipeline{})
	srv2 := NewGRPCServer(&mockPipeline{})

	if srv1 == nil || srv2 == nil {
		t.Fatal("Expected non-nil servers from multiple calls")
	}
}

func TestSubtitleService_EndToEnd(t *testing.T) {
	const src = "https://subs.example.com/ep1.srt"
	blocks := testutil.DefaultSRTBlocks()

	fetcher := testutil.NewStubFetcher(map[string]testutil.FetchResult{
		src: {Raw: &models.RawSubtitle{
			SourceID: src,
			Filename: "ep1.srt",
			Content:  []byte(testutil.GenerateSRT(blocks)),
		}},
	})
	c, err := cache.New("memory", cache.ProviderConfig{Size: 10, TTL: time.Hour})
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	pipeline := services.NewSubtitlePipeline(fetcher, parser.NewSubtitleDecoder(parser.DecodeOptions{}), services.NewSubtitleConverter(), c)
	defer pipeline.Close()

	client := NewSubtitleServiceClient(startServer(t, NewGRPCServer(pipeline)))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	want := testutil.GenerateWebVTT(blocks)
	for i, wantCache := range []string{"miss", "hit"} {
		var header metadata.MD
		resp, err := client.GetSubtitle(ctx, wrapperspb.String(src), grpc.Header(&header))
		if err != nil {
			t.Fatalf("GetSubtitle call %d failed: %v", i+1, err)
		}
		if resp.GetValue() != want {
			t.Errorf("Call %d: expected %q, got %q", i+1, want, resp.GetValue())
		}
		if got := header.Get(CacheStatusHeader); len(got) != 1 || got[0] != wantCache {
			t.Errorf("Call %d: expected cache header %q, got %v", i+1, wantCache, got)
		}
	}
	if calls := fetcher.Calls(src); calls != 1 {
		t.Errorf("Expected one fetch for two calls, got %d", calls)
	}

	if _, err := client.ClearCache(ctx, &emptypb.Empty{}); err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}
	if _, err := client.GetSubtitle(ctx, wrapperspb.String(src)); err != nil {
		t.Fatalf("GetSubtitle after ClearCache failed: %v", err)
	}
	if calls := fetcher.Calls(src); calls != 2 {
		t.Errorf("Expected a refetch after ClearCache, got %d fetches", calls)
	}

	_, err = client.GetSubtitle(ctx, wrapperspb.String(""))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("Expected InvalidArgument for empty url, got %v", err)
	}
}

func TestNewGRPCServer_RecoversHandlerPanic(t *testing.T) {
	var calls atomic.Int32
	pipeline := &mockPipeline{
		getSubtitleFunc: func(ctx context.Context, sourceID string) (*models.ConvertedDocument, error) {
			if calls.Add(1) == 1 {
				panic("decoder blew up")
			}
			return &models.ConvertedDocument{Text: "WEBVTT\n\n"}, nil
		},
	}
	client := NewSubtitleServiceClient(startServer(t, NewGRPCServer(pipeline)))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.GetSubtitle(ctx, wrapperspb.String("https://subs.example.com/ep1.srt"))
	if status.Code(err) != codes.Internal {
		t.Fatalf("Expected Internal after a handler panic, got %v", err)
	}

	resp, err := client.GetSubtitle(ctx, wrapperspb.String("https://subs.example.com/ep1.srt"))
	if err != nil {
		t.Fatalf("Expected server to keep serving after a panic, got %v", err)
	}
	if resp.GetValue() != "WEBVTT\n\n" {
		t.Errorf("Expected bare WebVTT document, got %q", resp.GetValue())
	}
}
