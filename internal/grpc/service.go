package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// SubtitleServiceName is the fully qualified gRPC service name.
const SubtitleServiceName = "vttbridge.v1.SubtitleService"

const (
	getSubtitleMethod = "/" + SubtitleServiceName + "/GetSubtitle"
	clearCacheMethod  = "/" + SubtitleServiceName + "/ClearCache"
)

// SubtitleServiceServer is the server API for SubtitleService. Requests and responses use
// the protobuf well-known wrapper types so no generated code is needed.
type SubtitleServiceServer interface {
	// GetSubtitle takes the subtitle URL and returns the WebVTT text.
	GetSubtitle(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	// ClearCache drops every cached conversion.
	ClearCache(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

// RegisterSubtitleServiceServer registers srv on s.
func RegisterSubtitleServiceServer(s grpc.ServiceRegistrar, srv SubtitleServiceServer) {
	s.RegisterService(&subtitleServiceDesc, srv)
}

var subtitleServiceDesc = grpc.ServiceDesc{
	ServiceName: SubtitleServiceName,
	HandlerType: (*SubtitleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetSubtitle", Handler: getSubtitleHandler},
		{MethodName: "ClearCache", Handler: clearCacheHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vttbridge/v1/subtitle.proto",
}

func getSubtitleHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SubtitleServiceServer).GetSubtitle(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getSubtitleMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SubtitleServiceServer).GetSubtitle(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func clearCacheHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SubtitleServiceServer).ClearCache(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: clearCacheMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SubtitleServiceServer).ClearCache(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// SubtitleServiceClient is the client API for SubtitleService.
type SubtitleServiceClient interface {
	GetSubtitle(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	ClearCache(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type subtitleServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSubtitleServiceClient creates a SubtitleService client on cc.
func NewSubtitleServiceClient(cc grpc.ClientConnInterface) SubtitleServiceClient {
	return &subtitleServiceClient{cc: cc}
}

func (c *subtitleServiceClient) GetSubtitle(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, getSubtitleMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *subtitleServiceClient) ClearCache(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, clearCacheMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
