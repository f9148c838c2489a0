// Package smetanad serves community scoring over gRPC. Requests and responses
// are google.protobuf.Struct documents, so the service needs no generated code.
package smetanad

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "smetana.v1.ScoringService"

// Full method names
const (
	ScoreMethod       = "/" + ServiceName + "/Score"
	GetReportMethod   = "/" + ServiceName + "/GetReport"
	ListReportsMethod = "/" + ServiceName + "/ListReports"
	ScreenMethod      = "/" + ServiceName + "/Screen"
)

// ScoringServiceServer is the server API of the scoring service
type ScoringServiceServer interface {
	Score(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListReports(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Screen(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv ScoringServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ScoringServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ScoringServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes ScoringService for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ScoringServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Score", Handler: unaryHandler(ScoreMethod, ScoringServiceServer.Score)},
		{MethodName: "GetReport", Handler: unaryHandler(GetReportMethod, ScoringServiceServer.GetReport)},
		{MethodName: "ListReports", Handler: unaryHandler(ListReportsMethod, ScoringServiceServer.ListReports)},
		{MethodName: "Screen", Handler: unaryHandler(ScreenMethod, ScoringServiceServer.Screen)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "smetana/v1/scoring.proto",
}

// RegisterScoringServiceServer registers srv with s
func RegisterScoringServiceServer(s grpc.ServiceRegistrar, srv ScoringServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls ScoringService over a client connection
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Score runs every scorer on the submitted community
func (c *Client) Score(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ScoreMethod, in, opts...)
}

// GetReport fetches a stored report
func (c *Client) GetReport(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GetReportMethod, in, opts...)
}

// ListReports lists stored reports, newest first
func (c *Client) ListReports(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ListReportsMethod, in, opts...)
}

// Screen scores every pair of the submitted members
func (c *Client) Screen(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ScreenMethod, in, opts...)
}
