package grpccanon

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// CanonicalizerServer is the server API for the Canonicalizer gRPC service.
//
// Requests are raw input bytes; responses are the canonicalization result
// as a protobuf Struct (the JSON shape of model.Result). Well-known types
// keep this package free of a protoc/codegen toolchain.
//
// Proto definition: canon.proto.
type CanonicalizerServer interface {
	CanonicalizeText(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	CanonicalizeROA(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
}

// UnimplementedCanonicalizerServer can be embedded to have forward compatible implementations.
type UnimplementedCanonicalizerServer struct{}

func (UnimplementedCanonicalizerServer) CanonicalizeText(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CanonicalizeText not implemented")
}
func (UnimplementedCanonicalizerServer) CanonicalizeROA(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CanonicalizeROA not implemented")
}

// RegisterCanonicalizerServer registers the Canonicalizer service on a gRPC server.
func RegisterCanonicalizerServer(s grpc.ServiceRegistrar, srv CanonicalizerServer) {
	s.RegisterService(&Canonicalizer_ServiceDesc, srv)
}

// CanonicalizerClient is the client API for the Canonicalizer gRPC service.
type CanonicalizerClient interface {
	CanonicalizeText(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	CanonicalizeROA(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type canonicalizerClient struct{ cc grpc.ClientConnInterface }

func NewCanonicalizerClient(cc grpc.ClientConnInterface) CanonicalizerClient {
	return &canonicalizerClient{cc: cc}
}

func (c *canonicalizerClient) CanonicalizeText(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, "/xdao.roasort.canon.v1.Canonicalizer/CanonicalizeText", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *canonicalizerClient) CanonicalizeROA(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, "/xdao.roasort.canon.v1.Canonicalizer/CanonicalizeROA", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func _Canonicalizer_CanonicalizeText_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CanonicalizerServer).CanonicalizeText(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/xdao.roasort.canon.v1.Canonicalizer/CanonicalizeText"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CanonicalizerServer).CanonicalizeText(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Canonicalizer_CanonicalizeROA_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CanonicalizerServer).CanonicalizeROA(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/xdao.roasort.canon.v1.Canonicalizer/CanonicalizeROA"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CanonicalizerServer).CanonicalizeROA(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Canonicalizer_ServiceDesc is the grpc.ServiceDesc for Canonicalizer service.
var Canonicalizer_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "xdao.roasort.canon.v1.Canonicalizer",
	HandlerType: (*CanonicalizerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CanonicalizeText", Handler: _Canonicalizer_CanonicalizeText_Handler},
		{MethodName: "CanonicalizeROA", Handler: _Canonicalizer_CanonicalizeROA_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "canon.proto",
}
