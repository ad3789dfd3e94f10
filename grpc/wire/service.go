// Package wire declares the zyan.Host gRPC service by hand. Every message is a
// google.protobuf.Struct, so no generated code is needed and arbitrary
// argument lists travel as structpb values.
package wire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "zyan.Host"

	// SessionMetadataKey carries the session id on every call but Logon.
	SessionMetadataKey = "x-zyan-session"

	Host_Logon_FullMethodName              = "/zyan.Host/Logon"
	Host_Logoff_FullMethodName             = "/zyan.Host/Logoff"
	Host_RenewSession_FullMethodName       = "/zyan.Host/RenewSession"
	Host_Invoke_FullMethodName             = "/zyan.Host/Invoke"
	Host_AddEventHandler_FullMethodName    = "/zyan.Host/AddEventHandler"
	Host_RemoveEventHandler_FullMethodName = "/zyan.Host/RemoveEventHandler"
	Host_Subscribe_FullMethodName          = "/zyan.Host/Subscribe"
	Host_Unsubscribe_FullMethodName        = "/zyan.Host/Unsubscribe"
	Host_Callbacks_FullMethodName          = "/zyan.Host/Callbacks"
)

type HostServer interface {
	Logon(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logoff(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RenewSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Invoke(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddEventHandler(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveEventHandler(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Subscribe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Unsubscribe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Callbacks streams the notifications addressed to the caller's session
	// until the client goes away.
	Callbacks(*structpb.Struct, grpc.ServerStreamingServer[structpb.Struct]) error
}

func RegisterHostServer(s grpc.ServiceRegistrar, srv HostServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type unaryMethod func(srv HostServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(HostServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(HostServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _Host_Callbacks_Handler(srv any, stream grpc.ServerStream) error {
	m := new(structpb.Struct)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(HostServer).Callbacks(m, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HostServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Logon", Handler: unaryHandler(Host_Logon_FullMethodName, HostServer.Logon)},
		{MethodName: "Logoff", Handler: unaryHandler(Host_Logoff_FullMethodName, HostServer.Logoff)},
		{MethodName: "RenewSession", Handler: unaryHandler(Host_RenewSession_FullMethodName, HostServer.RenewSession)},
		{MethodName: "Invoke", Handler: unaryHandler(Host_Invoke_FullMethodName, HostServer.Invoke)},
		{MethodName: "AddEventHandler", Handler: unaryHandler(Host_AddEventHandler_FullMethodName, HostServer.AddEventHandler)},
		{MethodName: "RemoveEventHandler", Handler: unaryHandler(Host_RemoveEventHandler_FullMethodName, HostServer.RemoveEventHandler)},
		{MethodName: "Subscribe", Handler: unaryHandler(Host_Subscribe_FullMethodName, HostServer.Subscribe)},
		{MethodName: "Unsubscribe", Handler: unaryHandler(Host_Unsubscribe_FullMethodName, HostServer.Unsubscribe)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Callbacks",
			Handler:       _Host_Callbacks_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "zyan/host",
}

type HostClient interface {
	Logon(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Logoff(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RenewSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Invoke(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	AddEventHandler(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RemoveEventHandler(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Subscribe(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Unsubscribe(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Callbacks(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error)
}

type hostClient struct {
	cc grpc.ClientConnInterface
}

func NewHostClient(cc grpc.ClientConnInterface) HostClient {
	return &hostClient{cc: cc}
}

func (c *hostClient) unary(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *hostClient) Logon(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, Host_Logon_FullMethodName, in, opts)
}

func (c *hostClient) Logoff(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, Host_Logoff_FullMethodName, in, opts)
}

func (c *hostClient) RenewSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, Host_RenewSession_FullMethodName, in, opts)
}

func (c *hostClient) Invoke(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, Host_Invoke_FullMethodName, in, opts)
}

func (c *hostClient) AddEventHandler(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, Host_AddEventHandler_FullMethodName, in, opts)
}

func (c *hostClient) RemoveEventHandler(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, Host_RemoveEventHandler_FullMethodName, in, opts)
}

func (c *hostClient) Subscribe(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, Host_Subscribe_FullMethodName, in, opts)
}

func (c *hostClient) Unsubscribe(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, Host_Unsubscribe_FullMethodName, in, opts)
}

func (c *hostClient) Callbacks(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], Host_Callbacks_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
