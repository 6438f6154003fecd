package grpc

import "google.golang.org/grpc"

// testJigServer is the hand-written counterpart of a generated gRPC
// service interface: one bidirectional stream, registered without a
// .proto/codegen step since its only message type is
// google.protobuf.Struct (itself a compiled proto.Message). This mirrors
// how a generic gRPC gateway registers a passthrough stream.
type testJigServer interface {
	Stream(grpc.ServerStream) error
}

// ServiceDesc describes the TestJigService to a *grpc.Server or any
// other grpc.ServiceRegistrar (including go-inprocgrpc's in-process
// Channel, used in tests).
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "testjig.v1.TestJigService",
	HandlerType: (*testJigServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Stream",
			Handler:       streamHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "testjig.proto",
}

func streamHandler(srv any, stream grpc.ServerStream) error {
	return srv.(testJigServer).Stream(stream)
}
