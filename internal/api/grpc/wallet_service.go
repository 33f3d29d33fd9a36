package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// WalletServiceName is the fully-qualified name of the wallet read service.
const WalletServiceName = "sharedwallet.v1.WalletService"

// WalletServiceServer is the read-only wallet surface. Messages are protobuf
// well-known types, so clients can call it with grpcurl or a plain Invoke.
type WalletServiceServer interface {
	ListWallets(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// GetWallet takes the wallet id.
	GetWallet(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// GetDebts takes {"wallet_id", "mode"}; mode is "simplified" (default) or "minimized".
	GetDebts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ListActivities takes {"wallet_id", "page", "page_size", "types"}.
	ListActivities(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterWalletServiceServer(s grpc.ServiceRegistrar, srv WalletServiceServer) {
	s.RegisterService(&walletServiceDesc, srv)
}

var walletServiceDesc = grpc.ServiceDesc{
	ServiceName: WalletServiceName,
	HandlerType: (*WalletServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListWallets", Handler: listWalletsHandler},
		{MethodName: "GetWallet", Handler: getWalletHandler},
		{MethodName: "GetDebts", Handler: getDebtsHandler},
		{MethodName: "ListActivities", Handler: listActivitiesHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func fullMethod(name string) string {
	return "/" + WalletServiceName + "/" + name
}

func listWalletsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WalletServiceServer).ListWallets(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("ListWallets")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WalletServiceServer).ListWallets(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getWalletHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WalletServiceServer).GetWallet(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("GetWallet")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WalletServiceServer).GetWallet(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func getDebtsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WalletServiceServer).GetDebts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("GetDebts")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WalletServiceServer).GetDebts(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listActivitiesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WalletServiceServer).ListActivities(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("ListActivities")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WalletServiceServer).ListActivities(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
