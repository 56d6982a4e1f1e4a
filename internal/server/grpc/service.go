package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	ServiceName = "userkeeper.v1.AccountService"

	LoginMethod  = "/" + ServiceName + "/Login"
	WhoAmIMethod = "/" + ServiceName + "/WhoAmI"
	PingMethod   = "/" + ServiceName + "/Ping"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type UserReply struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Surname  string   `json:"surname"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	IsActive bool     `json:"is_active"`
}

// AccountServer is implemented by GRPCServer.
type AccountServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	WhoAmI(context.Context, *emptypb.Empty) (*UserReply, error)
	Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

func unaryHandler[Req, Resp any](method string, call func(AccountServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AccountServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AccountServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var accountServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: unaryHandler(LoginMethod, AccountServer.Login)},
		{MethodName: "WhoAmI", Handler: unaryHandler(WhoAmIMethod, AccountServer.WhoAmI)},
		{MethodName: "Ping", Handler: unaryHandler(PingMethod, AccountServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "userkeeper/v1/account.proto",
}

func RegisterAccountServer(s grpc.ServiceRegistrar, srv AccountServer) {
	s.RegisterService(&accountServiceDesc, srv)
}

// AccountClient calls AccountService over the json codec.
type AccountClient struct {
	cc grpc.ClientConnInterface
}

func NewAccountClient(cc grpc.ClientConnInterface) *AccountClient {
	return &AccountClient{cc: cc}
}

func (c *AccountClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	out := new(LoginResponse)
	if err := c.cc.Invoke(ctx, LoginMethod, in, out, c.opts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountClient) WhoAmI(ctx context.Context, opts ...grpc.CallOption) (*UserReply, error) {
	out := new(UserReply)
	if err := c.cc.Invoke(ctx, WhoAmIMethod, &emptypb.Empty{}, out, c.opts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountClient) Ping(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, PingMethod, &emptypb.Empty{}, &emptypb.Empty{}, c.opts(opts)...)
}

func (c *AccountClient) opts(extra []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, extra...)
}
