package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/auth"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

const goodToken = "good-token"

type fakeAuth struct {
	user     *models.User
	loginErr error
	authErr  error
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*auth.Token, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &auth.Token{AccessToken: goodToken, TokenType: "bearer", ExpiresAt: time.Unix(1700000000, 0).UTC()}, nil
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	if token != goodToken {
		return nil, common.ErrUnauthenticated
	}
	return f.user, nil
}

func startBufconn(t *testing.T, a Authenticator) *AccountClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer("bufnet", nopLogger{}, a)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})

	return NewAccountClient(conn)
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{user: &models.User{
		ID:       uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e"),
		Username: "ada",
		Email:    "ada@example.com",
		Roles:    models.Roles{models.RoleUser, models.RoleAdmin},
		IsActive: true,
	}}
}

func TestLogin(t *testing.T) {
	c := startBufconn(t, newFakeAuth())

	resp, err := c.Login(context.Background(), &LoginRequest{Email: "ada@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, goodToken, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), resp.ExpiresAt.UTC())
}

func TestLogin_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode codes.Code
		wantMsg  string
	}{
		{name: "bad credentials", err: common.ErrorUnauthorized, wantCode: codes.Unauthenticated, wantMsg: "invalid email or password"},
		{name: "storage failure", err: errors.New("db down"), wantCode: codes.Internal, wantMsg: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newFakeAuth()
			a.loginErr = tt.err
			c := startBufconn(t, a)

			_, err := c.Login(context.Background(), &LoginRequest{Email: "ada@example.com", Password: "x"})
			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, st.Code())
			assert.Equal(t, tt.wantMsg, st.Message())
		})
	}
}

func TestWhoAmI(t *testing.T) {
	c := startBufconn(t, newFakeAuth())

	for _, md := range []metadata.MD{
		metadata.Pairs("authorization", "Bearer "+goodToken),
		metadata.Pairs("access_token", goodToken),
	} {
		ctx := metadata.NewOutgoingContext(context.Background(), md)
		u, err := c.WhoAmI(ctx)
		require.NoError(t, err)
		assert.Equal(t, "0f8fad5b-d9cb-469f-a165-70867728950e", u.UserID)
		assert.Equal(t, []string{"ROLE_USER", "ROLE_ADMIN"}, u.Roles)
	}
}

func TestWhoAmI_Unauthenticated(t *testing.T) {
	c := startBufconn(t, newFakeAuth())

	for _, md := range []metadata.MD{
		nil,
		metadata.Pairs("authorization", "Bearer nope"),
		metadata.Pairs("authorization", "Basic "+goodToken),
		metadata.Pairs("access_token", "nope"),
	} {
		ctx := context.Background()
		if md != nil {
			ctx = metadata.NewOutgoingContext(ctx, md)
		}
		_, err := c.WhoAmI(ctx)
		st, _ := status.FromError(err)
		assert.Equal(t, codes.Unauthenticated, st.Code(), md)
		assert.Equal(t, "could not validate credentials", st.Message())
	}
}

func TestWhoAmI_AuthStorageFailure(t *testing.T) {
	a := newFakeAuth()
	a.authErr = errors.New("db down")
	c := startBufconn(t, a)

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+goodToken)
	_, err := c.WhoAmI(ctx)
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Internal, st.Code())
}

func TestPing_NoTokenNeeded(t *testing.T) {
	c := startBufconn(t, newFakeAuth())
	assert.NoError(t, c.Ping(context.Background()))
}

func TestInterceptor_UnprotectedPassesThrough(t *testing.T) {
	s := NewGRPCServer("", nopLogger{}, newFakeAuth())
	called := false

	resp, err := s.accessTokenInterceptor(context.Background(), nil,
		&grpc.UnaryServerInfo{FullMethod: "/pkg.Service/Other"},
		func(ctx context.Context, req any) (any, error) {
			called = true
			return "ok", nil
		})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "ok", resp)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", nopLogger{}, newFakeAuth())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", nopLogger{}, newFakeAuth())
	assert.Error(t, srv.Run(context.Background()))
}
