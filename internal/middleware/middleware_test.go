package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/debtplan/internal/auth"
	"github.com/mmynk/debtplan/internal/metrics"
	"github.com/mmynk/debtplan/internal/models"
	"github.com/mmynk/debtplan/pkg/api"
	"github.com/mmynk/debtplan/pkg/api/apiconnect"
)

// echoAuthService reports the identity found in the request context.
type echoAuthService struct{}

func (echoAuthService) Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return connect.NewResponse(&api.RegisterResponse{Token: "public"}), nil
}

func (echoAuthService) Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
}

func (echoAuthService) GetCurrentUser(ctx context.Context, _ *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return connect.NewResponse(&api.GetCurrentUserResponse{
		User: &api.User{ID: GetUserID(ctx), Email: GetEmail(ctx)},
	}), nil
}

func setupTestServer(t *testing.T, jwtManager *auth.JWTManager, m *metrics.Metrics, logs *bytes.Buffer) apiconnect.AuthServiceClient {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(logs, nil))
	path, handler := apiconnect.NewAuthServiceHandler(echoAuthService{},
		connect.WithInterceptors(
			MetricsInterceptor(m),
			LoggingInterceptor(logger),
			RequireAuth(jwtManager, apiconnect.AuthServiceRegisterProcedure, apiconnect.AuthServiceLoginProcedure),
		),
	)
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL)
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	m := metrics.New()
	var logs bytes.Buffer
	client := setupTestServer(t, jwtManager, m, &logs)
	ctx := context.Background()

	token, err := jwtManager.Generate(&models.User{ID: "user-1", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	t.Run("public procedure needs no token", func(t *testing.T) {
		resp, err := client.Register(ctx, connect.NewRequest(&api.RegisterRequest{Email: "x@example.com"}))
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if resp.Msg.Token != "public" {
			t.Errorf("Token = %q", resp.Msg.Token)
		}
	})

	tests := []struct {
		name     string
		header   string
		wantCode connect.Code
	}{
		{"missing header", "", connect.CodeUnauthenticated},
		{"wrong scheme", "Basic " + token, connect.CodeUnauthenticated},
		{"bad token", "Bearer nope", connect.CodeUnauthenticated},
		{"valid token", "Bearer " + token, 0},
		{"lowercase scheme", "bearer " + token, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := connect.NewRequest(&api.GetCurrentUserRequest{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}
			resp, err := client.GetCurrentUser(ctx, req)
			if tt.wantCode != 0 {
				if connect.CodeOf(err) != tt.wantCode {
					t.Fatalf("code = %v, want %v (err %v)", connect.CodeOf(err), tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetCurrentUser failed: %v", err)
			}
			if resp.Msg.User.ID != "user-1" || resp.Msg.User.Email != "ana@example.com" {
				t.Errorf("identity = %+v", resp.Msg.User)
			}
		})
	}

	procedure := apiconnect.AuthServiceGetCurrentUserProcedure
	if got := testutil.ToFloat64(m.RPCRequests.WithLabelValues(procedure, "ok")); got != 2 {
		t.Errorf("ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RPCRequests.WithLabelValues(procedure, connect.CodeUnauthenticated.String())); got != 3 {
		t.Errorf("unauthenticated count = %v, want 3", got)
	}
}

func TestLoggingInterceptorLevels(t *testing.T) {
	var logs bytes.Buffer
	client := setupTestServer(t, auth.NewJWTManager("secret", time.Hour), metrics.New(), &logs)

	_, err := client.Login(context.Background(), connect.NewRequest(&api.LoginRequest{Email: "a@b.c", Password: "x"}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("Login code = %v", connect.CodeOf(err))
	}

	out := logs.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "procedure="+apiconnect.AuthServiceLoginProcedure) {
		t.Errorf("expected a WARN line for the rejected login, got:\n%s", out)
	}
	if strings.Contains(out, "level=ERROR") {
		t.Errorf("client errors must not log at ERROR:\n%s", out)
	}
}
