package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/siteworks/records-api/internal/core/domain"
	"github.com/siteworks/records-api/internal/core/ports"
)

type stubAuthService struct {
	loginFn   func(ctx context.Context, username, password string) (*ports.LoginResult, error)
	resolveFn func(ctx context.Context, token string) (*domain.Identity, error)
	logoutFn  func(ctx context.Context, token string) error
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	return s.resolveFn(ctx, token)
}

func (s *stubAuthService) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}

func newAuthContext(authorization string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/progress", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestAuth_InjectsIdentity(t *testing.T) {
	want := domain.Identity{UserID: "u1", Username: "alice", Role: domain.RoleSiteEngineer}
	auth := &stubAuthService{
		resolveFn: func(_ context.Context, token string) (*domain.Identity, error) {
			if token != "good-token" {
				t.Fatalf("unexpected token %q", token)
			}
			return &want, nil
		},
	}

	called := false
	handler := Auth(auth)(func(c echo.Context) error {
		called = true
		got, ok := Identity(c)
		if !ok {
			t.Fatal("identity not injected")
		}
		if got != want {
			t.Fatalf("identity: got %+v", got)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(newAuthContext("Bearer good-token")); err != nil {
		t.Fatalf("middleware failed: %v", err)
	}
	if !called {
		t.Fatal("next handler not called")
	}
}

func TestAuth_RejectsBadTokens(t *testing.T) {
	auth := &stubAuthService{
		resolveFn: func(_ context.Context, _ string) (*domain.Identity, error) {
			return nil, domain.ErrUnauthenticated
		},
	}
	handler := Auth(auth)(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	cases := []string{
		"",
		"Bearer ",
		"Bearer",
		"Basic dXNlcjpwdw==",
		"Bearer revoked-token",
	}
	for _, header := range cases {
		if err := handler(newAuthContext(header)); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Errorf("header %q: expected ErrUnauthenticated, got %v", header, err)
		}
	}
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken(newAuthContext("Bearer abc.def.ghi"))
	if err != nil || token != "abc.def.ghi" {
		t.Fatalf("got %q, %v", token, err)
	}

	// Scheme comparison is case insensitive.
	token, err = BearerToken(newAuthContext("bearer xyz"))
	if err != nil || token != "xyz" {
		t.Fatalf("lowercase scheme: got %q, %v", token, err)
	}

	if _, err := BearerToken(newAuthContext("Token xyz")); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("wrong scheme: got %v", err)
	}
}

func TestIdentity_MissingFromContext(t *testing.T) {
	if _, ok := Identity(newAuthContext("")); ok {
		t.Fatal("identity must be absent on a bare context")
	}
}
