package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/gymdash/internal/auth"
	"github.com/2beens/gymdash/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

// SessionHeader carries the gymdash session id issued at login.
const SessionHeader = "X-GYMDASH-SESSION"

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=middleware_test

type credentialsResolver interface {
	Resolve(ctx context.Context, sessionID string) (*auth.Credentials, error)
}

type AuthMiddlewareHandler struct {
	resolver     credentialsResolver
	allowedPaths map[string]bool
}

func NewAuthMiddlewareHandler(resolver credentialsResolver) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		resolver: resolver,
		allowedPaths: map[string]bool{
			"/":        true,
			"/version": true,
			"/a/login": true,
		},
	}
}

// AuthCheck puts the caller's credentials into the request context. They
// come either from a stored session (SessionHeader) or directly from an
// "Authorization: Bearer" remote API token. The remote API stays the only
// place where access is actually decided.
func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			creds, err := h.credentials(ctx, r)
			if err != nil {
				log.Tracef("[auth middleware] unauthorized => %s: %s", r.URL.Path, err)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "unauthorized")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), creds)))
		})
	}
}

var errNoCredentials = errors.New("no credentials")

func (h *AuthMiddlewareHandler) credentials(ctx context.Context, r *http.Request) (*auth.Credentials, error) {
	if sessionID := r.Header.Get(SessionHeader); sessionID != "" {
		creds, err := h.resolver.Resolve(ctx, sessionID)
		if err != nil {
			if !errors.Is(err, auth.ErrSessionNotFound) {
				log.Errorf("[auth middleware] resolve session: %s", err)
			}
			return nil, err
		}
		return creds, nil
	}

	if token := auth.BearerToken(r.Header.Get("Authorization")); token != "" {
		return &auth.Credentials{AccessToken: token}, nil
	}

	return nil, errNoCredentials
}
