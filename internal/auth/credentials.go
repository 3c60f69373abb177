package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Credentials of a dashboard user. AccessToken is the remote gym API bearer
// token. Role is a display hint only, never used for authorization.
type Credentials struct {
	SessionID    string
	AccessToken  string
	RefreshToken string
	Role         string
}

// Key identifies the dashboard session these credentials belong to. Bearer
// only callers have no session id, so the token digest stands in for it.
func (c *Credentials) Key() string {
	if c.SessionID != "" {
		return "session:" + c.SessionID
	}
	sum := sha256.Sum256([]byte(c.AccessToken))
	return "token:" + hex.EncodeToString(sum[:])
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(authHeader string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

type credentialsCtxKey struct{}

func NewContext(ctx context.Context, creds *Credentials) context.Context {
	return context.WithValue(ctx, credentialsCtxKey{}, creds)
}

func FromContext(ctx context.Context) (*Credentials, bool) {
	creds, ok := ctx.Value(credentialsCtxKey{}).(*Credentials)
	return creds, ok && creds != nil
}
