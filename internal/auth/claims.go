package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// DecodeClaims reads the payload segment of a JWT without verifying its
// signature. The remote API is the only party that verifies tokens.
func DecodeClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token claims: %w", err)
	}
	return claims, nil
}

// RoleHint guesses the role of the user for display purposes: the stored
// role wins, then the token claims role, user_role and is_admin.
// Anything undeterminable is a plain user.
func RoleHint(creds *Credentials) string {
	if creds == nil {
		return RoleUser
	}
	if role := strings.ToLower(strings.TrimSpace(creds.Role)); role != "" {
		return normalizeRole(role)
	}

	claims, err := DecodeClaims(creds.AccessToken)
	if err != nil {
		return RoleUser
	}

	for _, claim := range []string{"role", "user_role"} {
		if role, ok := claims[claim].(string); ok && strings.EqualFold(role, RoleAdmin) {
			return RoleAdmin
		}
	}
	if isAdmin, ok := claims["is_admin"]; ok && truthy(isAdmin) {
		return RoleAdmin
	}

	return RoleUser
}

func IsAdminHint(creds *Credentials) bool {
	return RoleHint(creds) == RoleAdmin
}

func normalizeRole(role string) string {
	if role == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != "" && val != "0" && !strings.EqualFold(val, "false")
	case nil:
		return false
	}
	return true
}
