package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymdash/internal/gymapi"
	"github.com/2beens/gymdash/internal/telemetry/tracing"
	"github.com/2beens/gymdash/pkg"

	log "github.com/sirupsen/logrus"
)

const sessionIDLength = 35

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrNoTokenIssued      = errors.New("login response carries no token")
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=auth_test

type gymAuthAPI interface {
	Login(ctx context.Context, username, password string) (*gymapi.TokenPair, error)
	ProbeAdmin(ctx context.Context, token string) (bool, error)
}

type credentialStore interface {
	Save(ctx context.Context, creds *Credentials, createdAt time.Time) error
	Get(ctx context.Context, sessionID string) (*Credentials, error)
	Delete(ctx context.Context, sessionID string) (bool, error)
}

// Service logs dashboard users in against the remote gym API and keeps
// their credentials.
type Service struct {
	api   gymAuthAPI
	store credentialStore
	// ability to inject random string generator func for session ids (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewService(api gymAuthAPI, store credentialStore) *Service {
	return &Service{
		api:            api,
		store:          store,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func (s *Service) Login(ctx context.Context, username, password string, createdAt time.Time) (creds *Credentials, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	tokens, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("remote login: %w", err)
	}

	token := tokens.AccessToken
	if token == "" {
		token = tokens.RefreshToken
	}
	if token == "" {
		return nil, ErrNoTokenIssued
	}

	role := RoleUser
	isAdmin, err := s.api.ProbeAdmin(ctx, token)
	if err != nil {
		log.Warnf("auth service, admin probe for %s: %s", username, err)
	} else if isAdmin {
		role = RoleAdmin
	}

	sessionID, err := s.RandStringFunc(sessionIDLength)
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	creds = &Credentials{
		SessionID:    sessionID,
		AccessToken:  token,
		RefreshToken: tokens.RefreshToken,
		Role:         role,
	}
	if err := s.store.Save(ctx, creds, createdAt); err != nil {
		return nil, err
	}

	log.Debugf("auth service, user %s logged in, role hint: %s", username, role)
	return creds, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, ErrSessionNotFound
	}
	return s.store.Delete(ctx, sessionID)
}

// Resolve returns the credentials stored under sessionID.
func (s *Service) Resolve(ctx context.Context, sessionID string) (*Credentials, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	return s.store.Get(ctx, sessionID)
}
