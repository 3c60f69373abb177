package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "gymdash-session||"
	sessionsSetKey   = "gymdash-sessions"

	fieldAccessToken  = "access_token"
	fieldRefreshToken = "refresh_token"
	fieldRole         = "role"
	fieldCreatedAt    = "created_at"
)

var ErrSessionNotFound = errors.New("session not found")

// CredentialStore keeps dashboard credentials in redis, one hash per
// session, expiring after ttl.
type CredentialStore struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewCredentialStore(ttl time.Duration, redisClient *redis.Client) *CredentialStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CredentialStore{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

func (s *CredentialStore) Save(ctx context.Context, creds *Credentials, createdAt time.Time) error {
	if creds.SessionID == "" {
		return errors.New("credentials without session id")
	}

	sessionKey := sessionKeyPrefix + creds.SessionID
	if err := s.redisClient.HSet(ctx, sessionKey,
		fieldAccessToken, creds.AccessToken,
		fieldRefreshToken, creds.RefreshToken,
		fieldRole, creds.Role,
		fieldCreatedAt, strconv.FormatInt(createdAt.Unix(), 10),
	).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	if err := s.redisClient.Expire(ctx, sessionKey, s.ttl).Err(); err != nil {
		return fmt.Errorf("set session ttl: %w", err)
	}

	// add session to the list of sessions
	if err := s.redisClient.SAdd(ctx, sessionsSetKey, creds.SessionID).Err(); err != nil {
		return fmt.Errorf("register session: %w", err)
	}

	return nil
}

func (s *CredentialStore) Get(ctx context.Context, sessionID string) (*Credentials, error) {
	values, err := s.redisClient.HGetAll(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if len(values) == 0 || values[fieldAccessToken] == "" {
		return nil, ErrSessionNotFound
	}

	return &Credentials{
		SessionID:    sessionID,
		AccessToken:  values[fieldAccessToken],
		RefreshToken: values[fieldRefreshToken],
		Role:         values[fieldRole],
	}, nil
}

// Delete removes the session; it returns false if there was nothing to remove.
func (s *CredentialStore) Delete(ctx context.Context, sessionID string) (bool, error) {
	deleted, err := s.redisClient.Del(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}

	// remove session from the list of sessions
	if err := s.redisClient.SRem(ctx, sessionsSetKey, sessionID).Err(); err != nil {
		return false, fmt.Errorf("unregister session: %w", err)
	}

	return deleted > 0, nil
}

// ScanAndClean drops session ids whose hash already expired from the
// sessions set.
func (s *CredentialStore) ScanAndClean(ctx context.Context) {
	sessionIDs, err := s.redisClient.SMembers(ctx, sessionsSetKey).Result()
	if err != nil {
		log.Errorf("credential store, scan and clean, get sessions: %s", err)
		return
	}

	if len(sessionIDs) == 0 {
		log.Debugln("credential store, scan and clean abort, no sessions")
		return
	}

	log.Debugf("credential store, scan and clean [%d sessions] start ...", len(sessionIDs))
	for _, sessionID := range sessionIDs {
		exists, err := s.redisClient.Exists(ctx, sessionKeyPrefix+sessionID).Result()
		if err != nil {
			log.Errorf("credential store, scan and clean session %s: %s", sessionID, err)
			continue
		}
		if exists > 0 {
			continue
		}

		log.Debugf("credential store, will clean expired session: %s", sessionID)
		if err := s.redisClient.SRem(ctx, sessionsSetKey, sessionID).Err(); err != nil {
			log.Errorf("credential store, clean session %s: %s", sessionID, err)
		}
	}
}
