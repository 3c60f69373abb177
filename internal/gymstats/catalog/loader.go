package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/2beens/gymdash/internal/gymapi"
	"github.com/2beens/gymdash/internal/telemetry/metrics"
	"github.com/2beens/gymdash/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	megabyte       = 1024 * 1024
	cacheKey       = "catalog::all"
	tokenKeyPrefix = "catalog::token::"

	DefaultCacheTTL = time.Minute
)

//go:generate mockgen -source=$GOFILE -destination=loader_mocks_test.go -package=catalog_test

type catalogAPI interface {
	CatalogBytes(ctx context.Context, token string) ([]byte, error)
	GetDefinition(ctx context.Context, token string, id gymapi.ID) (*gymapi.ExerciseDefinition, error)
	CreateDefinition(ctx context.Context, token string, in gymapi.DefinitionInput) (*gymapi.ExerciseDefinition, error)
	UpdateDefinition(ctx context.Context, token string, id gymapi.ID, in gymapi.DefinitionInput) (*gymapi.ExerciseDefinition, error)
	DeleteDefinition(ctx context.Context, token string, id gymapi.ID) error
}

// Loader serves the exercise catalog, keeping the raw remote answer in an
// in-memory cache. The catalog is the same for every user, so one cache
// entry serves all of them, but only to tokens the remote API accepted
// within the cache TTL.
type Loader struct {
	api     catalogAPI
	cache   *freecache.Cache
	ttl     time.Duration
	metrics *metrics.Manager
}

func NewLoader(api catalogAPI, cacheSizeMB int, ttl time.Duration, metricsManager *metrics.Manager) *Loader {
	if cacheSizeMB <= 0 {
		cacheSizeMB = 1
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Loader{
		api:     api,
		cache:   freecache.NewCache(cacheSizeMB * megabyte),
		ttl:     ttl,
		metrics: metricsManager,
	}
}

// Load returns the catalog. forceRefresh skips the cached copy and replaces it.
func (l *Loader) Load(ctx context.Context, token string, forceRefresh bool) (c *Catalog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "catalogLoader.load")
	span.SetAttributes(attribute.Bool("catalog.force_refresh", forceRefresh))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !forceRefresh && l.accepted(token) {
		c, err := l.cachedCatalog()
		if err == nil {
			l.count("hit")
			span.SetAttributes(attribute.Bool("catalog.cache_hit", true))
			return c, nil
		}
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Errorf("catalog loader: parse cached catalog: %s", err)
		}
	}
	l.count("miss")

	respBytes, err := l.api.CatalogBytes(ctx, token)
	if err != nil {
		return nil, err
	}
	l.accept(token)

	c, err = Parse(respBytes)
	if err != nil {
		return nil, err
	}

	if err := l.cache.Set([]byte(cacheKey), respBytes, int(l.ttl.Seconds())); err != nil {
		log.Errorf("catalog loader: write cache: %s", err)
	} else {
		log.Debugf("catalog loader: cached %d definitions", c.Len())
	}

	return c, nil
}

func (l *Loader) Invalidate() {
	l.cache.Del([]byte(cacheKey))
}

// Get looks id up in the cached catalog when token was recently accepted,
// and asks the remote API otherwise.
func (l *Loader) Get(ctx context.Context, token string, id gymapi.ID) (*gymapi.ExerciseDefinition, error) {
	if l.accepted(token) {
		if c, err := l.cachedCatalog(); err == nil {
			if def, ok := c.Lookup(id); ok {
				return &def, nil
			}
		}
	}

	def, err := l.api.GetDefinition(ctx, token, id)
	if err != nil {
		return nil, err
	}
	l.accept(token)
	return def, nil
}

func (l *Loader) Create(ctx context.Context, token string, in gymapi.DefinitionInput) (*gymapi.ExerciseDefinition, error) {
	def, err := l.api.CreateDefinition(ctx, token, in)
	if err != nil {
		return nil, err
	}
	l.Invalidate()
	return def, nil
}

func (l *Loader) Update(ctx context.Context, token string, id gymapi.ID, in gymapi.DefinitionInput) (*gymapi.ExerciseDefinition, error) {
	def, err := l.api.UpdateDefinition(ctx, token, id, in)
	if err != nil {
		return nil, err
	}
	l.Invalidate()
	return def, nil
}

func (l *Loader) Delete(ctx context.Context, token string, id gymapi.ID) error {
	if err := l.api.DeleteDefinition(ctx, token, id); err != nil {
		return err
	}
	l.Invalidate()
	return nil
}

func (l *Loader) cachedCatalog() (*Catalog, error) {
	cachedBytes, err := l.cache.Get([]byte(cacheKey))
	if err != nil {
		return nil, err
	}
	return Parse(cachedBytes)
}

func (l *Loader) accepted(token string) bool {
	_, err := l.cache.Get(tokenKey(token))
	return err == nil
}

func (l *Loader) accept(token string) {
	if err := l.cache.Set(tokenKey(token), []byte{1}, int(l.ttl.Seconds())); err != nil {
		log.Errorf("catalog loader: remember token: %s", err)
	}
}

func tokenKey(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return []byte(tokenKeyPrefix + hex.EncodeToString(sum[:]))
}

func (l *Loader) count(result string) {
	if l.metrics == nil {
		return
	}
	l.metrics.CounterCatalogCache.WithLabelValues(result).Inc()
}
