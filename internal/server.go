package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/gymdash/internal/auth"
	"github.com/2beens/gymdash/internal/config"
	"github.com/2beens/gymdash/internal/gymapi"
	"github.com/2beens/gymdash/internal/gymstats"
	"github.com/2beens/gymdash/internal/gymstats/catalog"
	"github.com/2beens/gymdash/internal/gymstats/dashboard"
	"github.com/2beens/gymdash/internal/gymstats/enrich"
	"github.com/2beens/gymdash/internal/gymstats/sets"
	"github.com/2beens/gymdash/internal/middleware"
	"github.com/2beens/gymdash/internal/misc"
	"github.com/2beens/gymdash/internal/telemetry/metrics"
	"github.com/2beens/gymdash/internal/telemetry/tracing"
	"github.com/2beens/gymdash/internal/users"
)

const dashboardSweepInterval = 10 * time.Minute

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config           *config.Config
	gymClient        *gymapi.Client
	catalogLoader    *catalog.Loader
	dashboardService *dashboard.Service

	redisClient     *redis.Client
	credentialStore *auth.CredentialStore
	authService     *auth.Service
	rateLimiter     middleware.RequestRateLimiter

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("gymdash", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})
	if params.HoneycombTracingEnabled {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "gymdash")
	if err != nil {
		return nil, fmt.Errorf("honeycomb setup: %w", err)
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   params.Config.GymApiTimeout(),
	}

	s := newServer(params.Config, params.VersionInfo, gymapi.NewClient(params.Config.GymApiBaseURL, tracedHttpClient), rdb, metricsManager)
	s.promRegistry = promRegistry
	s.otelShutdown = otelShutdown

	go func() {
		ticker := time.NewTicker(time.Hour * 8)
		defer ticker.Stop()
		sessionsTicker := time.NewTicker(dashboardSweepInterval)
		defer sessionsTicker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.credentialStore.ScanAndClean(ctx)
			case <-sessionsTicker.C:
				s.dashboardService.EvictIdle(params.Config.DashboardIdleTTL())
			}
		}
	}()

	return s, nil
}

// newServer wires the services on top of the remote API client and redis.
func newServer(
	cfg *config.Config,
	versionInfo string,
	gymClient *gymapi.Client,
	rdb *redis.Client,
	metricsManager *metrics.Manager,
) *Server {
	credentialStore := auth.NewCredentialStore(cfg.SessionTTL(), rdb)
	catalogLoader := catalog.NewLoader(gymClient, cfg.CatalogCacheSizeMB, cfg.CatalogCacheTTL(), metricsManager)
	setsFetcher := sets.NewFetcher(gymClient, metricsManager)
	enricher := enrich.NewEnricher(setsFetcher, gymClient, cfg.EnrichConcurrency, metricsManager)

	return &Server{
		config:      cfg,
		versionInfo: versionInfo,

		gymClient:     gymClient,
		catalogLoader: catalogLoader,
		dashboardService: dashboard.NewService(
			gymClient,
			catalogLoader,
			enricher,
			setsFetcher,
			dashboard.NewSessionStore(),
			metricsManager,
		),

		redisClient:     rdb,
		credentialStore: credentialStore,
		authService:     auth.NewService(gymClient, credentialStore),
		rateLimiter:     redis_rate.NewLimiter(rdb),

		metricsManager: metricsManager,
		otelShutdown:   func() {},
	}
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("gymdash-router"))

	miscHandler := misc.NewHandler(s.versionInfo, s.authService, s.dashboardService)
	miscHandler.SetupRoutes(r, s.rateLimiter, s.metricsManager, s.config.LoginRateLimitMin)

	gymstatsHandler := gymstats.NewHandler(s.dashboardService)
	r.HandleFunc("/gymstats/exercises", gymstatsHandler.HandleLoad).Methods("GET", "OPTIONS").Name("load-exercises")
	r.HandleFunc("/gymstats/exercises/current", gymstatsHandler.HandleCurrent).Methods("GET", "OPTIONS").Name("current-exercises")
	r.HandleFunc("/gymstats/stats", gymstatsHandler.HandleStats).Methods("GET", "OPTIONS").Name("exercises-stats")
	r.HandleFunc("/gymstats/exercises", gymstatsHandler.HandleAdd).Methods("POST").Name("new-exercise")
	r.HandleFunc("/gymstats/exercises/{id}/sets", gymstatsHandler.HandleGetSets).Methods("GET", "OPTIONS").Name("get-sets")
	r.HandleFunc("/gymstats/exercises/{id}/sets", gymstatsHandler.HandleAddSets).Methods("POST").Name("new-sets")
	r.HandleFunc("/gymstats/exercises/{id}", gymstatsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-exercise")
	r.HandleFunc("/gymstats/sets/{id}", gymstatsHandler.HandleDeleteSet).Methods("DELETE", "OPTIONS").Name("delete-set")

	catalogHandler := catalog.NewHandler(s.catalogLoader)
	r.HandleFunc("/catalog", catalogHandler.HandleList).Methods("GET", "OPTIONS").Name("list-catalog")
	r.HandleFunc("/catalog", catalogHandler.HandleAdd).Methods("POST").Name("new-definition")
	r.HandleFunc("/catalog/{id}", catalogHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-definition")
	r.HandleFunc("/catalog/{id}", catalogHandler.HandleUpdate).Methods("PUT").Name("update-definition")
	r.HandleFunc("/catalog/{id}", catalogHandler.HandleDelete).Methods("DELETE").Name("delete-definition")

	usersHandler := users.NewHandler(s.gymClient)
	r.HandleFunc("/users", usersHandler.HandleList).Methods("GET", "OPTIONS").Name("list-users")
	r.HandleFunc("/users", usersHandler.HandleAdd).Methods("POST").Name("new-user")
	r.HandleFunc("/users/{id}", usersHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-user")
	r.HandleFunc("/users/{id}", usersHandler.HandleUpdate).Methods("PUT").Name("update-user")
	r.HandleFunc("/users/{id}", usersHandler.HandleDelete).Methods("DELETE").Name("delete-user")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.authService)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}
}
