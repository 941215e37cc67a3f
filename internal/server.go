package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/gymsessions/internal/config"
	"github.com/2beens/gymsessions/internal/db"
	"github.com/2beens/gymsessions/internal/docstore"
	"github.com/2beens/gymsessions/internal/docstore/pgstore"
	"github.com/2beens/gymsessions/internal/docstore/redisstore"
	"github.com/2beens/gymsessions/internal/docstore/sqlitestore"
	"github.com/2beens/gymsessions/internal/middleware"
	"github.com/2beens/gymsessions/internal/sessions"
	"github.com/2beens/gymsessions/internal/syncer"
	"github.com/2beens/gymsessions/internal/telemetry/metrics"
	"github.com/2beens/gymsessions/internal/telemetry/tracing"
	"github.com/2beens/gymsessions/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	sqliteStore *sqlitestore.Store

	docs         docstore.Store
	store        *sessions.Store
	synchronizer *syncer.Synchronizer

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
	cfg := params.Config
	s := &Server{
		config:      cfg,
		versionInfo: params.VersionInfo,
	}

	if cfg.RedisHost != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})

		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			if cfg.StoreBackend == config.StoreBackendRedis {
				_ = rdb.Close()
				return nil, fmt.Errorf("ping redis: %w", err)
			}
			// redis is optional for the other backends, it only backs rate limiting
			log.Errorf("--> failed to ping redis, rate limiting disabled: %s", err)
			_ = rdb.Close()
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
			s.redisClient = rdb
		}
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "gym-sessions", s.redisClient)
	if err != nil {
		s.closeStores()
		return nil, err
	}
	s.otelShutdown = otelShutdown

	var extraCollectors []prometheus.Collector
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		s.docs = docstore.NewMemoryStore()
	case config.StoreBackendRedis:
		if s.redisClient == nil {
			s.shutdownPartial()
			return nil, errors.New("redis store backend without redis client")
		}
		s.docs = redisstore.NewStore(s.redisClient, cfg.RedisKeyPrefix)
	case config.StoreBackendPostgres:
		dbParams := db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			TracingEnabled: params.HoneycombTracingEnabled,
		}
		if err := pgstore.RunMigrations(db.ConnString(dbParams)); err != nil {
			s.shutdownPartial()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		dbPool, err := db.NewDBPool(ctx, dbParams)
		if err != nil {
			s.shutdownPartial()
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		s.dbPool = dbPool
		s.docs = pgstore.NewStore(dbPool)
		extraCollectors = append(extraCollectors, pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
	case config.StoreBackendSQLite:
		sqliteStore, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			s.shutdownPartial()
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		s.sqliteStore = sqliteStore
		s.docs = sqliteStore
	default:
		s.shutdownPartial()
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
	log.Debugf("using [%s] document store", cfg.StoreBackend)

	s.promRegistry = metrics.SetupPrometheus(extraCollectors...)
	s.metricsManager = metrics.NewManager("backend", "gym_sessions", s.promRegistry)
	s.metricsManager.GaugeLifeSignal.Set(0) // set to 1 once serving

	s.synchronizer = syncer.New(s.docs, s.metricsManager)
	s.synchronizer.WriteTimeout = time.Duration(cfg.StoreWriteTimeoutMs) * time.Millisecond
	s.store = sessions.NewStore(s.synchronizer)

	hydrateCtx, hydrateCancel := context.WithTimeout(ctx, time.Duration(cfg.HydrationTimeoutMs)*time.Millisecond)
	defer hydrateCancel()
	s.synchronizer.Hydrate(hydrateCtx, s.store)

	return s, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("gym-sessions-router"))

	sessionsHandler := sessions.NewHandler(s.store)
	sessionsHandler.SetupRoutes(r)

	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET").Name("version")
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteJSONResponseOK(w, `{"status":"ok"}`)
	}).Methods("GET").Name("health")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.CorsAllowedOrigins))
	if s.redisClient != nil && s.config.RateLimitPerMinute > 0 {
		r.Use(middleware.RateLimit(
			redis_rate.NewLimiter(s.redisClient),
			s.metricsManager,
			s.config.RedisKeyPrefix+":requests",
			s.config.RateLimitPerMinute,
		))
	} else {
		log.Debugln("request rate limiting disabled")
	}
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
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

// GracefulShutdown stops taking requests, then gives the pending session
// writes up to the shutdown timeout to reach the document store before the
// stores are closed.
func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	ctx, timeoutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	flushCtx, flushCancel := context.WithTimeout(
		context.Background(),
		time.Duration(s.config.ShutdownTimeoutMs)*time.Millisecond,
	)
	defer flushCancel()
	if err := s.synchronizer.Close(flushCtx); err != nil {
		log.Errorf("synchronizer close, pending writes lost: %s", err)
	} else {
		log.Debugln("synchronizer flushed and closed")
	}

	s.shutdownPartial()

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}
}

func (s *Server) shutdownPartial() {
	if s.otelShutdown != nil {
		s.otelShutdown()
		log.Trace("otel shut down ...")
	}
	s.closeStores()
}

func (s *Server) closeStores() {
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if s.sqliteStore != nil {
		if err := s.sqliteStore.Close(); err != nil {
			log.Errorf("failed to close sqlite store: %s", err)
		}
	}
}
