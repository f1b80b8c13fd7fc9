package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/coocood/freecache"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/arisefit/hunterhub/internal/ai"
	"github.com/arisefit/hunterhub/internal/auth"
	"github.com/arisefit/hunterhub/internal/avatars"
	"github.com/arisefit/hunterhub/internal/character"
	"github.com/arisefit/hunterhub/internal/chat"
	"github.com/arisefit/hunterhub/internal/config"
	"github.com/arisefit/hunterhub/internal/db"
	"github.com/arisefit/hunterhub/internal/gates"
	"github.com/arisefit/hunterhub/internal/leaderboard"
	"github.com/arisefit/hunterhub/internal/middleware"
	"github.com/arisefit/hunterhub/internal/plans"
	"github.com/arisefit/hunterhub/internal/quests"
	"github.com/arisefit/hunterhub/internal/telemetry/metrics"
	"github.com/arisefit/hunterhub/internal/telemetry/tracing"
	"github.com/arisefit/hunterhub/internal/wearables"
	"github.com/arisefit/hunterhub/pkg"
)

const leaderboardCacheSize = 10 * 1024 * 1024 // 10 MB

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config *config.Config
	dbPool *pgxpool.Pool

	questsCatalog *quests.Catalog
	avatarsApi    *avatars.DiskApi

	characterService *character.Service
	chatService      *chat.Service
	plansService     *plans.Service
	gatesService     *gates.Service
	wearablesService *wearables.Service

	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	AiAPIKey                string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("hunterhub", "backend", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "hunterhub-backend", rdb)
	if err != nil {
		return nil, err
	}

	questsFile, err := os.Open(params.Config.QuestsPath)
	if err != nil {
		return nil, fmt.Errorf("open quests file: %w", err)
	}
	defer func() {
		if err := questsFile.Close(); err != nil {
			log.Warnf("close quests file: %s", err)
		}
	}()
	questsCatalog, err := quests.NewCatalog(questsFile)
	if err != nil {
		return nil, fmt.Errorf("load quests catalog: %w", err)
	}

	avatarsApi, err := avatars.NewDiskApi(params.Config.AvatarsRootPath)
	if err != nil {
		return nil, fmt.Errorf("new avatars disk api: %w", err)
	}

	chatService := chat.NewService(
		chat.NewRepo(dbPool),
		ai.NewClient(params.Config.AiBaseURL, params.AiAPIKey),
		ai.NewFallbackGenerator(),
	)

	characterService := character.NewService(
		character.NewRepo(dbPool, rdb),
		questsCatalog,
		params.Config.MaxEquippedShadows,
		func(levelUp character.LevelUp) {
			log.Infof("hunter %s reached level %d", levelUp.CharacterID, levelUp.NewLevel)
			for _, unlock := range levelUp.Rewards.UnlockMessages {
				if _, err := chatService.Announce(context.Background(), unlock); err != nil {
					log.Errorf("announce unlock %q: %s", unlock, err)
				}
			}
		},
	)

	authService := auth.NewService(
		auth.NewAccountsRepo(dbPool),
		auth.CharacterStoreFuncs{
			CreateDefaultFunc: func(ctx context.Context, id, hunterName string) error {
				_, err := characterService.CreateDefault(ctx, id, hunterName)
				return err
			},
			DeleteFunc: characterService.Delete,
		},
		rdb,
		auth.DefaultTTL,
	)

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		versionInfo: params.VersionInfo,

		questsCatalog: questsCatalog,
		avatarsApi:    avatarsApi,

		characterService: characterService,
		chatService:      chatService,
		plansService: plans.NewService(
			plans.NewRepo(dbPool),
			ai.NewClient(params.Config.AiBaseURL, params.AiAPIKey),
		),
		gatesService:     gates.NewService(gates.NewRepo(dbPool), characterService),
		wearablesService: wearables.NewService(rdb, characterService),

		redisClient:  rdb,
		authService:  authService,
		loginChecker: auth.NewLoginChecker(rdb),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("hunterhub-router"))

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)

	authRouter := r.PathPrefix("/a").Subrouter()
	authRouter.Use(middleware.RateLimit(
		reqRateLimiter,
		"auth",
		s.config.LoginRateLimitAllowedPerMin,
		s.metricsManager,
	))
	auth.NewHandler(authRouter, s.authService)

	character.NewHandler(
		r.PathPrefix("/hunter").Subrouter(),
		s.characterService,
		s.questsCatalog,
		s.metricsManager,
	)

	gates.NewHandler(
		r.PathPrefix("/gates").Subrouter(),
		s.gatesService,
		s.metricsManager,
	)

	chat.NewHandler(
		r.PathPrefix("/chat").Subrouter(),
		s.chatService,
		s.characterService,
		s.metricsManager,
	)

	plans.NewHandler(
		r.PathPrefix("/plans").Subrouter(),
		s.plansService,
		s.characterService,
	)

	wearables.NewHandler(
		r.PathPrefix("/wearables").Subrouter(),
		s.wearablesService,
	)

	leaderboard.NewHandler(
		r.PathPrefix("/leaderboard").Subrouter(),
		leaderboard.NewRepo(s.dbPool),
		s.config.LeaderboardSize,
		freecache.NewCache(leaderboardCacheSize),
	)

	avatars.NewHandler(
		r.PathPrefix("/avatars").Subrouter(),
		s.avatarsApi,
	)

	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, strings.TrimSpace(s.versionInfo))
	}).Methods("GET").Name("version")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
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
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
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

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.characterService != nil {
		s.characterService.Close()
	}

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

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
