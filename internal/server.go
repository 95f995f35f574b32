package internal

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/multierr"

	"github.com/tarofit/fitcoach/internal/auth"
	"github.com/tarofit/fitcoach/internal/coach"
	"github.com/tarofit/fitcoach/internal/config"
	"github.com/tarofit/fitcoach/internal/debugframes"
	"github.com/tarofit/fitcoach/internal/middleware"
	"github.com/tarofit/fitcoach/internal/misc"
	"github.com/tarofit/fitcoach/internal/motivation"
	"github.com/tarofit/fitcoach/internal/pose"
	"github.com/tarofit/fitcoach/internal/sessions"
	"github.com/tarofit/fitcoach/internal/telemetry/metrics"
	"github.com/tarofit/fitcoach/internal/telemetry/tracing"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	appSecret         string // shared with the mobile app, checked on /workout requests
	versionInfo       string

	config            *config.Config
	poseClient        *pose.Client
	sessionsStore     *sessions.Store
	tuningBox         *coach.TuningBox
	frameStore        *debugframes.Store
	motivationManager *motivation.Manager

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
	AppSecret               string
	VersionInfo             string
	AdminUsername           string
	AdminPasswordHash       string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("fitcoach", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, strconv.Itoa(params.Config.RedisPort)),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewAuthService(&auth.Admin{
		Username:     params.AdminUsername,
		PasswordHash: params.AdminPasswordHash,
	}, auth.DefaultTTL, rdb)
	go func() {
		for range time.Tick(time.Hour * 8) {
			authService.ScanAndClean(ctx)
		}
	}()

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fitcoach-backend")
	if err != nil {
		return nil, err
	}

	poseClient := pose.NewClient(params.Config.PoseDetectorURL, params.Config.GetPoseDetectorTimeout())
	if err := poseClient.Ping(ctx); err != nil {
		log.Errorf("--> failed to ping pose detector at %s: %s", params.Config.PoseDetectorURL, err)
	}

	tuningBox := coach.NewTuningBox(params.Config.Tuning)
	sessionsStore := sessions.NewStore(params.Config.GetSessionTTL(), tuningBox.Current)
	go sessionsStore.RunCleanup(ctx, time.Minute)

	frameStore, err := debugframes.NewStore(params.Config.DebugFramesPath)
	if err != nil {
		return nil, fmt.Errorf("new debug frames store: %w", err)
	}
	if frameStore.Enabled() {
		log.Debugf("debug frames stored in: %s", params.Config.DebugFramesPath)
	}

	s := &Server{
		config:      params.Config,
		appSecret:   params.AppSecret,
		versionInfo: params.VersionInfo,

		poseClient:    poseClient,
		sessionsStore: sessionsStore,
		tuningBox:     tuningBox,
		frameStore:    frameStore,

		redisClient:  rdb,
		authService:  authService,
		loginChecker: auth.NewLoginChecker(auth.DefaultTTL, rdb),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	if params.Config.MotivationCSVPath == "" {
		s.motivationManager = motivation.NewManager()
	} else {
		motivationCsvFile, err := os.Open(params.Config.MotivationCSVPath)
		if err != nil {
			return nil, fmt.Errorf("open motivation messages file: %w", err)
		}
		defer func() {
			if err := motivationCsvFile.Close(); err != nil {
				log.Warnf("close motivation csv file: %s", err)
			}
		}()

		s.motivationManager, err = motivation.NewManagerFromCSV(csv.NewReader(motivationCsvFile))
		if err != nil {
			return nil, fmt.Errorf("failed to create motivation manager: %s", err)
		}
	}

	return s, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)

	coachHandler := coach.NewHandler(coach.NewHandlerParams{
		Detector:        s.poseClient,
		Store:           s.sessionsStore,
		Motivator:       s.motivationManager,
		Frames:          s.frameStore,
		Tuning:          s.tuningBox,
		RateLimiter:     reqRateLimiter,
		FrameRatePerMin: s.config.FrameRatePerMin,
		Metrics:         s.metricsManager,
	})
	coachHandler.SetupRoutes(r)

	miscHandler := misc.NewHandler(s.motivationManager, s.versionInfo, s.authService)
	miscHandler.SetupRoutes(r, reqRateLimiter, s.metricsManager)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET").Name("health")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(
		s.appSecret,
		s.loginChecker,
	)

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
	metricsAddr := net.JoinHostPort(s.config.MetricsHost, strconv.Itoa(s.config.MetricsPort))
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

	var shutdownErr error
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			shutdownErr = multierr.Append(shutdownErr, fmt.Errorf("close redis client conn: %w", err))
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		shutdownErr = multierr.Append(shutdownErr, fmt.Errorf("shutdown http server: %w", err))
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		shutdownErr = multierr.Append(shutdownErr, fmt.Errorf("shutdown metrics http server: %w", err))
	}
	log.Warnln("metrics server shut down")

	if shutdownErr != nil {
		log.Errorf(" >>> shutdown errors: %s", shutdownErr)
	}
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
