package misc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/tarofit/fitcoach/internal/auth"
	"github.com/tarofit/fitcoach/internal/middleware"
	"github.com/tarofit/fitcoach/internal/motivation"
	"github.com/tarofit/fitcoach/internal/telemetry/metrics"
	"github.com/tarofit/fitcoach/internal/telemetry/tracing"
	"github.com/tarofit/fitcoach/pkg"
)

type Handler struct {
	motivationManager *motivation.Manager
	versionInfo       string
	authService       *auth.Service
}

func NewHandler(
	motivationManager *motivation.Manager,
	versionInfo string,
	authService *auth.Service,
) *Handler {
	return &Handler{
		motivationManager: motivationManager,
		versionInfo:       versionInfo,
		authService:       authService,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/motivation/{rep}", handler.handleGetMotivation).Methods("GET").Name("motivation")
	mainRouter.HandleFunc("/myip", handler.handleGetMyIp).Methods("GET").Name("myip")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")

	loginSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	loginSubrouter.
		HandleFunc("/login", handler.handleLogin).
		Methods("POST", "OPTIONS").Name("login")
	loginSubrouter.
		HandleFunc("/logout", handler.handleLogout).
		Methods("GET", "POST", "OPTIONS").Name("logout")

	// rate limit the /login and /logout endpoints to prevent abuse
	loginSubrouter.Use(middleware.RateLimit(rateLimiter, "login", 15, metricsManager))
	loginSubrouter.Use(middleware.Cors())
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handleGetMotivation(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.motivation")
	defer span.End()

	repCount, err := strconv.Atoi(mux.Vars(r)["rep"])
	if err != nil {
		http.Error(w, "error, rep NaN", http.StatusBadRequest)
		return
	}

	span.SetAttributes(attribute.Int("rep.count", repCount))

	msgBytes, err := json.Marshal(struct {
		Message string `json:"message"`
	}{
		Message: handler.motivationManager.ForRep(repCount),
	})
	if err != nil {
		http.Error(w, "", http.StatusInternalServerError)
		log.Errorf("marshal motivation message error: %s", err)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, msgBytes)
}

func (handler *Handler) handleGetMyIp(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.getMyIp")
	defer span.End()

	ip, err := pkg.ReadUserIP(r)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("failed to get user IP address: %s", err))
		log.Errorf("failed to get user IP address: %s", err)
		http.Error(w, "failed to get IP", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.String("user.ip", ip))
	span.SetStatus(codes.Ok, fmt.Sprintf("user IP address: %s", ip))
	pkg.WriteTextResponseOK(w, ip)
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var credentials auth.Credentials
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
			log.Errorf("login, unmarshal json params: %s", err)
			http.Error(w, "login failed", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("login failed, parse form error: %s", err)
			http.Error(w, "parse form error", http.StatusInternalServerError)
			return
		}
		credentials = auth.Credentials{
			Username: r.Form.Get("username"),
			Password: r.Form.Get("password"),
		}
	}

	if credentials.Username == "" {
		http.Error(w, "error, username empty", http.StatusBadRequest)
		return
	}
	if credentials.Password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return
	}

	token, err := handler.authService.Login(r.Context(), credentials, time.Now())
	if err != nil {
		if errors.Is(err, auth.ErrWrongUsername) || errors.Is(err, auth.ErrWrongPassword) {
			log.Tracef("failed login attempt for user: %s", credentials.Username)
			http.Error(w, "error, wrong credentials", http.StatusBadRequest)
			return
		}
		log.Errorf("login failed, generate token error: %s", err)
		http.Error(w, "generate token error", http.StatusInternalServerError)
		return
	}

	log.Trace("new login success")
	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"token": "%s"}`, token))
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	authToken := r.Header.Get(middleware.AuthTokenHeader)
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.authService.Logout(r.Context(), authToken)
	if err != nil {
		log.Tracef("[failed logout] => %s: %s", r.URL.Path, err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	log.Printf("logout for [%s] success", authToken)
	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}
