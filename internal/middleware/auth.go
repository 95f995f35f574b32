package middleware

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/tarofit/fitcoach/internal/auth"
	"github.com/tarofit/fitcoach/internal/telemetry/tracing"
)

// AuthTokenHeader carries the admin session token.
const AuthTokenHeader = "X-FIT-TOKEN"

// AppSecretHeader carries the mobile app secret on workout requests.
const AppSecretHeader = "X-FIT-APP-SECRET"

type AuthMiddlewareHandler struct {
	appSecret            string
	loginChecker         auth.Checker
	allowedPaths         map[string]bool
	allowedPathsPrefixes []string
}

func NewAuthMiddlewareHandler(
	appSecret string,
	loginChecker auth.Checker,
) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		appSecret:    appSecret,
		loginChecker: loginChecker,
		allowedPaths: map[string]bool{
			"/":        true,
			"/health":  true,
			"/version": true,

			// login-logout:
			"/a/login":  true,
			"/a/logout": true,
		},
		allowedPathsPrefixes: []string{
			"/motivation",
		},
	}
}

func (h *AuthMiddlewareHandler) pathIsAlwaysAllowed(path string) bool {
	if h.allowedPaths[path] {
		return true
	}
	for _, prefix := range h.allowedPathsPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.pathIsAlwaysAllowed(r.URL.Path) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			// tuning endpoints are operator-only, everything else under
			// /workout comes from the mobile app with the shared secret
			if strings.HasPrefix(r.URL.Path, "/workout/") &&
				!strings.HasPrefix(r.URL.Path, "/workout/tuning") {
				if r.Header.Get(AppSecretHeader) != h.appSecret {
					log.Tracef("[wrong app secret] [auth middleware] unauthorized => %s", r.URL.Path)
					http.Error(w, "no can do", http.StatusUnauthorized)
					span.SetStatus(codes.Error, "wrong-app-secret")
					return
				}
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authToken := r.Header.Get(AuthTokenHeader)
			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			isLogged, err := h.loginChecker.IsLogged(ctx, authToken)
			if err != nil {
				log.Errorf("[failed login check] => %s: %s", r.URL.Path, err)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "check-logged-err")
				span.RecordError(err)
				return
			}
			if !isLogged {
				log.Tracef("[invalid token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "not-logged")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
