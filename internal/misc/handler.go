package misc

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/gymdash/internal/auth"
	"github.com/2beens/gymdash/internal/gymapi"
	"github.com/2beens/gymdash/internal/middleware"
	"github.com/2beens/gymdash/internal/telemetry/metrics"
	"github.com/2beens/gymdash/internal/telemetry/tracing"
	"github.com/2beens/gymdash/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=misc_test

type authService interface {
	Login(ctx context.Context, username, password string, createdAt time.Time) (*auth.Credentials, error)
	Logout(ctx context.Context, sessionID string) (bool, error)
}

type dashboardForgetter interface {
	Forget(creds *auth.Credentials)
}

type Handler struct {
	versionInfo string
	authService authService
	dashboard   dashboardForgetter
	// ability to inject time for testing
	NowFunc func() time.Time
}

func NewHandler(versionInfo string, authService authService, dashboard dashboardForgetter) *Handler {
	return &Handler{
		versionInfo: versionInfo,
		authService: authService,
		dashboard:   dashboard,
		NowFunc:     time.Now,
	}
}

type LoginResponse struct {
	Session string `json:"session"`
	Role    string `json:"role"`
}

type WhoAmIResponse struct {
	Role    string `json:"role"`
	IsAdmin bool   `json:"isAdmin"`
	Session bool   `json:"session"`
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	loginAllowedPerMin int,
) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")

	loginSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	loginSubrouter.
		HandleFunc("/login", handler.handleLogin).
		Methods("POST", "OPTIONS").Name("login")
	loginSubrouter.
		HandleFunc("/logout", handler.handleLogout).
		Methods("GET", "OPTIONS").Name("logout")
	loginSubrouter.
		HandleFunc("/whoami", handler.handleWhoAmI).
		Methods("GET").Name("whoami")

	// rate limit the /a endpoints, login is the one remote call anyone can trigger
	loginSubrouter.Use(middleware.RateLimit(rateLimiter, "login", loginAllowedPerMin, metricsManager))
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	type loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var loginReq loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
			log.Debugf("login, unmarshal json params: %s", err)
			http.Error(w, "login failed", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Debugf("login failed, parse form error: %s", err)
			http.Error(w, "parse form error", http.StatusBadRequest)
			return
		}
		loginReq = loginRequest{
			Username: r.Form.Get("username"),
			Password: r.Form.Get("password"),
		}
	}

	if loginReq.Username == "" {
		http.Error(w, "error, username empty", http.StatusBadRequest)
		return
	}
	if loginReq.Password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return
	}

	creds, err := handler.authService.Login(ctx, loginReq.Username, loginReq.Password, handler.NowFunc())
	if err != nil {
		gymapi.WriteHTTPError(w, "login", err)
		return
	}

	log.Tracef("new login success for user: %s", loginReq.Username)
	pkg.WriteJSON(w, LoginResponse{
		Session: creds.SessionID,
		Role:    creds.Role,
	}, http.StatusOK)
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	creds, ok := auth.FromContext(ctx)
	if !ok || creds.SessionID == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.authService.Logout(ctx, creds.SessionID)
	if err != nil {
		log.Errorf("logout: %s", err)
		http.Error(w, "no can do", http.StatusInternalServerError)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	handler.dashboard.Forget(creds)

	log.Debugf("logout for session [%s...] success", creds.SessionID[:min(6, len(creds.SessionID))])
	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.whoAmI")
	defer span.End()

	creds, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	pkg.WriteJSON(w, WhoAmIResponse{
		Role:    auth.RoleHint(creds),
		IsAdmin: auth.IsAdminHint(creds),
		Session: creds.SessionID != "",
	}, http.StatusOK)
}
