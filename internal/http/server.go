// Package http is the transport glue over the core services: routing,
// session tokens, CORS and metrics. It holds no business rules beyond
// mapping fault kinds to status codes and enforcing the coarse
// admin/owner split on request operations.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/account"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/auth"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/config"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/fault"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/invite"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/model"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/notify"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/request"
)

// Store is the read surface the transport needs directly; everything
// else goes through the services.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetSpeakerProfileByUserID(ctx context.Context, userID string) (model.SpeakerProfile, error)
	ListVisibleSpeakers(ctx context.Context) ([]model.SpeakerView, error)
}

type Server struct {
	cfg      config.Config
	store    Store
	invites  *invite.Manager
	accounts *account.Provisioner
	deleter  *account.Coordinator
	requests *request.Engine
	notifier notify.Notifier
	redis    *redis.Client
}

func NewServer(cfg config.Config, store Store, invites *invite.Manager, accounts *account.Provisioner,
	deleter *account.Coordinator, requests *request.Engine, notifier notify.Notifier, redisClient *redis.Client) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		invites:  invites,
		accounts: accounts,
		deleter:  deleter,
		requests: requests,
		notifier: notifier,
		redis:    redisClient,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/login", s.handleLogin)
	r.With(s.optionalAuth).Post("/auth/register", s.handleRegister)
	r.Post("/auth/register/invite", s.handleRegisterFromInvite)
	r.Post("/auth/verify", s.handleVerify)
	r.Post("/auth/password/forgot", s.handleForgotPassword)
	r.Post("/auth/password/reset", s.handleResetPassword)

	r.Get("/speakers", s.handleListSpeakers)

	r.Route("/requests", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.handleListRequests)
		r.Post("/", s.handleCreateRequest)
		r.Get("/{requestID}", s.handleGetRequest)
		r.Patch("/{requestID}/status", s.handleSetRequestStatus)
		r.With(s.requireAdmin).Delete("/{requestID}", s.handleDeleteRequest)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.authMiddleware, s.requireAdmin)
		r.Post("/invites", s.handleInvite)
		r.Get("/users", s.handleListUsers)
		r.Delete("/users", s.handleDeleteUser)
		r.Post("/speakers", s.handleCreateSpeakerDirect)
	})

	return r
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		claims, err := auth.ParseToken(s.cfg.JWTSecret, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// optionalAuth attaches claims when a valid token is present but lets
// anonymous callers through; registration behaves differently for
// authenticated admins.
func (s *Server) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r.Header.Get("Authorization")); token != "" {
			if claims, err := auth.ParseToken(s.cfg.JWTSecret, token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil || !claims.Admin {
			writeError(w, http.StatusForbidden, "admin_only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type claimsKey struct{}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeFault maps a core error onto the wire: stable code and message,
// never storage detail.
func writeFault(w http.ResponseWriter, err error) {
	code := fault.CodeOf(err)
	if code == "" {
		code = "server_error"
	}
	var status int
	switch fault.KindOf(err) {
	case fault.KindValidation:
		status = http.StatusBadRequest
	case fault.KindUnauthorized:
		status = http.StatusUnauthorized
	case fault.KindForbidden:
		status = http.StatusForbidden
	case fault.KindNotFound:
		status = http.StatusNotFound
	case fault.KindConflict:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]string{"error": code, "message": publicMessage(err, status)})
}

func publicMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
