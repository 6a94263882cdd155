package http

import (
	"net/http"
	"strings"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/account"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/auth"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/crypto"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/fault"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Admin     bool   `json:"admin"`
	Verified  bool   `json:"verified"`
}

func summarize(user model.User) userSummary {
	return userSummary{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
		Admin:     user.Admin,
		Verified:  user.Verified,
	}
}

type authResponse struct {
	AccessToken string      `json:"accessToken"`
	User        userSummary `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_credentials")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if fault.KindOf(err) == fault.KindNotFound {
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		writeFault(w, err)
		return
	}
	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, auth.Claims{
		UserID: user.ID,
		Role:   user.Role,
		Admin:  user.Admin,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{AccessToken: token, User: summarize(user)})
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`

	School     string   `json:"school,omitempty"`
	GradeLevel string   `json:"gradeLevel,omitempty"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
	Country    string   `json:"country,omitempty"`
	Subjects   []string `json:"subjects,omitempty"`
	Bio        string   `json:"bio,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	claims := claimsFromContext(r.Context())
	user, err := s.accounts.RegisterSelf(r.Context(), account.RegisterSelfInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Password:      req.Password,
		Role:          req.Role,
		School:        req.School,
		GradeLevel:    req.GradeLevel,
		City:          req.City,
		State:         req.State,
		Country:       req.Country,
		Subjects:      req.Subjects,
		Bio:           req.Bio,
		CallerIsAdmin: claims != nil && claims.Admin,
	})
	if err != nil {
		writeFault(w, err)
		return
	}

	registrationsTotal.WithLabelValues("self").Inc()
	writeJSON(w, http.StatusCreated, summarize(user))
}

type registerFromInviteRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	InviteToken string `json:"inviteToken"`
}

func (s *Server) handleRegisterFromInvite(w http.ResponseWriter, r *http.Request) {
	var req registerFromInviteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	user, err := s.accounts.RegisterFromInvite(r.Context(), account.RegisterFromInviteInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		InviteToken: req.InviteToken,
	})
	if err != nil {
		writeFault(w, err)
		return
	}

	registrationsTotal.WithLabelValues("invite").Inc()
	writeJSON(w, http.StatusCreated, summarize(user))
}

type verifyRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := s.accounts.VerifyEmail(r.Context(), req.Token); err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := s.accounts.ForgotPassword(r.Context(), req.Email); err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := s.accounts.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
