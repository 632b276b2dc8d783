package handlers

import (
	"errors"
	"net/http"

	"github.com/openmeet/server/internal/api/problem"
	"github.com/openmeet/server/internal/auth"
	"github.com/openmeet/server/internal/domain/users"
	"github.com/openmeet/server/internal/metrics"
)

type AuthHandler struct {
	Users  *users.Service
	Tokens *auth.TokenManager
	Env    string
}

func NewAuthHandler(userSvc *users.Service, tokens *auth.TokenManager, env string) *AuthHandler {
	return &AuthHandler{Users: userSvc, Tokens: tokens, Env: env}
}

type registerRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, h.Env, &req) {
		return
	}

	user, err := h.Users.Register(r.Context(), users.RegisterParams{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, users.ErrUsernameTaken), errors.Is(err, users.ErrEmailTaken):
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict,
				"Account already exists", err, h.Env, problem.WithDetail(err.Error()))
		case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, users.ErrMissingField):
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
				"Invalid registration", err, h.Env, problem.WithDetail(err.Error()))
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal,
				"Registration failed", err, h.Env)
		}
		return
	}

	metrics.UsersRegistered.Inc()
	writeJSON(w, http.StatusCreated, userResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, h.Env, &req) {
		return
	}

	user, err := h.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
				"Invalid credentials", err, h.Env, problem.WithDetail("invalid username or password"))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal,
			"Login failed", err, h.Env)
		return
	}

	pair, err := h.Tokens.Issue(user.ID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal,
			"Login failed", err, h.Env)
		return
	}

	metrics.TokensIssued.WithLabelValues("login").Inc()
	writeJSON(w, http.StatusOK, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, h.Env, &req) {
		return
	}

	pair, err := h.Tokens.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
				"Invalid refresh token", err, h.Env, problem.WithDetail("refresh token is invalid, expired, or already used"))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal,
			"Token refresh failed", err, h.Env)
		return
	}

	metrics.TokensIssued.WithLabelValues("refresh").Inc()
	writeJSON(w, http.StatusOK, pair)
}

// Logout blacklists the supplied refresh token. The caller is
// authenticated with an access token; a malformed refresh token is a
// 400 rather than a 401.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, h.Env, &req) {
		return
	}

	if err := h.Tokens.Revoke(r.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
				"Invalid refresh token", err, h.Env, problem.WithDetail("refresh token is malformed or expired"))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal,
			"Logout failed", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
