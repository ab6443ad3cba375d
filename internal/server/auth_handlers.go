package server

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/middleware"
	"github.com/terraconstructs/sandaran/internal/services/iam"
	"github.com/terraconstructs/sandaran/internal/services/validation"
)

// Reasons reported by the session endpoint when access is not valid.
const (
	ReasonNoSession        = "no_session"
	ReasonInactive         = "inactive"
	ReasonUnauthorizedRole = "unauthorized_role"
)

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type sessionUser struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Image string          `json:"image,omitempty"`
	Role  auth.GlobalRole `json:"roleGlobal"`
}

type sessionResponse struct {
	Valid  bool         `json:"valid"`
	Reason string       `json:"reason,omitempty"`
	User   *sessionUser `json:"user,omitempty"`
}

func (h *handlers) mountAuth(r chi.Router, limiter *middleware.RateLimiter) {
	r.Post("/auth/register", h.handleRegister)
	if limiter != nil {
		r.With(limiter.Handler).Post("/auth/login", h.handleLogin)
	} else {
		r.Post("/auth/login", h.handleLogin)
	}
	r.Post("/auth/logout", h.handleLogout)
	r.Get("/api/auth/session", h.handleSession)
}

func (h *handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in iam.RegisterInput
	if err := h.decode(w, r, validation.SchemaRegister, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	user, err := h.svc.IAM.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, user)
}

func (h *handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in iam.LoginInput
	if err := h.decode(w, r, validation.SchemaLogin, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	in.UserAgent = r.UserAgent()
	in.IPAddress = remoteIP(r)

	result, err := h.svc.IAM.Login(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    result.SessionToken,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	h.writeJSON(w, http.StatusOK, loginResponse{
		Token:     result.BearerToken,
		ExpiresAt: result.ExpiresAt,
		User:      result.User,
	})
}

func (h *handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if p := principal(r); p != nil && p.SessionID != "" {
		if err := h.svc.IAM.Logout(r.Context(), p.SessionID); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// handleSession reports the caller and whether it may use the system. It is
// never gated, so clients can tell pending accounts apart from logged out ones.
func (h *handlers) handleSession(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if p == nil {
		h.writeJSON(w, http.StatusOK, sessionResponse{Reason: ReasonNoSession})
		return
	}

	resp := sessionResponse{
		Valid: true,
		User: &sessionUser{
			ID:    p.ID,
			Name:  p.Name,
			Email: p.Email,
			Image: p.Image,
			Role:  p.Role,
		},
	}
	switch {
	case !p.Active:
		resp.Valid, resp.Reason = false, ReasonInactive
	case p.Role == auth.RoleNone || !p.Role.Known():
		resp.Valid, resp.Reason = false, ReasonUnauthorizedRole
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
