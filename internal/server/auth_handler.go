package server

import (
	"net/http"

	"github.com/jonathan/sng-admin/internal/apperr"
	"github.com/jonathan/sng-admin/internal/audit"
	"github.com/jonathan/sng-admin/internal/session"
	"github.com/jonathan/sng-admin/internal/types"
)

// RefreshCookieName is the cookie carrying the refresh token.
const RefreshCookieName = "sng_admin_refresh"

const missingRefreshMessage = "Отсутствует refresh cookie"

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[types.LoginRequest](r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	grant, err := s.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.setRefreshCookie(w, grant.RefreshToken)
	s.audit.Record(r.Context(), audit.Entry{
		Actor:    grant.Username,
		Action:   "login",
		Resource: "auth",
		ID:       grant.SessionID,
	})
	s.jsonResponse(w, http.StatusOK, loginResponse(grant))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		s.messageResponse(w, http.StatusUnauthorized, missingRefreshMessage)
		return
	}

	grant, err := s.sessions.Refresh(r.Context(), cookie.Value)
	if err != nil {
		// Store outages keep the cookie so the client can retry.
		if apperr.Is(err, apperr.Unauthorized) {
			s.clearRefreshCookie(w)
		}
		s.errorResponse(w, r, err)
		return
	}

	s.setRefreshCookie(w, grant.RefreshToken)
	s.jsonResponse(w, http.StatusOK, loginResponse(grant))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(RefreshCookieName); err == nil {
		if err := s.sessions.Logout(r.Context(), cookie.Value); err != nil {
			s.logger.Warn("failed to delete session on logout", "error", err)
		}
	}

	s.clearRefreshCookie(w)
	s.audit.Record(r.Context(), audit.Entry{
		Actor:    "admin",
		Action:   "logout",
		Resource: "auth",
		ID:       "session",
	})
	s.jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
}

func loginResponse(grant *session.Grant) types.LoginResponse {
	return types.LoginResponse{
		AccessToken: grant.AccessToken,
		ExpiresIn:   grant.ExpiresIn,
		User: types.AdminUser{
			Username: grant.Username,
			Role:     grant.Role,
		},
	}
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     s.cfg.AuthCookiePath(),
		MaxAge:   int(s.sessions.RefreshTTL().Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     s.cfg.AuthCookiePath(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: http.SameSiteStrictMode,
	})
}
