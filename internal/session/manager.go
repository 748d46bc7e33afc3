// Package session issues and rotates the administrator's tokens.
//
// Login yields a short-lived access token and a long-lived refresh token
// bound to a server-side session record. Every refresh deletes the old
// record and creates a new one, so a refresh token is accepted once.
package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonathan/sng-admin/internal/apperr"
	"github.com/jonathan/sng-admin/internal/clock"
	"github.com/jonathan/sng-admin/internal/config"
	"github.com/jonathan/sng-admin/internal/types"
	"golang.org/x/crypto/bcrypt"
)

// Errors returned to the client verbatim.
var (
	ErrInvalidCredentials = apperr.New(apperr.Unauthorized, "Неверный логин или пароль")
	ErrInvalidAccess      = apperr.New(apperr.Unauthorized, "Недействительный токен доступа")
	ErrInvalidRefresh     = apperr.New(apperr.Unauthorized, "Недействительный refresh token")
	ErrMalformedRefresh   = apperr.New(apperr.Unauthorized, "Некорректный refresh token")
	ErrSessionExpired     = apperr.New(apperr.Unauthorized, "Сессия истекла. Выполните вход повторно.")
)

// Grant is the result of a successful login or refresh.
type Grant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int // Access token lifetime in seconds
	Username     string
	Role         string
	SessionID    string
}

// Manager authenticates the single administrator and manages sessions.
type Manager struct {
	admin     config.AdminConfig
	jwt       *config.JWTConfig
	store     Store
	clock     clock.Clock
	ids       clock.IDGenerator
	dummyHash []byte
}

// NewManager creates a session manager. clk and ids default to the real
// clock and UUIDs when nil.
func NewManager(admin config.AdminConfig, jwtCfg *config.JWTConfig, store Store, clk clock.Clock, ids clock.IDGenerator) (*Manager, error) {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if ids == nil {
		ids = clock.UUIDGenerator{}
	}

	dummy, err := dummyHash(admin.PasswordHash)
	if err != nil {
		return nil, err
	}

	return &Manager{
		admin:     admin,
		jwt:       jwtCfg,
		store:     store,
		clock:     clk,
		ids:       ids,
		dummyHash: dummy,
	}, nil
}

// dummyHash creates a throwaway hash with the admin hash's cost, compared
// against when the username is wrong.
func dummyHash(adminHash string) ([]byte, error) {
	cost, err := bcrypt.Cost([]byte(adminHash))
	if err != nil {
		return nil, fmt.Errorf("admin password hash is not a bcrypt hash: %w", err)
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate dummy password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(buf)), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash dummy password: %w", err)
	}
	return hash, nil
}

// Login checks credentials and opens a new session.
func (m *Manager) Login(ctx context.Context, username, password string) (*Grant, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.admin.Username)) == 1

	hash := m.dummyHash
	if userOK {
		hash = []byte(m.admin.PasswordHash)
	}
	passwordOK := bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil

	if !userOK || !passwordOK {
		return nil, ErrInvalidCredentials
	}

	return m.issue(ctx, username)
}

// Refresh validates a refresh token against its session and rotates it.
// A mismatched or expired session is deleted.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (*Grant, error) {
	claims := &refreshClaims{}
	if err := m.parse(refreshToken, claims, m.jwt.RefreshSecret); err != nil {
		return nil, apperr.Wrap(apperr.Unauthorized, ErrInvalidRefresh.Message, err)
	}
	if claims.Type != typeRefresh || claims.SessionID == "" {
		return nil, ErrInvalidRefresh
	}
	if claims.Subject == "" {
		return nil, ErrMalformedRefresh
	}

	rec, found, err := m.store.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !found || rec.Username != claims.Subject || !rec.ExpiresAt.After(m.clock.Now()) {
		if err := m.store.Delete(ctx, claims.SessionID); err != nil {
			return nil, fmt.Errorf("failed to delete session: %w", err)
		}
		return nil, ErrSessionExpired
	}

	if err := m.store.Delete(ctx, claims.SessionID); err != nil {
		return nil, fmt.Errorf("failed to delete session: %w", err)
	}
	return m.issue(ctx, claims.Subject)
}

// Logout deletes the session named by refreshToken. Invalid tokens are ignored.
func (m *Manager) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims := &refreshClaims{}
	if err := m.parse(refreshToken, claims, m.jwt.RefreshSecret); err != nil {
		return nil
	}
	if claims.Type != typeRefresh || claims.SessionID == "" {
		return nil
	}
	if err := m.store.Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// VerifyAccess validates a bearer token.
func (m *Manager) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.parse(token, claims, m.jwt.AccessSecret); err != nil {
		return nil, apperr.Wrap(apperr.Unauthorized, ErrInvalidAccess.Message, err)
	}
	if claims.Type != typeAccess {
		return nil, ErrInvalidAccess
	}
	return claims, nil
}

// RefreshTTL is the lifetime of refresh tokens and sessions.
func (m *Manager) RefreshTTL() time.Duration {
	return m.jwt.RefreshTTL
}

func (m *Manager) issue(ctx context.Context, username string) (*Grant, error) {
	now := m.clock.Now()
	sid := m.ids.New()

	rec := Record{Username: username, ExpiresAt: now.Add(m.jwt.RefreshTTL)}
	if err := m.store.Put(ctx, sid, rec, m.jwt.RefreshTTL); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	access, err := m.sign(&AccessClaims{
		Type: typeAccess,
		Role: types.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    m.jwt.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.jwt.AccessTTL)),
		},
	}, m.jwt.AccessSecret)
	if err != nil {
		return nil, err
	}

	refresh, err := m.sign(&refreshClaims{
		Type:      typeRefresh,
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    m.jwt.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(rec.ExpiresAt),
		},
	}, m.jwt.RefreshSecret)
	if err != nil {
		return nil, err
	}

	return &Grant{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(m.jwt.AccessTTL / time.Second),
		Username:     username,
		Role:         types.RoleAdmin,
		SessionID:    sid,
	}, nil
}
