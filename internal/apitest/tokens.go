package apitest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/naveenspark/marquee/pkg/domain"
)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 24 * time.Hour
)

type claims struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username,omitempty"`
	Email      string `json:"email,omitempty"`
	TokenType  string `json:"token_type"`
	Generation int    `json:"gen"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

// IssueTokens signs a token pair for a seeded user without going through
// the login endpoint.
func (s *Server) IssueTokens(userID int64) (domain.AuthTokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.AuthTokens{}, fmt.Errorf("apitest: no user %d", userID)
	}
	return s.issueLocked(u)
}

// SignToken signs arbitrary claims with the server key. Tests use it to
// craft tokens with unusual claim sets.
func (s *Server) SignToken(c jwt.MapClaims) string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return tok
}

func (s *Server) issueLocked(u *user) (domain.AuthTokens, error) {
	access, err := s.signLocked(u, "access", accessTTL)
	if err != nil {
		return domain.AuthTokens{}, err
	}
	refresh, err := s.signLocked(u, "refresh", refreshTTL)
	if err != nil {
		return domain.AuthTokens{}, err
	}
	return domain.AuthTokens{Access: access, Refresh: refresh}, nil
}

func (s *Server) signLocked(u *user, typ string, ttl time.Duration) (string, error) {
	now := s.now()
	c := claims{
		UserID:     u.id,
		Username:   u.username,
		Email:      u.email,
		TokenType:  typ,
		Generation: s.generation,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(u.id),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return tok, nil
}

func (s *Server) parse(raw, wantType string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if c.TokenType != wantType {
		return nil, errors.New("wrong token type")
	}
	return &c, nil
}

// authenticate resolves the bearer token. With required unset, requests
// without a token pass through anonymously but a bad token is still
// rejected.
func (s *Server) authenticate(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				if required {
					fail(w, r, http.StatusUnauthorized, "Authentication credentials were not provided.")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			c, err := s.parse(raw, "access")
			s.mu.Lock()
			stale := err == nil && (c.Generation != s.generation || s.rejectAccess)
			var u *user
			if err == nil {
				u = s.users[c.UserID]
			}
			s.mu.Unlock()
			if err != nil || stale || u == nil {
				fail(w, r, http.StatusUnauthorized, "Given token not valid for any token type")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
		})
	}
}

func currentUser(r *http.Request) *user {
	u, _ := r.Context().Value(ctxKey{}).(*user)
	return u
}

func fail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"detail": detail})
}
