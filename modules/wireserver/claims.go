// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package wireserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

// SessionClaims identifies which collaborating session issued a request;
// the idcompress collaborator normalizes this same session id into a
// stable local handle once a changeset referencing it reaches the engine.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// IssueToken mints a bearer token for sessionID, valid for ttl.
func (s *Server) IssueToken(sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) parseToken(bearerToken string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(bearerToken, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func parseBearerToken(auth string) (string, bool) {
	if len(auth) <= len(bearerPrefix) || !strings.EqualFold(auth[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	return auth[len(bearerPrefix):], true
}

// authenticated wraps fn, rejecting any request without a valid bearer
// token before it reaches the handler.
func (s *Server) authenticated(fn func(http.ResponseWriter, *http.Request, *SessionClaims)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := parseBearerToken(r.Header.Get("Authorization"))
		if !ok {
			renderFailure(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := s.parseToken(token)
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
				renderFailure(w, http.StatusForbidden, "expired token")
			default:
				renderFailure(w, http.StatusForbidden, "invalid token")
			}
			return
		}
		fn(w, r, claims)
	}
}
