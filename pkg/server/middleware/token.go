package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenAuthenticator is middleware that validates HMAC-signed bearer tokens
// on write endpoints.
type TokenAuthenticator struct {
	key []byte
}

// NewTokenAuthenticator creates a new TokenAuthenticator
func NewTokenAuthenticator(key []byte) *TokenAuthenticator {
	return &TokenAuthenticator{key: key}
}

// IssueToken signs a token for the given subject, valid for ttl.
func (t *TokenAuthenticator) IssueToken(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	return token.SignedString(t.key)
}

// Middleware returns an HTTP middleware that validates bearer tokens
func (t *TokenAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		if len(authHeader) == 0 {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Authorization missing"))
			return
		}

		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Malformed authorization header"))
			return
		}

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return t.key, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Invalid authorization token"))
			return
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Token has no subject"))
			return
		}

		ctx := context.WithValue(r.Context(), SubjectKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type contextKey string

// SubjectKey is the request context key holding the authenticated subject.
const SubjectKey contextKey = "subject"
