package fakebackend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-sales-client/users"
)

type contextKey string

const contextKeyUser contextKey = "user"

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

func (b *Backend) record(pattern string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[pattern]++
		b.lastHeaders[pattern] = r.Header.Clone()
		b.mu.Unlock()

		b.logger.Debug().Msgf("[%-19s] %s", colourMethod(r.Method), r.URL.Path)
		next(w, r)
	}
}

// RequireAuth validates the bearer JWT and injects the caller into the context
func (b *Backend) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		user, err := b.authenticate(parts[1])
		if err != nil {
			b.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected bearer token")
			writeDetail(w, http.StatusUnauthorized, "No se pudieron validar las credenciales")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin must run after RequireAuth
func (b *Backend) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !callerFrom(r).IsAdmin() {
			writeDetail(w, http.StatusForbidden, "No tienes permisos para realizar esta acción")
			return
		}
		next(w, r)
	}
}

func (b *Backend) authenticate(accessToken string) (*users.User, error) {
	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(accessToken, &claims, b.verificationKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(b.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.revoked[accessToken] {
		return nil, fmt.Errorf("token revoked")
	}
	acc, ok := b.accounts[claims.Subject]
	if !ok {
		return nil, fmt.Errorf("unknown subject %q", claims.Subject)
	}
	if !acc.user.Active {
		return nil, fmt.Errorf("user %q inactive", claims.Subject)
	}
	u := acc.user
	return &u, nil
}

func (b *Backend) verificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return b.secret, nil
}

func callerFrom(r *http.Request) *users.User {
	u, _ := r.Context().Value(contextKeyUser).(*users.User)
	return u
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
