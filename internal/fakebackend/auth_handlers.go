package fakebackend

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken signs an access token for email valid for ttl. A negative ttl
// yields an already expired token.
func (b *Backend) IssueToken(email string, ttl time.Duration) (string, error) {
	now := b.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token with HMAC: %w", err)
	}
	b.mu.Lock()
	b.issued = append(b.issued, signed)
	b.mu.Unlock()
	return signed, nil
}

// LoginHandler accepts the password grant form and answers with the token
// and the user profile
func (b *Backend) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid form")
			return
		}
		email := r.PostForm.Get("username")
		password := r.PostForm.Get("password")

		b.mu.RLock()
		acc, ok := b.accounts[email]
		detail := b.loginDetail
		var hash string
		if ok {
			hash = acc.passwordHash
		}
		b.mu.RUnlock()

		if !ok || !checkPasswordHash(password, hash) {
			writeDetail(w, http.StatusUnauthorized, detail)
			return
		}
		user, _ := b.User(email)
		if !user.Active {
			writeDetail(w, http.StatusBadRequest, "Usuario inactivo")
			return
		}

		accessToken, err := b.IssueToken(email, b.ttl)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": accessToken,
			"token_type":   "bearer",
			"expires_in":   int(b.ttl.Seconds()),
			"usuario":      user,
		})
	}
}

// MeHandler returns the caller's profile
func (b *Backend) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		delay, status, body := b.meDelay, b.meStatus, b.meBody
		b.mu.RUnlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if status != 0 {
			writeDetail(w, status, http.StatusText(status))
			return
		}
		if body != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}
		writeJSON(w, http.StatusOK, callerFrom(r))
	}
}
