package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

type contextKey string

const (
	AccountKey contextKey = "account"
	APIKeyKey  contextKey = "api_key"
)

// AnonymousAccount is used when auth is off and no X-Account-ID header is sent.
const AnonymousAccount = "anonymous"

// AccountHeader carries the caller identity when API keys are not configured.
const AccountHeader = "X-Account-ID"

// isPublic paths skip auth and rate limiting
func isPublic(path string) bool {
	switch path {
	case "/health", "/livez", "/readyz", "/metrics":
		return true
	}
	return false
}

// APIKeyAuth validates API key from Authorization header and stores the
// account it belongs to in the request context. validKeys maps account -> key.
func APIKeyAuth(validKeys map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			// Support both "Bearer <key>" and "<key>" formats
			apiKey := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if apiKey == "" {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			// constant-time comparison
			var account string
			for acc, key := range validKeys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
					account = acc
					break
				}
			}
			if account == "" {
				http.Error(w, "invalid API key", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), AccountKey, account)
			ctx = context.WithValue(ctx, APIKeyKey, apiKey)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HeaderIdentity is used instead of APIKeyAuth when no keys are configured:
// the caller names itself via X-Account-ID.
func HeaderIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := strings.TrimSpace(r.Header.Get(AccountHeader))
		if account == "" {
			account = AnonymousAccount
		}
		if err := ValidateAccountID(account); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), AccountKey, account)))
	})
}

// GetAccountFromContext extracts the caller account from context
func GetAccountFromContext(ctx context.Context) string {
	if account, ok := ctx.Value(AccountKey).(string); ok {
		return account
	}
	return ""
}
