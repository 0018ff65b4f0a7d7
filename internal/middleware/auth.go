package middleware

import (
	"context"
	"net/http"

	"cardvault-rest-api/internal/model"
	"cardvault-rest-api/internal/service"
	"cardvault-rest-api/pkg/apierror"
)

// TokenDataKey is the key for storing token data in request context.
const TokenDataKey contextKey = "token_data"

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	TokenService *service.TokenService
}

// NewAuthMiddleware creates an authentication middleware with injected
// dependencies. Every request through it must carry a valid X-Token
// session token; the decoded token data is placed in the request
// context for handlers to scope their queries.
func NewAuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.TokenService == nil {
				writeError(w, apierror.ServiceUnavailable("Session store unavailable"))
				return
			}

			token := r.Header.Get("X-Token")
			if token == "" {
				writeError(w, apierror.Unauthorized("Authentication required. Use the X-Token header."))
				return
			}

			tokenData, err := cfg.TokenService.ValidateToken(r.Context(), token)
			if err != nil {
				writeError(w, apierror.Unauthorized("Invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), TokenDataKey, tokenData)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}

// GetTokenDataFromContext retrieves token data from request context.
func GetTokenDataFromContext(ctx context.Context) *model.TokenData {
	if data, ok := ctx.Value(TokenDataKey).(*model.TokenData); ok {
		return data
	}
	return nil
}

// GetAccountID returns the authenticated account id, or 0 when the
// request carried no valid token.
func GetAccountID(ctx context.Context) int64 {
	if data := GetTokenDataFromContext(ctx); data != nil {
		return data.AccountID
	}
	return 0
}
