package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	clerkjwt "github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"pillarsAPI/internal/logger"
	"pillarsAPI/internal/types/user"
)

type contextKey string

const UserIDKey contextKey = "userID"
const ExternalIDKey contextKey = "externalID"

// TokenVerifier checks a bearer token and returns the subject it was issued for.
type TokenVerifier func(ctx context.Context, token string) (string, error)

var errNoSubject = errors.New("token has no subject")

// ClerkVerifier validates Clerk session tokens. clerk.SetKey must have been
// called beforehand.
func ClerkVerifier(ctx context.Context, token string) (string, error) {
	claims, err := clerkjwt.Verify(ctx, &clerkjwt.VerifyParams{
		Token: token,
	})
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errNoSubject
	}
	return claims.Subject, nil
}

// HS256Verifier validates tokens signed with a shared secret. The subject is
// taken from "sub", falling back to a "userId" claim.
func HS256Verifier(secret []byte) TokenVerifier {
	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(_ context.Context, token string) (string, error) {
		parsed, err := jwt.Parse(token, keyFunc, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			return "", err
		}
		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			return "", errNoSubject
		}

		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			return sub, nil
		}
		if id, ok := claims["userId"].(string); ok && id != "" {
			return id, nil
		}
		return "", errNoSubject
	}
}

// AuthMiddleware validates the bearer token and puts its subject in the
// request context.
func AuthMiddleware(verify TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondWithError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader || token == "" {
				respondWithError(w, http.StatusUnauthorized, "Invalid authorization format. Use 'Bearer <token>'")
				return
			}

			subject, err := verify(r.Context(), token)
			if err != nil {
				logger.Warn("Auth: token verification failed", "err", err)
				respondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ExternalIDKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserResolver maps an authenticated subject onto an internal user,
// provisioning one on first sight.
type UserResolver interface {
	EnsureUser(ctx context.Context, externalID string) (*user.User, error)
}

// IdentityMiddleware runs after AuthMiddleware and stores the internal user id.
func IdentityMiddleware(users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			externalID, ok := GetExternalID(r.Context())
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "User not authenticated")
				return
			}

			u, err := users.EnsureUser(r.Context(), externalID)
			if err != nil {
				logger.Error("Identity: failed to resolve user", "externalID", externalID, "err", err)
				respondWithError(w, http.StatusInternalServerError, "Failed to resolve user")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), u.ID)))
		})
	}
}

// GetExternalID extracts the token subject from context.
func GetExternalID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ExternalIDKey).(string)
	return id, ok
}

// GetUserID extracts the internal user id from context.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, id)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
