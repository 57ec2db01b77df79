// internal/middleware/auth.go
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"bayou-blog/internal/auth"
	"bayou-blog/internal/models"
	"bayou-blog/internal/utils"
)

// Body reads are capped when sniffing for an admin key.
const maxBodyPeek = 10 << 20 // 10 MB, matching the client payload limit

// Define a custom context key type to avoid collisions
type contextKey string

// IdentityKey is the key used to store the resolved identity in the context
const IdentityKey contextKey = "identity"

// ExtractCredentials pulls the raw identity inputs off one request. The
// shared admin key is accepted from a header, a query param, or a JSON body
// field; all three are checked and a bearer token always takes precedence.
// The body is restored so handlers can decode it again.
func ExtractCredentials(r *http.Request) auth.Credentials {
	creds := auth.Credentials{}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		creds.Token = strings.TrimPrefix(authHeader, "Bearer ")
	}

	if key := r.Header.Get("X-Admin-Key"); key != "" {
		creds.AdminKey = key
	}
	if creds.AdminKey == "" {
		if key := r.URL.Query().Get("adminKey"); key != "" {
			creds.AdminKey = key
		}
	}
	if creds.AdminKey == "" && bodyMayCarryKey(r) {
		creds.AdminKey = peekBodyAdminKey(r)
	}

	return creds
}

func bodyMayCarryKey(r *http.Request) bool {
	if r.Body == nil || r.Method == http.MethodGet {
		return false
	}
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func peekBodyAdminKey(r *http.Request) string {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyPeek))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var probe struct {
		AdminKey string `json:"adminKey"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	return probe.AdminKey
}

// IdentityMiddleware resolves the acting principal for every request and
// stores it in the context. Requests carrying credentials that fail to
// resolve are rejected here; requests without credentials proceed as
// anonymous, and handlers that need a principal reject those themselves.
func IdentityMiddleware(resolver *auth.Resolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		creds := ExtractCredentials(r)

		identity, err := resolver.Resolve(r.Context(), creds)
		if err != nil {
			status := http.StatusUnauthorized
			if appErr, ok := err.(*utils.AppError); ok {
				status = utils.AppErrorToHTTPStatus(appErr.Code)
			}
			// One message for every failed path; never say which
			// credential was wrong.
			http.Error(w, "Invalid credentials", status)
			return
		}

		ctx := SetIdentityInContext(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetIdentityInContext saves the resolved identity in the request context
func SetIdentityInContext(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// GetIdentityFromContext retrieves the resolved identity from the context,
// falling back to anonymous when the middleware did not run.
func GetIdentityFromContext(ctx context.Context) models.Identity {
	if identity, ok := ctx.Value(IdentityKey).(models.Identity); ok {
		return identity
	}
	return models.Anonymous()
}
