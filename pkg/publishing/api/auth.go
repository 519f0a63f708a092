package api

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth"
	"github.com/wepublish/wepublish-api/pkg/publishing"
)

type contextKey string

const sessionKey contextKey = "session"

// ClaimRoles is the JWT claim holding the caller's role ids.
const ClaimRoles = "roles"

// NewTokenAuth returns the HS256 verifier for bearer tokens.
func NewTokenAuth(secret []byte) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", secret, nil)
}

// Authenticate verifies the bearer token and stores the caller's session in
// the request context. Requests without a valid token are rejected with 401.
func Authenticate(tokenAuth *jwtauth.JWTAuth, roles map[string]publishing.Role) func(http.Handler) http.Handler {
	verify := jwtauth.Verifier(tokenAuth)
	return func(next http.Handler) http.Handler {
		return verify(jwtauth.Authenticator(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			session := &publishing.Session{
				UserID: stringClaim(claims, "sub"),
				Roles:  publishing.ResolveRoles(stringsClaim(claims, ClaimRoles), roles),
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})))
	}
}

// WithSession returns a context carrying session.
func WithSession(ctx context.Context, session *publishing.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFromContext returns the caller's session, or nil.
func SessionFromContext(ctx context.Context) *publishing.Session {
	session, _ := ctx.Value(sessionKey).(*publishing.Session)
	return session
}

func stringClaim(claims map[string]interface{}, name string) string {
	s, _ := claims[name].(string)
	return s
}

func stringsClaim(claims map[string]interface{}, name string) []string {
	switch v := claims[name].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{v}
	default:
		return nil
	}
}
