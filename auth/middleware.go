package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/user/kaliweb-go/apperror"
	"github.com/user/kaliweb-go/logging"
)

// Middleware resolves request identities from bearer tokens. All middleware
// conform to the standard func(http.Handler) http.Handler shape.
type Middleware struct {
	svc *Service
	log logging.Logger
}

// NewMiddleware creates the authentication middleware around the service.
func NewMiddleware(svc *Service, log logging.Logger) *Middleware {
	return &Middleware{svc: svc, log: log.With("component", "auth_middleware")}
}

// resolveUser walks the full resolution chain: bearer extraction, token
// verification, user lookup, active check. It returns the auth failure for
// the step that failed; the caller decides whether that rejects the request
// (Authenticate) or degrades to anonymous (OptionalAuthenticate).
func (m *Middleware) resolveUser(r *http.Request) (*User, *apperror.AppError) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, apperror.NewAuthError("No token provided. Please login to access this resource.", nil)
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	userID, err := m.svc.VerifyToken(tokenString)
	if err != nil {
		// The verification error is logged but never surfaced.
		m.log.Warn(r.Context(), "token verification failed", "error", err)
		return nil, apperror.NewAuthError("Invalid or expired token. Please login again.", nil)
	}

	user, err := m.svc.store.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperror.NewAuthError("User not found. Please login again.", nil)
		}
		m.log.Error(r.Context(), "user lookup failed", "error", err)
		return nil, apperror.NewInternalError("Authentication failed", err)
	}

	if !user.IsActive {
		return nil, apperror.NewAuthError("Account is deactivated. Please contact support.", nil)
	}

	return user, nil
}

// Authenticate rejects the request unless a valid, active identity can be
// resolved from the Authorization header. On success the resolved user is
// attached to the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, authErr := m.resolveUser(r)
		if authErr != nil {
			WriteError(w, r, authErr)
			return
		}
		next.ServeHTTP(w, r.WithContext(NewContextWithUser(r.Context(), user)))
	})
}

// OptionalAuthenticate runs the same resolution chain but degrades every
// failure to an anonymous request. It never writes an error response.
func (m *Middleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, authErr := m.resolveUser(r)
		if authErr != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(NewContextWithUser(r.Context(), user)))
	})
}

// RequireAdmin passes only requests whose resolved identity holds the admin
// role. It must run after Authenticate; with no identity present it fails
// closed with 401 rather than treating the request as a non-admin.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			WriteError(w, r, apperror.NewAuthError("No token provided. Please login to access this resource.", nil))
			return
		}
		if !user.IsAdmin() {
			WriteError(w, r, apperror.NewForbiddenError("Admin access required", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}
