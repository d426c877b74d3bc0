// Package middleware resolves the caller's identity and guards routes on
// feature access. Sessions are terminated upstream; the gateway forwards
// the authenticated email in the X-Meridian-User header.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/meridianworks/meridian/pkg/access"
	"github.com/meridianworks/meridian/pkg/directory"
	"github.com/meridianworks/meridian/pkg/httputil"
	"github.com/meridianworks/meridian/pkg/observability"
)

// IdentityHeader carries the authenticated email set by the gateway.
const IdentityHeader = "X-Meridian-User"

type contextKey string

const profileKey contextKey = "meridian.profile"

// ProfileSource is the subset of the directory needed to resolve callers.
type ProfileSource interface {
	GetByEmail(ctx context.Context, email string) (*directory.User, error)
}

// WithProfile stashes a resolved profile on the context
func WithProfile(ctx context.Context, p *access.Profile) context.Context {
	return context.WithValue(ctx, profileKey, p)
}

// GetProfile returns the caller's profile, or nil for anonymous requests
func GetProfile(r *http.Request) *access.Profile {
	p, _ := r.Context().Value(profileKey).(*access.Profile)
	return p
}

// Identity resolves the caller's profile from the identity header.
//
// The configured owner email is always recognized: it is granted the owner
// role and the owner bundle even before a directory row exists, so a fresh
// install is never locked out. Requests without the header pass through
// anonymous; the route guards decide what that means.
func Identity(engine *access.Engine, profiles ProfileSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := strings.ToLower(strings.TrimSpace(r.Header.Get(IdentityHeader)))
			if email == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := observability.WithActor(r.Context(), email)

			user, err := profiles.GetByEmail(ctx, email)
			switch {
			case err == nil:
				profile := user.Profile
				if engine.IsOwnerEmail(email) {
					profile.Role = access.RoleOwner
					profile.Permissions = engine.DefaultPermissions(access.RoleOwner)
				}
				ctx = WithProfile(ctx, &profile)

			case errors.Is(err, directory.ErrNotFound):
				if !engine.IsOwnerEmail(email) {
					httputil.WriteUnauthorized(w, "unknown identity")
					return
				}
				ctx = WithProfile(ctx, &access.Profile{
					Email:       email,
					Role:        access.RoleOwner,
					Permissions: engine.DefaultPermissions(access.RoleOwner),
					AuthID:      "gateway",
				})

			default:
				httputil.WriteInternalError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
