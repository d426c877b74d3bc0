package middleware

import (
	"net/http"

	"github.com/meridianworks/meridian/pkg/access"
	"github.com/meridianworks/meridian/pkg/httputil"
	"github.com/meridianworks/meridian/pkg/observability"
)

// RequireIdentity rejects anonymous requests and pending invites
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile := GetProfile(r)
		if profile == nil {
			httputil.WriteUnauthorized(w, "authentication required")
			return
		}
		if access.IsPendingUser(profile) {
			httputil.WriteForbidden(w, "account pending activation")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireFeature guards a route on a feature key. Anonymous requests get
// 401, denied callers 403. Decisions are counted when metrics are wired.
func RequireFeature(engine *access.Engine, feature access.Feature, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile := GetProfile(r)
			if profile == nil {
				httputil.WriteUnauthorized(w, "authentication required")
				return
			}

			allowed := engine.CanAccessFeature(profile, feature)
			if metrics != nil {
				metrics.RecordAccessDecision(string(feature), allowed)
			}
			if !allowed {
				httputil.WriteForbidden(w, "access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireFlag guards a route on a direct permission flag, without
// department inheritance.
func RequireFlag(engine *access.Engine, flag access.Flag) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile := GetProfile(r)
			if profile == nil {
				httputil.WriteUnauthorized(w, "authentication required")
				return
			}
			if !engine.HasPermission(profile, flag) {
				httputil.WriteForbidden(w, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
