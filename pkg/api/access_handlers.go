package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/meridianworks/meridian/pkg/access"
	"github.com/meridianworks/meridian/pkg/httputil"
	"github.com/meridianworks/meridian/pkg/middleware"
	"github.com/meridianworks/meridian/pkg/observability"
)

// AccessHandlers provides HTTP handlers for feature checks
type AccessHandlers struct {
	engine  *access.Engine
	logger  *logrus.Logger
	metrics *observability.Metrics
}

// NewAccessHandlers creates new access handlers. metrics may be nil.
func NewAccessHandlers(engine *access.Engine, logger *logrus.Logger, metrics *observability.Metrics) *AccessHandlers {
	return &AccessHandlers{engine: engine, logger: logger, metrics: metrics}
}

// RegisterRoutes registers access routes. Every route requires an active
// identity; pending invites are refused before the handler runs.
func (h *AccessHandlers) RegisterRoutes(router *mux.Router) {
	router.Handle("/api/v1/access/check", middleware.RequireIdentity(http.HandlerFunc(h.checkFeature))).Methods("GET")
	router.Handle("/api/v1/access/features", middleware.RequireIdentity(http.HandlerFunc(h.listGrants))).Methods("GET")
	router.Handle("/api/v1/access/roles/assignable", middleware.RequireIdentity(http.HandlerFunc(h.assignableRoles))).Methods("GET")
}

// checkFeature handles GET /api/v1/access/check?feature=<key>
func (h *AccessHandlers) checkFeature(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfile(r)
	if profile == nil {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}

	feature := httputil.QueryString(r, "feature", "")
	if !httputil.RequireNonEmpty(w, "feature", feature) {
		return
	}

	allowed := h.engine.CanAccessFeature(profile, access.Feature(feature))
	if h.metrics != nil {
		h.metrics.RecordAccessDecision(feature, allowed)
	}

	h.logger.WithFields(logrus.Fields{
		"actor":   profile.Email,
		"feature": feature,
		"allowed": allowed,
	}).Debug("feature check")

	httputil.WriteSuccess(w, CheckResponse{Feature: feature, Allowed: allowed})
}

// listGrants handles GET /api/v1/access/features, evaluating every known
// feature for the caller in one pass. The UI builds its menus from this.
func (h *AccessHandlers) listGrants(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfile(r)
	if profile == nil {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}

	features := h.engine.Features()
	grants := make(map[string]bool, len(features))
	for _, feature := range features {
		grants[string(feature)] = h.engine.CanAccessFeature(profile, feature)
	}

	httputil.WriteSuccess(w, FeatureGrantsResponse{
		Dashboard: h.engine.DashboardType(profile),
		Features:  grants,
	})
}

// assignableRoles handles GET /api/v1/access/roles/assignable
func (h *AccessHandlers) assignableRoles(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfile(r)
	if profile == nil {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}
	if !h.engine.HasPermission(profile, access.FlagManageUsers) {
		httputil.WriteForbidden(w, "user management permission required")
		return
	}

	httputil.WriteSuccess(w, AssignableRolesResponse{Roles: h.engine.AssignableRoles()})
}
