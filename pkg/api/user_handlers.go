package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/meridianworks/meridian/pkg/access"
	"github.com/meridianworks/meridian/pkg/directory"
	"github.com/meridianworks/meridian/pkg/httputil"
	"github.com/meridianworks/meridian/pkg/middleware"
	"github.com/meridianworks/meridian/pkg/observability"
)

// UserStore is the directory surface the user handlers need. Both the
// plain store and its cached wrapper satisfy it.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*directory.User, error)
	List(ctx context.Context) ([]directory.User, error)
	Create(ctx context.Context, user *directory.User) error
	UpdateAccess(ctx context.Context, id int64, role access.Role, permissions access.Bundle, departments []access.Department, dashboard string) error
	LinkAuthIdentity(ctx context.Context, email, authID string) (*directory.User, error)
	CountAdmins(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64) error
}

// UserHandlers provides HTTP handlers for user administration
type UserHandlers struct {
	store   UserStore
	engine  *access.Engine
	logger  *logrus.Logger
	metrics *observability.Metrics
}

// NewUserHandlers creates new user handlers. metrics may be nil.
func NewUserHandlers(store UserStore, engine *access.Engine, logger *logrus.Logger, metrics *observability.Metrics) *UserHandlers {
	return &UserHandlers{store: store, engine: engine, logger: logger, metrics: metrics}
}

// RegisterRoutes registers user administration routes. The link route is
// the one unguarded entry: the gateway calls it before the caller has an
// active identity.
func (h *UserHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/users/link", h.linkIdentity).Methods("POST")
	router.Handle("/api/v1/users", middleware.RequireIdentity(http.HandlerFunc(h.listUsers))).Methods("GET")
	router.Handle("/api/v1/users", middleware.RequireIdentity(http.HandlerFunc(h.createUser))).Methods("POST")
	router.Handle("/api/v1/users/{id}", middleware.RequireIdentity(http.HandlerFunc(h.getUser))).Methods("GET")
	router.Handle("/api/v1/users/{id}/access", middleware.RequireIdentity(http.HandlerFunc(h.updateAccess))).Methods("PUT")
	router.Handle("/api/v1/users/{id}", middleware.RequireIdentity(http.HandlerFunc(h.deleteUser))).Methods("DELETE")
}

func (h *UserHandlers) requireAdmin(w http.ResponseWriter, r *http.Request) *access.Profile {
	profile := middleware.GetProfile(r)
	if profile == nil {
		httputil.WriteUnauthorized(w, "authentication required")
		return nil
	}
	if !h.engine.HasPermission(profile, access.FlagManageUsers) {
		httputil.WriteForbidden(w, "user management permission required")
		return nil
	}
	return profile
}

// listUsers handles GET /api/v1/users. ?pending=true narrows the listing
// to invites that have not been activated yet.
func (h *UserHandlers) listUsers(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	users, err := h.store.List(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	pendingOnly := httputil.QueryBool(r, "pending", false)
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		if pendingOnly && !users[i].Pending() {
			continue
		}
		responses = append(responses, toUserResponse(&users[i]))
	}
	httputil.WriteSuccess(w, responses)
}

// getUser handles GET /api/v1/users/{id}
func (h *UserHandlers) getUser(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	user, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, directory.ErrNotFound) {
		httputil.WriteNotFoundError(w, "user not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, toUserResponse(user))
}

// createUser handles POST /api/v1/users, provisioning a pending invite.
// The invite starts on the role's default bundle; flag overrides come
// later through the access update endpoint.
func (h *UserHandlers) createUser(w http.ResponseWriter, r *http.Request) {
	actor := h.requireAdmin(w, r)
	if actor == nil {
		return
	}

	var req CreateUserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, "email", req.Email) || !httputil.RequireNonEmpty(w, "name", req.Name) {
		return
	}
	if !h.validateAssignment(w, req.Role, req.Departments) {
		return
	}

	user := &directory.User{Profile: access.Profile{
		Email:       req.Email,
		Name:        req.Name,
		Role:        req.Role,
		Permissions: h.engine.DefaultPermissions(req.Role),
		Departments: req.Departments,
	}}

	if err := h.store.Create(r.Context(), user); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	h.recordAdmin("create_user", true)
	h.logger.WithFields(logrus.Fields{
		"actor": actor.Email,
		"user":  user.Email,
		"role":  user.Role,
	}).Info("user invited")

	httputil.WriteCreated(w, toUserResponse(user))
}

// updateAccess handles PUT /api/v1/users/{id}/access
func (h *UserHandlers) updateAccess(w http.ResponseWriter, r *http.Request) {
	actor := h.requireAdmin(w, r)
	if actor == nil {
		return
	}

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req UpdateAccessRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	target, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, directory.ErrNotFound) {
		httputil.WriteNotFoundError(w, "user not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if !h.engine.CanModifyUser(actor.Role, target.Role) {
		h.recordAdmin("update_access", false)
		httputil.WriteForbidden(w, "cannot modify this user")
		return
	}
	if !h.validateAssignment(w, req.Role, req.Departments) {
		return
	}

	permissions := h.engine.DefaultPermissions(req.Role)
	if req.Permissions != nil {
		permissions = *req.Permissions
	}

	// Revoking the last user-management bundle would lock everyone out of
	// administration.
	if target.Permissions.CanManageUsers && !permissions.CanManageUsers {
		if !h.allowAdminRemoval(w, r, actor, target.ID) {
			return
		}
	}

	if err := h.store.UpdateAccess(r.Context(), id, req.Role, permissions, req.Departments, req.Dashboard); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	h.recordAdmin("update_access", true)
	h.logger.WithFields(logrus.Fields{
		"actor": actor.Email,
		"user":  target.Email,
		"role":  req.Role,
	}).Info("access updated")

	updated, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, toUserResponse(updated))
}

// deleteUser handles DELETE /api/v1/users/{id}
func (h *UserHandlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	actor := h.requireAdmin(w, r)
	if actor == nil {
		return
	}

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	target, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, directory.ErrNotFound) {
		httputil.WriteNotFoundError(w, "user not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if !h.engine.CanModifyUser(actor.Role, target.Role) {
		h.recordAdmin("delete_user", false)
		httputil.WriteForbidden(w, "cannot modify this user")
		return
	}
	if target.Permissions.CanManageUsers {
		if !h.allowAdminRemoval(w, r, actor, target.ID) {
			return
		}
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	h.recordAdmin("delete_user", true)
	h.logger.WithFields(logrus.Fields{
		"actor": actor.Email,
		"user":  target.Email,
	}).Info("user deleted")

	httputil.WriteNoContent(w)
}

// linkIdentity handles POST /api/v1/users/link. The gateway calls this on
// first successful login to activate a pending invite; it never reaches
// end users, so there is no profile guard here.
func (h *UserHandlers) linkIdentity(w http.ResponseWriter, r *http.Request) {
	var req LinkIdentityRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, "email", req.Email) || !httputil.RequireNonEmpty(w, "auth_id", req.AuthID) {
		return
	}

	user, err := h.store.LinkAuthIdentity(r.Context(), req.Email, req.AuthID)
	if errors.Is(err, directory.ErrNotFound) {
		httputil.WriteNotFoundError(w, "no pending invite for this email")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	h.logger.WithField("user", user.Email).Info("invite activated")
	httputil.WriteSuccess(w, toUserResponse(user))
}

// validateAssignment rejects unknown roles, the owner role, and unknown
// department scopes, writing the 4xx response itself.
func (h *UserHandlers) validateAssignment(w http.ResponseWriter, role access.Role, departments []access.Department) bool {
	if !role.Valid() {
		httputil.WriteBadRequest(w, "unknown role")
		return false
	}
	if role == access.RoleOwner {
		h.recordAdmin("assign_owner", false)
		httputil.WriteForbidden(w, "the owner role cannot be assigned")
		return false
	}
	for _, dept := range departments {
		if !dept.Valid() {
			httputil.WriteBadRequest(w, "unknown department")
			return false
		}
	}
	return true
}

// allowAdminRemoval applies the last-admin rule, writing 409 on refusal.
func (h *UserHandlers) allowAdminRemoval(w http.ResponseWriter, r *http.Request, actor *access.Profile, targetID int64) bool {
	count, err := h.store.CountAdmins(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return false
	}

	check := access.CanRemoveAdminPermission(count, targetID, actor.ID)
	if !check.Allowed {
		h.recordAdmin("remove_admin", false)
		httputil.WriteConflict(w, check.Reason)
		return false
	}
	return true
}

func (h *UserHandlers) recordAdmin(action string, applied bool) {
	if h.metrics != nil {
		h.metrics.RecordAdminAction(action, applied)
	}
}

func toUserResponse(user *directory.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role,
		Permissions: user.Permissions,
		Departments: user.Departments,
		Dashboard:   user.Dashboard,
		Pending:     user.Pending(),
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
