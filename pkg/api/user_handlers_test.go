package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianworks/meridian/pkg/access"
	"github.com/meridianworks/meridian/pkg/directory"
)

// fakeStore is an in-memory UserStore for handler tests
type fakeStore struct {
	users  map[int64]*directory.User
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[int64]*directory.User), nextID: 1}
}

func (s *fakeStore) add(role access.Role, manageUsers bool) *directory.User {
	engine := access.NewEngine("owner@example.com")
	bundle := engine.DefaultPermissions(role)
	bundle.CanManageUsers = manageUsers

	user := &directory.User{Profile: access.Profile{
		ID:          s.nextID,
		Email:       fmt.Sprintf("user%d@example.com", s.nextID),
		Name:        fmt.Sprintf("User %d", s.nextID),
		Role:        role,
		Permissions: bundle,
		AuthID:      "auth0|x",
	}}
	s.users[s.nextID] = user
	s.nextID++
	return user
}

func (s *fakeStore) GetByID(_ context.Context, id int64) (*directory.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, directory.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (s *fakeStore) List(_ context.Context) ([]directory.User, error) {
	var users []directory.User
	for _, u := range s.users {
		users = append(users, *u)
	}
	return users, nil
}

func (s *fakeStore) Create(_ context.Context, user *directory.User) error {
	user.ID = s.nextID
	s.nextID++
	copy := *user
	s.users[user.ID] = &copy
	return nil
}

func (s *fakeStore) UpdateAccess(_ context.Context, id int64, role access.Role, permissions access.Bundle, departments []access.Department, dashboard string) error {
	user, ok := s.users[id]
	if !ok {
		return directory.ErrNotFound
	}
	user.Role = role
	user.Permissions = permissions
	user.Departments = departments
	user.Dashboard = dashboard
	return nil
}

func (s *fakeStore) LinkAuthIdentity(_ context.Context, email, authID string) (*directory.User, error) {
	for _, u := range s.users {
		if u.Email == email && u.AuthID == "" {
			u.AuthID = authID
			copy := *u
			return &copy, nil
		}
	}
	return nil, directory.ErrNotFound
}

func (s *fakeStore) CountAdmins(_ context.Context) (int, error) {
	count := 0
	for _, u := range s.users {
		if u.Permissions.CanManageUsers {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.users[id]; !ok {
		return directory.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func newUserRouter(store UserStore) *mux.Router {
	engine := access.NewEngine("owner@example.com")
	router := mux.NewRouter()
	NewUserHandlers(store, engine, testLogger(), nil).RegisterRoutes(router)
	return router
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestCreateUser(t *testing.T) {
	store := newFakeStore()
	router := newUserRouter(store)

	body := jsonBody(t, CreateUserRequest{
		Email:       "new@example.com",
		Name:        "New Hire",
		Role:        access.RoleEngineer,
		Departments: []access.Department{access.DeptEngineering},
	})
	rec := serveAs(t, router, profileFor(access.RoleSysadmin), "POST", "/api/v1/users", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Pending, "invites start pending")
	assert.Equal(t, access.RoleEngineer, resp.Role)
	assert.True(t, resp.Permissions.CanFillCosts, "default bundle for the role is applied")
	assert.False(t, resp.Permissions.CanManageUsers)
}

func TestCreateUser_Validation(t *testing.T) {
	store := newFakeStore()
	router := newUserRouter(store)
	admin := profileFor(access.RoleSysadmin)

	// Non-admins cannot invite.
	rec := serveAs(t, router, profileFor(access.RoleEngineer), "POST", "/api/v1/users",
		jsonBody(t, CreateUserRequest{Email: "x@example.com", Name: "X", Role: access.RoleHR}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Anonymous gets 401.
	rec = serveAs(t, router, nil, "POST", "/api/v1/users",
		jsonBody(t, CreateUserRequest{Email: "x@example.com", Name: "X", Role: access.RoleHR}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Unknown role.
	rec = serveAs(t, router, admin, "POST", "/api/v1/users",
		jsonBody(t, CreateUserRequest{Email: "x@example.com", Name: "X", Role: "superuser"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The owner role can never be handed out.
	rec = serveAs(t, router, admin, "POST", "/api/v1/users",
		jsonBody(t, CreateUserRequest{Email: "x@example.com", Name: "X", Role: access.RoleOwner}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Unknown department scope.
	rec = serveAs(t, router, admin, "POST", "/api/v1/users",
		jsonBody(t, CreateUserRequest{Email: "x@example.com", Name: "X", Role: access.RoleManager,
			Departments: []access.Department{"warehouse"}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing fields.
	rec = serveAs(t, router, admin, "POST", "/api/v1/users",
		jsonBody(t, CreateUserRequest{Role: access.RoleHR}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAndGetUsers(t *testing.T) {
	store := newFakeStore()
	store.add(access.RoleEngineer, false)
	target := store.add(access.RoleFinance, false)
	router := newUserRouter(store)
	admin := profileFor(access.RoleSysadmin)

	rec := serveAs(t, router, admin, "GET", "/api/v1/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	rec = serveAs(t, router, admin, "GET", fmt.Sprintf("/api/v1/users/%d", target.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, target.Email, resp.Email)

	rec = serveAs(t, router, admin, "GET", "/api/v1/users/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serveAs(t, router, profileFor(access.RoleHR), "GET", "/api/v1/users", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListUsers_PendingFilter(t *testing.T) {
	store := newFakeStore()
	store.add(access.RoleEngineer, false)
	invite := store.add(access.RoleFinance, false)
	store.users[invite.ID].AuthID = ""
	router := newUserRouter(store)

	rec := serveAs(t, router, profileFor(access.RoleSysadmin), "GET", "/api/v1/users?pending=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1, "only unactivated invites are listed")
	assert.Equal(t, invite.Email, list[0].Email)
	assert.True(t, list[0].Pending)
}

func TestUpdateAccess(t *testing.T) {
	store := newFakeStore()
	target := store.add(access.RoleEngineer, false)
	router := newUserRouter(store)

	body := jsonBody(t, UpdateAccessRequest{
		Role:        access.RoleManager,
		Departments: []access.Department{access.DeptOperations},
		Dashboard:   access.DashboardOperations,
	})
	rec := serveAs(t, router, profileFor(access.RoleDirector), "PUT",
		fmt.Sprintf("/api/v1/users/%d/access", target.ID), body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, access.RoleManager, resp.Role)
	assert.True(t, resp.Permissions.CanApproveJobOrder, "role change resets to the new role's defaults")
	assert.Equal(t, []access.Department{access.DeptOperations}, resp.Departments)
}

func TestUpdateAccess_ExplicitBundleOverride(t *testing.T) {
	store := newFakeStore()
	target := store.add(access.RoleEngineer, false)
	router := newUserRouter(store)

	engine := access.NewEngine("owner@example.com")
	bundle := engine.DefaultPermissions(access.RoleEngineer)
	bundle.CanSeeRevenue = true

	rec := serveAs(t, router, profileFor(access.RoleDirector), "PUT",
		fmt.Sprintf("/api/v1/users/%d/access", target.ID),
		jsonBody(t, UpdateAccessRequest{Role: access.RoleEngineer, Permissions: &bundle}))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Permissions.CanSeeRevenue)
}

func TestUpdateAccess_Guards(t *testing.T) {
	store := newFakeStore()
	owner := store.add(access.RoleOwner, true)
	peer := store.add(access.RoleEngineer, false)
	router := newUserRouter(store)

	// The owner profile is immutable, even for directors.
	rec := serveAs(t, router, profileFor(access.RoleDirector), "PUT",
		fmt.Sprintf("/api/v1/users/%d/access", owner.ID),
		jsonBody(t, UpdateAccessRequest{Role: access.RoleEngineer}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Managers hold no user-management flag at all.
	rec = serveAs(t, router, profileFor(access.RoleManager), "PUT",
		fmt.Sprintf("/api/v1/users/%d/access", peer.ID),
		jsonBody(t, UpdateAccessRequest{Role: access.RoleHR}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serveAs(t, router, profileFor(access.RoleSysadmin), "PUT", "/api/v1/users/999/access",
		jsonBody(t, UpdateAccessRequest{Role: access.RoleHR}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateAccess_LastAdminRule(t *testing.T) {
	store := newFakeStore()
	admin := store.add(access.RoleSysadmin, true)
	router := newUserRouter(store)

	engine := access.NewEngine("owner@example.com")
	demoted := engine.DefaultPermissions(access.RoleEngineer)

	// The sole admin demoting themselves is refused.
	actor := profileFor(access.RoleSysadmin)
	actor.ID = admin.ID
	rec := serveAs(t, router, actor, "PUT",
		fmt.Sprintf("/api/v1/users/%d/access", admin.ID),
		jsonBody(t, UpdateAccessRequest{Role: access.RoleEngineer, Permissions: &demoted}))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// With a second admin present the same demotion goes through.
	store.add(access.RoleSysadmin, true)
	rec = serveAs(t, router, actor, "PUT",
		fmt.Sprintf("/api/v1/users/%d/access", admin.ID),
		jsonBody(t, UpdateAccessRequest{Role: access.RoleEngineer, Permissions: &demoted}))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	store := newFakeStore()
	target := store.add(access.RoleEngineer, false)
	owner := store.add(access.RoleOwner, true)
	router := newUserRouter(store)

	rec := serveAs(t, router, profileFor(access.RoleDirector), "DELETE",
		fmt.Sprintf("/api/v1/users/%d", owner.ID), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "owner cannot be deleted")

	rec = serveAs(t, router, profileFor(access.RoleDirector), "DELETE",
		fmt.Sprintf("/api/v1/users/%d", target.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serveAs(t, router, profileFor(access.RoleDirector), "DELETE",
		fmt.Sprintf("/api/v1/users/%d", target.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteUser_LastAdminRule(t *testing.T) {
	store := newFakeStore()
	admin := store.add(access.RoleSysadmin, true)
	router := newUserRouter(store)

	// Deleting yourself as the last admin is refused.
	actor := profileFor(access.RoleDirector)
	actor.ID = admin.ID
	rec := serveAs(t, router, actor, "DELETE", fmt.Sprintf("/api/v1/users/%d", admin.ID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLinkIdentity(t *testing.T) {
	store := newFakeStore()
	invite := store.add(access.RoleFinance, false)
	invite.AuthID = ""
	store.users[invite.ID].AuthID = ""
	router := newUserRouter(store)

	rec := serveAs(t, router, nil, "POST", "/api/v1/users/link",
		jsonBody(t, LinkIdentityRequest{Email: invite.Email, AuthID: "auth0|fresh"}))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Pending)

	// Already linked: no pending invite left for this email.
	rec = serveAs(t, router, nil, "POST", "/api/v1/users/link",
		jsonBody(t, LinkIdentityRequest{Email: invite.Email, AuthID: "auth0|other"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serveAs(t, router, nil, "POST", "/api/v1/users/link",
		jsonBody(t, LinkIdentityRequest{Email: "", AuthID: "auth0|x"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
