// Package access implements Meridian's role-based authorization and
// feature-gating engine.
//
// # Overview
//
// Every UI surface and server-side action in the suite is gated by a named
// feature key. The engine answers one question: may this profile use this
// feature? It resolves the answer from four constant tables fixed at
// process start:
//
//   - the role catalog (11 closed roles, one distinguished owner)
//   - the default permission-bundle table (one bundle per role)
//   - the department inheritance map (manager scope -> staff roles)
//   - the feature rule table (~150 feature keys -> predicates)
//
// # Resolution
//
// A feature check evaluates the feature's predicate against the profile
// directly. If that denies and the profile is a manager with department
// scope, the predicate is re-evaluated against one virtual profile per
// inherited staff role, each carrying that role's default bundle:
//
//	engine := access.NewEngine("owner@example.com")
//	ok := engine.CanAccessFeature(profile, "jo.fill_costs")
//
// Direct grants are never revoked by inheritance; the inherited pass is a
// pure existence check over the scoped staff roles.
//
// # Fail-closed semantics
//
// Degenerate input never raises an error. A nil profile denies every
// feature, unknown feature keys deny, and unknown roles or department
// scopes resolve to the most restrictive outcome. These are expected
// inputs (stale clients referencing retired keys, operator-entered scope
// values), not faults.
//
// # Administrative meta-rules
//
// CanModifyUser, AssignableRoles, CanRemoveAdminPermission and
// IsPendingUser enforce who may change whose access: the owner assignment
// is immutable, owner is never assignable, and the last administrator may
// not demote themselves.
//
// # Concurrency
//
// All lookups are synchronous pure functions over immutable tables; one
// Engine may be shared by any number of goroutines without coordination.
//
// # Related Packages
//
//   - pkg/directory: persistence of user profiles
//   - pkg/middleware: per-request profile resolution and route guards
package access
