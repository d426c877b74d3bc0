package access

import (
	"sort"
	"strings"
)

// Tables bundles the constant data the engine resolves against. Production
// code uses DefaultTables; tests may substitute smaller rule sets.
type Tables struct {
	Defaults    map[Role]Bundle
	Inheritance map[Department][]Role
	Rules       map[Feature]Predicate
	Dashboards  map[Role]string
}

// DefaultTables returns the built-in catalog, bundle, inheritance and
// feature tables.
func DefaultTables() Tables {
	return Tables{
		Defaults:    defaultBundles(),
		Inheritance: departmentRoles(),
		Rules:       featureRules(),
		Dashboards:  defaultDashboards(),
	}
}

// Engine evaluates feature gates and administrative meta-rules against
// user profiles. All tables are fixed at construction, so a single Engine
// is safe for unlimited concurrent use.
type Engine struct {
	ownerEmail string
	tables     Tables
}

// Option configures an Engine.
type Option func(*Engine)

// WithTables substitutes the engine's rule tables. Intended for tests.
func WithTables(t Tables) Option {
	return func(e *Engine) {
		e.tables = t
	}
}

// NewEngine creates an engine resolving against the built-in tables.
// ownerEmail is the single recognized identity that is auto-granted the
// owner role, matched case-insensitively.
func NewEngine(ownerEmail string, opts ...Option) *Engine {
	e := &Engine{
		ownerEmail: strings.ToLower(strings.TrimSpace(ownerEmail)),
		tables:     DefaultTables(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultPermissions returns the canonical bundle for a role. Unknown
// roles fail closed to the all-false bundle.
func (e *Engine) DefaultPermissions(role Role) Bundle {
	return e.tables.Defaults[role]
}

// InheritedRoles returns the deduplicated set of staff roles a manager
// profile should additionally behave as during feature checks. It is empty
// unless the profile is a manager with at least one department scope.
// Unrecognized scopes contribute nothing.
func (e *Engine) InheritedRoles(p *Profile) []Role {
	if p == nil || p.Role != RoleManager || len(p.Departments) == 0 {
		return nil
	}

	seen := make(map[Role]bool)
	var roles []Role
	for _, dept := range p.Departments {
		for _, r := range e.tables.Inheritance[dept] {
			if !seen[r] {
				seen[r] = true
				roles = append(roles, r)
			}
		}
	}
	return roles
}

// CanAccessFeature decides whether the profile may use the named feature.
// The profile is checked directly first; if that fails and the profile is
// a manager with department scope, the predicate is re-evaluated once per
// inherited staff role against a virtual profile carrying that role and
// its default bundle. Nil profiles and unknown features always deny.
func (e *Engine) CanAccessFeature(p *Profile, feature Feature) bool {
	if p == nil {
		return false
	}

	rule, ok := e.tables.Rules[feature]
	if !ok {
		return false
	}

	if rule(p) {
		return true
	}

	for _, inherited := range e.InheritedRoles(p) {
		// Fresh copy per attempt; predicates must never observe a
		// half-substituted profile shared across evaluations. The virtual
		// profile carries the inherited role's own default bundle so the
		// check emulates what a genuine staff member of that role could do.
		virtual := *p
		virtual.Role = inherited
		virtual.Permissions = e.DefaultPermissions(inherited)
		virtual.Departments = nil
		if rule(&virtual) {
			return true
		}
	}
	return false
}

// Features returns every known feature key in sorted order. Bulk
// evaluation for menu building iterates this so responses are stable.
func (e *Engine) Features() []Feature {
	features := make([]Feature, 0, len(e.tables.Rules))
	for f := range e.tables.Rules {
		features = append(features, f)
	}
	sort.Slice(features, func(i, j int) bool { return features[i] < features[j] })
	return features
}

// HasPermission reads a single capability flag off the profile. No
// inheritance applies; this is a direct bundle read.
func (e *Engine) HasPermission(p *Profile, flag Flag) bool {
	return p != nil && p.Permissions.Has(flag)
}

// IsRole reports whether the profile's role is one of the given roles.
func (e *Engine) IsRole(p *Profile, roles ...Role) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// DashboardType returns the dashboard the UI should route the profile to:
// the profile's explicit override when set, otherwise the role default.
func (e *Engine) DashboardType(p *Profile) string {
	if p == nil {
		return DashboardWorkspace
	}
	if p.Dashboard != "" {
		return p.Dashboard
	}
	if d, ok := e.tables.Dashboards[p.Role]; ok {
		return d
	}
	return DashboardWorkspace
}

// IsOwnerEmail reports whether the email identifies the recognized owner.
// Matching is a case-insensitive exact comparison.
func (e *Engine) IsOwnerEmail(email string) bool {
	return e.ownerEmail != "" && strings.EqualFold(strings.TrimSpace(email), e.ownerEmail)
}
