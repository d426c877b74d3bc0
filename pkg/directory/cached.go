package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridianworks/meridian/pkg/access"
	"github.com/meridianworks/meridian/pkg/observability"
)

// CachedStore fronts a Store with a ProfileCache. Lookups by ID and email
// are cache-aside; every write invalidates both keys for the affected row
// so readers never see a stale access assignment past the cache TTL.
type CachedStore struct {
	*Store
	cache   ProfileCache
	metrics *observability.Metrics
}

// NewCachedStore wraps a store with a cache. metrics may be nil.
func NewCachedStore(store *Store, cache ProfileCache, metrics *observability.Metrics) *CachedStore {
	return &CachedStore{Store: store, cache: cache, metrics: metrics}
}

func idKey(id int64) string { return fmt.Sprintf("profile:id:%d", id) }

func emailKey(email string) string {
	return fmt.Sprintf("profile:email:%s", strings.ToLower(strings.TrimSpace(email)))
}

// GetByID retrieves a profile by ID, consulting the cache first
func (c *CachedStore) GetByID(ctx context.Context, id int64) (*User, error) {
	if user, ok := c.cache.Get(ctx, idKey(id)); ok {
		c.recordHit()
		return user, nil
	}
	c.recordMiss()

	user, err := c.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.cache.Set(ctx, idKey(user.ID), user)
	c.cache.Set(ctx, emailKey(user.Email), user)
	return user, nil
}

// GetByEmail retrieves a profile by email, consulting the cache first
func (c *CachedStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	if user, ok := c.cache.Get(ctx, emailKey(email)); ok {
		c.recordHit()
		return user, nil
	}
	c.recordMiss()

	user, err := c.Store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	c.cache.Set(ctx, idKey(user.ID), user)
	c.cache.Set(ctx, emailKey(user.Email), user)
	return user, nil
}

// Create inserts a profile and drops any cached entry for its email
func (c *CachedStore) Create(ctx context.Context, user *User) error {
	if err := c.Store.Create(ctx, user); err != nil {
		return err
	}
	c.cache.Delete(ctx, emailKey(user.Email), idKey(user.ID))
	return nil
}

// UpdateAccess updates a profile's access assignment and invalidates it
func (c *CachedStore) UpdateAccess(ctx context.Context, id int64, role access.Role, permissions access.Bundle, departments []access.Department, dashboard string) error {
	if err := c.Store.UpdateAccess(ctx, id, role, permissions, departments, dashboard); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// LinkAuthIdentity activates a pending profile and invalidates it
func (c *CachedStore) LinkAuthIdentity(ctx context.Context, email, authID string) (*User, error) {
	user, err := c.Store.LinkAuthIdentity(ctx, email, authID)
	if err != nil {
		return nil, err
	}
	c.cache.Delete(ctx, emailKey(user.Email), idKey(user.ID))
	return user, nil
}

// Delete removes a profile and invalidates it. The email key is captured
// before the row goes away, but the cache is only dropped after the
// delete commits; invalidating first would let a concurrent lookup
// re-populate the keys from the still-present row.
func (c *CachedStore) Delete(ctx context.Context, id int64) error {
	keys := []string{idKey(id)}
	if user, err := c.Store.GetByID(ctx, id); err == nil {
		keys = append(keys, emailKey(user.Email))
	}
	if err := c.Store.Delete(ctx, id); err != nil {
		return err
	}
	c.cache.Delete(ctx, keys...)
	return nil
}

// invalidate drops both cache keys for the row, looking up the email
// through the underlying store so the cached copy is never trusted.
func (c *CachedStore) invalidate(ctx context.Context, id int64) {
	keys := []string{idKey(id)}
	if user, err := c.Store.GetByID(ctx, id); err == nil {
		keys = append(keys, emailKey(user.Email))
	}
	c.cache.Delete(ctx, keys...)
}

func (c *CachedStore) recordHit() {
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.WithLabelValues(c.cache.Name()).Inc()
	}
}

func (c *CachedStore) recordMiss() {
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.WithLabelValues(c.cache.Name()).Inc()
	}
}
