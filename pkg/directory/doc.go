// Package directory persists user profiles and their access assignments.
//
// The store keeps one row per user in user_profiles. A row created before
// the user has linked an authentication identity is a pending invite;
// pending rows older than the configured TTL are swept by the purge job.
// Reads can be fronted by an in-process LRU cache or a Redis cache, both
// invalidated on every write.
package directory
