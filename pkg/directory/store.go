package directory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meridianworks/meridian/pkg/access"
)

// ErrNotFound is returned when no profile matches the lookup.
var ErrNotFound = errors.New("profile not found")

// User is a stored profile with persistence metadata.
type User struct {
	access.Profile
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pending reports whether the user has not yet linked an auth identity.
func (u *User) Pending() bool {
	return access.IsPendingUser(&u.Profile)
}

// Store handles profile persistence
type Store struct {
	db *sql.DB
}

// NewStore creates a new profile store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const profileColumns = `id, email, name, role, permissions, departments, dashboard, auth_id, created_at, updated_at`

// Create inserts a new profile. The row starts as a pending invite until
// an auth identity is linked. The admin flag column is derived from the
// permission bundle so last-admin counting stays a single indexed query.
func (s *Store) Create(ctx context.Context, user *User) error {
	permissionsJSON, err := json.Marshal(user.Permissions)
	if err != nil {
		return fmt.Errorf("failed to marshal permissions: %w", err)
	}
	departmentsJSON, err := json.Marshal(user.Departments)
	if err != nil {
		return fmt.Errorf("failed to marshal departments: %w", err)
	}

	query := `
		INSERT INTO user_profiles (email, name, role, permissions, departments, dashboard, auth_id, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	now := time.Now()
	err = s.db.QueryRowContext(ctx, query,
		strings.ToLower(strings.TrimSpace(user.Email)),
		user.Name,
		string(user.Role),
		string(permissionsJSON),
		string(departmentsJSON),
		nullString(user.Dashboard),
		nullString(user.AuthID),
		user.Permissions.CanManageUsers,
		now,
		now,
	).Scan(&user.ID)

	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByID retrieves a profile by ID
func (s *Store) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a profile by email, matched case-insensitively
func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE email = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// List returns all profiles ordered by name
func (s *Store) List(ctx context.Context) ([]User, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles ORDER BY name ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}

	return users, rows.Err()
}

// UpdateAccess replaces a profile's role, permission bundle, department
// scopes and dashboard override in one write.
func (s *Store) UpdateAccess(ctx context.Context, id int64, role access.Role, permissions access.Bundle, departments []access.Department, dashboard string) error {
	permissionsJSON, err := json.Marshal(permissions)
	if err != nil {
		return fmt.Errorf("failed to marshal permissions: %w", err)
	}
	departmentsJSON, err := json.Marshal(departments)
	if err != nil {
		return fmt.Errorf("failed to marshal departments: %w", err)
	}

	query := `
		UPDATE user_profiles
		SET role = $1, permissions = $2, departments = $3, dashboard = $4, is_admin = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(ctx, query,
		string(role),
		string(permissionsJSON),
		string(departmentsJSON),
		nullString(dashboard),
		permissions.CanManageUsers,
		time.Now(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update access: %w", err)
	}

	return requireRowAffected(result)
}

// LinkAuthIdentity attaches an authentication identity to the pending
// profile with the given email, activating it.
func (s *Store) LinkAuthIdentity(ctx context.Context, email, authID string) (*User, error) {
	query := `
		UPDATE user_profiles
		SET auth_id = $1, updated_at = $2
		WHERE email = $3 AND auth_id IS NULL
	`

	result, err := s.db.ExecContext(ctx, query, authID, time.Now(), strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to link auth identity: %w", err)
	}
	if err := requireRowAffected(result); err != nil {
		return nil, err
	}

	return s.GetByEmail(ctx, email)
}

// CountAdmins returns the number of profiles holding the user management
// permission.
func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_profiles WHERE is_admin = TRUE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

// PurgeStalePending deletes pending invites older than the TTL and
// returns how many were removed. A zero TTL disables the purge.
func (s *Store) PurgeStalePending(ctx context.Context, ttl time.Duration) (int64, error) {
	if ttl <= 0 {
		return 0, nil
	}

	cutoff := time.Now().Add(-ttl)
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM user_profiles WHERE auth_id IS NULL AND created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge pending invites: %w", err)
	}

	return result.RowsAffected()
}

// Delete removes a profile
func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM user_profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return requireRowAffected(result)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *Store) scanOne(row *sql.Row) (*User, error) {
	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func scanUser(row rowScanner) (*User, error) {
	var user User
	var permissionsJSON, departmentsJSON string
	var dashboard, authID sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&permissionsJSON,
		&departmentsJSON,
		&dashboard,
		&authID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}

	if err := json.Unmarshal([]byte(permissionsJSON), &user.Permissions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
	}
	if err := json.Unmarshal([]byte(departmentsJSON), &user.Departments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal departments: %w", err)
	}

	if dashboard.Valid {
		user.Dashboard = dashboard.String
	}
	if authID.Valid {
		user.AuthID = authID.String
	}

	return &user, nil
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
