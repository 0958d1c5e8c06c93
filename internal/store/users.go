package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// User is an account record. Authentication is handled outside the core;
// the store only tracks identity and per-provider API keys.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUser inserts a new user and returns it with a generated ID.
func (s *Store) CreateUser(ctx context.Context, name, email string) (*User, error) {
	u := &User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, formatTime(u.CreatedAt),
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser returns a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, COALESCE(name,''), email, created_at FROM users WHERE id = ?`, id)

	u := &User{}
	var createdAt string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

// GetUserByEmail returns a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, COALESCE(name,''), email, created_at FROM users WHERE email = ?`, email)

	u := &User{}
	var createdAt string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

// SetUserKey stores (or replaces) a user's API key for a provider.
// The raw key is persisted only here and read back solely for outbound calls.
func (s *Store) SetUserKey(ctx context.Context, userID, provider, apiKey string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_keys (user_id, provider, api_key) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, provider) DO UPDATE SET api_key = excluded.api_key`,
		userID, provider, apiKey,
	)
	return err
}

// GetUserKey returns the stored API key for a user/provider pair.
// Returns ErrMissingCredential when no key is stored.
func (s *Store) GetUserKey(ctx context.Context, userID, provider string) (string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT api_key FROM user_keys WHERE user_id = ? AND provider = ?`, userID, provider)

	var key string
	err := row.Scan(&key)
	if err == sql.ErrNoRows {
		return "", ErrMissingCredential
	}
	if err != nil {
		return "", err
	}
	return key, nil
}

// ListUserKeyProviders returns the provider names the user has keys for.
// Key material is intentionally not returned.
func (s *Store) ListUserKeyProviders(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT provider FROM user_keys WHERE user_id = ? ORDER BY provider`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var providers []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}
