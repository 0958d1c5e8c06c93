package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Prompt is a named instruction template with a version history.
type Prompt struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PromptVersion is one numbered snapshot of a prompt's text.
// Version numbers start at 1 and are gapless ascending per prompt; the
// highest number is the current version.
type PromptVersion struct {
	ID            string    `json:"id"`
	PromptID      string    `json:"prompt_id"`
	VersionNumber int       `json:"version_number"`
	PromptText    string    `json:"prompt_text"`
	Comments      string    `json:"comments,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreatePrompt inserts a new prompt under a project.
func (s *Store) CreatePrompt(ctx context.Context, projectID, name string) (*Prompt, error) {
	p := &Prompt{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prompts (id, project_id, name, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.ProjectID, p.Name, formatTime(p.CreatedAt),
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPrompt returns a prompt by ID.
func (s *Store) GetPrompt(ctx context.Context, id string) (*Prompt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, name, created_at FROM prompts WHERE id = ?`, id)

	p := &Prompt{}
	var createdAt string
	err := row.Scan(&p.ID, &p.ProjectID, &p.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}

// ListPrompts returns all prompts under a project.
func (s *Store) ListPrompts(ctx context.Context, projectID string) ([]*Prompt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, name, created_at FROM prompts
		 WHERE project_id = ? ORDER BY created_at`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []*Prompt
	for rows.Next() {
		p := &Prompt{}
		var createdAt string
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.Name, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = parseTime(createdAt)
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

// RenamePrompt updates a prompt's display name.
func (s *Store) RenamePrompt(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE prompts SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePrompt removes a prompt and cascades to all its versions.
func (s *Store) DeletePrompt(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM prompt_versions WHERE prompt_id = ?`, id); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM prompts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertVersion appends a version row. The caller (versioning service) owns
// version-number assignment.
func (s *Store) InsertVersion(ctx context.Context, v *PromptVersion) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prompt_versions (id, prompt_id, version_number, prompt_text, comments, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID, v.PromptID, v.VersionNumber, v.PromptText, v.Comments, formatTime(v.CreatedAt),
	)
	return err
}

// UpdateVersion rewrites a version's mutable fields in place. The version
// number is never changed here.
func (s *Store) UpdateVersion(ctx context.Context, v *PromptVersion) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE prompt_versions SET prompt_text = ?, comments = ? WHERE id = ?`,
		v.PromptText, v.Comments, v.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetVersion returns a version by its own ID.
func (s *Store) GetVersion(ctx context.Context, id string) (*PromptVersion, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, prompt_id, version_number, prompt_text, COALESCE(comments,''), created_at
		 FROM prompt_versions WHERE id = ?`, id)
	return scanVersion(row)
}

// LatestVersion returns the highest-numbered version for a prompt, or
// ErrNotFound if the prompt has no versions yet.
func (s *Store) LatestVersion(ctx context.Context, promptID string) (*PromptVersion, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, prompt_id, version_number, prompt_text, COALESCE(comments,''), created_at
		 FROM prompt_versions WHERE prompt_id = ?
		 ORDER BY version_number DESC LIMIT 1`, promptID)
	return scanVersion(row)
}

// ListVersions returns all versions for a prompt in ascending version order.
func (s *Store) ListVersions(ctx context.Context, promptID string) ([]*PromptVersion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, prompt_id, version_number, prompt_text, COALESCE(comments,''), created_at
		 FROM prompt_versions WHERE prompt_id = ? ORDER BY version_number`, promptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []*PromptVersion
	for rows.Next() {
		v := &PromptVersion{}
		var createdAt string
		if err := rows.Scan(&v.ID, &v.PromptID, &v.VersionNumber, &v.PromptText, &v.Comments, &createdAt); err != nil {
			return nil, err
		}
		v.CreatedAt = parseTime(createdAt)
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func scanVersion(row *sql.Row) (*PromptVersion, error) {
	v := &PromptVersion{}
	var createdAt string
	err := row.Scan(&v.ID, &v.PromptID, &v.VersionNumber, &v.PromptText, &v.Comments, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	v.CreatedAt = parseTime(createdAt)
	return v, nil
}
