package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TestCase is one sample user input inside a test set. IDs are assigned in
// append order and stay unique within the set across deletes.
type TestCase struct {
	ID     int    `json:"id"`
	Prompt string `json:"prompt"`
}

// TestSet is a named, ordered collection of test cases owned by a project.
type TestSet struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"project_id"`
	Name      string     `json:"name"`
	Tests     []TestCase `json:"tests"`
	CreatedAt time.Time  `json:"created_at"`
}

// CreateTestSet inserts an empty test set under a project.
func (s *Store) CreateTestSet(ctx context.Context, projectID, name string) (*TestSet, error) {
	ts := &TestSet{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		Tests:     []TestCase{},
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO testsets (id, project_id, name, tests, created_at) VALUES (?, ?, ?, '[]', ?)`,
		ts.ID, ts.ProjectID, ts.Name, formatTime(ts.CreatedAt),
	)
	if err != nil {
		return nil, err
	}
	return ts, nil
}

// GetTestSet returns a test set by ID, including its cases.
func (s *Store) GetTestSet(ctx context.Context, id string) (*TestSet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, name, tests, created_at FROM testsets WHERE id = ?`, id)
	return scanTestSet(row)
}

// ListTestSets returns all test sets under a project.
func (s *Store) ListTestSets(ctx context.Context, projectID string) ([]*TestSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, name, tests, created_at FROM testsets
		 WHERE project_id = ? ORDER BY created_at`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []*TestSet
	for rows.Next() {
		ts := &TestSet{}
		var tests, createdAt string
		if err := rows.Scan(&ts.ID, &ts.ProjectID, &ts.Name, &tests, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tests), &ts.Tests); err != nil {
			return nil, fmt.Errorf("decoding tests for testset %s: %w", ts.ID, err)
		}
		ts.CreatedAt = parseTime(createdAt)
		sets = append(sets, ts)
	}
	return sets, rows.Err()
}

// AddTestCase appends a case to the test set. The new case's ID is one past
// the highest surviving ID, so IDs stay unique within the set; deletes do
// not renumber surviving cases.
func (s *Store) AddTestCase(ctx context.Context, testsetID, prompt string) (*TestSet, error) {
	ts, err := s.GetTestSet(ctx, testsetID)
	if err != nil {
		return nil, err
	}
	nextID := 0
	for _, tc := range ts.Tests {
		if tc.ID >= nextID {
			nextID = tc.ID + 1
		}
	}
	ts.Tests = append(ts.Tests, TestCase{ID: nextID, Prompt: prompt})
	if err := s.saveTests(ctx, ts); err != nil {
		return nil, err
	}
	return ts, nil
}

// DeleteTestCase removes the case with the given ID from the test set.
func (s *Store) DeleteTestCase(ctx context.Context, testsetID string, testID int) (*TestSet, error) {
	ts, err := s.GetTestSet(ctx, testsetID)
	if err != nil {
		return nil, err
	}

	kept := ts.Tests[:0]
	found := false
	for _, tc := range ts.Tests {
		if tc.ID == testID {
			found = true
			continue
		}
		kept = append(kept, tc)
	}
	if !found {
		return nil, ErrNotFound
	}
	ts.Tests = kept

	if err := s.saveTests(ctx, ts); err != nil {
		return nil, err
	}
	return ts, nil
}

// DeleteTestSet removes a test set entirely.
func (s *Store) DeleteTestSet(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM testsets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) saveTests(ctx context.Context, ts *TestSet) error {
	data, err := json.Marshal(ts.Tests)
	if err != nil {
		return fmt.Errorf("encoding tests: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE testsets SET tests = ? WHERE id = ?`, string(data), ts.ID)
	return err
}

func scanTestSet(row *sql.Row) (*TestSet, error) {
	ts := &TestSet{}
	var tests, createdAt string
	err := row.Scan(&ts.ID, &ts.ProjectID, &ts.Name, &tests, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tests), &ts.Tests); err != nil {
		return nil, fmt.Errorf("decoding tests for testset %s: %w", ts.ID, err)
	}
	ts.CreatedAt = parseTime(createdAt)
	return ts, nil
}
