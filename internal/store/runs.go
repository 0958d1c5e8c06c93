package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of a test run.
type RunStatus string

const (
	RunStatusCreated    RunStatus = "created"
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusFinished   RunStatus = "finished"
	// RunStatusFailed marks a run whose background task died before
	// completing; the error field records the cause.
	RunStatusFailed RunStatus = "failed"
)

// RunResult is the recorded outcome of one test case.
type RunResult struct {
	TestID int    `json:"test_id"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
	OK     bool   `json:"ok"`
}

// Run tracks one execution of a test set against a prompt version and model.
// The run executor is the only writer between created and a terminal state;
// polling readers see the last committed snapshot.
type Run struct {
	ID              string      `json:"id"`
	PromptVersionID string      `json:"prompt_version_id"`
	Model           string      `json:"model"`
	UserID          string      `json:"user_id"`
	Status          RunStatus   `json:"status"`
	CurrentTest     int         `json:"current_test"`
	TotalTests      int         `json:"total_test_count"`
	Results         []RunResult `json:"results"`
	Error           string      `json:"error,omitempty"`
	StartedAt       time.Time   `json:"started_at,omitempty"`
	FinishedAt      time.Time   `json:"finished_at,omitempty"`
	Cost            *float64    `json:"cost,omitempty"`
	Success         *bool       `json:"success,omitempty"`
}

// CreateRun inserts a new run record in the created state.
func (s *Store) CreateRun(ctx context.Context, versionID, model, userID string, totalTests int) (*Run, error) {
	r := &Run{
		ID:              uuid.New().String(),
		PromptVersionID: versionID,
		Model:           model,
		UserID:          userID,
		Status:          RunStatusCreated,
		TotalTests:      totalTests,
		Results:         []RunResult{},
		StartedAt:       time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, prompt_version_id, model, user_id, status, current_test, total_tests, results, started_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?, '[]', ?)`,
		r.ID, r.PromptVersionID, r.Model, r.UserID, string(r.Status), r.TotalTests, formatTime(r.StartedAt),
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetRun returns a run snapshot by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, prompt_version_id, model, user_id, status, current_test, total_tests,
		        results, COALESCE(error,''), COALESCE(started_at,''), COALESCE(finished_at,''), cost, success
		 FROM runs WHERE id = ?`, id)

	r := &Run{}
	var results, startedAt, finishedAt string
	var cost sql.NullFloat64
	var success sql.NullBool
	err := row.Scan(&r.ID, &r.PromptVersionID, &r.Model, &r.UserID, (*string)(&r.Status),
		&r.CurrentTest, &r.TotalTests, &results, &r.Error, &startedAt, &finishedAt, &cost, &success)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(results), &r.Results); err != nil {
		return nil, fmt.Errorf("decoding results for run %s: %w", r.ID, err)
	}
	r.StartedAt = parseTime(startedAt)
	r.FinishedAt = parseTime(finishedAt)
	if cost.Valid {
		r.Cost = &cost.Float64
	}
	if success.Valid {
		r.Success = &success.Bool
	}
	return r, nil
}

// ListRunsByUser returns all runs triggered by a user, newest first.
func (s *Store) ListRunsByUser(ctx context.Context, userID string) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM runs WHERE user_id = ? ORDER BY started_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	runs := make([]*Run, 0, len(ids))
	for _, id := range ids {
		r, err := s.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, nil
}

// UpdateRunStatus transitions a run to a new status. Terminal transitions
// also stamp finished_at and, for finished runs, the overall success flag.
func (s *Store) UpdateRunStatus(ctx context.Context, id string, status RunStatus, errMsg string) error {
	switch status {
	case RunStatusFinished, RunStatusFailed:
		var success sql.NullBool
		if status == RunStatusFinished {
			r, err := s.GetRun(ctx, id)
			if err != nil {
				return err
			}
			ok := true
			for _, res := range r.Results {
				if !res.OK {
					ok = false
					break
				}
			}
			success = sql.NullBool{Bool: ok, Valid: true}
		}
		_, err := s.db.ExecContext(ctx,
			`UPDATE runs SET status = ?, error = ?, finished_at = ?, success = ? WHERE id = ?`,
			string(status), errMsg, formatTime(time.Now().UTC()), success, id)
		return err
	default:
		_, err := s.db.ExecContext(ctx,
			`UPDATE runs SET status = ?, error = ? WHERE id = ?`,
			string(status), errMsg, id)
		return err
	}
}

// AppendRunResult records one case's outcome and advances the progress
// counter in a single row update.
func (s *Store) AppendRunResult(ctx context.Context, id string, result RunResult) error {
	r, err := s.GetRun(ctx, id)
	if err != nil {
		return err
	}
	r.Results = append(r.Results, result)
	data, err := json.Marshal(r.Results)
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE runs SET results = ?, current_test = current_test + 1 WHERE id = ?`,
		string(data), id)
	return err
}
