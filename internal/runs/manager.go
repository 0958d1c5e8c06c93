// Package runs executes test sets against prompt versions in the
// background. A run moves from created through in_progress to finished;
// callers poll the run record for progress. Individual case failures are
// recorded in the results list and never abort the run.
package runs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/promptdeck/promptdeck/internal/providers"
	"github.com/promptdeck/promptdeck/internal/store"
)

// ErrNoTests is returned when the test set has no cases to execute.
var ErrNoTests = errors.New("testset has no test cases")

// storeWriteTimeout bounds terminal-state writes during shutdown.
const storeWriteTimeout = 5 * time.Second

// Manager creates run records and drives their execution. One goroutine
// per run; cases inside a run execute strictly in order.
type Manager struct {
	store    *store.Store
	registry *providers.Registry
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a run manager. Stop must be called on shutdown to
// let in-flight runs settle into a terminal state.
func NewManager(st *store.Store, registry *providers.Registry, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:    st,
		registry: registry,
		logger:   logger.With("component", "runs"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// StartRequest describes a run to launch.
type StartRequest struct {
	UserID    string
	TestsetID string
	PromptID  string
	Model     string
	Provider  string // Defaults to openrouter
	VersionID string // Optional; latest version when empty
}

// Start validates the request, creates the run record, and launches the
// background executor. It returns as soon as the record exists; progress
// is observed by polling Get.
func (m *Manager) Start(ctx context.Context, req StartRequest) (*store.Run, error) {
	providerName := req.Provider
	if providerName == "" {
		providerName = providers.OpenRouterName
	}

	ts, err := m.store.GetTestSet(ctx, req.TestsetID)
	if err != nil {
		return nil, fmt.Errorf("resolving testset %s: %w", req.TestsetID, err)
	}
	if len(ts.Tests) == 0 {
		return nil, ErrNoTests
	}

	version, err := m.resolveVersion(ctx, req.PromptID, req.VersionID)
	if err != nil {
		return nil, err
	}

	apiKey, err := m.store.GetUserKey(ctx, req.UserID, providerName)
	if errors.Is(err, store.ErrMissingCredential) {
		apiKey = m.registry.FallbackKey(providerName)
	} else if err != nil {
		return nil, fmt.Errorf("credential for %s: %w", providerName, err)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("credential for %s: %w", providerName, store.ErrMissingCredential)
	}

	completer, err := m.registry.Get(providerName)
	if err != nil {
		return nil, err
	}

	run, err := m.store.CreateRun(ctx, version.ID, req.Model, req.UserID, len(ts.Tests))
	if err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}

	m.logger.Info("run created",
		"run_id", run.ID,
		"testset_id", ts.ID,
		"version_id", version.ID,
		"model", req.Model,
		"cases", len(ts.Tests))

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.execute(run.ID, version.PromptText, req.Model, apiKey, completer, ts.Tests)
	}()

	return run, nil
}

// Get returns the current snapshot of a run.
func (m *Manager) Get(ctx context.Context, id string) (*store.Run, error) {
	return m.store.GetRun(ctx, id)
}

// ListByUser returns all runs a user has triggered, newest first.
func (m *Manager) ListByUser(ctx context.Context, userID string) ([]*store.Run, error) {
	return m.store.ListRunsByUser(ctx, userID)
}

// Stop cancels in-flight runs and waits for their executors to exit.
// Cancelled runs end in the failed state with a shutdown error.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
}

// resolveVersion picks the explicit version when given, verifying it
// belongs to the prompt, and otherwise the prompt's latest version.
func (m *Manager) resolveVersion(ctx context.Context, promptID, versionID string) (*store.PromptVersion, error) {
	if versionID != "" {
		v, err := m.store.GetVersion(ctx, versionID)
		if err != nil {
			return nil, fmt.Errorf("resolving version %s: %w", versionID, err)
		}
		if v.PromptID != promptID {
			return nil, fmt.Errorf("version %s does not belong to prompt %s: %w", versionID, promptID, store.ErrNotFound)
		}
		return v, nil
	}
	v, err := m.store.LatestVersion(ctx, promptID)
	if err != nil {
		return nil, fmt.Errorf("resolving latest version of prompt %s: %w", promptID, err)
	}
	return v, nil
}

// execute runs every test case in order, recording each outcome. Case
// level failures go into the results list; only bookkeeping failures
// (the run record itself becoming unwritable) or shutdown move the run
// to failed.
func (m *Manager) execute(runID, systemPrompt, model, apiKey string, completer providers.Completer, tests []store.TestCase) {
	logger := m.logger.With("run_id", runID)

	if err := m.store.UpdateRunStatus(m.ctx, runID, store.RunStatusInProgress, ""); err != nil {
		logger.Error("failed to mark run in progress", "error", err)
		m.fail(runID, fmt.Sprintf("starting run: %v", err))
		return
	}

	limiter := m.registry.Limiter(completer.Name())

	for _, tc := range tests {
		if limiter != nil {
			if err := limiter.Wait(m.ctx); err != nil {
				m.fail(runID, "shutdown before run completed")
				return
			}
		} else if err := m.ctx.Err(); err != nil {
			m.fail(runID, "shutdown before run completed")
			return
		}

		result := store.RunResult{TestID: tc.ID}
		output, err := completer.Complete(m.ctx, apiKey, systemPrompt, tc.Prompt, model)
		switch {
		case err != nil && m.ctx.Err() != nil:
			m.fail(runID, "shutdown before run completed")
			return
		case err != nil:
			if limiter != nil && errors.Is(err, providers.ErrRateLimited) {
				// Drain the bucket so the next case backs off for a
				// full refill interval.
				limiter.Record429()
			}
			result.Error = err.Error()
			logger.Warn("test case failed", "test_id", tc.ID, "error", err)
		default:
			result.Output = output
			result.OK = true
		}

		if err := m.store.AppendRunResult(m.ctx, runID, result); err != nil {
			logger.Error("failed to record test result", "test_id", tc.ID, "error", err)
			m.fail(runID, fmt.Sprintf("recording result for test %d: %v", tc.ID, err))
			return
		}
	}

	if err := m.store.UpdateRunStatus(m.ctx, runID, store.RunStatusFinished, ""); err != nil {
		logger.Error("failed to mark run finished", "error", err)
		m.fail(runID, fmt.Sprintf("finishing run: %v", err))
		return
	}
	logger.Info("run finished", "cases", len(tests))
}

// fail moves the run to the failed state on a best-effort basis. A fresh
// context is used so the transition survives manager shutdown.
func (m *Manager) fail(runID, cause string) {
	ctx, cancel := context.WithTimeout(context.Background(), storeWriteTimeout)
	defer cancel()
	if err := m.store.UpdateRunStatus(ctx, runID, store.RunStatusFailed, cause); err != nil {
		m.logger.Error("failed to mark run failed", "run_id", runID, "error", err)
	}
}
