// Package versioning owns the prompt version sequence: it decides whether an
// edit mutates the current version in place or mints a new numbered version.
package versioning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/promptdeck/promptdeck/internal/store"
)

// Service is the version store. All version-number assignment flows through
// Upsert; numbers are server-assigned only.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

// NewService creates a versioning service.
func NewService(st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger.With("component", "versioning")}
}

// UpsertRequest describes a proposed edit to a prompt's text.
type UpsertRequest struct {
	// PromptText is the proposed full text.
	PromptText string
	// Comments, when non-nil, marks an explicitly annotated change and
	// always mints a new version.
	Comments *string
	// VersionID, when set, targets an existing version for an in-place
	// field edit; no new version number is minted.
	VersionID string
}

// UpsertResult reports what Upsert did.
type UpsertResult struct {
	Version *store.PromptVersion `json:"version"`
	// Minted is true when a new version number was assigned.
	Minted bool `json:"minted"`
	// Diff is the line diff that justified minting, empty for first
	// versions and in-place updates.
	Diff string `json:"diff,omitempty"`
}

// Upsert applies an edit to a prompt. Exactly one version row is created or
// updated per call. Returns store.ErrNotFound if the prompt (or an explicit
// version target) does not exist.
func (s *Service) Upsert(ctx context.Context, promptID string, req UpsertRequest) (*UpsertResult, error) {
	if _, err := s.store.GetPrompt(ctx, promptID); err != nil {
		return nil, fmt.Errorf("prompt %s: %w", promptID, err)
	}

	// Explicit version target: lightweight in-place field edit.
	if req.VersionID != "" {
		v, err := s.store.GetVersion(ctx, req.VersionID)
		if err != nil {
			return nil, fmt.Errorf("version %s: %w", req.VersionID, err)
		}
		if v.PromptID != promptID {
			return nil, fmt.Errorf("version %s: %w", req.VersionID, store.ErrNotFound)
		}
		v.PromptText = req.PromptText
		if req.Comments != nil {
			v.Comments = *req.Comments
		}
		if err := s.store.UpdateVersion(ctx, v); err != nil {
			return nil, err
		}
		return &UpsertResult{Version: v}, nil
	}

	latest, err := s.store.LatestVersion(ctx, promptID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	// Explicitly annotated changes always mint, even with identical text.
	if req.Comments != nil {
		v, err := s.mint(ctx, promptID, latest, req.PromptText, *req.Comments)
		if err != nil {
			return nil, err
		}
		return &UpsertResult{Version: v, Minted: true}, nil
	}

	oldText := ""
	if latest != nil {
		oldText = latest.PromptText
	}
	significant, diff := Classify(req.PromptText, oldText)
	if significant {
		v, err := s.mint(ctx, promptID, latest, req.PromptText, "")
		if err != nil {
			return nil, err
		}
		return &UpsertResult{Version: v, Minted: true, Diff: diff}, nil
	}

	// Minor edit: rewrite the current version's text, keep its number.
	latest.PromptText = req.PromptText
	if err := s.store.UpdateVersion(ctx, latest); err != nil {
		return nil, err
	}
	return &UpsertResult{Version: latest}, nil
}

func (s *Service) mint(ctx context.Context, promptID string, latest *store.PromptVersion, text, comments string) (*store.PromptVersion, error) {
	number := 1
	if latest != nil {
		number = latest.VersionNumber + 1
	}
	v := &store.PromptVersion{
		PromptID:      promptID,
		VersionNumber: number,
		PromptText:    text,
		Comments:      comments,
	}
	if err := s.store.InsertVersion(ctx, v); err != nil {
		return nil, err
	}
	s.logger.Info("minted prompt version", "prompt_id", promptID, "version", number)
	return v, nil
}
