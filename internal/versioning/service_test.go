package versioning_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/promptdeck/promptdeck/internal/store"
	"github.com/promptdeck/promptdeck/internal/versioning"
)

func newTestService(t *testing.T) (*versioning.Service, *store.Store, string) {
	t.Helper()
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	u, err := st.CreateUser(ctx, "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	proj, err := st.CreateProject(ctx, u.ID, "p", "")
	if err != nil {
		t.Fatalf("creating project: %v", err)
	}
	prompt, err := st.CreatePrompt(ctx, proj.ID, "greeting")
	if err != nil {
		t.Fatalf("creating prompt: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return versioning.NewService(st, logger), st, prompt.ID
}

func TestUpsertFirstVersion(t *testing.T) {
	svc, _, promptID := newTestService(t)
	ctx := context.Background()

	result, err := svc.Upsert(ctx, promptID, versioning.UpsertRequest{PromptText: "Say hello."})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !result.Minted {
		t.Errorf("first version must mint")
	}
	if result.Version.VersionNumber != 1 {
		t.Errorf("expected version 1, got %d", result.Version.VersionNumber)
	}
	if result.Diff != "" {
		t.Errorf("first version should carry no diff")
	}
}

func TestUpsertCommentsAlwaysMint(t *testing.T) {
	svc, st, promptID := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, promptID, versioning.UpsertRequest{PromptText: "Say hello."}); err != nil {
		t.Fatalf("seeding version: %v", err)
	}

	// Identical text, but explicitly annotated
	comments := "checkpoint before experiment"
	result, err := svc.Upsert(ctx, promptID, versioning.UpsertRequest{PromptText: "Say hello.", Comments: &comments})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !result.Minted {
		t.Errorf("annotated change must mint even with identical text")
	}
	if result.Version.VersionNumber != 2 {
		t.Errorf("expected version 2, got %d", result.Version.VersionNumber)
	}
	if result.Version.Comments != comments {
		t.Errorf("comments not recorded: %q", result.Version.Comments)
	}

	versions, err := st.ListVersions(ctx, promptID)
	if err != nil {
		t.Fatalf("listing versions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(versions))
	}
}

func TestUpsertMinorEditInPlace(t *testing.T) {
	svc, st, promptID := newTestService(t)
	ctx := context.Background()

	base := "You are a helpful assistant. Answer the user's question directly and cite sources when you can."
	if _, err := svc.Upsert(ctx, promptID, versioning.UpsertRequest{PromptText: base}); err != nil {
		t.Fatalf("seeding version: %v", err)
	}

	edited := strings.Replace(base, "directly", "directly,", 1)
	result, err := svc.Upsert(ctx, promptID, versioning.UpsertRequest{PromptText: edited})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if result.Minted {
		t.Fatalf("punctuation tweak must not mint")
	}
	if result.Version.VersionNumber != 1 {
		t.Errorf("in-place edit changed the version number: %d", result.Version.VersionNumber)
	}

	versions, err := st.ListVersions(ctx, promptID)
	if err != nil {
		t.Fatalf("listing versions: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("expected 1 version after in-place edit, got %d", len(versions))
	}
	if versions[0].PromptText != edited {
		t.Errorf("stored text not updated: %q", versions[0].PromptText)
	}
}

func TestUpsertSignificantEditMints(t *testing.T) {
	svc, st, promptID := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, promptID, versioning.UpsertRequest{PromptText: "You are a calculator. Answer with a single number."}); err != nil {
		t.Fatalf("seeding version: %v", err)
	}

	result, err := svc.Upsert(ctx, promptID, versioning.UpsertRequest{PromptText: "You are a poet. Respond with a haiku about the question."})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !result.Minted {
		t.Fatalf("rewrite must mint a new version")
	}
	if result.Version.VersionNumber != 2 {
		t.Errorf("expected version 2, got %d", result.Version.VersionNumber)
	}
	if result.Diff == "" {
		t.Errorf("significant edit should report a diff")
	}

	// Version numbers stay gapless ascending
	versions, err := st.ListVersions(ctx, promptID)
	if err != nil {
		t.Fatalf("listing versions: %v", err)
	}
	for i, v := range versions {
		if v.VersionNumber != i+1 {
			t.Errorf("version %d has number %d", i, v.VersionNumber)
		}
	}
}

func TestUpsertExplicitVersionTarget(t *testing.T) {
	svc, st, promptID := newTestService(t)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, promptID, versioning.UpsertRequest{PromptText: "Version one."})
	if err != nil {
		t.Fatalf("seeding version: %v", err)
	}
	if _, err := svc.Upsert(ctx, promptID, versioning.UpsertRequest{PromptText: "A completely different second revision of the prompt."}); err != nil {
		t.Fatalf("seeding second version: %v", err)
	}

	// Editing an old version in place never mints
	result, err := svc.Upsert(ctx, promptID, versioning.UpsertRequest{
		PromptText: "Version one, corrected.",
		VersionID:  first.Version.ID,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if result.Minted {
		t.Errorf("explicit version edit must not mint")
	}
	if result.Version.VersionNumber != 1 {
		t.Errorf("targeted version number changed: %d", result.Version.VersionNumber)
	}

	got, err := st.GetVersion(ctx, first.Version.ID)
	if err != nil {
		t.Fatalf("reading version: %v", err)
	}
	if got.PromptText != "Version one, corrected." {
		t.Errorf("text not updated: %q", got.PromptText)
	}
}

func TestUpsertVersionFromAnotherPrompt(t *testing.T) {
	svc, st, promptID := newTestService(t)
	ctx := context.Background()

	seed, err := svc.Upsert(ctx, promptID, versioning.UpsertRequest{PromptText: "Mine."})
	if err != nil {
		t.Fatalf("seeding version: %v", err)
	}

	other, err := st.CreatePrompt(ctx, "some-project", "other")
	if err != nil {
		t.Fatalf("creating prompt: %v", err)
	}

	_, err = svc.Upsert(ctx, other.ID, versioning.UpsertRequest{
		PromptText: "Hijack.",
		VersionID:  seed.Version.ID,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a version of another prompt, got %v", err)
	}
}

func TestUpsertUnknownPrompt(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Upsert(context.Background(), "no-such-prompt", versioning.UpsertRequest{PromptText: "x"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
