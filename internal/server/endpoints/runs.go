package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/runs"
	"github.com/promptdeck/promptdeck/internal/store"
	"github.com/promptdeck/promptdeck/internal/svcctx"
)

// StartRunRequest is the body for POST /api/run_testset.
type StartRunRequest struct {
	UserID    string `json:"user_id"`
	TestsetID string `json:"testset_id"`
	PromptID  string `json:"prompt_id"`
	Model     string `json:"model"`
	Provider  string `json:"provider,omitempty"`
	VersionID string `json:"version_id,omitempty"`
}

// StartRunResponse acknowledges a launched run. Progress is observed by
// polling GET /api/check_run/{id}.
type StartRunResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	RunID   string `json:"run_id"`
}

// StartRunEndpoint handles POST /api/run_testset.
type StartRunEndpoint struct{}

func (e *StartRunEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/run_testset", e.handler
}

func (e *StartRunEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Start a test run
//	@Description	Launch background execution of a testset against a prompt version and model
//	@Tags			runs
//	@Accept			json
//	@Produce		json
//	@Param			request	body		StartRunRequest	true	"Run parameters"
//	@Success		202		{object}	StartRunResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/run_testset [post]
func (e *StartRunEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req StartRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" || req.TestsetID == "" || req.PromptID == "" || req.Model == "" {
		writeError(w, http.StatusBadRequest, "user_id, testset_id, prompt_id and model are required")
		return
	}

	rm := svcctx.RunsFrom(r.Context())
	run, err := rm.Start(r.Context(), runs.StartRequest{
		UserID:    req.UserID,
		TestsetID: req.TestsetID,
		PromptID:  req.PromptID,
		Model:     req.Model,
		Provider:  req.Provider,
		VersionID: req.VersionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, store.ErrMissingCredential):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, runs.ErrNoTests):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusAccepted, StartRunResponse{
		Success: true,
		Message: "run started",
		RunID:   run.ID,
	})
}

func (e *StartRunEndpoint) Command(getServerURL func() string) *cobra.Command {
	var provider, versionID string
	cmd := &cobra.Command{
		Use:   "start <user-id> <testset-id> <prompt-id> <model>",
		Short: "Start a test run",
		Long: `Start executing a testset against a prompt version and model.

The run executes in the background; poll it with "runs status <run-id>".
Without --version-id the prompt's latest version is used.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := StartRunRequest{
				UserID:    args[0],
				TestsetID: args[1],
				PromptID:  args[2],
				Model:     args[3],
				Provider:  provider,
				VersionID: versionID,
			}
			var resp StartRunResponse
			if err := client.Post(cmd.Context(), "/api/run_testset", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "Completion provider (default openrouter)")
	cmd.Flags().StringVar(&versionID, "version-id", "", "Prompt version to run (default latest)")
	return cmd
}

// RunStatusEndpoint handles GET /api/check_run/{id}.
type RunStatusEndpoint struct{}

func (e *RunStatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/check_run/{id}", e.handler
}

func (e *RunStatusEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Poll a test run
//	@Description	Get the run snapshot: status, progress counters and per-case results
//	@Tags			runs
//	@Produce		json
//	@Param			id	path		string	true	"Run ID"
//	@Success		200	{object}	store.Run
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/check_run/{id} [get]
func (e *RunStatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	rm := svcctx.RunsFrom(r.Context())
	run, err := rm.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (e *RunStatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status <run-id>",
		Short: "Poll a test run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp store.Run
			if err := client.Get(cmd.Context(), "/api/check_run/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ListRunsEndpoint handles GET /api/runs.
type ListRunsEndpoint struct{}

func (e *ListRunsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/runs", e.handler
}

func (e *ListRunsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List runs for a user
//	@Tags			runs
//	@Produce		json
//	@Param			user_id	query		string	true	"User ID"
//	@Success		200		{array}		store.Run
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/runs [get]
func (e *ListRunsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	rm := svcctx.RunsFrom(r.Context())
	list, err := rm.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (e *ListRunsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list <user-id>",
		Short: "List runs for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp []store.Run
			if err := client.Get(cmd.Context(), "/api/runs?user_id="+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
