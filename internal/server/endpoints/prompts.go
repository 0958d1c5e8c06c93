package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/store"
	"github.com/promptdeck/promptdeck/internal/svcctx"
	"github.com/promptdeck/promptdeck/internal/versioning"
)

// CreatePromptRequest is the body for POST /api/projects/{id}/prompts.
type CreatePromptRequest struct {
	Name       string `json:"name"`
	PromptText string `json:"prompt_text,omitempty"`
}

// CreatePromptResponse pairs the new prompt with its first version, if
// an initial text was supplied.
type CreatePromptResponse struct {
	Prompt  *store.Prompt        `json:"prompt"`
	Version *store.PromptVersion `json:"version,omitempty"`
}

// CreatePromptEndpoint handles POST /api/projects/{id}/prompts.
type CreatePromptEndpoint struct{}

func (e *CreatePromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/projects/{id}/prompts", e.handler
}

func (e *CreatePromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Create prompt
//	@Description	Create a prompt in a project, optionally with its first version
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Project ID"
//	@Param			request	body		CreatePromptRequest	true	"Prompt details"
//	@Success		201		{object}	CreatePromptResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/projects/{id}/prompts [post]
func (e *CreatePromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req CreatePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	st := svcctx.StoreFrom(r.Context())
	projectID := r.PathValue("id")
	if _, err := st.GetProject(r.Context(), projectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	prompt, err := st.CreatePrompt(r.Context(), projectID, req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := CreatePromptResponse{Prompt: prompt}
	if req.PromptText != "" {
		vs := svcctx.VersioningFrom(r.Context())
		result, err := vs.Upsert(r.Context(), prompt.ID, versioning.UpsertRequest{PromptText: req.PromptText})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Version = result.Version
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (e *CreatePromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "create <project-id> <name>",
		Short: "Create a new prompt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp CreatePromptResponse
			req := CreatePromptRequest{Name: args[1], PromptText: text}
			if err := client.Post(cmd.Context(), "/api/projects/"+args[0]+"/prompts", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "Initial prompt text (creates version 1)")
	return cmd
}

// ListPromptsEndpoint handles GET /api/projects/{id}/prompts.
type ListPromptsEndpoint struct{}

func (e *ListPromptsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/projects/{id}/prompts", e.handler
}

func (e *ListPromptsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List prompts in a project
//	@Tags			prompts
//	@Produce		json
//	@Param			id	path		string	true	"Project ID"
//	@Success		200	{array}		store.Prompt
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/projects/{id}/prompts [get]
func (e *ListPromptsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	st := svcctx.StoreFrom(r.Context())
	prompts, err := st.ListPrompts(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, prompts)
}

func (e *ListPromptsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list <project-id>",
		Short: "List prompts in a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp []store.Prompt
			if err := client.Get(cmd.Context(), "/api/projects/"+args[0]+"/prompts", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetPromptResponse includes the prompt and its full version history,
// oldest first. The last entry is the current version.
type GetPromptResponse struct {
	*store.Prompt
	Versions []*store.PromptVersion `json:"versions"`
}

// GetPromptEndpoint handles GET /api/prompts/{id}.
type GetPromptEndpoint struct{}

func (e *GetPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts/{id}", e.handler
}

func (e *GetPromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get prompt with version history
//	@Tags			prompts
//	@Produce		json
//	@Param			id	path		string	true	"Prompt ID"
//	@Success		200	{object}	GetPromptResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/prompts/{id} [get]
func (e *GetPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	st := svcctx.StoreFrom(r.Context())
	prompt, err := st.GetPrompt(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prompt not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	versions, err := st.ListVersions(r.Context(), prompt.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, GetPromptResponse{Prompt: prompt, Versions: versions})
}

func (e *GetPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a prompt and its versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp GetPromptResponse
			if err := client.Get(cmd.Context(), "/api/prompts/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// UpdatePromptRequest is the body for PUT /api/prompts/{id}. The server
// decides whether the edit mints a new version; any version_number sent
// by the client is ignored. A name, when present, renames the prompt
// without touching its version history.
type UpdatePromptRequest struct {
	PromptText string  `json:"prompt_text,omitempty"`
	Comments   *string `json:"comments,omitempty"`
	VersionID  string  `json:"version_id,omitempty"`
	Name       *string `json:"name,omitempty"`
}

// UpdatePromptEndpoint handles PUT /api/prompts/{id}.
type UpdatePromptEndpoint struct{}

func (e *UpdatePromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/prompts/{id}", e.handler
}

func (e *UpdatePromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Update prompt
//	@Description	Apply a text edit and/or rename; the server mints a new version for significant changes or explicit comments
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Prompt ID"
//	@Param			request	body		UpdatePromptRequest	true	"Edit details"
//	@Success		200		{object}	versioning.UpsertResult
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/prompts/{id} [put]
func (e *UpdatePromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req UpdatePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.PromptText == "" && req.VersionID == "" && req.Name == nil {
		writeError(w, http.StatusBadRequest, "prompt_text or name is required")
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			writeError(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		st := svcctx.StoreFrom(r.Context())
		if err := st.RenamePrompt(r.Context(), r.PathValue("id"), *req.Name); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "prompt not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	if req.PromptText == "" && req.VersionID == "" {
		// Rename only, no version work to do.
		writeJSON(w, http.StatusOK, versioning.UpsertResult{})
		return
	}

	vs := svcctx.VersioningFrom(r.Context())
	result, err := vs.Upsert(r.Context(), r.PathValue("id"), versioning.UpsertRequest{
		PromptText: req.PromptText,
		Comments:   req.Comments,
		VersionID:  req.VersionID,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (e *UpdatePromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	var comments, versionID, name string
	cmd := &cobra.Command{
		Use:   "update <id> [text]",
		Short: "Update a prompt's text or name",
		Long: `Update a prompt's text, or rename it with --name.

The server decides versioning: significant edits (or any edit with
--comments) mint a new version; minor edits update the current version
in place. Renames never touch version history.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := UpdatePromptRequest{VersionID: versionID}
			if len(args) > 1 {
				req.PromptText = args[1]
			}
			if cmd.Flags().Changed("comments") {
				req.Comments = &comments
			}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			var resp versioning.UpsertResult
			if err := client.Put(cmd.Context(), "/api/prompts/"+args[0], req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&comments, "comments", "", "Change annotation (always mints a new version)")
	cmd.Flags().StringVar(&versionID, "version-id", "", "Target an existing version for an in-place edit")
	cmd.Flags().StringVar(&name, "name", "", "Rename the prompt")
	return cmd
}

// DeletePromptEndpoint handles DELETE /api/prompts/{id}.
type DeletePromptEndpoint struct{}

func (e *DeletePromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/prompts/{id}", e.handler
}

func (e *DeletePromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Delete prompt
//	@Description	Delete a prompt and all of its versions
//	@Tags			prompts
//	@Produce		json
//	@Param			id	path	string	true	"Prompt ID"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/prompts/{id} [delete]
func (e *DeletePromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	st := svcctx.StoreFrom(r.Context())
	if err := st.DeletePrompt(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prompt not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *DeletePromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a prompt and its versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			return client.Delete(cmd.Context(), "/api/prompts/"+args[0])
		},
	}
}
