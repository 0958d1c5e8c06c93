package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/store"
	"github.com/promptdeck/promptdeck/internal/svcctx"
)

// CreateProjectRequest is the body for POST /api/projects.
type CreateProjectRequest struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateProjectEndpoint handles POST /api/projects.
type CreateProjectEndpoint struct{}

func (e *CreateProjectEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/projects", e.handler
}

func (e *CreateProjectEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Create project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateProjectRequest	true	"Project details"
//	@Success		201		{object}	store.Project
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/projects [post]
func (e *CreateProjectEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "user_id and name are required")
		return
	}

	st := svcctx.StoreFrom(r.Context())
	project, err := st.CreateProject(r.Context(), req.UserID, req.Name, req.Description)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

func (e *CreateProjectEndpoint) Command(getServerURL func() string) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create <user-id> <name>",
		Short: "Create a new project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp store.Project
			req := CreateProjectRequest{UserID: args[0], Name: args[1], Description: description}
			if err := client.Post(cmd.Context(), "/api/projects", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	return cmd
}

// ListProjectsEndpoint handles GET /api/projects.
type ListProjectsEndpoint struct{}

func (e *ListProjectsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/projects", e.handler
}

func (e *ListProjectsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List projects for a user
//	@Tags			projects
//	@Produce		json
//	@Param			user_id	query		string	true	"User ID"
//	@Success		200		{array}		store.Project
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/projects [get]
func (e *ListProjectsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	st := svcctx.StoreFrom(r.Context())
	projects, err := st.ListProjects(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, projects)
}

func (e *ListProjectsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list <user-id>",
		Short: "List projects for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp []store.Project
			if err := client.Get(cmd.Context(), "/api/projects?user_id="+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetProjectEndpoint handles GET /api/projects/{id}.
type GetProjectEndpoint struct{}

func (e *GetProjectEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/projects/{id}", e.handler
}

func (e *GetProjectEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get project by ID
//	@Tags			projects
//	@Produce		json
//	@Param			id	path		string	true	"Project ID"
//	@Success		200	{object}	store.Project
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/projects/{id} [get]
func (e *GetProjectEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	st := svcctx.StoreFrom(r.Context())
	project, err := st.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (e *GetProjectEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a project by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp store.Project
			if err := client.Get(cmd.Context(), "/api/projects/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// UpdateProjectRequest is the body for PUT /api/projects/{id}.
// Only the listed fields can change; anything else in the body is ignored.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateProjectEndpoint handles PUT /api/projects/{id}.
type UpdateProjectEndpoint struct{}

func (e *UpdateProjectEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/projects/{id}", e.handler
}

func (e *UpdateProjectEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Update project
//	@Description	Update a project's name or description
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Project ID"
//	@Param			request	body		UpdateProjectRequest	true	"Fields to update"
//	@Success		200		{object}	store.Project
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/projects/{id} [put]
func (e *UpdateProjectEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	st := svcctx.StoreFrom(r.Context())
	project, err := st.UpdateProject(r.Context(), r.PathValue("id"), store.ProjectUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (e *UpdateProjectEndpoint) Command(getServerURL func() string) *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a project's name or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := UpdateProjectRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			var resp store.Project
			if err := client.Put(cmd.Context(), "/api/projects/"+args[0], req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New project name")
	cmd.Flags().StringVar(&description, "description", "", "New project description")
	return cmd
}

// DeleteProjectEndpoint handles DELETE /api/projects/{id}.
type DeleteProjectEndpoint struct{}

func (e *DeleteProjectEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/projects/{id}", e.handler
}

func (e *DeleteProjectEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Delete project
//	@Tags			projects
//	@Produce		json
//	@Param			id	path	string	true	"Project ID"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/projects/{id} [delete]
func (e *DeleteProjectEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	st := svcctx.StoreFrom(r.Context())
	if err := st.DeleteProject(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteProjectEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			return client.Delete(cmd.Context(), "/api/projects/"+args[0])
		},
	}
}
