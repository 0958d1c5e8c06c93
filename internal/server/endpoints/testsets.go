package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/store"
	"github.com/promptdeck/promptdeck/internal/svcctx"
)

// CreateTestsetRequest is the body for POST /api/projects/{id}/testsets.
type CreateTestsetRequest struct {
	Name string `json:"name"`
}

// CreateTestsetEndpoint handles POST /api/projects/{id}/testsets.
type CreateTestsetEndpoint struct{}

func (e *CreateTestsetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/projects/{id}/testsets", e.handler
}

func (e *CreateTestsetEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Create testset
//	@Tags			testsets
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Project ID"
//	@Param			request	body		CreateTestsetRequest	true	"Testset details"
//	@Success		201		{object}	store.TestSet
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/projects/{id}/testsets [post]
func (e *CreateTestsetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req CreateTestsetRequest
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

	ts, err := st.CreateTestSet(r.Context(), projectID, req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, ts)
}

func (e *CreateTestsetEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "create <project-id> <name>",
		Short: "Create a new testset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp store.TestSet
			req := CreateTestsetRequest{Name: args[1]}
			if err := client.Post(cmd.Context(), "/api/projects/"+args[0]+"/testsets", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ListTestsetsEndpoint handles GET /api/projects/{id}/testsets.
type ListTestsetsEndpoint struct{}

func (e *ListTestsetsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/projects/{id}/testsets", e.handler
}

func (e *ListTestsetsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List testsets in a project
//	@Tags			testsets
//	@Produce		json
//	@Param			id	path		string	true	"Project ID"
//	@Success		200	{array}		store.TestSet
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/projects/{id}/testsets [get]
func (e *ListTestsetsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	st := svcctx.StoreFrom(r.Context())
	testsets, err := st.ListTestSets(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, testsets)
}

func (e *ListTestsetsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list <project-id>",
		Short: "List testsets in a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp []store.TestSet
			if err := client.Get(cmd.Context(), "/api/projects/"+args[0]+"/testsets", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetTestsetEndpoint handles GET /api/testsets/{id}.
type GetTestsetEndpoint struct{}

func (e *GetTestsetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/testsets/{id}", e.handler
}

func (e *GetTestsetEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get testset by ID
//	@Tags			testsets
//	@Produce		json
//	@Param			id	path		string	true	"Testset ID"
//	@Success		200	{object}	store.TestSet
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/testsets/{id} [get]
func (e *GetTestsetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	st := svcctx.StoreFrom(r.Context())
	ts, err := st.GetTestSet(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "testset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

func (e *GetTestsetEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a testset by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp store.TestSet
			if err := client.Get(cmd.Context(), "/api/testsets/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DeleteTestsetEndpoint handles DELETE /api/testsets/{id}.
type DeleteTestsetEndpoint struct{}

func (e *DeleteTestsetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/testsets/{id}", e.handler
}

func (e *DeleteTestsetEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Delete testset
//	@Tags			testsets
//	@Produce		json
//	@Param			id	path	string	true	"Testset ID"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/testsets/{id} [delete]
func (e *DeleteTestsetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	st := svcctx.StoreFrom(r.Context())
	if err := st.DeleteTestSet(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "testset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteTestsetEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a testset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			return client.Delete(cmd.Context(), "/api/testsets/"+args[0])
		},
	}
}

// AddTestCaseRequest is the body for POST /api/testsets/{id}/tests.
type AddTestCaseRequest struct {
	Prompt string `json:"prompt"`
}

// AddTestCaseEndpoint handles POST /api/testsets/{id}/tests.
type AddTestCaseEndpoint struct{}

func (e *AddTestCaseEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/testsets/{id}/tests", e.handler
}

func (e *AddTestCaseEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Add test case
//	@Description	Append a test case to a testset; its id is assigned by the server
//	@Tags			testsets
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Testset ID"
//	@Param			request	body		AddTestCaseRequest	true	"Test case"
//	@Success		200		{object}	store.TestSet
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/testsets/{id}/tests [post]
func (e *AddTestCaseEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req AddTestCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	st := svcctx.StoreFrom(r.Context())
	ts, err := st.AddTestCase(r.Context(), r.PathValue("id"), req.Prompt)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "testset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ts)
}

func (e *AddTestCaseEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "add-test <testset-id> <prompt>",
		Short: "Add a test case to a testset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp store.TestSet
			req := AddTestCaseRequest{Prompt: args[1]}
			if err := client.Post(cmd.Context(), "/api/testsets/"+args[0]+"/tests", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DeleteTestCaseEndpoint handles DELETE /api/testsets/{id}/tests/{test_id}.
type DeleteTestCaseEndpoint struct{}

func (e *DeleteTestCaseEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/testsets/{id}/tests/{test_id}", e.handler
}

func (e *DeleteTestCaseEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Delete test case
//	@Description	Remove a test case; remaining case ids are not renumbered
//	@Tags			testsets
//	@Produce		json
//	@Param			id		path		string	true	"Testset ID"
//	@Param			test_id	path		int		true	"Test case ID"
//	@Success		200		{object}	store.TestSet
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/testsets/{id}/tests/{test_id} [delete]
func (e *DeleteTestCaseEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	testID, err := strconv.Atoi(r.PathValue("test_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "test_id must be an integer")
		return
	}

	st := svcctx.StoreFrom(r.Context())
	ts, err := st.DeleteTestCase(r.Context(), r.PathValue("id"), testID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "testset or test case not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ts)
}

func (e *DeleteTestCaseEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-test <testset-id> <test-id>",
		Short: "Delete a test case from a testset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			return client.Delete(cmd.Context(), "/api/testsets/"+args[0]+"/tests/"+args[1])
		},
	}
}
