package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/store"
	"github.com/promptdeck/promptdeck/internal/svcctx"
)

// CreateUserRequest is the body for POST /api/users.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateUserEndpoint handles POST /api/users.
type CreateUserEndpoint struct{}

func (e *CreateUserEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/users", e.handler
}

func (e *CreateUserEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Create user
//	@Description	Register a new user by name and email
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateUserRequest	true	"User details"
//	@Success		201		{object}	store.User
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/users [post]
func (e *CreateUserEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	st := svcctx.StoreFrom(r.Context())
	user, err := st.CreateUser(r.Context(), req.Name, req.Email)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (e *CreateUserEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "create-user <name> <email>",
		Short: "Create a new user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp store.User
			req := CreateUserRequest{Name: args[0], Email: args[1]}
			if err := client.Post(cmd.Context(), "/api/users", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetUserEndpoint handles GET /api/users/{id}.
type GetUserEndpoint struct{}

func (e *GetUserEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/users/{id}", e.handler
}

func (e *GetUserEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get user by ID
//	@Tags			users
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	store.User
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/users/{id} [get]
func (e *GetUserEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	st := svcctx.StoreFrom(r.Context())
	user, err := st.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (e *GetUserEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get-user <id>",
		Short: "Get a user by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp store.User
			if err := client.Get(cmd.Context(), "/api/users/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
