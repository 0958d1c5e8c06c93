package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/svcctx"
)

// SetKeyRequest is the body for POST /api/keys. The key is stored
// verbatim per user and provider; it is never echoed back.
type SetKeyRequest struct {
	UserID   string `json:"user_id"`
	Provider string `json:"provider"`
	Key      string `json:"key"`
}

// SetKeyResponse acknowledges a stored key.
type SetKeyResponse struct {
	Success  bool   `json:"success"`
	Provider string `json:"provider"`
}

// SetKeyEndpoint handles POST /api/keys.
type SetKeyEndpoint struct{}

func (e *SetKeyEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/keys", e.handler
}

func (e *SetKeyEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Store a provider API key
//	@Description	Save or replace the caller's API key for a completion provider
//	@Tags			llm
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SetKeyRequest	true	"Key details"
//	@Success		200		{object}	SetKeyResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/keys [post]
func (e *SetKeyEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req SetKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" || req.Provider == "" || req.Key == "" {
		writeError(w, http.StatusBadRequest, "user_id, provider and key are required")
		return
	}

	registry := svcctx.RegistryFrom(r.Context())
	if registry != nil && !registry.Has(req.Provider) {
		writeError(w, http.StatusBadRequest, "unknown provider: "+req.Provider)
		return
	}

	st := svcctx.StoreFrom(r.Context())
	if err := st.SetUserKey(r.Context(), req.UserID, req.Provider, req.Key); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SetKeyResponse{Success: true, Provider: req.Provider})
}

func (e *SetKeyEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "set-key <user-id> <provider> <key>",
		Short: "Store a provider API key for a user",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp SetKeyResponse
			req := SetKeyRequest{UserID: args[0], Provider: args[1], Key: args[2]}
			if err := client.Post(cmd.Context(), "/api/keys", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ListKeysResponse reports which providers a user has keys for.
// Key material never leaves the store.
type ListKeysResponse struct {
	Providers []string `json:"providers"`
}

// ListKeysEndpoint handles GET /api/keys.
type ListKeysEndpoint struct{}

func (e *ListKeysEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/keys", e.handler
}

func (e *ListKeysEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List key providers
//	@Description	List provider names the user has stored keys for
//	@Tags			llm
//	@Produce		json
//	@Param			user_id	query		string	true	"User ID"
//	@Success		200		{object}	ListKeysResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/keys [get]
func (e *ListKeysEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	st := svcctx.StoreFrom(r.Context())
	providers, err := st.ListUserKeyProviders(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ListKeysResponse{Providers: providers})
}

func (e *ListKeysEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list-keys <user-id>",
		Short: "List providers a user has keys for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ListKeysResponse
			if err := client.Get(cmd.Context(), "/api/keys?user_id="+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
