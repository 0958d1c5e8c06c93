package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/providers"
	"github.com/promptdeck/promptdeck/internal/store"
	"github.com/promptdeck/promptdeck/internal/svcctx"
)

// SearchModelsResponse wraps the model catalog results.
type SearchModelsResponse struct {
	Models []providers.ModelInfo `json:"models"`
}

// SearchModelsEndpoint handles GET /api/models/search.
type SearchModelsEndpoint struct{}

func (e *SearchModelsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/models/search", e.handler
}

func (e *SearchModelsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Search the model catalog
//	@Description	Query the provider's model catalog by name fragment
//	@Tags			llm
//	@Produce		json
//	@Param			q			query		string	false	"Search query"
//	@Param			provider	query		string	false	"Provider name (default openrouter)"
//	@Success		200			{object}	SearchModelsResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		429			{object}	ErrorResponse
//	@Failure		502			{object}	ErrorResponse
//	@Router			/api/models/search [get]
func (e *SearchModelsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	providerName := r.URL.Query().Get("provider")
	if providerName == "" {
		providerName = providers.OpenRouterName
	}

	registry := svcctx.RegistryFrom(r.Context())
	searcher, err := registry.Searcher(providerName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Catalog search is best-effort: no blocking on the provider budget,
	// callers just retry later.
	if limiter := registry.Limiter(providerName); limiter != nil && !limiter.TryConsume() {
		writeError(w, http.StatusTooManyRequests, "provider request budget exhausted, retry later")
		return
	}

	models, err := searcher.SearchModels(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SearchModelsResponse{Models: models})
}

func (e *SearchModelsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var provider string
	cmd := &cobra.Command{
		Use:   "search-models [query]",
		Short: "Search the model catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			q := ""
			if len(args) > 0 {
				q = args[0]
			}
			path := "/api/models/search?q=" + url.QueryEscape(q)
			if provider != "" {
				path += "&provider=" + url.QueryEscape(provider)
			}
			var resp SearchModelsResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "Provider name (default openrouter)")
	return cmd
}

// CompletionRequest is the body for POST /api/llm/request.
type CompletionRequest struct {
	UserID       string `json:"user_id"`
	SystemPrompt string `json:"system_prompt"`
	UserPrompt   string `json:"user_prompt"`
	Model        string `json:"model"`
	Provider     string `json:"provider,omitempty"`
}

// CompletionResponse carries a single-shot completion.
type CompletionResponse struct {
	Response string `json:"response"`
}

// CompletionEndpoint handles POST /api/llm/request, the playground
// single-shot completion.
type CompletionEndpoint struct{}

func (e *CompletionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/llm/request", e.handler
}

func (e *CompletionEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Single-shot completion
//	@Description	Send one system/user prompt pair to a model using the caller's stored key
//	@Tags			llm
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CompletionRequest	true	"Completion parameters"
//	@Success		200		{object}	CompletionResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		429		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/api/llm/request [post]
func (e *CompletionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" || req.UserPrompt == "" || req.Model == "" {
		writeError(w, http.StatusBadRequest, "user_id, user_prompt and model are required")
		return
	}

	providerName := req.Provider
	if providerName == "" {
		providerName = providers.OpenRouterName
	}

	registry := svcctx.RegistryFrom(r.Context())
	completer, err := registry.Get(providerName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st := svcctx.StoreFrom(r.Context())
	apiKey, err := st.GetUserKey(r.Context(), req.UserID, providerName)
	if errors.Is(err, store.ErrMissingCredential) {
		apiKey = registry.FallbackKey(providerName)
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if apiKey == "" {
		writeError(w, http.StatusBadRequest, "no API key stored for provider "+providerName)
		return
	}

	limiter := registry.Limiter(providerName)
	if limiter != nil {
		if err := limiter.Wait(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "rate limit wait interrupted")
			return
		}
	}

	output, err := completer.Complete(r.Context(), apiKey, req.SystemPrompt, req.UserPrompt, req.Model)
	if err != nil {
		switch {
		case errors.Is(err, providers.ErrAuth):
			writeError(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, providers.ErrRateLimited):
			// Drain the local bucket so follow-up requests back off
			// instead of hammering a throttling upstream.
			if limiter != nil {
				limiter.Record429()
			}
			writeError(w, http.StatusTooManyRequests, err.Error())
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, CompletionResponse{Response: output})
}

func (e *CompletionEndpoint) Command(getServerURL func() string) *cobra.Command {
	var system, provider string
	cmd := &cobra.Command{
		Use:   "complete <user-id> <model> <prompt>",
		Short: "Send a single completion request",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := CompletionRequest{
				UserID:       args[0],
				Model:        args[1],
				UserPrompt:   args[2],
				SystemPrompt: system,
				Provider:     provider,
			}
			var resp CompletionResponse
			if err := client.Post(cmd.Context(), "/api/llm/request", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&system, "system", "", "System prompt")
	cmd.Flags().StringVar(&provider, "provider", "", "Completion provider (default openrouter)")
	return cmd
}
