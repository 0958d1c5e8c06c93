package main

import (
	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Promptdeck server via HTTP.

These commands require a running server (promptdeck serve).
Use --server to specify a custom server URL.

Examples:
  promptdeck api health                  # Check server health
  promptdeck api projects list <user>    # List a user's projects
  promptdeck api runs status <id>        # Poll a test run`,
}

var projectsCmd = &cobra.Command{
	Use:               "projects",
	Short:             "Project management commands",
	PersistentPreRunE: requireReady,
}

var promptsCmd = &cobra.Command{
	Use:               "prompts",
	Short:             "Prompt and version management commands",
	PersistentPreRunE: requireReady,
}

var testsetsCmd = &cobra.Command{
	Use:               "testsets",
	Short:             "Testset management commands",
	PersistentPreRunE: requireReady,
}

var runsCmd = &cobra.Command{
	Use:               "runs",
	Short:             "Test run commands",
	PersistentPreRunE: requireReady,
}

var llmCmd = &cobra.Command{
	Use:               "llm",
	Short:             "Model catalog, playground and key commands",
	PersistentPreRunE: requireReady,
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

// requireReady gates data commands on the server's readiness endpoint so
// they do not race a server that is still opening its store. Health and
// user commands skip this and work during startup.
func requireReady(cmd *cobra.Command, args []string) error {
	api.SetOutputFormat(outputFormat)
	return api.NewClient(getServerURL()).WaitForReady(cmd.Context(), 3)
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8991", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))

	// User endpoints at top level of api
	apiCmd.AddCommand((&endpoints.CreateUserEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.GetUserEndpoint{}).Command(getServerURL))

	for _, ep := range endpoints.ProjectCommands() {
		projectsCmd.AddCommand(ep.Command(getServerURL))
	}
	for _, ep := range endpoints.PromptCommands() {
		promptsCmd.AddCommand(ep.Command(getServerURL))
	}
	for _, ep := range endpoints.TestsetCommands() {
		testsetsCmd.AddCommand(ep.Command(getServerURL))
	}
	for _, ep := range endpoints.RunCommands() {
		runsCmd.AddCommand(ep.Command(getServerURL))
	}
	for _, ep := range endpoints.LLMCommands() {
		llmCmd.AddCommand(ep.Command(getServerURL))
	}

	apiCmd.AddCommand(projectsCmd)
	apiCmd.AddCommand(promptsCmd)
	apiCmd.AddCommand(testsetsCmd)
	apiCmd.AddCommand(runsCmd)
	apiCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(apiCmd)
}
