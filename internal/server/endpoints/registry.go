package endpoints

import (
	"github.com/promptdeck/promptdeck/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},

		// User endpoints
		&CreateUserEndpoint{},
		&GetUserEndpoint{},

		// Key endpoints
		&SetKeyEndpoint{},
		&ListKeysEndpoint{},

		// Project endpoints
		&CreateProjectEndpoint{},
		&ListProjectsEndpoint{},
		&GetProjectEndpoint{},
		&UpdateProjectEndpoint{},
		&DeleteProjectEndpoint{},

		// Prompt endpoints
		&CreatePromptEndpoint{},
		&ListPromptsEndpoint{},
		&GetPromptEndpoint{},
		&UpdatePromptEndpoint{},
		&DeletePromptEndpoint{},

		// Testset endpoints
		&CreateTestsetEndpoint{},
		&ListTestsetsEndpoint{},
		&GetTestsetEndpoint{},
		&DeleteTestsetEndpoint{},
		&AddTestCaseEndpoint{},
		&DeleteTestCaseEndpoint{},

		// Run endpoints
		&StartRunEndpoint{},
		&RunStatusEndpoint{},
		&ListRunsEndpoint{},

		// LLM endpoints
		&SearchModelsEndpoint{},
		&CompletionEndpoint{},
	}
}

// ProjectCommands groups project endpoints for the CLI tree.
func ProjectCommands() []api.Endpoint {
	return []api.Endpoint{
		&CreateProjectEndpoint{},
		&ListProjectsEndpoint{},
		&GetProjectEndpoint{},
		&UpdateProjectEndpoint{},
		&DeleteProjectEndpoint{},
	}
}

// PromptCommands groups prompt endpoints for the CLI tree.
func PromptCommands() []api.Endpoint {
	return []api.Endpoint{
		&CreatePromptEndpoint{},
		&ListPromptsEndpoint{},
		&GetPromptEndpoint{},
		&UpdatePromptEndpoint{},
		&DeletePromptEndpoint{},
	}
}

// TestsetCommands groups testset endpoints for the CLI tree.
func TestsetCommands() []api.Endpoint {
	return []api.Endpoint{
		&CreateTestsetEndpoint{},
		&ListTestsetsEndpoint{},
		&GetTestsetEndpoint{},
		&DeleteTestsetEndpoint{},
		&AddTestCaseEndpoint{},
		&DeleteTestCaseEndpoint{},
	}
}

// RunCommands groups run endpoints for the CLI tree.
func RunCommands() []api.Endpoint {
	return []api.Endpoint{
		&StartRunEndpoint{},
		&RunStatusEndpoint{},
		&ListRunsEndpoint{},
	}
}

// LLMCommands groups model and key endpoints for the CLI tree.
func LLMCommands() []api.Endpoint {
	return []api.Endpoint{
		&SearchModelsEndpoint{},
		&CompletionEndpoint{},
		&SetKeyEndpoint{},
		&ListKeysEndpoint{},
	}
}
