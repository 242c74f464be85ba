package ports

import "context"

// TextGenerator abstracts the LLM provider. Implementations send a single
// prompt and return the model's text output.
type TextGenerator interface {
	// GenerateText sends the prompt to the model and returns its response
	// text. It must honor ctx cancellation and deadlines.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// Ping verifies the provider is reachable with a minimal request.
	Ping(ctx context.Context) error
}
