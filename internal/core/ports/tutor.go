package ports

import (
	"context"

	"github.com/crazylearners/portal/internal/core/domain"
)

// CompletionRequest is a single prompt sent to the generative-language service.
type CompletionRequest struct {
	Model             string
	SystemInstruction string
	Prompt            string
	ThinkingBudget    int32
}

// CompletionClient sends free text to a remote model and returns its reply.
type CompletionClient interface {
	Generate(ctx context.Context, req CompletionRequest) (string, error)
}

// TutorService is the chat widget's backend.
type TutorService interface {
	Ask(ctx context.Context, text string) (domain.ChatMessage, error)
	Messages() []domain.ChatMessage
}
