package memory

import (
	"context"

	"github.com/sandevgo/lumina/internal/core"
)

type MessagesRepository interface {
	AddMessage(ctx context.Context, role, content string) error
	GetMessages(ctx context.Context, limit int) ([]core.Message, error)
}

type FactsRepository interface {
	SaveFact(ctx context.Context, key, value string) error
	GetFacts(ctx context.Context) ([]core.Fact, error)
}

// TokenCounter counts prompt tokens for the history budget.
type TokenCounter interface {
	Count(text string) int
}
