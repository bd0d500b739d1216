package core

import "context"

type MemoryStore interface {
	UpsertFact(ctx context.Context, key, value string) error
	AllFacts(ctx context.Context) ([]Fact, error)
	AppendMessage(ctx context.Context, role, content string) error
	RecentMessages(ctx context.Context, limit int) ([]Message, error)
}
