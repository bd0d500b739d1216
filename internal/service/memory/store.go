package memory

import (
	"context"

	"github.com/sandevgo/lumina/internal/core"
	"github.com/sandevgo/lumina/pkg/log"
)

// Store is the memory store used by the front ends and the prompt builder.
// Reads never fail: a storage error is logged and yields an empty result so
// a reply can still be produced without context.
type Store struct {
	msgRepo   MessagesRepository
	factsRepo FactsRepository
}

var _ core.MemoryStore = (*Store)(nil)

func NewStore(msgRepo MessagesRepository, factsRepo FactsRepository) *Store {
	return &Store{
		msgRepo:   msgRepo,
		factsRepo: factsRepo,
	}
}

func (s *Store) UpsertFact(ctx context.Context, key, value string) error {
	return s.factsRepo.SaveFact(ctx, key, value)
}

func (s *Store) AllFacts(ctx context.Context) ([]core.Fact, error) {
	facts, err := s.factsRepo.GetFacts(ctx)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to load facts, continuing without them")
		return nil, nil
	}
	return facts, nil
}

func (s *Store) AppendMessage(ctx context.Context, role, content string) error {
	return s.msgRepo.AddMessage(ctx, role, content)
}

func (s *Store) RecentMessages(ctx context.Context, limit int) ([]core.Message, error) {
	msgs, err := s.msgRepo.GetMessages(ctx, limit)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to load history, continuing without it")
		return nil, nil
	}
	return msgs, nil
}
