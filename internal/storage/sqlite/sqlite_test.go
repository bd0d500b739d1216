package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/lumina/internal/core"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "nested", "lumina.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMessagesRepo_RecentOldestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMessagesRepo(newTestDB(t))

	for i := 1; i <= 5; i++ {
		role := core.RoleUser
		if i%2 == 0 {
			role = core.RoleAssistant
		}
		require.NoError(t, repo.AddMessage(ctx, role, fmt.Sprintf("msg %d", i)))
	}

	got, err := repo.GetMessages(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "msg 4", got[0].Content)
	assert.Equal(t, core.RoleAssistant, got[0].Role)
	assert.Equal(t, "msg 5", got[1].Content)
	assert.Less(t, got[0].ID, got[1].ID)
	assert.False(t, got[1].CreatedAt.IsZero())
}

func TestMessagesRepo_LimitLargerThanLog(t *testing.T) {
	ctx := context.Background()
	repo := NewMessagesRepo(newTestDB(t))

	require.NoError(t, repo.AddMessage(ctx, core.RoleUser, "only"))

	got, err := repo.GetMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "only", got[0].Content)

	none, err := repo.GetMessages(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMessagesRepo_RejectsUnknownRole(t *testing.T) {
	repo := NewMessagesRepo(newTestDB(t))
	err := repo.AddMessage(context.Background(), core.RoleSystem, "nope")
	require.Error(t, err)
}

func TestMessagesRepo_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	repo := NewMessagesRepo(newTestDB(t))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				assert.NoError(t, repo.AddMessage(ctx, core.RoleUser, fmt.Sprintf("w%d-%d", w, i)))
			}
		}(w)
	}
	wg.Wait()

	got, err := repo.GetMessages(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, got, 40)
}

func TestFactsRepo_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewFactsRepo(db)

	require.NoError(t, repo.SaveFact(ctx, "city", "Hamburg"))
	require.NoError(t, repo.SaveFact(ctx, "city", "Berlin"))
	require.NoError(t, repo.SaveFact(ctx, "name", "Alex"))

	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM facts WHERE key = 'city'`).Scan(&rows))
	assert.Equal(t, 1, rows)

	facts, err := repo.GetFacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Fact{
		{Key: "city", Value: "Berlin"},
		{Key: "name", Value: "Alex"},
	}, facts)
}

func TestFactsRepo_RejectsEmptyKey(t *testing.T) {
	repo := NewFactsRepo(newTestDB(t))
	require.Error(t, repo.SaveFact(context.Background(), "  ", "x"))
}

func TestNewDB_MigrationsAreRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lumina.db")

	db, err := NewDB(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, NewFactsRepo(db).SaveFact(context.Background(), "k", "v"))
	require.NoError(t, db.Close())

	db, err = NewDB(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	facts, err := NewFactsRepo(db).GetFacts(context.Background())
	require.NoError(t, err)
	assert.Len(t, facts, 1)
}
