package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/atinyakov/GophShare/internal/lifecycle"
	"github.com/atinyakov/GophShare/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.UnixMilli(1_767_225_600_000)

func testSecret(id string, created time.Time, ad lifecycle.AutoDestroy) models.Secret {
	return models.Secret{
		ID:               id,
		Title:            "title " + id,
		Envelope:         "ZW52ZWxvcGU=",
		Key:              "a2V5",
		BurnAfterView:    true,
		AutoDestroyAfter: ad,
		CreatedAt:        created,
	}
}

// runStoreContract exercises behaviour every backend must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("create get list", func(t *testing.T) {
		s := newStore(t)
		older := testSecret("a", baseTime, lifecycle.Never)
		newer := testSecret("b", baseTime.Add(time.Second), lifecycle.After5m)
		require.NoError(t, s.Create(ctx, older))
		require.NoError(t, s.Create(ctx, newer))

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, older.Title, got.Title)
		assert.True(t, got.CreatedAt.Equal(older.CreatedAt))

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "b", list[0].ID)
		assert.Equal(t, "a", list[1].ID)
	})

	t.Run("duplicate id", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, testSecret("a", baseTime, lifecycle.Never)))
		assert.ErrorIs(t, s.Create(ctx, testSecret("a", baseTime, lifecycle.Never)), ErrAlreadyExists)
	})

	t.Run("missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.IncrementViewCount(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
		list, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, testSecret("a", baseTime, lifecycle.Never)))
		require.NoError(t, s.Delete(ctx, "a"))
		require.NoError(t, s.Delete(ctx, "a"))
		_, err := s.Get(ctx, "a")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("view count", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, testSecret("a", baseTime, lifecycle.Never)))
		for i := 1; i <= 3; i++ {
			sec, err := s.IncrementViewCount(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, i, sec.ViewCount)
		}
		sec, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 3, sec.ViewCount)
	})

	t.Run("concurrent view counts", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, testSecret("a", baseTime, lifecycle.Never)))

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.IncrementViewCount(ctx, "a"); err != nil {
					t.Error(err)
				}
			}()
		}
		wg.Wait()

		sec, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 20, sec.ViewCount)
	})

	t.Run("delete expired", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, testSecret("never", baseTime, lifecycle.Never)))
		require.NoError(t, s.Create(ctx, testSecret("30s", baseTime, lifecycle.After30s)))
		require.NoError(t, s.Create(ctx, testSecret("5m", baseTime, lifecycle.After5m)))

		removed, err := s.DeleteExpired(ctx, baseTime.Add(29*time.Second))
		require.NoError(t, err)
		assert.Zero(t, removed)

		removed, err = s.DeleteExpired(ctx, baseTime.Add(30*time.Second))
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)

		removed, err = s.DeleteExpired(ctx, baseTime.Add(30*time.Second))
		require.NoError(t, err)
		assert.Zero(t, removed)

		list, err := s.List(ctx)
		require.NoError(t, err)
		ids := make([]string, 0, len(list))
		for _, sec := range list {
			ids = append(ids, sec.ID)
		}
		assert.ElementsMatch(t, []string{"never", "5m"}, ids)
	})

	t.Run("many secrets", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 50; i++ {
			require.NoError(t, s.Create(ctx, testSecret(fmt.Sprintf("id-%02d", i), baseTime.Add(time.Duration(i)*time.Millisecond), lifecycle.Never)))
		}
		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 50)
		assert.Equal(t, "id-49", list[0].ID)
		assert.Equal(t, "id-00", list[49].ID)
	})
}
