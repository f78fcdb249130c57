package persistence

import (
	"context"
	"testing"

	"github.com/hazchem/backend/internal/domain/identity"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormPersonRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormPersonRepository(db)

	for _, p := range []identity.Profile{
		{Name: "王五", Email: "Wang.Wu@Example.com", Department: "安全环保部", Phone: "13800138000"},
		{Name: "赵六", Department: "研发中心"},
		{Name: "孙七", Email: "sun7@example.com", Department: "安全环保部"},
	} {
		person, err := identity.NewPerson(p)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, person))
	}

	t.Run("email lookups ignore case", func(t *testing.T) {
		p, err := repo.FindByEmail(ctx, " WANG.WU@example.com ")
		require.NoError(t, err)
		assert.Equal(t, "王五", p.Name)

		exists, err := repo.ExistsByEmail(ctx, "SUN7@EXAMPLE.COM")
		require.NoError(t, err)
		assert.True(t, exists)

		_, err = repo.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("several people may have no email", func(t *testing.T) {
		p, err := identity.NewPerson(identity.Profile{Name: "周八"})
		require.NoError(t, err)
		assert.NoError(t, repo.Create(ctx, p))
	})

	t.Run("filters and pages", func(t *testing.T) {
		f := identity.PersonFilter{Department: "安全"}
		f.Normalize()
		list, total, err := repo.FindAll(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, list, 2)

		all, err := repo.FindAllUnpaged(ctx, identity.PersonFilter{Phone: "138"})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "王五", all[0].Name)
	})

	t.Run("save and delete", func(t *testing.T) {
		p, err := repo.FindByEmail(ctx, "sun7@example.com")
		require.NoError(t, err)
		p.Status = identity.StatusDisabled
		require.NoError(t, repo.Save(ctx, p))

		reloaded, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, reloaded.IsActive())

		require.NoError(t, repo.Delete(ctx, p.ID))
		assert.ErrorIs(t, repo.Delete(ctx, p.ID), shared.ErrNotFound)
	})

	t.Run("register records", func(t *testing.T) {
		p, err := repo.FindByEmail(ctx, "wang.wu@example.com")
		require.NoError(t, err)
		rec := identity.NewRegisterRecord(p.ID.String(), "10.0.0.8", "")
		require.NoError(t, NewGormRegisterRecordRepository(db).Create(ctx, rec))
		assert.Equal(t, "web", rec.Channel)
	})
}
