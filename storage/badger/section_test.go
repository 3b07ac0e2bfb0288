package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casewise/ontolink/core"
	"github.com/casewise/ontolink/storage"
)

func TestSectionRepository(t *testing.T) {
	ctx := context.Background()
	stores := NewTestStores(t)

	t.Run("add derives a content id", func(t *testing.T) {
		added, err := stores.Sections.AddSections(ctx, &core.Section{
			Text: "the design review found no defects",
			Type: core.SectionTypeFacts,
		})
		require.NoError(t, err)
		require.Len(t, added, 1)
		assert.NotZero(t, added[0].Id)
		assert.False(t, added[0].InsertedAt.IsZero())

		// same content, same id, no duplicate
		again, err := stores.Sections.AddSections(ctx, &core.Section{
			Text: "the design review found no defects",
			Type: core.SectionTypeFacts,
		})
		require.NoError(t, err)
		assert.Equal(t, added[0].Id, again[0].Id)

		all, err := stores.Sections.GetAllSections(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("update persists the vector", func(t *testing.T) {
		added, err := stores.Sections.AddSections(ctx, &core.Section{
			Text: "to update",
			Type: core.SectionTypeAnalysis,
		})
		require.NoError(t, err)

		section := added[0]
		section.Vector = []float32{0.1, 0.2}
		_, err = stores.Sections.UpdateSections(ctx, section)
		require.NoError(t, err)

		stored, err := stores.Sections.GetSection(ctx, section.Id)
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2}, stored.Vector)
	})

	t.Run("update of a missing section fails", func(t *testing.T) {
		_, err := stores.Sections.UpdateSections(ctx, &core.Section{
			Id:   999,
			Text: "ghost",
			Type: core.SectionTypeFacts,
		})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("get missing section fails", func(t *testing.T) {
		_, err := stores.Sections.GetSection(ctx, 12345)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("get many returns only existing", func(t *testing.T) {
		added, err := stores.Sections.AddSections(ctx, &core.Section{
			Text: "exists",
			Type: core.SectionTypeConclusion,
		})
		require.NoError(t, err)

		found, err := stores.Sections.GetSections(ctx, added[0].Id, core.ID(404))
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, added[0].Id, found[0].Id)
	})

	t.Run("delete", func(t *testing.T) {
		added, err := stores.Sections.AddSections(ctx, &core.Section{
			Text: "to delete",
			Type: core.SectionTypeQuestion,
		})
		require.NoError(t, err)

		require.NoError(t, stores.Sections.DeleteSections(ctx, added[0].Id))

		_, err = stores.Sections.GetSection(ctx, added[0].Id)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		assert.ErrorIs(t, stores.Sections.DeleteSections(ctx, added[0].Id), storage.ErrNotFound)
	})
}
