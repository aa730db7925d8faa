package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/notefold/notefold/internal/doc"
	"github.com/notefold/notefold/internal/store"
	"github.com/notefold/notefold/internal/testdb"
)

func setup(t *testing.T) store.Store {
	t.Helper()
	st, err := testdb.NewStoreInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.AddFolder(context.Background(), &store.Folder{ID: "f", Name: "Notes"}))
	return st
}

func addNote(t *testing.T, st store.Store, n *store.Note) {
	t.Helper()
	n.FolderID = "f"
	n.CreatedAt = time.Unix(1000, 0)
	n.UpdatedAt = n.CreatedAt
	require.NoError(t, st.AddNote(context.Background(), n))
}

func TestCollect_EmptyStore(t *testing.T) {
	st := setup(t)

	summary, err := Collect(context.Background(), st, doc.NewMarkdown())
	require.NoError(t, err)
	require.Len(t, summary.ByType, 3)
	for _, row := range summary.ByType {
		require.Zero(t, row.Count)
		require.Zero(t, row.Words)
	}
}

func TestCollect_CountsAndWordsPerType(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	addNote(t, st, &store.Note{ID: "r1", Title: "R1", Type: store.TypeRegular, Content: "one two three"})
	addNote(t, st, &store.Note{ID: "r2", Title: "R2", Type: store.TypeRegular, Content: "four"})

	addNote(t, st, &store.Note{ID: "c1", Title: "C1", Type: store.TypeChecklist})
	require.NoError(t, st.AddChecklistItem(ctx, &store.ChecklistItem{ID: "i1", NoteID: "c1", Text: "buy milk"}))
	require.NoError(t, st.AddChecklistItem(ctx, &store.ChecklistItem{ID: "i2", NoteID: "c1", Text: "rest"}))

	addNote(t, st, &store.Note{ID: "l1", Title: "L1", Type: store.TypeLongFormat, Content: "# Heading\n\nSome **bold** words"})

	summary, err := Collect(ctx, st, doc.NewMarkdown())
	require.NoError(t, err)

	require.Equal(t, store.TypeChecklist, summary.ByType[0].Type)
	require.Equal(t, 1, summary.ByType[0].Count)
	require.Equal(t, 3, summary.ByType[0].Words)

	require.Equal(t, store.TypeRegular, summary.ByType[1].Type)
	require.Equal(t, 2, summary.ByType[1].Count)
	require.Equal(t, 4, summary.ByType[1].Words)

	require.Equal(t, store.TypeLongFormat, summary.ByType[2].Type)
	require.Equal(t, 1, summary.ByType[2].Count)
	require.Equal(t, 4, summary.ByType[2].Words, "markup stripped before counting")
}
