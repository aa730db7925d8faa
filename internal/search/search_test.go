package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/notefold/notefold/internal/store"
	"github.com/notefold/notefold/internal/testdb"
)

func setup(t *testing.T) (*Service, store.Store) {
	t.Helper()
	st, err := testdb.NewStoreInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewService(st), st
}

func addFolder(t *testing.T, st store.Store, id, name string) {
	t.Helper()
	require.NoError(t, st.AddFolder(context.Background(), &store.Folder{ID: id, Name: name}))
}

func addNote(t *testing.T, st store.Store, n *store.Note) {
	t.Helper()
	if n.ID == "" {
		n.ID = n.Title + "-id"
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Unix(1000, 0)
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}
	require.NoError(t, st.AddNote(context.Background(), n))
}

func titles(notes []store.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Title)
	}
	return out
}

func TestSearch_TitleSubstringCaseInsensitive(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	addFolder(t, st, "f", "Notes")
	addNote(t, st, &store.Note{Title: "Grocery List", Type: store.TypeRegular, Content: "milk", FolderID: "f"})
	addNote(t, st, &store.Note{Title: "Workout Plan", Type: store.TypeRegular, Content: "squats", FolderID: "f"})

	got, err := svc.Search(ctx, "grocery", Fields{Title: true})
	require.NoError(t, err)
	require.Equal(t, []string{"Grocery List"}, titles(got))
}

func TestSearch_EmptyQueryReturnsNothing(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	addFolder(t, st, "f", "Notes")
	addNote(t, st, &store.Note{Title: "Anything", Type: store.TypeRegular, Content: "x", FolderID: "f"})

	got, err := svc.Search(ctx, "   ", Fields{Title: true})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSearch_DisabledFieldDoesNotMatch(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	addFolder(t, st, "f", "Notes")
	addNote(t, st, &store.Note{Title: "Plain", Type: store.TypeRegular, Content: "needle inside", FolderID: "f"})

	got, err := svc.Search(ctx, "needle", Fields{Title: true})
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = svc.Search(ctx, "needle", Fields{Content: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSearch_AllFieldsOffMeansAllOn(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	addFolder(t, st, "f", "Recipes")
	addNote(t, st, &store.Note{Title: "Soup", Type: store.TypeRegular, Content: "boil water", FolderID: "f"})

	got, err := svc.Search(ctx, "recip", Fields{})
	require.NoError(t, err)
	require.Len(t, got, 1, "folder name matched with the zero field set")
}

func TestSearch_FolderNameField(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	addFolder(t, st, "f1", "Work Projects")
	addFolder(t, st, "f2", "Personal")
	addNote(t, st, &store.Note{Title: "Standup", Type: store.TypeRegular, Content: "x", FolderID: "f1"})
	addNote(t, st, &store.Note{Title: "Diary", Type: store.TypeRegular, Content: "x", FolderID: "f2"})

	got, err := svc.Search(ctx, "work", Fields{FolderName: true})
	require.NoError(t, err)
	require.Equal(t, []string{"Standup"}, titles(got))
}

func TestSearch_TagSubstring(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	addFolder(t, st, "f", "Notes")
	n := &store.Note{Title: "Tagged", Type: store.TypeRegular, Content: "x", FolderID: "f"}
	addNote(t, st, n)
	tag := &store.Tag{ID: "t1", Name: "ProjectAlpha"}
	require.NoError(t, st.AddTag(ctx, tag))
	require.NoError(t, st.ReplaceNoteTags(ctx, n.ID, []string{tag.ID}))

	got, err := svc.Search(ctx, "alpha", Fields{Tags: true})
	require.NoError(t, err)
	require.Equal(t, []string{"Tagged"}, titles(got))
}

func TestSearch_ChecklistItemTextViaContentField(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	addFolder(t, st, "f", "Notes")
	n := &store.Note{Title: "Todo", Type: store.TypeChecklist, FolderID: "f"}
	addNote(t, st, n)
	require.NoError(t, st.AddChecklistItem(ctx, &store.ChecklistItem{
		ID: "i1", NoteID: n.ID, Text: "Buy birthday present",
	}))

	got, err := svc.Search(ctx, "birthday", Fields{Content: true})
	require.NoError(t, err)
	require.Equal(t, []string{"Todo"}, titles(got))
}

func TestSearch_OrdersByModifiedDescending(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	addFolder(t, st, "f", "Notes")
	addNote(t, st, &store.Note{
		Title: "Old note", Type: store.TypeRegular, Content: "match", FolderID: "f",
		CreatedAt: time.Unix(1000, 0), UpdatedAt: time.Unix(1000, 0),
	})
	addNote(t, st, &store.Note{
		Title: "New note", Type: store.TypeRegular, Content: "match", FolderID: "f",
		CreatedAt: time.Unix(1000, 0), UpdatedAt: time.Unix(3000, 0),
	})
	addNote(t, st, &store.Note{
		Title: "Mid note", Type: store.TypeRegular, Content: "match", FolderID: "f",
		CreatedAt: time.Unix(1000, 0), UpdatedAt: time.Unix(2000, 0),
	})

	got, err := svc.Search(ctx, "match", Fields{Content: true})
	require.NoError(t, err)
	require.Equal(t, []string{"New note", "Mid note", "Old note"}, titles(got))
}
