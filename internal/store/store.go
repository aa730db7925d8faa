// Package store defines the persistence port for the note and folder model,
// plus the SQLite implementation of it. Entities are flat records with
// id-based back-references; relationships are resolved by query, never by
// pointer graphs.
package store

import (
	"context"
	"time"
)

// NoteType distinguishes the three payload shapes a note can have.
// Stored as INTEGER in the DB: 0=checklist, 1=regular, 2=long format.
type NoteType int

const (
	TypeChecklist  NoteType = 0
	TypeRegular    NoteType = 1
	TypeLongFormat NoteType = 2
)

func (t NoteType) String() string {
	switch t {
	case TypeChecklist:
		return "checklist"
	case TypeRegular:
		return "regular"
	case TypeLongFormat:
		return "long_format"
	default:
		return "unknown"
	}
}

// Folder is a named node in the folder tree. ParentID is empty for roots.
type Folder struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`

	// Marked is the transient selection flag used to batch bulk operations.
	// It is never persisted and resets to false whenever a list is reloaded.
	Marked bool `json:"-"`
}

// Note is a titled unit of content owned by exactly one folder.
// Content carries the payload for regular and long-format notes; for
// checklist notes the payload is the Items collection and Content is unused.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Type      NoteType  `json:"type"`
	FolderID  string    `json:"folder_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tags  []Tag           `json:"tags,omitempty"`
	Items []ChecklistItem `json:"items,omitempty"`

	// Marked is the transient selection flag; see Folder.Marked.
	Marked bool `json:"-"`
}

// Tag is a shared label attachable to any number of notes. Names are unique
// across the vocabulary case-insensitively.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ChecklistItem is a single line of a checklist note's payload.
type ChecklistItem struct {
	ID      string `json:"id"`
	NoteID  string `json:"note_id"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// Store is the persistence port the engines operate against. A successful
// add/update/remove is durably visible to subsequent calls before returning.
// Implementations report missing rows as errs.NotFound and infrastructure
// failures as errs.Unavailable.
type Store interface {
	ListFolders(ctx context.Context) ([]Folder, error)
	FindFolderByID(ctx context.Context, id string) (*Folder, error)
	AddFolder(ctx context.Context, f *Folder) error
	UpdateFolder(ctx context.Context, f *Folder) error
	RemoveFolder(ctx context.Context, id string) error

	// ListNotesInFolder returns the folder's notes with checklist items and
	// tags resolved. Notes come back with Marked reset to false.
	ListNotesInFolder(ctx context.Context, folderID string) ([]Note, error)
	ListAllNotes(ctx context.Context) ([]Note, error)
	FindNoteByID(ctx context.Context, id string) (*Note, error)
	AddNote(ctx context.Context, n *Note) error
	UpdateNote(ctx context.Context, n *Note) error
	// RemoveNote deletes the note together with its checklist items and its
	// tag associations. Tag entities themselves are never deleted here.
	RemoveNote(ctx context.Context, id string) error

	ListAllTags(ctx context.Context) ([]Tag, error)
	// FindTagByName matches case-insensitively.
	FindTagByName(ctx context.Context, name string) (*Tag, error)
	AddTag(ctx context.Context, t *Tag) error
	// RemoveTag deletes the tag and detaches it from every note that
	// referenced it, leaving no dangling associations.
	RemoveTag(ctx context.Context, id string) error

	// ReplaceNoteTags replaces the note's tag associations with exactly the
	// given tag ids.
	ReplaceNoteTags(ctx context.Context, noteID string, tagIDs []string) error
	AddChecklistItem(ctx context.Context, item *ChecklistItem) error
	RemoveChecklistItemsForNote(ctx context.Context, noteID string) error
}
