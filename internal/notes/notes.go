// Package notes implements the note mutation engine: lifecycle, type-specific
// payload handling, checklist reconciliation, tag reconciliation, and the
// snippet projection.
package notes

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notefold/notefold/internal/doc"
	"github.com/notefold/notefold/internal/errs"
	"github.com/notefold/notefold/internal/obs"
	"github.com/notefold/notefold/internal/store"
)

// MaxTitleLen is the maximum note title length in characters.
const MaxTitleLen = 60

// Service handles note mutations against the persistence port.
type Service struct {
	store store.Store
	codec doc.Codec
	log   *slog.Logger
}

// NewService creates a note mutation service.
func NewService(st store.Store, codec doc.Codec) *Service {
	return &Service{store: st, codec: codec, log: obs.Pkg("notes")}
}

// NewDraft seeds a new note for the given folder and type: current timestamps,
// blank title, empty payload. The caller fills in title, content, items, and
// tags before Commit.
func (s *Service) NewDraft(folderID string, typ store.NoteType) *store.Note {
	now := time.Now().UTC()
	return &store.Note{
		ID:        uuid.New().String(),
		Type:      typ,
		FolderID:  folderID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ListInFolder returns the folder's notes, freshly loaded with tags and
// checklist items resolved. Marks reset on every reload.
func (s *Service) ListInFolder(ctx context.Context, folderID string) ([]store.Note, error) {
	return s.store.ListNotesInFolder(ctx, folderID)
}

// Commit validates and persists the note, inserting or updating as needed.
// For checklist notes the stored item set is fully replaced, discarding
// blank-text items. Tags are reconciled against the vocabulary as a full
// replace. Validation and uniqueness run before any write.
func (s *Service) Commit(ctx context.Context, n *store.Note) error {
	n.Title = strings.TrimSpace(n.Title)
	if err := s.validate(n); err != nil {
		return err
	}
	if err := s.checkTitleUnique(ctx, n.Title, n.FolderID, n.ID); err != nil {
		return err
	}

	n.UpdatedAt = time.Now().UTC()

	_, err := s.store.FindNoteByID(ctx, n.ID)
	switch {
	case errs.IsCode(err, errs.NotFound):
		if err := s.store.AddNote(ctx, n); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if err := s.store.UpdateNote(ctx, n); err != nil {
			return err
		}
	}

	if n.Type == store.TypeChecklist {
		if err := s.replaceChecklistItems(ctx, n); err != nil {
			return err
		}
	}
	if err := s.reconcileTags(ctx, n); err != nil {
		return err
	}

	s.log.Info("note committed", "note_id", n.ID, "title", n.Title, "type", n.Type.String())
	return nil
}

func (s *Service) validate(n *store.Note) error {
	if n.Title == "" {
		return errs.New(errs.InvalidArgument, "title must not be empty")
	}
	if len([]rune(n.Title)) > MaxTitleLen {
		return errs.New(errs.InvalidArgument, "title must be at most 60 characters")
	}

	switch n.Type {
	case store.TypeRegular:
		if strings.TrimSpace(n.Content) == "" {
			return errs.New(errs.InvalidArgument, "a text note needs content")
		}
	case store.TypeChecklist:
		if len(nonBlankItems(n.Items)) == 0 {
			return errs.New(errs.InvalidArgument, "a checklist needs at least one item")
		}
	case store.TypeLongFormat:
		// Only the title is required; the document may be empty.
	default:
		return errs.New(errs.InvalidArgument, "unknown note type")
	}
	return nil
}

func (s *Service) checkTitleUnique(ctx context.Context, title, folderID, excludeID string) error {
	siblings, err := s.store.ListNotesInFolder(ctx, folderID)
	if err != nil {
		return err
	}
	normalized := strings.ToLower(strings.TrimSpace(title))
	for _, sib := range siblings {
		if sib.ID == excludeID {
			continue
		}
		if strings.ToLower(strings.TrimSpace(sib.Title)) == normalized {
			return errs.New(errs.AlreadyExists, "a note with this title already exists in the folder")
		}
	}
	return nil
}

// replaceChecklistItems persists the edited item set with delete-then-insert
// semantics, dropping blank items. n.Items is rewritten to the persisted set.
func (s *Service) replaceChecklistItems(ctx context.Context, n *store.Note) error {
	if err := s.store.RemoveChecklistItemsForNote(ctx, n.ID); err != nil {
		return err
	}

	kept := nonBlankItems(n.Items)
	for i := range kept {
		kept[i].ID = uuid.New().String()
		kept[i].NoteID = n.ID
		kept[i].Text = strings.TrimSpace(kept[i].Text)
		if err := s.store.AddChecklistItem(ctx, &kept[i]); err != nil {
			return err
		}
	}
	n.Items = kept
	return nil
}

func nonBlankItems(items []store.ChecklistItem) []store.ChecklistItem {
	kept := make([]store.ChecklistItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Text) == "" {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// Delete removes the note together with its checklist items and tag
// associations. Shared tags survive; they are only removed via DeleteTag.
func (s *Service) Delete(ctx context.Context, noteID string) error {
	if err := s.store.RemoveNote(ctx, noteID); err != nil {
		return err
	}
	s.log.Info("note deleted", "note_id", noteID)
	return nil
}

// Move reassigns the note to targetFolderID and refreshes its modified
// timestamp. Moving a note onto its current folder is a no-op. Title
// uniqueness is NOT re-checked against the destination folder; a moved note
// can collide with an existing title there.
func (s *Service) Move(ctx context.Context, n *store.Note, targetFolderID string) error {
	if targetFolderID == n.FolderID {
		return nil
	}
	if _, err := s.store.FindFolderByID(ctx, targetFolderID); err != nil {
		return err
	}

	n.FolderID = targetFolderID
	n.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateNote(ctx, n); err != nil {
		return err
	}
	s.log.Info("note moved", "note_id", n.ID, "folder_id", targetFolderID)
	return nil
}

// Copy duplicates the note into targetFolderID: fresh identity, title
// suffixed with " - copy", same type and content, a snapshot of the source's
// tag associations, and cloned checklist items with new identities. Like
// Move, the copy's title is not checked for uniqueness in the target folder.
func (s *Service) Copy(ctx context.Context, src *store.Note, targetFolderID string) (*store.Note, error) {
	if _, err := s.store.FindFolderByID(ctx, targetFolderID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cp := &store.Note{
		ID:        uuid.New().String(),
		Title:     src.Title + " - copy",
		Content:   src.Content,
		Type:      src.Type,
		FolderID:  targetFolderID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.AddNote(ctx, cp); err != nil {
		return nil, err
	}

	for _, item := range src.Items {
		clone := store.ChecklistItem{
			ID:      uuid.New().String(),
			NoteID:  cp.ID,
			Text:    item.Text,
			Checked: item.Checked,
		}
		if err := s.store.AddChecklistItem(ctx, &clone); err != nil {
			return nil, err
		}
		cp.Items = append(cp.Items, clone)
	}

	if len(src.Tags) > 0 {
		tagIDs := make([]string, 0, len(src.Tags))
		for _, t := range src.Tags {
			tagIDs = append(tagIDs, t.ID)
		}
		if err := s.store.ReplaceNoteTags(ctx, cp.ID, tagIDs); err != nil {
			return nil, err
		}
		cp.Tags = append([]store.Tag(nil), src.Tags...)
	}

	s.log.Info("note copied", "source_id", src.ID, "note_id", cp.ID, "folder_id", targetFolderID)
	return cp, nil
}

// DeleteMarked deletes every marked note in the slice.
func (s *Service) DeleteMarked(ctx context.Context, notes []store.Note) error {
	for _, n := range notes {
		if !n.Marked {
			continue
		}
		if err := s.Delete(ctx, n.ID); err != nil {
			return err
		}
	}
	return nil
}

// MoveMarked moves every marked note to the one chosen destination.
func (s *Service) MoveMarked(ctx context.Context, notes []store.Note, targetFolderID string) error {
	for i := range notes {
		if !notes[i].Marked {
			continue
		}
		if err := s.Move(ctx, &notes[i], targetFolderID); err != nil {
			return err
		}
	}
	return nil
}

// CopyMarked copies every marked note into the one chosen destination.
func (s *Service) CopyMarked(ctx context.Context, notes []store.Note, targetFolderID string) ([]store.Note, error) {
	var copies []store.Note
	for i := range notes {
		if !notes[i].Marked {
			continue
		}
		cp, err := s.Copy(ctx, &notes[i], targetFolderID)
		if err != nil {
			return copies, err
		}
		copies = append(copies, *cp)
	}
	return copies, nil
}
