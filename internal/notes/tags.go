package notes

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/notefold/notefold/internal/errs"
	"github.com/notefold/notefold/internal/store"
)

// AdmitTagName validates raw tag input against the note's current tag names:
// trimmed, non-empty, no internal whitespace, not already present
// case-insensitively. Returns the normalized name.
func AdmitTagName(current []store.Tag, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", errs.New(errs.InvalidArgument, "tag name must not be empty")
	}
	if strings.ContainsAny(name, " \t") {
		return "", errs.New(errs.InvalidArgument, "tag name must not contain whitespace")
	}
	for _, t := range current {
		if strings.EqualFold(t.Name, name) {
			return "", errs.New(errs.AlreadyExists, "tag is already on this note")
		}
	}
	return name, nil
}

// reconcileTags replaces the note's tag set from the names on n.Tags. Each
// name attaches its case-insensitive vocabulary match if one exists and
// creates a new tag otherwise; the vocabulary snapshot is extended as new
// tags appear so a repeated new name within one commit never duplicates.
// The full-replace semantics drop associations whose names were removed.
func (s *Service) reconcileTags(ctx context.Context, n *store.Note) error {
	vocabulary, err := s.store.ListAllTags(ctx)
	if err != nil {
		return err
	}
	byName := make(map[string]store.Tag, len(vocabulary))
	for _, t := range vocabulary {
		byName[strings.ToLower(t.Name)] = t
	}

	resolved := make([]store.Tag, 0, len(n.Tags))
	tagIDs := make([]string, 0, len(n.Tags))
	seen := make(map[string]bool, len(n.Tags))

	for _, want := range n.Tags {
		key := strings.ToLower(strings.TrimSpace(want.Name))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		existing, ok := byName[key]
		if !ok {
			existing = store.Tag{ID: uuid.New().String(), Name: strings.TrimSpace(want.Name)}
			if err := s.store.AddTag(ctx, &existing); err != nil {
				return err
			}
			byName[key] = existing
		}
		resolved = append(resolved, existing)
		tagIDs = append(tagIDs, existing.ID)
	}

	if err := s.store.ReplaceNoteTags(ctx, n.ID, tagIDs); err != nil {
		return err
	}
	n.Tags = resolved
	return nil
}

// DeleteTag removes the tag matching name case-insensitively from the
// vocabulary, detaching it from every note that referenced it. No note is
// left referencing a tag identity that no longer exists.
func (s *Service) DeleteTag(ctx context.Context, name string) error {
	t, err := s.store.FindTagByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	if err := s.store.RemoveTag(ctx, t.ID); err != nil {
		return err
	}
	s.log.Info("tag deleted", "tag_id", t.ID, "name", t.Name)
	return nil
}
