// Package search implements the multi-field note search engine.
package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/notefold/notefold/internal/errs"
	"github.com/notefold/notefold/internal/obs"
	"github.com/notefold/notefold/internal/store"
)

// Fields enables or disables matching per field. The zero value (all
// disabled) behaves as if every field were enabled.
type Fields struct {
	Title      bool
	FolderName bool
	Content    bool
	Tags       bool
}

func (f Fields) noneEnabled() bool {
	return !f.Title && !f.FolderName && !f.Content && !f.Tags
}

// Service runs read-only queries against the persistence port.
type Service struct {
	store store.Store
	log   *slog.Logger
}

// NewService creates a search service.
func NewService(st store.Store) *Service {
	return &Service{store: st, log: obs.Pkg("search")}
}

// Search returns notes where any enabled field contains the query as a
// case-insensitive substring, ordered by last-modified descending (ties keep
// store order). An empty query yields an empty result, never everything.
// Store failures come back as errs.Unavailable with an empty result; the
// caller surfaces them as a non-fatal message.
func (s *Service) Search(ctx context.Context, query string, fields Fields) ([]store.Note, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}
	if fields.noneEnabled() {
		fields = Fields{Title: true, FolderName: true, Content: true, Tags: true}
	}

	folderNames, err := s.folderNames(ctx)
	if err != nil {
		s.log.Warn("search aborted", "err", err)
		return nil, err
	}
	all, err := s.store.ListAllNotes(ctx)
	if err != nil {
		s.log.Warn("search aborted", "err", err)
		return nil, err
	}

	var matches []store.Note
	for _, n := range all {
		if matchNote(&n, query, fields, folderNames[n.FolderID]) {
			matches = append(matches, n)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].UpdatedAt.After(matches[j].UpdatedAt)
	})
	return matches, nil
}

func (s *Service) folderNames(ctx context.Context) (map[string]string, error) {
	folders, err := s.store.ListFolders(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "search is unavailable", err)
	}
	names := make(map[string]string, len(folders))
	for _, f := range folders {
		names[f.ID] = f.Name
	}
	return names, nil
}

func matchNote(n *store.Note, query string, fields Fields, folderName string) bool {
	if fields.Title && contains(n.Title, query) {
		return true
	}
	if fields.FolderName && contains(folderName, query) {
		return true
	}
	if fields.Content && matchContent(n, query) {
		return true
	}
	if fields.Tags {
		for _, t := range n.Tags {
			if contains(t.Name, query) {
				return true
			}
		}
	}
	return false
}

// matchContent tests the note's canonical payload: raw content for regular
// and long-format notes (markup included, no document parsing), checklist
// item text for checklist notes.
func matchContent(n *store.Note, query string) bool {
	if n.Type == store.TypeChecklist {
		for _, item := range n.Items {
			if contains(item.Text, query) {
				return true
			}
		}
		return false
	}
	return contains(n.Content, query)
}

func contains(field, loweredQuery string) bool {
	return strings.Contains(strings.ToLower(field), loweredQuery)
}
