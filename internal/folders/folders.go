// Package folders implements the folder tree engine: hierarchy navigation,
// sibling-scope name uniqueness, and cascading deletion.
package folders

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/notefold/notefold/internal/errs"
	"github.com/notefold/notefold/internal/obs"
	"github.com/notefold/notefold/internal/store"
)

// Service operates the folder tree against the persistence port.
type Service struct {
	store store.Store
	log   *slog.Logger
}

// NewService creates a folder tree service.
func NewService(st store.Store) *Service {
	return &Service{store: st, log: obs.Pkg("folders")}
}

// List returns all folders, freshly loaded (marks reset by construction).
func (s *Service) List(ctx context.Context) ([]store.Folder, error) {
	return s.store.ListFolders(ctx)
}

// ChildrenOf returns the direct children of parentID ("" for roots).
func (s *Service) ChildrenOf(ctx context.Context, parentID string) ([]store.Folder, error) {
	all, err := s.store.ListFolders(ctx)
	if err != nil {
		return nil, err
	}
	var children []store.Folder
	for _, f := range all {
		if f.ParentID == parentID {
			children = append(children, f)
		}
	}
	return children, nil
}

// Create adds a folder under parentID ("" for a root folder). The name must
// be non-blank and unique among siblings case-insensitively. The parent is
// fixed at creation and there is no reparent operation, so the tree can never
// acquire a cycle.
func (s *Service) Create(ctx context.Context, name, parentID string) (*store.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.New(errs.InvalidArgument, "folder name must not be empty")
	}
	if parentID != "" {
		if _, err := s.store.FindFolderByID(ctx, parentID); err != nil {
			return nil, err
		}
	}
	if err := s.checkSiblingName(ctx, name, parentID, ""); err != nil {
		return nil, err
	}

	f := &store.Folder{
		ID:       uuid.New().String(),
		Name:     name,
		ParentID: parentID,
	}
	if err := s.store.AddFolder(ctx, f); err != nil {
		return nil, err
	}
	s.log.Info("folder created", "folder_id", f.ID, "name", f.Name, "parent_id", f.ParentID)
	return f, nil
}

// Rename changes a folder's name, enforcing the same sibling uniqueness as
// Create but excluding the folder itself.
func (s *Service) Rename(ctx context.Context, folderID, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return errs.New(errs.InvalidArgument, "folder name must not be empty")
	}
	f, err := s.store.FindFolderByID(ctx, folderID)
	if err != nil {
		return err
	}
	if err := s.checkSiblingName(ctx, newName, f.ParentID, f.ID); err != nil {
		return err
	}

	f.Name = newName
	if err := s.store.UpdateFolder(ctx, f); err != nil {
		return err
	}
	s.log.Info("folder renamed", "folder_id", f.ID, "name", newName)
	return nil
}

// Delete removes the folder with everything it contains. Per node: the
// folder's notes first, then each child folder depth-first, then the node
// itself, so nothing is ever left referencing a deleted parent. The cascade
// is best-effort top-down; descendants already deleted stay deleted if a
// later step fails.
func (s *Service) Delete(ctx context.Context, folderID string) error {
	f, err := s.store.FindFolderByID(ctx, folderID)
	if err != nil {
		return err
	}
	if err := s.deleteRecursive(ctx, f.ID); err != nil {
		return err
	}
	s.log.Info("folder deleted", "folder_id", f.ID, "name", f.Name)
	return nil
}

func (s *Service) deleteRecursive(ctx context.Context, folderID string) error {
	notes, err := s.store.ListNotesInFolder(ctx, folderID)
	if err != nil {
		return err
	}
	for _, n := range notes {
		if err := s.store.RemoveNote(ctx, n.ID); err != nil {
			return err
		}
	}

	children, err := s.ChildrenOf(ctx, folderID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := s.deleteRecursive(ctx, child.ID); err != nil {
			return err
		}
	}

	return s.store.RemoveFolder(ctx, folderID)
}

// DeleteMarked cascades deletion over every marked folder. Folders are
// processed shallowest-first so a marked descendant of a marked ancestor is
// already gone by the time its turn comes; such folders are skipped instead
// of failing.
func (s *Service) DeleteMarked(ctx context.Context, folders []store.Folder) error {
	marked := make([]store.Folder, 0, len(folders))
	for _, f := range folders {
		if f.Marked {
			marked = append(marked, f)
		}
	}
	if len(marked) == 0 {
		return nil
	}

	depths, err := s.depths(ctx)
	if err != nil {
		return err
	}
	sort.SliceStable(marked, func(i, j int) bool {
		return depths[marked[i].ID] < depths[marked[j].ID]
	})

	for _, f := range marked {
		if _, err := s.store.FindFolderByID(ctx, f.ID); errs.IsCode(err, errs.NotFound) {
			// Already removed by an ancestor's cascade.
			continue
		} else if err != nil {
			return err
		}
		if err := s.deleteRecursive(ctx, f.ID); err != nil {
			return err
		}
	}
	return nil
}

// depths returns each folder's nesting level, roots at 0.
func (s *Service) depths(ctx context.Context) (map[string]int, error) {
	all, err := s.store.ListFolders(ctx)
	if err != nil {
		return nil, err
	}
	parents := make(map[string]string, len(all))
	for _, f := range all {
		parents[f.ID] = f.ParentID
	}

	depths := make(map[string]int, len(all))
	for _, f := range all {
		depth := 0
		for id := f.ParentID; id != ""; id = parents[id] {
			depth++
			if depth > len(all) {
				// parent chain longer than the folder count means a cycle
				break
			}
		}
		depths[f.ID] = depth
	}
	return depths, nil
}

// EnsureDefault creates a single root folder with the given name if the
// store holds no folders at all (first-run bootstrap).
func (s *Service) EnsureDefault(ctx context.Context, name string) (*store.Folder, error) {
	all, err := s.store.ListFolders(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > 0 {
		return &all[0], nil
	}
	return s.Create(ctx, name, "")
}

func (s *Service) checkSiblingName(ctx context.Context, name, parentID, excludeID string) error {
	siblings, err := s.ChildrenOf(ctx, parentID)
	if err != nil {
		return err
	}
	for _, sib := range siblings {
		if sib.ID == excludeID {
			continue
		}
		if strings.EqualFold(sib.Name, name) {
			return errs.New(errs.AlreadyExists, "a folder with this name already exists here")
		}
	}
	return nil
}
