package services

import (
	"errors"
	"fmt"

	"github.com/panda-moodle/moodle-repository-pandavideo/internal/models"
)

var ErrCyclicHierarchy = errors.New("folder hierarchy contains a cycle")

// ResolvePath returns the breadcrumb from the root to target. The walk
// follows parent ids and stops at the first id missing from folders, so an
// unknown or root target yields only the synthetic root entry.
func ResolvePath(folders []models.Folder, target models.FolderID, rootLabel string) ([]models.PathEntry, error) {
	byID := make(map[models.FolderID]models.Folder, len(folders))
	for _, f := range folders {
		if f.ID.IsRoot() {
			continue
		}
		byID[f.ID] = f
	}

	var chain []models.PathEntry
	seen := make(map[models.FolderID]bool)
	for id := target; ; {
		folder, ok := byID[id]
		if !ok {
			break
		}
		if seen[id] {
			return nil, fmt.Errorf("%w at folder %s", ErrCyclicHierarchy, id)
		}
		seen[id] = true
		chain = append(chain, models.PathEntry{ID: folder.ID, Name: folder.Name})
		id = folder.ParentFolderID
	}

	path := make([]models.PathEntry, 0, len(chain)+1)
	path = append(path, models.PathEntry{ID: models.RootFolder, Name: rootLabel})
	for i := len(chain) - 1; i >= 0; i-- {
		path = append(path, chain[i])
	}
	return path, nil
}
