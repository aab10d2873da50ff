package panda

import (
	"context"
	"fmt"

	"github.com/panda-moodle/moodle-repository-pandavideo/internal/models"
)

// ListFolders lists every folder of the account
func (c *Client) ListFolders(ctx context.Context) (*models.FolderList, error) {
	var result models.FolderList
	if err := c.get(ctx, "/folders", c.baseURL, false, &result); err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	return &result, nil
}
