package panda

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/panda-moodle/moodle-repository-pandavideo/internal/models"
)

var videoIDPattern = regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`)

// ExtractVideoID returns the first UUID-shaped token found in rawURL
func ExtractVideoID(rawURL string) (string, error) {
	id := videoIDPattern.FindString(rawURL)
	if id == "" {
		return "", fmt.Errorf("%w in %q", ErrInvalidInput, rawURL)
	}
	return id, nil
}

// videosEndpoint builds /videos with only the non-zero parameters set
func videosEndpoint(page, limit int, title string) string {
	var params []string
	if page != 0 {
		params = append(params, "page="+strconv.Itoa(page))
	}
	if limit != 0 {
		params = append(params, "limit="+strconv.Itoa(limit))
	}
	if title != "" {
		params = append(params, "title="+url.QueryEscape(title))
	}
	if len(params) == 0 {
		return "/videos"
	}
	return "/videos?" + strings.Join(params, "&")
}

// ListVideos lists one page of videos, optionally filtered by title
func (c *Client) ListVideos(ctx context.Context, page, limit int, title string) (*models.VideoList, error) {
	var result models.VideoList
	if err := c.get(ctx, videosEndpoint(page, limit, title), c.baseURL, false, &result); err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	return &result, nil
}

// GetVideoProperties fetches the video referenced by sourceURL
func (c *Client) GetVideoProperties(ctx context.Context, sourceURL string) (*models.Video, error) {
	videoID, err := ExtractVideoID(sourceURL)
	if err != nil {
		return nil, err
	}

	var result models.Video
	if err := c.get(ctx, "/videos/"+videoID, c.baseURL, true, &result); err != nil {
		return nil, fmt.Errorf("failed to get video %s: %w", videoID, err)
	}

	return &result, nil
}
