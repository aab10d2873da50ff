package panda

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"github.com/panda-moodle/moodle-repository-pandavideo/internal/models"
)

var embedURLPattern = regexp.MustCompile(`(?i)^https://([^/]+)/embed/\?v=([a-f0-9-]+)$`)

// IsEmbedURL reports whether u is a player embed URL
func IsEmbedURL(u string) bool {
	return embedURLPattern.MatchString(u)
}

// oembedTarget returns the URL to hand to the oEmbed endpoint. Embed URLs
// pass through; anything else is rewritten to the dashboard URL of its video.
func (c *Client) oembedTarget(sourceURL string) (string, error) {
	if IsEmbedURL(sourceURL) {
		return sourceURL, nil
	}

	videoID, err := ExtractVideoID(sourceURL)
	if err != nil {
		return "", err
	}
	return c.dashboardURL + "/videos/" + videoID, nil
}

// ResolveOEmbed resolves the embeddable player of sourceURL
func (c *Client) ResolveOEmbed(ctx context.Context, sourceURL string) (*models.OEmbed, error) {
	target, err := c.oembedTarget(sourceURL)
	if err != nil {
		return nil, err
	}

	var result models.OEmbed
	if err := c.get(ctx, "/oembed?url="+url.QueryEscape(target), c.baseURL, true, &result); err != nil {
		return nil, fmt.Errorf("failed to resolve oembed: %w", err)
	}

	return &result, nil
}
