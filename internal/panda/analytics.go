package panda

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/panda-moodle/moodle-repository-pandavideo/internal/models"
)

const dateLayout = "2006-01-02"

// GetAnalytics fetches the general analytics of a video from the data host
func (c *Client) GetAnalytics(ctx context.Context, videoID string) (*models.Analytics, error) {
	var result models.Analytics
	if err := c.get(ctx, "/general/"+url.PathEscape(videoID), c.dataURL, true, &result); err != nil {
		return nil, fmt.Errorf("failed to get analytics for %s: %w", videoID, err)
	}

	return &result, nil
}

func trafficEndpoint(videoID string, start, end time.Time) string {
	params := url.Values{}
	if videoID != "" {
		params.Set("video_id", videoID)
	}
	if !start.IsZero() {
		params.Set("start_date", start.Format(dateLayout))
	}
	if !end.IsZero() {
		params.Set("end_date", end.Format(dateLayout))
	}
	if len(params) == 0 {
		return "/analytics/traffic"
	}
	return "/analytics/traffic?" + params.Encode()
}

// GetBandwidth fetches the traffic report of a video between start and end.
// Zero dates are left out of the query.
func (c *Client) GetBandwidth(ctx context.Context, videoID string, start, end time.Time) (*models.Traffic, error) {
	var result models.Traffic
	if err := c.get(ctx, trafficEndpoint(videoID, start, end), c.baseURL, true, &result); err != nil {
		return nil, fmt.Errorf("failed to get bandwidth for %s: %w", videoID, err)
	}

	return &result, nil
}
