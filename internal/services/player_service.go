package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"regexp"

	"github.com/panda-moodle/moodle-repository-pandavideo/internal/models"
	"github.com/panda-moodle/moodle-repository-pandavideo/internal/panda"
)

const (
	EmbedTemplate = "embed.html"

	minRatio     = 20
	emptyMapData = "[]"
)

var iframeSrcPattern = regexp.MustCompile(`src="(.*?)"`)

type PlayerService struct {
	client *panda.Client
	tmpl   *template.Template
}

func NewPlayerService(client *panda.Client, tmpl *template.Template) *PlayerService {
	return &PlayerService{client: client, tmpl: tmpl}
}

// EmbedRatio is the height/width percentage used as aspect-ratio padding,
// floored at 20.
func EmbedRatio(width, height int) float64 {
	if width <= 0 {
		return minRatio
	}
	return math.Max(float64(height)/float64(width)*100, minRatio)
}

// BuildEmbedContext assembles the template data for a player. view is optional.
func BuildEmbedContext(player string, width, height int, view *models.VideoView) models.EmbedContext {
	embed := models.EmbedContext{
		VideoPlayer:  player,
		Ratio:        EmbedRatio(width, height),
		ShowVideoMap: false,
		VideoMapData: emptyMapData,
	}
	if view != nil {
		currentTime := view.CurrentTime
		embed.ViewID = view.ID
		embed.ViewCurrentTime = &currentTime
		embed.VideoMapData = videoMapData(view.VideoMap)
	}
	return embed
}

// Resolve looks up the player for sourceURL. With a usable token the video is
// fetched through the API; otherwise the public oEmbed endpoint is used.
func (s *PlayerService) Resolve(ctx context.Context, sourceURL string, view *models.VideoView) (*models.EmbedContext, error) {
	if !s.client.Enabled() {
		oembed, err := s.client.ResolveOEmbed(ctx, sourceURL)
		if err != nil {
			return nil, fmt.Errorf("oEmbed Error: %w", err)
		}
		embed := BuildEmbedContext(playerFromHTML(oembed.HTML), oembed.Width, oembed.Height, view)
		return &embed, nil
	}

	video, err := s.client.GetVideoProperties(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("Video properties Error: %w", err)
	}
	embed := BuildEmbedContext(video.VideoPlayer, video.Width, video.Height, view)
	return &embed, nil
}

// Render returns the player markup for sourceURL. Failures are rendered as
// an inline message instead of being returned.
func (s *PlayerService) Render(ctx context.Context, sourceURL string, view *models.VideoView) string {
	embed, err := s.Resolve(ctx, sourceURL, view)
	if err != nil {
		slog.Warn("player unavailable", "url", sourceURL, "error", err)
		return template.HTMLEscapeString(err.Error())
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, EmbedTemplate, embed); err != nil {
		slog.Error("failed to render player", "url", sourceURL, "error", err)
		return "Render Error: " + template.HTMLEscapeString(err.Error())
	}
	return buf.String()
}

// playerFromHTML pulls the iframe src out of oEmbed html, falling back to
// the html itself.
func playerFromHTML(html string) string {
	if m := iframeSrcPattern.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return html
}

// videoMapData keeps raw only when it decodes to a non-empty JSON value.
func videoMapData(raw string) string {
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil || !truthy(v) {
		return emptyMapData
	}
	return raw
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && t != "0"
	case []interface{}:
		return len(t) > 0
	default:
		// objects are always truthy
		return true
	}
}
