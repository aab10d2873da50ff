package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/panda-moodle/moodle-repository-pandavideo/internal/models"
	"github.com/panda-moodle/moodle-repository-pandavideo/internal/panda"
)

const (
	MimeTypeMP4   = "video/mp4"
	MimeTypePanda = "video/panda"

	pandaExtension = ".panda"
	pandaAuthor    = "Panda Video"
)

// SupportedFileTypes are the file types a picker may ask this repository for
var SupportedFileTypes = []string{"video", MimeTypePanda}

// SearchHistory remembers the last search text of each picker session
type SearchHistory interface {
	GetSearchText(ctx context.Context, sessionID string) (string, bool, error)
	SaveSearchText(ctx context.Context, sessionID, text string) error
}

type ListingOptions struct {
	ManageURL  string
	RootLabel  string
	FolderIcon string
	HomeIcon   string
	PageSize   int
}

type ListingService struct {
	client  *panda.Client
	history SearchHistory
	opts    ListingOptions
}

func NewListingService(client *panda.Client, history SearchHistory, opts ListingOptions) *ListingService {
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.ManageURL == "" {
		opts.ManageURL = client.DashboardURL() + "/"
	}
	return &ListingService{client: client, history: history, opts: opts}
}

type SearchRequest struct {
	SessionID     string
	Text          string
	Page          int
	FolderID      models.FolderID
	AcceptedTypes []string
}

// GetListing browses folderID without a search filter
func (s *ListingService) GetListing(ctx context.Context, sessionID string, folderID models.FolderID, acceptedTypes []string) (*models.Listing, error) {
	return s.Search(ctx, SearchRequest{
		SessionID:     sessionID,
		FolderID:      folderID,
		AcceptedTypes: acceptedTypes,
	})
}

// Search lists the folders and videos directly under req.FolderID. Paging
// without a search text reuses the text stored for the session.
func (s *ListingService) Search(ctx context.Context, req SearchRequest) (*models.Listing, error) {
	text := s.searchText(ctx, req)

	folders, err := s.client.ListFolders(ctx)
	if err != nil {
		return nil, err
	}
	videos, err := s.client.ListVideos(ctx, req.Page, s.opts.PageSize, text)
	if err != nil {
		return nil, err
	}

	path, err := ResolvePath(folders.Folders, req.FolderID, s.opts.RootLabel)
	if err != nil {
		return nil, err
	}
	for i := range path {
		path[i].Icon = s.opts.FolderIcon
	}
	path[0].Icon = s.opts.HomeIcon

	listing := &models.Listing{
		DynLoad:   true,
		NoLogin:   true,
		NoSearch:  false,
		NoRefresh: false,
		Manage:    s.opts.ManageURL,
		List:      []interface{}{},
		Path:      path,
		Pages:     videos.Pages,
	}

	for _, folder := range folders.Folders {
		if folder.ParentFolderID != req.FolderID {
			continue
		}
		listing.List = append(listing.List, models.FolderNode{
			Title:     folder.Name,
			Path:      folder.ID,
			Thumbnail: s.opts.FolderIcon,
			Icon:      s.opts.FolderIcon,
			Children:  []interface{}{},
		})
	}

	mimeType, extension := mimeTypeFor(req.AcceptedTypes)
	for _, video := range videos.Videos {
		if video.FolderID != req.FolderID {
			continue
		}
		listing.List = append(listing.List, s.videoNode(video, mimeType, extension))
	}

	return listing, nil
}

func (s *ListingService) searchText(ctx context.Context, req SearchRequest) string {
	text := req.Text
	if s.history == nil || req.SessionID == "" {
		return text
	}

	if req.Page > 0 && text == "" {
		stored, ok, err := s.history.GetSearchText(ctx, req.SessionID)
		if err != nil {
			slog.Warn("failed to load search text", "session", req.SessionID, "error", err)
		} else if ok {
			text = stored
		}
	}

	if err := s.history.SaveSearchText(ctx, req.SessionID, text); err != nil {
		slog.Warn("failed to save search text", "session", req.SessionID, "error", err)
	}
	return text
}

func (s *ListingService) videoNode(video models.Video, mimeType, extension string) models.VideoNode {
	title := video.Title + extension
	return models.VideoNode{
		ShortTitle:     video.Title,
		Title:          title,
		MimeType:       mimeType,
		ThumbnailTitle: title,
		Thumbnail:      video.Thumbnail,
		Icon:           video.Thumbnail,
		DateCreated:    parseTimestamp(video.CreatedAt),
		DateModified:   parseTimestamp(video.UpdatedAt),
		Size:           video.StorageSize,
		Dimensions:     fmt.Sprintf("%dx%d - %s", video.Width, video.Height, strings.Join(video.Playback, ", ")),
		Source:         s.client.DashboardURL() + "/#/videos/" + video.ID,
		License:        pandaAuthor,
		Author:         pandaAuthor,
	}
}

// mimeTypeFor picks the Panda mimetype only when the picker asks for it first
func mimeTypeFor(acceptedTypes []string) (mimeType, extension string) {
	if len(acceptedTypes) > 0 && acceptedTypes[0] == pandaExtension {
		return MimeTypePanda, pandaExtension
	}
	return MimeTypeMP4, ""
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp returns unix seconds, or 0 when s is not a known date format
func parseTimestamp(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix()
		}
	}
	return 0
}
