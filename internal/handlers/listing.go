package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/panda-moodle/moodle-repository-pandavideo/internal/models"
	"github.com/panda-moodle/moodle-repository-pandavideo/internal/services"
)

func (s *Server) searchRequest(c *gin.Context) services.SearchRequest {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 0 {
		page = 0
	}

	accepted := c.QueryArray("accepted_types")
	accepted = append(accepted, c.QueryArray("accepted_types[]")...)

	return services.SearchRequest{
		SessionID:     sessionID(c),
		Text:          c.Query("s"),
		Page:          page,
		FolderID:      models.FolderID(c.Query("p")),
		AcceptedTypes: accepted,
	}
}

func (s *Server) handleListing(c *gin.Context) {
	listing, err := s.listingService.Search(c.Request.Context(), s.searchRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

func (s *Server) handleIndex(c *gin.Context) {
	req := s.searchRequest(c)
	data := gin.H{
		"folder": req.FolderID,
		"search": req.Text,
	}

	listing, err := s.listingService.Search(c.Request.Context(), req)
	if err != nil {
		data["error"] = err.Error()
		c.HTML(statusFor(err), "index.html", data)
		return
	}

	var folders []models.FolderNode
	var videos []models.VideoNode
	for _, item := range listing.List {
		switch node := item.(type) {
		case models.FolderNode:
			folders = append(folders, node)
		case models.VideoNode:
			videos = append(videos, node)
		}
	}

	data["listing"] = listing
	data["folders"] = folders
	data["videos"] = videos
	c.HTML(http.StatusOK, "index.html", data)
}
