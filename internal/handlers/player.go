package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/panda-moodle/moodle-repository-pandavideo/internal/models"
)

// videoView reads the optional viewer state; nil when no view id is given
func videoView(c *gin.Context) *models.VideoView {
	id, err := strconv.ParseInt(c.Query("view_id"), 10, 64)
	if err != nil {
		return nil
	}
	currentTime, _ := strconv.Atoi(c.Query("currenttime"))
	return &models.VideoView{
		ID:          id,
		CurrentTime: currentTime,
		VideoMap:    c.Query("videomap"),
	}
}

// handleEmbed always answers 200: player failures are part of the markup.
func (s *Server) handleEmbed(c *gin.Context) {
	markup := s.playerService.Render(c.Request.Context(), c.Query("url"), videoView(c))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(markup))
}

func (s *Server) handleEmbedContext(c *gin.Context) {
	embed, err := s.playerService.Resolve(c.Request.Context(), c.Query("url"), videoView(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, embed)
}
