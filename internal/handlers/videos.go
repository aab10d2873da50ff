package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

func (s *Server) handleVideoProperties(c *gin.Context) {
	video, err := s.client.GetVideoProperties(c.Request.Context(), c.Query("url"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, video)
}

func (s *Server) handleOEmbed(c *gin.Context) {
	oembed, err := s.client.ResolveOEmbed(c.Request.Context(), c.Query("url"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, oembed)
}

func (s *Server) handleAnalytics(c *gin.Context) {
	analytics, err := s.client.GetAnalytics(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

func (s *Server) handleBandwidth(c *gin.Context) {
	start, err := parseDate(c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date, expected YYYY-MM-DD"})
		return
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date, expected YYYY-MM-DD"})
		return
	}

	traffic, err := s.client.GetBandwidth(c.Request.Context(), c.Param("id"), start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, traffic)
}

// parseDate returns the zero time for an empty value
func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, v)
}
