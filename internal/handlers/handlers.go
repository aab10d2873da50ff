package handlers

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/panda-moodle/moodle-repository-pandavideo/internal/config"
	"github.com/panda-moodle/moodle-repository-pandavideo/internal/panda"
	"github.com/panda-moodle/moodle-repository-pandavideo/internal/services"
)

const sessionCookie = "panda_session"

// CachePurger drops every cached API response
type CachePurger interface {
	Purge(ctx context.Context) (int64, error)
}

type Server struct {
	config         *config.Config
	client         *panda.Client
	listingService *services.ListingService
	playerService  *services.PlayerService
	cache          CachePurger
	router         *gin.Engine
}

func NewServer(
	cfg *config.Config,
	client *panda.Client,
	listingService *services.ListingService,
	playerService *services.PlayerService,
	cache CachePurger,
	tmpl *template.Template,
	staticFS embed.FS,
) *Server {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:         cfg,
		client:         client,
		listingService: listingService,
		playerService:  playerService,
		cache:          cache,
		router:         gin.Default(),
	}

	s.setupRoutes(tmpl, staticFS)
	return s
}

func (s *Server) setupRoutes(tmpl *template.Template, staticFS embed.FS) {
	s.router.SetHTMLTemplate(tmpl)

	staticSub, _ := fs.Sub(staticFS, "static")
	s.router.StaticFS("/static", http.FS(staticSub))

	s.router.GET("/health", s.handleHealth)

	pages := s.router.Group("/")
	pages.Use(s.sessionMiddleware())
	{
		pages.GET("/", s.handleIndex)
		pages.GET("/embed", s.handleEmbed)
	}

	api := s.router.Group("/api")
	api.Use(s.sessionMiddleware())
	{
		api.GET("/listing", s.handleListing)
		api.GET("/videos/properties", s.handleVideoProperties)
		api.GET("/oembed", s.handleOEmbed)
		api.GET("/analytics/:id", s.handleAnalytics)
		api.GET("/bandwidth/:id", s.handleBandwidth)
		api.GET("/embed-context", s.handleEmbedContext)
		api.DELETE("/cache", s.handlePurgeCache)
	}
}

// sessionMiddleware makes sure every picker request carries a session id,
// which keys the remembered search text.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookie)
		if err != nil || sessionID == "" {
			sessionID = uuid.NewString()
			c.SetCookie(sessionCookie, sessionID, 60*60*24, "/", "", false, true)
		}
		c.Set(sessionCookie, sessionID)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionCookie)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"enabled":    s.client.Enabled(),
		"file_types": services.SupportedFileTypes,
	})
}

func (s *Server) handlePurgeCache(c *gin.Context) {
	if s.cache == nil {
		c.JSON(http.StatusOK, gin.H{"removed": 0})
		return
	}

	removed, err := s.cache.Purge(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	slog.Info("cache purged", "removed", removed)
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%d", s.config.Port))
}

// statusFor maps client and service errors to the status returned to callers
func statusFor(err error) int {
	switch {
	case errors.Is(err, panda.ErrInvalidInput), errors.Is(err, panda.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, panda.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, panda.ErrMissingCredential):
		return http.StatusServiceUnavailable
	case errors.Is(err, panda.ErrUnauthorized),
		errors.Is(err, panda.ErrRemoteServer),
		errors.Is(err, panda.ErrUnexpectedStatus),
		errors.Is(err, panda.ErrTransport),
		errors.Is(err, services.ErrCyclicHierarchy):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Request.URL.Path, "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
