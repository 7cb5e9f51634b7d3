package server

import (
	"log/slog"
	"net/http"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kode4food/intake/internal/intake"
	"github.com/kode4food/intake/internal/store"
	"github.com/kode4food/intake/internal/wizard"
	"github.com/kode4food/intake/pkg/api"
	"github.com/kode4food/intake/pkg/events"
	"github.com/kode4food/intake/pkg/util"
)

// Server implements the HTTP API server for the intake engine
type Server struct {
	registry *intake.Registry
	drafts   store.DraftStore
	archive  *store.Archive
	hub      *events.Hub
	sessions map[api.WizardID]*wizard.Controller
	sockets  util.Set[*Client]
	mu       sync.Mutex
}

// NewServer creates a new HTTP API server
func NewServer(
	registry *intake.Registry, drafts store.DraftStore,
	archive *store.Archive, hub *events.Hub,
) *Server {
	return &Server{
		registry: registry,
		drafts:   drafts,
		archive:  archive,
		hub:      hub,
		sessions: map[api.WizardID]*wizard.Controller{},
		sockets:  util.Set[*Client]{},
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, PUT, DELETE, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	wiz := router.Group("/wizard")
	{
		wiz.GET("", s.listWizards)
		wiz.POST("", s.createWizard)
		wiz.GET("/:wizardID", s.getWizard)
		wiz.PUT("/:wizardID/data", s.updateData)
		wiz.POST("/:wizardID/next", s.nextStep)
		wiz.POST("/:wizardID/previous", s.previousStep)
		wiz.POST("/:wizardID/finish", s.finishWizard)
		wiz.POST("/:wizardID/cancel", s.cancelWizard)
		wiz.POST("/:wizardID/reauth", s.reauthWizard)
		wiz.POST("/:wizardID/draft", s.saveDraft)
	}

	drafts := router.Group("/draft")
	{
		drafts.GET("", s.listDrafts)
		drafts.POST("/:draftID/resume", s.resumeDraft)
		drafts.DELETE("/:draftID", s.deleteDraft)
	}

	router.GET("/ws", s.handleWebSocket)

	return router
}

func (s *Server) session(id api.WizardID) (*wizard.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	return c, ok
}

func (s *Server) addSession(c *wizard.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[c.ID()] = c
	activeSessions.Set(float64(len(s.sessions)))
}

func (s *Server) removeSession(id api.WizardID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	activeSessions.Set(float64(len(s.sessions)))
}

func (s *Server) registerWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Add(c)
}

func (s *Server) unregisterWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Remove(c)
}

// CloseWebSockets closes all active WebSocket connections
func (s *Server) CloseWebSockets() {
	s.mu.Lock()
	conns := make([]*Client, 0, len(s.sockets))
	for c := range s.sockets {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

// AbortSessions interrupts any in-flight remote operations; used during
// shutdown. Sessions stay resumable from their last saved draft
func (s *Server) AbortSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.sessions {
		c.Abort()
	}
}
