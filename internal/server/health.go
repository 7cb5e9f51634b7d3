package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/intake"
)

type (
	// HealthResponse reports engine liveness and backing-store reachability
	HealthResponse struct {
		Status   string `json:"status"`
		Version  string `json:"version"`
		Sessions int    `json:"sessions"`
		Drafts   string `json:"drafts,omitempty"`
	}

	// Pinger is implemented by draft stores that can verify connectivity
	Pinger interface {
		Ping(context.Context) error
	}
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"

	healthPingTimeout = 3 * time.Second
)

func (s *Server) handleHealth(c *gin.Context) {
	s.mu.Lock()
	sessions := len(s.sessions)
	s.mu.Unlock()

	res := HealthResponse{
		Status:   statusOK,
		Version:  intake.Version,
		Sessions: sessions,
	}

	if p, ok := s.drafts.(Pinger); ok {
		ctx, cancel := context.WithTimeout(
			c.Request.Context(), healthPingTimeout,
		)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			res.Status = statusDegraded
			res.Drafts = err.Error()
			c.JSON(http.StatusServiceUnavailable, res)
			return
		}
		res.Drafts = statusOK
	}

	c.JSON(http.StatusOK, res)
}
