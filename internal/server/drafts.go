package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/intake/internal/store"
	"github.com/kode4food/intake/internal/wizard"
	"github.com/kode4food/intake/pkg/api"
)

var errNoDraftStore = errors.New("draft store not configured")

func (s *Server) listDrafts(c *gin.Context) {
	if s.drafts == nil {
		errorResponse(c, http.StatusServiceUnavailable, errNoDraftStore)
		return
	}

	recs, err := s.drafts.List(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}

	digests := make([]*api.DraftDigest, len(recs))
	for i, rec := range recs {
		digests[i] = &api.DraftDigest{
			ID:        rec.ID,
			Flow:      rec.Flow,
			StepIndex: rec.StepIndex,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		}
	}
	c.JSON(http.StatusOK, api.DraftsListResponse{
		Drafts: digests,
		Count:  len(digests),
	})
}

// resumeDraft rebuilds a wizard session from a saved draft. Completed steps
// are never re-executed; the restored guard flags keep their remote
// operations suppressed
func (s *Server) resumeDraft(c *gin.Context) {
	if s.drafts == nil {
		errorResponse(c, http.StatusServiceUnavailable, errNoDraftStore)
		return
	}

	id := api.DraftID(c.Param("draftID"))
	rec, err := s.drafts.Load(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrDraftNotFound) {
			errorResponse(c, http.StatusNotFound, err)
			return
		}
		internalError(c, err)
		return
	}

	// A session already holding this wizard wins over a second resume
	if ctrl, ok := s.session(rec.WizardID); ok {
		c.JSON(http.StatusOK, ctrl.View())
		return
	}

	flow, err := s.registry.Build(rec.Flow)
	if err != nil {
		errorResponse(c, http.StatusConflict, err)
		return
	}

	ctrl := wizard.NewController(flow, s.controllerOptions()...)
	if err := ctrl.RestoreDraft(rec); err != nil {
		internalError(c, err)
		return
	}
	s.addSession(ctrl)
	draftsResumed.Inc()

	c.JSON(http.StatusOK, ctrl.View())
}

func (s *Server) deleteDraft(c *gin.Context) {
	if s.drafts == nil {
		errorResponse(c, http.StatusServiceUnavailable, errNoDraftStore)
		return
	}

	id := api.DraftID(c.Param("draftID"))
	if err := s.drafts.Delete(c.Request.Context(), id); err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "draft deleted",
	})
}
