package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/intake/internal/intake"
	"github.com/kode4food/intake/internal/wizard"
	"github.com/kode4food/intake/pkg/api"
)

func (s *Server) createWizard(c *gin.Context) {
	var req api.CreateWizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	flow, err := s.registry.Build(req.Flow)
	if err != nil {
		if errors.Is(err, intake.ErrFlowUnknown) {
			errorResponse(c, http.StatusNotFound, err)
			return
		}
		internalError(c, err)
		return
	}

	ctrl := wizard.NewController(flow, s.controllerOptions()...)
	if err := ctrl.Start(); err != nil {
		internalError(c, err)
		return
	}
	s.addSession(ctrl)
	wizardsStarted.WithLabelValues(req.Flow).Inc()

	c.JSON(http.StatusCreated, ctrl.View())
}

func (s *Server) listWizards(c *gin.Context) {
	s.mu.Lock()
	ctrls := make([]*wizard.Controller, 0, len(s.sessions))
	for _, ctrl := range s.sessions {
		ctrls = append(ctrls, ctrl)
	}
	s.mu.Unlock()

	views := make([]*api.WizardView, len(ctrls))
	for i, ctrl := range ctrls {
		views[i] = ctrl.View()
	}
	c.JSON(http.StatusOK, api.WizardsListResponse{
		Wizards: views,
		Count:   len(views),
	})
}

func (s *Server) getWizard(c *gin.Context) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ctrl.View())
}

func (s *Server) updateData(c *gin.Context) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}

	var req api.UpdateDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := ctrl.UpdateData(req.Data); err != nil {
		commandError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.View())
}

func (s *Server) nextStep(c *gin.Context) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}

	res, err := ctrl.Next(c.Request.Context())
	if err != nil {
		commandError(c, err)
		return
	}
	s.noteOutcome(ctrl, res)
	c.JSON(http.StatusOK, res)
}

func (s *Server) previousStep(c *gin.Context) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}

	view, err := ctrl.Previous()
	if err != nil {
		commandError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) finishWizard(c *gin.Context) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}

	res, err := ctrl.Finish(c.Request.Context())
	if err != nil {
		commandError(c, err)
		return
	}
	s.noteOutcome(ctrl, res)
	c.JSON(http.StatusOK, res)
}

func (s *Server) cancelWizard(c *gin.Context) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}

	var req api.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := ctrl.Cancel(c.Request.Context(), req.Force); err != nil {
		commandError(c, err)
		return
	}
	s.removeSession(ctrl.ID())
	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "wizard cancelled",
	})
}

func (s *Server) reauthWizard(c *gin.Context) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}

	ctrl.Reauthenticate()
	c.JSON(http.StatusOK, ctrl.View())
}

func (s *Server) saveDraft(c *gin.Context) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}

	res, err := ctrl.SaveDraft(c.Request.Context())
	if err != nil {
		commandError(c, err)
		return
	}
	draftsSaved.Inc()
	c.JSON(http.StatusOK, res)
}

func (s *Server) lookup(c *gin.Context) (*wizard.Controller, bool) {
	id := api.WizardID(c.Param("wizardID"))
	ctrl, ok := s.session(id)
	if !ok {
		errorResponse(c, http.StatusNotFound, errWizardNotFound)
		return nil, false
	}
	return ctrl, true
}

func (s *Server) controllerOptions() []wizard.Option {
	var opts []wizard.Option
	if s.drafts != nil {
		opts = append(opts, wizard.WithDraftStore(s.drafts))
	}
	if s.archive != nil {
		opts = append(opts, wizard.WithArchive(s.archive))
	}
	if s.hub != nil {
		opts = append(opts, wizard.WithHub(s.hub))
	}
	return opts
}

// noteOutcome updates metrics and evicts finished or failed sessions
func (s *Server) noteOutcome(
	ctrl *wizard.Controller, res *api.NextResponse,
) {
	switch res.Status {
	case api.NextAdvanced:
		stepsCommitted.WithLabelValues(ctrl.Flow()).Inc()
	case api.NextFinished:
		wizardsFinished.WithLabelValues(ctrl.Flow()).Inc()
		s.removeSession(ctrl.ID())
	case api.NextRetry, api.NextFatal:
		if res.Failure != nil {
			remoteFailures.WithLabelValues(
				string(res.Failure.Category),
			).Inc()
		}
		if res.Status == api.NextFatal {
			s.removeSession(ctrl.ID())
		}
	}
}

var errWizardNotFound = errors.New("wizard not found")

func errorResponse(c *gin.Context, status int, err error) {
	c.JSON(status, api.ErrorResponse{
		Error:  err.Error(),
		Status: status,
	})
}

func badRequest(c *gin.Context, err error) {
	errorResponse(c, http.StatusBadRequest, err)
}

func internalError(c *gin.Context, err error) {
	errorResponse(c, http.StatusInternalServerError, err)
}

// commandError maps controller errors onto HTTP status codes
func commandError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, wizard.ErrWizardNotActive),
		errors.Is(err, wizard.ErrCancelNeedsConfirm),
		errors.Is(err, wizard.ErrFinishNotReady):
		errorResponse(c, http.StatusConflict, err)
	case errors.Is(err, wizard.ErrReauthRequired):
		errorResponse(c, http.StatusUnauthorized, err)
	case errors.Is(err, wizard.ErrWizardNotStarted),
		errors.Is(err, wizard.ErrNoDraftStore):
		errorResponse(c, http.StatusBadRequest, err)
	default:
		internalError(c, err)
	}
}
