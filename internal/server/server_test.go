package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/kode4food/intake/internal/intake"
	"github.com/kode4food/intake/internal/server"
	"github.com/kode4food/intake/internal/store"
	"github.com/kode4food/intake/pkg/api"
	"github.com/kode4food/intake/pkg/events"
)

type testServerEnv struct {
	Server *server.Server
	Router *gin.Engine
	Remote *stubService
	Drafts *store.MemoryStore
	Hub    *events.Hub
}

type stubService struct {
	failures map[api.StepID]*api.Failure
}

func (s *stubService) Execute(
	_ context.Context, req *api.StepRequest,
) (*api.StepResponse, error) {
	if f, ok := s.failures[req.StepID]; ok {
		return nil, f
	}
	switch req.StepID {
	case intake.StepUnit:
		return &api.StepResponse{
			Identifiers: api.Args{intake.SlotUnitID: "u-100"},
		}, nil
	case intake.StepClaimant:
		return &api.StepResponse{
			Identifiers: api.Args{intake.SlotClaimantID: "p-7"},
		}, nil
	case intake.StepClaim:
		return &api.StepResponse{
			Identifiers: api.Args{intake.SlotClaimID: "c-55"},
		}, nil
	case "submit":
		return &api.StepResponse{
			Identifiers: api.Args{intake.SlotReference: "SRV-0001"},
		}, nil
	}
	return &api.StepResponse{}, nil
}

func testServer(t *testing.T) *testServerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	remote := &stubService{failures: map[api.StepID]*api.Failure{}}
	registry := intake.NewRegistry()
	intake.RegisterFlows(registry, remote)

	drafts := store.NewMemoryStore()
	hub := events.NewHub()
	t.Cleanup(hub.Close)

	srv := server.NewServer(registry, drafts, nil, hub)
	return &testServerEnv{
		Server: srv,
		Router: srv.SetupRoutes(),
		Remote: remote,
		Drafts: drafts,
		Hub:    hub,
	}
}

func (env *testServerEnv) request(
	t *testing.T, method, path string, body any,
) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) *T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	return &out
}

func (env *testServerEnv) createWizard(t *testing.T) *api.WizardView {
	t.Helper()
	w := env.request(t, "POST", "/wizard", api.CreateWizardRequest{
		Flow: intake.FlowName,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create wizard: %d %s", w.Code, w.Body.String())
	}
	return decodeBody[api.WizardView](t, w)
}

func (env *testServerEnv) wizardPath(
	view *api.WizardView, suffix string,
) string {
	return fmt.Sprintf("/wizard/%s/%s", view.ID, suffix)
}

func TestHealthEndpoint(t *testing.T) {
	as := assert.New(t)
	env := testServer(t)

	w := env.request(t, "GET", "/health", nil)
	as.Equal(http.StatusOK, w.Code)

	res := decodeBody[server.HealthResponse](t, w)
	as.Equal("ok", res.Status)
	as.Equal(0, res.Sessions)
}

func TestMetricsEndpoint(t *testing.T) {
	as := assert.New(t)
	env := testServer(t)

	w := env.request(t, "GET", "/metrics", nil)
	as.Equal(http.StatusOK, w.Code)
	as.Contains(w.Body.String(), "intake_active_sessions")
}

func TestCreateWizard(t *testing.T) {
	as := assert.New(t)
	env := testServer(t)

	view := env.createWizard(t)
	as.Equal(intake.FlowName, view.Flow)
	as.Equal(api.WizardActive, view.Status)
	as.Equal(0, view.StepIndex)
	as.Len(view.Steps, 5)
}

func TestCreateWizardUnknownFlow(t *testing.T) {
	as := assert.New(t)
	env := testServer(t)

	w := env.request(t, "POST", "/wizard", api.CreateWizardRequest{
		Flow: "missing",
	})
	as.Equal(http.StatusNotFound, w.Code)
}

func TestCreateWizardInvalidJSON(t *testing.T) {
	as := assert.New(t)
	env := testServer(t)

	req := httptest.NewRequest(
		"POST", "/wizard", bytes.NewReader([]byte("not-json")),
	)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)

	as.Equal(http.StatusBadRequest, w.Code)
}

func TestGetWizardNotFound(t *testing.T) {
	as := assert.New(t)
	env := testServer(t)

	w := env.request(t, "GET", "/wizard/missing", nil)
	as.Equal(http.StatusNotFound, w.Code)
}

func TestWizardFullFlow(t *testing.T) {
	as := assert.New(t)
	env := testServer(t)
	view := env.createWizard(t)

	steps := []api.Args{
		{intake.SlotBuildingID: "b-1"},
		{"unit_number": "12A", "unit_type": "apartment", "floor": 3},
		{"name": "Ada Lovelace", "national_id": "1234567890"},
		{"kind": "owner", "share": 100},
	}
	for i, data := range steps {
		w := env.request(t, "PUT", env.wizardPath(view, "data"),
			api.UpdateDataRequest{Data: data})
		as.Equal(http.StatusOK, w.Code)

		w = env.request(t, "POST", env.wizardPath(view, "next"), nil)
		as.Equal(http.StatusOK, w.Code)
		res := decodeBody[api.NextResponse](t, w)
		as.Equal(api.NextAdvanced, res.Status)
		as.Equal(i+1, res.StepIndex)
	}

	// Advancing past review finishes the wizard and evicts the session
	w := env.request(t, "POST", env.wizardPath(view, "next"), nil)
	as.Equal(http.StatusOK, w.Code)
	res := decodeBody[api.NextResponse](t, w)
	as.Equal(api.NextFinished, res.Status)

	w = env.request(t, "GET", "/wizard/"+string(view.ID), nil)
	as.Equal(http.StatusNotFound, w.Code)
}

func TestWizardValidationFailure(t *testing.T) {
	as := assert.New(t)
	env := testServer(t)
	view := env.createWizard(t)

	w := env.request(t, "POST", env.wizardPath(view, "next"), nil)
	as.Equal(http.StatusOK, w.Code)
	res := decodeBody[api.NextResponse](t, w)
	as.Equal(api.NextInvalid, res.Status)
	as.NotEmpty(res.Validation)
}

func TestWizardPrevious(t *testing.T) {
	as := assert.New(t)
	env := testServer(t)
	view := env.createWizard(t)

	env.request(t, "PUT", env.wizardPath(view, "data"),
		api.UpdateDataRequest{Data: api.Args{intake.SlotBuildingID: "b-1"}})
	env.request(t, "POST", env.wizardPath(view, "next"), nil)

	w := env.request(t, "POST", env.wizardPath(view, "previous"), nil)
	as.Equal(http.StatusOK, w.Code)
	back := decodeBody[api.WizardView](t, w)
	as.Equal(0, back.StepIndex)
}

func TestWizardRemoteConflict(t *testing.T) {
	as := assert.New(t)
	env := testServer(t)
	env.Remote.failures[intake.StepUnit] = &api.Failure{
		Category: api.FailureConflict,
		Message:  "unit already linked to another claim",
	}
	view := env.createWizard(t)

	env.request(t, "PUT", env.wizardPath(view, "data"),
		api.UpdateDataRequest{Data: api.Args{intake.SlotBuildingID: "b-1"}})
	env.request(t, "POST", env.wizardPath(view, "next"), nil)

	env.request(t, "PUT", env.wizardPath(view, "data"),
		api.UpdateDataRequest{Data: api.Args{"unit_number": "12A"}})
	w := env.request(t, "POST", env.wizardPath(view, "next"), nil)
	as.Equal(http.StatusOK, w.Code)
	res := decodeBody[api.NextResponse](t, w)
	as.Equal(api.NextRetry, res.Status)
	as.Equal("unit already linked to another claim", res.Failure.Message)
}

func TestWizardCancel(t *testing.T) {
	as := assert.New(t)
	env := testServer(t)
	view := env.createWizard(t)

	env.request(t, "PUT", env.wizardPath(view, "data"),
		api.UpdateDataRequest{Data: api.Args{intake.SlotBuildingID: "b-1"}})
	env.request(t, "POST", env.wizardPath(view, "next"), nil)

	// Committed state requires force
	w := env.request(t, "POST", env.wizardPath(view, "cancel"),
		api.CancelRequest{Force: false})
	as.Equal(http.StatusConflict, w.Code)

	w = env.request(t, "POST", env.wizardPath(view, "cancel"),
		api.CancelRequest{Force: true})
	as.Equal(http.StatusOK, w.Code)

	w = env.request(t, "GET", "/wizard/"+string(view.ID), nil)
	as.Equal(http.StatusNotFound, w.Code)
}

func TestWizardReauth(t *testing.T) {
	as := assert.New(t)
	env := testServer(t)
	env.Remote.failures[intake.StepUnit] = &api.Failure{
		Category: api.FailureUnauthorized,
		Message:  "session expired",
	}
	view := env.createWizard(t)

	env.request(t, "PUT", env.wizardPath(view, "data"),
		api.UpdateDataRequest{Data: api.Args{intake.SlotBuildingID: "b-1"}})
	env.request(t, "POST", env.wizardPath(view, "next"), nil)

	env.request(t, "PUT", env.wizardPath(view, "data"),
		api.UpdateDataRequest{Data: api.Args{"unit_number": "12A"}})
	w := env.request(t, "POST", env.wizardPath(view, "next"), nil)
	res := decodeBody[api.NextResponse](t, w)
	as.Equal(api.NextRetry, res.Status)

	w = env.request(t, "POST", env.wizardPath(view, "next"), nil)
	as.Equal(http.StatusUnauthorized, w.Code)

	delete(env.Remote.failures, intake.StepUnit)
	w = env.request(t, "POST", env.wizardPath(view, "reauth"), nil)
	as.Equal(http.StatusOK, w.Code)

	w = env.request(t, "POST", env.wizardPath(view, "next"), nil)
	as.Equal(http.StatusOK, w.Code)
	res = decodeBody[api.NextResponse](t, w)
	as.Equal(api.NextAdvanced, res.Status)
}

func TestDraftSaveResume(t *testing.T) {
	as := assert.New(t)
	env := testServer(t)
	view := env.createWizard(t)

	env.request(t, "PUT", env.wizardPath(view, "data"),
		api.UpdateDataRequest{Data: api.Args{intake.SlotBuildingID: "b-1"}})
	env.request(t, "POST", env.wizardPath(view, "next"), nil)
	env.request(t, "PUT", env.wizardPath(view, "data"),
		api.UpdateDataRequest{Data: api.Args{"unit_number": "12A"}})
	env.request(t, "POST", env.wizardPath(view, "next"), nil)

	w := env.request(t, "POST", env.wizardPath(view, "draft"), nil)
	as.Equal(http.StatusOK, w.Code)
	saved := decodeBody[api.SaveDraftResponse](t, w)
	as.NotEmpty(saved.DraftID)
	as.Equal(2, saved.StepIndex)

	w = env.request(t, "GET", "/draft", nil)
	as.Equal(http.StatusOK, w.Code)
	list := decodeBody[api.DraftsListResponse](t, w)
	as.Equal(1, list.Count)
	as.Equal(saved.DraftID, list.Drafts[0].ID)

	// Cancel the live session, then resume from the draft
	env.request(t, "POST", env.wizardPath(view, "cancel"),
		api.CancelRequest{Force: true})

	// Cancellation removed the draft along with the session; save a copy
	// back for the resume path
	rec := &api.DraftRecord{
		WizardID: view.ID,
		Flow:     intake.FlowName,
		Snapshot: &api.Snapshot{
			Values:    api.Args{intake.SlotBuildingID: "b-1", intake.SlotUnitID: "u-100"},
			Finalized: []string{intake.SlotBuildingID, intake.SlotUnitID},
		},
		Guards: api.Guards{
			intake.StepBuilding: true,
			intake.StepUnit:     true,
		},
		StepIndex: 2,
	}
	id, err := env.Drafts.Save(context.Background(), rec)
	as.NoError(err)

	w = env.request(t, "POST", "/draft/"+string(id)+"/resume", nil)
	as.Equal(http.StatusOK, w.Code)
	resumed := decodeBody[api.WizardView](t, w)
	as.Equal(2, resumed.StepIndex)
	as.Equal(view.ID, resumed.ID)
	as.True(resumed.Guards[intake.StepUnit])
}

func TestDraftResumeNotFound(t *testing.T) {
	as := assert.New(t)
	env := testServer(t)

	w := env.request(t, "POST", "/draft/missing/resume", nil)
	as.Equal(http.StatusNotFound, w.Code)
}

func TestDraftDelete(t *testing.T) {
	as := assert.New(t)
	env := testServer(t)
	view := env.createWizard(t)

	env.request(t, "PUT", env.wizardPath(view, "data"),
		api.UpdateDataRequest{Data: api.Args{intake.SlotBuildingID: "b-1"}})
	env.request(t, "POST", env.wizardPath(view, "next"), nil)
	w := env.request(t, "POST", env.wizardPath(view, "draft"), nil)
	saved := decodeBody[api.SaveDraftResponse](t, w)

	w = env.request(t, "DELETE", "/draft/"+string(saved.DraftID), nil)
	as.Equal(http.StatusOK, w.Code)

	w = env.request(t, "GET", "/draft", nil)
	list := decodeBody[api.DraftsListResponse](t, w)
	as.Equal(0, list.Count)
}

func TestListWizards(t *testing.T) {
	as := assert.New(t)
	env := testServer(t)

	env.createWizard(t)
	env.createWizard(t)

	w := env.request(t, "GET", "/wizard", nil)
	as.Equal(http.StatusOK, w.Code)
	list := decodeBody[api.WizardsListResponse](t, w)
	as.Equal(2, list.Count)
}
