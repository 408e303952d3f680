package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appreview/roster-evaluator/internal/models"
	"appreview/roster-evaluator/internal/services"
)

type stubSessionRepo struct {
	sessions       map[uuid.UUID]*models.EvaluationSession
	resultsDeleted int64
}

func newStubSessionRepo(sessions ...*models.EvaluationSession) *stubSessionRepo {
	repo := &stubSessionRepo{sessions: make(map[uuid.UUID]*models.EvaluationSession)}
	for _, s := range sessions {
		repo.sessions[s.ID] = s
	}
	return repo
}

func (s *stubSessionRepo) Create(session *models.EvaluationSession) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *stubSessionRepo) FindByID(id uuid.UUID) (*models.EvaluationSession, error) {
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	return nil, errors.New("session not found")
}

func (s *stubSessionRepo) Update(session *models.EvaluationSession) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *stubSessionRepo) ListByOwner(ownerID uuid.UUID) ([]models.EvaluationSession, error) {
	var out []models.EvaluationSession
	for _, sess := range s.sessions {
		if sess.OwnerID == ownerID {
			out = append(out, *sess)
		}
	}
	return out, nil
}

func (s *stubSessionRepo) Delete(id uuid.UUID) (int64, error) {
	delete(s.sessions, id)
	return s.resultsDeleted, nil
}

type stubEvalRepo struct {
	byID      map[uuid.UUID]*models.CandidateEvaluation
	bySession map[uuid.UUID][]models.CandidateEvaluation
	latest    []models.CandidateEvaluation
}

func newStubEvalRepo() *stubEvalRepo {
	return &stubEvalRepo{
		byID:      make(map[uuid.UUID]*models.CandidateEvaluation),
		bySession: make(map[uuid.UUID][]models.CandidateEvaluation),
	}
}

func (s *stubEvalRepo) Upsert(eval *models.CandidateEvaluation) error {
	s.byID[eval.ID] = eval
	s.bySession[eval.SessionID] = append(s.bySession[eval.SessionID], *eval)
	return nil
}

func (s *stubEvalRepo) FindByID(id uuid.UUID) (*models.CandidateEvaluation, error) {
	if e, ok := s.byID[id]; ok {
		return e, nil
	}
	return nil, errors.New("not found")
}

func (s *stubEvalRepo) ListBySession(sessionID uuid.UUID) ([]models.CandidateEvaluation, error) {
	return s.bySession[sessionID], nil
}

func (s *stubEvalRepo) LatestPerCandidate(ownerID uuid.UUID) ([]models.CandidateEvaluation, error) {
	return s.latest, nil
}

func newSessionApp(owners *stubOwnerRepo, sessions *stubSessionRepo, evals *stubEvalRepo, pipeline services.PipelineService) *fiber.App {
	app := fiber.New()
	handler := NewSessionHandler(owners, sessions, evals, pipeline)
	app.Get("/api/v1/sessions", handler.HandleListSessions)
	app.Get("/api/v1/sessions/:id/candidates", handler.HandleSessionCandidates)
	app.Post("/api/v1/sessions/:id/cancel", handler.HandleCancelSession)
	app.Delete("/api/v1/sessions/:id", handler.HandleDeleteSession)
	app.Get("/api/v1/candidates/:id", handler.HandleCandidate)
	app.Get("/api/v1/owners/:email/candidates", handler.HandleOwnerCandidates)
	app.Delete("/api/v1/owners/:email/sessions", handler.HandlePurgeOwner)
	return app
}

func TestSessionHandler(t *testing.T) {
	owners := newStubOwnerRepo("owner@example.com")
	ownerID := owners.owners["owner@example.com"].ID

	t.Run("list sessions for owner", func(t *testing.T) {
		sessions := newStubSessionRepo(
			&models.EvaluationSession{ID: uuid.New(), OwnerID: ownerID, Status: models.SessionCompleted},
			&models.EvaluationSession{ID: uuid.New(), OwnerID: uuid.New(), Status: models.SessionCompleted},
		)
		app := newSessionApp(owners, sessions, newStubEvalRepo(), &fakePipeline{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions?owner_email=owner@example.com", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out struct {
			Sessions []models.EvaluationSession `json:"sessions"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Len(t, out.Sessions, 1)
	})

	t.Run("unknown owner lists empty", func(t *testing.T) {
		app := newSessionApp(owners, newStubSessionRepo(), newStubEvalRepo(), &fakePipeline{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions?owner_email=nobody@example.com", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("session candidates include the session", func(t *testing.T) {
		session := &models.EvaluationSession{ID: uuid.New(), OwnerID: ownerID, Status: models.SessionCompleted}
		evals := newStubEvalRepo()
		require.NoError(t, evals.Upsert(&models.CandidateEvaluation{
			ID: uuid.New(), OwnerID: ownerID, SessionID: session.ID, Email: "ada@example.com",
			Outcome: models.OutcomeAccepted,
		}))
		app := newSessionApp(owners, newStubSessionRepo(session), evals, &fakePipeline{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+session.ID.String()+"/candidates", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out struct {
			Candidates []models.CandidateEvaluation `json:"candidates"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		require.Len(t, out.Candidates, 1)
		assert.Equal(t, "ada@example.com", out.Candidates[0].Email)
	})

	t.Run("unknown session is a 404", func(t *testing.T) {
		app := newSessionApp(owners, newStubSessionRepo(), newStubEvalRepo(), &fakePipeline{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+uuid.New().String()+"/candidates", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad session id is a 400", func(t *testing.T) {
		app := newSessionApp(owners, newStubSessionRepo(), newStubEvalRepo(), &fakePipeline{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/not-a-uuid/candidates", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("candidate detail", func(t *testing.T) {
		evals := newStubEvalRepo()
		eval := &models.CandidateEvaluation{
			ID: uuid.New(), OwnerID: ownerID, SessionID: uuid.New(), Email: "ada@example.com",
			Outcome: models.OutcomeRejected,
		}
		require.NoError(t, evals.Upsert(eval))
		app := newSessionApp(owners, newStubSessionRepo(), evals, &fakePipeline{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/candidates/"+eval.ID.String(), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out models.CandidateEvaluation
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, models.OutcomeRejected, out.Outcome)
	})

	t.Run("owner candidates use the deduped view", func(t *testing.T) {
		evals := newStubEvalRepo()
		evals.latest = []models.CandidateEvaluation{
			{ID: uuid.New(), OwnerID: ownerID, Email: "ada@example.com", Outcome: models.OutcomeAccepted},
		}
		app := newSessionApp(owners, newStubSessionRepo(), evals, &fakePipeline{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/owners/owner@example.com/candidates", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out struct {
			Candidates []models.CandidateEvaluation `json:"candidates"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Len(t, out.Candidates, 1)
	})

	t.Run("cancel running session is accepted", func(t *testing.T) {
		app := newSessionApp(owners, newStubSessionRepo(), newStubEvalRepo(), &fakePipeline{cancelled: true})

		req := jsonRequest(t, http.MethodPost, "/api/v1/sessions/"+uuid.New().String()+"/cancel",
			models.CancelRequest{Reason: "wrong roster"})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	})

	t.Run("cancel of idle session conflicts", func(t *testing.T) {
		app := newSessionApp(owners, newStubSessionRepo(), newStubEvalRepo(), &fakePipeline{cancelled: false})

		req := jsonRequest(t, http.MethodPost, "/api/v1/sessions/"+uuid.New().String()+"/cancel",
			models.CancelRequest{})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("delete session reports removed results", func(t *testing.T) {
		session := &models.EvaluationSession{ID: uuid.New(), OwnerID: ownerID, Status: models.SessionCompleted}
		sessions := newStubSessionRepo(session)
		sessions.resultsDeleted = 4
		app := newSessionApp(owners, sessions, newStubEvalRepo(), &fakePipeline{})

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/"+session.ID.String(), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out struct {
			ResultsDeleted int64 `json:"results_deleted"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, int64(4), out.ResultsDeleted)
		assert.Empty(t, sessions.sessions)
	})

	t.Run("purge owner returns both counts", func(t *testing.T) {
		purgeOwners := newStubOwnerRepo("owner@example.com")
		purgeOwners.sessionsDeleted = 2
		purgeOwners.resultsDeleted = 9
		app := newSessionApp(purgeOwners, newStubSessionRepo(), newStubEvalRepo(), &fakePipeline{})

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/owners/owner@example.com/sessions", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out models.PurgeOwnerResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, int64(2), out.SessionsDeleted)
		assert.Equal(t, int64(9), out.ResultsDeleted)
	})

	t.Run("purge unknown owner is a 404", func(t *testing.T) {
		app := newSessionApp(newStubOwnerRepo(), newStubSessionRepo(), newStubEvalRepo(), &fakePipeline{})

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/owners/ghost@example.com/sessions", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
