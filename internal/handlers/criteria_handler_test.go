package handlers

import (
	"bytes"
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
	"appreview/roster-evaluator/internal/repositories"
	"appreview/roster-evaluator/internal/services"
)

type stubOwnerRepo struct {
	owners          map[string]*models.Owner
	sessionsDeleted int64
	resultsDeleted  int64
}

func newStubOwnerRepo(emails ...string) *stubOwnerRepo {
	repo := &stubOwnerRepo{owners: make(map[string]*models.Owner)}
	for _, e := range emails {
		repo.owners[e] = &models.Owner{ID: uuid.New(), Email: e}
	}
	return repo
}

func (s *stubOwnerRepo) CreateOrGet(email, name string) (*models.Owner, error) {
	if o, ok := s.owners[email]; ok {
		return o, nil
	}
	o := &models.Owner{ID: uuid.New(), Email: email, Name: name}
	s.owners[email] = o
	return o, nil
}

func (s *stubOwnerRepo) FindByEmail(email string) (*models.Owner, error) {
	if o, ok := s.owners[email]; ok {
		return o, nil
	}
	return nil, errors.New("owner not found")
}

func (s *stubOwnerRepo) PurgeData(ownerID uuid.UUID) (int64, int64, error) {
	return s.sessionsDeleted, s.resultsDeleted, nil
}

type stubCriteriaRepo struct {
	byOwner map[uuid.UUID]*models.EligibilityCriteria
}

func newStubCriteriaRepo() *stubCriteriaRepo {
	return &stubCriteriaRepo{byOwner: make(map[uuid.UUID]*models.EligibilityCriteria)}
}

func (s *stubCriteriaRepo) Active(ownerID uuid.UUID) (*models.EligibilityCriteria, error) {
	if c, ok := s.byOwner[ownerID]; ok {
		return c, nil
	}
	return nil, repositories.ErrNoCriteria
}

func (s *stubCriteriaRepo) Replace(ownerID uuid.UUID, content string) (*models.EligibilityCriteria, error) {
	c := &models.EligibilityCriteria{ID: uuid.New(), OwnerID: ownerID, Content: content, IsActive: true}
	s.byOwner[ownerID] = c
	return c, nil
}

func newCriteriaApp(owners *stubOwnerRepo, criteria *stubCriteriaRepo) *fiber.App {
	app := fiber.New()
	handler := NewCriteriaHandler(owners, criteria)
	app.Get("/api/v1/eligibility-criteria", handler.HandleGet)
	app.Put("/api/v1/eligibility-criteria", handler.HandleUpdate)
	app.Post("/api/v1/eligibility-criteria/validate", handler.HandleValidate)
	return app
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeCriteria(t *testing.T, resp *http.Response) models.CriteriaResponse {
	t.Helper()
	var out models.CriteriaResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestCriteriaHandler(t *testing.T) {
	t.Run("get falls back to defaults for unknown owner", func(t *testing.T) {
		app := newCriteriaApp(newStubOwnerRepo(), newStubCriteriaRepo())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/eligibility-criteria?owner_email=new@example.com", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		out := decodeCriteria(t, resp)
		assert.Equal(t, "default", out.Status)
		assert.Equal(t, services.DefaultEligibilityCriteria, out.Content)
	})

	t.Run("get requires owner_email", func(t *testing.T) {
		app := newCriteriaApp(newStubOwnerRepo(), newStubCriteriaRepo())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/eligibility-criteria", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("update then get round trips", func(t *testing.T) {
		app := newCriteriaApp(newStubOwnerRepo(), newStubCriteriaRepo())

		putReq := jsonRequest(t, http.MethodPut, "/api/v1/eligibility-criteria", models.CriteriaUpdateRequest{
			OwnerEmail: "Owner@Example.com",
			Content:    "→ Must hold a degree",
		})
		putResp, err := app.Test(putReq, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, putResp.StatusCode)

		getReq := httptest.NewRequest(http.MethodGet, "/api/v1/eligibility-criteria?owner_email=owner@example.com", nil)
		getResp, err := app.Test(getReq, -1)
		require.NoError(t, err)

		out := decodeCriteria(t, getResp)
		assert.Equal(t, "custom", out.Status)
		assert.Equal(t, "→ Must hold a degree", out.Content)
		assert.NotEmpty(t, out.Version)
	})

	t.Run("update rejects missing fields", func(t *testing.T) {
		app := newCriteriaApp(newStubOwnerRepo(), newStubCriteriaRepo())

		req := jsonRequest(t, http.MethodPut, "/api/v1/eligibility-criteria", models.CriteriaUpdateRequest{
			OwnerEmail: "not-an-email",
			Content:    "something",
		})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("update with empty content is rejected and prior content kept", func(t *testing.T) {
		app := newCriteriaApp(newStubOwnerRepo(), newStubCriteriaRepo())

		first := jsonRequest(t, http.MethodPut, "/api/v1/eligibility-criteria", models.CriteriaUpdateRequest{
			OwnerEmail: "owner@example.com",
			Content:    "→ Original bar",
		})
		firstResp, err := app.Test(first, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, firstResp.StatusCode)

		for _, content := range []string{"", "   \n\t "} {
			empty := jsonRequest(t, http.MethodPut, "/api/v1/eligibility-criteria", models.CriteriaUpdateRequest{
				OwnerEmail: "owner@example.com",
				Content:    content,
			})
			emptyResp, err := app.Test(empty, -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, emptyResp.StatusCode)
		}

		getReq := httptest.NewRequest(http.MethodGet, "/api/v1/eligibility-criteria?owner_email=owner@example.com", nil)
		getResp, err := app.Test(getReq, -1)
		require.NoError(t, err)
		assert.Equal(t, "→ Original bar", decodeCriteria(t, getResp).Content)
	})

	t.Run("validate flags empty content", func(t *testing.T) {
		app := newCriteriaApp(newStubOwnerRepo(), newStubCriteriaRepo())

		req := jsonRequest(t, http.MethodPost, "/api/v1/eligibility-criteria/validate", models.CriteriaValidateRequest{Content: "   "})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		var out models.CriteriaValidateResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.False(t, out.Valid)
	})

	t.Run("validate accepts bullet criteria", func(t *testing.T) {
		app := newCriteriaApp(newStubOwnerRepo(), newStubCriteriaRepo())

		req := jsonRequest(t, http.MethodPost, "/api/v1/eligibility-criteria/validate", models.CriteriaValidateRequest{
			Content: "→ Degree required\n→ Essay required",
		})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		var out models.CriteriaValidateResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.True(t, out.Valid)
		assert.NotEmpty(t, out.Preview)
	})

	t.Run("validate warns when bullets are missing", func(t *testing.T) {
		app := newCriteriaApp(newStubOwnerRepo(), newStubCriteriaRepo())

		req := jsonRequest(t, http.MethodPost, "/api/v1/eligibility-criteria/validate", models.CriteriaValidateRequest{
			Content: "Applicants should have a degree.",
		})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		var out models.CriteriaValidateResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.True(t, out.Valid)
		assert.Contains(t, out.Message, "→")
	})
}
