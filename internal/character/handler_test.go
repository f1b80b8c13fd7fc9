package character

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arisefit/hunterhub/internal/auth"
	"github.com/arisefit/hunterhub/internal/quests"
	"github.com/arisefit/hunterhub/internal/telemetry/metrics"
)

func newTestHandler(t *testing.T) (*mux.Router, *Service) {
	t.Helper()
	catalog, err := quests.NewCatalog(strings.NewReader(testQuestsJson))
	require.NoError(t, err)

	service := NewService(newRepoMock(), catalog, 3, nil)
	t.Cleanup(service.Close)

	router := mux.NewRouter()
	NewHandler(router.PathPrefix("/hunter").Subrouter(), service, catalog, metrics.NewTestManager())
	return router, service
}

func doRequest(router *mux.Router, method, path, body, characterID string) *httptest.ResponseRecorder {
	var bodyReader *strings.Reader
	if body == "" {
		bodyReader = strings.NewReader("")
	} else {
		bodyReader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, bodyReader)
	if characterID != "" {
		req = req.WithContext(auth.SetCharacterID(req.Context(), characterID))
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandler_getCharacter(t *testing.T) {
	ctx := context.Background()
	router, service := newTestHandler(t)
	_, err := service.CreateDefault(ctx, "h1", "Jinwoo")
	require.NoError(t, err)

	rr := doRequest(router, "GET", "/hunter/me", "", "h1")
	require.Equal(t, http.StatusOK, rr.Code)

	var c Character
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &c))
	assert.Equal(t, "Jinwoo", c.HunterName)
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 100, c.ExperienceToNextLevel)

	// no token-derived character id in the context
	rr = doRequest(router, "GET", "/hunter/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doRequest(router, "GET", "/hunter/me", "", "nope")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_grantExperience(t *testing.T) {
	ctx := context.Background()
	router, service := newTestHandler(t)
	_, err := service.CreateDefault(ctx, "h1", "Jinwoo")
	require.NoError(t, err)

	rr := doRequest(router, "POST", "/hunter/exp", `{"amount": 150}`, "h1")
	require.Equal(t, http.StatusOK, rr.Code)

	var res struct {
		NewLevel            int  `json:"newLevel"`
		RemainingExperience int  `json:"remainingExperience"`
		DidLevelUp          bool `json:"didLevelUp"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.True(t, res.DidLevelUp)
	assert.Equal(t, 2, res.NewLevel)
	assert.Equal(t, 50, res.RemainingExperience)

	rr = doRequest(router, "POST", "/hunter/exp", `{"amount": 0}`, "h1")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(router, "POST", "/hunter/exp", `not json`, "h1")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_allocateStatPoint(t *testing.T) {
	ctx := context.Background()
	router, service := newTestHandler(t)
	_, err := service.CreateDefault(ctx, "h1", "Jinwoo")
	require.NoError(t, err)

	rr := doRequest(router, "POST", "/hunter/stats/strength", "", "h1")
	assert.Equal(t, http.StatusConflict, rr.Code)

	_, err = service.GrantExperience(ctx, "h1", 100)
	require.NoError(t, err)

	rr = doRequest(router, "POST", "/hunter/stats/luck", "", "h1")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(router, "POST", "/hunter/stats/strength", "", "h1")
	require.Equal(t, http.StatusOK, rr.Code)

	var c Character
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &c))
	assert.Equal(t, 6, c.Strength)
	assert.Equal(t, 1, c.StatPoints)
}

func TestHandler_questFlow(t *testing.T) {
	ctx := context.Background()
	router, service := newTestHandler(t)
	_, err := service.CreateDefault(ctx, "h1", "Jinwoo")
	require.NoError(t, err)

	rr := doRequest(router, "GET", "/hunter/quests", "", "h1")
	require.Equal(t, http.StatusOK, rr.Code)

	var infos []questInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &infos))
	require.Len(t, infos, 3)
	for _, info := range infos {
		assert.Equal(t, QuestStatusAvailable, info.Status)
	}

	rr = doRequest(router, "POST", "/hunter/quests/q1/accept", "", "h1")
	require.Equal(t, http.StatusOK, rr.Code)
	rr = doRequest(router, "POST", "/hunter/quests/q1/accept", "", "h1")
	assert.Equal(t, http.StatusConflict, rr.Code)
	rr = doRequest(router, "POST", "/hunter/quests/nope/accept", "", "h1")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doRequest(router, "POST", "/hunter/quests/q1/complete", "", "h1")
	require.Equal(t, http.StatusOK, rr.Code)

	var completed completeQuestResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &completed))
	assert.Equal(t, QuestStatusCompleted, completed.Quest.Status)
	require.NotNil(t, completed.LevelUp)
	assert.True(t, completed.LevelUp.DidLevelUp)
	assert.Equal(t, 2, completed.LevelUp.NewLevel)

	rr = doRequest(router, "POST", "/hunter/quests/q1/abandon", "", "h1")
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestHandler_shadows(t *testing.T) {
	ctx := context.Background()
	router, service := newTestHandler(t)
	_, err := service.CreateDefault(ctx, "h1", "Jinwoo")
	require.NoError(t, err)

	for _, id := range []string{"sh1", "sh2", "sh3"} {
		rr := doRequest(router, "POST", "/hunter/shadows/"+id+"/equip", "", "h1")
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := doRequest(router, "POST", "/hunter/shadows/sh4/equip", "", "h1")
	assert.Equal(t, http.StatusConflict, rr.Code)
	rr = doRequest(router, "POST", "/hunter/shadows/nope/equip", "", "h1")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doRequest(router, "POST", "/hunter/shadows/sh2/unequip", "", "h1")
	require.Equal(t, http.StatusOK, rr.Code)

	var equipped []string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &equipped))
	assert.Equal(t, []string{"sh1", "sh3"}, equipped)

	rr = doRequest(router, "GET", "/hunter/shadows", "", "h1")
	require.Equal(t, http.StatusOK, rr.Code)

	var infos []shadowInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &infos))
	assert.Len(t, infos, 8)
	equippedCount := 0
	for _, info := range infos {
		if info.Equipped {
			equippedCount++
		}
	}
	assert.Equal(t, 2, equippedCount)
}
