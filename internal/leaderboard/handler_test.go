package leaderboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coocood/freecache"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type topProviderMock struct {
	entries []Entry
	calls   int
}

func (m *topProviderMock) Top(_ context.Context, limit int) ([]Entry, error) {
	m.calls++
	if limit >= len(m.entries) {
		return m.entries, nil
	}
	return m.entries[:limit], nil
}

func TestLeaderboard(t *testing.T) {
	repo := &topProviderMock{entries: []Entry{
		{Rank: 1, HunterName: "Jinwoo", Level: 42, Experience: 120},
		{Rank: 2, HunterName: "Cha Hae-In", Level: 39, Experience: 80},
		{Rank: 3, HunterName: "Gun-Hee", Level: 31, Experience: 10},
	}}

	router := mux.NewRouter()
	NewHandler(router.PathPrefix("/leaderboard").Subrouter(), repo, 2, freecache.NewCache(1024*1024))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/leaderboard", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var entries []Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Jinwoo", entries[0].HunterName)
	assert.Equal(t, 1, entries[0].Rank)

	// second request is served from the cache
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/leaderboard", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, repo.calls)
}
