package leaderboard

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coocood/freecache"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/arisefit/hunterhub/pkg"
)

const (
	cacheKey        = "leaderboard"
	cacheTTLSeconds = 30
)

type topProvider interface {
	Top(ctx context.Context, limit int) ([]Entry, error)
}

// Handler serves the public leaderboard. Responses are cached for a short
// while, the board does not need to be fresh to the second.
type Handler struct {
	repo  topProvider
	size  int
	cache *freecache.Cache
}

func NewHandler(router *mux.Router, repo topProvider, size int, cache *freecache.Cache) *Handler {
	handler := &Handler{
		repo:  repo,
		size:  size,
		cache: cache,
	}

	router.HandleFunc("", handler.handleGet).Methods("GET", "OPTIONS").Name("leaderboard")

	return handler
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	if cached, err := handler.cache.Get([]byte(cacheKey)); err == nil {
		pkg.WriteJSONResponseOK(w, pkg.BytesToString(cached))
		return
	}

	entries, err := handler.repo.Top(r.Context(), handler.size)
	if err != nil {
		log.Errorf("get leaderboard: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}

	entriesJson, err := json.Marshal(entries)
	if err != nil {
		log.Errorf("marshal leaderboard: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := handler.cache.Set([]byte(cacheKey), entriesJson, cacheTTLSeconds); err != nil {
		log.Errorf("cache leaderboard: %s", err)
	}

	pkg.WriteJSONResponseOK(w, pkg.BytesToString(entriesJson))
}
