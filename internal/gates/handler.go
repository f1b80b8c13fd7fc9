package gates

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/arisefit/hunterhub/internal/auth"
	"github.com/arisefit/hunterhub/internal/character"
	"github.com/arisefit/hunterhub/internal/telemetry/metrics"
	"github.com/arisefit/hunterhub/pkg"
)

type Handler struct {
	service *Service
	metrics *metrics.Manager
}

func NewHandler(
	router *mux.Router,
	service *Service,
	metricsManager *metrics.Manager,
) *Handler {
	handler := &Handler{
		service: service,
		metrics: metricsManager,
	}

	router.HandleFunc("", handler.handleList).Methods("GET", "OPTIONS").Name("list-gates")
	router.HandleFunc("/runs", handler.handleRuns).Methods("GET", "OPTIONS").Name("gate-runs")
	router.HandleFunc("/{id}/clear", handler.handleClear).Methods("POST", "OPTIONS").Name("clear-gate")

	return handler
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	infos, err := handler.service.Gates(r.Context(), characterID)
	if err != nil {
		handler.writeError(w, err)
		return
	}

	handler.writeJson(w, infos)
}

func (handler *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	runs, err := handler.service.Runs(r.Context(), characterID)
	if err != nil {
		handler.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []Run{}
	}

	handler.writeJson(w, runs)
}

type clearRequest struct {
	DurationMinutes int `json:"durationMinutes"`
}

func (handler *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	// body is optional, an empty body means no duration tracked
	var req clearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	outcome, err := handler.service.Clear(r.Context(), characterID, mux.Vars(r)["id"], req.DurationMinutes)
	if err != nil {
		handler.writeError(w, err)
		return
	}

	handler.metrics.CounterGatesCleared.Inc()
	if outcome.Rewards != nil && outcome.Rewards.DidLevelUp {
		handler.metrics.CounterLevelUps.Inc()
	}

	handler.writeJson(w, outcome)
}

func (handler *Handler) writeJson(w http.ResponseWriter, payload any) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal gates response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, pkg.BytesToString(payloadBytes))
}

func (handler *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownGate), errors.Is(err, character.ErrCharacterNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidDuration):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrGateLocked):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Errorf("gates handler: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
