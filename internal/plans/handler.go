package plans

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/arisefit/hunterhub/internal/auth"
	"github.com/arisefit/hunterhub/internal/character"
	"github.com/arisefit/hunterhub/pkg"
)

type hunters interface {
	Character(ctx context.Context, id string) (*character.Character, error)
}

type Handler struct {
	service *Service
	hunters hunters
}

func NewHandler(router *mux.Router, service *Service, hunters hunters) *Handler {
	handler := &Handler{
		service: service,
		hunters: hunters,
	}

	router.HandleFunc("/generate", handler.handleGenerate).Methods("POST", "OPTIONS").Name("generate-plan")
	router.HandleFunc("/latest", handler.handleLatest).Methods("GET", "OPTIONS").Name("latest-plan")

	return handler
}

type generatePlanRequest struct {
	Goal string `json:"goal"`
}

func (handler *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	var req generatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	c, err := handler.hunters.Character(r.Context(), characterID)
	if err != nil {
		log.Errorf("generate plan, get character %s: %s", characterID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	plan, err := handler.service.Generate(r.Context(), c, req.Goal)
	if err != nil {
		log.Errorf("generate plan: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJson(w, plan)
}

func (handler *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	plan, err := handler.service.Latest(r.Context(), characterID)
	if errors.Is(err, ErrNoPlan) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("latest plan: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJson(w, plan)
}

func writeJson(w http.ResponseWriter, payload any) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal plans response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, pkg.BytesToString(payloadBytes))
}
