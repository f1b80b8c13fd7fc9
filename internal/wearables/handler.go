package wearables

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/arisefit/hunterhub/internal/auth"
	"github.com/arisefit/hunterhub/pkg"
)

type Handler struct {
	service *Service
}

func NewHandler(router *mux.Router, service *Service) *Handler {
	handler := &Handler{service: service}

	router.HandleFunc("", handler.handleConnections).Methods("GET", "OPTIONS").Name("wearable-connections")
	router.HandleFunc("/connect", handler.handleConnect).Methods("POST", "OPTIONS").Name("connect-wearable")
	router.HandleFunc("/disconnect", handler.handleDisconnect).Methods("POST", "OPTIONS").Name("disconnect-wearable")
	router.HandleFunc("/track/start", handler.handleTrackStart).Methods("POST", "OPTIONS").Name("start-tracking")
	router.HandleFunc("/track/finish", handler.handleTrackFinish).Methods("POST", "OPTIONS").Name("finish-tracking")

	return handler
}

type platformRequest struct {
	Platform string `json:"platform"`
}

func (handler *Handler) handleConnections(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	connections, err := handler.service.Connections(r.Context(), characterID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, connections)
}

func (handler *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	var req platformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := handler.service.Connect(r.Context(), characterID, req.Platform); err != nil {
		writeError(w, err)
		return
	}

	pkg.WriteTextResponseOK(w, "connected:"+req.Platform)
}

func (handler *Handler) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	var req platformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := handler.service.Disconnect(r.Context(), characterID, req.Platform); err != nil {
		writeError(w, err)
		return
	}

	pkg.WriteTextResponseOK(w, "disconnected:"+req.Platform)
}

func (handler *Handler) handleTrackStart(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	var req platformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := handler.service.StartTracking(r.Context(), characterID, req.Platform); err != nil {
		writeError(w, err)
		return
	}

	pkg.WriteTextResponseOK(w, "tracking:"+req.Platform)
}

func (handler *Handler) handleTrackFinish(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	outcome, err := handler.service.FinishTracking(r.Context(), characterID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, outcome)
}

func writeJson(w http.ResponseWriter, payload any) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal wearables response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, pkg.BytesToString(payloadBytes))
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownPlatform):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotConnected), errors.Is(err, ErrNoActiveTracking):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrTrackingActive):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Errorf("wearables handler: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
