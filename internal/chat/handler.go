package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/arisefit/hunterhub/internal/auth"
	"github.com/arisefit/hunterhub/internal/character"
	"github.com/arisefit/hunterhub/internal/telemetry/metrics"
	"github.com/arisefit/hunterhub/pkg"
)

type hunterNames interface {
	Character(ctx context.Context, id string) (*character.Character, error)
}

type Handler struct {
	service *Service
	hunters hunterNames
	metrics *metrics.Manager
}

func NewHandler(
	router *mux.Router,
	service *Service,
	hunters hunterNames,
	metricsManager *metrics.Manager,
) *Handler {
	handler := &Handler{
		service: service,
		hunters: hunters,
		metrics: metricsManager,
	}

	router.HandleFunc("/messages", handler.handlePost).Methods("POST", "OPTIONS").Name("post-chat-message")
	router.HandleFunc("/messages", handler.handleList).Methods("GET", "OPTIONS").Name("list-chat-messages")
	router.HandleFunc("/messages/last/{limit}", handler.handleList).Methods("GET", "OPTIONS").Name("last-chat-messages")

	return handler
}

type postMessageRequest struct {
	Text string `json:"text"`
}

func (handler *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	c, err := handler.hunters.Character(r.Context(), characterID)
	if err != nil {
		log.Errorf("post chat message, get character %s: %s", characterID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	messages, err := handler.service.PostMessage(r.Context(), characterID, c.HunterName, req.Text)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) || errors.Is(err, ErrMessageTooLong) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("post chat message: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterChatMessages.Inc()

	messagesJson, err := json.Marshal(messages)
	if err != nil {
		log.Errorf("marshal chat messages: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, pkg.BytesToString(messagesJson))
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitParam, ok := mux.Vars(r)["limit"]; ok {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	} else if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	messages, err := handler.service.Messages(r.Context(), limit)
	if err != nil {
		log.Errorf("list chat messages: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []Message{}
	}

	messagesJson, err := json.Marshal(messages)
	if err != nil {
		log.Errorf("marshal chat messages: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, pkg.BytesToString(messagesJson))
}
