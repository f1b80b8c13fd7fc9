package character

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/arisefit/hunterhub/internal/auth"
	"github.com/arisefit/hunterhub/internal/quests"
	"github.com/arisefit/hunterhub/internal/telemetry/metrics"
	"github.com/arisefit/hunterhub/pkg"
)

type Handler struct {
	service *Service
	catalog *quests.Catalog
	metrics *metrics.Manager
}

func NewHandler(
	router *mux.Router,
	service *Service,
	catalog *quests.Catalog,
	metricsManager *metrics.Manager,
) *Handler {
	handler := &Handler{
		service: service,
		catalog: catalog,
		metrics: metricsManager,
	}

	router.HandleFunc("/me", handler.handleGet).Methods("GET", "OPTIONS").Name("get-character")
	router.HandleFunc("/exp", handler.handleGrantExperience).Methods("POST", "OPTIONS").Name("grant-experience")
	router.HandleFunc("/stats/{stat}", handler.handleAllocateStatPoint).Methods("POST", "OPTIONS").Name("allocate-stat-point")
	router.HandleFunc("/quests", handler.handleQuests).Methods("GET", "OPTIONS").Name("quests")
	router.HandleFunc("/quests/{id}/accept", handler.handleAcceptQuest).Methods("POST", "OPTIONS").Name("accept-quest")
	router.HandleFunc("/quests/{id}/abandon", handler.handleAbandonQuest).Methods("POST", "OPTIONS").Name("abandon-quest")
	router.HandleFunc("/quests/{id}/complete", handler.handleCompleteQuest).Methods("POST", "OPTIONS").Name("complete-quest")
	router.HandleFunc("/shadows", handler.handleShadows).Methods("GET", "OPTIONS").Name("shadows")
	router.HandleFunc("/shadows/{id}/equip", handler.handleEquipShadow(true)).Methods("POST", "OPTIONS").Name("equip-shadow")
	router.HandleFunc("/shadows/{id}/unequip", handler.handleEquipShadow(false)).Methods("POST", "OPTIONS").Name("unequip-shadow")

	return handler
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	c, err := handler.service.Character(r.Context(), characterID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, c)
}

type grantExperienceRequest struct {
	Amount int `json:"amount"`
}

func (handler *Handler) handleGrantExperience(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	var req grantExperienceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	res, err := handler.service.GrantExperience(r.Context(), characterID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	handler.metrics.CounterExperienceGrants.Inc()
	if res.DidLevelUp {
		handler.metrics.CounterLevelUps.Inc()
	}

	writeJson(w, res)
}

func (handler *Handler) handleAllocateStatPoint(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	c, err := handler.service.AllocateStatPoint(r.Context(), characterID, mux.Vars(r)["stat"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, c)
}

type questInfo struct {
	quests.Definition
	Status   QuestStatus `json:"status"`
	Progress int         `json:"progress"`
}

// handleQuests merges the static quest catalog with this hunter's state.
func (handler *Handler) handleQuests(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	c, err := handler.service.Character(r.Context(), characterID)
	if err != nil {
		writeError(w, err)
		return
	}

	all := handler.catalog.All()
	infos := make([]questInfo, 0, len(all))
	for _, def := range all {
		state := c.QuestState(def.ID)
		infos = append(infos, questInfo{
			Definition: def,
			Status:     state.Status,
			Progress:   state.Progress,
		})
	}

	writeJson(w, infos)
}

func (handler *Handler) handleAcceptQuest(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	questID := mux.Vars(r)["id"]
	if err := handler.service.AcceptQuest(r.Context(), characterID, questID); err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, QuestState{Status: QuestStatusActive, Progress: 0})
}

func (handler *Handler) handleAbandonQuest(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	questID := mux.Vars(r)["id"]
	if err := handler.service.AbandonQuest(r.Context(), characterID, questID); err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, QuestState{Status: QuestStatusAvailable, Progress: 0})
}

type completeQuestResponse struct {
	Quest   QuestState          `json:"quest"`
	LevelUp *progressionPayload `json:"levelUp,omitempty"`
}

// progressionPayload mirrors progression.Result for the API response.
type progressionPayload struct {
	NewLevel               int      `json:"newLevel"`
	RemainingExperience    int      `json:"remainingExp"`
	NewExperienceThreshold int      `json:"newExpThreshold"`
	GainedStatPoints       int      `json:"gainedStatPoints"`
	GainedMaxHitPoints     int      `json:"gainedMaxHp"`
	UnlockMessages         []string `json:"unlocks,omitempty"`
	DidLevelUp             bool     `json:"didLevelUp"`
}

func (handler *Handler) handleCompleteQuest(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	questID := mux.Vars(r)["id"]
	res, err := handler.service.CompleteQuest(r.Context(), characterID, questID)
	if err != nil {
		writeError(w, err)
		return
	}

	handler.metrics.CounterQuestsCompleted.Inc()

	resp := completeQuestResponse{
		Quest: QuestState{Status: QuestStatusCompleted, Progress: 100},
	}
	if res != nil {
		resp.LevelUp = &progressionPayload{
			NewLevel:               res.NewLevel,
			RemainingExperience:    res.RemainingExperience,
			NewExperienceThreshold: res.NewExperienceThreshold,
			GainedStatPoints:       res.GainedStatPoints,
			GainedMaxHitPoints:     res.GainedMaxHitPoints,
			UnlockMessages:         res.UnlockMessages,
			DidLevelUp:             res.DidLevelUp,
		}
		if res.DidLevelUp {
			handler.metrics.CounterLevelUps.Inc()
		}
	}

	writeJson(w, resp)
}

type shadowInfo struct {
	Shadow
	Equipped bool `json:"equipped"`
}

func (handler *Handler) handleShadows(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	c, err := handler.service.Character(r.Context(), characterID)
	if err != nil {
		writeError(w, err)
		return
	}

	all := KnownShadows()
	infos := make([]shadowInfo, 0, len(all))
	for _, shadow := range all {
		infos = append(infos, shadowInfo{
			Shadow:   shadow,
			Equipped: c.HasShadowEquipped(shadow.ID),
		})
	}

	writeJson(w, infos)
}

func (handler *Handler) handleEquipShadow(equip bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		characterID, ok := auth.CharacterIDFromContext(r.Context())
		if !ok {
			http.Error(w, "no character", http.StatusUnauthorized)
			return
		}

		shadowID := mux.Vars(r)["id"]
		if err := handler.service.EquipShadow(r.Context(), characterID, shadowID, equip); err != nil {
			writeError(w, err)
			return
		}

		c, err := handler.service.Character(r.Context(), characterID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJson(w, c.EquippedShadows)
	}
}

func writeJson(w http.ResponseWriter, payload any) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, pkg.BytesToString(payloadBytes))
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCharacterNotFound),
		errors.Is(err, ErrUnknownQuest),
		errors.Is(err, ErrUnknownShadow):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidStat):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNoPointsAvailable),
		errors.Is(err, ErrQuestAlreadyTaken),
		errors.Is(err, ErrQuestNotActive),
		errors.Is(err, ErrShadowAlreadyEquipped),
		errors.Is(err, ErrEquipLimitReached):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Errorf("character handler: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
