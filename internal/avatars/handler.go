package avatars

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/arisefit/hunterhub/internal/auth"
	"github.com/arisefit/hunterhub/pkg"
)

const maxUploadBytes = 1 << 20 // 1 MB

type Handler struct {
	api *DiskApi
}

func NewHandler(router *mux.Router, api *DiskApi) *Handler {
	handler := &Handler{api: api}

	router.HandleFunc("", handler.handleList).Methods("GET", "OPTIONS").Name("list-avatars")
	router.HandleFunc("/me", handler.handleGetCustom).Methods("GET", "OPTIONS").Name("get-custom-avatar")
	router.HandleFunc("/me", handler.handleUpload).Methods("POST", "OPTIONS").Name("upload-avatar")
	router.HandleFunc("/{name}", handler.handleGet).Methods("GET", "OPTIONS").Name("get-avatar")

	return handler
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	names, err := handler.api.List()
	if err != nil {
		log.Errorf("list avatars: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	namesJson, err := json.Marshal(names)
	if err != nil {
		log.Errorf("marshal avatars: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, pkg.BytesToString(namesJson))
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	path, err := handler.api.Path(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	http.ServeFile(w, r, path)
}

func (handler *Handler) handleGetCustom(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	path, err := handler.api.CustomPath(characterID)
	if err != nil {
		writeError(w, err)
		return
	}
	http.ServeFile(w, r, path)
}

func (handler *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	characterID, ok := auth.CharacterIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no character", http.StatusUnauthorized)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		http.Error(w, "avatar too large", http.StatusRequestEntityTooLarge)
		return
	}
	if len(data) == 0 {
		http.Error(w, "empty avatar", http.StatusBadRequest)
		return
	}

	if err := handler.api.SaveCustom(characterID, data); err != nil {
		log.Errorf("save avatar for %s: %s", characterID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "avatar saved")
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrAvatarNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.Errorf("avatars handler: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
