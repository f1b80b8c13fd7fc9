package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/arisefit/hunterhub/pkg"
)

// TokenHeader carries the session token on authenticated requests.
const TokenHeader = "X-HUNTERS-TOKEN"

type Handler struct {
	service *Service
}

func NewHandler(router *mux.Router, service *Service) *Handler {
	handler := &Handler{service: service}

	router.HandleFunc("/signup", handler.handleSignup).Methods("POST", "OPTIONS").Name("signup")
	router.HandleFunc("/login", handler.handleLogin).Methods("POST", "OPTIONS").Name("login")
	router.HandleFunc("/logout", handler.handleLogout).Methods("POST", "OPTIONS").Name("logout")

	return handler
}

type signupRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	HunterName string `json:"hunterName"`
}

func (handler *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	session, err := handler.service.Signup(r.Context(), req.Username, req.Password, req.HunterName)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidUsername), errors.Is(err, ErrInvalidPassword):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrUsernameTaken):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			log.Errorf("signup: %s", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	writeSession(w, session)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	session, err := handler.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		log.Errorf("login: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeSession(w, session)
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(TokenHeader)
	if token == "" {
		http.Error(w, "no token", http.StatusUnauthorized)
		return
	}

	if err := handler.service.Logout(r.Context(), token); err != nil {
		if errors.Is(err, ErrNotLoggedIn) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		log.Errorf("logout: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}

func writeSession(w http.ResponseWriter, session *Session) {
	sessionJson, err := json.Marshal(session)
	if err != nil {
		log.Errorf("marshal session: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, pkg.BytesToString(sessionJson))
}
