// Package httpapi is the JSON-over-HTTP surface of dinoauth: login,
// registration, the caller's own profile and the user listing, plus the
// Prometheus scrape endpoint.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/dinoauth/internal/common"
	"github.com/dmitrijs2005/dinoauth/internal/logging"
	"github.com/dmitrijs2005/dinoauth/internal/server/guard"
	"github.com/dmitrijs2005/dinoauth/internal/server/services"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	auth   *services.AuthService
	users  *services.UserService
	logger logging.Logger
}

func NewHandler(auth *services.AuthService, users *services.UserService, logger logging.Logger) *Handler {
	return &Handler{auth: auth, users: users, logger: logger.With("module", "http_handler")}
}

// Routes mounts every endpoint. Profile and listing sit behind g; metrics is
// served as given.
func (h *Handler) Routes(g *guard.Guard, metrics http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /users", h.CreateUser)
	mux.Handle("GET /users", g.Middleware(http.HandlerFunc(h.Me)))
	mux.Handle("GET /users/all", g.Middleware(http.HandlerFunc(h.ListUsers)))
	mux.Handle("GET /metrics", metrics)
	return mux
}

type userView struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(out)
}

// POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	token, err := h.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeErr(w, http.StatusUnauthorized, "access denied")
			return
		}
		writeErr(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"jwt": token})
}

// POST /users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, err := h.users.Register(r.Context(), in.Name, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error(r.Context(), "register failed", "error", err)
		writeErr(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": u.ID.String()})
}

// GET /users
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := guard.UserFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, userView{Email: u.Email, Name: u.Name})
}

// GET /users/all
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "list users failed", "error", err)
		writeErr(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]userView, 0, len(list))
	for _, u := range list {
		out = append(out, userView{Email: u.Email, Name: u.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out})
}
