package handler

import (
	"net/http"

	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/service"
)

// UserHandler handles user directory HTTP requests.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// HandleList returns every user.
// GET /users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeReadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTOs(users))
}

// HandleGet returns a single user.
// GET /users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeReadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// HandleCreate registers a user.
// POST /users
// Request:  {"id":1,"userName":"..."}
// Response: the stored user
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := h.users.Create(r.Context(), req.toDomain())
	if err != nil {
		writeServiceError(w, r, err, http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(user))
}
