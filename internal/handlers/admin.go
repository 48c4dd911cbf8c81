package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/foliohub/apiserver/internal/services"
	"github.com/foliohub/apiserver/internal/store"
	"github.com/foliohub/apiserver/internal/validate"
	"github.com/foliohub/apiserver/types"
)

// AdminHandler serves the admin panel's user listing and hard delete.
type AdminHandler struct {
	admin *services.AdminService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// AdminRouter registers the admin endpoint on the given router.
func AdminRouter(r chi.Router, admin *services.AdminService) {
	handler := NewAdminHandler(admin)

	r.Get("/admin", handler.Get)
	r.Post("/admin", handler.DeleteUser)
}

// AdminUsersResponse carries the combined index and profile view of all
// users.
type AdminUsersResponse struct {
	Response
	Users []types.UserSummary `json:"users"`
}

// AdminUserResponse carries the combined view of one user.
type AdminUserResponse struct {
	Response
	User types.UserSummary `json:"user"`
}

// AdminDeleteRequest is the JSON body of the deleteUser action.
type AdminDeleteRequest struct {
	Username string `json:"username"`
}

// Get handles GET ?action=getUsers and ?action=getUser&username=<name>.
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	switch action := r.URL.Query().Get("action"); action {
	case "":
		writeError(w, http.StatusBadRequest, "Action parameter is required")
	case "getUsers":
		h.getUsers(w, r)
	case "getUser":
		h.getUser(w, r)
	case "deleteUser":
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	default:
		writeError(w, http.StatusBadRequest, "Invalid action")
	}
}

func (h *AdminHandler) getUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		writeFailure(w, "Failed to load users")
		return
	}
	if users == nil {
		users = []types.UserSummary{}
	}
	writeJSON(w, http.StatusOK, AdminUsersResponse{Response: Response{Success: true}, Users: users})
}

func (h *AdminHandler) getUser(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if err := validate.Username(username); err != nil {
		writeFailure(w, err.Error())
		return
	}

	user, err := h.admin.GetUser(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFailure(w, "User not found")
			return
		}
		writeFailure(w, "Failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, AdminUserResponse{Response: Response{Success: true}, User: user})
}

// DeleteUser handles POST ?action=deleteUser with a JSON body. The user's
// index entry, media objects, and directory tree are all removed.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	switch action := r.URL.Query().Get("action"); action {
	case "":
		writeError(w, http.StatusBadRequest, "Action parameter is required")
		return
	case "deleteUser":
	case "getUsers", "getUser":
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	default:
		writeError(w, http.StatusBadRequest, "Invalid action")
		return
	}

	var req AdminDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, "Invalid JSON data")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if err := validate.Username(req.Username); err != nil {
		writeFailure(w, err.Error())
		return
	}

	err := h.admin.DeleteUser(r.Context(), req.Username)
	switch {
	case err == nil:
		writeSuccess(w, "User deleted successfully")
	case errors.Is(err, store.ErrNotFound):
		writeFailure(w, "User not found")
	case errors.Is(err, services.ErrRemoveFiles):
		writeFailure(w, "Failed to delete user files")
	default:
		writeFailure(w, "Failed to update users list")
	}
}
