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

// ProfileHandler serves the per-user profile document.
type ProfileHandler struct {
	profiles *services.ProfileService
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// ProfileRouter registers the profile endpoint on the given router.
func ProfileRouter(r chi.Router, profiles *services.ProfileService) {
	handler := NewProfileHandler(profiles)

	r.Get("/profile", handler.Get)
	r.Post("/profile", handler.Save)
}

// ProfileGetResponse carries the stored (or default) profile document.
type ProfileGetResponse struct {
	Response
	Data types.ProfileDocument `json:"data"`
}

// ProfileSaveRequest is the JSON body of the save action.
type ProfileSaveRequest struct {
	Action   string                `json:"action"`
	Username string                `json:"username"`
	Data     types.ProfileDocument `json:"data"`
}

// Get handles GET ?action=get&username=<name>.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	if action == "" {
		writeError(w, http.StatusBadRequest, "Action parameter is required")
		return
	}
	if action != "get" {
		if action == "save" {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid action")
		return
	}

	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if err := validate.Username(username); err != nil {
		writeFailure(w, err.Error())
		return
	}

	doc, err := h.profiles.Get(r.Context(), username)
	if err != nil {
		writeFailure(w, "Invalid data format")
		return
	}
	writeJSON(w, http.StatusOK, ProfileGetResponse{Response: Response{Success: true}, Data: doc})
}

// Save handles POST {action: "save", username, data}.
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req ProfileSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, "Invalid JSON data")
		return
	}
	if req.Action == "" {
		writeError(w, http.StatusBadRequest, "Action parameter is required")
		return
	}
	if req.Action != "save" {
		if req.Action == "get" {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid action")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		writeFailure(w, "Username is required")
		return
	}
	if req.Data == nil {
		writeFailure(w, "Data is required")
		return
	}
	if !validate.UsernameValid(req.Username) {
		writeFailure(w, "Invalid username format")
		return
	}

	if err := h.profiles.Save(r.Context(), req.Username, req.Data); err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			writeFailure(w, verr.Message)
			return
		}
		if errors.Is(err, store.ErrMalformed) {
			writeFailure(w, "Invalid data format")
			return
		}
		writeFailure(w, "Failed to save data")
		return
	}
	writeSuccess(w, "Data saved successfully")
}
