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

// MediaHandler lists and deletes uploaded files. The action travels in the
// query string for both methods.
type MediaHandler struct {
	media *services.MediaService
}

// NewMediaHandler constructs a MediaHandler.
func NewMediaHandler(media *services.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// MediaRouter registers the media endpoint on the given router.
func MediaRouter(r chi.Router, media *services.MediaService) {
	handler := NewMediaHandler(media)

	r.Get("/media", handler.GetFiles)
	r.Post("/media", handler.DeleteFile)
}

// MediaFilesResponse carries the merged file listing.
type MediaFilesResponse struct {
	Response
	Files []types.FileInfo `json:"files"`
}

// MediaDeleteRequest is the JSON body of the deleteFile action.
type MediaDeleteRequest struct {
	Username string `json:"username"`
	FileName string `json:"fileName"`
	Category string `json:"category"`
}

func mediaAction(w http.ResponseWriter, r *http.Request, want string) bool {
	action := r.URL.Query().Get("action")
	if action == "" {
		writeError(w, http.StatusBadRequest, "Action parameter is required")
		return false
	}
	if action != want {
		if action == "getFiles" || action == "deleteFile" {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid action")
		return false
	}
	return true
}

// GetFiles handles GET ?action=getFiles&username=<name>.
func (h *MediaHandler) GetFiles(w http.ResponseWriter, r *http.Request) {
	if !mediaAction(w, r, "getFiles") {
		return
	}

	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if err := validate.Username(username); err != nil {
		writeFailure(w, err.Error())
		return
	}

	files, err := h.media.ListFiles(r.Context(), username)
	if err != nil {
		writeFailure(w, "Failed to list files")
		return
	}
	if files == nil {
		files = []types.FileInfo{}
	}
	writeJSON(w, http.StatusOK, MediaFilesResponse{Response: Response{Success: true}, Files: files})
}

// DeleteFile handles POST ?action=deleteFile with a JSON body.
func (h *MediaHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if !mediaAction(w, r, "deleteFile") {
		return
	}

	var req MediaDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, "Invalid JSON data")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.FileName = strings.TrimSpace(req.FileName)
	req.Category = strings.TrimSpace(req.Category)
	if req.Username == "" || req.FileName == "" || req.Category == "" {
		writeFailure(w, "Username, fileName, and category are required")
		return
	}
	if !validate.UsernameValid(req.Username) {
		writeFailure(w, "Invalid username format")
		return
	}
	if err := validate.Category(req.Category); err != nil {
		writeFailure(w, err.Error())
		return
	}
	if err := validate.FileName(req.FileName); err != nil {
		writeFailure(w, err.Error())
		return
	}

	if err := h.media.DeleteFile(r.Context(), req.Username, req.FileName, req.Category); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFailure(w, "File not found")
			return
		}
		writeFailure(w, "Failed to delete file")
		return
	}
	writeSuccess(w, "File deleted successfully")
}
