package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/foliohub/apiserver/internal/services"
	"github.com/foliohub/apiserver/internal/validate"
	"github.com/foliohub/apiserver/types"
)

// multipartMemory caps how much of a parsed form stays in memory before
// spilling to temp files.
const multipartMemory = 32 << 20

// UploadHandler accepts multipart file uploads into a user's media space.
type UploadHandler struct {
	media *services.MediaService
}

// NewUploadHandler constructs an UploadHandler.
func NewUploadHandler(media *services.MediaService) *UploadHandler {
	return &UploadHandler{media: media}
}

// UploadRouter registers the upload endpoint on the given router.
func UploadRouter(r chi.Router, media *services.MediaService) {
	handler := NewUploadHandler(media)

	r.Post("/upload", handler.Upload)
}

// UploadResponse reports per-file outcomes of one batch.
type UploadResponse struct {
	Success  bool                 `json:"success"`
	Uploaded int                  `json:"uploaded"`
	Total    int                  `json:"total"`
	Files    []types.UploadedFile `json:"files"`
	Errors   []string             `json:"errors,omitempty"`
	Message  string               `json:"message"`
}

// Upload handles POST multipart form fields username, type, and files[].
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeFailure(w, "No files uploaded")
		return
	}

	headers := formFiles(r.MultipartForm)
	if len(headers) == 0 {
		writeFailure(w, "No files uploaded")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	category := strings.TrimSpace(r.FormValue("type"))
	if username == "" {
		writeFailure(w, "Username is required")
		return
	}
	if category == "" {
		writeFailure(w, "File type is required")
		return
	}
	if !validate.UsernameValid(username) {
		writeFailure(w, "Invalid username format")
		return
	}
	if validate.Category(category) != nil {
		writeFailure(w, "Invalid file type")
		return
	}

	var files []services.IncomingFile
	var readErrors []string
	for _, header := range headers {
		data, err := readUpload(header)
		if err != nil {
			readErrors = append(readErrors, fmt.Sprintf("Error uploading %s: file could not be read", header.Filename))
			continue
		}
		files = append(files, services.IncomingFile{
			Name:        header.Filename,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	result := h.media.Upload(r.Context(), username, category, files)

	resp := UploadResponse{
		Success:  result.Uploaded > 0,
		Uploaded: result.Uploaded,
		Total:    len(headers),
		Files:    result.Files,
		Errors:   append(readErrors, result.Errors...),
	}
	if resp.Files == nil {
		resp.Files = []types.UploadedFile{}
	}
	if len(resp.Errors) > 0 {
		resp.Message = "Some files failed to upload"
	} else {
		resp.Message = "All files uploaded successfully"
	}
	writeJSON(w, http.StatusOK, resp)
}

// formFiles returns the batch file headers. The dashboard posts the array
// field as "files[]"; plain "files" is accepted too.
func formFiles(form *multipart.Form) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	if headers := form.File["files[]"]; len(headers) > 0 {
		return headers
	}
	return form.File["files"]
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
