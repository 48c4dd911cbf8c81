package types

// Upload categories. Each maps to a fixed subdirectory of the user's
// media space.
const (
	CategoryImages    = "images"
	CategoryDocuments = "documents"
)

// Categories lists the valid upload categories.
var Categories = []string{CategoryImages, CategoryDocuments}

// FileInfo describes one uploaded file. Size, type, and upload time are read
// live from the backing store at listing time, never persisted separately.
type FileInfo struct {
	Name         string `json:"name"`
	OriginalName string `json:"original_name"`
	Category     string `json:"category"`
	Type         string `json:"type"`
	Size         int64  `json:"size"`
	UploadedAt   string `json:"uploaded_at"`
}

// UploadedFile is the per-file success payload of the upload endpoint.
type UploadedFile struct {
	OriginalName string `json:"original_name"`
	SavedName    string `json:"saved_name"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
}

// UploadResult aggregates per-file outcomes of one upload batch. Success is
// true iff at least one file was stored.
type UploadResult struct {
	Uploaded int            `json:"uploaded"`
	Total    int            `json:"total"`
	Files    []UploadedFile `json:"files"`
	Errors   []string       `json:"errors,omitempty"`
}
