package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/foliohub/apiserver/internal/logging"
	"github.com/foliohub/apiserver/internal/storage"
	"github.com/foliohub/apiserver/internal/store"
	"github.com/foliohub/apiserver/types"
	"github.com/google/uuid"
)

// MaxUploadBytes is the per-file size cap.
const MaxUploadBytes = 10 << 20

var allowedTypes = map[string][]string{
	types.CategoryImages: {
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/gif",
		"image/webp",
	},
	types.CategoryDocuments: {
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	},
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// IncomingFile is one file of an upload batch, already read off the wire.
type IncomingFile struct {
	Name        string
	Size        int64
	ContentType string
	Data        []byte
}

// MediaService lists, deletes, and stores uploaded files through the
// object-storage abstraction.
type MediaService struct {
	store *storage.Storage
	log   logging.Logger
	token func() string
}

// NewMediaService constructs a MediaService.
func NewMediaService(store *storage.Storage, log logging.Logger) *MediaService {
	return &MediaService{
		store: store,
		log:   log,
		token: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:13]
		},
	}
}

// ListFiles enumerates both category directories for the user, newest first.
// Metadata is read live from the backing store.
func (s *MediaService) ListFiles(ctx context.Context, username string) ([]types.FileInfo, error) {
	type entry struct {
		info  types.FileInfo
		mtime int64
	}
	var entries []entry

	for _, category := range types.Categories {
		objects, err := s.store.List(ctx, path.Join(username, category))
		if err != nil {
			return nil, err
		}
		for _, obj := range objects {
			name := path.Base(obj.Key)
			entries = append(entries, entry{
				info: types.FileInfo{
					Name:         name,
					OriginalName: name,
					Category:     category,
					Type:         obj.ContentType,
					Size:         obj.Size,
					UploadedAt:   obj.ModTime.Format(types.TimestampFormat),
				},
				mtime: obj.ModTime.UnixNano(),
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].mtime > entries[j].mtime })

	files := make([]types.FileInfo, 0, len(entries))
	for _, e := range entries {
		files = append(files, e.info)
	}
	return files, nil
}

// DeleteFile unlinks one uploaded file. A missing file or invalid name
// reports store.ErrNotFound-style failure rather than touching anything.
func (s *MediaService) DeleteFile(ctx context.Context, username, fileName, category string) error {
	key := path.Join(username, category, fileName)
	err := s.store.Delete(ctx, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return store.ErrNotFound
	}
	return err
}

// Upload stores each accepted file of a batch under a collision-safe name.
// Files failing the size cap or mime allow-list are skipped with a per-file
// error; earlier successes are kept. Overall success is at least one stored
// file.
func (s *MediaService) Upload(ctx context.Context, username, category string, files []IncomingFile) types.UploadResult {
	result := types.UploadResult{Total: len(files)}

	for _, file := range files {
		if file.Size > MaxUploadBytes {
			result.Errors = append(result.Errors, fmt.Sprintf("File %s is too large (max 10MB)", file.Name))
			continue
		}
		if !typeAllowed(category, file.ContentType) {
			result.Errors = append(result.Errors, fmt.Sprintf("File %s has invalid type", file.Name))
			continue
		}

		savedName, err := s.reserveName(ctx, username, category, s.token()+"_"+sanitizeName(file.Name))
		if err != nil {
			s.log.Warn(ctx, "failed to reserve upload name", "username", username, "file", file.Name, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to save file %s", file.Name))
			continue
		}

		key := path.Join(username, category, savedName)
		if err := s.store.Put(ctx, key, bytes.NewReader(file.Data), file.Size, file.ContentType); err != nil {
			s.log.Warn(ctx, "failed to store upload", "username", username, "file", file.Name, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to save file %s", file.Name))
			continue
		}

		result.Files = append(result.Files, types.UploadedFile{
			OriginalName: file.Name,
			SavedName:    savedName,
			Path:         path.Join("users", key),
			Size:         file.Size,
			Type:         file.ContentType,
		})
		result.Uploaded++
	}

	return result
}

// reserveName resolves filename collisions by appending a numeric suffix to
// the stem. The random token prefix makes collisions unlikely, not
// impossible; concurrent uploads of the same name can still race.
func (s *MediaService) reserveName(ctx context.Context, username, category, name string) (string, error) {
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := name
	for counter := 1; ; counter++ {
		_, err := s.store.Stat(ctx, path.Join(username, category, candidate))
		if errors.Is(err, storage.ErrObjectNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, counter, ext)
	}
}

func typeAllowed(category, contentType string) bool {
	for _, t := range allowedTypes[category] {
		if contentType == t {
			return true
		}
	}
	return false
}

func sanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}
