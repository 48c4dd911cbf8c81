package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/foliohub/apiserver/types"
)

const profileFileName = "data.json"

// ProfileRepository persists one JSON profile document per user under
// users/<name>/data.json. Saves are whole-file overwrites, last-write-wins;
// a mutex serializes writers within this process.
type ProfileRepository struct {
	usersDir string
	mu       sync.Mutex
}

// NewProfileRepository constructs a repository rooted at the users directory.
func NewProfileRepository(usersDir string) *ProfileRepository {
	return &ProfileRepository{usersDir: usersDir}
}

// UserDir returns the directory holding the user's profile and media.
func (r *ProfileRepository) UserDir(username string) string {
	return filepath.Join(r.usersDir, username)
}

func (r *ProfileRepository) profilePath(username string) string {
	return filepath.Join(r.UserDir(username), profileFileName)
}

// Get returns the stored document for username. A missing file yields
// ErrNotFound; an unparseable file yields ErrMalformed.
func (r *ProfileRepository) Get(ctx context.Context, username string) (types.ProfileDocument, error) {
	data, err := os.ReadFile(r.profilePath(username))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	doc := types.ProfileDocument{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrMalformed, username, profileFileName)
	}
	return doc, nil
}

// Put overwrites the user's document in full, creating the user directory
// when it does not exist yet.
func (r *ProfileRepository) Put(ctx context.Context, username string, doc types.ProfileDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.UserDir(username), 0o755); err != nil {
		return err
	}
	return writeJSONAtomic(r.profilePath(username), doc)
}

// WriteDeletionMarker records a soft account deletion by writing a
// .deleted_<timestamp> file into the retained user directory.
func (r *ProfileRepository) WriteDeletionMarker(ctx context.Context, username string, marker types.DeletionMarker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dir := r.UserDir(username)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := ".deleted_" + time.Now().Format(types.MarkerTimestampFormat)
	return writeJSONAtomic(filepath.Join(dir, name), marker)
}

// DeleteTree removes the user's entire directory, profile and uploads
// included. Irreversible; used by the admin hard delete only.
func (r *ProfileRepository) DeleteTree(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return os.RemoveAll(r.UserDir(username))
}
