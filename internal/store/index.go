package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/foliohub/apiserver/types"
)

const indexFileName = "users.json"

// UserIndexRepository persists the users index as a single JSON file mapping
// username to account metadata. Every operation is a whole-file
// read-modify-write; a package mutex serializes writers within this process,
// and each write lands via temp-file + rename. Cross-process races are not
// handled.
type UserIndexRepository struct {
	usersDir string
	mu       sync.Mutex
}

// NewUserIndexRepository constructs a repository rooted at the users
// directory, creating it if necessary.
func NewUserIndexRepository(usersDir string) (*UserIndexRepository, error) {
	if err := os.MkdirAll(usersDir, 0o755); err != nil {
		return nil, fmt.Errorf("create users directory: %w", err)
	}
	return &UserIndexRepository{usersDir: usersDir}, nil
}

func (r *UserIndexRepository) indexPath() string {
	return filepath.Join(r.usersDir, indexFileName)
}

// load reads the index file. A missing file is an empty index.
func (r *UserIndexRepository) load() (types.UserIndex, error) {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return types.UserIndex{}, nil
		}
		return nil, err
	}
	index := types.UserIndex{}
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, indexFileName)
	}
	return index, nil
}

func (r *UserIndexRepository) save(index types.UserIndex) error {
	return writeJSONAtomic(r.indexPath(), index)
}

// Get returns the index entry for username, or ErrNotFound.
func (r *UserIndexRepository) Get(ctx context.Context, username string) (types.UserIndexEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	index, err := r.load()
	if err != nil {
		return types.UserIndexEntry{}, err
	}
	entry, ok := index[username]
	if !ok {
		return types.UserIndexEntry{}, ErrNotFound
	}
	return entry, nil
}

// List returns the whole index. A missing index file yields an empty map.
func (r *UserIndexRepository) List(ctx context.Context) (types.UserIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

// Create adds a new entry, failing with ErrExists if the username is taken.
func (r *UserIndexRepository) Create(ctx context.Context, username string, entry types.UserIndexEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := index[username]; ok {
		return ErrExists
	}
	index[username] = entry
	return r.save(index)
}

// Update replaces an existing entry, failing with ErrNotFound if absent.
func (r *UserIndexRepository) Update(ctx context.Context, username string, entry types.UserIndexEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := index[username]; !ok {
		return ErrNotFound
	}
	index[username] = entry
	return r.save(index)
}

// Delete removes an entry, failing with ErrNotFound if absent. The user's
// profile directory is untouched; soft versus hard deletion is decided by
// the caller.
func (r *UserIndexRepository) Delete(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := index[username]; !ok {
		return ErrNotFound
	}
	delete(index, username)
	return r.save(index)
}
