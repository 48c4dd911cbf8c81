package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// LocalClient stores media objects as plain files under a root directory,
// matching the on-disk layout users/<name>/<category>/<file>.
type LocalClient struct {
	root string
}

// NewLocalClient constructs a local-disk backend rooted at root.
func NewLocalClient(root string) (*LocalClient, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("local storage root is required")
	}
	return &LocalClient{root: root}, nil
}

// EnsureReady creates the root directory.
func (l *LocalClient) EnsureReady(ctx context.Context) error {
	return os.MkdirAll(l.root, 0o755)
}

func (l *LocalClient) keyPath(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

// Put writes an object to disk, creating parent directories as needed.
func (l *LocalClient) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	target := l.keyPath(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return err
	}
	return f.Close()
}

// Stat returns file metadata, or ErrObjectNotFound.
func (l *LocalClient) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	info, err := os.Stat(l.keyPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return ObjectInfo{}, ErrObjectNotFound
		}
		return ObjectInfo{}, err
	}
	if info.IsDir() {
		return ObjectInfo{}, ErrObjectNotFound
	}
	return ObjectInfo{
		Key:         key,
		Size:        info.Size(),
		ContentType: ContentTypeForKey(key),
		ModTime:     info.ModTime(),
	}, nil
}

// List enumerates regular files directly under the prefix directory.
// A missing directory is an empty listing.
func (l *LocalClient) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	dir := l.keyPath(prefix)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var objects []ObjectInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		key := path.Join(prefix, entry.Name())
		objects = append(objects, ObjectInfo{
			Key:         key,
			Size:        info.Size(),
			ContentType: ContentTypeForKey(key),
			ModTime:     info.ModTime(),
		})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Delete removes a file, or returns ErrObjectNotFound.
func (l *LocalClient) Delete(ctx context.Context, key string) error {
	err := os.Remove(l.keyPath(key))
	if err != nil && os.IsNotExist(err) {
		return ErrObjectNotFound
	}
	return err
}
