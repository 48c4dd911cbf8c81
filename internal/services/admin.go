package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"

	"github.com/foliohub/apiserver/internal/events"
	"github.com/foliohub/apiserver/internal/logging"
	"github.com/foliohub/apiserver/internal/storage"
	"github.com/foliohub/apiserver/types"
)

// ErrRemoveFiles is returned when a hard delete removed the index entry but
// could not remove the user's files.
var ErrRemoveFiles = errors.New("failed to remove user files")

// AdminService provides the admin panel's combined user views and the hard
// delete.
type AdminService struct {
	users     UserIndexRepository
	profiles  ProfileRepository
	media     *storage.Storage
	publisher events.Publisher
	log       logging.Logger
}

// NewAdminService constructs an AdminService.
func NewAdminService(users UserIndexRepository, profiles ProfileRepository, media *storage.Storage, publisher events.Publisher, log logging.Logger) *AdminService {
	return &AdminService{
		users:     users,
		profiles:  profiles,
		media:     media,
		publisher: publisher,
		log:       log,
	}
}

// ListUsers joins every index entry with that user's profile subset, sorted
// by username. Profile sections absent on disk surface as null.
func (s *AdminService) ListUsers(ctx context.Context) ([]types.UserSummary, error) {
	index, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	usernames := make([]string, 0, len(index))
	for username := range index {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)

	summaries := make([]types.UserSummary, 0, len(usernames))
	for _, username := range usernames {
		summaries = append(summaries, s.summarize(ctx, username, index[username]))
	}
	return summaries, nil
}

// GetUser returns the combined view for one user, or store.ErrNotFound.
func (s *AdminService) GetUser(ctx context.Context, username string) (types.UserSummary, error) {
	entry, err := s.users.Get(ctx, username)
	if err != nil {
		return types.UserSummary{}, err
	}
	return s.summarize(ctx, username, entry), nil
}

// DeleteUser removes the index entry, the user's media objects, and the
// entire user directory. Irreversible, unlike the self-service soft delete.
func (s *AdminService) DeleteUser(ctx context.Context, username string) error {
	if err := s.users.Delete(ctx, username); err != nil {
		return err
	}

	for _, category := range types.Categories {
		objects, err := s.media.List(ctx, path.Join(username, category))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRemoveFiles, err)
		}
		for _, obj := range objects {
			if err := s.media.Delete(ctx, obj.Key); err != nil {
				return fmt.Errorf("%w: %v", ErrRemoveFiles, err)
			}
		}
	}

	if err := s.profiles.DeleteTree(ctx, username); err != nil {
		return fmt.Errorf("%w: %v", ErrRemoveFiles, err)
	}

	if err := s.publisher.Publish(ctx, events.NewEvent(events.TypeAccountPurged, username)); err != nil {
		s.log.Warn(ctx, "failed to publish lifecycle event", "type", events.TypeAccountPurged, "username", username, "error", err)
	}
	return nil
}

// summarize reads the profile document best-effort; a missing or unreadable
// document just leaves the sections null.
func (s *AdminService) summarize(ctx context.Context, username string, entry types.UserIndexEntry) types.UserSummary {
	summary := types.UserSummary{
		Username:  username,
		CreatedAt: entry.CreatedAt,
		LastLogin: entry.LastLogin,
	}

	doc, err := s.profiles.Get(ctx, username)
	if err != nil {
		return summary
	}

	summary.Personal = doc["personal"]
	summary.Education = doc["education"]
	summary.Experience = doc["experience"]
	summary.Volunteering = doc["volunteering"]
	summary.Skills = doc["skills"]
	summary.Projects = doc["projects"]
	summary.Certificates = doc["certificates"]
	return summary
}
