package services

import (
	"context"
	"errors"

	"github.com/foliohub/apiserver/internal/store"
	"github.com/foliohub/apiserver/internal/validate"
	"github.com/foliohub/apiserver/types"
)

// ProfileService serves and stores per-user profile documents.
type ProfileService struct {
	profiles ProfileRepository
}

// NewProfileService constructs a ProfileService.
func NewProfileService(profiles ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// Get returns the stored document, or the default document when the user has
// none yet. A stored file that fails to parse is an error, not a fallback.
func (s *ProfileService) Get(ctx context.Context, username string) (types.ProfileDocument, error) {
	doc, err := s.profiles.Get(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.DefaultProfileDocument(), nil
		}
		return nil, err
	}
	return doc, nil
}

// Save overwrites the user's document in full, last-write-wins. All required
// top-level keys must be present; a rejected save leaves the stored document
// untouched.
func (s *ProfileService) Save(ctx context.Context, username string, doc types.ProfileDocument) error {
	for _, field := range types.RequiredProfileFields {
		if _, ok := doc[field]; !ok {
			return validate.NewError("Missing required field: %s", field)
		}
	}
	return s.profiles.Put(ctx, username, doc)
}
