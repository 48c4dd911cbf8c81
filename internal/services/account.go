package services

import (
	"context"
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/foliohub/apiserver/internal/events"
	"github.com/foliohub/apiserver/internal/logging"
	"github.com/foliohub/apiserver/internal/store"
	"github.com/foliohub/apiserver/internal/validate"
	"github.com/foliohub/apiserver/types"
)

// ErrInvalidCredentials is returned on login when the username is unknown or
// the password does not match. The two cases are deliberately
// indistinguishable.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrPasswordMismatch is returned when a supplied password does not match the
// stored hash for an existing account.
var ErrPasswordMismatch = errors.New("password mismatch")

// retentionDays is the advisory retention window recorded in deletion
// markers. No automated purge consumes it.
const retentionDays = 30

// UserIndexRepository defines persistence operations for the users index.
type UserIndexRepository interface {
	Get(ctx context.Context, username string) (types.UserIndexEntry, error)
	List(ctx context.Context) (types.UserIndex, error)
	Create(ctx context.Context, username string, entry types.UserIndexEntry) error
	Update(ctx context.Context, username string, entry types.UserIndexEntry) error
	Delete(ctx context.Context, username string) error
}

// ProfileRepository defines persistence operations for per-user profile
// documents and the surrounding user directory.
type ProfileRepository interface {
	Get(ctx context.Context, username string) (types.ProfileDocument, error)
	Put(ctx context.Context, username string, doc types.ProfileDocument) error
	WriteDeletionMarker(ctx context.Context, username string, marker types.DeletionMarker) error
	DeleteTree(ctx context.Context, username string) error
}

// AccountService implements the account lifecycle: register, login,
// change password, and self-service (soft) deletion.
type AccountService struct {
	users     UserIndexRepository
	profiles  ProfileRepository
	publisher events.Publisher
	log       logging.Logger
	now       func() time.Time
}

// NewAccountService constructs an AccountService with the provided
// dependencies.
func NewAccountService(users UserIndexRepository, profiles ProfileRepository, publisher events.Publisher, log logging.Logger) *AccountService {
	return &AccountService{
		users:     users,
		profiles:  profiles,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// HashPassword returns the digest stored in the users index. md5 matches the
// hashes already present in deployed users.json files; changing the
// algorithm would lock out every existing account.
func HashPassword(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

func passwordMatches(entry types.UserIndexEntry, password string) bool {
	hashed := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(entry.PasswordHash), []byte(hashed)) == 1
}

// Register creates a new account: seeds the default profile document, then
// appends the index entry. The steps are separate filesystem writes; a
// failure in between leaves an orphaned directory that a later registration
// of the same name silently overwrites. That overwrite is long-standing
// observable behavior and is kept as is.
func (s *AccountService) Register(ctx context.Context, username, password string) error {
	if _, err := s.users.Get(ctx, username); err == nil {
		return store.ErrExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if err := validate.Password(password); err != nil {
		return err
	}

	if err := s.profiles.Put(ctx, username, types.DefaultProfileDocument()); err != nil {
		return err
	}

	entry := types.UserIndexEntry{
		PasswordHash: HashPassword(password),
		CreatedAt:    s.now().Format(types.TimestampFormat),
		LastLogin:    nil,
	}
	if err := s.users.Create(ctx, username, entry); err != nil {
		return err
	}

	s.publish(ctx, events.NewEvent(events.TypeAccountRegistered, username))
	return nil
}

// Login verifies credentials and stamps last_login. Unknown usernames and
// wrong passwords both return ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, username, password string) error {
	entry, err := s.users.Get(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if !passwordMatches(entry, password) {
		return ErrInvalidCredentials
	}

	lastLogin := s.now().Format(types.TimestampFormat)
	entry.LastLogin = &lastLogin
	return s.users.Update(ctx, username, entry)
}

// ChangePassword rewrites the stored hash after verifying the current
// password, and stamps password_changed_at.
func (s *AccountService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	entry, err := s.users.Get(ctx, username)
	if err != nil {
		return err
	}
	if !passwordMatches(entry, currentPassword) {
		return ErrPasswordMismatch
	}
	if err := validate.NewPassword(newPassword); err != nil {
		return err
	}

	entry.PasswordHash = HashPassword(newPassword)
	entry.PasswordChangedAt = s.now().Format(types.TimestampFormat)
	return s.users.Update(ctx, username, entry)
}

// DeleteAccount removes the index entry after verifying the password and
// writes a deletion marker into the retained user directory. Profile data
// and uploads stay on disk; only the admin hard delete removes them.
func (s *AccountService) DeleteAccount(ctx context.Context, username, password string) error {
	entry, err := s.users.Get(ctx, username)
	if err != nil {
		return err
	}
	if !passwordMatches(entry, password) {
		return ErrPasswordMismatch
	}

	if err := s.users.Delete(ctx, username); err != nil {
		return err
	}

	marker := types.DeletionMarker{
		DeletedAt:         s.now().Format(types.TimestampFormat),
		DeletedBy:         "user_request",
		DataRetentionDays: retentionDays,
	}
	if err := s.profiles.WriteDeletionMarker(ctx, username, marker); err != nil {
		s.log.Warn(ctx, "failed to write deletion marker", "username", username, "error", err)
	}

	s.publish(ctx, events.NewEvent(events.TypeAccountDeleted, username))
	return nil
}

func (s *AccountService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn(ctx, "failed to publish lifecycle event", "type", event.Type, "username", event.Username, "error", err)
	}
}
