package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/foliohub/apiserver/internal/events"
	"github.com/foliohub/apiserver/internal/logging"
	"github.com/foliohub/apiserver/internal/store"
	"github.com/foliohub/apiserver/internal/validate"
	"github.com/foliohub/apiserver/types"
)

func newAccountService(t *testing.T) (*AccountService, string) {
	t.Helper()
	dir := t.TempDir()
	users, err := store.NewUserIndexRepository(dir)
	require.NoError(t, err)
	profiles := store.NewProfileRepository(dir)
	svc := NewAccountService(users, profiles, events.NopPublisher{}, logging.Discard())
	return svc, dir
}

func TestRegisterSeedsDefaultProfile(t *testing.T) {
	svc, dir := newAccountService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "secret1"))

	profiles := store.NewProfileRepository(dir)
	doc, err := profiles.Get(ctx, "alice")
	require.NoError(t, err)
	for _, field := range types.RequiredProfileFields {
		require.Contains(t, doc, field)
	}

	want, err := json.Marshal(types.DefaultProfileDocument())
	require.NoError(t, err)
	got, err := json.Marshal(doc)
	require.NoError(t, err)
	require.JSONEq(t, string(want), string(got))
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "secret1"))

	err := svc.Register(ctx, "alice", "another1")
	require.ErrorIs(t, err, store.ErrExists)
}

func TestRegisterShortPassword(t *testing.T) {
	svc, _ := newAccountService(t)

	err := svc.Register(context.Background(), "alice", "short")
	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Password must be at least 6 characters long", verr.Message)
}

func TestLogin(t *testing.T) {
	svc, dir := newAccountService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "secret1"))

	err := svc.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.Login(ctx, "nobody", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	before := time.Now()
	require.NoError(t, svc.Login(ctx, "alice", "secret1"))

	users, err := store.NewUserIndexRepository(dir)
	require.NoError(t, err)
	entry, err := users.Get(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, entry.LastLogin)

	stamp, err := time.ParseInLocation(types.TimestampFormat, *entry.LastLogin, time.Local)
	require.NoError(t, err)
	require.WithinDuration(t, before, stamp, 5*time.Second)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "secret1"))

	err := svc.ChangePassword(ctx, "alice", "wrong", "newsecret")
	require.ErrorIs(t, err, ErrPasswordMismatch)

	err = svc.ChangePassword(ctx, "alice", "secret1", "tiny")
	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "New password must be at least 6 characters long", verr.Message)

	require.NoError(t, svc.ChangePassword(ctx, "alice", "secret1", "newsecret"))
	require.NoError(t, svc.Login(ctx, "alice", "newsecret"))
	require.ErrorIs(t, svc.Login(ctx, "alice", "secret1"), ErrInvalidCredentials)
}

func TestChangePasswordUnknownUser(t *testing.T) {
	svc, _ := newAccountService(t)

	err := svc.ChangePassword(context.Background(), "nobody", "x", "longenough")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteAccountSoftDeletes(t *testing.T) {
	svc, dir := newAccountService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "secret1"))

	err := svc.DeleteAccount(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrPasswordMismatch)

	require.NoError(t, svc.DeleteAccount(ctx, "alice", "secret1"))

	users, err := store.NewUserIndexRepository(dir)
	require.NoError(t, err)
	_, err = users.Get(ctx, "alice")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Profile data survives; a deletion marker is added next to it.
	_, err = os.Stat(filepath.Join(dir, "alice", "data.json"))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "alice"))
	require.NoError(t, err)
	var marker bool
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".deleted_") {
			marker = true
		}
	}
	require.True(t, marker)
}

func TestHashPassword(t *testing.T) {
	// Hashes must stay stable across releases or existing accounts break.
	require.Equal(t, "5ebe2294ecd0e0f08eab7690d2a6ee69", HashPassword("secret"))
}
