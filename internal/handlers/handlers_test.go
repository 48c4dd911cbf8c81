package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/foliohub/apiserver/internal/events"
	"github.com/foliohub/apiserver/internal/logging"
	"github.com/foliohub/apiserver/internal/services"
	"github.com/foliohub/apiserver/internal/storage"
	"github.com/foliohub/apiserver/internal/store"
)

// newTestRouter wires the full API over a temp directory, local storage, and
// the no-op publisher.
func newTestRouter(t *testing.T) (*chi.Mux, string) {
	t.Helper()
	dir := t.TempDir()

	users, err := store.NewUserIndexRepository(dir)
	require.NoError(t, err)
	profiles := store.NewProfileRepository(dir)
	client, err := storage.NewLocalClient(dir)
	require.NoError(t, err)
	media := storage.NewStorage(client)
	log := logging.Discard()

	accountService := services.NewAccountService(users, profiles, events.NopPublisher{}, log)
	profileService := services.NewProfileService(profiles)
	mediaService := services.NewMediaService(media, log)
	adminService := services.NewAdminService(users, profiles, media, events.NopPublisher{}, log)

	router := chi.NewRouter()
	router.NotFound(NotFound)
	router.MethodNotAllowed(MethodNotAllowed)
	router.Route("/api", func(r chi.Router) {
		AccountsRouter(r, accountService)
		ProfileRouter(r, profileService)
		MediaRouter(r, mediaService)
		UploadRouter(r, mediaService)
		AdminRouter(r, adminService)
	})
	return router, dir
}

func doJSON(t *testing.T, router http.Handler, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func registerAlice(t *testing.T, router http.Handler) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/accounts", map[string]string{
		"action": "register", "username": "alice", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decodeEnvelope(t, rec).Success)
}
