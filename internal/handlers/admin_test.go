package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foliohub/apiserver/types"
)

type usersResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Users   []types.UserSummary `json:"users"`
}

type userResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	User    types.UserSummary `json:"user"`
}

func TestAdminActionDispatch(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Action parameter is required", decodeEnvelope(t, rec).Message)

	req = httptest.NewRequest(http.MethodGet, "/api/admin?action=dropTables", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid action", decodeEnvelope(t, rec).Message)

	// deleteUser over GET, getUsers over POST.
	req = httptest.NewRequest(http.MethodGet, "/api/admin?action=deleteUser", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/admin?action=getUsers", map[string]string{})
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAdminGetUsers(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin?action=getUsers", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var parsed usersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	require.True(t, parsed.Success)
	require.NotNil(t, parsed.Users)
	require.Empty(t, parsed.Users)

	registerAlice(t, router)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin?action=getUsers", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	require.Len(t, parsed.Users, 1)
	require.Equal(t, "alice", parsed.Users[0].Username)
	require.NotNil(t, parsed.Users[0].Personal)
}

func TestAdminGetUser(t *testing.T) {
	router, _ := newTestRouter(t)
	registerAlice(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/admin?action=getUser&username=alice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var parsed userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	require.True(t, parsed.Success)
	require.Equal(t, "alice", parsed.User.Username)
	require.NotEmpty(t, parsed.User.CreatedAt)

	req = httptest.NewRequest(http.MethodGet, "/api/admin?action=getUser&username=nobody", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	resp := decodeEnvelope(t, rec)
	require.False(t, resp.Success)
	require.Equal(t, "User not found", resp.Message)

	req = httptest.NewRequest(http.MethodGet, "/api/admin?action=getUser", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, "Username is required", decodeEnvelope(t, rec).Message)
}

func TestAdminDeleteUser(t *testing.T) {
	router, dir := newTestRouter(t)
	registerAlice(t, router)

	uploaded := uploadBatch(t, router, "alice", "images", map[string]struct {
		contentType string
		data        []byte
	}{"photo.png": {"image/png", []byte("png data")}})
	require.Equal(t, 1, uploaded.Uploaded)

	rec := doJSON(t, router, http.MethodPost, "/api/admin?action=deleteUser", map[string]string{
		"username": "alice",
	})
	resp := decodeEnvelope(t, rec)
	require.True(t, resp.Success)
	require.Equal(t, "User deleted successfully", resp.Message)

	// Directory tree and index entry are both gone.
	_, err := os.Stat(filepath.Join(dir, "alice"))
	require.True(t, os.IsNotExist(err))

	req := httptest.NewRequest(http.MethodGet, "/api/admin?action=getUser&username=alice", nil)
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	require.Equal(t, "User not found", decodeEnvelope(t, rec2).Message)

	rec = doJSON(t, router, http.MethodPost, "/api/admin?action=deleteUser", map[string]string{
		"username": "alice",
	})
	require.Equal(t, "User not found", decodeEnvelope(t, rec).Message)
}
