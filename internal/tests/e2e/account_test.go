//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/foliohub/apiserver/config"
	"github.com/foliohub/apiserver/internal/logging"
	"github.com/foliohub/apiserver/internal/server"
)

const serverPort = 18080

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	dataDir, err := os.MkdirTemp("", "foliohub-e2e-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create data dir: %v\n", err)
		os.Exit(1)
	}

	srv, err := startServer(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = os.RemoveAll(dataDir)
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown()
		_ = os.RemoveAll(dataDir)
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown()
	_ = os.RemoveAll(dataDir)
	os.Exit(code)
}

func TestAccountLifecycle(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	username := fmt.Sprintf("alice_%d", time.Now().UnixNano())
	password := "secret1"

	resp, err := accountsAction(t, baseURL, map[string]string{
		"action": "register", "username": username, "password": password,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !resp.Success {
		t.Fatalf("register failed: %q", resp.Message)
	}

	resp, err = accountsAction(t, baseURL, map[string]string{
		"action": "login", "username": username, "password": "wrong",
	})
	if err != nil {
		t.Fatalf("login with wrong password: %v", err)
	}
	if resp.Success || resp.Message != "Invalid username or password" {
		t.Fatalf("expected generic credentials failure, got success=%v message=%q", resp.Success, resp.Message)
	}

	resp, err = accountsAction(t, baseURL, map[string]string{
		"action": "login", "username": username, "password": password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !resp.Success {
		t.Fatalf("login failed: %q", resp.Message)
	}

	doc, err := getProfile(t, baseURL, username)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	personal, ok := doc["personal"].(map[string]any)
	if !ok {
		t.Fatalf("expected personal section in default document")
	}
	personal["name"] = "Alice"

	if err := saveProfile(t, baseURL, username, doc); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	doc, err = getProfile(t, baseURL, username)
	if err != nil {
		t.Fatalf("get profile after save: %v", err)
	}
	personal, _ = doc["personal"].(map[string]any)
	if personal["name"] != "Alice" {
		t.Fatalf("expected saved name to round-trip, got %v", personal["name"])
	}

	if err := adminDeleteUser(t, baseURL, username); err != nil {
		t.Fatalf("admin delete: %v", err)
	}

	status, resp, err := adminGetUser(t, baseURL, username)
	if err != nil {
		t.Fatalf("admin get after delete: %v", err)
	}
	if status != http.StatusOK || resp.Success || resp.Message != "User not found" {
		t.Fatalf("expected not-found failure after delete, got status=%d success=%v message=%q", status, resp.Success, resp.Message)
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func accountsAction(t *testing.T, baseURL string, payload map[string]string) (envelope, error) {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		return envelope{}, err
	}

	resp, err := http.Post(baseURL+"/api/accounts", "application/json", bytes.NewReader(body))
	if err != nil {
		return envelope{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return envelope{}, fmt.Errorf("accounts status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed envelope
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return envelope{}, err
	}
	return parsed, nil
}

func getProfile(t *testing.T, baseURL, username string) (map[string]any, error) {
	t.Helper()

	resp, err := http.Get(baseURL + "/api/profile?action=get&username=" + username)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed struct {
		envelope
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if !parsed.Success {
		return nil, fmt.Errorf("get profile failed: %q", parsed.Message)
	}
	return parsed.Data, nil
}

func saveProfile(t *testing.T, baseURL, username string, doc map[string]any) error {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"action":   "save",
		"username": username,
		"data":     doc,
	})
	if err != nil {
		return err
	}

	resp, err := http.Post(baseURL+"/api/profile", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var parsed envelope
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return err
	}
	if !parsed.Success {
		return fmt.Errorf("save failed: %q", parsed.Message)
	}
	return nil
}

func adminDeleteUser(t *testing.T, baseURL, username string) error {
	t.Helper()

	body, err := json.Marshal(map[string]string{"username": username})
	if err != nil {
		return err
	}

	resp, err := http.Post(baseURL+"/api/admin?action=deleteUser", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var parsed envelope
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return err
	}
	if !parsed.Success {
		return fmt.Errorf("delete failed: %q", parsed.Message)
	}
	return nil
}

func adminGetUser(t *testing.T, baseURL, username string) (int, envelope, error) {
	t.Helper()

	resp, err := http.Get(baseURL + "/api/admin?action=getUser&username=" + username)
	if err != nil {
		return 0, envelope{}, err
	}
	defer resp.Body.Close()

	var parsed envelope
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, envelope{}, err
	}
	return resp.StatusCode, parsed, nil
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func startServer(dataDir string) (*server.Server, error) {
	_ = os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))
	_ = os.Setenv("DATA_DIR", dataDir)
	_ = os.Setenv("STORAGE_BACKEND", "local")
	_ = os.Setenv("EVENTS_BACKEND", "none")

	cfg := config.LoadConfig()
	srv, err := server.New(context.Background(), cfg, logging.Discard())
	if err != nil {
		return nil, err
	}

	go func() {
		_ = srv.Start()
	}()

	return srv, nil
}
