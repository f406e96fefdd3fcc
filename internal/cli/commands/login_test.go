package commands

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// setupTestEnvironment points the CLI at a temp session file and a server URL
func setupTestEnvironment(t *testing.T, serverURL string) string {
	t.Helper()

	tempDir := t.TempDir()
	sessionPath := filepath.Join(tempDir, "session.json")

	// Isolate from any real user config in the home directory
	t.Setenv("HOME", tempDir)
	t.Setenv("SHOPDESK_SESSION_FILE", sessionPath)
	t.Setenv("SHOPDESK_SERVER", serverURL)
	t.Setenv("SHOPDESK_EMAIL", "")
	t.Setenv("SHOPDESK_PASSWORD", "")

	return sessionPath
}

// mockAPIServer creates a mock API server for testing
func mockAPIServer(t *testing.T, email, password, token string, shouldFail bool) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if r.Method != "POST" {
			t.Errorf("unexpected method: %s", r.Method)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var loginReq struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}

		if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if shouldFail || loginReq.Email != email || loginReq.Password != password {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{
				"status":  "error",
				"message": "invalid credentials",
			})
			return
		}

		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data": map[string]any{
				"token": token,
				"admin": map[string]any{
					"_id":      "01ARZ3NDEKTSV4RRFFQ69G5FAV",
					"email":    loginReq.Email,
					"name":     "Test Admin",
					"role":     "superadmin",
					"access":   "superadmin",
					"isActive": true,
				},
			},
		})
	}))
}

func TestRunLogin_Success(t *testing.T) {
	server := mockAPIServer(t, "admin@example.com", "secret", "test-token-123", false)
	defer server.Close()

	sessionPath := setupTestEnvironment(t, server.URL)

	if err := runLogin(context.Background(), "admin@example.com", "secret"); err != nil {
		t.Fatalf("runLogin failed: %v", err)
	}

	// Session file must hold the authenticated triple
	data, err := os.ReadFile(sessionPath)
	if err != nil {
		t.Fatalf("failed to read session file: %v", err)
	}

	var state struct {
		Token         string `json:"token"`
		Authenticated bool   `json:"is_authenticated"`
		User          *struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("failed to parse session file: %v", err)
	}

	if state.Token != "test-token-123" {
		t.Errorf("expected token 'test-token-123', got %q", state.Token)
	}
	if !state.Authenticated {
		t.Error("expected session to be authenticated")
	}
	if state.User == nil || state.User.Email != "admin@example.com" {
		t.Errorf("expected user email 'admin@example.com', got %+v", state.User)
	}
}

func TestRunLogin_InvalidCredentials(t *testing.T) {
	server := mockAPIServer(t, "admin@example.com", "secret", "test-token-123", false)
	defer server.Close()

	sessionPath := setupTestEnvironment(t, server.URL)

	err := runLogin(context.Background(), "admin@example.com", "wrong-password")
	if err == nil {
		t.Fatal("expected login to fail with wrong password")
	}

	// No session file should be written on a rejected login
	if _, statErr := os.Stat(sessionPath); !os.IsNotExist(statErr) {
		t.Error("expected no session file after rejected login")
	}
}

func TestRunLogin_MissingEmail(t *testing.T) {
	setupTestEnvironment(t, "http://localhost:1")

	err := runLogin(context.Background(), "", "secret")
	if err == nil {
		t.Fatal("expected error when email is missing")
	}
}

func TestRunLogin_EnvironmentVariables(t *testing.T) {
	server := mockAPIServer(t, "env@example.com", "env-pass", "env-token", false)
	defer server.Close()

	setupTestEnvironment(t, server.URL)
	t.Setenv("SHOPDESK_EMAIL", "env@example.com")
	t.Setenv("SHOPDESK_PASSWORD", "env-pass")

	if err := runLogin(context.Background(), "", ""); err != nil {
		t.Fatalf("runLogin with env vars failed: %v", err)
	}
}

func TestRunLogin_NoServerConfigured(t *testing.T) {
	setupTestEnvironment(t, "")

	err := runLogin(context.Background(), "admin@example.com", "secret")
	if err == nil {
		t.Fatal("expected error when no server is configured")
	}
}

func TestRunLogout_ClearsSession(t *testing.T) {
	server := mockAPIServer(t, "admin@example.com", "secret", "test-token-123", false)
	defer server.Close()

	sessionPath := setupTestEnvironment(t, server.URL)

	if err := runLogin(context.Background(), "admin@example.com", "secret"); err != nil {
		t.Fatalf("runLogin failed: %v", err)
	}

	if err := runLogout(); err != nil {
		t.Fatalf("runLogout failed: %v", err)
	}

	if _, statErr := os.Stat(sessionPath); !os.IsNotExist(statErr) {
		t.Error("expected session file to be removed after logout")
	}
}

func TestRunLogout_NotSignedIn(t *testing.T) {
	setupTestEnvironment(t, "http://localhost:1")

	if err := runLogout(); err != nil {
		t.Fatalf("runLogout should succeed when not signed in: %v", err)
	}
}
