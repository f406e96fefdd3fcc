package testhelpers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/shopdesk-dev/shopdesk/internal/config"
	"github.com/shopdesk-dev/shopdesk/internal/server"
)

// TestServer wraps an in-process API server with helper methods
type TestServer struct {
	URL      string
	JWTToken string // Set after setup/login

	httpServer *httptest.Server
	client     *http.Client
}

// StartTestServer boots the API against a throwaway SQLite database
func StartTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := &config.Config{
		Server:   config.ServerConfig{ListenAddress: ":0"},
		Database: config.DatabaseConfig{URL: filepath.Join(t.TempDir(), "shopdesk-test.sqlite")},
		Redis:    config.RedisConfig{Address: "localhost:1"}, // No worker in tests; enqueues fail softly
		Logging:  config.LoggingConfig{Level: "warn", Format: "console"},
	}

	srv, err := server.New(cfg, zerolog.Nop(), "test")
	require.NoError(t, err, "Failed to create server")

	httpServer := httptest.NewServer(srv.Router())
	t.Cleanup(httpServer.Close)

	return &TestServer{
		URL:        httpServer.URL,
		httpServer: httpServer,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// APICall makes an authenticated API request and returns the parsed JSON body.
// It fails the test on transport errors; HTTP status checking is left to the
// caller via the returned status code.
func (s *TestServer) APICall(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.URL+path, reqBody)
	require.NoError(t, err, "Failed to create request")

	req.Header.Set("Content-Type", "application/json")
	if s.JWTToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.JWTToken))
	}

	resp, err := s.client.Do(req)
	require.NoError(t, err, "Request failed: %s %s", method, path)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")

	var parsed map[string]interface{}
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &parsed), "Failed to parse response: %s", string(data))
	}

	return resp.StatusCode, parsed
}

// Data extracts the envelope's data object, failing if it is absent
func Data(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()

	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "Response should contain a data object: %+v", resp)
	return data
}
