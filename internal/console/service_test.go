package console

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"

	"github.com/shopdesk-dev/shopdesk/internal/access"
	"github.com/shopdesk-dev/shopdesk/internal/session"
)

// memBackend is an in-memory session backend for testing
type memBackend struct {
	state *State
}

// State alias keeps the mock short
type State = session.State

func (m *memBackend) Load() (*State, error) { return m.state, nil }
func (m *memBackend) Save(state *State) error {
	copied := *state
	m.state = &copied
	return nil
}
func (m *memBackend) Clear() error { m.state = nil; return nil }

// recordingNavigator captures navigation side effects
type recordingNavigator struct {
	current url.URL
	visited []string
}

func (n *recordingNavigator) Location() url.URL { return n.current }
func (n *recordingNavigator) Navigate(path string) {
	n.visited = append(n.visited, path)
	parsed, _ := url.Parse(path)
	n.current = *parsed
}

func (n *recordingNavigator) last(t *testing.T) string {
	t.Helper()
	if len(n.visited) == 0 {
		t.Fatal("expected a navigation")
	}
	return n.visited[len(n.visited)-1]
}

// mockAPIServer serves the admin API envelopes for testing
func mockAPIServer(t *testing.T, email, password, token string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var req struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("failed to decode request: %v", err)
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if req.Email != email || req.Password != password {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"status":  "error",
					"message": "bad credentials",
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "success",
				"data": map[string]interface{}{
					"token": token,
					"admin": map[string]interface{}{
						"_id":   "1",
						"email": req.Email,
						"name":  "A",
						"role":  "superadmin",
					},
				},
			})
		case "/api/auth/me":
			if r.Header.Get("Authorization") != "Bearer "+token {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"status":  "error",
					"message": "invalid token",
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "success",
				"data": map[string]interface{}{
					"admin": map[string]interface{}{
						"_id":    "1",
						"email":  email,
						"name":   "A",
						"role":   "superadmin",
						"access": "admin",
					},
				},
			})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestService(t *testing.T, baseURL, startPath string) (*Service, *session.Store, *recordingNavigator) {
	t.Helper()

	store := session.New(&memBackend{}, zerolog.Nop())
	nav := &recordingNavigator{}
	if startPath != "" {
		parsed, err := url.Parse(startPath)
		if err != nil {
			t.Fatalf("bad start path: %v", err)
		}
		nav.current = *parsed
	}
	svc := NewService(NewClient(baseURL, store), store, nav, zerolog.Nop())
	return svc, store, nav
}

func TestService_SuccessfulLogin(t *testing.T) {
	server := mockAPIServer(t, "a@b.com", "x", "T1")
	defer server.Close()

	svc, store, nav := newTestService(t, server.URL, "/")

	if err := svc.Login(context.Background(), "a@b.com", "x"); err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}

	state := store.State()
	if state.Token != "T1" {
		t.Errorf("expected token T1, got %q", state.Token)
	}
	if !state.Authenticated {
		t.Error("expected authenticated")
	}
	if state.User == nil || state.User.Role != "superadmin" {
		t.Errorf("expected superadmin user, got %+v", state.User)
	}
	// Missing wire fields take their defaults
	if state.User.Permissions == nil || len(state.User.Permissions) != 0 {
		t.Errorf("expected empty permission set, got %v", state.User.Permissions)
	}
	if !state.User.IsActive {
		t.Error("expected isActive defaulted to true")
	}

	if svc.Phase() != PhaseAuthenticated {
		t.Errorf("expected authenticated phase, got %v", svc.Phase())
	}
	if nav.last(t) != LandingRoute {
		t.Errorf("expected navigation to landing route, got %q", nav.last(t))
	}

	if !svc.Capabilities().Has(access.CapManageSettlement) {
		t.Error("expected superadmin to manage settlement")
	}
}

func TestService_LoginHonorsRedirectParam(t *testing.T) {
	server := mockAPIServer(t, "a@b.com", "x", "T1")
	defer server.Close()

	svc, _, nav := newTestService(t, server.URL, "/login?redirect=%2Forders%3Fpage%3D2")

	if err := svc.Login(context.Background(), "a@b.com", "x"); err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}

	if nav.last(t) != "/orders?page=2" {
		t.Errorf("expected navigation to redirect target, got %q", nav.last(t))
	}
}

func TestService_RejectedLoginLeavesStoreUntouched(t *testing.T) {
	server := mockAPIServer(t, "a@b.com", "x", "T1")
	defer server.Close()

	svc, store, nav := newTestService(t, server.URL, "/login")

	err := svc.Login(context.Background(), "a@b.com", "wrong")
	if !errors.Is(err, ErrAuthRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if got := FailureMessage(err); got != "bad credentials" {
		t.Errorf("expected server message surfaced, got %q", got)
	}

	state := store.State()
	if state.Token != "" || state.User != nil || state.Authenticated {
		t.Errorf("expected session untouched, got %+v", state)
	}
	if svc.Phase() != PhaseAnonymous {
		t.Errorf("expected anonymous phase, got %v", svc.Phase())
	}
	if len(nav.visited) != 0 {
		t.Errorf("expected no navigation on failure, got %v", nav.visited)
	}
}

func TestService_MalformedSuccessLeavesStoreUntouched(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// success status but no token/admin payload
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "success"})
	}))
	defer server.Close()

	svc, store, _ := newTestService(t, server.URL, "/login")

	err := svc.Login(context.Background(), "a@b.com", "x")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected malformed response error, got %v", err)
	}
	if store.State().Authenticated {
		t.Error("expected session untouched")
	}
}

func TestService_TransportFailure(t *testing.T) {
	server := httptest.NewServer(nil)
	server.Close() // connection refused

	svc, store, _ := newTestService(t, server.URL, "/login")

	err := svc.Login(context.Background(), "a@b.com", "x")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport failure, got %v", err)
	}
	if store.State().Authenticated {
		t.Error("expected session untouched")
	}
}

func TestService_LogoutClearsAndRedirects(t *testing.T) {
	server := mockAPIServer(t, "a@b.com", "x", "T1")
	defer server.Close()

	svc, store, nav := newTestService(t, server.URL, "/")
	if err := svc.Login(context.Background(), "a@b.com", "x"); err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}

	// Simulate browsing away from the landing route
	nav.Navigate("/orders?page=2")

	svc.Logout()

	state := store.State()
	if state.Token != "" || state.User != nil || state.Authenticated {
		t.Errorf("expected cleared session, got %+v", state)
	}
	if svc.Phase() != PhaseAnonymous {
		t.Errorf("expected anonymous phase, got %v", svc.Phase())
	}

	target, err := url.Parse(nav.last(t))
	if err != nil {
		t.Fatalf("unparsable navigation target: %v", err)
	}
	if target.Path != LoginRoute {
		t.Errorf("expected login route, got %q", target.Path)
	}
	if got := target.Query().Get("redirect"); got != "/orders?page=2" {
		t.Errorf("expected redirect to current path+query, got %q", got)
	}
}

func TestService_LogoutOnLoginRouteDoesNotNavigate(t *testing.T) {
	svc, _, nav := newTestService(t, "http://unused", "/login")

	svc.Logout()

	if len(nav.visited) != 0 {
		t.Errorf("expected no navigation, got %v", nav.visited)
	}
}

func TestService_LogoutDoesNotAccumulateRedirects(t *testing.T) {
	svc, _, nav := newTestService(t, "http://unused", "/orders?redirect=%2Fproducts")

	svc.Logout()

	target, err := url.Parse(nav.last(t))
	if err != nil {
		t.Fatalf("unparsable navigation target: %v", err)
	}
	if got := target.Query().Get("redirect"); got != "/products" {
		t.Errorf("expected existing redirect carried forward, got %q", got)
	}
}

func TestService_CurrentUserCached(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"data": map[string]interface{}{
				"admin": map[string]interface{}{
					"_id": "1", "email": "a@b.com", "name": "A", "role": "superadmin",
				},
			},
		})
	}))
	defer server.Close()

	store := session.New(&memBackend{state: &State{Token: "T1", Authenticated: true}}, zerolog.Nop())
	svc := NewService(NewClient(server.URL, store), store, &recordingNavigator{}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		if _, err := svc.CurrentUser(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected one upstream fetch, got %d", calls)
	}
}

func TestService_CurrentUserWithoutToken(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	svc, _, _ := newTestService(t, server.URL, "/")

	_, err := svc.CurrentUser(context.Background())
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no HTTP call without a token, got %d", calls)
	}
}

func TestService_EffectiveUserFallsBackToSnapshot(t *testing.T) {
	server := mockAPIServer(t, "a@b.com", "x", "T1")
	defer server.Close()

	store := session.New(&memBackend{state: &State{Token: "T1", Authenticated: true}}, zerolog.Nop())
	svc := NewService(NewClient(server.URL, store), store, &recordingNavigator{}, zerolog.Nop())

	// Prime the snapshot cache, then drop the store user: the cached
	// snapshot becomes the only source.
	if _, err := svc.CurrentUser(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	eu, ok := svc.EffectiveUser()
	if !ok {
		t.Fatal("expected effective user from snapshot")
	}
	if eu.Role != access.RoleSuperAdmin || eu.Access != access.LevelAdmin {
		t.Errorf("unexpected effective user %+v", eu)
	}
}

func TestService_CapabilitiesForAnonymous(t *testing.T) {
	svc, _, _ := newTestService(t, "http://unused", "/")

	caps := svc.Capabilities()
	if !caps.Has(access.CapViewDashboard) {
		t.Error("expected dashboard always visible")
	}
	if caps.Has(access.CapViewProducts) || caps.Has(access.CapSuperAdmin) {
		t.Error("expected least privilege for anonymous")
	}
}
