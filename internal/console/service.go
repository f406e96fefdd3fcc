package console

import (
	"context"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/shopdesk-dev/shopdesk/internal/access"
	"github.com/shopdesk-dev/shopdesk/internal/models"
	"github.com/shopdesk-dev/shopdesk/internal/session"
)

// Routes the service navigates between
const (
	LoginRoute   = "/login"
	LandingRoute = "/dashboard"
)

const (
	currentUserCacheKey = "auth:me"
	currentUserCacheTTL = 5 * time.Minute
)

// Phase is the service's position in the login state machine
type Phase int

const (
	PhaseAnonymous Phase = iota
	PhaseAuthenticating
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Service orchestrates login and logout against the admin API,
// translating transport responses into session store mutations and
// navigation side effects.
//
// Nothing guards overlapping Login/Logout calls: the design assumes at
// most one in flight, and the last store write wins. A logout completing
// while a login is pending can be overwritten when the login resolves.
type Service struct {
	client *Client
	store  *session.Store
	nav    Navigator
	cache  *gocache.Cache
	log    zerolog.Logger
	phase  Phase
}

// NewService wires the console service. The phase is recovered from the
// restored session so a process restart lands authenticated when a valid
// record was persisted.
func NewService(client *Client, store *session.Store, nav Navigator, log zerolog.Logger) *Service {
	s := &Service{
		client: client,
		store:  store,
		nav:    nav,
		cache:  gocache.New(currentUserCacheTTL, 2*currentUserCacheTTL),
		log:    log,
	}
	if store.State().Authenticated {
		s.phase = PhaseAuthenticated
	}
	return s
}

// Phase returns the current login phase
func (s *Service) Phase() Phase {
	return s.phase
}

// Store returns the session store backing this service
func (s *Service) Store() *session.Store {
	return s.store
}

// Login runs the login flow. On a verified success the whole session
// triple is replaced, the cached current-user query is dropped, and the
// shell navigates to the redirect continuation or the landing route. On
// any failure the store is left untouched and the error carries a
// user-visible message via FailureMessage; no retry is attempted.
func (s *Service) Login(ctx context.Context, email, password string) error {
	s.phase = PhaseAuthenticating

	token, wire, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.phase = PhaseAnonymous
		s.log.Warn().Err(err).Str("email", email).Msg("Login failed")
		return err
	}

	s.store.SetAuth(token, adminFromWire(wire))
	s.cache.Flush()
	s.phase = PhaseAuthenticated

	s.log.Info().Str("email", email).Msg("Logged in")
	s.nav.Navigate(s.continuation())
	return nil
}

// Logout clears the session and cached queries, then navigates to the
// login route unless the shell is already there. The current path+query
// is attached as the redirect continuation, except when one is already
// present: redirects never accumulate.
func (s *Service) Logout() {
	s.store.ClearAuth()
	s.cache.Flush()
	s.phase = PhaseAnonymous
	s.log.Info().Msg("Logged out")

	loc := s.nav.Location()
	if loc.Path == LoginRoute {
		return
	}

	target := url.URL{Path: LoginRoute}
	query := loc.Query()
	if existing := query.Get("redirect"); existing != "" {
		// Carry the existing continuation forward unchanged
		q := url.Values{}
		q.Set("redirect", existing)
		target.RawQuery = q.Encode()
	} else {
		current := loc.Path
		if loc.RawQuery != "" {
			current += "?" + loc.RawQuery
		}
		q := url.Values{}
		q.Set("redirect", current)
		target.RawQuery = q.Encode()
	}

	s.nav.Navigate(target.String())
}

// CurrentUser fetches the authenticated admin, serving repeated calls
// from a TTL cache. With no token the call fails immediately.
func (s *Service) CurrentUser(ctx context.Context) (*models.AdminUser, error) {
	if cached, ok := s.cache.Get(currentUserCacheKey); ok {
		return cached.(*models.AdminUser), nil
	}

	wire, err := s.client.Me(ctx)
	if err != nil {
		return nil, err
	}

	user := adminFromWire(wire)
	s.cache.Set(currentUserCacheKey, user, gocache.DefaultExpiration)
	s.cache.Set(snapshotCacheKey, snapshotFromWire(wire), gocache.DefaultExpiration)
	return user, nil
}

const snapshotCacheKey = "auth:me:snapshot"

// EffectiveUser reconciles the store's user against the cached profile
// snapshot. The result is recomputed on every call, never persisted.
func (s *Service) EffectiveUser() (access.EffectiveUser, bool) {
	var fallback *session.ProfileSnapshot
	if cached, ok := s.cache.Get(snapshotCacheKey); ok {
		fallback = cached.(*session.ProfileSnapshot)
	}
	return session.Resolve(s.store.State().User, fallback)
}

// Capabilities derives the capability set for the current effective
// user; an absent user yields the least-privilege set
func (s *Service) Capabilities() access.CapabilitySet {
	eu, ok := s.EffectiveUser()
	if !ok {
		return access.Derive(nil)
	}
	return access.Derive(&eu)
}

// continuation picks the post-login route: the redirect query parameter
// of the current location when present, otherwise the landing route
func (s *Service) continuation() string {
	loc := s.nav.Location()
	if redirect := loc.Query().Get("redirect"); redirect != "" {
		return redirect
	}
	return LandingRoute
}

// adminFromWire maps a wire admin into the session's user record.
// Missing permissions become an empty set and a missing isActive flag
// defaults to true.
func adminFromWire(w *WireAdmin) *models.AdminUser {
	user := &models.AdminUser{
		Email:       w.Email,
		Name:        w.Name,
		Role:        w.Role,
		Permissions: models.PermissionList{},
		IsActive:    true,
		LastLoginAt: w.LastLogin,
	}
	user.ID = w.ID
	if w.Permissions != nil {
		user.Permissions = models.PermissionList(w.Permissions)
	}
	if w.IsActive != nil {
		user.IsActive = *w.IsActive
	}
	if w.CreatedAt != nil {
		user.CreatedAt = *w.CreatedAt
	}
	if w.UpdatedAt != nil {
		user.UpdatedAt = *w.UpdatedAt
	}
	return user
}

// snapshotFromWire builds the resolver fallback from the wire admin,
// taking the wire access field as-is
func snapshotFromWire(w *WireAdmin) *session.ProfileSnapshot {
	return &session.ProfileSnapshot{
		Role:        w.Role,
		Access:      w.Access,
		Permissions: w.Permissions,
	}
}
