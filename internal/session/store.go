package session

import (
	"github.com/rs/zerolog"

	"github.com/shopdesk-dev/shopdesk/internal/models"
)

// State is the token/user/authenticated triple representing login state.
// The three fields always change together: Authenticated is true exactly
// when both a token and a user are present.
type State struct {
	Token         string            `json:"token"`
	User          *models.AdminUser `json:"user"`
	Authenticated bool              `json:"is_authenticated"`
}

// TokenSource is the accessor the HTTP transport calls through to attach
// the bearer token to outgoing requests. The store is the single source
// of truth for the token; there is no second ambient copy.
type TokenSource interface {
	Token() (string, bool)
}

// Store holds the current session and persists it through a Backend.
//
// The store assumes a single logical writer and takes no internal lock:
// two overlapping writes resolve last-write-wins with no merge. This is
// a documented limitation of the session model, not a bug.
type Store struct {
	backend Backend
	log     zerolog.Logger
	state   State
}

// New creates a Store hydrated from the backend. A missing record starts
// the store anonymous; a read failure is logged and also starts it
// anonymous, since token freshness is the transport's responsibility.
func New(backend Backend, log zerolog.Logger) *Store {
	s := &Store{backend: backend, log: log}

	restored, err := backend.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to restore session, starting anonymous")
		return s
	}
	if restored != nil {
		// Re-hydrate the triple verbatim, no revalidation
		s.state = *restored
	}
	return s
}

// State returns a copy of the current triple
func (s *Store) State() State {
	return s.state
}

// Token returns the current token, implementing TokenSource
func (s *Store) Token() (string, bool) {
	if s.state.Token == "" {
		return "", false
	}
	return s.state.Token, true
}

// SetAuth unconditionally replaces the whole triple and persists it.
// Persistence is fire-and-forget: a storage failure is logged, never
// surfaced to the caller.
func (s *Store) SetAuth(token string, user *models.AdminUser) {
	s.state = State{
		Token:         token,
		User:          user,
		Authenticated: token != "" && user != nil,
	}
	if err := s.backend.Save(&s.state); err != nil {
		s.log.Error().Err(err).Msg("Failed to persist session")
	}
}

// ClearAuth resets the triple to the anonymous state and removes the
// persisted record
func (s *Store) ClearAuth() {
	s.state = State{}
	if err := s.backend.Clear(); err != nil {
		s.log.Error().Err(err).Msg("Failed to clear persisted session")
	}
}

// UserPatch is a partial admin update. Nil fields are left untouched.
type UserPatch struct {
	Email       *string
	Name        *string
	Role        *string
	Permissions *models.PermissionList
	IsActive    *bool
}

// UpdateUser shallow-merges the patch into the current user and persists
// the result. When no user is present this is a no-op: a patch never
// synthesizes a user.
func (s *Store) UpdateUser(patch UserPatch) {
	if s.state.User == nil {
		return
	}

	if patch.Email != nil {
		s.state.User.Email = *patch.Email
	}
	if patch.Name != nil {
		s.state.User.Name = *patch.Name
	}
	if patch.Role != nil {
		s.state.User.Role = *patch.Role
	}
	if patch.Permissions != nil {
		s.state.User.Permissions = *patch.Permissions
	}
	if patch.IsActive != nil {
		s.state.User.IsActive = *patch.IsActive
	}

	if err := s.backend.Save(&s.state); err != nil {
		s.log.Error().Err(err).Msg("Failed to persist session")
	}
}
