// Package session holds the per-session state containers: the signed-in
// user, the cart mirror and the address book. Containers mirror the last
// successful fetch from the backend; every mutation goes through the API
// and resynchronizes by refetching the affected collection.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/plantora/storefront/internal/metrics"
	"github.com/plantora/storefront/internal/models"
	"github.com/plantora/storefront/internal/ports"
	"go.uber.org/zap"
)

// ErrLoginRequired is returned by mutators that need an authenticated
// user, before any network call is attempted.
var ErrLoginRequired = errors.New("please log in to continue")

// Store key prefixes. One key per concern, per session.
const (
	keyTokenPrefix    = "storefront:token:"
	keyUserPrefix     = "storefront:user:"
	keySelectedPrefix = "storefront:address-selected:"
)

// Manager resolves and creates sessions. Credentials are never global:
// each resolved Session carries its own token, so concurrent sessions
// with different users coexist on one Manager.
type Manager struct {
	auth      ports.AuthAPI
	cart      ports.CartAPI
	addresses ports.AddressAPI
	store     ports.SessionStore
	metrics   *metrics.AppMetrics
	logger    *zap.Logger
}

// NewManager creates a session manager. metrics may be nil.
func NewManager(auth ports.AuthAPI, cart ports.CartAPI, addresses ports.AddressAPI, store ports.SessionStore, m *metrics.AppMetrics, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		auth:      auth,
		cart:      cart,
		addresses: addresses,
		store:     store,
		metrics:   m,
		logger:    log,
	}
}

// Session is the per-request view of one browser session.
type Session struct {
	ID        string
	Token     string
	User      *models.User
	Cart      *Cart
	Addresses *AddressBook
}

// LoggedIn reports whether the session has an authenticated user.
func (s *Session) LoggedIn() bool {
	return s.User != nil
}

// Anonymous returns a detached anonymous session. Its containers are empty
// but non-nil: loads are no-ops and mutators fail with ErrLoginRequired, so
// callers outside the session middleware never hit a nil container.
func Anonymous() *Session {
	return &Session{
		Cart:      newCart(nil, "", 0, nil, zap.NewNop()),
		Addresses: newAddressBook(nil, nil, "", "", 0, zap.NewNop()),
	}
}

// Resolve loads the session for id. A stored credential is validated by a
// profile fetch; on failure the credential is cleared silently and an
// anonymous session is returned. No error surfaces to the caller.
func (m *Manager) Resolve(ctx context.Context, id string) *Session {
	if id == "" {
		return m.anonymous()
	}

	data, err := m.store.Get(ctx, keyTokenPrefix+id)
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			m.logger.Warn("session store read failed", zap.Error(err))
		}
		return m.anonymous()
	}
	// The store persists values as JSON, so the token arrives quoted.
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		token = string(data)
	}

	user, err := m.auth.Profile(ctx, token)
	m.metrics.RecordSessionVerified(ctx, err == nil)
	if err != nil {
		m.logger.Debug("stored credential failed verification, clearing session",
			zap.String("session_id", id), zap.Error(err))
		m.clear(ctx, id)
		return m.anonymous()
	}

	// Refresh the stored profile snapshot
	if err := m.store.Set(ctx, keyUserPrefix+id, user); err != nil {
		m.logger.Warn("failed to refresh user snapshot", zap.Error(err))
	}

	return m.build(id, token, user)
}

// Login authenticates and creates a fresh session.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	result, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return m.start(ctx, result, "login")
}

// Register creates an account and a fresh session.
func (m *Manager) Register(ctx context.Context, name, email, password string) (*Session, error) {
	result, err := m.auth.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return m.start(ctx, result, "register")
}

// Logout destroys the session's stored state.
func (m *Manager) Logout(ctx context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return nil
	}
	return m.clear(ctx, s.ID)
}

func (m *Manager) start(ctx context.Context, result *models.AuthResult, kind string) (*Session, error) {
	id := uuid.NewString()
	if err := m.store.Set(ctx, keyTokenPrefix+id, result.Token); err != nil {
		return nil, fmt.Errorf("failed to persist session token: %w", err)
	}
	if err := m.store.Set(ctx, keyUserPrefix+id, result.User); err != nil {
		return nil, fmt.Errorf("failed to persist user snapshot: %w", err)
	}
	m.metrics.RecordSessionStarted(ctx, kind)
	m.logger.Info("session started",
		zap.String("kind", kind),
		zap.Int64("user_id", result.User.ID),
		zap.String("role", result.User.Role),
	)
	user := result.User
	return m.build(id, result.Token, &user), nil
}

func (m *Manager) clear(ctx context.Context, id string) error {
	var errs []error
	for _, key := range []string{keyTokenPrefix + id, keyUserPrefix + id, keySelectedPrefix + id} {
		if err := m.store.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) anonymous() *Session {
	return m.build("", "", nil)
}

func (m *Manager) build(id, token string, user *models.User) *Session {
	var userID int64
	if user != nil {
		userID = user.ID
	}
	return &Session{
		ID:        id,
		Token:     token,
		User:      user,
		Cart:      newCart(m.cart, token, userID, m.metrics, m.logger),
		Addresses: newAddressBook(m.addresses, m.store, keySelectedPrefix+id, token, userID, m.logger),
	}
}

// Ping verifies the session store connection at startup.
func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}
