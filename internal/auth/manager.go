// Package auth composes the session, user and preferences stores into the
// sign-in state machine of a device: signed out, guest or signed in.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/internal/repositories"
	"github.com/anonto42/vaxtop/backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountExists       = errors.New("account already exists")
	ErrNotSignedIn         = errors.New("not signed in")
	ErrIdentityUnavailable = errors.New("identity provider not configured")
)

const (
	ProviderEmail    = "email"
	ProviderFirebase = "firebase"
)

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger.OrNop(l) }
}

// WithIdentityVerifier enables FirebaseLogin.
func WithIdentityVerifier(v IdentityVerifier) Option {
	return func(m *Manager) { m.verifier = v }
}

// Manager is the authentication facade of one device. Storage failures are
// logged and degrade to the signed-out state instead of failing the caller,
// except where a caller needs the result (a new session or account).
type Manager struct {
	mu sync.Mutex

	sessions repositories.SessionRepository
	prefs    repositories.PreferencesRepository
	users    repositories.UserRepository
	verifier IdentityVerifier
	logger   *zap.Logger

	state State
}

// NewManager creates a signed-out Manager. Call Restore to load persisted state.
func NewManager(sessions repositories.SessionRepository, prefs repositories.PreferencesRepository, users repositories.UserRepository, opts ...Option) *Manager {
	m := &Manager{
		sessions: sessions,
		prefs:    prefs,
		users:    users,
		logger:   zap.NewNop(),
		state:    signedOut(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a snapshot of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Manager) snapshot() State {
	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Restore rebuilds the state from storage. A session is honoured only when the
// stored user record belongs to the same account.
func (m *Manager) Restore(ctx context.Context) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.sessions.GetCurrentSession(ctx)
	if err != nil {
		m.logger.Warn("restore: reading session failed", zap.Error(err))
		session = nil
	}

	if session == nil {
		guest, err := m.users.IsGuest(ctx)
		if err != nil {
			m.logger.Warn("restore: reading guest marker failed", zap.Error(err))
		}
		if guest {
			m.state = State{Status: StatusGuest}
		} else {
			m.state = signedOut()
		}
		return m.snapshot()
	}

	user, err := m.users.GetCurrentUser(ctx)
	if err != nil {
		m.logger.Warn("restore: reading user failed", zap.Error(err))
		user = nil
	}
	switch {
	case user == nil:
		m.logger.Warn("restore: session without user record", zap.String("user_id", session.UserID))
		m.state = signedOut()
		return m.snapshot()
	case user.ID != session.UserID:
		m.logger.Warn("restore: session and user record disagree",
			zap.String("session_user_id", session.UserID),
			zap.String("user_id", user.ID))
		m.state = signedOut()
		return m.snapshot()
	}

	if _, err := m.prefs.InitializePreferences(ctx, user.ID); err != nil {
		m.logger.Warn("restore: initializing preferences failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	if _, err := m.sessions.UpdateLastActivity(ctx); err != nil {
		m.logger.Warn("restore: updating activity failed", zap.Error(err))
	}

	m.state = State{Status: StatusSignedIn, User: user}
	m.logger.Info("session restored", zap.String("user_id", user.ID))
	return m.snapshot()
}

// Login starts a session on this device for user.
func (m *Manager) Login(ctx context.Context, user models.User, email string) (*models.DeviceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.login(ctx, user, email)
}

func (m *Manager) login(ctx context.Context, user models.User, email string) (*models.DeviceSession, error) {
	if user.ID == "" {
		return nil, fmt.Errorf("login: %w", repositories.ErrInvalidFieldValue)
	}
	if email == "" {
		email = user.Email
	}

	session, err := m.sessions.CreateSession(ctx, user.ID, email)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := m.users.SaveCurrentUser(ctx, &user); err != nil {
		m.logger.Warn("login: saving user failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	if err := m.users.SaveUserEmail(ctx, email); err != nil {
		m.logger.Warn("login: saving email failed", zap.Error(err))
	}
	if _, err := m.prefs.InitializePreferences(ctx, user.ID); err != nil {
		m.logger.Warn("login: initializing preferences failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	m.state = State{Status: StatusSignedIn, User: &user}
	m.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("device_id", session.DeviceID))
	return session, nil
}

// EnterAsGuest ends any session on this device and stores the guest marker.
func (m *Manager) EnterAsGuest(ctx context.Context) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Status == StatusSignedIn {
		m.clearDevice(ctx)
	}
	if err := m.users.SetGuest(ctx); err != nil {
		m.logger.Warn("guest: saving marker failed", zap.Error(err))
	}
	m.state = State{Status: StatusGuest}
	return m.snapshot()
}

// Logout ends the session of this device only.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clearDevice(ctx)
	m.state = signedOut()
	m.logger.Info("logged out on this device")
}

// LogoutAllDevices forgets every recorded session.
func (m *Manager) LogoutAllDevices(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.sessions.ClearAllSessions(ctx); err != nil {
		m.logger.Warn("logout all: clearing sessions failed", zap.Error(err))
	}
	m.clearUser(ctx)
	m.state = signedOut()
	m.logger.Info("logged out on all devices")
}

func (m *Manager) clearDevice(ctx context.Context) {
	if err := m.sessions.ClearSession(ctx); err != nil {
		m.logger.Warn("logout: clearing session failed", zap.Error(err))
	}
	m.clearUser(ctx)
}

func (m *Manager) clearUser(ctx context.Context) {
	if err := m.users.ClearCurrentUser(ctx); err != nil {
		m.logger.Warn("logout: clearing user failed", zap.Error(err))
	}
	if err := m.users.ClearUserEmail(ctx); err != nil {
		m.logger.Warn("logout: clearing email failed", zap.Error(err))
	}
}

// UpdateUser replaces the signed-in user's record. Records of any other
// account are ignored; the result reports whether the update was applied.
func (m *Manager) UpdateUser(ctx context.Context, user models.User) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IsAuthenticated() || m.state.User.ID != user.ID {
		return false
	}
	if err := m.users.SaveCurrentUser(ctx, &user); err != nil {
		m.logger.Warn("update user: saving failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	if acct, err := m.users.GetAccountByEmail(ctx, m.state.User.Email); err == nil && acct.ID == user.ID {
		acct.User = user
		if err := m.users.UpdateAccount(ctx, acct); err != nil {
			m.logger.Warn("update user: syncing account failed", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	m.state.User = &user
	return true
}

// IsSessionValid reports whether this device holds a live session for the
// signed-in user.
func (m *Manager) IsSessionValid(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IsAuthenticated() {
		return false
	}
	session, err := m.sessions.GetCurrentSession(ctx)
	if err != nil {
		m.logger.Warn("reading session failed", zap.Error(err))
		return false
	}
	return session != nil && session.UserID == m.state.User.ID
}

// SessionInfo returns the current session of this device, or nil.
func (m *Manager) SessionInfo(ctx context.Context) *models.DeviceSession {
	session, err := m.sessions.GetCurrentSession(ctx)
	if err != nil {
		m.logger.Warn("reading session failed", zap.Error(err))
		return nil
	}
	return session
}

// Touch bumps the activity timestamp of the current session.
func (m *Manager) Touch(ctx context.Context) bool {
	ok, err := m.sessions.UpdateLastActivity(ctx)
	if err != nil {
		m.logger.Warn("updating activity failed", zap.Error(err))
		return false
	}
	return ok
}

// Devices lists the active sessions of the signed-in user.
func (m *Manager) Devices(ctx context.Context) ([]models.DeviceSession, error) {
	state := m.State()
	if !state.IsAuthenticated() {
		return nil, ErrNotSignedIn
	}
	return m.sessions.GetUserDevices(ctx, state.User.ID)
}

func (m *Manager) DeviceID(ctx context.Context) string {
	id, err := m.sessions.GetOrCreateDeviceID(ctx)
	if err != nil {
		m.logger.Warn("reading device id failed", zap.Error(err))
	}
	return id
}

// SignUp registers an email/password account and signs it in on this device.
func (m *Manager) SignUp(ctx context.Context, req models.SignupRequest) (*models.DeviceSession, *models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	account := &models.Account{
		User:         newUser(req.Name, req.Email),
		PasswordHash: string(hash),
		Provider:     ProviderEmail,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.users.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return nil, nil, ErrAccountExists
		}
		return nil, nil, fmt.Errorf("create account: %w", err)
	}
	session, err := m.login(ctx, account.User, account.Email)
	if err != nil {
		return nil, nil, err
	}
	user := account.User
	return session, &user, nil
}

// SignIn checks email and password against the account registry and signs
// the account in on this device.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*models.DeviceSession, *models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, err := m.users.GetAccountByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find account: %w", err)
	}
	if account.PasswordHash == "" {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := m.login(ctx, account.User, account.Email)
	if err != nil {
		return nil, nil, err
	}
	user := account.User
	return session, &user, nil
}

// FirebaseLogin verifies an identity-provider token, links or creates the
// matching account and signs it in on this device.
func (m *Manager) FirebaseLogin(ctx context.Context, idToken string) (*models.DeviceSession, *models.User, error) {
	if m.verifier == nil {
		return nil, nil, ErrIdentityUnavailable
	}
	identity, err := m.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if identity.Email == "" {
		return nil, nil, fmt.Errorf("%w: token carries no email", ErrInvalidCredentials)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	account, err := m.users.GetAccountByEmail(ctx, identity.Email)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		account = &models.Account{
			User:       newUser(identity.Name, identity.Email),
			Provider:   ProviderFirebase,
			ExternalID: identity.UID,
		}
		if identity.Picture != "" {
			account.ProfilePicture = identity.Picture
		}
		if err := m.users.CreateAccount(ctx, account); err != nil {
			return nil, nil, fmt.Errorf("create account: %w", err)
		}
	case err != nil:
		return nil, nil, fmt.Errorf("find account: %w", err)
	default:
		if account.ExternalID != identity.UID {
			account.ExternalID = identity.UID
			if err := m.users.UpdateAccount(ctx, account); err != nil {
				m.logger.Warn("firebase login: linking account failed", zap.String("user_id", account.ID), zap.Error(err))
			}
		}
	}

	session, err := m.login(ctx, account.User, account.Email)
	if err != nil {
		return nil, nil, err
	}
	user := account.User
	return session, &user, nil
}

func newUser(name, email string) models.User {
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	return models.User{
		ID:                  uuid.NewString(),
		Name:                name,
		Email:               email,
		Subscriptions:       []string{},
		ViewedNotifications: []string{},
		SavedProducts:       []string{},
	}
}
