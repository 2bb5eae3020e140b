package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/nsghealth/internal/common"
	"github.com/dmitrijs2005/nsghealth/internal/cryptox"
	"github.com/dmitrijs2005/nsghealth/internal/logging"
	"github.com/dmitrijs2005/nsghealth/internal/storage"
	"github.com/dmitrijs2005/nsghealth/internal/validation"
	"github.com/google/uuid"
)

const minPasswordLength = 6

// Config controls session lifetime and start-up behaviour.
type Config struct {
	// Secret signs session tokens. When empty a random secret is generated
	// once and kept in the store.
	Secret               []byte
	SessionTTL           time.Duration
	RememberedSessionTTL time.Duration
	SeedDemoAccounts     bool
}

func (c Config) withDefaults() Config {
	if c.SessionTTL <= 0 {
		c.SessionTTL = 2 * time.Hour
	}
	if c.RememberedSessionTTL <= 0 {
		c.RememberedSessionTTL = 24 * time.Hour
	}
	return c
}

// Manager is the session/auth manager. It is safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	store   storage.Store
	cfg     Config
	logger  logging.Logger
	now     func() time.Time
	newID   func() string
	secret  []byte
	session *Session
}

// NewManager prepares the signing secret, seeds the demo accounts when
// configured and restores a still-valid session from the store.
func NewManager(ctx context.Context, store storage.Store, cfg Config, logger logging.Logger) (*Manager, error) {
	return newManager(ctx, store, cfg, logger, time.Now)
}

func newManager(ctx context.Context, store storage.Store, cfg Config, logger logging.Logger, now func() time.Time) (*Manager, error) {
	m := &Manager{
		store:  store,
		cfg:    cfg.withDefaults(),
		logger: logger.With("component", "auth"),
		now:    now,
		newID:  uuid.NewString,
	}

	if err := m.loadSecret(ctx); err != nil {
		return nil, err
	}

	if m.cfg.SeedDemoAccounts {
		if err := m.seedDemoAccounts(ctx); err != nil {
			m.logger.Error(ctx, "failed to seed demo accounts", "error", err)
		}
	}

	m.mu.Lock()
	m.validateSessionLocked(ctx)
	m.mu.Unlock()

	return m, nil
}

func (m *Manager) loadSecret(ctx context.Context) error {
	if len(m.cfg.Secret) > 0 {
		m.secret = m.cfg.Secret
		return nil
	}

	return m.store.Batch(ctx, func(ctx context.Context, s storage.Store) error {
		secret, err := s.Get(ctx, storage.KeySessionSecret)
		if err != nil {
			return err
		}
		if secret == nil {
			hex, err := common.MakeRandHexString(32)
			if err != nil {
				return fmt.Errorf("failed to generate session secret: %w", err)
			}
			secret = []byte(hex)
			if err := s.Set(ctx, storage.KeySessionSecret, secret); err != nil {
				return err
			}
		}
		m.secret = secret
		return nil
	})
}

func loadUsers(ctx context.Context, s storage.Store) ([]User, error) {
	var users []User
	if _, err := storage.LoadJSON(ctx, s, storage.KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func saveUsers(ctx context.Context, s storage.Store, users []User) error {
	return storage.SaveJSON(ctx, s, storage.KeyUsers, users)
}

func findByEmail(users []User, email string) int {
	email = normalizeEmail(email)
	for i := range users {
		if users[i].Email == email {
			return i
		}
	}
	return -1
}

func findByID(users []User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (m *Manager) maxAge(remember bool) time.Duration {
	if remember {
		return m.cfg.RememberedSessionTTL
	}
	return m.cfg.SessionTTL
}

// Reload re-reads the stored session and applies the expiry policy.
func (m *Manager) Reload(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validateSessionLocked(ctx)
}

func (m *Manager) validateSessionLocked(ctx context.Context) {
	m.session = nil

	var s Session
	found, err := storage.LoadJSON(ctx, m.store, storage.KeySession, &s)
	if err != nil {
		m.logger.Warn(ctx, "discarding unreadable session", "error", err)
		m.clearStoredSession(ctx)
		return
	}
	if !found {
		return
	}

	now := m.now()
	if !now.Before(s.LoginTime.Add(m.maxAge(s.RememberMe))) {
		m.logger.Info(ctx, "session expired", "user_id", s.User.ID, "login_time", s.LoginTime)
		m.clearStoredSession(ctx)
		return
	}

	userID, err := GetUserIDFromToken(s.Token, m.secret, now)
	if err != nil || userID != s.User.ID {
		m.logger.Warn(ctx, "discarding session with invalid token", "user_id", s.User.ID, "error", err)
		m.clearStoredSession(ctx)
		return
	}

	m.session = &s
}

func (m *Manager) clearStoredSession(ctx context.Context) {
	if err := m.store.Delete(ctx, storage.KeySession); err != nil {
		m.logger.Error(ctx, "failed to clear session", "error", err)
	}
}

func (m *Manager) newSession(u User, remember bool) (*Session, error) {
	loginTime := m.now()
	expires := loginTime.Add(m.maxAge(remember))
	token, err := GenerateToken(u.ID, m.secret, loginTime, expires)
	if err != nil {
		return nil, err
	}
	return &Session{
		User:       u.public(),
		LoginTime:  loginTime,
		RememberMe: remember,
		ExpiresAt:  expires,
		Token:      token,
	}, nil
}

func validateRegistration(r Registration, users []User) error {
	missing := validation.Missing(
		[2]string{"firstName", r.FirstName},
		[2]string{"lastName", r.LastName},
		[2]string{"email", r.Email},
		[2]string{"password", string(r.Password)},
		[2]string{"phone", r.Phone},
		[2]string{"location", r.Location},
		[2]string{"role", string(r.Role)},
	)
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", common.ErrValidation, strings.Join(missing, ", "))
	}

	if findByEmail(users, r.Email) >= 0 {
		return common.ErrEmailTaken
	}
	if !validation.Email(strings.TrimSpace(r.Email)) {
		return fmt.Errorf("%w: invalid email format", common.ErrValidation)
	}
	if utf8.RuneCount(r.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", common.ErrValidation, minPasswordLength)
	}

	switch r.Role {
	case RolePatient:
	case RolePractitioner:
		if strings.TrimSpace(r.LicenseNumber) == "" {
			return fmt.Errorf("%w: license number is required for practitioners", common.ErrValidation)
		}
	case RolePharmacist:
		if strings.TrimSpace(r.PharmacyLicense) == "" {
			return fmt.Errorf("%w: pharmacy license is required for pharmacists", common.ErrValidation)
		}
	case RoleMedRep:
		if strings.TrimSpace(r.CompanyName) == "" || strings.TrimSpace(r.BusinessLicense) == "" {
			return fmt.Errorf("%w: company name and business license are required for medical representatives", common.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown role %q", common.ErrValidation, r.Role)
	}
	return nil
}

// Register validates r and appends a new active account to the registry.
// The returned user carries no credentials.
func (m *Manager) Register(ctx context.Context, r Registration) (*User, error) {
	var created User

	err := m.store.Batch(ctx, func(ctx context.Context, s storage.Store) error {
		users, err := loadUsers(ctx, s)
		if err != nil {
			return err
		}
		if err := validateRegistration(r, users); err != nil {
			return err
		}

		hash, salt := cryptox.HashPassword(r.Password)
		created = User{
			ID:              m.newID(),
			Email:           normalizeEmail(r.Email),
			PasswordHash:    hash,
			PasswordSalt:    salt,
			FirstName:       strings.TrimSpace(r.FirstName),
			LastName:        strings.TrimSpace(r.LastName),
			Phone:           strings.TrimSpace(r.Phone),
			Location:        strings.TrimSpace(r.Location),
			Role:            r.Role,
			LicenseNumber:   r.LicenseNumber,
			Specialization:  r.Specialization,
			PharmacyLicense: r.PharmacyLicense,
			PharmacyName:    r.PharmacyName,
			CompanyName:     r.CompanyName,
			BusinessLicense: r.BusinessLicense,
			IsActive:        true,
			IsDemo:          false,
			CreatedAt:       m.now(),
		}

		return saveUsers(ctx, s, append(users, created))
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info(ctx, "user registered", "user_id", created.ID, "role", created.Role)
	u := created.public()
	return &u, nil
}

// Login checks credentials, stamps lastLogin and replaces any existing
// session.
func (m *Manager) Login(ctx context.Context, email string, password []byte, remember bool) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var session *Session

	err := m.store.Batch(ctx, func(ctx context.Context, s storage.Store) error {
		users, err := loadUsers(ctx, s)
		if err != nil {
			return err
		}

		i := findByEmail(users, email)
		if i < 0 {
			return fmt.Errorf("%w: user not found", common.ErrNotFound)
		}
		if !users[i].IsActive {
			return common.ErrAccountDisabled
		}
		if !cryptox.VerifyPassword(password, users[i].PasswordSalt, users[i].PasswordHash) {
			return fmt.Errorf("%w: invalid password", common.ErrInvalidCredential)
		}

		now := m.now()
		users[i].LastLogin = &now
		if err := saveUsers(ctx, s, users); err != nil {
			return err
		}

		session, err = m.newSession(users[i], remember)
		if err != nil {
			return err
		}
		return storage.SaveJSON(ctx, s, storage.KeySession, session)
	})
	if err != nil {
		m.logger.Info(ctx, "login failed", "email", normalizeEmail(email), "error", err)
		return nil, err
	}

	m.session = session
	m.logActivityLocked(ctx, "login", map[string]any{"rememberMe": remember})
	m.logger.Info(ctx, "login succeeded", "user_id", session.User.ID, "remember", remember)

	u := session.User
	return &u, nil
}

// Logout ends the current session. It is a no-op without one.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil
	}
	m.logActivityLocked(ctx, "logout", nil)

	if err := m.store.Delete(ctx, storage.KeySession); err != nil {
		return err
	}
	m.logger.Info(ctx, "logged out", "user_id", m.session.User.ID)
	m.session = nil
	return nil
}

// CurrentUser returns a copy of the session user, or nil.
func (m *Manager) CurrentUser() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	u := m.session.User
	return &u
}

// Session returns a copy of the active session, or nil.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	s := *m.session
	return &s
}

func (m *Manager) IsLoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// HasRole reports whether the session user has one of roles.
func (m *Manager) HasRole(roles ...Role) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return false
	}
	for _, r := range roles {
		if m.session.User.Role == r {
			return true
		}
	}
	return false
}

// UsersByRole lists the non-demo accounts with the given role.
func (m *Manager) UsersByRole(ctx context.Context, role Role) ([]User, error) {
	users, err := loadUsers(ctx, m.store)
	if err != nil {
		return nil, err
	}
	var out []User
	for _, u := range users {
		if u.Role == role && !u.IsDemo {
			out = append(out, u.public())
		}
	}
	return out, nil
}

// Lookup returns the account with the given email.
func (m *Manager) Lookup(ctx context.Context, email string) (*User, error) {
	users, err := loadUsers(ctx, m.store)
	if err != nil {
		return nil, err
	}
	i := findByEmail(users, email)
	if i < 0 {
		return nil, fmt.Errorf("%w: user not found", common.ErrNotFound)
	}
	u := users[i].public()
	return &u, nil
}

// IsAuthError reports whether err is one of the credential outcomes of
// Login, as opposed to a storage failure.
func IsAuthError(err error) bool {
	return errors.Is(err, common.ErrNotFound) ||
		errors.Is(err, common.ErrAccountDisabled) ||
		errors.Is(err, common.ErrInvalidCredential)
}
