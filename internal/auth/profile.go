package auth

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/nsghealth/internal/common"
	"github.com/dmitrijs2005/nsghealth/internal/cryptox"
	"github.com/dmitrijs2005/nsghealth/internal/storage"
)

// profileFields maps the updatable profile keys to their setters. Email,
// password and role cannot be changed through it.
var profileFields = map[string]func(u *User, v string){
	"firstName":       func(u *User, v string) { u.FirstName = v },
	"lastName":        func(u *User, v string) { u.LastName = v },
	"phone":           func(u *User, v string) { u.Phone = v },
	"location":        func(u *User, v string) { u.Location = v },
	"licenseNumber":   func(u *User, v string) { u.LicenseNumber = v },
	"specialization":  func(u *User, v string) { u.Specialization = v },
	"pharmacyLicense": func(u *User, v string) { u.PharmacyLicense = v },
	"pharmacyName":    func(u *User, v string) { u.PharmacyName = v },
	"companyName":     func(u *User, v string) { u.CompanyName = v },
	"businessLicense": func(u *User, v string) { u.BusinessLicense = v },
}

// ProfileFields returns the keys accepted by UpdateProfile, sorted.
func ProfileFields() []string {
	keys := make([]string, 0, len(profileFields))
	for k := range profileFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UpdateProfile merges the allowed keys of updates into the user's record.
// Unknown keys are ignored. When the user is the session user, the session
// copy is refreshed and the remember flag kept.
func (m *Manager) UpdateProfile(ctx context.Context, userID string, updates map[string]string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		updated  User
		applied  []string
		refresh  *Session
		isActive = m.session != nil && m.session.User.ID == userID
	)

	err := m.store.Batch(ctx, func(ctx context.Context, s storage.Store) error {
		users, err := loadUsers(ctx, s)
		if err != nil {
			return err
		}
		i := findByID(users, userID)
		if i < 0 {
			return fmt.Errorf("%w: user not found", common.ErrNotFound)
		}

		for k, v := range updates {
			set, ok := profileFields[k]
			if !ok {
				continue
			}
			set(&users[i], strings.TrimSpace(v))
			applied = append(applied, k)
		}
		now := m.now()
		users[i].UpdatedAt = &now
		if err := saveUsers(ctx, s, users); err != nil {
			return err
		}
		updated = users[i]

		if isActive {
			sess := *m.session
			sess.User = updated.public()
			refresh = &sess
			return storage.SaveJSON(ctx, s, storage.KeySession, refresh)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if refresh != nil {
		m.session = refresh
	}
	sort.Strings(applied)
	m.logActivityLocked(ctx, "profile_update", map[string]any{"fields": applied})

	u := updated.public()
	return &u, nil
}

// ChangePassword replaces the password after checking the current one.
func (m *Manager) ChangePassword(ctx context.Context, userID string, current, next []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.store.Batch(ctx, func(ctx context.Context, s storage.Store) error {
		users, err := loadUsers(ctx, s)
		if err != nil {
			return err
		}
		i := findByID(users, userID)
		if i < 0 {
			return fmt.Errorf("%w: user not found", common.ErrNotFound)
		}
		if !cryptox.VerifyPassword(current, users[i].PasswordSalt, users[i].PasswordHash) {
			return fmt.Errorf("%w: current password is incorrect", common.ErrInvalidCredential)
		}
		if utf8.RuneCount(next) < minPasswordLength {
			return fmt.Errorf("%w: new password must be at least %d characters long", common.ErrValidation, minPasswordLength)
		}

		users[i].PasswordHash, users[i].PasswordSalt = cryptox.HashPassword(next)
		now := m.now()
		users[i].UpdatedAt = &now
		return saveUsers(ctx, s, users)
	})
	if err != nil {
		return err
	}

	m.logActivityLocked(ctx, "password_change", nil)
	return nil
}

// SetActive flips the account's active flag. Accounts are never deleted.
func (m *Manager) SetActive(ctx context.Context, userID string, active bool) error {
	return m.store.Batch(ctx, func(ctx context.Context, s storage.Store) error {
		users, err := loadUsers(ctx, s)
		if err != nil {
			return err
		}
		i := findByID(users, userID)
		if i < 0 {
			return fmt.Errorf("%w: user not found", common.ErrNotFound)
		}
		users[i].IsActive = active
		now := m.now()
		users[i].UpdatedAt = &now
		return saveUsers(ctx, s, users)
	})
}
