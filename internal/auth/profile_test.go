package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/nsghealth/internal/common"
	"github.com/dmitrijs2005/nsghealth/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loggedInManager(t *testing.T, remember bool) (*Manager, storage.Store, *fakeClock, *User) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	store := setupStore(t)
	m := newTestManager(t, store, clock, Config{})
	ctx := context.Background()

	_, err := m.Register(ctx, patientRegistration("a@b.com"))
	require.NoError(t, err)
	u, err := m.Login(ctx, "a@b.com", []byte("secret1"), remember)
	require.NoError(t, err)
	return m, store, clock, u
}

func TestUpdateProfile_AllowListEnforced(t *testing.T) {
	m, store, clock, u := loggedInManager(t, true)
	ctx := context.Background()
	clock.advance(time.Minute)

	updated, err := m.UpdateProfile(ctx, u.ID, map[string]string{
		"phone":    "+254711111111",
		"location": "Mombasa",
		"email":    "evil@b.com",
		"role":     "practitioner",
		"isDemo":   "true",
	})
	require.NoError(t, err)

	assert.Equal(t, "+254711111111", updated.Phone)
	assert.Equal(t, "Mombasa", updated.Location)
	assert.Equal(t, "a@b.com", updated.Email)
	assert.Equal(t, RolePatient, updated.Role)
	assert.False(t, updated.IsDemo)
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, clock.t, *updated.UpdatedAt)

	stored, err := loadUsers(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", stored[0].Email)
	assert.Equal(t, RolePatient, stored[0].Role)
}

func TestUpdateProfile_RefreshesSession(t *testing.T) {
	m, store, _, u := loggedInManager(t, true)
	ctx := context.Background()
	loginTime := m.Session().LoginTime

	_, err := m.UpdateProfile(ctx, u.ID, map[string]string{"firstName": "Wanjiru"})
	require.NoError(t, err)

	s := m.Session()
	assert.Equal(t, "Wanjiru", s.User.FirstName)
	assert.True(t, s.RememberMe)
	assert.Equal(t, loginTime, s.LoginTime)

	var persisted Session
	_, err = storage.LoadJSON(ctx, store, storage.KeySession, &persisted)
	require.NoError(t, err)
	assert.Equal(t, "Wanjiru", persisted.User.FirstName)
	assert.Nil(t, persisted.User.PasswordHash)
}

func TestUpdateProfile_OtherUserLeavesSessionAlone(t *testing.T) {
	m, _, _, _ := loggedInManager(t, false)
	ctx := context.Background()

	other, err := m.Register(ctx, patientRegistration("c@d.com"))
	require.NoError(t, err)

	_, err = m.UpdateProfile(ctx, other.ID, map[string]string{"firstName": "Other"})
	require.NoError(t, err)
	assert.Equal(t, "Amina", m.CurrentUser().FirstName)
}

func TestUpdateProfile_NotFound(t *testing.T) {
	m, _, _, _ := loggedInManager(t, false)

	_, err := m.UpdateProfile(context.Background(), "missing", map[string]string{"phone": "1"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestChangePassword(t *testing.T) {
	m, store, _, u := loggedInManager(t, false)
	ctx := context.Background()

	before, err := loadUsers(ctx, store)
	require.NoError(t, err)

	err = m.ChangePassword(ctx, u.ID, []byte("wrong"), []byte("newsecret"))
	require.ErrorIs(t, err, common.ErrInvalidCredential)
	after, err := loadUsers(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, before[0].PasswordHash, after[0].PasswordHash, "stored password must be unchanged")

	err = m.ChangePassword(ctx, u.ID, []byte("secret1"), []byte("123"))
	require.ErrorIs(t, err, common.ErrValidation)

	err = m.ChangePassword(ctx, "missing", []byte("secret1"), []byte("newsecret"))
	require.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, m.ChangePassword(ctx, u.ID, []byte("secret1"), []byte("newsecret")))

	_, err = m.Login(ctx, "a@b.com", []byte("secret1"), false)
	require.ErrorIs(t, err, common.ErrInvalidCredential)
	_, err = m.Login(ctx, "a@b.com", []byte("newsecret"), false)
	require.NoError(t, err)
}

func TestProfileFields(t *testing.T) {
	fields := ProfileFields()
	assert.Len(t, fields, 10)
	assert.NotContains(t, fields, "email")
	assert.NotContains(t, fields, "role")
	assert.NotContains(t, fields, "password")
}
