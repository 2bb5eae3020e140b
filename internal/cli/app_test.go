package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/nsghealth/internal/auth"
	"github.com/dmitrijs2005/nsghealth/internal/common"
	"github.com/dmitrijs2005/nsghealth/internal/config"
	"github.com/dmitrijs2005/nsghealth/internal/dashboard"
	"github.com/dmitrijs2005/nsghealth/internal/events"
	"github.com/dmitrijs2005/nsghealth/internal/geo"
	"github.com/dmitrijs2005/nsghealth/internal/logging"
	"github.com/dmitrijs2005/nsghealth/internal/sos"
	"github.com/dmitrijs2005/nsghealth/internal/storage"
)

func TestIsLoggedIn(t *testing.T) {
	a, fa, _, _ := newTestApp(t, "")
	if a.isLoggedIn() {
		t.Fatalf("expected isLoggedIn() == false without a user")
	}
	fa.user = &auth.User{ID: "u1"}
	if !a.isLoggedIn() {
		t.Fatalf("expected isLoggedIn() == true with a user")
	}
}

func TestReport_Hints(t *testing.T) {
	a, _, _, out := newTestApp(t, "")

	assert.NoError(t, a.report(context.Background(), nil))
	assert.Empty(t, out.String())

	err := a.report(context.Background(), common.ErrForbidden)
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.Contains(t, out.String(), "error: unauthorized\n(your account role cannot use this command)\n")

	out.Reset()
	_ = a.report(context.Background(), errors.New("boom"))
	assert.Equal(t, "error: boom\n", out.String())
}

func TestDeviceLocation(t *testing.T) {
	loc, w, err := deviceLocation("")
	require.NoError(t, err)
	assert.Nil(t, w)
	_, err = loc.CurrentPosition(context.Background(), geo.Options{})
	assert.ErrorIs(t, err, common.ErrGeolocationUnavailable)

	loc, w, err = deviceLocation("-1.2921,36.8219")
	require.NoError(t, err)
	assert.NotNil(t, w)
	got, err := loc.CurrentPosition(context.Background(), geo.Options{})
	require.NoError(t, err)
	assert.InDelta(t, -1.2921, got.Latitude, 1e-9)

	_, _, err = deviceLocation("north")
	assert.Error(t, err)
}

func TestSubscribe_AlertsRespondersAndSyncs(t *testing.T) {
	db, err := storage.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := storage.NewSQLiteStore(db)

	a, fa, fe, out := newTestApp(t, "")
	a.syncer = dashboard.NewSyncer(store, a.bus, logging.Discard(), time.Minute)
	stop := a.subscribe()

	ctx := context.Background()
	r := sos.Request{ID: "emergency_1", Type: sos.TypeMedical, Status: sos.StatusActive, Priority: sos.PriorityCritical}

	a.bus.Publish(ctx, events.EmergencyAlert, r)
	a.bus.Publish(ctx, events.DataSync, dashboard.SyncTick{Type: "appointments"})
	assert.Empty(t, out.String())
	assert.Empty(t, fe.calls)
	apptSync, err := storage.Marker(ctx, store, storage.KeyLastAppointmentSync)
	require.NoError(t, err)
	assert.True(t, apptSync.IsZero(), "nothing syncs while signed out")

	fa.user = &auth.User{ID: "u2", Role: auth.RolePractitioner}
	a.bus.Publish(ctx, events.EmergencyAlert, r)
	assert.Contains(t, out.String(), "[alert] Medical Emergency active (critical) emergency_1")

	a.bus.Publish(ctx, events.DataSync, dashboard.SyncTick{Type: "appointments"})
	assert.Equal(t, []string{"history"}, fe.calls)
	synced, err := storage.Marker(ctx, store, storage.KeyLastEmergencySync)
	require.NoError(t, err)
	assert.False(t, synced.IsZero())
	synced, err = storage.Marker(ctx, store, storage.KeyLastAppointmentSync)
	require.NoError(t, err)
	assert.False(t, synced.IsZero())

	stop()
	assert.Zero(t, a.bus.Subscribers(events.EmergencyAlert))
	assert.Zero(t, a.bus.Subscribers(events.DataSync))
}

func TestNewApp_WiresServices(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabasePath = filepath.Join(t.TempDir(), "data", "nsg.db")
	c.LogBackend = "slog"
	c.LogLevel = "error"
	c.DeviceLocation = "-1.2921,36.8219"

	a, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	defer a.Close()

	assert.False(t, a.isLoggedIn())
	_, ok := a.emergencies.(*sos.Machine)
	assert.True(t, ok)
	require.NoError(t, a.emergencies.StartLocationTracking(context.Background()))
}

func TestAppointments_SeedsAndLists(t *testing.T) {
	db, err := storage.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := storage.NewSQLiteStore(db)

	a, fa, _, out := newTestApp(t, "")
	a.syncer = dashboard.NewSyncer(store, a.bus, logging.Discard(), time.Minute)

	err = a.Appointments(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthenticated)

	fa.user = &auth.User{ID: "u1", Role: auth.RolePatient}
	out.Reset()
	require.NoError(t, a.Appointments(context.Background()))
	assert.Equal(t, 8, strings.Count(out.String(), " min\n"))
}
