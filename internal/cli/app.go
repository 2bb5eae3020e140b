package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/nsghealth/internal/auth"
	"github.com/dmitrijs2005/nsghealth/internal/common"
	"github.com/dmitrijs2005/nsghealth/internal/config"
	"github.com/dmitrijs2005/nsghealth/internal/dashboard"
	"github.com/dmitrijs2005/nsghealth/internal/events"
	"github.com/dmitrijs2005/nsghealth/internal/filex"
	"github.com/dmitrijs2005/nsghealth/internal/geo"
	"github.com/dmitrijs2005/nsghealth/internal/logging"
	"github.com/dmitrijs2005/nsghealth/internal/notify"
	"github.com/dmitrijs2005/nsghealth/internal/sos"
	"github.com/dmitrijs2005/nsghealth/internal/storage"
)

// AuthService is the part of auth.Manager the CLI uses.
type AuthService interface {
	Register(ctx context.Context, r auth.Registration) (*auth.User, error)
	Login(ctx context.Context, email string, password []byte, remember bool) (*auth.User, error)
	Logout(ctx context.Context) error
	CurrentUser() *auth.User
	Session() *auth.Session
	IsLoggedIn() bool
	AuthorizePage(page string) error
	UpdateProfile(ctx context.Context, userID string, updates map[string]string) (*auth.User, error)
	ChangePassword(ctx context.Context, userID string, current, next []byte) error
	Activities(ctx context.Context, userID string, limit int) ([]auth.Activity, error)
	LogActivity(ctx context.Context, action string, details map[string]any)
}

// EmergencyService is the part of sos.Machine the CLI uses.
type EmergencyService interface {
	Initiate(ctx context.Context, preselect sos.EmergencyType) error
	InitiateQuick(ctx context.Context) error
	SelectType(ctx context.Context, t sos.EmergencyType) error
	Back(ctx context.Context) error
	SubmitDetails(ctx context.Context, d sos.Details) (*sos.Request, error)
	SubmitQuick(ctx context.Context, q sos.QuickDetails) (*sos.Request, error)
	AwaitProviders(ctx context.Context) ([]sos.Provider, error)
	AwaitDispatch(ctx context.Context) (*sos.Request, error)
	SelectProvider(ctx context.Context, id string) (bool, error)
	Cancel(ctx context.Context) error
	Close(ctx context.Context)
	Current() *sos.Request
	History(ctx context.Context) ([]sos.Request, error)
	Active(ctx context.Context) ([]sos.Request, error)
	ForRequester(ctx context.Context, requesterID string) ([]sos.Request, error)
	Complete(ctx context.Context, id string) (*sos.Request, error)
	ShareURL() (string, bool)
	StartLocationTracking(ctx context.Context) error
	Shutdown()
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	authService AuthService
	emergencies EmergencyService
	bus         *events.Bus
	syncer      *dashboard.Syncer
	reader      *bufio.Reader
	out         io.Writer
}

// NewApp opens the database and wires every service from c.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, c.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}

	if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		logger.Error(ctx, "error creating database directory", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	db, err := storage.Open(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}
	store := storage.NewSQLiteStore(db)

	am, err := auth.NewManager(ctx, store, auth.Config{
		Secret:               []byte(c.SessionSecret),
		SessionTTL:           c.SessionTTL,
		RememberedSessionTTL: c.RememberedSessionTTL,
		SeedDemoAccounts:     c.SeedDemoAccounts,
	}, logger.With("component", "auth"))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	locator, watcher, err := deviceLocation(c.DeviceLocation)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	out := io.Writer(os.Stdout)
	bus := events.NewBus()
	machineCfg := sos.DefaultConfig()
	machineCfg.GeolocationTimeout = c.GeolocationTimeout
	machineCfg.ProviderSearchDelay = c.ProviderSearchDelay
	machineCfg.QuickDispatchDelay = c.QuickDispatchDelay
	machineCfg.ConfirmationTimeout = c.ConfirmationTimeout

	machine := sos.NewMachine(sos.Deps{
		Store:     store,
		Directory: sos.NewStaticDirectory(),
		Locator:   locator,
		Watcher:   watcher,
		Bus:       bus,
		Notifier:  notify.NewConsole(out),
		Logger:    logger.With("component", "sos"),
	}, machineCfg)

	a := &App{
		config:      c,
		logger:      logger,
		db:          db,
		authService: am,
		emergencies: machine,
		bus:         bus,
		syncer:      dashboard.NewSyncer(store, bus, logger.With("component", "sync"), c.SyncInterval),
		reader:      bufio.NewReader(os.Stdin),
		out:         out,
	}
	return a, nil
}

// deviceLocation turns the configured "lat,lon" into a fixed-position
// device. An empty value models a device without geolocation.
func deviceLocation(s string) (geo.Locator, geo.Watcher, error) {
	if s == "" {
		return geo.Unavailable{}, nil, nil
	}
	lat, lon, err := geo.ParseCoordinates(s)
	if err != nil {
		return nil, nil, err
	}
	dev := geo.NewStatic(lat, lon, 20)
	return dev, dev, nil
}

// Run starts the REPL and releases every resource once it returns or a
// termination signal arrives.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.initSignalHandler(cancel)

	defer a.Close()
	a.Root(ctx)
}

func (a *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (a *App) Close() {
	if a.emergencies != nil {
		a.emergencies.Shutdown()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(context.Background(), "failed to close database", "error", err)
		}
	}
	if s, ok := a.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}

func (a *App) isLoggedIn() bool {
	return a.authService.IsLoggedIn()
}

// canSeeEmergencies reports whether the signed-in user may view every
// request rather than only their own.
func (a *App) canSeeEmergencies() bool {
	return a.authService.AuthorizePage("emergencies") == nil
}

// subscribe prints live alerts to responders and refreshes dashboard data
// on every data-sync tick. The returned func removes both handlers.
func (a *App) subscribe() func() {
	stopAlerts := a.bus.Subscribe(events.EmergencyAlert, func(ctx context.Context, e events.Event) {
		r, ok := e.Payload.(sos.Request)
		if !ok || !a.canSeeEmergencies() {
			return
		}
		fmt.Fprintf(a.out, "\n[alert] %s %s (%s) %s\n", r.Type.Label(), r.Status, r.Priority, r.ID)
	})
	stopSync := a.bus.Subscribe(events.DataSync, func(ctx context.Context, e events.Event) {
		u := a.authService.CurrentUser()
		if u == nil {
			return
		}
		if list, err := a.syncer.SyncAppointments(ctx); err != nil {
			a.logger.Warn(ctx, "appointment sync failed", "error", err)
		} else {
			a.logger.Debug(ctx, "appointments synced", "count", len(list))
		}
		if list, err := a.syncer.SyncActivities(ctx, a.authService, u.ID); err != nil {
			a.logger.Warn(ctx, "activity sync failed", "error", err)
		} else {
			a.logger.Debug(ctx, "activities synced", "count", len(list))
		}
		if !a.canSeeEmergencies() {
			return
		}
		list, err := a.syncer.SyncEmergencies(ctx, a.emergencies)
		if err != nil {
			a.logger.Warn(ctx, "emergency sync failed", "error", err)
			return
		}
		a.logger.Debug(ctx, "emergencies synced", "count", len(list))
	})
	return func() {
		stopAlerts()
		stopSync()
	}
}

// report prints a command failure. Commands never end the REPL.
func (a *App) report(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	a.logger.Debug(ctx, "command failed", "error", err)
	fmt.Fprintln(a.out, "error:", err)
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		fmt.Fprintln(a.out, "(sign in with 'login' to continue)")
	case errors.Is(err, common.ErrForbidden):
		fmt.Fprintln(a.out, "(your account role cannot use this command)")
	}
	return err
}
