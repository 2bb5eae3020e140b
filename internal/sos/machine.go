package sos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/nsghealth/internal/common"
	"github.com/dmitrijs2005/nsghealth/internal/events"
	"github.com/dmitrijs2005/nsghealth/internal/geo"
	"github.com/dmitrijs2005/nsghealth/internal/logging"
	"github.com/dmitrijs2005/nsghealth/internal/notify"
	"github.com/dmitrijs2005/nsghealth/internal/storage"
	"github.com/dmitrijs2005/nsghealth/internal/validation"
)

// EmergencyNumber is the national emergency line offered as a last resort.
const EmergencyNumber = "999"

// State is the step the current flow is in.
type State string

const (
	StateIdle                State = "idle"
	StateLocating            State = "locating"
	StateSelectingType       State = "selecting_type"
	StateCapturingDetails    State = "capturing_details"
	StateSearchingProviders  State = "searching_providers"
	StatePresentingProviders State = "presenting_providers"
	StateConfirmed           State = "confirmed"
	StateCancelled           State = "cancelled"
	StateQuickCapture        State = "quick_capture"
	StateDispatching         State = "dispatching"
	StateDispatched          State = "dispatched"
)

// Config holds the timings of a Machine.
type Config struct {
	GeolocationTimeout  time.Duration
	GeolocationMaxAge   time.Duration
	ProviderSearchDelay time.Duration
	QuickDispatchDelay  time.Duration
	ConfirmationTimeout time.Duration
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{
		GeolocationTimeout:  10 * time.Second,
		GeolocationMaxAge:   60 * time.Second,
		ProviderSearchDelay: 3 * time.Second,
		QuickDispatchDelay:  2 * time.Second,
		ConfirmationTimeout: 30 * time.Second,
	}
}

// Deps are the collaborators of a Machine. Only Store is required.
type Deps struct {
	Store     storage.Store
	Directory ProviderDirectory
	Locator   geo.Locator
	Watcher   geo.Watcher
	Bus       *events.Bus
	Notifier  notify.Notifier
	Logger    logging.Logger
	Now       func() time.Time
	NewID     func() string
}

// flow is one pass through the machine. Its context is cancelled when the
// flow is cancelled, closed or replaced.
type flow struct {
	gen       uint64
	ctx       context.Context
	cancel    context.CancelFunc
	quick     bool
	location  *geo.Location
	typ       EmergencyType
	info      TypeInfo
	request   *Request
	providers []Provider
	ready     chan struct{}
	readyOnce sync.Once
}

func (f *flow) markReady() {
	f.readyOnce.Do(func() { close(f.ready) })
}

// Machine drives one emergency request flow at a time and keeps the
// request history.
type Machine struct {
	store    storage.Store
	dir      ProviderDirectory
	locator  geo.Locator
	watcher  geo.Watcher
	bus      *events.Bus
	notifier notify.Notifier
	logger   logging.Logger
	now      func() time.Time
	newID    func() string
	cfg      Config

	root       context.Context
	rootCancel context.CancelFunc
	wg         sync.WaitGroup

	mu      sync.Mutex
	state   State
	flow    *flow
	gen     uint64
	lastFix *geo.Location
	pending []func()
	closed  bool
}

// NewMachine returns an idle Machine. Missing optional deps get no-op or
// static defaults.
func NewMachine(deps Deps, cfg Config) *Machine {
	m := &Machine{
		store:    deps.Store,
		dir:      deps.Directory,
		locator:  deps.Locator,
		watcher:  deps.Watcher,
		bus:      deps.Bus,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		now:      deps.Now,
		newID:    deps.NewID,
		cfg:      cfg,
		state:    StateIdle,
	}
	if m.dir == nil {
		m.dir = NewStaticDirectory()
	}
	if m.locator == nil {
		m.locator = geo.Unavailable{}
	}
	if m.bus == nil {
		m.bus = events.NewBus()
	}
	if m.notifier == nil {
		m.notifier = notify.Func(func(context.Context, notify.Level, string) {})
	}
	if m.logger == nil {
		m.logger = logging.Discard()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	m.root, m.rootCancel = context.WithCancel(context.Background())
	return m
}

// unlock releases mu and then runs the side effects queued while it was held.
func (m *Machine) unlock() {
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

func (m *Machine) later(fn func()) {
	m.pending = append(m.pending, fn)
}

func (m *Machine) setStateLocked(ctx context.Context, s State) {
	if m.state == s {
		return
	}
	m.logger.Debug(ctx, "emergency state changed", "from", m.state, "to", s)
	m.state = s
	m.later(func() { m.bus.Publish(ctx, events.EmergencyState, string(s)) })
}

func (m *Machine) notifyLocked(ctx context.Context, level notify.Level, msg string) {
	m.later(func() { m.notifier.Notify(ctx, level, msg) })
}

func (m *Machine) announceLocked(ctx context.Context, r Request) {
	m.later(func() { m.bus.Publish(ctx, events.EmergencyAlert, r) })
}

// persistLocked writes r to the history. Failures are logged and the flow
// carries on.
func (m *Machine) persistLocked(ctx context.Context, r Request) {
	if err := upsertRequest(ctx, m.store, r, m.now()); err != nil {
		m.logger.Error(ctx, "failed to save emergency request", "request_id", r.ID, "error", err)
	}
}

// endFlowLocked cancels the current flow, if any.
func (m *Machine) endFlowLocked() {
	if m.flow != nil {
		m.flow.cancel()
		m.flow = nil
	}
}

func (m *Machine) begin(ctx context.Context, quick bool, msg string) *flow {
	m.mu.Lock()
	defer m.unlock()

	m.endFlowLocked()
	m.gen++
	fctx, cancel := context.WithCancel(m.root)
	f := &flow{gen: m.gen, ctx: fctx, cancel: cancel, quick: quick, ready: make(chan struct{})}
	m.flow = f
	m.setStateLocked(ctx, StateLocating)
	m.notifyLocked(ctx, notify.Info, msg)
	return f
}

// locate asks the locator for a position, bounded by GeolocationTimeout and
// by the lifetime of f. A recent real fix is reused.
func (m *Machine) locate(ctx context.Context, f *flow) (geo.Location, error) {
	m.mu.Lock()
	last := m.lastFix
	m.mu.Unlock()
	if last != nil && !last.Fallback && m.now().Sub(last.Timestamp) <= m.cfg.GeolocationMaxAge {
		return *last, nil
	}

	lctx, cancel := context.WithTimeout(ctx, m.cfg.GeolocationTimeout)
	defer cancel()
	stop := context.AfterFunc(f.ctx, cancel)
	defer stop()

	type result struct {
		loc geo.Location
		err error
	}
	ch := make(chan result, 1)
	go func() {
		loc, err := m.locator.CurrentPosition(lctx, geo.Options{
			HighAccuracy: true,
			Timeout:      m.cfg.GeolocationTimeout,
			MaximumAge:   m.cfg.GeolocationMaxAge,
		})
		ch <- result{loc, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return geo.Location{}, r.err
		}
		m.mu.Lock()
		fix := r.loc
		m.lastFix = &fix
		m.mu.Unlock()
		return r.loc, nil
	case <-lctx.Done():
		return geo.Location{}, fmt.Errorf("%w: %w", common.ErrGeolocationUnavailable, lctx.Err())
	}
}

// Initiate starts the standard flow. Without a location fix the flow is
// aborted. A non-empty preselect skips type selection.
func (m *Machine) Initiate(ctx context.Context, preselect EmergencyType) error {
	if preselect != "" && !preselect.Standard() {
		return fmt.Errorf("%w: unknown emergency type %q", common.ErrValidation, preselect)
	}

	f := m.begin(ctx, false, "Getting your location...")
	loc, err := m.locate(ctx, f)

	m.mu.Lock()
	defer m.unlock()
	if m.flow != f {
		return common.ErrCancelled
	}
	if err != nil {
		m.logger.Warn(ctx, "geolocation failed, aborting emergency flow", "flow", f.gen, "error", err)
		m.endFlowLocked()
		m.setStateLocked(ctx, StateIdle)
		m.notifyLocked(ctx, notify.Error, "Location access is required for emergency services")
		if !errors.Is(err, common.ErrGeolocationUnavailable) {
			err = fmt.Errorf("%w: %w", common.ErrGeolocationUnavailable, err)
		}
		return err
	}

	f.location = &loc
	m.setStateLocked(ctx, StateSelectingType)
	if preselect != "" {
		m.selectTypeLocked(ctx, f, preselect)
	}
	return nil
}

// InitiateQuick starts the abbreviated critical path. Without a location
// fix the fallback coordinate is used.
func (m *Machine) InitiateQuick(ctx context.Context) error {
	f := m.begin(ctx, true, "EMERGENCY MODE: Getting your location...")
	loc, err := m.locate(ctx, f)

	m.mu.Lock()
	defer m.unlock()
	if m.flow != f {
		return common.ErrCancelled
	}
	if err != nil {
		m.logger.Warn(ctx, "geolocation failed, using fallback location", "flow", f.gen, "error", err)
		loc = geo.FallbackLocation(m.now())
		m.notifyLocked(ctx, notify.Warning, "Using approximate location")
	}
	f.location = &loc
	m.setStateLocked(ctx, StateQuickCapture)
	return nil
}

func (m *Machine) SelectType(ctx context.Context, t EmergencyType) error {
	if !t.Standard() {
		return fmt.Errorf("%w: unknown emergency type %q", common.ErrValidation, t)
	}
	m.mu.Lock()
	defer m.unlock()
	if m.flow == nil || m.state != StateSelectingType {
		return fmt.Errorf("%w: cannot select a type in state %s", common.ErrInvalidState, m.state)
	}
	m.selectTypeLocked(ctx, m.flow, t)
	return nil
}

func (m *Machine) selectTypeLocked(ctx context.Context, f *flow, t EmergencyType) {
	f.typ = t
	f.info = Types[t]
	m.setStateLocked(ctx, StateCapturingDetails)
}

// Back returns from detail capture to type selection.
func (m *Machine) Back(ctx context.Context) error {
	m.mu.Lock()
	defer m.unlock()
	if m.flow == nil || m.state != StateCapturingDetails {
		return fmt.Errorf("%w: nothing to go back to in state %s", common.ErrInvalidState, m.state)
	}
	m.flow.typ = ""
	m.flow.info = TypeInfo{}
	m.setStateLocked(ctx, StateSelectingType)
	return nil
}

// SubmitDetails records a standard request and starts the provider search.
func (m *Machine) SubmitDetails(ctx context.Context, d Details) (*Request, error) {
	m.mu.Lock()
	defer m.unlock()
	f := m.flow
	if f == nil || m.state != StateCapturingDetails {
		return nil, fmt.Errorf("%w: cannot submit details in state %s", common.ErrInvalidState, m.state)
	}

	missing := validation.Missing(
		[2]string{"description", d.Description},
		[2]string{"patient name", d.PatientName},
		[2]string{"phone number", d.PhoneNumber},
	)
	if len(missing) > 0 {
		m.notifyLocked(ctx, notify.Error, "Please fill in the required fields")
		return nil, fmt.Errorf("%w: missing %s", common.ErrValidation, strings.Join(missing, ", "))
	}

	r := Request{
		ID:                  m.newID(),
		Type:                f.typ,
		Description:         strings.TrimSpace(d.Description),
		PatientName:         strings.TrimSpace(d.PatientName),
		PhoneNumber:         strings.TrimSpace(d.PhoneNumber),
		LocationDescription: strings.TrimSpace(d.LocationDescription),
		MedicalHistory:      strings.TrimSpace(d.MedicalHistory),
		Location:            f.location,
		Status:              StatusActive,
		Priority:            f.info.Priority,
		EstimatedResponse:   f.info.EstimatedResponse,
		RequesterID:         d.RequesterID,
		CreatedAt:           m.now(),
	}
	f.request = &r
	m.persistLocked(ctx, r)
	m.logger.Info(ctx, "emergency submitted", "request_id", r.ID, "type", r.Type, "flow", f.gen)

	m.announceLocked(ctx, r)
	m.notifyLocked(ctx, notify.Info, "Finding available providers near you...")
	m.setStateLocked(ctx, StateSearchingProviders)
	m.goAfter(f, m.cfg.ProviderSearchDelay, m.presentProviders)

	out := r
	return &out, nil
}

// SubmitQuick records a quick request and starts the dispatch.
func (m *Machine) SubmitQuick(ctx context.Context, q QuickDetails) (*Request, error) {
	m.mu.Lock()
	defer m.unlock()
	f := m.flow
	if f == nil || m.state != StateQuickCapture {
		return nil, fmt.Errorf("%w: cannot submit quick details in state %s", common.ErrInvalidState, m.state)
	}

	missing := validation.Missing(
		[2]string{"emergency type", string(q.Kind)},
		[2]string{"phone number", q.Phone},
	)
	if len(missing) > 0 {
		m.notifyLocked(ctx, notify.Error, "Please fill in the required fields")
		return nil, fmt.Errorf("%w: missing %s", common.ErrValidation, strings.Join(missing, ", "))
	}
	if !q.Kind.Critical() {
		m.notifyLocked(ctx, notify.Error, "Please fill in the required fields")
		return nil, fmt.Errorf("%w: unknown emergency type %q", common.ErrValidation, q.Kind)
	}

	r := Request{
		ID:                  m.newID(),
		Type:                q.Kind,
		Description:         q.Kind.Label(),
		PhoneNumber:         strings.TrimSpace(q.Phone),
		LocationDescription: strings.TrimSpace(q.LocationDetails),
		Location:            f.location,
		Status:              StatusActive,
		Priority:            PriorityCritical,
		Quick:               true,
		RequesterID:         q.RequesterID,
		CreatedAt:           m.now(),
	}
	f.typ = q.Kind
	f.request = &r
	m.persistLocked(ctx, r)
	m.logger.Info(ctx, "quick emergency submitted", "request_id", r.ID, "kind", r.Type, "fallback_location", r.Location != nil && r.Location.Fallback)

	m.announceLocked(ctx, r)
	m.setStateLocked(ctx, StateDispatching)
	m.goAfter(f, m.cfg.QuickDispatchDelay, m.dispatch)

	out := r
	return &out, nil
}

// goAfter runs step on its own goroutine once d has elapsed, unless the
// flow ends first. Callers hold m.mu; nothing is scheduled after Shutdown.
func (m *Machine) goAfter(f *flow, d time.Duration, step func(*flow)) {
	if m.closed || m.root.Err() != nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if !sleep(f.ctx, d) {
			return
		}
		step(f)
	}()
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// currentLocked reports whether f is still the live flow.
func (m *Machine) currentLocked(f *flow) bool {
	return m.flow == f && f.ctx.Err() == nil
}

func (m *Machine) presentProviders(f *flow) {
	ctx := context.WithoutCancel(f.ctx)
	list, err := m.dir.Candidates(f.ctx, f.typ)

	m.mu.Lock()
	defer m.unlock()
	if !m.currentLocked(f) || m.state != StateSearchingProviders {
		m.logger.Debug(ctx, "stale provider search dropped", "flow", f.gen)
		return
	}
	if err != nil {
		m.logger.Error(ctx, "provider lookup failed", "type", f.typ, "error", err)
		m.notifyLocked(ctx, notify.Error, "No providers available right now. Call "+EmergencyNumber)
	}
	f.providers = list
	m.setStateLocked(ctx, StatePresentingProviders)
	m.later(f.markReady)
}

func (m *Machine) dispatch(f *flow) {
	ctx := context.WithoutCancel(f.ctx)
	list, err := m.dir.Candidates(f.ctx, f.typ)

	m.mu.Lock()
	defer m.unlock()
	if !m.currentLocked(f) || m.state != StateDispatching || f.request == nil {
		m.logger.Debug(ctx, "stale dispatch dropped", "flow", f.gen)
		return
	}
	defer m.later(f.markReady)
	if err != nil || len(list) == 0 {
		m.logger.Error(ctx, "no responder to dispatch", "request_id", f.request.ID, "error", err)
		m.notifyLocked(ctx, notify.Error, "No responders available right now. Call "+EmergencyNumber)
		return
	}

	p := list[0]
	f.providers = list
	m.assignLocked(ctx, f, p)
	m.setStateLocked(ctx, StateDispatched)
	m.notifyLocked(ctx, notify.Success, "Emergency help dispatched - ETA: "+p.ETA)
	m.goAfter(f, m.cfg.ConfirmationTimeout, m.expire)
}

func (m *Machine) assignLocked(ctx context.Context, f *flow, p Provider) {
	now := m.now()
	r := f.request
	r.ProviderID = p.ID
	r.ProviderName = p.Name
	r.EstimatedArrival = p.ETA
	r.Status = StatusConfirmed
	r.UpdatedAt = &now
	m.persistLocked(ctx, *r)
	m.announceLocked(ctx, *r)
	m.logger.Info(ctx, "emergency confirmed", "request_id", r.ID, "provider_id", p.ID)
}

// SelectProvider confirms the current request with the given provider. It
// reports false without error when there is no current request or the id is
// unknown.
func (m *Machine) SelectProvider(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.unlock()
	f := m.flow
	if f == nil || f.request == nil || f.quick {
		return false, nil
	}
	if f.request.Status != StatusActive {
		return false, fmt.Errorf("%w: request is %s", common.ErrInvalidState, f.request.Status)
	}

	p, ok := findProvider(f.providers, id)
	if !ok {
		fresh, err := m.dir.Candidates(ctx, f.typ)
		if err != nil {
			return false, fmt.Errorf("failed to look up providers: %w", err)
		}
		if p, ok = findProvider(fresh, id); !ok {
			m.logger.Debug(ctx, "unknown provider selected", "provider_id", id)
			return false, nil
		}
	}

	m.notifyLocked(ctx, notify.Info, fmt.Sprintf("Requesting %s...", p.Name))
	m.assignLocked(ctx, f, p)
	m.setStateLocked(ctx, StateConfirmed)
	m.notifyLocked(ctx, notify.Success, "Emergency request active. Check notifications for updates.")
	m.later(f.markReady)
	m.goAfter(f, m.cfg.ConfirmationTimeout, m.expire)
	return true, nil
}

// expire dismisses a confirmed or dispatched flow. The persisted status is
// left as is.
func (m *Machine) expire(f *flow) {
	ctx := context.WithoutCancel(f.ctx)
	m.mu.Lock()
	defer m.unlock()
	if !m.currentLocked(f) || (m.state != StateConfirmed && m.state != StateDispatched) {
		return
	}
	m.endFlowLocked()
	m.setStateLocked(ctx, StateIdle)
}

// Cancel cancels the current flow and marks its request cancelled. Without
// a flow it does nothing.
func (m *Machine) Cancel(ctx context.Context) error {
	m.mu.Lock()
	defer m.unlock()
	f := m.flow
	if f == nil {
		return nil
	}
	if r := f.request; r != nil && r.Status.CanTransition(StatusCancelled) {
		now := m.now()
		r.Status = StatusCancelled
		r.UpdatedAt = &now
		m.persistLocked(ctx, *r)
		m.announceLocked(ctx, *r)
		m.logger.Info(ctx, "emergency cancelled", "request_id", r.ID)
	}
	m.endFlowLocked()
	m.setStateLocked(ctx, StateCancelled)
	m.notifyLocked(ctx, notify.Info, "Emergency request cancelled")
	return nil
}

// Close dismisses the current flow without touching its request.
func (m *Machine) Close(ctx context.Context) {
	m.mu.Lock()
	defer m.unlock()
	m.endFlowLocked()
	m.setStateLocked(ctx, StateIdle)
}

func (m *Machine) await(ctx context.Context) (*flow, error) {
	m.mu.Lock()
	f := m.flow
	m.mu.Unlock()
	if f == nil {
		return nil, fmt.Errorf("%w: no emergency in progress", common.ErrInvalidState)
	}
	select {
	case <-f.ready:
		return f, nil
	default:
	}
	select {
	case <-f.ready:
		return f, nil
	case <-f.ctx.Done():
		return nil, common.ErrCancelled
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AwaitProviders blocks until the provider list of the current flow is ready.
func (m *Machine) AwaitProviders(ctx context.Context) ([]Provider, error) {
	f, err := m.await(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Provider(nil), f.providers...), nil
}

// AwaitDispatch blocks until the quick request has been dispatched.
func (m *Machine) AwaitDispatch(ctx context.Context) (*Request, error) {
	f, err := m.await(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.request == nil {
		return nil, fmt.Errorf("%w: nothing dispatched", common.ErrInvalidState)
	}
	r := *f.request
	return &r, nil
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns a copy of the request of the current flow, or nil.
func (m *Machine) Current() *Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.flow == nil || m.flow.request == nil {
		return nil
	}
	r := *m.flow.request
	return &r
}

// Type returns the emergency type chosen in the current flow.
func (m *Machine) Type() (EmergencyType, TypeInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.flow == nil {
		return "", TypeInfo{}
	}
	return m.flow.typ, m.flow.info
}

func (m *Machine) Providers() []Provider {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.flow == nil {
		return nil
	}
	return append([]Provider(nil), m.flow.providers...)
}

// Location returns the flow's location, or the last known fix.
func (m *Machine) Location() (geo.Location, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.flow != nil && m.flow.location != nil {
		return *m.flow.location, true
	}
	if m.lastFix != nil {
		return *m.lastFix, true
	}
	return geo.Location{}, false
}

// ShareURL returns a maps link for the current location.
func (m *Machine) ShareURL() (string, bool) {
	loc, ok := m.Location()
	if !ok {
		return "", false
	}
	return geo.MapsURL(loc), true
}

// StartLocationTracking keeps the last known fix up to date until ctx is
// done or Shutdown is called.
func (m *Machine) StartLocationTracking(ctx context.Context) error {
	if m.watcher == nil {
		return fmt.Errorf("%w: no position watcher", common.ErrGeolocationUnavailable)
	}
	wctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(m.root, cancel)

	ch, err := m.watcher.Watch(wctx, geo.Options{HighAccuracy: true, MaximumAge: m.cfg.GeolocationMaxAge})
	if err != nil {
		stop()
		cancel()
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		stop()
		cancel()
		return fmt.Errorf("%w: machine is shut down", common.ErrInvalidState)
	}
	m.wg.Add(1)
	m.mu.Unlock()
	go func() {
		defer m.wg.Done()
		defer stop()
		defer cancel()
		for loc := range ch {
			fix := loc
			m.mu.Lock()
			m.lastFix = &fix
			m.mu.Unlock()
		}
	}()
	return nil
}

// Shutdown cancels every pending step and waits for them to return.
func (m *Machine) Shutdown() {
	m.mu.Lock()
	m.closed = true
	m.endFlowLocked()
	m.mu.Unlock()
	m.rootCancel()
	m.wg.Wait()
}
