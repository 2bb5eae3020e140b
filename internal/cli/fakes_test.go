package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/nsghealth/internal/auth"
	"github.com/dmitrijs2005/nsghealth/internal/common"
	"github.com/dmitrijs2005/nsghealth/internal/events"
	"github.com/dmitrijs2005/nsghealth/internal/logging"
	"github.com/dmitrijs2005/nsghealth/internal/sos"
)

type fakeAuth struct {
	user    *auth.User
	session *auth.Session
	pageErr error

	registered auth.Registration
	loginEmail string
	loginPw    string
	remember   bool
	loginErr   error

	updates  map[string]string
	changed  [2]string
	activity []auth.Activity
	logged   []string
}

func (f *fakeAuth) Register(_ context.Context, r auth.Registration) (*auth.User, error) {
	f.registered = r
	f.registered.Password = append([]byte(nil), r.Password...)
	return &auth.User{ID: "u1", Email: r.Email, Role: r.Role}, nil
}

func (f *fakeAuth) Login(_ context.Context, email string, password []byte, remember bool) (*auth.User, error) {
	f.loginEmail, f.loginPw, f.remember = email, string(password), remember
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.user = &auth.User{ID: "u1", Email: email, FirstName: "Jane", LastName: "Doe", Role: auth.RolePatient}
	return f.user, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.user = nil
	return nil
}

func (f *fakeAuth) CurrentUser() *auth.User { return f.user }
func (f *fakeAuth) Session() *auth.Session { return f.session }
func (f *fakeAuth) IsLoggedIn() bool { return f.user != nil }
func (f *fakeAuth) AuthorizePage(string) error {
	if f.user == nil {
		return common.ErrUnauthenticated
	}
	return f.pageErr
}

func (f *fakeAuth) UpdateProfile(_ context.Context, _ string, updates map[string]string) (*auth.User, error) {
	f.updates = updates
	return f.user, nil
}

func (f *fakeAuth) ChangePassword(_ context.Context, _ string, current, next []byte) error {
	f.changed = [2]string{string(current), string(next)}
	return nil
}

func (f *fakeAuth) Activities(context.Context, string, int) ([]auth.Activity, error) {
	return f.activity, nil
}

func (f *fakeAuth) LogActivity(_ context.Context, action string, _ map[string]any) {
	f.logged = append(f.logged, action)
}

type fakeEmergencies struct {
	calls []string

	initErr    error
	submitErrs []error
	providers  []sos.Provider
	known      map[string]bool
	current    *sos.Request
	history    []sos.Request
	shareURL   string

	details []sos.Details
	quick   []sos.QuickDetails
	typ     sos.EmergencyType
}

func (f *fakeEmergencies) record(c string) { f.calls = append(f.calls, c) }

func (f *fakeEmergencies) Initiate(_ context.Context, t sos.EmergencyType) error {
	f.record("initiate:" + string(t))
	return f.initErr
}

func (f *fakeEmergencies) InitiateQuick(context.Context) error {
	f.record("quick")
	return f.initErr
}

func (f *fakeEmergencies) SelectType(_ context.Context, t sos.EmergencyType) error {
	f.record("type:" + string(t))
	f.typ = t
	return nil
}

func (f *fakeEmergencies) Back(context.Context) error {
	f.record("back")
	return nil
}

func (f *fakeEmergencies) nextSubmitErr() error {
	if len(f.submitErrs) == 0 {
		return nil
	}
	err := f.submitErrs[0]
	f.submitErrs = f.submitErrs[1:]
	return err
}

func (f *fakeEmergencies) SubmitDetails(_ context.Context, d sos.Details) (*sos.Request, error) {
	f.record("details")
	f.details = append(f.details, d)
	if err := f.nextSubmitErr(); err != nil {
		return nil, err
	}
	f.current = &sos.Request{ID: "emergency_1", Type: f.typ, Status: sos.StatusActive, RequesterID: d.RequesterID}
	return f.current, nil
}

func (f *fakeEmergencies) SubmitQuick(_ context.Context, q sos.QuickDetails) (*sos.Request, error) {
	f.record("submitquick")
	f.quick = append(f.quick, q)
	if err := f.nextSubmitErr(); err != nil {
		return nil, err
	}
	f.current = &sos.Request{ID: "emergency_q", Type: q.Kind, Status: sos.StatusActive, Quick: true}
	return f.current, nil
}

func (f *fakeEmergencies) AwaitProviders(context.Context) ([]sos.Provider, error) {
	f.record("await")
	return f.providers, nil
}

func (f *fakeEmergencies) AwaitDispatch(context.Context) (*sos.Request, error) {
	f.record("dispatch")
	r := *f.current
	r.Status = sos.StatusConfirmed
	r.ProviderName = "Dr. Sarah Mwangi"
	r.EstimatedArrival = "4 minutes"
	return &r, nil
}

func (f *fakeEmergencies) SelectProvider(_ context.Context, id string) (bool, error) {
	f.record("select:" + id)
	if !f.known[id] {
		return false, nil
	}
	f.current.Status = sos.StatusConfirmed
	f.current.ProviderID = id
	f.current.ProviderName = "Provider " + id
	f.current.EstimatedArrival = "5 min"
	return true, nil
}

func (f *fakeEmergencies) Cancel(context.Context) error {
	f.record("cancel")
	if f.current != nil {
		f.current.Status = sos.StatusCancelled
	}
	return nil
}

func (f *fakeEmergencies) Close(context.Context) { f.record("close") }
func (f *fakeEmergencies) Current() *sos.Request { return f.current }

func (f *fakeEmergencies) History(context.Context) ([]sos.Request, error) {
	f.record("history")
	return f.history, nil
}

func (f *fakeEmergencies) Active(context.Context) ([]sos.Request, error) {
	f.record("active")
	return f.history, nil
}

func (f *fakeEmergencies) ForRequester(_ context.Context, id string) ([]sos.Request, error) {
	f.record("mine:" + id)
	return f.history, nil
}

func (f *fakeEmergencies) Complete(_ context.Context, id string) (*sos.Request, error) {
	f.record("complete:" + id)
	if id != "emergency_1" {
		return nil, common.ErrNotFound
	}
	return &sos.Request{ID: id, Status: sos.StatusCompleted}, nil
}

func (f *fakeEmergencies) ShareURL() (string, bool) { return f.shareURL, f.shareURL != "" }
func (f *fakeEmergencies) StartLocationTracking(context.Context) error { return nil }
func (f *fakeEmergencies) Shutdown() { f.record("shutdown") }

// newTestApp builds an App over fakes reading input and writing to a buffer.
func newTestApp(t *testing.T, input string) (*App, *fakeAuth, *fakeEmergencies, *bytes.Buffer) {
	t.Helper()
	fa := &fakeAuth{}
	fe := &fakeEmergencies{}
	var out bytes.Buffer
	a := &App{
		logger:      logging.Discard(),
		authService: fa,
		emergencies: fe,
		bus:         events.NewBus(),
		reader:      bufio.NewReader(strings.NewReader(input)),
		out:         &out,
	}
	return a, fa, fe, &out
}

func stubPassword(t *testing.T, pws ...string) {
	t.Helper()
	orig := getPassword
	getPassword = func(string, io.Writer) ([]byte, error) {
		if len(pws) == 0 {
			return nil, io.EOF
		}
		pw := []byte(pws[0])
		pws = pws[1:]
		return pw, nil
	}
	t.Cleanup(func() { getPassword = orig })
}
