package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/nsghealth/internal/common"
	"github.com/dmitrijs2005/nsghealth/internal/dashboard"
	"github.com/dmitrijs2005/nsghealth/internal/sos"
)

const (
	cancelWord = "cancel"
	backWord   = "back"
)

func (a *App) requesterID() string {
	if u := a.authService.CurrentUser(); u != nil {
		return u.ID
	}
	return ""
}

func (a *App) defaultPhone() string {
	if u := a.authService.CurrentUser(); u != nil {
		return u.Phone
	}
	return ""
}

// ask reads one line; typing "cancel" cancels the emergency flow.
func (a *App) ask(ctx context.Context, prompt string) (string, error) {
	v, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		a.emergencies.Close(ctx)
		return "", err
	}
	if strings.EqualFold(v, cancelWord) {
		_ = a.emergencies.Cancel(ctx)
		return "", common.ErrCancelled
	}
	return v, nil
}

// pick maps a 1-based menu choice or a literal name onto options.
func pick(choice string, options []sos.EmergencyType) (sos.EmergencyType, bool) {
	if n, err := strconv.Atoi(choice); err == nil {
		if n >= 1 && n <= len(options) {
			return options[n-1], true
		}
		return "", false
	}
	for _, o := range options {
		if strings.EqualFold(string(o), choice) {
			return o, true
		}
	}
	return "", false
}

// SOS runs the guided emergency flow: type, details, provider search and
// provider choice.
func (a *App) SOS(ctx context.Context, preselect string) error {
	if err := a.emergencies.Initiate(ctx, sos.EmergencyType(strings.ToLower(preselect))); err != nil {
		fmt.Fprintf(a.out, "For immediate help call %s.\n", sos.EmergencyNumber)
		return a.report(ctx, err)
	}

	r, err := a.sosDetails(ctx, preselect != "")
	if err != nil {
		return a.endFlow(ctx, err)
	}
	a.authService.LogActivity(ctx, "emergency_request", map[string]any{"type": string(r.Type), "id": r.ID})

	fmt.Fprintln(a.out, "Searching for available providers...")
	providers, err := a.emergencies.AwaitProviders(ctx)
	if err != nil {
		return a.endFlow(ctx, err)
	}
	if len(providers) == 0 {
		fmt.Fprintf(a.out, "No providers found. Call %s.\n", sos.EmergencyNumber)
		return nil
	}

	for {
		for _, p := range providers {
			fmt.Fprintf(a.out, "  %-7s %-22s %-22s %-8s %-7s %.1f\n", p.ID, p.Name, p.Specialization, p.Distance, p.ETA, p.Rating)
		}
		id, err := a.ask(ctx, "Select provider id (or 'cancel')")
		if err != nil {
			return a.endFlow(ctx, err)
		}
		ok, err := a.emergencies.SelectProvider(ctx, id)
		if err != nil {
			return a.endFlow(ctx, err)
		}
		if ok {
			break
		}
		fmt.Fprintf(a.out, "Unknown provider %q.\n", id)
	}

	confirmed := a.emergencies.Current()
	if confirmed != nil {
		fmt.Fprintf(a.out, "Confirmed: %s, ETA %s. Request %s.\n", confirmed.ProviderName, confirmed.EstimatedArrival, confirmed.ID)
	}
	a.printShare()
	return nil
}

// sosDetails walks type selection and detail capture until the request is
// submitted. "back" at the description returns to type selection.
func (a *App) sosDetails(ctx context.Context, preselected bool) (*sos.Request, error) {
	for {
		if !preselected {
			fmt.Fprintln(a.out, "Emergency type:")
			for i, t := range sos.TypeOrder {
				info := sos.Types[t]
				fmt.Fprintf(a.out, "  %d) %-24s %-8s %s\n", i+1, info.Name, info.Priority, info.EstimatedResponse)
			}
			choice, err := a.ask(ctx, "Select type (1-4, or 'cancel')")
			if err != nil {
				return nil, err
			}
			t, ok := pick(choice, sos.TypeOrder)
			if !ok {
				fmt.Fprintf(a.out, "Unknown type %q.\n", choice)
				continue
			}
			if err := a.emergencies.SelectType(ctx, t); err != nil {
				return nil, err
			}
		}
		preselected = false

		for {
			description, err := getMultiline(a.reader, "Describe the emergency ('back' to change type, 'cancel' to stop)", a.out)
			if err != nil {
				a.emergencies.Close(ctx)
				return nil, err
			}
			if strings.EqualFold(description, cancelWord) {
				_ = a.emergencies.Cancel(ctx)
				return nil, common.ErrCancelled
			}
			if strings.EqualFold(description, backWord) {
				if err := a.emergencies.Back(ctx); err != nil {
					return nil, err
				}
				break
			}

			d := sos.Details{Description: description, RequesterID: a.requesterID()}
			if d.PatientName, err = a.ask(ctx, "Patient name"); err != nil {
				return nil, err
			}
			if d.PhoneNumber, err = a.askWithDefault(ctx, "Phone number", a.defaultPhone()); err != nil {
				return nil, err
			}
			if d.LocationDescription, err = a.ask(ctx, "Location details (optional)"); err != nil {
				return nil, err
			}
			if d.MedicalHistory, err = a.ask(ctx, "Relevant medical history (optional)"); err != nil {
				return nil, err
			}

			r, err := a.emergencies.SubmitDetails(ctx, d)
			if errors.Is(err, common.ErrValidation) {
				fmt.Fprintln(a.out, err)
				continue
			}
			return r, err
		}
	}
}

func (a *App) askWithDefault(ctx context.Context, prompt, def string) (string, error) {
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]", prompt, def)
	}
	v, err := a.ask(ctx, prompt)
	if err != nil {
		return "", err
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

// Quick runs the abbreviated flow for critical situations.
func (a *App) Quick(ctx context.Context) error {
	if err := a.emergencies.InitiateQuick(ctx); err != nil {
		return a.report(ctx, err)
	}

	var r *sos.Request
	for r == nil {
		fmt.Fprintln(a.out, "What is happening?")
		for i, k := range sos.CriticalOrder {
			fmt.Fprintf(a.out, "  %d) %s\n", i+1, sos.CriticalKinds[k])
		}
		choice, err := a.ask(ctx, "Select (1-6, or 'cancel')")
		if err != nil {
			return a.endFlow(ctx, err)
		}
		kind, _ := pick(choice, sos.CriticalOrder)

		phone, err := a.askWithDefault(ctx, "Phone number", a.defaultPhone())
		if err != nil {
			return a.endFlow(ctx, err)
		}
		details, err := a.ask(ctx, "Location details (optional)")
		if err != nil {
			return a.endFlow(ctx, err)
		}

		r, err = a.emergencies.SubmitQuick(ctx, sos.QuickDetails{
			Kind:            kind,
			Phone:           phone,
			LocationDetails: details,
			RequesterID:     a.requesterID(),
		})
		if errors.Is(err, common.ErrValidation) {
			fmt.Fprintln(a.out, err)
			continue
		}
		if err != nil {
			return a.endFlow(ctx, err)
		}
	}
	a.authService.LogActivity(ctx, "quick_sos", map[string]any{"type": string(r.Type), "id": r.ID})

	if r.Location != nil && r.Location.Fallback {
		fmt.Fprintln(a.out, "Location is approximate.")
	}
	fmt.Fprintln(a.out, "Finding the nearest responder...")
	dispatched, err := a.emergencies.AwaitDispatch(ctx)
	if err != nil {
		return a.endFlow(ctx, err)
	}
	if dispatched.ProviderName != "" {
		fmt.Fprintf(a.out, "HELP DISPATCHED: %s, ETA %s.\n", dispatched.ProviderName, dispatched.EstimatedArrival)
	}
	a.printShare()
	return nil
}

func (a *App) printShare() {
	if url, ok := a.emergencies.ShareURL(); ok {
		fmt.Fprintf(a.out, "Share your location: %s\n", url)
	}
	fmt.Fprintf(a.out, "Emergency line: %s\n", sos.EmergencyNumber)
}

// endFlow reports why a flow stopped. Leaving with "cancel" is not an error.
func (a *App) endFlow(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrCancelled) {
		fmt.Fprintln(a.out, "Emergency request cancelled.")
		return nil
	}
	return a.report(ctx, err)
}

// CancelEmergency cancels the request of the current flow, if any.
func (a *App) CancelEmergency(ctx context.Context) error {
	current := a.emergencies.Current()
	if err := a.emergencies.Cancel(ctx); err != nil {
		return a.report(ctx, err)
	}
	if current == nil {
		fmt.Fprintln(a.out, "No emergency in progress.")
		return nil
	}
	a.authService.LogActivity(ctx, "emergency_cancel", map[string]any{"id": current.ID})
	return nil
}

// History lists every request for responders and the user's own requests
// otherwise.
func (a *App) History(ctx context.Context) error {
	u, err := a.requireUser()
	if err != nil {
		return a.report(ctx, err)
	}

	var list []sos.Request
	if a.canSeeEmergencies() {
		list, err = a.emergencies.History(ctx)
	} else {
		list, err = a.emergencies.ForRequester(ctx, u.ID)
	}
	if err != nil {
		return a.report(ctx, err)
	}
	a.printRequests(list)
	return nil
}

// ActiveEmergencies lists requests still needing attention. Practitioners
// and pharmacists only.
func (a *App) ActiveEmergencies(ctx context.Context) error {
	if err := a.authService.AuthorizePage("emergencies"); err != nil {
		return a.report(ctx, err)
	}
	list, err := a.emergencies.Active(ctx)
	if err != nil {
		return a.report(ctx, err)
	}
	a.printRequests(list)
	return nil
}

// Complete marks a confirmed request as done. Practitioners and
// pharmacists only.
func (a *App) Complete(ctx context.Context, id string) error {
	if err := a.authService.AuthorizePage("emergencies"); err != nil {
		return a.report(ctx, err)
	}
	r, err := a.emergencies.Complete(ctx, id)
	if err != nil {
		return a.report(ctx, err)
	}
	a.authService.LogActivity(ctx, "emergency_complete", map[string]any{"id": r.ID})
	fmt.Fprintf(a.out, "Request %s completed.\n", r.ID)
	return nil
}

func (a *App) printRequests(list []sos.Request) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No emergency requests.")
		return
	}
	now := time.Now()
	for _, r := range list {
		provider := r.ProviderName
		if provider == "" {
			provider = "-"
		}
		fmt.Fprintf(a.out, "%s  %-24s %-9s [%s] %-8s %-22s %s\n",
			r.ID, r.Type.Label(), r.Status, dashboard.StatusColor(string(r.Status)), r.Priority, provider,
			dashboard.FormatRelativeTime(r.CreatedAt, now))
	}
}
