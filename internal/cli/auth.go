package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/nsghealth/internal/auth"
	"github.com/dmitrijs2005/nsghealth/internal/common"
	"github.com/dmitrijs2005/nsghealth/internal/dashboard"
)

// Indirections over the interactive input helpers, swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
	getFields     = GetFields
	getYesNo      = GetYesNo
)

// roleFields lists the extra registration prompts per role.
var roleFields = map[auth.Role][]struct {
	prompt string
	set    func(r *auth.Registration, v string)
}{
	auth.RolePractitioner: {
		{"License number", func(r *auth.Registration, v string) { r.LicenseNumber = v }},
		{"Specialization", func(r *auth.Registration, v string) { r.Specialization = v }},
	},
	auth.RolePharmacist: {
		{"Pharmacy license", func(r *auth.Registration, v string) { r.PharmacyLicense = v }},
		{"Pharmacy name", func(r *auth.Registration, v string) { r.PharmacyName = v }},
	},
	auth.RoleMedRep: {
		{"Company name", func(r *auth.Registration, v string) { r.CompanyName = v }},
		{"Business license", func(r *auth.Registration, v string) { r.BusinessLicense = v }},
	},
}

// Register prompts for the account details and creates the account. The
// password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	var r auth.Registration
	basic := []struct {
		prompt string
		dst    *string
	}{
		{"First name", &r.FirstName},
		{"Last name", &r.LastName},
		{"Email", &r.Email},
		{"Phone", &r.Phone},
		{"Location", &r.Location},
	}
	for _, f := range basic {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return a.report(ctx, err)
		}
		*f.dst = v
	}

	role, err := getSimpleText(a.reader, "Role (patient, practitioner, medrep, pharmacist)", a.out)
	if err != nil {
		return a.report(ctx, err)
	}
	r.Role = auth.Role(strings.ToLower(role))
	for _, f := range roleFields[r.Role] {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return a.report(ctx, err)
		}
		f.set(&r, v)
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return a.report(ctx, err)
	}
	defer common.WipeByteArray(password)
	r.Password = password

	u, err := a.authService.Register(ctx, r)
	if err != nil {
		return a.report(ctx, err)
	}

	fmt.Fprintf(a.out, "Account created for %s. Sign in with 'login'.\n", u.Email)
	return nil
}

// Login prompts for credentials and the remember-me choice.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return a.report(ctx, err)
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return a.report(ctx, err)
	}
	defer common.WipeByteArray(password)

	remember, err := getYesNo(a.reader, "Remember me", a.out)
	if err != nil {
		return a.report(ctx, err)
	}

	u, err := a.authService.Login(ctx, email, password, remember)
	if err != nil {
		return a.report(ctx, err)
	}

	fmt.Fprintf(a.out, "Welcome, %s! Dashboard: %s\n", auth.DisplayName(*u), auth.DashboardRoute(u.Role))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return a.report(ctx, err)
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// requireUser returns the signed-in user or ErrUnauthenticated.
func (a *App) requireUser() (*auth.User, error) {
	u := a.authService.CurrentUser()
	if u == nil {
		return nil, common.ErrUnauthenticated
	}
	return u, nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.requireUser()
	if err != nil {
		return a.report(ctx, err)
	}
	s := a.authService.Session()

	fmt.Fprintf(a.out, "%s [%s] %s\n", auth.DisplayName(*u), auth.Initials(*u), u.Email)
	fmt.Fprintf(a.out, "Role:      %s\n", auth.RoleDisplayName(u.Role))
	fmt.Fprintf(a.out, "Dashboard: %s\n", auth.DashboardRoute(u.Role))
	if u.Phone != "" {
		fmt.Fprintf(a.out, "Phone:     %s\n", u.Phone)
	}
	if s != nil {
		now := time.Now()
		fmt.Fprintf(a.out, "Signed in: %s\n", dashboard.FormatRelativeTime(s.LoginTime, now))
		fmt.Fprintf(a.out, "Expires:   %s\n", dashboard.FormatDate(s.ExpiresAt))
	}
	return nil
}

// Profile reads name=value updates and applies the allowed ones.
func (a *App) Profile(ctx context.Context) error {
	u, err := a.requireUser()
	if err != nil {
		return a.report(ctx, err)
	}

	prompt := "Fields: " + strings.Join(auth.ProfileFields(), ", ")
	fields, bad, err := getFields(a.reader, prompt, a.out)
	if err != nil {
		return a.report(ctx, err)
	}
	for _, line := range bad {
		fmt.Fprintf(a.out, "ignored %q: expected name=value\n", line)
	}
	if len(fields) == 0 {
		fmt.Fprintln(a.out, "Nothing to update.")
		return nil
	}

	updated, err := a.authService.UpdateProfile(ctx, u.ID, fields)
	if err != nil {
		return a.report(ctx, err)
	}
	fmt.Fprintf(a.out, "Profile updated for %s.\n", auth.DisplayName(*updated))
	return nil
}

func (a *App) Passwd(ctx context.Context) error {
	u, err := a.requireUser()
	if err != nil {
		return a.report(ctx, err)
	}

	current, err := getPassword("Current password", a.out)
	if err != nil {
		return a.report(ctx, err)
	}
	defer common.WipeByteArray(current)

	next, err := getPassword("New password", a.out)
	if err != nil {
		return a.report(ctx, err)
	}
	defer common.WipeByteArray(next)

	if err := a.authService.ChangePassword(ctx, u.ID, current, next); err != nil {
		return a.report(ctx, err)
	}
	fmt.Fprintln(a.out, "Password changed.")
	return nil
}

const activityPageSize = 10

func (a *App) Activity(ctx context.Context) error {
	u, err := a.requireUser()
	if err != nil {
		return a.report(ctx, err)
	}

	list, err := a.authService.Activities(ctx, u.ID, activityPageSize)
	if err != nil {
		return a.report(ctx, err)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No recent activity.")
		return nil
	}
	now := time.Now()
	for _, act := range list {
		fmt.Fprintf(a.out, "%-16s %s\n", dashboard.FormatRelativeTime(act.Timestamp, now), act.Action)
	}
	return nil
}
