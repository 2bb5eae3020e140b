package auth

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/nsghealth/internal/common"
)

// Redirect targets returned by RedirectFor.
const (
	RedirectSignIn       = "signin"
	RedirectUnauthorized = "signin?error=unauthorized"
)

// PageRoles restricts dashboard pages to roles. Pages not listed only need
// a session.
var PageRoles = map[string][]Role{
	"patient":      {RolePatient},
	"practitioner": {RolePractitioner},
	"medrep":       {RoleMedRep},
	"pharmacist":   {RolePharmacist},
	"emergencies":  {RolePractitioner, RolePharmacist},
}

var dashboards = map[Role]string{
	RolePatient:      "dashboards/patient",
	RolePractitioner: "dashboards/practitioner",
	RoleMedRep:       "dashboards/medrep",
	RolePharmacist:   "dashboards/pharmacist",
}

var roleNames = map[Role]string{
	RolePatient:      "Patient",
	RolePractitioner: "Practitioner",
	RoleMedRep:       "Medical Representative",
	RolePharmacist:   "Pharmacist",
}

// Authorize returns nil when there is a session and, if allowed is not
// empty, the session user's role is one of allowed.
func (m *Manager) Authorize(allowed ...Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return common.ErrUnauthenticated
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, r := range allowed {
		if m.session.User.Role == r {
			return nil
		}
	}
	return common.ErrForbidden
}

// AuthorizePage applies PageRoles to page.
func (m *Manager) AuthorizePage(page string) error {
	return m.Authorize(PageRoles[page]...)
}

// RedirectFor maps an Authorize error to the route the user is sent to.
func RedirectFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, common.ErrForbidden):
		return RedirectUnauthorized
	default:
		return RedirectSignIn
	}
}

// DashboardRoute returns the landing route for role, defaulting to the
// patient dashboard.
func DashboardRoute(role Role) string {
	if d, ok := dashboards[role]; ok {
		return d
	}
	return dashboards[RolePatient]
}

func RoleDisplayName(role Role) string {
	if n, ok := roleNames[role]; ok {
		return n
	}
	return string(role)
}

// DisplayName is the full name, prefixed with "Dr." for practitioners.
func DisplayName(u User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if u.Role == RolePractitioner && !strings.HasPrefix(name, "Dr.") {
		return "Dr. " + name
	}
	return name
}

// Initials returns the upper-cased first letters of first and last name.
func Initials(u User) string {
	var b strings.Builder
	for _, part := range []string{u.FirstName, u.LastName} {
		for _, r := range part {
			b.WriteRune(r)
			break
		}
	}
	return strings.ToUpper(b.String())
}
