package cli

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/nsghealth/internal/dashboard"
)

// Appointments lists the synced appointments, soonest first.
func (a *App) Appointments(ctx context.Context) error {
	if _, err := a.requireUser(); err != nil {
		return a.report(ctx, err)
	}
	list, err := a.syncer.SyncAppointments(ctx)
	if err != nil {
		return a.report(ctx, err)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No appointments.")
		return nil
	}
	slices.SortFunc(list, func(x, y dashboard.Appointment) int { return x.Date.Compare(y.Date) })

	now := time.Now()
	for _, ap := range list {
		when := dashboard.FormatDate(ap.Date)
		if dashboard.IsToday(ap.Date, now) {
			when = "today " + ap.Date.Format("03:04 PM")
		}
		fmt.Fprintf(a.out, "%-24s %-12s %-20s %s (%s) %d min\n",
			when, ap.Type, ap.PatientName, ap.Status, dashboard.StatusColor(ap.Status), ap.Duration)
	}
	return nil
}
