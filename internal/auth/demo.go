package auth

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/nsghealth/internal/cryptox"
	"github.com/dmitrijs2005/nsghealth/internal/storage"
)

// DemoPassword is shared by all demo accounts.
const DemoPassword = "demo123"

var demoAccounts = []User{
	{
		ID: "demo_patient", Email: "patient@demo.com",
		FirstName: "Patient", LastName: "Demo", Role: RolePatient,
		Phone: "+254700000001", Location: "Nairobi, Kenya",
	},
	{
		ID: "demo_practitioner", Email: "doctor@demo.com",
		FirstName: "Dr. Sarah", LastName: "Demo", Role: RolePractitioner,
		Phone: "+254700000002", Location: "Nairobi, Kenya",
		LicenseNumber: "MD12345", Specialization: "general",
	},
	{
		ID: "demo_medrep", Email: "medrep@demo.com",
		FirstName: "Medical", LastName: "Rep Demo", Role: RoleMedRep,
		Phone: "+254700000003", Location: "Nairobi, Kenya",
		CompanyName: "MediSupply Kenya", BusinessLicense: "BL12345",
	},
	{
		ID: "demo_pharmacist", Email: "pharmacist@demo.com",
		FirstName: "Pharmacist", LastName: "Demo", Role: RolePharmacist,
		Phone: "+254700000004", Location: "Nairobi, Kenya",
		PharmacyLicense: "PH12345", PharmacyName: "HealthCare Pharmacy",
	},
}

// IsDemoEmail reports whether email belongs to a seeded demo account.
func IsDemoEmail(email string) bool {
	email = normalizeEmail(email)
	for _, d := range demoAccounts {
		if d.Email == email {
			return true
		}
	}
	return false
}

// seedDemoAccounts adds every demo account whose email is not registered.
func (m *Manager) seedDemoAccounts(ctx context.Context) error {
	return m.store.Batch(ctx, func(ctx context.Context, s storage.Store) error {
		users, err := loadUsers(ctx, s)
		if err != nil {
			return err
		}

		added := 0
		for _, d := range demoAccounts {
			if findByEmail(users, d.Email) >= 0 {
				continue
			}
			u := d
			u.Email = strings.ToLower(u.Email)
			u.PasswordHash, u.PasswordSalt = cryptox.HashPassword([]byte(DemoPassword))
			u.IsActive = true
			u.IsDemo = true
			u.CreatedAt = m.now()
			users = append(users, u)
			added++
		}
		if added == 0 {
			return nil
		}

		m.logger.Info(ctx, "seeded demo accounts", "count", added)
		return saveUsers(ctx, s, users)
	})
}
