package auth

import (
	"time"
)

type Role string

const (
	RolePatient      Role = "patient"
	RolePractitioner Role = "practitioner"
	RoleMedRep       Role = "medrep"
	RolePharmacist   Role = "pharmacist"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RolePractitioner, RoleMedRep, RolePharmacist:
		return true
	}
	return false
}

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash []byte `json:"passwordHash,omitempty"`
	PasswordSalt []byte `json:"passwordSalt,omitempty"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
	Role      Role   `json:"role"`

	LicenseNumber   string `json:"licenseNumber,omitempty"`
	Specialization  string `json:"specialization,omitempty"`
	PharmacyLicense string `json:"pharmacyLicense,omitempty"`
	PharmacyName    string `json:"pharmacyName,omitempty"`
	CompanyName     string `json:"companyName,omitempty"`
	BusinessLicense string `json:"businessLicense,omitempty"`

	IsActive  bool       `json:"isActive"`
	IsDemo    bool       `json:"isDemo"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// public returns a copy without credentials.
func (u User) public() User {
	u.PasswordHash = nil
	u.PasswordSalt = nil
	return u
}

// Registration is the input of Manager.Register.
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  []byte
	Phone     string
	Location  string
	Role      Role

	LicenseNumber   string
	Specialization  string
	PharmacyLicense string
	PharmacyName    string
	CompanyName     string
	BusinessLicense string
}

// Session is the persisted login. User is a snapshot taken at login and
// refreshed only by profile updates made through the Manager.
type Session struct {
	User       User      `json:"user"`
	LoginTime  time.Time `json:"loginTime"`
	RememberMe bool      `json:"rememberMe"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Token      string    `json:"token"`
}

type Activity struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	UserEmail string         `json:"userEmail"`
	UserRole  Role           `json:"userRole"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
}
