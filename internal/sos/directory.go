package sos

import (
	"context"
)

type Provider struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Specialization string  `json:"specialization"`
	Distance       string  `json:"distance"`
	ETA            string  `json:"eta"`
	Rating         float64 `json:"rating"`
	Phone          string  `json:"phone,omitempty"`
}

// ProviderDirectory lists the providers that can answer a request of the
// given type. Implementations must return the same order for the same type.
type ProviderDirectory interface {
	Candidates(ctx context.Context, t EmergencyType) ([]Provider, error)
}

// criticalResponders answer every quick-path kind.
const criticalResponders EmergencyType = "critical"

var staticProviders = map[EmergencyType][]Provider{
	TypeMedical: {
		{ID: "dr001", Name: "Dr. Sarah Mbugua", Specialization: "Emergency Medicine", Distance: "0.8 km", ETA: "4 min", Rating: 4.9},
		{ID: "dr002", Name: "Dr. James Mwangi", Specialization: "General Practice", Distance: "1.2 km", ETA: "6 min", Rating: 4.7},
		{ID: "dr003", Name: "Dr. Grace Wanjiku", Specialization: "Internal Medicine", Distance: "1.5 km", ETA: "8 min", Rating: 4.8},
	},
	TypeAmbulance: {
		{ID: "amb001", Name: "Nairobi Rescue", Specialization: "Emergency Ambulance", Distance: "2.1 km", ETA: "7 min", Rating: 4.8},
		{ID: "amb002", Name: "St. John Ambulance", Specialization: "Medical Transport", Distance: "3.2 km", ETA: "10 min", Rating: 4.6},
		{ID: "amb003", Name: "Red Cross Emergency", Specialization: "Emergency Response", Distance: "2.8 km", ETA: "9 min", Rating: 4.7},
	},
	TypePharmacy: {
		{ID: "phm001", Name: "Goodlife Pharmacy", Specialization: "Emergency Medications", Distance: "0.5 km", ETA: "12 min", Rating: 4.6},
		{ID: "phm002", Name: "Kenyatta Pharmacy", Specialization: "24/7 Pharmacy", Distance: "1.1 km", ETA: "15 min", Rating: 4.5},
		{ID: "phm003", Name: "Medplus Pharmacy", Specialization: "Prescription Delivery", Distance: "0.9 km", ETA: "18 min", Rating: 4.7},
	},
	TypeConsultation: {
		{ID: "con001", Name: "Dr. Peter Kariuki", Specialization: "Telemedicine", Distance: "Online", ETA: "2 min", Rating: 4.9},
		{ID: "con002", Name: "Dr. Mary Njeri", Specialization: "Remote Consultation", Distance: "Online", ETA: "3 min", Rating: 4.8},
		{ID: "con003", Name: "Dr. David Ochieng", Specialization: "Emergency Consult", Distance: "Online", ETA: "5 min", Rating: 4.6},
	},
	criticalResponders: {
		{ID: "qr001", Name: "Dr. Sarah Mwangi", Specialization: "Emergency Doctor", ETA: "4 minutes", Phone: "+254 700 123 456"},
		{ID: "qr002", Name: "Nairobi Emergency Response", Specialization: "Ambulance", ETA: "6 minutes", Phone: "+254 700 789 123"},
		{ID: "qr003", Name: "Central Medical Center", Specialization: "Hospital", ETA: "8 minutes", Phone: "+254 700 456 789"},
	},
}

// StaticDirectory serves a fixed table. Critical kinds map to the critical
// responders and unknown types fall back to the medical list.
type StaticDirectory struct {
	table map[EmergencyType][]Provider
}

func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{table: staticProviders}
}

func (d *StaticDirectory) Candidates(ctx context.Context, t EmergencyType) ([]Provider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := t
	switch {
	case t.Critical():
		key = criticalResponders
	case !t.Standard():
		key = TypeMedical
	}
	return append([]Provider(nil), d.table[key]...), nil
}

func findProvider(list []Provider, id string) (Provider, bool) {
	for _, p := range list {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}
