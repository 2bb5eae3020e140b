package sos

import (
	"time"

	"github.com/dmitrijs2005/nsghealth/internal/geo"
)

// EmergencyType names a standard request type or a critical quick kind.
type EmergencyType string

// Standard types.
const (
	TypeMedical      EmergencyType = "medical"
	TypeAmbulance    EmergencyType = "ambulance"
	TypePharmacy     EmergencyType = "pharmacy"
	TypeConsultation EmergencyType = "consultation"
)

// Critical kinds used by the quick path.
const (
	KindCardiac     EmergencyType = "cardiac"
	KindBreathing   EmergencyType = "breathing"
	KindBleeding    EmergencyType = "bleeding"
	KindUnconscious EmergencyType = "unconscious"
	KindAccident    EmergencyType = "accident"
	KindOther       EmergencyType = "other"
)

// Priority is derived from the emergency type.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
)

type TypeInfo struct {
	Name              string
	Color             string
	Priority          Priority
	EstimatedResponse string
}

// Types is the catalogue of standard emergency types.
var Types = map[EmergencyType]TypeInfo{
	TypeMedical:      {Name: "Medical Emergency", Color: "red", Priority: PriorityCritical, EstimatedResponse: "3-8 minutes"},
	TypeAmbulance:    {Name: "Ambulance Request", Color: "blue", Priority: PriorityHigh, EstimatedResponse: "5-12 minutes"},
	TypePharmacy:     {Name: "Urgent Medication", Color: "green", Priority: PriorityMedium, EstimatedResponse: "10-20 minutes"},
	TypeConsultation: {Name: "Emergency Consultation", Color: "purple", Priority: PriorityMedium, EstimatedResponse: "2-5 minutes"},
}

// TypeOrder lists the standard types in presentation order.
var TypeOrder = []EmergencyType{TypeMedical, TypeAmbulance, TypePharmacy, TypeConsultation}

// CriticalKinds labels the quick-path kinds.
var CriticalKinds = map[EmergencyType]string{
	KindCardiac:     "Heart Attack/Chest Pain",
	KindBreathing:   "Difficulty Breathing",
	KindBleeding:    "Severe Bleeding",
	KindUnconscious: "Unconscious Person",
	KindAccident:    "Accident/Injury",
	KindOther:       "Other Emergency",
}

// CriticalOrder lists the quick-path kinds in presentation order.
var CriticalOrder = []EmergencyType{KindCardiac, KindBreathing, KindBleeding, KindUnconscious, KindAccident, KindOther}

func (t EmergencyType) Standard() bool {
	_, ok := Types[t]
	return ok
}

func (t EmergencyType) Critical() bool {
	_, ok := CriticalKinds[t]
	return ok
}

// Label returns a human readable name for standard and critical types.
func (t EmergencyType) Label() string {
	if info, ok := Types[t]; ok {
		return info.Name
	}
	if label, ok := CriticalKinds[t]; ok {
		return label
	}
	return string(t)
}

// Status is the lifecycle status of a persisted request.
type Status string

const (
	StatusActive    Status = "active"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var statusRank = map[Status]int{
	StatusActive:    0,
	StatusConfirmed: 1,
	StatusCompleted: 2,
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether s may move to next: one step forward
// (active to confirmed, confirmed to completed), with cancellation allowed
// from any non-terminal status.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	from, ok1 := statusRank[s]
	to, ok2 := statusRank[next]
	return ok1 && ok2 && to == from+1
}

// Request is one emergency request as persisted in the history.
type Request struct {
	ID                  string        `json:"id"`
	Type                EmergencyType `json:"type"`
	Description         string        `json:"description,omitempty"`
	PatientName         string        `json:"patientName,omitempty"`
	PhoneNumber         string        `json:"phoneNumber"`
	LocationDescription string        `json:"locationDescription,omitempty"`
	MedicalHistory      string        `json:"medicalHistory,omitempty"`
	Location            *geo.Location `json:"location,omitempty"`
	Status              Status        `json:"status"`
	Priority            Priority      `json:"priority"`
	Quick               bool          `json:"quickSOS,omitempty"`
	RequesterID         string        `json:"userId,omitempty"`
	EstimatedResponse   string        `json:"estimatedResponse,omitempty"`
	ProviderID          string        `json:"providerId,omitempty"`
	ProviderName        string        `json:"providerName,omitempty"`
	EstimatedArrival    string        `json:"estimatedArrival,omitempty"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           *time.Time    `json:"updatedAt,omitempty"`
}

// Details is the standard-path form.
type Details struct {
	Description         string
	PatientName         string
	PhoneNumber         string
	LocationDescription string
	MedicalHistory      string
	RequesterID         string
}

// QuickDetails is the quick-path form; Kind and Phone are required.
type QuickDetails struct {
	Kind            EmergencyType
	Phone           string
	LocationDetails string
	RequesterID     string
}
