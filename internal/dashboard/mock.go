package dashboard

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// Patient is a demo patient row.
type Patient struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Age       int       `json:"age"`
	Phone     string    `json:"phone"`
	LastVisit time.Time `json:"lastVisit"`
	Status    string    `json:"status"`
}

func (p Patient) Name() string { return p.FirstName + " " + p.LastName }

// Appointment is a demo booking.
type Appointment struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patientId"`
	PatientName string    `json:"patientName"`
	Phone       string    `json:"phone"`
	Type        string    `json:"type"`
	Date        time.Time `json:"date"`
	Duration    int       `json:"duration"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Prescription is a demo prescription for the pharmacy queue.
type Prescription struct {
	ID           string    `json:"id"`
	PatientID    string    `json:"patientId"`
	PatientName  string    `json:"patientName"`
	Medication   string    `json:"medication"`
	Dosage       string    `json:"dosage"`
	PrescribedBy string    `json:"prescribedBy"`
	Status       string    `json:"status"`
	Urgent       bool      `json:"urgent"`
	CreatedAt    time.Time `json:"createdAt"`
}

var (
	mockFirstNames = []string{"John", "Mary", "Peter", "Grace", "James", "Sarah", "David", "Faith", "Michael", "Joyce"}
	mockLastNames  = []string{"Mwangi", "Wanjiku", "Kariuki", "Njeri", "Ochieng", "Akinyi", "Mbugua", "Wambui", "Kamau", "Chebet"}

	PatientStatuses      = []string{"active", "pending", "completed"}
	AppointmentTypes     = []string{"Consultation", "Check-up", "Follow-up", "Emergency", "Vaccination", "Lab Test"}
	AppointmentStatuses  = []string{"scheduled", "confirmed", "completed", "cancelled"}
	AppointmentDurations = []int{30, 45, 60}
	Medications          = []string{"Paracetamol 500mg", "Amoxicillin 250mg", "Ibuprofen 400mg", "Omeprazole 20mg", "Metformin 500mg", "Amlodipine 5mg"}
	PrescriptionStatuses = []string{"pending", "dispensed", "completed"}
)

const day = 24 * time.Hour

func pick[T any](list []T) T { return list[rand.IntN(len(list))] }

// within returns a random duration in [0, d).
func within(d time.Duration) time.Duration {
	return time.Duration(rand.Int64N(int64(d)))
}

// MockPatients returns n patients aged 20 to 79 with a Kenyan phone number
// and a last visit within the 30 days before now.
func MockPatients(n int, now time.Time) []Patient {
	out := make([]Patient, 0, max(n, 0))
	for range max(n, 0) {
		out = append(out, Patient{
			ID:        GenerateID("patient", now),
			FirstName: pick(mockFirstNames),
			LastName:  pick(mockLastNames),
			Age:       20 + rand.IntN(60),
			Phone:     fmt.Sprintf("+254%09d", rand.IntN(1_000_000_000)),
			LastVisit: now.Add(-within(30 * day)),
			Status:    pick(PatientStatuses),
		})
	}
	return out
}

// MockAppointments returns one appointment per mock patient, dated within
// the 14 days after now.
func MockAppointments(n int, now time.Time) []Appointment {
	patients := MockPatients(n, now)
	out := make([]Appointment, 0, len(patients))
	for _, p := range patients {
		out = append(out, Appointment{
			ID:          GenerateID("appointment", now),
			PatientID:   p.ID,
			PatientName: p.Name(),
			Phone:       p.Phone,
			Type:        pick(AppointmentTypes),
			Date:        now.Add(within(14 * day)),
			Duration:    pick(AppointmentDurations),
			Status:      pick(AppointmentStatuses),
			Notes:       "Regular appointment booking",
			CreatedAt:   now,
		})
	}
	return out
}

// MockPrescriptions returns one prescription per mock patient, cycling
// through Medications. Roughly three in ten are urgent.
func MockPrescriptions(n int, now time.Time) []Prescription {
	patients := MockPatients(n, now)
	out := make([]Prescription, 0, len(patients))
	for i, p := range patients {
		out = append(out, Prescription{
			ID:           "prescription_" + uuid.NewString(),
			PatientID:    p.ID,
			PatientName:  p.Name(),
			Medication:   Medications[i%len(Medications)],
			Dosage:       "1 tablet twice daily",
			PrescribedBy: "Dr. Smith",
			Status:       pick(PrescriptionStatuses),
			Urgent:       rand.Float64() > 0.7,
			CreatedAt:    now.Add(-within(7 * day)),
		})
	}
	return out
}
