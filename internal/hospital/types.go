// Package hospital defines the records shared by every dashboard of the
// coordination service (staff, patients, clinical orders, appointments,
// notifications) and the pure clinical rules derived from them: order
// location assignment, referral prefixes and billing aggregation.
//
// JSON field names match the snapshot shapes persisted under the h_* keys,
// so records round-trip unchanged through the durable store.
package hospital

// Role identifies a staff department or the patient principal.
type Role string

const (
	RoleDoctor   Role = "DOCTOR"
	RoleNurse    Role = "NURSE"
	RoleLab      Role = "LAB"
	RolePharmacy Role = "PHARMACY"
	RolePatient  Role = "PATIENT"
	RoleAdmin    Role = "ADMIN"
)

// StaffRoles are the roles a staff account may sign up with.
var StaffRoles = []Role{RoleDoctor, RoleNurse, RoleLab, RolePharmacy}

// ValidStaffRole reports whether r is a signable staff department.
func ValidStaffRole(r Role) bool {
	for _, role := range StaffRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ActionType classifies a clinical order.
type ActionType string

const (
	ActionTest        ActionType = "TEST"
	ActionMedicine    ActionType = "MEDICINE"
	ActionInstruction ActionType = "INSTRUCTION"
)

// ValidActionType reports whether t is a known order type.
func ValidActionType(t ActionType) bool {
	return t == ActionTest || t == ActionMedicine || t == ActionInstruction
}

// ActionStatus is the order lifecycle state. The only transition is
// PENDING -> COMPLETED; there is no reverse path.
type ActionStatus string

const (
	StatusPending   ActionStatus = "PENDING"
	StatusCompleted ActionStatus = "COMPLETED"
)

// PaymentStatus is a patient-level flag toggled independently of the
// per-order bill amounts.
type PaymentStatus string

const (
	PaymentDue       PaymentStatus = "DUE"
	PaymentCompleted PaymentStatus = "COMPLETED"
)

// AppointmentStatus values follow the stored snapshot casing.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "Scheduled"
	AppointmentCompleted AppointmentStatus = "Completed"
	AppointmentCancelled AppointmentStatus = "Cancelled"
)

// StaffUser is a staff account. PasswordHash is a bcrypt hash serialized
// under the "password" field; credentials are never kept in plaintext.
type StaffUser struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	Online       bool   `json:"isOnline"`
	PasswordHash string `json:"password,omitempty"`
}

// Redacted returns a copy safe to serialize in API responses.
func (u StaffUser) Redacted() StaffUser {
	u.PasswordHash = ""
	return u
}

// Patient is an admitted patient. IDs follow the PAT+6-digits format and
// the password starts as the bcrypt hash of the system default.
type Patient struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Age           int           `json:"age"`
	Problem       string        `json:"problem"`
	Weight        float64       `json:"weight"`
	Height        float64       `json:"height"`
	RoomNo        string        `json:"roomNo"`
	PasswordHash  string        `json:"password,omitempty"`
	CreatedBy     string        `json:"createdBy"`
	CreatedAt     int64         `json:"createdAt"`
	HasInsurance  bool          `json:"hasInsurance"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
}

// Redacted returns a copy safe to serialize in API responses.
func (p Patient) Redacted() Patient {
	p.PasswordHash = ""
	return p
}

// PatientAction is a clinical order assigned to a department for a patient.
// BillAmount is set once at completion (lab and pharmacy only) and is never
// edited afterwards.
type PatientAction struct {
	ID          string       `json:"id"`
	PatientID   string       `json:"patientId"`
	Type        ActionType   `json:"type"`
	Description string       `json:"description"`
	Timings     string       `json:"timings,omitempty"`
	Location    string       `json:"location,omitempty"`
	CreatedBy   string       `json:"createdBy"`
	AssignedTo  Role         `json:"assignedTo"`
	Status      ActionStatus `json:"status"`
	BillAmount  *float64     `json:"billAmount,omitempty"`
	Result      string       `json:"result,omitempty"`
	Timestamp   int64        `json:"timestamp"`
}

// Appointment is a patient-booked visit. It is only ever created as
// Scheduled; no transition logic exists beyond creation.
type Appointment struct {
	ID        string            `json:"id"`
	PatientID string            `json:"patientId"`
	DoctorID  string            `json:"doctorId"`
	Date      string            `json:"date"`
	Time      string            `json:"time"`
	Status    AppointmentStatus `json:"status"`
}

// Notification is a role-targeted entry in the capped in-memory log.
type Notification struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Role      Role   `json:"role"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
	Read      bool   `json:"read"`
}
