package model

import "time"

// Role identifies the operator class of a user account.
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleSahayak Role = "sahayak"
	RoleAdmin   Role = "admin"
)

// ValidRoles defines the allowed role values.
var ValidRoles = map[Role]bool{
	RoleCitizen: true,
	RoleSahayak: true,
	RoleAdmin:   true,
}

// RoleLabels maps roles to their display labels.
var RoleLabels = map[Role]string{
	RoleCitizen: "Citizen (Beneficiary)",
	RoleSahayak: "Sahayak (ASHA Worker)",
	RoleAdmin:   "Admin / Doctor",
}

// LogType categorizes a HealthLog entry.
type LogType string

const (
	LogTypeTriage       LogType = "triage"
	LogTypeVitals       LogType = "vitals"
	LogTypePrescription LogType = "prescription"
	LogTypeSymptom      LogType = "symptom"
)

// ValidLogTypes defines the allowed log type values.
var ValidLogTypes = map[LogType]bool{
	LogTypeTriage:       true,
	LogTypeVitals:       true,
	LogTypePrescription: true,
	LogTypeSymptom:      true,
}

// User is the cached profile of the authenticated operator.
//
// Role is a cache of the last authoritative fetch. It must never drive an
// access-control decision directly - internal/identity re-derives the role
// from the remote provider at every session start.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	AbhaID     string    `json:"abha_id,omitempty"`
	IsVerified bool      `json:"is_verified"`
	IsSynced   bool      `json:"is_synced"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Patient is a locally owned patient record.
//
// IsSynced is false from creation until the sync engine confirms remote
// acceptance, and flips back to false on any subsequent local edit.
// CreatedAt is immutable once set.
type Patient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	Phone     string    `json:"phone,omitempty"`
	Village   string    `json:"village,omitempty"`
	District  string    `json:"district,omitempty"`
	AbhaID    string    `json:"abha_id,omitempty"`
	CreatedBy string    `json:"created_by"`
	IsSynced  bool      `json:"is_synced"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HealthLog is an append-only clinical record attached to a patient.
//
// DataJson and CreatedAt are never mutated after creation - corrections are
// new rows. This keeps history reconstructible and spares sync from
// field-level merges.
type HealthLog struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id"`
	LogType    LogType   `json:"log_type"`
	DataJson   string    `json:"data_json"`
	RecordedBy string    `json:"recorded_by"`
	IsSynced   bool      `json:"is_synced"`
	CreatedAt  time.Time `json:"created_at"`
}

// Medicine is locally cached reference data. Rows are seeded on first run
// and afterwards refreshed only by sync pulls, never created by user action.
type Medicine struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	GenericName      string    `json:"generic_name"`
	DosageForm       string    `json:"dosage_form"`
	Price            float64   `json:"price,omitempty"`
	IsNlem           bool      `json:"is_nlem"`
	JanAushadhiPrice float64   `json:"jan_aushadhi_price,omitempty"`
	SideEffects      string    `json:"side_effects,omitempty"`
	IsSynced         bool      `json:"is_synced"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// VitalsData is the dataJson payload shape for vitals log entries.
type VitalsData struct {
	BloodPressureSystolic  int     `json:"bloodPressureSystolic,omitempty"`
	BloodPressureDiastolic int     `json:"bloodPressureDiastolic,omitempty"`
	BloodSugar             float64 `json:"bloodSugar,omitempty"`
	SpO2                   int     `json:"spO2,omitempty"`
	Height                 float64 `json:"height,omitempty"`
	Weight                 float64 `json:"weight,omitempty"`
	Temperature            float64 `json:"temperature,omitempty"`
}
