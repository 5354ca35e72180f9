package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ValidationError reports a malformed entity write. The write is rejected
// whole - nothing is partially applied.
type ValidationError struct {
	Entity string // "patient", "health_log", "user"
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s: %s", e.Entity, e.Field, e.Reason)
}

// IsValidationError returns true if the error is a ValidationError.
// Uses errors.As to handle wrapped errors.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	indianPhoneRe = regexp.MustCompile(`^(\+91)?[6-9]\d{9}$`)
	abhaNumberRe  = regexp.MustCompile(`^\d{2}-\d{4}-\d{4}-\d{4}$`)
	abhaAddressRe = regexp.MustCompile(`^[a-zA-Z0-9.]+@abdm$`)
	phoneStripRe  = regexp.MustCompile(`[\s\-()]`)
)

// IsValidIndianPhone reports whether phone is a valid Indian mobile number,
// with or without the +91 prefix. Spaces, dashes and parentheses are ignored.
func IsValidIndianPhone(phone string) bool {
	return indianPhoneRe.MatchString(phoneStripRe.ReplaceAllString(phone, ""))
}

// FormatPhone normalizes a phone number to +91 form where possible.
func FormatPhone(phone string) string {
	cleaned := phoneStripRe.ReplaceAllString(phone, "")
	if strings.HasPrefix(cleaned, "+91") {
		return cleaned
	}
	if len(cleaned) == 10 {
		return "+91" + cleaned
	}
	return cleaned
}

// IsValidAbhaID reports whether abhaID is a valid ABHA number
// (14 digits, dash-grouped) or ABHA address (name@abdm).
func IsValidAbhaID(abhaID string) bool {
	return abhaNumberRe.MatchString(abhaID) || abhaAddressRe.MatchString(abhaID)
}

// ValidatePatient checks the fields of a patient before a write.
func ValidatePatient(p *Patient) error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Entity: "patient", Field: "name", Reason: "required"}
	}
	if p.Age < 0 {
		return &ValidationError{Entity: "patient", Field: "age", Reason: "must be >= 0"}
	}
	switch p.Gender {
	case "male", "female", "other":
	default:
		return &ValidationError{Entity: "patient", Field: "gender", Reason: "must be male, female or other"}
	}
	if p.CreatedBy == "" {
		return &ValidationError{Entity: "patient", Field: "created_by", Reason: "required"}
	}
	if p.Phone != "" && !IsValidIndianPhone(p.Phone) {
		return &ValidationError{Entity: "patient", Field: "phone", Reason: "not a valid Indian mobile number"}
	}
	if p.AbhaID != "" && !IsValidAbhaID(p.AbhaID) {
		return &ValidationError{Entity: "patient", Field: "abha_id", Reason: "not a valid ABHA id"}
	}
	return nil
}

// ValidateHealthLog checks the fields of a health log before a write.
// Foreign-key existence of PatientID is enforced by the store.
func ValidateHealthLog(l *HealthLog) error {
	if l.PatientID == "" {
		return &ValidationError{Entity: "health_log", Field: "patient_id", Reason: "required"}
	}
	if !ValidLogTypes[l.LogType] {
		return &ValidationError{Entity: "health_log", Field: "log_type", Reason: fmt.Sprintf("unknown log type %q", l.LogType)}
	}
	if strings.TrimSpace(l.DataJson) == "" {
		return &ValidationError{Entity: "health_log", Field: "data_json", Reason: "required"}
	}
	if l.RecordedBy == "" {
		return &ValidationError{Entity: "health_log", Field: "recorded_by", Reason: "required"}
	}
	return nil
}

// ValidateUser checks the fields of a user profile before a write.
func ValidateUser(u *User) error {
	if u.ID == "" {
		return &ValidationError{Entity: "user", Field: "id", Reason: "required"}
	}
	if strings.TrimSpace(u.Name) == "" {
		return &ValidationError{Entity: "user", Field: "name", Reason: "required"}
	}
	if !ValidRoles[u.Role] {
		return &ValidationError{Entity: "user", Field: "role", Reason: fmt.Sprintf("unknown role %q", u.Role)}
	}
	if u.Phone != "" && !IsValidIndianPhone(u.Phone) {
		return &ValidationError{Entity: "user", Field: "phone", Reason: "not a valid Indian mobile number"}
	}
	return nil
}
