package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Jitheswar/ruralAi/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

const selectPatientSQL = `
	SELECT id, name, age, gender, phone, village, district, abha_id,
	       created_by, is_synced, created_at, updated_at
	FROM patients`

const selectHealthLogSQL = `
	SELECT id, patient_id, log_type, data_json, recorded_by, is_synced, created_at
	FROM health_logs`

const selectMedicineSQL = `
	SELECT id, name, generic_name, dosage_form, price, is_nlem,
	       jan_aushadhi_price, side_effects, is_synced, updated_at
	FROM medicines`

const selectUserSQL = `
	SELECT id, email, phone, name, role, abha_id, is_verified, is_synced,
	       created_at, updated_at
	FROM users`

// GetPatient returns the patient with the given id.
func (s *Store) GetPatient(ctx context.Context, id string) (model.Patient, error) {
	p, err := scanPatient(s.db.QueryRowContext(ctx, selectPatientSQL+" WHERE id = ?", id))
	if err != nil {
		return model.Patient{}, fmt.Errorf("get patient %s: %w", id, err)
	}
	return p, nil
}

// ListPatients returns all patients, most recently created first.
// Read-only: never touches sync flags.
func (s *Store) ListPatients(ctx context.Context) ([]model.Patient, error) {
	rows, err := s.db.QueryContext(ctx, selectPatientSQL+" ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var out []model.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("list patients: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetHealthLog returns the health log with the given id.
func (s *Store) GetHealthLog(ctx context.Context, id string) (model.HealthLog, error) {
	l, err := scanHealthLog(s.db.QueryRowContext(ctx, selectHealthLogSQL+" WHERE id = ?", id))
	if err != nil {
		return model.HealthLog{}, fmt.Errorf("get health log %s: %w", id, err)
	}
	return l, nil
}

// ListHealthLogs returns the logs for one patient, oldest first, so the
// append-only history reads in recording order.
func (s *Store) ListHealthLogs(ctx context.Context, patientID string) ([]model.HealthLog, error) {
	rows, err := s.db.QueryContext(ctx,
		selectHealthLogSQL+" WHERE patient_id = ? ORDER BY created_at, id", patientID)
	if err != nil {
		return nil, fmt.Errorf("list health logs: %w", err)
	}
	defer rows.Close()

	var out []model.HealthLog
	for rows.Next() {
		l, err := scanHealthLog(rows)
		if err != nil {
			return nil, fmt.Errorf("list health logs: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListMedicines returns the cached medicine reference data, by name.
func (s *Store) ListMedicines(ctx context.Context) ([]model.Medicine, error) {
	rows, err := s.db.QueryContext(ctx, selectMedicineSQL+" ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	defer rows.Close()

	var out []model.Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, fmt.Errorf("list medicines: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetUser returns the cached profile for the given user id.
func (s *Store) GetUser(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, selectUserSQL+" WHERE id = ?", id))
	if err != nil {
		return model.User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// queryXWhere helpers back the unsynced collection in syncops.go.

func (s *Store) queryPatientsWhere(ctx context.Context, where string) ([]model.Patient, error) {
	rows, err := s.db.QueryContext(ctx, selectPatientSQL+" WHERE "+where+" ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) queryHealthLogsWhere(ctx context.Context, where string) ([]model.HealthLog, error) {
	rows, err := s.db.QueryContext(ctx, selectHealthLogSQL+" WHERE "+where+" ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.HealthLog
	for rows.Next() {
		l, err := scanHealthLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) queryMedicinesWhere(ctx context.Context, where string) ([]model.Medicine, error) {
	rows, err := s.db.QueryContext(ctx, selectMedicineSQL+" WHERE "+where+" ORDER BY updated_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) queryUsersWhere(ctx context.Context, where string) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, selectUserSQL+" WHERE "+where+" ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(r rowScanner) (model.Patient, error) {
	var (
		p                              model.Patient
		phone, village, district, abha sql.NullString
		isSynced                       int
		createdAt, updatedAt           int64
	)
	err := r.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &phone, &village, &district, &abha,
		&p.CreatedBy, &isSynced, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Patient{}, ErrNotFound
	}
	if err != nil {
		return model.Patient{}, err
	}
	p.Phone = phone.String
	p.Village = village.String
	p.District = district.String
	p.AbhaID = abha.String
	p.IsSynced = isSynced != 0
	p.CreatedAt = timeFromMillis(createdAt)
	p.UpdatedAt = timeFromMillis(updatedAt)
	return p, nil
}

func scanHealthLog(r rowScanner) (model.HealthLog, error) {
	var (
		l         model.HealthLog
		logType   string
		isSynced  int
		createdAt int64
	)
	err := r.Scan(&l.ID, &l.PatientID, &logType, &l.DataJson, &l.RecordedBy, &isSynced, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.HealthLog{}, ErrNotFound
	}
	if err != nil {
		return model.HealthLog{}, err
	}
	l.LogType = model.LogType(logType)
	l.IsSynced = isSynced != 0
	l.CreatedAt = timeFromMillis(createdAt)
	return l, nil
}

func scanMedicine(r rowScanner) (model.Medicine, error) {
	var (
		m                 model.Medicine
		price, janPrice   sql.NullFloat64
		sideEffects       sql.NullString
		isNlem, isSynced  int
		updatedAt         int64
	)
	err := r.Scan(&m.ID, &m.Name, &m.GenericName, &m.DosageForm, &price, &isNlem,
		&janPrice, &sideEffects, &isSynced, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Medicine{}, ErrNotFound
	}
	if err != nil {
		return model.Medicine{}, err
	}
	m.Price = price.Float64
	m.JanAushadhiPrice = janPrice.Float64
	m.SideEffects = sideEffects.String
	m.IsNlem = isNlem != 0
	m.IsSynced = isSynced != 0
	m.UpdatedAt = timeFromMillis(updatedAt)
	return m, nil
}

func scanUser(r rowScanner) (model.User, error) {
	var (
		u                     model.User
		email, abha           sql.NullString
		role                  string
		isVerified, isSynced  int
		createdAt, updatedAt  int64
	)
	err := r.Scan(&u.ID, &email, &u.Phone, &u.Name, &role, &abha, &isVerified, &isSynced,
		&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.Email = email.String
	u.AbhaID = abha.String
	u.Role = model.Role(role)
	u.IsVerified = isVerified != 0
	u.IsSynced = isSynced != 0
	u.CreatedAt = timeFromMillis(createdAt)
	u.UpdatedAt = timeFromMillis(updatedAt)
	return u, nil
}

func unixMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func timeFromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
