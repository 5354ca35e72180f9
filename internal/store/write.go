package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/Jitheswar/ruralAi/internal/model"
	"github.com/Jitheswar/ruralAi/internal/triage"
)

// Table names as used in change sets and events.
const (
	TableUsers      = "users"
	TablePatients   = "patients"
	TableHealthLogs = "health_logs"
	TableMedicines  = "medicines"
)

// SyncTables lists the synchronized tables in a fixed order.
var SyncTables = []string{TableUsers, TablePatients, TableHealthLogs, TableMedicines}

// NewPatient holds the caller-supplied fields for a patient creation.
// The store assigns id, timestamps and the sync flag.
type NewPatient struct {
	Name      string
	Age       int
	Gender    string
	Phone     string
	Village   string
	District  string
	AbhaID    string
	CreatedBy string
}

// CreatePatient validates and inserts a new patient row.
// The row is created with is_synced = false; only the sync engine may
// flip it true.
func (s *Store) CreatePatient(ctx context.Context, np NewPatient) (model.Patient, error) {
	now := s.now()
	p := model.Patient{
		ID:        s.ids.NewID(),
		Name:      np.Name,
		Age:       np.Age,
		Gender:    np.Gender,
		Phone:     np.Phone,
		Village:   np.Village,
		District:  np.District,
		AbhaID:    np.AbhaID,
		CreatedBy: np.CreatedBy,
		IsSynced:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := model.ValidatePatient(&p); err != nil {
		return model.Patient{}, fmt.Errorf("create patient: %w", err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO patients
		(id, name, age, gender, phone, village, district, abha_id, created_by, is_synced, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
	`,
		p.ID, p.Name, p.Age, p.Gender,
		nullable(p.Phone), nullable(p.Village), nullable(p.District), nullable(p.AbhaID),
		p.CreatedBy, unixMillis(p.CreatedAt), unixMillis(p.UpdatedAt),
	)
	if err != nil {
		return model.Patient{}, fmt.Errorf("create patient: %w", err)
	}

	s.events.publish(ChangeEvent{Table: TablePatients, ID: p.ID, Op: OpCreate})
	return p, nil
}

// UpdatePatient applies a field-level mutation inside a transaction.
//
// The mutator receives the current row; id and created_at are immutable
// and restored if the mutator touches them. Any successful local mutation
// flips is_synced back to false until re-synced. Sync reconciliation does
// not go through this path (see ApplyPull).
func (s *Store) UpdatePatient(ctx context.Context, id string, mutate func(*model.Patient) error) (model.Patient, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Patient{}, fmt.Errorf("update patient: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	p, err := scanPatient(tx.QueryRowContext(ctx, selectPatientSQL+" WHERE id = ?", id))
	if err != nil {
		return model.Patient{}, fmt.Errorf("update patient %s: %w", id, err)
	}

	orig := p
	if err := mutate(&p); err != nil {
		return model.Patient{}, fmt.Errorf("update patient %s: %w", id, err)
	}
	p.ID = orig.ID
	p.CreatedAt = orig.CreatedAt
	p.UpdatedAt = s.now()
	p.IsSynced = false

	if err := model.ValidatePatient(&p); err != nil {
		return model.Patient{}, fmt.Errorf("update patient %s: %w", id, err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE patients
		SET name = ?, age = ?, gender = ?, phone = ?, village = ?, district = ?,
		    abha_id = ?, created_by = ?, is_synced = 0, updated_at = ?
		WHERE id = ?
	`,
		p.Name, p.Age, p.Gender,
		nullable(p.Phone), nullable(p.Village), nullable(p.District), nullable(p.AbhaID),
		p.CreatedBy, unixMillis(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return model.Patient{}, fmt.Errorf("update patient %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return model.Patient{}, fmt.Errorf("update patient %s: commit: %w", id, err)
	}

	s.events.publish(ChangeEvent{Table: TablePatients, ID: p.ID, Op: OpUpdate})
	return p, nil
}

// NewHealthLog holds the caller-supplied fields for a health log creation.
type NewHealthLog struct {
	PatientID  string
	LogType    model.LogType
	DataJson   string
	RecordedBy string
}

// CreateHealthLog validates and inserts an append-only health log row.
//
// A log referencing an unknown patient is rejected at create time (foreign
// key constraint), surfaced as a ValidationError. Logs are never updated:
// corrections are modeled as new rows.
func (s *Store) CreateHealthLog(ctx context.Context, nl NewHealthLog) (model.HealthLog, error) {
	l := model.HealthLog{
		ID:         s.ids.NewID(),
		PatientID:  nl.PatientID,
		LogType:    nl.LogType,
		DataJson:   nl.DataJson,
		RecordedBy: nl.RecordedBy,
		IsSynced:   false,
		CreatedAt:  s.now(),
	}
	if err := model.ValidateHealthLog(&l); err != nil {
		return model.HealthLog{}, fmt.Errorf("create health log: %w", err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO health_logs
		(id, patient_id, log_type, data_json, recorded_by, is_synced, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
	`,
		l.ID, l.PatientID, string(l.LogType), l.DataJson, l.RecordedBy, unixMillis(l.CreatedAt),
	)
	if err != nil {
		if isForeignKeyErr(err) {
			return model.HealthLog{}, fmt.Errorf("create health log: %w", &model.ValidationError{
				Entity: "health_log", Field: "patient_id",
				Reason: fmt.Sprintf("unknown patient %q", l.PatientID),
			})
		}
		return model.HealthLog{}, fmt.Errorf("create health log: %w", err)
	}

	s.events.publish(ChangeEvent{Table: TableHealthLogs, ID: l.ID, Op: OpCreate})
	return l, nil
}

// CreateTriageLog persists a triage evaluation as a health log row.
func (s *Store) CreateTriageLog(ctx context.Context, patientID, recordedBy string, payload triage.LogPayload) (model.HealthLog, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return model.HealthLog{}, fmt.Errorf("create triage log: marshal payload: %w", err)
	}
	return s.CreateHealthLog(ctx, NewHealthLog{
		PatientID:  patientID,
		LogType:    model.LogTypeTriage,
		DataJson:   string(data),
		RecordedBy: recordedBy,
	})
}

// SaveUser validates and upserts the cached operator profile.
// Saved rows are marked unsynced like any other local mutation; pulls
// overwrite them with server state.
func (s *Store) SaveUser(ctx context.Context, u model.User) (model.User, error) {
	if err := model.ValidateUser(&u); err != nil {
		return model.User{}, fmt.Errorf("save user: %w", err)
	}
	now := s.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	u.IsSynced = false

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users
		(id, email, phone, name, role, abha_id, is_verified, is_synced, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			phone = excluded.phone,
			name = excluded.name,
			role = excluded.role,
			abha_id = excluded.abha_id,
			is_verified = excluded.is_verified,
			is_synced = 0,
			updated_at = excluded.updated_at
	`,
		u.ID, nullable(u.Email), u.Phone, u.Name, string(u.Role), nullable(u.AbhaID),
		boolInt(u.IsVerified), unixMillis(u.CreatedAt), unixMillis(u.UpdatedAt),
	)
	if err != nil {
		return model.User{}, fmt.Errorf("save user: %w", err)
	}

	s.events.publish(ChangeEvent{Table: TableUsers, ID: u.ID, Op: OpUpdate})
	return u, nil
}

func isForeignKeyErr(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
