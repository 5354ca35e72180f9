package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Jitheswar/ruralAi/internal/model"
)

// Row is one entity row in transport form: column name to JSON-compatible
// value. Timestamps travel as unix milliseconds.
type Row map[string]any

// TableChanges is the per-table delta returned by a pull.
type TableChanges struct {
	Created []Row    `json:"created"`
	Updated []Row    `json:"updated"`
	Deleted []string `json:"deleted"`
}

// ChangeSet maps table name to pulled changes.
type ChangeSet map[string]TableChanges

// PushBatch maps table name to the local rows awaiting push.
type PushBatch map[string][]Row

// Empty reports whether the batch holds no rows.
func (b PushBatch) Empty() bool {
	for _, rows := range b {
		if len(rows) > 0 {
			return false
		}
	}
	return true
}

// Unsynced collects every row with is_synced = false, grouped by table.
// Read-only: flags flip only in MarkSynced, after transport acknowledgement.
func (s *Store) Unsynced(ctx context.Context) (PushBatch, error) {
	batch := make(PushBatch)

	patients, err := s.queryPatientsWhere(ctx, "is_synced = 0")
	if err != nil {
		return nil, fmt.Errorf("collect unsynced: %w", err)
	}
	for _, p := range patients {
		batch[TablePatients] = append(batch[TablePatients], patientRow(p))
	}

	logs, err := s.queryHealthLogsWhere(ctx, "is_synced = 0")
	if err != nil {
		return nil, fmt.Errorf("collect unsynced: %w", err)
	}
	for _, l := range logs {
		batch[TableHealthLogs] = append(batch[TableHealthLogs], healthLogRow(l))
	}

	users, err := s.queryUsersWhere(ctx, "is_synced = 0")
	if err != nil {
		return nil, fmt.Errorf("collect unsynced: %w", err)
	}
	for _, u := range users {
		batch[TableUsers] = append(batch[TableUsers], userRow(u))
	}

	medicines, err := s.queryMedicinesWhere(ctx, "is_synced = 0")
	if err != nil {
		return nil, fmt.Errorf("collect unsynced: %w", err)
	}
	for _, m := range medicines {
		batch[TableMedicines] = append(batch[TableMedicines], medicineRow(m))
	}

	return batch, nil
}

// ApplyPull writes pulled changes to the local store.
//
// Pulled rows land with is_synced = true unconditionally: the server is
// authoritative once pulled, so a pulled row overwrites any conflicting
// unsynced local state for the same id (pull wins).
//
// Upserts run in one transaction per table, parents before children
// (patients before health_logs); deletes run afterwards in the reverse
// order. Any failure rolls back that table's transaction and aborts the
// pull, leaving the checkpoint unadvanced.
func (s *Store) ApplyPull(ctx context.Context, cs ChangeSet) error {
	upsertOrder := []string{TableUsers, TableMedicines, TablePatients, TableHealthLogs}

	for _, table := range upsertOrder {
		tc, ok := cs[table]
		if !ok {
			continue
		}
		if err := s.applyTableUpserts(ctx, table, tc); err != nil {
			return err
		}
	}

	for i := len(upsertOrder) - 1; i >= 0; i-- {
		table := upsertOrder[i]
		tc, ok := cs[table]
		if !ok || len(tc.Deleted) == 0 {
			continue
		}
		if err := s.applyTableDeletes(ctx, table, tc.Deleted); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) applyTableUpserts(ctx context.Context, table string, tc TableChanges) error {
	if len(tc.Created) == 0 && len(tc.Updated) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply pull %s: begin tx: %w", table, err)
	}
	defer tx.Rollback() // No-op if committed

	var applied []string
	for _, rows := range [][]Row{tc.Created, tc.Updated} {
		for _, row := range rows {
			id, err := s.upsertPulledRow(ctx, tx, table, row)
			if err != nil {
				return fmt.Errorf("apply pull %s: %w", table, err)
			}
			applied = append(applied, id)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply pull %s: commit: %w", table, err)
	}

	for _, id := range applied {
		s.events.publish(ChangeEvent{Table: table, ID: id, Op: OpPull})
	}
	return nil
}

func (s *Store) applyTableDeletes(ctx context.Context, table string, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply pull %s deletes: begin tx: %w", table, err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id); err != nil {
			return fmt.Errorf("apply pull %s: delete %s: %w", table, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply pull %s deletes: commit: %w", table, err)
	}

	for _, id := range ids {
		s.events.publish(ChangeEvent{Table: table, ID: id, Op: OpPull})
	}
	return nil
}

// upsertPulledRow writes one pulled row with is_synced forced to 1.
func (s *Store) upsertPulledRow(ctx context.Context, tx *sql.Tx, table string, row Row) (string, error) {
	id := rowString(row, "id")
	if id == "" {
		return "", fmt.Errorf("pulled row has no id")
	}

	var err error
	switch table {
	case TablePatients:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO patients
			(id, name, age, gender, phone, village, district, abha_id, created_by, is_synced, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name, age = excluded.age, gender = excluded.gender,
				phone = excluded.phone, village = excluded.village, district = excluded.district,
				abha_id = excluded.abha_id, created_by = excluded.created_by,
				is_synced = 1, updated_at = excluded.updated_at
		`,
			id, rowString(row, "name"), rowInt64(row, "age"), rowString(row, "gender"),
			nullable(rowString(row, "phone")), nullable(rowString(row, "village")),
			nullable(rowString(row, "district")), nullable(rowString(row, "abha_id")),
			rowString(row, "created_by"), rowInt64(row, "created_at"), rowInt64(row, "updated_at"),
		)

	case TableHealthLogs:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO health_logs
			(id, patient_id, log_type, data_json, recorded_by, is_synced, created_at)
			VALUES (?, ?, ?, ?, ?, 1, ?)
			ON CONFLICT(id) DO UPDATE SET is_synced = 1
		`,
			id, rowString(row, "patient_id"), rowString(row, "log_type"),
			rowString(row, "data_json"), rowString(row, "recorded_by"), rowInt64(row, "created_at"),
		)

	case TableMedicines:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO medicines
			(id, name, generic_name, dosage_form, price, is_nlem, jan_aushadhi_price, side_effects, is_synced, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name, generic_name = excluded.generic_name,
				dosage_form = excluded.dosage_form, price = excluded.price,
				is_nlem = excluded.is_nlem, jan_aushadhi_price = excluded.jan_aushadhi_price,
				side_effects = excluded.side_effects, is_synced = 1,
				updated_at = excluded.updated_at
		`,
			id, rowString(row, "name"), rowString(row, "generic_name"), rowString(row, "dosage_form"),
			rowFloat(row, "price"), boolInt(rowBool(row, "is_nlem")), rowFloat(row, "jan_aushadhi_price"),
			nullable(rowString(row, "side_effects")), rowInt64(row, "updated_at"),
		)

	case TableUsers:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO users
			(id, email, phone, name, role, abha_id, is_verified, is_synced, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				email = excluded.email, phone = excluded.phone, name = excluded.name,
				role = excluded.role, abha_id = excluded.abha_id,
				is_verified = excluded.is_verified, is_synced = 1,
				updated_at = excluded.updated_at
		`,
			id, nullable(rowString(row, "email")), rowString(row, "phone"), rowString(row, "name"),
			rowString(row, "role"), nullable(rowString(row, "abha_id")),
			boolInt(rowBool(row, "is_verified")), rowInt64(row, "created_at"), rowInt64(row, "updated_at"),
		)

	default:
		return "", fmt.Errorf("unknown table %q", table)
	}

	if err != nil {
		return "", fmt.Errorf("upsert %s: %w", id, err)
	}
	return id, nil
}

// MarkSynced flips is_synced on every row in the batch, in one transaction.
// Called by the sync engine only after the transport acknowledged the push.
func (s *Store) MarkSynced(ctx context.Context, batch PushBatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mark synced: begin tx: %w", err)
	}
	defer tx.Rollback()

	for table, rows := range batch {
		if !validSyncTable(table) {
			return fmt.Errorf("mark synced: unknown table %q", table)
		}
		for _, row := range rows {
			id := rowString(row, "id")
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf("UPDATE %s SET is_synced = 1 WHERE id = ?", table), id); err != nil {
				return fmt.Errorf("mark synced: %s %s: %w", table, id, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mark synced: commit: %w", err)
	}
	return nil
}

// Checkpoint returns the timestamp of the most recent fully applied pull.
// The zero time means no pull has ever completed.
func (s *Store) Checkpoint(ctx context.Context) (time.Time, error) {
	var ms int64
	err := s.db.QueryRowContext(ctx, "SELECT last_pulled_at FROM sync_state WHERE id = 1").Scan(&ms)
	if err != nil {
		return time.Time{}, fmt.Errorf("read checkpoint: %w", err)
	}
	if ms == 0 {
		return time.Time{}, nil
	}
	return timeFromMillis(ms), nil
}

// SetCheckpoint records the server timestamp of a fully applied pull.
func (s *Store) SetCheckpoint(ctx context.Context, ts time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE sync_state SET last_pulled_at = ? WHERE id = 1", unixMillis(ts)); err != nil {
		return fmt.Errorf("set checkpoint: %w", err)
	}
	return nil
}

func validSyncTable(table string) bool {
	for _, t := range SyncTables {
		if t == table {
			return true
		}
	}
	return false
}

// Transport-form row builders. Timestamps as unix milliseconds.

func patientRow(p model.Patient) Row {
	return Row{
		"id": p.ID, "name": p.Name, "age": int64(p.Age), "gender": p.Gender,
		"phone": p.Phone, "village": p.Village, "district": p.District,
		"abha_id": p.AbhaID, "created_by": p.CreatedBy,
		"created_at": unixMillis(p.CreatedAt), "updated_at": unixMillis(p.UpdatedAt),
	}
}

func healthLogRow(l model.HealthLog) Row {
	return Row{
		"id": l.ID, "patient_id": l.PatientID, "log_type": string(l.LogType),
		"data_json": l.DataJson, "recorded_by": l.RecordedBy,
		"created_at": unixMillis(l.CreatedAt),
	}
}

func medicineRow(m model.Medicine) Row {
	return Row{
		"id": m.ID, "name": m.Name, "generic_name": m.GenericName,
		"dosage_form": m.DosageForm, "price": m.Price, "is_nlem": m.IsNlem,
		"jan_aushadhi_price": m.JanAushadhiPrice, "side_effects": m.SideEffects,
		"updated_at": unixMillis(m.UpdatedAt),
	}
}

func userRow(u model.User) Row {
	return Row{
		"id": u.ID, "email": u.Email, "phone": u.Phone, "name": u.Name,
		"role": string(u.Role), "abha_id": u.AbhaID, "is_verified": u.IsVerified,
		"created_at": unixMillis(u.CreatedAt), "updated_at": unixMillis(u.UpdatedAt),
	}
}

// Row value coercions. Pulled rows may arrive via JSON decoding, where
// numbers are float64 and booleans may be 0/1.

func rowString(row Row, key string) string {
	if v, ok := row[key].(string); ok {
		return v
	}
	return ""
}

func rowInt64(row Row, key string) int64 {
	switch v := row[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func rowFloat(row Row, key string) float64 {
	switch v := row[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func rowBool(row Row, key string) bool {
	switch v := row[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	}
	return false
}
