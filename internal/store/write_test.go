package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jitheswar/ruralAi/internal/model"
	"github.com/Jitheswar/ruralAi/internal/triage"
)

func TestCreatePatient_AssignsDefaults(t *testing.T) {
	s := newTestStore(t, WithIDGenerator(NewFixedIDs("p-1")), WithNow(testClock))
	ctx := context.Background()

	p, err := s.CreatePatient(ctx, NewPatient{
		Name:      "Lakshmi Devi",
		Age:       45,
		Gender:    "female",
		Phone:     "9876543210",
		Village:   "Rampur",
		CreatedBy: "u-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "p-1", p.ID)
	assert.False(t, p.IsSynced)
	assert.Equal(t, testClock(), p.CreatedAt)
	assert.Equal(t, testClock(), p.UpdatedAt)

	got, err := s.GetPatient(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestCreatePatient_RejectsInvalid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		np    NewPatient
		field string
	}{
		{"missing name", NewPatient{Gender: "female", CreatedBy: "u-1"}, "name"},
		{"negative age", NewPatient{Name: "X", Age: -1, Gender: "male", CreatedBy: "u-1"}, "age"},
		{"bad gender", NewPatient{Name: "X", Gender: "unknown", CreatedBy: "u-1"}, "gender"},
		{"missing creator", NewPatient{Name: "X", Gender: "male"}, "created_by"},
		{"bad phone", NewPatient{Name: "X", Gender: "male", Phone: "12345", CreatedBy: "u-1"}, "phone"},
		{"bad abha", NewPatient{Name: "X", Gender: "male", AbhaID: "nope", CreatedBy: "u-1"}, "abha_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreatePatient(ctx, tt.np)
			require.Error(t, err)
			assert.True(t, model.IsValidationError(err))

			var ve *model.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestUpdatePatient_FlipsSyncFlagAndPreservesIdentity(t *testing.T) {
	s := newTestStore(t, WithIDGenerator(NewFixedIDs("p-1")), WithNow(testClock))
	ctx := context.Background()

	p, err := s.CreatePatient(ctx, NewPatient{Name: "Ravi", Age: 60, Gender: "male", CreatedBy: "u-1"})
	require.NoError(t, err)

	// Simulate a completed push so the edit has a flag to flip back.
	require.NoError(t, s.MarkSynced(ctx, PushBatch{TablePatients: {patientRow(p)}}))
	synced, err := s.GetPatient(ctx, "p-1")
	require.NoError(t, err)
	require.True(t, synced.IsSynced)

	updated, err := s.UpdatePatient(ctx, "p-1", func(p *model.Patient) error {
		p.Village = "Bhilwara"
		p.ID = "hijacked"
		p.CreatedAt = p.CreatedAt.AddDate(1, 0, 0)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "p-1", updated.ID, "id is immutable")
	assert.Equal(t, p.CreatedAt, updated.CreatedAt, "created_at is immutable")
	assert.Equal(t, "Bhilwara", updated.Village)
	assert.False(t, updated.IsSynced, "local edit must mark the row unsynced")

	got, err := s.GetPatient(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdatePatient_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpdatePatient(context.Background(), "missing", func(*model.Patient) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePatient_MutatorErrorAborts(t *testing.T) {
	s := newTestStore(t, WithIDGenerator(NewFixedIDs("p-1")))
	ctx := context.Background()

	_, err := s.CreatePatient(ctx, NewPatient{Name: "Ravi", Gender: "male", CreatedBy: "u-1"})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = s.UpdatePatient(ctx, "p-1", func(p *model.Patient) error {
		p.Name = "changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetPatient(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Ravi", got.Name, "failed mutation must not persist")
}

func TestCreateHealthLog_RejectsDanglingPatient(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateHealthLog(context.Background(), NewHealthLog{
		PatientID:  "no-such-patient",
		LogType:    model.LogTypeVitals,
		DataJson:   `{"spO2":97}`,
		RecordedBy: "u-1",
	})
	require.Error(t, err)
	assert.True(t, model.IsValidationError(err), "foreign key rejection surfaces as validation error")
}

func TestCreateHealthLog_AppendsInOrder(t *testing.T) {
	s := newTestStore(t, WithIDGenerator(NewFixedIDs("p-1", "l-1", "l-2")), WithNow(testClock))
	ctx := context.Background()

	_, err := s.CreatePatient(ctx, NewPatient{Name: "Ravi", Gender: "male", CreatedBy: "u-1"})
	require.NoError(t, err)

	for _, data := range []string{`{"weight":61}`, `{"weight":60}`} {
		_, err := s.CreateHealthLog(ctx, NewHealthLog{
			PatientID: "p-1", LogType: model.LogTypeVitals, DataJson: data, RecordedBy: "u-1",
		})
		require.NoError(t, err)
	}

	logs, err := s.ListHealthLogs(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "l-1", logs[0].ID)
	assert.Equal(t, "l-2", logs[1].ID)
	assert.False(t, logs[0].IsSynced)
}

func TestCreateTriageLog_RoundTripsPayload(t *testing.T) {
	s := newTestStore(t, WithIDGenerator(NewFixedIDs("p-1", "l-1")))
	ctx := context.Background()

	_, err := s.CreatePatient(ctx, NewPatient{Name: "Ravi", Gender: "male", CreatedBy: "u-1"})
	require.NoError(t, err)

	in := triage.Input{Symptoms: []string{"fever"}, DurationDays: 2}
	results := triage.NewDefault().Evaluate(in)
	l, err := s.CreateTriageLog(ctx, "p-1", "u-1", triage.NewLogPayload(in, results))
	require.NoError(t, err)
	assert.Equal(t, model.LogTypeTriage, l.LogType)

	got, err := s.GetHealthLog(ctx, l.ID)
	require.NoError(t, err)

	var payload triage.LogPayload
	require.NoError(t, json.Unmarshal([]byte(got.DataJson), &payload))
	assert.Equal(t, []string{"fever"}, payload.Symptoms)
	require.Len(t, payload.Results, 1)
	assert.Equal(t, "fever", payload.Results[0].RuleID)
	assert.Equal(t, triage.SeverityWarning, payload.Results[0].Severity)
}

func TestSaveUser_UpsertsAndMarksUnsynced(t *testing.T) {
	s := newTestStore(t, WithNow(testClock))
	ctx := context.Background()

	u, err := s.SaveUser(ctx, model.User{
		ID: "u-1", Name: "Sunita", Phone: "+919876543210", Role: model.RoleSahayak,
	})
	require.NoError(t, err)
	assert.False(t, u.IsSynced)
	assert.Equal(t, testClock(), u.CreatedAt)

	u.Name = "Sunita Kumari"
	u.IsVerified = true
	_, err = s.SaveUser(ctx, u)
	require.NoError(t, err)

	got, err := s.GetUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Sunita Kumari", got.Name)
	assert.True(t, got.IsVerified)
	assert.False(t, got.IsSynced)
}

func TestSaveUser_RejectsUnknownRole(t *testing.T) {
	s := newTestStore(t)

	_, err := s.SaveUser(context.Background(), model.User{ID: "u-1", Name: "X", Role: "superuser"})
	require.Error(t, err)
	assert.True(t, model.IsValidationError(err))
}

func TestEvents_PublishedAfterCommit(t *testing.T) {
	s := newTestStore(t, WithIDGenerator(NewFixedIDs("p-1")))
	ctx := context.Background()

	_, err := s.CreatePatient(ctx, NewPatient{Name: "Ravi", Gender: "male", CreatedBy: "u-1"})
	require.NoError(t, err)

	select {
	case ev := <-s.Events():
		assert.Equal(t, ChangeEvent{Table: TablePatients, ID: "p-1", Op: OpCreate}, ev)
	default:
		t.Fatal("expected a buffered change event")
	}
}

func TestEvents_LossyWhenSubscriberLags(t *testing.T) {
	s := newTestStore(t, WithNow(testClock))
	ctx := context.Background()

	// Overflow the buffer without draining the channel.
	for i := 0; i < defaultEventBuffer+5; i++ {
		_, err := s.CreatePatient(ctx, NewPatient{Name: "Ravi", Gender: "male", CreatedBy: "u-1"})
		require.NoError(t, err)
	}

	assert.Equal(t, int64(5), s.DroppedEvents())
}
