package sync

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jitheswar/ruralAi/internal/model"
	"github.com/Jitheswar/ruralAi/internal/store"
)

var errNetwork = errors.New("network unreachable")

// fakeTransport scripts pull/push behavior and records what it saw.
type fakeTransport struct {
	pullChanges store.ChangeSet
	pullTS      time.Time
	pullErr     error
	pushErr     error

	pullCalls int
	pushCalls int
	pushed    []store.PushBatch
}

func (f *fakeTransport) Pull(ctx context.Context, since time.Time) (store.ChangeSet, time.Time, error) {
	f.pullCalls++
	if f.pullErr != nil {
		return nil, time.Time{}, f.pullErr
	}
	ts := f.pullTS
	if ts.IsZero() {
		ts = time.UnixMilli(1700000100000).UTC()
	}
	return f.pullChanges, ts, nil
}

func (f *fakeTransport) Push(ctx context.Context, batch store.PushBatch) error {
	f.pushCalls++
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushed = append(f.pushed, batch)
	return nil
}

func newSyncedPair(t *testing.T, ft *fakeTransport) (*store.Store, *Engine) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "sync.db"),
		store.WithIDGenerator(store.NewFixedIDs("p-1", "l-1", "p-2")),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, New(s, ft)
}

func createPatient(t *testing.T, s *store.Store) model.Patient {
	t.Helper()
	p, err := s.CreatePatient(context.Background(), store.NewPatient{
		Name: "Ravi", Age: 40, Gender: "male", CreatedBy: "u-1",
	})
	require.NoError(t, err)
	return p
}

func TestSynchronize_PushFlipsSyncFlags(t *testing.T) {
	ft := &fakeTransport{}
	s, e := newSyncedPair(t, ft)
	ctx := context.Background()

	p := createPatient(t, s)
	require.False(t, p.IsSynced)

	require.NoError(t, e.Synchronize(ctx))

	got, err := s.GetPatient(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsSynced)

	require.Len(t, ft.pushed, 1)
	assert.Len(t, ft.pushed[0][store.TablePatients], 1)

	cp, err := s.Checkpoint(ctx)
	require.NoError(t, err)
	assert.False(t, cp.IsZero(), "checkpoint advances on successful pull")
}

func TestSynchronize_PullWinsOverLocalEdit(t *testing.T) {
	serverTS := time.UnixMilli(1700000200000).UTC()
	ft := &fakeTransport{pullTS: serverTS}
	s, e := newSyncedPair(t, ft)
	ctx := context.Background()

	p := createPatient(t, s)

	// Server holds a newer version of the same row.
	ft.pullChanges = store.ChangeSet{
		store.TablePatients: {Updated: []store.Row{{
			"id": p.ID, "name": "Server Name", "age": int64(41), "gender": "male",
			"created_by": "u-1",
			"created_at": p.CreatedAt.UnixMilli(), "updated_at": serverTS.UnixMilli(),
		}}},
	}

	require.NoError(t, e.Synchronize(ctx))

	got, err := s.GetPatient(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Server Name", got.Name)
	assert.True(t, got.IsSynced)

	// Pull landed before push collected the batch, so the overwritten row
	// was never sent back up.
	require.Len(t, ft.pushed, 0)

	cp, err := s.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, serverTS, cp)
}

func TestSynchronize_PullFailureSkipsPush(t *testing.T) {
	ft := &fakeTransport{pullErr: errNetwork}
	s, e := newSyncedPair(t, ft)
	ctx := context.Background()

	createPatient(t, s)

	err := e.Synchronize(ctx)
	require.Error(t, err)
	assert.True(t, IsPullError(err))
	assert.ErrorIs(t, err, errNetwork)
	assert.Equal(t, 0, ft.pushCalls, "push must not run after a failed pull")

	cp, cerr := s.Checkpoint(ctx)
	require.NoError(t, cerr)
	assert.True(t, cp.IsZero(), "failed pull must not advance the checkpoint")
}

func TestSynchronize_PushFailureLeavesFlagsForRetry(t *testing.T) {
	ft := &fakeTransport{pushErr: errNetwork}
	s, e := newSyncedPair(t, ft)
	ctx := context.Background()

	p := createPatient(t, s)

	err := e.Synchronize(ctx)
	require.Error(t, err)
	assert.True(t, IsPushError(err))
	assert.False(t, IsPullError(err))

	got, gerr := s.GetPatient(ctx, p.ID)
	require.NoError(t, gerr)
	assert.False(t, got.IsSynced, "unacknowledged rows stay pending")

	cp, cerr := s.Checkpoint(ctx)
	require.NoError(t, cerr)
	assert.False(t, cp.IsZero(), "pulled data is safe even when push fails")

	// Connectivity returns: the next round pushes everything, nothing lost.
	ft.pushErr = nil
	require.NoError(t, e.Synchronize(ctx))

	got, gerr = s.GetPatient(ctx, p.ID)
	require.NoError(t, gerr)
	assert.True(t, got.IsSynced)
	require.Len(t, ft.pushed, 1)
	assert.Len(t, ft.pushed[0][store.TablePatients], 1)
}

func TestSynchronize_IdempotentWhenNothingPending(t *testing.T) {
	ft := &fakeTransport{}
	s, e := newSyncedPair(t, ft)
	ctx := context.Background()

	createPatient(t, s)

	require.NoError(t, e.Synchronize(ctx))
	require.NoError(t, e.Synchronize(ctx))

	assert.Equal(t, 2, ft.pullCalls)
	assert.Equal(t, 1, ft.pushCalls, "second round has nothing to push")
}

func TestSynchronize_RejectsConcurrentInvocation(t *testing.T) {
	ft := &fakeTransport{}
	_, e := newSyncedPair(t, ft)

	// Simulate an in-flight run.
	require.True(t, e.inFlight.CompareAndSwap(false, true))
	err := e.Synchronize(context.Background())
	assert.ErrorIs(t, err, ErrSyncInProgress)
	e.inFlight.Store(false)

	// Released: the next call runs normally.
	require.NoError(t, e.Synchronize(context.Background()))
	assert.Equal(t, 1, ft.pullCalls)
}

func TestSynchronize_CancelledContext(t *testing.T) {
	ft := &fakeTransport{}
	s, e := newSyncedPair(t, ft)

	createPatient(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Synchronize(ctx)
	require.Error(t, err)

	cp, cerr := s.Checkpoint(context.Background())
	require.NoError(t, cerr)
	assert.True(t, cp.IsZero())
}

func TestSynchronize_SchemaBelowMinimum(t *testing.T) {
	ft := &fakeTransport{}
	s, err := store.Open(filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)
	defer s.Close()

	// A protocol minimum above anything Migrate can reach.
	e := New(s, ft, WithMinSchemaVersion(store.CurrentSchemaVersion+1))

	err = e.Synchronize(context.Background())
	require.Error(t, err)
	assert.True(t, IsSchemaVersionError(err))
	assert.Equal(t, 0, ft.pullCalls, "no network exchange on schema mismatch")
}

func TestStubTransport_FullRound(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	_, err = s.CreatePatient(ctx, store.NewPatient{Name: "Ravi", Gender: "male", CreatedBy: "u-1"})
	require.NoError(t, err)

	e := New(s, StubTransport{})
	require.NoError(t, e.Synchronize(ctx))

	batch, err := s.Unsynced(ctx)
	require.NoError(t, err)
	assert.True(t, batch.Empty())

	cp, err := s.Checkpoint(ctx)
	require.NoError(t, err)
	assert.False(t, cp.IsZero())
}
