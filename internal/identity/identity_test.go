package identity

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jitheswar/ruralAi/internal/model"
	"github.com/Jitheswar/ruralAi/internal/store"
)

type fakeProvider struct {
	role  model.Role
	err   error
	calls int
}

func (f *fakeProvider) Role(ctx context.Context, userID string) (model.Role, error) {
	f.calls++
	return f.role, f.err
}

func openStoreWithUser(t *testing.T, role model.Role) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "identity.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.SaveUser(context.Background(), model.User{
		ID: "u-1", Name: "Sunita", Role: role,
	})
	require.NoError(t, err)
	return s
}

func TestRefreshSession_ReturnsAuthoritativeRole(t *testing.T) {
	s := openStoreWithUser(t, model.RoleSahayak)
	p := &fakeProvider{role: model.RoleSahayak}

	role, err := RefreshSession(context.Background(), s, p, "u-1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleSahayak, role)
	assert.Equal(t, 1, p.calls)
}

func TestRefreshSession_UpdatesStaleCache(t *testing.T) {
	s := openStoreWithUser(t, model.RoleAdmin)
	p := &fakeProvider{role: model.RoleCitizen} // server demoted the account
	ctx := context.Background()

	role, err := RefreshSession(ctx, s, p, "u-1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCitizen, role)

	u, err := s.GetUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCitizen, u.Role, "cached row follows the authoritative role")
}

func TestRefreshSession_ProviderUnreachable(t *testing.T) {
	s := openStoreWithUser(t, model.RoleAdmin)
	p := &fakeProvider{err: errors.New("offline")}

	_, err := RefreshSession(context.Background(), s, p, "u-1")
	require.Error(t, err)

	// The cached role is untouched; it simply must not be used for access.
	u, gerr := s.GetUser(context.Background(), "u-1")
	require.NoError(t, gerr)
	assert.Equal(t, model.RoleAdmin, u.Role)
}

func TestRefreshSession_RejectsUnknownRole(t *testing.T) {
	s := openStoreWithUser(t, model.RoleCitizen)
	p := &fakeProvider{role: "superuser"}

	_, err := RefreshSession(context.Background(), s, p, "u-1")
	assert.Error(t, err)
}

func TestRefreshSession_UnknownUser(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "identity.db"))
	require.NoError(t, err)
	defer s.Close()

	p := &fakeProvider{role: model.RoleCitizen}
	_, err = RefreshSession(context.Background(), s, p, "u-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
