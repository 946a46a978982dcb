package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/internal/repositories"
	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDeps struct {
	manager  *Manager
	sessions *repositories.KVSessionRepository
	prefs    *repositories.KVPreferencesRepository
	users    *repositories.KVUserRepository
}

func newTestManager(t *testing.T, store kvstore.Store, opts ...Option) testDeps {
	t.Helper()
	sessions, err := repositories.NewSessionRepository(context.Background(), store, repositories.DefaultSessionTTLDays)
	require.NoError(t, err)
	prefs := repositories.NewPreferencesRepository(store, repositories.DefaultNotificationLimit)
	users := repositories.NewUserRepository(store)
	return testDeps{
		manager:  NewManager(sessions, prefs, users, opts...),
		sessions: sessions,
		prefs:    prefs,
		users:    users,
	}
}

func testUser() models.User {
	return models.User{ID: "u1", Name: "Dana", Email: "dana@example.com"}
}

func TestManager_RestoreEmptyDevice(t *testing.T) {
	d := newTestManager(t, kvstore.NewMemoryStore())

	state := d.manager.Restore(context.Background())
	assert.Equal(t, StatusSignedOut, state.Status)
	assert.Nil(t, state.User)
}

func TestManager_LoginAndRestore(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	d := newTestManager(t, store)

	session, err := d.manager.Login(ctx, testUser(), "dana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)

	state := d.manager.State()
	assert.True(t, state.IsAuthenticated())
	assert.Equal(t, "u1", state.User.ID)
	assert.True(t, d.manager.IsSessionValid(ctx))

	prefs, err := d.prefs.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, prefs)

	email, err := d.users.GetUserEmail(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", email)

	restarted := newTestManager(t, store)
	state = restarted.manager.Restore(ctx)
	assert.Equal(t, StatusSignedIn, state.Status)
	assert.Equal(t, "u1", state.User.ID)
	assert.Equal(t, d.manager.DeviceID(ctx), restarted.manager.DeviceID(ctx))
}

func TestManager_RestoreRejectsMismatchedUser(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	d := newTestManager(t, store)

	_, err := d.manager.Login(ctx, testUser(), "")
	require.NoError(t, err)
	require.NoError(t, d.users.SaveCurrentUser(ctx, &models.User{ID: "someone-else", Name: "X", Email: "x@example.com"}))

	state := newTestManager(t, store).manager.Restore(ctx)
	assert.Equal(t, StatusSignedOut, state.Status)
}

func TestManager_RestoreSessionWithoutUser(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	d := newTestManager(t, store)

	_, err := d.sessions.CreateSession(ctx, "u1", "dana@example.com")
	require.NoError(t, err)

	state := d.manager.Restore(ctx)
	assert.Equal(t, StatusSignedOut, state.Status)
}

func TestManager_Guest(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	d := newTestManager(t, store)

	state := d.manager.EnterAsGuest(ctx)
	assert.True(t, state.IsGuest())
	assert.False(t, d.manager.IsSessionValid(ctx))
	assert.Nil(t, d.manager.SessionInfo(ctx))

	state = newTestManager(t, store).manager.Restore(ctx)
	assert.Equal(t, StatusGuest, state.Status)
}

func TestManager_GuestAfterLoginEndsSession(t *testing.T) {
	ctx := context.Background()
	d := newTestManager(t, kvstore.NewMemoryStore())

	_, err := d.manager.Login(ctx, testUser(), "")
	require.NoError(t, err)

	d.manager.EnterAsGuest(ctx)
	assert.Nil(t, d.manager.SessionInfo(ctx))
	assert.Equal(t, StatusGuest, d.manager.Restore(ctx).Status)
}

func TestManager_Logout(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	d := newTestManager(t, store)

	_, err := d.manager.Login(ctx, testUser(), "")
	require.NoError(t, err)

	d.manager.Logout(ctx)
	assert.Equal(t, StatusSignedOut, d.manager.State().Status)
	assert.Nil(t, d.manager.SessionInfo(ctx))

	list, err := d.sessions.GetSessionsList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsActive)

	assert.Equal(t, StatusSignedOut, newTestManager(t, store).manager.Restore(ctx).Status)
}

func TestManager_LogoutAllDevices(t *testing.T) {
	ctx := context.Background()
	d := newTestManager(t, kvstore.NewMemoryStore())

	_, err := d.manager.Login(ctx, testUser(), "")
	require.NoError(t, err)

	d.manager.LogoutAllDevices(ctx)
	assert.Equal(t, StatusSignedOut, d.manager.State().Status)

	list, err := d.sessions.GetSessionsList(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = d.manager.Devices(ctx)
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestManager_UpdateUserGuard(t *testing.T) {
	ctx := context.Background()
	d := newTestManager(t, kvstore.NewMemoryStore())

	assert.False(t, d.manager.UpdateUser(ctx, testUser()))

	_, err := d.manager.Login(ctx, testUser(), "")
	require.NoError(t, err)

	other := models.User{ID: "u2", Name: "Mallory", Email: "m@example.com"}
	assert.False(t, d.manager.UpdateUser(ctx, other))
	stored, err := d.users.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.ID)

	renamed := testUser()
	renamed.Name = "Dana L."
	assert.True(t, d.manager.UpdateUser(ctx, renamed))
	assert.Equal(t, "Dana L.", d.manager.State().User.Name)
	stored, err = d.users.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dana L.", stored.Name)
}

func TestManager_StateIsASnapshot(t *testing.T) {
	ctx := context.Background()
	d := newTestManager(t, kvstore.NewMemoryStore())

	_, err := d.manager.Login(ctx, testUser(), "")
	require.NoError(t, err)

	state := d.manager.State()
	state.User.Name = "changed"
	assert.Equal(t, "Dana", d.manager.State().User.Name)
}

func TestManager_SignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	d := newTestManager(t, store)

	req := models.SignupRequest{Name: "Noa", Email: "noa@example.com", Password: "correct horse"}
	session, user, err := d.manager.SignUp(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.NotEmpty(t, user.ID)

	account, err := d.users.GetAccountByEmail(ctx, "noa@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", account.PasswordHash)
	assert.Equal(t, ProviderEmail, account.Provider)

	_, _, err = d.manager.SignUp(ctx, req)
	assert.ErrorIs(t, err, ErrAccountExists)

	d.manager.Logout(ctx)

	_, _, err = d.manager.SignIn(ctx, "noa@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = d.manager.SignIn(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, signedIn, err := d.manager.SignIn(ctx, "NOA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, signedIn.ID)
	assert.True(t, d.manager.IsSessionValid(ctx))
}

type fakeVerifier struct {
	identity *Identity
	err      error
}

func (f fakeVerifier) VerifyIDToken(context.Context, string) (*Identity, error) {
	return f.identity, f.err
}

func TestManager_FirebaseLogin(t *testing.T) {
	ctx := context.Background()

	d := newTestManager(t, kvstore.NewMemoryStore())
	_, _, err := d.manager.FirebaseLogin(ctx, "token")
	assert.ErrorIs(t, err, ErrIdentityUnavailable)

	verifier := fakeVerifier{identity: &Identity{UID: "fb-1", Email: "g@example.com", Name: "Gal"}}
	d = newTestManager(t, kvstore.NewMemoryStore(), WithIdentityVerifier(verifier))

	_, first, err := d.manager.FirebaseLogin(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "Gal", first.Name)

	_, second, err := d.manager.FirebaseLogin(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	account, err := d.users.GetAccountByEmail(ctx, "g@example.com")
	require.NoError(t, err)
	assert.Equal(t, "fb-1", account.ExternalID)
	assert.Equal(t, ProviderFirebase, account.Provider)

	rejecting := newTestManager(t, kvstore.NewMemoryStore(), WithIdentityVerifier(fakeVerifier{err: errors.New("expired")}))
	_, _, err = rejecting.manager.FirebaseLogin(ctx, "token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
