package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jpalacios/herbascan/internal/client/api"
	"github.com/jpalacios/herbascan/internal/client/models"
	"github.com/jpalacios/herbascan/internal/client/repositories/metadata"
	"github.com/jpalacios/herbascan/internal/logging"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:sessionsvc?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS metadata (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM metadata`)
	require.NoError(t, err)
	return db
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ---- fake api client ----

type fakeClient struct {
	LoginRet *api.LoginData
	LoginErr error

	RegisterErr error

	StatsRet *models.CollectionStats
	StatsErr error

	FetchRet   *models.SpecimenRecord
	FetchErr   error
	FetchCalls atomic.Int32

	LastLoginEmail    string
	LastLoginPassword string
	LastFetchURL      string
	LastAuthType      string
	LastAuthToken     string
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*api.LoginData, error) {
	f.LastLoginEmail = email
	f.LastLoginPassword = password
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Register(ctx context.Context, name, email, password string) error {
	return f.RegisterErr
}

func (f *fakeClient) Stats(ctx context.Context) (*models.CollectionStats, error) {
	return f.StatsRet, f.StatsErr
}

func (f *fakeClient) FetchSpecimen(ctx context.Context, url string) (*models.SpecimenRecord, error) {
	f.FetchCalls.Add(1)
	f.LastFetchURL = url
	return f.FetchRet, f.FetchErr
}

func (f *fakeClient) SetAuthorization(tokenType, token string) {
	f.LastAuthType = tokenType
	f.LastAuthToken = token
}

func (f *fakeClient) Close() error { return nil }

// failingStore wraps a Repository and injects errors.
type failingStore struct {
	metadata.Repository
	GetErr    error
	RemoveErr error
}

func (s *failingStore) Get(ctx context.Context, key string) (string, error) {
	if s.GetErr != nil {
		return "", s.GetErr
	}
	return s.Repository.Get(ctx, key)
}

func (s *failingStore) RemoveMany(ctx context.Context, keys ...string) error {
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	return s.Repository.RemoveMany(ctx, keys...)
}

func newGate(t *testing.T, fc api.Client) (*SessionGate, metadata.Repository) {
	t.Helper()
	store := metadata.NewSQLiteRepository(setupDB(t))
	return NewSessionGate(fc, store, testLogger()), store
}

func signedTestToken(t *testing.T) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "jane@qca.edu"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

// ---- bootstrap ----

func TestBootstrap_NoToken(t *testing.T) {
	gate, _ := newGate(t, &fakeClient{})

	state, err := gate.Bootstrap(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateUnauthenticated, state)
	require.Nil(t, gate.CurrentUser())
}

func TestBootstrap_EmptyTokenIsUnauthenticated(t *testing.T) {
	fc := &fakeClient{}
	gate, store := newGate(t, fc)
	require.NoError(t, store.Set(context.Background(), "token", ""))

	state, err := gate.Bootstrap(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateUnauthenticated, state)
	require.Empty(t, fc.LastAuthToken)
}

func TestBootstrap_StoredToken(t *testing.T) {
	fc := &fakeClient{}
	gate, store := newGate(t, fc)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "token", "t0k"))
	require.NoError(t, store.Set(ctx, "tokenType", "Bearer"))
	require.NoError(t, store.Set(ctx, "user", `{"name":"Jane","email":"jane@qca.edu","isActive":true}`))

	state, err := gate.Bootstrap(ctx)
	require.NoError(t, err)
	require.Equal(t, StateAuthenticated, state)

	user := gate.CurrentUser()
	require.NotNil(t, user)
	require.Equal(t, "Jane", user.Name)

	// the api client was armed with the stored token
	require.Equal(t, "t0k", fc.LastAuthToken)
	require.Equal(t, "Bearer", fc.LastAuthType)
}

func TestBootstrap_MalformedUserSnapshotKeepsSession(t *testing.T) {
	gate, store := newGate(t, &fakeClient{})
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "token", "t0k"))
	require.NoError(t, store.Set(ctx, "user", `{broken json`))

	state, err := gate.Bootstrap(ctx)
	require.NoError(t, err)
	require.Equal(t, StateAuthenticated, state)
	require.Nil(t, gate.CurrentUser())
}

func TestBootstrap_ResolvesExactlyOnce(t *testing.T) {
	gate, store := newGate(t, &fakeClient{})
	ctx := context.Background()

	state, err := gate.Bootstrap(ctx)
	require.NoError(t, err)
	require.Equal(t, StateUnauthenticated, state)

	// a token written after the fact must not change the resolved state
	require.NoError(t, store.Set(ctx, "token", "t0k"))
	state, err = gate.Bootstrap(ctx)
	require.NoError(t, err)
	require.Equal(t, StateUnauthenticated, state)
}

func TestBootstrap_StoreFailure(t *testing.T) {
	store := &failingStore{
		Repository: metadata.NewSQLiteRepository(setupDB(t)),
		GetErr:     errors.New("disk broke"),
	}
	gate := NewSessionGate(&fakeClient{}, store, testLogger())

	state, err := gate.Bootstrap(context.Background())
	require.Error(t, err)
	require.Equal(t, StateUnauthenticated, state)
}

// ---- login ----

func TestLogin_Success(t *testing.T) {
	userJSON := json.RawMessage(`{"name":"Jane","email":"jane@qca.edu","institution":"QCA","isActive":true}`)
	fc := &fakeClient{LoginRet: &api.LoginData{Token: "t0k", TokenType: "Bearer", User: userJSON}}
	gate, store := newGate(t, fc)
	ctx := context.Background()

	var transitions []AuthState
	gate.Subscribe(func(s AuthState) { transitions = append(transitions, s) })

	session, err := gate.Login(ctx, "jane@qca.edu", "secret")
	require.NoError(t, err)
	require.Equal(t, "t0k", session.Token)
	require.Equal(t, "jane@qca.edu", fc.LastLoginEmail)
	require.Equal(t, StateAuthenticated, gate.State())
	require.Equal(t, []AuthState{StateAuthenticated}, transitions)

	user := gate.CurrentUser()
	require.NotNil(t, user)
	require.Equal(t, "QCA", user.Institution)

	// the three entries were persisted
	for key, want := range map[string]string{
		"token":     "t0k",
		"tokenType": "Bearer",
		"user":      string(userJSON),
	} {
		v, err := store.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, want, v)
	}

	require.Equal(t, "t0k", fc.LastAuthToken)
}

func TestLogin_SuccessWithoutTokenIsProtocolError(t *testing.T) {
	fc := &fakeClient{LoginRet: &api.LoginData{Token: "", User: json.RawMessage(`{}`)}}
	gate, store := newGate(t, fc)
	ctx := context.Background()

	_, err := gate.Login(ctx, "jane@qca.edu", "secret")
	require.ErrorIs(t, err, api.ErrInvalidResponse)
	require.Equal(t, StateUnauthenticated, gate.State())

	// nothing was persisted
	v, err := store.Get(ctx, "token")
	require.NoError(t, err)
	require.Empty(t, v)
}

func TestLogin_ErrorKindsPassThrough(t *testing.T) {
	for _, sentinel := range []error{api.ErrRejected, api.ErrUnavailable} {
		gate, _ := newGate(t, &fakeClient{LoginErr: sentinel})

		_, err := gate.Login(context.Background(), "jane@qca.edu", "secret")
		require.ErrorIs(t, err, sentinel)
		require.Equal(t, StateUnauthenticated, gate.State())
	}
}

func TestLogin_MalformedUserSnapshotProceedsWithoutProfile(t *testing.T) {
	fc := &fakeClient{LoginRet: &api.LoginData{Token: "t0k", User: json.RawMessage(`"not an object"`)}}
	gate, _ := newGate(t, fc)

	session, err := gate.Login(context.Background(), "jane@qca.edu", "secret")
	require.NoError(t, err)
	require.Nil(t, session.User)
	require.Equal(t, StateAuthenticated, gate.State())
	require.Nil(t, gate.CurrentUser())
}

func TestLogin_DefaultsTokenType(t *testing.T) {
	fc := &fakeClient{LoginRet: &api.LoginData{Token: "t0k"}}
	gate, store := newGate(t, fc)

	session, err := gate.Login(context.Background(), "jane@qca.edu", "secret")
	require.NoError(t, err)
	require.Equal(t, "Bearer", session.TokenType)

	v, err := store.Get(context.Background(), "tokenType")
	require.NoError(t, err)
	require.Equal(t, "Bearer", v)
}

// ---- logout ----

func TestLogout_ThenBootstrapIsUnauthenticated(t *testing.T) {
	fc := &fakeClient{LoginRet: &api.LoginData{Token: "t0k", User: json.RawMessage(`{"name":"Jane"}`)}}
	db := setupDB(t)
	store := metadata.NewSQLiteRepository(db)
	gate := NewSessionGate(fc, store, testLogger())
	ctx := context.Background()

	_, err := gate.Login(ctx, "jane@qca.edu", "secret")
	require.NoError(t, err)
	require.NoError(t, gate.Logout(ctx))

	require.Equal(t, StateUnauthenticated, gate.State())
	require.Nil(t, gate.CurrentUser())
	require.Empty(t, fc.LastAuthToken)

	// simulate a restart: a fresh gate over the same store
	restarted := NewSessionGate(fc, store, testLogger())
	state, err := restarted.Bootstrap(ctx)
	require.NoError(t, err)
	require.Equal(t, StateUnauthenticated, state)
}

func TestLogout_AlwaysSucceedsLocally(t *testing.T) {
	store := &failingStore{
		Repository: metadata.NewSQLiteRepository(setupDB(t)),
		RemoveErr:  errors.New("disk broke"),
	}
	gate := NewSessionGate(&fakeClient{}, store, testLogger())

	var transitions []AuthState
	gate.Subscribe(func(s AuthState) { transitions = append(transitions, s) })

	err := gate.Logout(context.Background())
	require.Error(t, err)
	// the local transition happened regardless
	require.Equal(t, StateUnauthenticated, gate.State())
	require.Equal(t, []AuthState{StateUnauthenticated}, transitions)
}

func TestLogout_WithoutSessionIsFine(t *testing.T) {
	gate, _ := newGate(t, &fakeClient{})
	require.NoError(t, gate.Logout(context.Background()))
}

// ---- token claims ----

func TestTokenClaims_DisplayOnly(t *testing.T) {
	fc := &fakeClient{LoginRet: &api.LoginData{Token: signedTestToken(t)}}
	gate, _ := newGate(t, fc)

	_, ok := gate.TokenClaims()
	require.False(t, ok)

	_, err := gate.Login(context.Background(), "jane@qca.edu", "secret")
	require.NoError(t, err)

	claims, ok := gate.TokenClaims()
	require.True(t, ok)
	require.Equal(t, "jane@qca.edu", claims["sub"])
}

func TestTokenClaims_OpaqueToken(t *testing.T) {
	fc := &fakeClient{LoginRet: &api.LoginData{Token: "not-a-jwt"}}
	gate, _ := newGate(t, fc)

	_, err := gate.Login(context.Background(), "jane@qca.edu", "secret")
	require.NoError(t, err)

	_, ok := gate.TokenClaims()
	require.False(t, ok)
}
