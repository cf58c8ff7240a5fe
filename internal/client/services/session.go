// Package services contains the application services of the catalog client:
// the session gate, the catalog service (statistics and specimen resolution),
// and the single-flight scan controller.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jpalacios/herbascan/internal/client/api"
	"github.com/jpalacios/herbascan/internal/client/models"
	"github.com/jpalacios/herbascan/internal/client/repositories/metadata"
	"github.com/jpalacios/herbascan/internal/logging"
)

// AuthState is the navigational state the client is authorized to be in.
type AuthState string

const (
	StateUnauthenticated AuthState = "unauthenticated"
	StateAuthenticated   AuthState = "authenticated"
)

// Store keys for the persisted session.
const (
	keyToken     = "token"
	keyTokenType = "tokenType"
	keyUser      = "user"
)

// SessionGate is the single source of truth for "is the user authenticated".
// It owns the in-memory session; no other component mutates it. Readers get
// state changes through Subscribe instead of re-reading the store.
type SessionGate struct {
	client api.Client
	store  metadata.Repository
	log    logging.Logger

	mu      sync.Mutex
	booted  bool
	state   AuthState
	session models.Session
	subs    []func(AuthState)
}

func NewSessionGate(client api.Client, store metadata.Repository, log logging.Logger) *SessionGate {
	return &SessionGate{
		client: client,
		store:  store,
		log:    log.With("component", "session"),
		state:  StateUnauthenticated,
	}
}

// Bootstrap resolves the initial state, exactly once per process. The shell
// must not render any protected screen before this returns.
//
// Only the stored token decides the outcome: non-empty means authenticated.
// No network call is made, and an absent token is not an error. Repeated
// calls return the already-resolved state.
func (g *SessionGate) Bootstrap(ctx context.Context) (AuthState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.booted {
		return g.state, nil
	}

	token, err := g.store.Get(ctx, keyToken)
	if err != nil {
		g.booted = true
		g.state = StateUnauthenticated
		return g.state, fmt.Errorf("reading stored token: %w", err)
	}

	g.booted = true
	if token == "" {
		g.state = StateUnauthenticated
		return g.state, nil
	}

	tokenType, err := g.store.Get(ctx, keyTokenType)
	if err != nil {
		g.log.Warn(ctx, "could not read stored token type", "err", err)
	}

	g.session = models.Session{Token: token, TokenType: tokenType}
	g.session.User = g.readStoredUser(ctx)
	g.state = StateAuthenticated
	g.client.SetAuthorization(g.session.AuthorizationType(), token)

	return g.state, nil
}

// readStoredUser loads the persisted profile snapshot. A missing or
// unreadable snapshot does not demote the session: the token alone decides
// authentication, the profile is best-effort.
func (g *SessionGate) readStoredUser(ctx context.Context) *models.User {
	raw, err := g.store.Get(ctx, keyUser)
	if err != nil {
		g.log.Warn(ctx, "could not read stored user snapshot", "err", err)
		return nil
	}
	if raw == "" {
		return nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		g.log.Warn(ctx, "stored user snapshot is unreadable, continuing without profile", "err", err)
		return nil
	}
	return &u
}

// Login exchanges credentials for a session. The operation succeeds only if
// the server reports success AND a token is present in the response; a
// success response without a token is a protocol error
// (api.ErrInvalidResponse), not a login.
//
// The three persisted writes (token, token type, user snapshot) are
// sequential and independent, matching the store's write model; a crash in
// between can leave a token without a user snapshot. Bootstrap and
// readStoredUser tolerate that window. Write failures are logged, not
// surfaced: the in-memory session is already established.
func (g *SessionGate) Login(ctx context.Context, email, password string) (*models.Session, error) {
	data, err := g.client.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if data.Token == "" {
		return nil, fmt.Errorf("login: %w: success without token", api.ErrInvalidResponse)
	}

	tokenType := data.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	session := models.Session{Token: data.Token, TokenType: tokenType}
	if len(data.User) > 0 {
		var u models.User
		if err := json.Unmarshal(data.User, &u); err != nil {
			g.log.Warn(ctx, "user snapshot in login response is unreadable, continuing without profile", "err", err)
		} else {
			session.User = &u
		}
	}

	if err := g.store.Set(ctx, keyToken, session.Token); err != nil {
		g.log.Warn(ctx, "could not persist token", "err", err)
	}
	if err := g.store.Set(ctx, keyTokenType, session.TokenType); err != nil {
		g.log.Warn(ctx, "could not persist token type", "err", err)
	}
	if err := g.store.Set(ctx, keyUser, string(data.User)); err != nil {
		g.log.Warn(ctx, "could not persist user snapshot", "err", err)
	}

	g.client.SetAuthorization(session.AuthorizationType(), session.Token)

	g.mu.Lock()
	g.session = session
	g.state = StateAuthenticated
	g.mu.Unlock()
	g.notify(StateAuthenticated)

	g.log.Info(ctx, "login ok", "email", email)
	return &session, nil
}

// Logout removes the three persisted entries as one logical operation and
// clears the in-memory session. The local transition happens unconditionally
// and never depends on network reachability; a store failure is reported but
// the caller is logged out regardless.
func (g *SessionGate) Logout(ctx context.Context) error {
	err := g.store.RemoveMany(ctx, keyToken, keyTokenType, keyUser)

	g.client.SetAuthorization("", "")

	g.mu.Lock()
	g.session = models.Session{}
	g.state = StateUnauthenticated
	g.mu.Unlock()
	g.notify(StateUnauthenticated)

	if err != nil {
		return fmt.Errorf("clearing stored session: %w", err)
	}
	return nil
}

// CurrentUser returns the last-known in-memory profile snapshot without
// touching the store. Nil while unauthenticated, and possibly nil while
// authenticated (absent profile).
func (g *SessionGate) CurrentUser() *models.User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session.User
}

// State returns the current navigational state.
func (g *SessionGate) State() AuthState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Subscribe registers fn to run on every state transition. Subscribers are
// invoked synchronously, in registration order.
func (g *SessionGate) Subscribe(fn func(AuthState)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subs = append(g.subs, fn)
}

func (g *SessionGate) notify(state AuthState) {
	g.mu.Lock()
	subs := make([]func(AuthState), len(g.subs))
	copy(subs, g.subs)
	g.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// TokenClaims decodes the session token's claims without verifying the
// signature, for display purposes only. Expiry is deliberately not acted on:
// a rejected authenticated request is that request's own failure, never a
// state transition.
func (g *SessionGate) TokenClaims() (jwt.MapClaims, bool) {
	g.mu.Lock()
	token := g.session.Token
	g.mu.Unlock()

	if token == "" {
		return nil, false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}
