// Package api talks to the herbarium catalog service over JSON/HTTP.
package api

import (
	"context"
	"encoding/json"

	"github.com/jpalacios/herbascan/internal/client/models"
)

// LoginData is the credential material returned by a successful login.
// User is kept raw: the session layer decides what to do with a snapshot
// that does not decode.
type LoginData struct {
	Token     string
	TokenType string
	User      json.RawMessage
}

// Client is the remote catalog API.
//
// Contract:
//   - Login: exchange credentials for a token and a user snapshot.
//   - Register: create a new account.
//   - Stats: fetch public collection statistics.
//   - FetchSpecimen: fetch and validate a full specimen record from an
//     absolute URL supplied by a scanned label. Exactly one attempt; the
//     caller decides whether to offer a re-scan.
//   - SetAuthorization: install or clear the token used on subsequent calls.
//   - Close: release underlying transport resources.
//
// All methods must honor context cancellation/timeouts.
type Client interface {
	Login(ctx context.Context, email, password string) (*LoginData, error)
	Register(ctx context.Context, name, email, password string) error
	Stats(ctx context.Context) (*models.CollectionStats, error)
	FetchSpecimen(ctx context.Context, url string) (*models.SpecimenRecord, error)
	SetAuthorization(tokenType, token string)
	Close() error
}
