package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jpalacios/herbascan/internal/client/api"
	"github.com/jpalacios/herbascan/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// authErrorMessage maps an error kind to the line shown to the user. Each
// kind keeps its own message so a credentials problem, a broken server
// response, and a connectivity problem stay distinguishable.
func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, api.ErrRejected):
		return "The catalog rejected the request. Check your credentials and try again."
	case errors.Is(err, api.ErrInvalidResponse):
		return "The catalog returned an unusable response. Try again in a moment."
	case errors.Is(err, api.ErrUnavailable):
		return "Could not reach the catalog service. Check your connection and try again."
	default:
		return "Something went wrong: " + err.Error()
	}
}

// Login prompts for credentials and authenticates against the catalog.
// A failed attempt leaves the session untouched; the user can retry without
// restarting.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	session, err := a.gate.Login(ctx, email, string(password))
	if err != nil {
		fmt.Fprintln(a.out, authErrorMessage(err))
		return err
	}

	if session.User != nil {
		fmt.Fprintf(a.out, "Welcome, %s.\n", session.User.Name)
	} else {
		fmt.Fprintln(a.out, "Welcome. Your profile could not be loaded; statistics and scanning work normally.")
	}
	return nil
}

// Register prompts for a name, email, and password and creates an account.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.Register(ctx, name, email, string(password)); err != nil {
		fmt.Fprintln(a.out, authErrorMessage(err))
		return err
	}

	fmt.Fprintln(a.out, "Account created. You can now log in.")
	return nil
}

// Logout clears the session. It never depends on the network; a storage
// hiccup is logged but the user is signed out regardless.
func (a *App) Logout(ctx context.Context) error {
	if err := a.gate.Logout(ctx); err != nil {
		a.log.Warn(ctx, "logout cleanup incomplete", "err", err)
	}
	a.scans.Reset()
	return nil
}

// Status shows the session state, the profile snapshot, and, when the token
// is a JWT, its claims. Claims are informational only.
func (a *App) Status(ctx context.Context) {
	fmt.Fprintf(a.out, "State: %s\n", a.gate.State())

	if user := a.gate.CurrentUser(); user != nil {
		fmt.Fprintf(a.out, "Name: %s\nEmail: %s\n", user.Name, user.Email)
		if user.Institution != "" {
			fmt.Fprintf(a.out, "Institution: %s\n", user.Institution)
		}
	}

	if claims, ok := a.gate.TokenClaims(); ok {
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			fmt.Fprintf(a.out, "Token subject: %s\n", sub)
		}
		if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
			fmt.Fprintf(a.out, "Token issued: %s\n", iat.Format("2006-01-02 15:04"))
		}
	}
}
