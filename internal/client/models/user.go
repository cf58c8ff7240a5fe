// Package models defines the client-side data types of the herbarium catalog:
// the authenticated user, the local session, collection statistics, and the
// specimen record fetched from a scanned label.
package models

// User is an immutable snapshot of the authenticated identity. It is replaced
// wholesale on login and never partially patched.
type User struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Institution string `json:"institution,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// Session is the client's local record of authentication state.
// User may be nil while Token is set: the profile snapshot is written after
// the token and can be missing or unreadable (see SessionGate).
type Session struct {
	Token     string
	TokenType string
	User      *User
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// AuthorizationType returns the token type for the Authorization header,
// defaulting to "Bearer" when the server did not specify one.
func (s Session) AuthorizationType() string {
	if s.TokenType == "" {
		return "Bearer"
	}
	return s.TokenType
}
