package api

import "errors"

// Sentinel errors returned by Client implementations. Callers match them with
// errors.Is and map each kind to its own user-visible message, so a bad label
// is distinguishable from a connectivity problem.
var (
	// ErrUnavailable covers transport failures: timeouts, connection
	// errors, and server-side (5xx) responses.
	ErrUnavailable = errors.New("catalog service unavailable")

	// ErrRejected is an application-level rejection, e.g. bad credentials
	// or a refused registration.
	ErrRejected = errors.New("request rejected")

	// ErrInvalidResponse marks a protocol error on an otherwise successful
	// call: the server reported success but the response is unusable.
	ErrInvalidResponse = errors.New("invalid server response")

	// ErrInvalidShape marks a specimen document that transported fine but
	// does not have the expected success/data/specimen structure.
	ErrInvalidShape = errors.New("malformed specimen document")
)
