package graphgw

import "errors"

var (
	// ErrUnavailable covers network failures, timeouts and 5xx responses from
	// the gateway. Callers must treat it as "recommendation source down",
	// never as an empty result.
	ErrUnavailable = errors.New("graph gateway unavailable")

	// ErrMalformedResponse means the gateway answered but the payload could
	// not be decoded into rows.
	ErrMalformedResponse = errors.New("malformed graph gateway response")

	// ErrBadIdentifier is returned when a label, relationship type or
	// property key fails validation before any query is built.
	ErrBadIdentifier = errors.New("invalid graph identifier")
)
