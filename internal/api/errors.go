package api

import "errors"

// Kind classifies a gateway failure so the view layer can pick the right
// user-facing message and the session store can branch on it.
type Kind int

const (
	// KindNetwork covers transport failures and unclassified responses.
	KindNetwork Kind = iota
	// KindTimeout is a request that exceeded its deadline.
	KindTimeout
	// KindUnauthorized means the token is missing or expired.
	KindUnauthorized
	// KindServer is a 5xx response.
	KindServer
	// KindValidation is a client-side rejection that never reached the network.
	KindValidation
	// KindInvalidCredentials is a login rejected by the server.
	KindInvalidCredentials
	// KindDuplicateAccount is a registration for an existing account.
	KindDuplicateAccount
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindUnauthorized:
		return "unauthorized"
	case KindServer:
		return "server"
	case KindValidation:
		return "validation"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindDuplicateAccount:
		return "duplicate_account"
	default:
		return "network"
	}
}

// Error is a classified gateway or validation failure. Status carries the
// HTTP status code when the failure came from a response, else 0.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds a client-side error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf extracts the Kind from err, defaulting to KindNetwork for
// anything that is not a classified *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNetwork
}
