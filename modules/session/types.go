package session

import (
	"context"
	"errors"

	"github.com/example/channel-board-demo/domain/chat"
	"github.com/example/channel-board-demo/modules/slots"
)

// Session start modes.
const (
	ModeLogin  = "login"
	ModeSignup = "signup"
)

var (
	// ErrUsernameEmpty is returned when the username is empty.
	ErrUsernameEmpty = errors.New("username is required")
	// ErrNoSession is returned when the client has no signed-in user.
	ErrNoSession = errors.New("no active session")
)

// StartSessionRequest is the request for the login and signup services.
type StartSessionRequest struct {
	Namespace string `json:"namespace"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// SessionRequest addresses the session of one client.
type SessionRequest struct {
	Namespace string `json:"namespace"`
}

// SessionResponse carries the user of a session, or the code of the failure.
type SessionResponse struct {
	User  *chat.User `json:"user,omitempty"`
	Found bool       `json:"found"`
	Code  string     `json:"code,omitempty"`
}

// LogoutResponse is the response for the logout service.
type LogoutResponse struct {
	Ended bool       `json:"ended"`
	User  *chat.User `json:"user,omitempty"`
	Code  string     `json:"code,omitempty"`
}

// SessionPort defines the session operations available to other modules.
type SessionPort interface {
	Login(ctx context.Context, namespace, username, password string) (*chat.User, error)
	Signup(ctx context.Context, namespace, username, password string) (*chat.User, error)
	Logout(ctx context.Context, namespace string) error
	CurrentUser(ctx context.Context, namespace string) (*chat.User, error)
}

const (
	codeUsernameEmpty = "username_empty"
	codeNoSession     = "no_session"
	codeCorruptSlot   = "corrupt_slot"
)

// errorCode maps a domain error to its wire code. Unknown errors have no code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrUsernameEmpty):
		return codeUsernameEmpty
	case errors.Is(err, ErrNoSession):
		return codeNoSession
	case errors.Is(err, slots.ErrCorruptSlot):
		return codeCorruptSlot
	}
	return ""
}

func errorFromCode(code string) error {
	switch code {
	case codeUsernameEmpty:
		return ErrUsernameEmpty
	case codeNoSession:
		return ErrNoSession
	case codeCorruptSlot:
		return slots.ErrCorruptSlot
	}
	return errors.New(code)
}
