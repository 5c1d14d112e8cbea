package apperror

import "errors"

// GenericMessage is shown when a failure carries no usable server message.
const GenericMessage = "Server error!"

// Kind describes where a request failed.
type Kind string

const (
	// KindTransport: the request never reached the server or no response came back.
	KindTransport Kind = "transport"
	// KindServer: the server answered with a non-2xx status.
	KindServer Kind = "server"
	// KindDecode: a 2xx response body could not be decoded.
	KindDecode Kind = "decode"
)

// Error is a typed error with a stable Kind and a user-facing message.
// Msg is always safe to show in the status area.
type Error struct {
	Kind   Kind
	Msg    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func Transport(msg string, err error) error { return New(KindTransport, msg, err) }
func Decode(msg string, err error) error    { return New(KindDecode, msg, err) }

// Server records the HTTP status alongside the message.
func Server(status int, msg string, err error) error {
	return &Error{Kind: KindServer, Msg: msg, Status: status, Err: err}
}

func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// Message returns the user-facing text of err, or GenericMessage for untyped errors.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return GenericMessage
}

// StatusCode returns the HTTP status carried by err, 0 if none.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
