package game

import "fmt"

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindState
	KindFull
)

// Error is returned by every registry operation that rejects a request.
// errors.Is matches on Kind, so callers can test against the sentinels.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrValidation = &Error{Kind: KindValidation, Message: "invalid request"}
	ErrNotFound   = &Error{Kind: KindNotFound, Message: "room not found"}
	ErrWrongPhase = &Error{Kind: KindState, Message: "action not allowed right now"}
	ErrRoomFull   = &Error{Kind: KindFull, Message: "room is full"}
)

func validationError(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func stateError(format string, args ...any) error {
	return &Error{Kind: KindState, Message: fmt.Sprintf(format, args...)}
}
