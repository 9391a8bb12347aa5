package utils

import "errors"

var (
	NoActiveRoom = errors.New("no active room")
	QueueFull    = errors.New("write queue full")
)

type ErrorKind int

const (
	KindNotFound ErrorKind = iota
	KindAccessDenied
	KindWriteFailure
	KindLocalState
)

// AppError carries the error taxonomy used across the client: the kind
// decides whether a failure is logged or alerted, the message is what the
// user may see.
type AppError struct {
	Kind    ErrorKind
	Msg     string
	Details string
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Msg + ": " + e.Details
	}
	return e.Msg
}

func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{Kind: e.Kind, Msg: e.Msg, Details: details}
}

func NotFoundError(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Msg: msg}
}

func AccessDeniedError(msg string) *AppError {
	return &AppError{Kind: KindAccessDenied, Msg: msg}
}

func WriteError(msg string) *AppError {
	return &AppError{Kind: KindWriteFailure, Msg: msg}
}

func LocalStateError(msg string) *AppError {
	return &AppError{Kind: KindLocalState, Msg: msg}
}

func isKind(err error, kind ErrorKind) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

func IsNotFound(err error) bool     { return isKind(err, KindNotFound) }
func IsAccessDenied(err error) bool { return isKind(err, KindAccessDenied) }
func IsWriteFailure(err error) bool { return isKind(err, KindWriteFailure) }
func IsLocalState(err error) bool   { return isKind(err, KindLocalState) }
