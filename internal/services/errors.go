package services

import (
	"database/sql"
	"errors"
)

// Error kinds. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Error is a client-visible failure: Message is safe to show, Kind says which class it is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func notFound(msg string) error     { return &Error{Kind: ErrNotFound, Message: msg} }
func badRequest(msg string) error   { return &Error{Kind: ErrBadRequest, Message: msg} }
func unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Message: msg} }
func forbidden(msg string) error    { return &Error{Kind: ErrForbidden, Message: msg} }

// lookup turns a missing row into a NotFound carrying msg and passes other errors through.
func lookup(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(msg)
	}
	return err
}
