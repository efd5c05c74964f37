package handler

import (
	"errors"
	"fmt"

	"github.com/samandartukhtayev/rawsock-users/wire"
)

// Response bodies
const (
	BodyInternalError   = "Internal error"
	BodyBadRequest      = "Bad request"
	BodyUserNotFound    = "User not found"
	BodyRetrieveCreated = "Failed to retrieve created user"
	BodyUserUpdated     = "User updated"
	BodyUserDeleted     = "User deleted"
)

// Kind classifies a handler failure
type Kind int

const (
	KindInfra Kind = iota
	KindBadRequest
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	default:
		return "infra"
	}
}

// Error carries the failure kind and the body to answer with
type Error struct {
	Kind Kind
	Body string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Body)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Body, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func badRequest(err error) *Error {
	return &Error{Kind: KindBadRequest, Body: BodyInternalError, Err: err}
}

func notFound(err error) *Error {
	return &Error{Kind: KindNotFound, Body: BodyUserNotFound, Err: err}
}

func infra(body string, err error) *Error {
	return &Error{Kind: KindInfra, Body: body, Err: err}
}

// toResponse maps a failure onto a status. Input errors answer 500 like
// infrastructure errors unless distinct statuses were requested.
func toResponse(err error, distinctInputErrors bool) wire.Response {
	var e *Error
	if !errors.As(err, &e) {
		return wire.InternalError(BodyInternalError)
	}

	switch e.Kind {
	case KindNotFound:
		return wire.NotFound(e.Body)
	case KindBadRequest:
		if distinctInputErrors {
			return wire.BadRequest(BodyBadRequest)
		}
		return wire.InternalError(e.Body)
	default:
		return wire.InternalError(e.Body)
	}
}
