// Package apierr is the client-facing error taxonomy. Every rejected request
// ends up as exactly one Kind, and every message a client can see comes from
// the fixed strings below or from a validation message table.
package apierr

import (
	"fmt"
	"net/http"
	"strings"
)

type Kind int

const (
	KindUnauthenticated Kind = iota + 1
	KindBadRequest
	KindForbidden
	KindNotFound
	KindFault
)

const (
	MsgAccessDenied = "Access Denied"
	MsgNotOwner     = "Only users associated with this course can make changes"
	MsgFault        = "An unexpected error occurred"
	MsgNoRoute      = "Route Not Found"
)

// Status maps the kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindBadRequest:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Code is the stable machine readable name of the kind.
func (k Kind) Code() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindBadRequest:
		return "bad_request"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "internal_error"
	}
}

type Error struct {
	Kind     Kind
	Messages []string
	cause    error
}

func (e *Error) Error() string {
	msg := e.Kind.Code()
	if len(e.Messages) > 0 {
		msg += ": " + strings.Join(e.Messages, "; ")
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Message returns the first client-facing message.
func (e *Error) Message() string {
	if len(e.Messages) == 0 {
		return ""
	}
	return e.Messages[0]
}

func Unauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Messages: []string{MsgAccessDenied}}
}

func BadRequest(messages ...string) *Error {
	return &Error{Kind: KindBadRequest, Messages: messages}
}

func Forbidden() *Error {
	return &Error{Kind: KindForbidden, Messages: []string{MsgNotOwner}}
}

// NotFound names the missing resource by the id the client asked for.
func NotFound(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Messages: []string{fmt.Sprintf("%s not found with id of %s", resource, id)}}
}

// NoRoute is the answer for paths and methods the API does not serve.
func NoRoute() *Error {
	return &Error{Kind: KindNotFound, Messages: []string{MsgNoRoute}}
}

// Fault wraps an unclassified failure. The cause is kept for logging only and
// never becomes part of Messages.
func Fault(cause error) *Error {
	return &Error{Kind: KindFault, Messages: []string{MsgFault}, cause: cause}
}
