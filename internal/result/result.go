// Package result is the value every core operation resolves to. Callers
// render Message and branch on Code; they never need the underlying error.
package result

import (
	"errors"

	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/github"
	"github.com/GioMjds/commitly/internal/identity"
	"github.com/GioMjds/commitly/internal/storage"
)

// Code classifies a result.
type Code string

const (
	CodeOK               Code = "ok"
	CodeNotAuthenticated Code = "not_authenticated"
	CodeAlreadyClosed    Code = "already_closed"
	CodeReauthRequired   Code = "reauth_required"
	CodeInvalid          Code = "invalid"
	CodeNotFound         Code = "not_found"
	CodeNotLinked        Code = "not_linked"
	CodeSyncDisabled     Code = "sync_disabled"
	CodeFailed           Code = "failed"
)

// Result is the uniform {success, message, data} shape.
type Result struct {
	Success bool   `json:"success"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK builds a successful result.
func OK(msg string, data any) Result {
	return Result{Success: true, Code: CodeOK, Message: msg, Data: data}
}

// Info builds a benign, non-error outcome that still did not perform the
// requested action, such as closing an already closed day.
func Info(code Code, msg string) Result {
	return Result{Success: false, Code: code, Message: msg}
}

// Fail builds a failed result with an explicit code.
func Fail(code Code, msg string) Result {
	return Result{Success: false, Code: code, Message: msg}
}

// NotAuthenticated is returned by every entry point that has no owner.
func NotAuthenticated() Result {
	return Fail(CodeNotAuthenticated, "not authenticated: sign in first")
}

// FromError maps known sentinel errors to result codes.
func FromError(prefix string, err error) Result {
	msg := err.Error()
	if prefix != "" {
		msg = prefix + ": " + msg
	}
	switch {
	case errors.Is(err, identity.ErrNotAuthenticated):
		return NotAuthenticated()
	case errors.Is(err, github.ErrTokenExpired):
		return Fail(CodeReauthRequired, "GitHub rejected the stored token; re-authenticate with `commitly auth login`")
	case errors.Is(err, storage.ErrNotFound):
		return Fail(CodeNotFound, msg)
	case errors.Is(err, storage.ErrValidation), errors.Is(err, daykey.ErrMalformedKey):
		return Fail(CodeInvalid, msg)
	default:
		return Fail(CodeFailed, msg)
	}
}

// Is reports whether r carries code c.
func (r Result) Is(c Code) bool { return r.Code == c }
