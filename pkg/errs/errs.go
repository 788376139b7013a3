// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errs defines the typed application error shared by the identity
// core and the HTTP boundary.
package errs

import (
	"errors"
	"fmt"
)

// Kind groups error codes by how the boundary reports them.
type Kind string

const (
	KindValidation     Kind = "VALIDATION"
	KindNotFound       Kind = "NOT_FOUND"
	KindDuplicate      Kind = "DUPLICATE"
	KindReferenced     Kind = "REFERENCED"
	KindBadCredentials Kind = "BAD_CREDENTIALS"
	KindDisabled       Kind = "ACCOUNT_DISABLED"
	KindLocked         Kind = "ACCOUNT_LOCKED"
	KindUnauthorized   Kind = "UNAUTHORIZED"
	KindForbidden      Kind = "FORBIDDEN"
	KindTokenInvalid   Kind = "TOKEN_INVALID"
	KindUnknownCode    Kind = "UNKNOWN_CODE"
	KindConcurrent     Kind = "CONCURRENT_MODIFICATION"
	KindInternal       Kind = "INTERNAL"
)

// Error is a business rule violation with a stable code.
type Error struct {
	Kind   Kind   `json:"kind"`
	Code   string `json:"code"`
	Msg    string `json:"msg"`
	Detail any    `json:"detail,omitempty"`
	cause  error
}

func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.cause)
	}
	return e.Code + ": " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithMsg returns a copy with a formatted message.
func (e *Error) WithMsg(format string, args ...any) *Error {
	c := *e
	c.Msg = fmt.Sprintf(format, args...)
	return &c
}

// WithDetail returns a copy carrying detail for the caller.
func (e *Error) WithDetail(detail any) *Error {
	c := *e
	c.Detail = detail
	return &c
}

// Wrap returns a copy that keeps err as its cause.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

// As extracts the *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// Internal wraps an unexpected failure, usually from the store.
func Internal(err error) *Error {
	return ErrInternal.Wrap(err)
}
