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

package http

import (
	"github.com/go-arcade/iam/pkg/errs"
	"github.com/gofiber/fiber/v2"
)

var (
	Failed        = failed(500, "Request failed")
	BadRequest    = failed(4000, "Bad request")
	UnknownCode   = failed(4001, "Unknown code")
	NotFound      = failed(4004, "Not found")
	Conflict      = failed(4009, "Conflict")
	Referenced    = failed(4010, "Still referenced")
	Concurrent    = failed(4011, "Concurrent modification")
	Unauthorized  = failed(4401, "Unauthorized")
	LoginFailed   = failed(4402, "Authentication failed")
	InvalidToken  = failed(4405, "Invalid token")
	Forbidden     = failed(4030, "Forbidden")
	AccountDenied = failed(4032, "Account unavailable")
	InternalError = failed(5000, "Internal error, please contact the administrator")
)

var (
	Success = success(200, "Request Success")
)

type kindMapping struct {
	status int
	rep    *Response
}

var kindMappings = map[errs.Kind]kindMapping{
	errs.KindValidation:     {fiber.StatusBadRequest, BadRequest},
	errs.KindUnknownCode:    {fiber.StatusBadRequest, UnknownCode},
	errs.KindNotFound:       {fiber.StatusNotFound, NotFound},
	errs.KindDuplicate:      {fiber.StatusConflict, Conflict},
	errs.KindReferenced:     {fiber.StatusConflict, Referenced},
	errs.KindConcurrent:     {fiber.StatusConflict, Concurrent},
	errs.KindBadCredentials: {fiber.StatusUnauthorized, LoginFailed},
	errs.KindUnauthorized:   {fiber.StatusUnauthorized, Unauthorized},
	errs.KindTokenInvalid:   {fiber.StatusUnauthorized, InvalidToken},
	errs.KindDisabled:       {fiber.StatusForbidden, AccountDenied},
	errs.KindLocked:         {fiber.StatusForbidden, AccountDenied},
	errs.KindForbidden:      {fiber.StatusForbidden, Forbidden},
	errs.KindInternal:       {fiber.StatusInternalServerError, InternalError},
}

// StatusOf maps an error kind to the HTTP status and response code.
func StatusOf(kind errs.Kind) (int, int) {
	if m, ok := kindMappings[kind]; ok {
		return m.status, m.rep.Code
	}
	return fiber.StatusInternalServerError, InternalError.Code
}

func failed(code int, msg string) *Response {
	return &Response{
		Code:   code,
		Msg:    msg,
		Detail: nil,
	}
}

func success(code int, msg string) *Response {
	return &Response{
		Code:   code,
		Msg:    msg,
		Detail: nil,
	}
}
