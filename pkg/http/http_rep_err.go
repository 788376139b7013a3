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
	"errors"

	"github.com/go-arcade/iam/pkg/errs"
	"github.com/go-arcade/iam/pkg/log"
	"github.com/gofiber/fiber/v2"
)

type ResponseErr struct {
	ErrCode int    `json:"code"`
	ErrMsg  any    `json:"errMsg"`
	Reason  string `json:"reason,omitempty"`
	Detail  any    `json:"detail,omitempty"`
	Path    string `json:"path,omitempty"`
}

func WithRepErrMsg(c *fiber.Ctx, status, code int, errMsg string, path string) error {
	return c.Status(status).JSON(ResponseErr{
		ErrCode: code,
		ErrMsg:  errMsg,
		Path:    path,
	})
}

// WithAppErr renders err with the status of its kind. Foreign errors are
// logged and reported as INTERNAL without their text.
func WithAppErr(c *fiber.Ctx, err error) error {
	e, ok := errs.As(err)
	if !ok || e.Kind == errs.KindInternal {
		log.WithContext(c.UserContext()).Errorw("request failed", "path", c.Path(), "error", err)
		e = errs.ErrInternal
	}
	status, code := StatusOf(e.Kind)
	return c.Status(status).JSON(ResponseErr{
		ErrCode: code,
		ErrMsg:  e.Msg,
		Reason:  e.Code,
		Detail:  e.Detail,
		Path:    c.Path(),
	})
}

// WithError is the fiber ErrorHandler.
func WithError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := Failed.Code
		switch fe.Code {
		case fiber.StatusNotFound:
			code = NotFound.Code
		case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
			code = BadRequest.Code
		case fiber.StatusMethodNotAllowed:
			code = BadRequest.Code
		}
		return WithRepErrMsg(c, fe.Code, code, fe.Message, c.Path())
	}
	return WithAppErr(c, err)
}
