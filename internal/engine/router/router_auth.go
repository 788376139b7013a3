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

package router

import (
	"github.com/go-arcade/iam/internal/engine/model"
	"github.com/go-arcade/iam/pkg/errs"
	"github.com/go-arcade/iam/pkg/http"
	"github.com/go-arcade/iam/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) authRouter(r fiber.Router) {
	authGroup := r.Group("/auth")
	{
		authGroup.Post("/login", rt.login)
		authGroup.Get("/me", rt.me)
		authGroup.Post("/refresh", rt.refresh)
	}
}

func (rt *Router) login(c *fiber.Ctx) error {
	var req model.LoginReq
	if err := parseBody(c, &req); err != nil {
		return http.WithAppErr(c, err)
	}
	resp, err := rt.Services.Auth.Login(c.UserContext(), &req)
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, resp)
}

func (rt *Router) me(c *fiber.Ctx) error {
	profile, err := rt.Services.Auth.Me(c.UserContext())
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, profile)
}

// refresh 需要 Authorization: Bearer <token>，过期的 token 不能续期
func (rt *Router) refresh(c *fiber.Ctx) error {
	token, ok := middleware.BearerToken(c)
	if !ok {
		return http.WithAppErr(c, errs.ErrUnauthorized)
	}
	resp, err := rt.Services.Auth.Refresh(c.UserContext(), token)
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, resp)
}
