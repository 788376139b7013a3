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
	"strconv"

	"github.com/go-arcade/iam/internal/engine/service"
	"github.com/go-arcade/iam/pkg/errs"
	httpx "github.com/go-arcade/iam/pkg/http"
	"github.com/go-arcade/iam/pkg/http/jwt"
	"github.com/go-arcade/iam/pkg/http/middleware"
	"github.com/go-arcade/iam/pkg/trace"
	"github.com/go-arcade/iam/pkg/version"
	"github.com/gofiber/fiber/v2"
)

type Router struct {
	Http     httpx.Http
	Services *service.Services
	Issuer   *jwt.Issuer
}

func NewRouter(httpConf httpx.Http, services *service.Services, issuer *jwt.Issuer) *Router {
	return &Router{
		Http:     httpConf,
		Services: services,
		Issuer:   issuer,
	}
}

func (rt *Router) Router() *fiber.App {
	app := fiber.New(httpx.NewFiberConfig(rt.Http))

	// panic recover
	app.Use(middleware.ExceptionMiddleware())
	// cors
	app.Use(middleware.CorsMiddleware())
	app.Use(middleware.RequestMiddleware())
	app.Use(trace.FiberMiddleware())
	app.Use(middleware.AccessLogMiddleware(rt.Http.AccessLog))
	// unified response
	app.Use(middleware.UnifiedResponseMiddleware())
	app.Use(middleware.AuthorizationMiddleware(rt.Issuer, rt.Http.Auth.PermitAll))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/version", func(c *fiber.Ctx) error {
		c.Locals(middleware.DETAIL, version.GetVersion())
		return nil
	})

	rt.authRouter(app)

	admin := app.Group("/admin", middleware.RequireRole(rt.Http.Auth.AdminRole))
	rt.userRouter(admin)
	rt.roleRouter(admin)
	rt.permissionRouter(admin)

	return app
}

// paramId parses a positive numeric path parameter.
func paramId(c *fiber.Ctx, key string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(key), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.ErrInvalidParam.WithMsg("invalid %s: %q", key, c.Params(key))
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errs.ErrInvalidParam.WithMsg("invalid request body: %v", err)
	}
	return nil
}

func queryInt(c *fiber.Ctx, key string) int {
	return c.QueryInt(key, 0)
}

func detail(c *fiber.Ctx, v any) error {
	c.Locals(middleware.DETAIL, v)
	return nil
}

func operation(c *fiber.Ctx) error {
	c.Locals(middleware.OPERATION, true)
	return nil
}
