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
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) userRouter(r fiber.Router) {
	userGroup := r.Group("/users")
	{
		userGroup.Post("/", rt.createUser)
		userGroup.Get("/", rt.listUsers)
		userGroup.Get("/:id", rt.getUser)
		userGroup.Delete("/:id", rt.deleteUser)
		userGroup.Put("/:id/enabled", rt.setUserEnabled)
		userGroup.Put("/:id/lock", rt.lockUser)
		userGroup.Put("/:id/unlock", rt.unlockUser)
		userGroup.Put("/:id/password", rt.resetPassword)
		userGroup.Put("/:id/roles", rt.replaceUserRoles)
		userGroup.Delete("/:id/roles", rt.clearUserRoles)
		userGroup.Post("/:id/roles/:code", rt.addUserRole)
		userGroup.Delete("/:id/roles/:code", rt.removeUserRole)
	}
}

func (rt *Router) createUser(c *fiber.Ctx) error {
	var req model.CreateUserReq
	if err := parseBody(c, &req); err != nil {
		return http.WithAppErr(c, err)
	}
	profile, err := rt.Services.User.CreateUser(c.UserContext(), &req)
	if err != nil {
		return http.WithAppErr(c, err)
	}
	c.Status(fiber.StatusCreated)
	return detail(c, profile)
}

func (rt *Router) listUsers(c *fiber.Ctx) error {
	page, err := rt.Services.User.ListUsers(c.UserContext(), queryInt(c, "pageNum"), queryInt(c, "pageSize"))
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, page)
}

func (rt *Router) getUser(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	profile, err := rt.Services.User.GetUser(c.UserContext(), id)
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, profile)
}

func (rt *Router) deleteUser(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	if err := rt.Services.User.DeleteUser(c.UserContext(), id); err != nil {
		return http.WithAppErr(c, err)
	}
	return operation(c)
}

func (rt *Router) setUserEnabled(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	var req model.SetEnabledReq
	if err := parseBody(c, &req); err != nil {
		return http.WithAppErr(c, err)
	}
	if req.Enabled == nil {
		return http.WithAppErr(c, errs.ErrBlankField.WithMsg("enabled is required"))
	}
	if err := rt.Services.User.SetEnabled(c.UserContext(), id, *req.Enabled); err != nil {
		return http.WithAppErr(c, err)
	}
	return operation(c)
}

func (rt *Router) lockUser(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	if err := rt.Services.User.Lock(c.UserContext(), id); err != nil {
		return http.WithAppErr(c, err)
	}
	return operation(c)
}

func (rt *Router) unlockUser(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	if err := rt.Services.User.Unlock(c.UserContext(), id); err != nil {
		return http.WithAppErr(c, err)
	}
	return operation(c)
}

func (rt *Router) resetPassword(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	var req model.ResetPasswordReq
	if err := parseBody(c, &req); err != nil {
		return http.WithAppErr(c, err)
	}
	if err := rt.Services.User.ResetPassword(c.UserContext(), id, req.Password); err != nil {
		return http.WithAppErr(c, err)
	}
	return operation(c)
}

// replaceUserRoles 缺省 codes 不做修改，空数组清空
func (rt *Router) replaceUserRoles(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	var req model.ReplaceCodesReq
	if err := parseBody(c, &req); err != nil {
		return http.WithAppErr(c, err)
	}
	res, err := rt.Services.User.ReplaceRoles(c.UserContext(), id, req.Codes)
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, res)
}

func (rt *Router) clearUserRoles(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	n, err := rt.Services.User.ClearRoles(c.UserContext(), id)
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, fiber.Map{"removed": n})
}

func (rt *Router) addUserRole(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	added, err := rt.Services.User.AddRole(c.UserContext(), id, c.Params("code"))
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, fiber.Map{"added": added})
}

func (rt *Router) removeUserRole(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	removed, err := rt.Services.User.RemoveRole(c.UserContext(), id, c.Params("code"))
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, fiber.Map{"removed": removed})
}
