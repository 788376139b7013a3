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

func (rt *Router) roleRouter(r fiber.Router) {
	roleGroup := r.Group("/roles")
	{
		roleGroup.Post("/", rt.createRole)
		roleGroup.Get("/", rt.listRoles)
		roleGroup.Get("/:id", rt.getRole)
		roleGroup.Put("/:id", rt.updateRole)
		roleGroup.Delete("/:id", rt.deleteRole)
		roleGroup.Put("/:id/enabled", rt.setRoleEnabled)
		roleGroup.Delete("/:id/users", rt.clearRoleUsers)
		roleGroup.Put("/:id/permissions", rt.replaceRolePermissions)
		roleGroup.Delete("/:id/permissions", rt.clearRolePermissions)
		roleGroup.Post("/:id/permissions/:code", rt.addRolePermission)
		roleGroup.Delete("/:id/permissions/:code", rt.removeRolePermission)
		roleGroup.Put("/:id/permissions/:code/window", rt.setGrantWindow)
	}
}

func (rt *Router) createRole(c *fiber.Ctx) error {
	var req model.CreateRoleReq
	if err := parseBody(c, &req); err != nil {
		return http.WithAppErr(c, err)
	}
	role, err := rt.Services.Role.Create(c.UserContext(), &req)
	if err != nil {
		return http.WithAppErr(c, err)
	}
	c.Status(fiber.StatusCreated)
	return detail(c, role)
}

func (rt *Router) listRoles(c *fiber.Ctx) error {
	page, err := rt.Services.Role.List(c.UserContext(), queryInt(c, "pageNum"), queryInt(c, "pageSize"))
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, page)
}

func (rt *Router) getRole(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	role, err := rt.Services.Role.Get(c.UserContext(), id)
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, role)
}

func (rt *Router) updateRole(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	var req model.UpdateRoleReq
	if err := parseBody(c, &req); err != nil {
		return http.WithAppErr(c, err)
	}
	role, err := rt.Services.Role.Update(c.UserContext(), id, &req)
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, role)
}

func (rt *Router) deleteRole(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	if err := rt.Services.Role.Delete(c.UserContext(), id); err != nil {
		return http.WithAppErr(c, err)
	}
	return operation(c)
}

func (rt *Router) setRoleEnabled(c *fiber.Ctx) error {
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
	if err := rt.Services.Role.SetEnabled(c.UserContext(), id, *req.Enabled); err != nil {
		return http.WithAppErr(c, err)
	}
	return operation(c)
}

func (rt *Router) clearRoleUsers(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	n, err := rt.Services.Role.ClearUsers(c.UserContext(), id)
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, fiber.Map{"removed": n})
}

func (rt *Router) replaceRolePermissions(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	var req model.ReplaceCodesReq
	if err := parseBody(c, &req); err != nil {
		return http.WithAppErr(c, err)
	}
	res, err := rt.Services.Role.ReplacePermissions(c.UserContext(), id, req.Codes)
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, res)
}

func (rt *Router) clearRolePermissions(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	n, err := rt.Services.Role.ClearPermissions(c.UserContext(), id)
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, fiber.Map{"removed": n})
}

func (rt *Router) addRolePermission(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	added, err := rt.Services.Role.AddPermission(c.UserContext(), id, c.Params("code"))
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, fiber.Map{"added": added})
}

func (rt *Router) removeRolePermission(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	removed, err := rt.Services.Role.RemovePermission(c.UserContext(), id, c.Params("code"))
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, fiber.Map{"removed": removed})
}

func (rt *Router) setGrantWindow(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	var req model.GrantWindowReq
	if err := parseBody(c, &req); err != nil {
		return http.WithAppErr(c, err)
	}
	grant, err := rt.Services.Permission.SetGrantWindow(c.UserContext(), id, c.Params("code"), &req)
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, grant)
}
