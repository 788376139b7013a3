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

func (rt *Router) permissionRouter(r fiber.Router) {
	permGroup := r.Group("/permissions")
	{
		permGroup.Post("/", rt.createPermission)
		permGroup.Get("/", rt.listPermissions)
		permGroup.Get("/:id", rt.getPermission)
		permGroup.Put("/:id", rt.updatePermission)
		permGroup.Delete("/:id", rt.deletePermission)
		permGroup.Put("/:id/enabled", rt.setPermissionEnabled)
	}
}

func (rt *Router) createPermission(c *fiber.Ctx) error {
	var req model.CreatePermissionReq
	if err := parseBody(c, &req); err != nil {
		return http.WithAppErr(c, err)
	}
	p, err := rt.Services.Permission.Create(c.UserContext(), &req)
	if err != nil {
		return http.WithAppErr(c, err)
	}
	c.Status(fiber.StatusCreated)
	return detail(c, p)
}

// listPermissions 支持 groupKey 过滤
func (rt *Router) listPermissions(c *fiber.Ctx) error {
	page, err := rt.Services.Permission.List(c.UserContext(), c.Query("groupKey"), queryInt(c, "pageNum"), queryInt(c, "pageSize"))
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, page)
}

func (rt *Router) getPermission(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	p, err := rt.Services.Permission.Get(c.UserContext(), id)
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, p)
}

func (rt *Router) updatePermission(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	var req model.UpdatePermissionReq
	if err := parseBody(c, &req); err != nil {
		return http.WithAppErr(c, err)
	}
	p, err := rt.Services.Permission.Update(c.UserContext(), id, &req)
	if err != nil {
		return http.WithAppErr(c, err)
	}
	return detail(c, p)
}

func (rt *Router) deletePermission(c *fiber.Ctx) error {
	id, err := paramId(c, "id")
	if err != nil {
		return http.WithAppErr(c, err)
	}
	if err := rt.Services.Permission.Delete(c.UserContext(), id); err != nil {
		return http.WithAppErr(c, err)
	}
	return operation(c)
}

func (rt *Router) setPermissionEnabled(c *fiber.Ctx) error {
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
	if err := rt.Services.Permission.SetEnabled(c.UserContext(), id, *req.Enabled); err != nil {
		return http.WithAppErr(c, err)
	}
	return operation(c)
}
