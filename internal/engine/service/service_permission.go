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

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-arcade/iam/internal/engine/model"
	"github.com/go-arcade/iam/internal/engine/repo"
	"github.com/go-arcade/iam/pkg/database"
	"github.com/go-arcade/iam/pkg/errs"
	"github.com/go-arcade/iam/pkg/log"
)

type PermissionService struct {
	db             database.IDatabase
	permissionRepo repo.IPermissionRepository
	roleRepo       repo.IRoleRepository
	grantRepo      repo.IRolePermissionRepository
	snapshots      *SnapshotService
}

func NewPermissionService(db database.IDatabase, repos *repo.Repositories, snapshots *SnapshotService) *PermissionService {
	return &PermissionService{
		db:             db,
		permissionRepo: repos.Permission,
		roleRepo:       repos.Role,
		grantRepo:      repos.RolePermission,
		snapshots:      snapshots,
	}
}

// Create derives code SYSTEM_RESOURCE_ACTION and groupKey SYSTEM_RESOURCE
// from the three segments.
func (ps *PermissionService) Create(ctx context.Context, req *model.CreatePermissionReq) (*model.Permission, error) {
	system := model.NormalizeCode(req.SystemCode)
	resource := model.NormalizeCode(req.ResourceCode)
	action := model.NormalizeCode(req.ActionCode)
	var blank []string
	for _, seg := range [][2]string{{"systemCode", system}, {"resourceCode", resource}, {"actionCode", action}} {
		if seg[1] == "" {
			blank = append(blank, seg[0])
		}
	}
	if len(blank) > 0 {
		return nil, errs.ErrBlankField.WithMsg("blank permission segment: %s", strings.Join(blank, ", ")).WithDetail(blank)
	}

	p := &model.Permission{
		SystemCode:   system,
		ResourceCode: resource,
		ActionCode:   action,
		Code:         model.PermissionCode(system, resource, action),
		GroupKey:     model.GroupKey(system, resource),
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		SortOrder:    req.SortOrder,
		Enabled:      true,
	}
	if p.Name == "" {
		p.Name = p.Code
	}
	if req.Enabled != nil {
		p.Enabled = *req.Enabled
	}

	err := database.Transaction(ctx, ps.db, func(ctx context.Context) error {
		taken, err := ps.permissionRepo.ExistsByCode(ctx, p.Code)
		if err != nil {
			return err
		}
		if taken {
			return errs.ErrDuplicateCode.WithMsg("permission code %q already exists", p.Code)
		}
		return ps.permissionRepo.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	log.WithContext(ctx).Infow("permission created", "permissionId", p.ID, "code", p.Code)
	return p, nil
}

func (ps *PermissionService) Get(ctx context.Context, id uint64) (*model.Permission, error) {
	return ps.permissionRepo.GetById(ctx, id)
}

func (ps *PermissionService) List(ctx context.Context, groupKey string, pageNum, pageSize int) (*model.Page[model.Permission], error) {
	pageNum, pageSize = model.NormalizePage(pageNum, pageSize)
	perms, total, err := ps.permissionRepo.List(ctx, model.NormalizeCode(groupKey), pageNum, pageSize)
	if err != nil {
		return nil, err
	}
	if perms == nil {
		perms = []model.Permission{}
	}
	return &model.Page[model.Permission]{List: perms, Total: total, PageNum: pageNum, PageSize: pageSize}, nil
}

func (ps *PermissionService) Update(ctx context.Context, id uint64, req *model.UpdatePermissionReq) (*model.Permission, error) {
	updates := make(map[string]any, 3)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errs.ErrBlankField.WithMsg("permission name is blank")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if err := ps.permissionRepo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return ps.permissionRepo.GetById(ctx, id)
}

func (ps *PermissionService) SetEnabled(ctx context.Context, id uint64, enabled bool) error {
	if err := ps.permissionRepo.SetEnabled(ctx, id, enabled); err != nil {
		return err
	}
	ps.snapshots.Invalidate(ctx)
	log.WithContext(ctx).Infow("permission enabled changed", "permissionId", id, "enabled", enabled)
	return nil
}

// Delete 已删除的权限点再次删除视为成功；仍被角色引用时返回 REFERENCED
func (ps *PermissionService) Delete(ctx context.Context, id uint64) error {
	removed := false
	err := database.Transaction(ctx, ps.db, func(ctx context.Context) error {
		if err := ps.permissionRepo.LockForUpdate(ctx, id); err != nil {
			if errors.Is(err, errs.ErrPermissionNotFound) {
				return nil
			}
			return err
		}
		refs, err := ps.grantRepo.CountByPermission(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return errs.ErrReferenced.
				WithMsg("permission %d is still granted to %d roles", id, refs).
				WithDetail(map[string]int64{"roles": refs})
		}
		removed, err = ps.permissionRepo.Delete(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	if removed {
		log.WithContext(ctx).Infow("permission deleted", "permissionId", id)
	}
	return nil
}

// SetGrantWindow toggles one role permission and sets its validity window.
// Nil bounds are stored as open.
func (ps *PermissionService) SetGrantWindow(ctx context.Context, roleId uint64, code string, req *model.GrantWindowReq) (*model.RolePermission, error) {
	code = model.NormalizeCode(code)
	if code == "" {
		return nil, errs.ErrBlankField.WithMsg("permission code is blank")
	}
	if req.EffectiveFrom != nil && req.EffectiveTo != nil && !req.EffectiveFrom.Before(*req.EffectiveTo) {
		return nil, errs.ErrInvalidWindow
	}

	var grant *model.RolePermission
	err := database.Transaction(ctx, ps.db, func(ctx context.Context) error {
		if err := ps.roleRepo.LockForUpdate(ctx, roleId); err != nil {
			return err
		}
		p, err := ps.permissionRepo.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		updates := map[string]any{
			"effective_from": req.EffectiveFrom,
			"effective_to":   req.EffectiveTo,
		}
		if req.Enabled != nil {
			updates["enabled"] = *req.Enabled
		}
		if err := ps.grantRepo.UpdateGrant(ctx, roleId, p.ID, updates); err != nil {
			return err
		}
		grant, err = ps.grantRepo.GetGrant(ctx, roleId, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	ps.snapshots.Invalidate(ctx)
	log.WithContext(ctx).Infow("grant window changed", "roleId", roleId, "code", code,
		"enabled", grant.Enabled, "effectiveFrom", grant.EffectiveFrom, "effectiveTo", grant.EffectiveTo)
	return grant, nil
}
