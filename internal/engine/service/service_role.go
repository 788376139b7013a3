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
	"strings"

	"github.com/go-arcade/iam/internal/engine/model"
	"github.com/go-arcade/iam/internal/engine/repo"
	"github.com/go-arcade/iam/internal/pkg/assoc"
	"github.com/go-arcade/iam/pkg/database"
	"github.com/go-arcade/iam/pkg/errs"
	"github.com/go-arcade/iam/pkg/log"
)

type RoleService struct {
	db           database.IDatabase
	roleRepo     repo.IRoleRepository
	userRoleRepo repo.IUserRoleRepository
	grantRepo    repo.IRolePermissionRepository
	permissions  *assoc.Synchronizer[uint64, uint64]
	snapshots    *SnapshotService
}

func NewRoleService(
	db database.IDatabase,
	repos *repo.Repositories,
	permissions *assoc.Synchronizer[uint64, uint64],
	snapshots *SnapshotService,
) *RoleService {
	return &RoleService{
		db:           db,
		roleRepo:     repos.Role,
		userRoleRepo: repos.UserRole,
		grantRepo:    repos.RolePermission,
		permissions:  permissions,
		snapshots:    snapshots,
	}
}

// Create 创建角色，code 归一化为大写且创建后不可修改
func (rs *RoleService) Create(ctx context.Context, req *model.CreateRoleReq) (*model.Role, error) {
	code := model.NormalizeCode(req.Code)
	if code == "" {
		return nil, errs.ErrBlankField.WithMsg("role code is blank")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errs.ErrBlankField.WithMsg("role name is blank")
	}
	role := &model.Role{
		Code:        code,
		Name:        name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		Enabled:     true,
	}
	if req.Enabled != nil {
		role.Enabled = *req.Enabled
	}

	err := database.Transaction(ctx, rs.db, func(ctx context.Context) error {
		taken, err := rs.roleRepo.ExistsByCode(ctx, code)
		if err != nil {
			return err
		}
		if taken {
			return errs.ErrDuplicateCode.WithMsg("role code %q already exists", code)
		}
		return rs.roleRepo.Create(ctx, role)
	})
	if err != nil {
		return nil, err
	}
	log.WithContext(ctx).Infow("role created", "roleId", role.ID, "code", code)
	return role, nil
}

func (rs *RoleService) Get(ctx context.Context, id uint64) (*model.Role, error) {
	return rs.roleRepo.GetById(ctx, id)
}

func (rs *RoleService) List(ctx context.Context, pageNum, pageSize int) (*model.Page[model.Role], error) {
	pageNum, pageSize = model.NormalizePage(pageNum, pageSize)
	roles, total, err := rs.roleRepo.List(ctx, pageNum, pageSize)
	if err != nil {
		return nil, err
	}
	if roles == nil {
		roles = []model.Role{}
	}
	return &model.Page[model.Role]{List: roles, Total: total, PageNum: pageNum, PageSize: pageSize}, nil
}

// Update 更新名称、描述、排序
func (rs *RoleService) Update(ctx context.Context, id uint64, req *model.UpdateRoleReq) (*model.Role, error) {
	updates := make(map[string]any, 3)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errs.ErrBlankField.WithMsg("role name is blank")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if err := rs.roleRepo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return rs.roleRepo.GetById(ctx, id)
}

// SetEnabled 禁用的角色不再出现在快照中，也不能被新分配
func (rs *RoleService) SetEnabled(ctx context.Context, id uint64, enabled bool) error {
	if err := rs.roleRepo.SetEnabled(ctx, id, enabled); err != nil {
		return err
	}
	rs.snapshots.Invalidate(ctx)
	log.WithContext(ctx).Infow("role enabled changed", "roleId", id, "enabled", enabled)
	return nil
}

// Delete fails with REFERENCED while users or permissions are still linked
// to the role.
func (rs *RoleService) Delete(ctx context.Context, id uint64) error {
	err := database.Transaction(ctx, rs.db, func(ctx context.Context) error {
		if err := rs.roleRepo.LockForUpdate(ctx, id); err != nil {
			return err
		}
		users, err := rs.userRoleRepo.CountByRole(ctx, id)
		if err != nil {
			return err
		}
		perms, err := rs.grantRepo.ListTargets(ctx, id)
		if err != nil {
			return err
		}
		if users > 0 || len(perms) > 0 {
			return errs.ErrReferenced.
				WithMsg("role %d is still assigned to %d users and holds %d permissions", id, users, len(perms)).
				WithDetail(map[string]int64{"users": users, "permissions": int64(len(perms))})
		}
		return rs.roleRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	log.WithContext(ctx).Infow("role deleted", "roleId", id)
	return nil
}

func (rs *RoleService) ReplacePermissions(ctx context.Context, id uint64, codes *[]string) (assoc.Result, error) {
	res, err := rs.permissions.Replace(ctx, id, codes)
	if err != nil {
		return res, err
	}
	rs.snapshots.Invalidate(ctx)
	log.WithContext(ctx).Infow("role permissions replaced", "roleId", id,
		"added", res.Added, "removed", res.Removed, "kept", res.Kept)
	return res, nil
}

func (rs *RoleService) AddPermission(ctx context.Context, id uint64, code string) (bool, error) {
	added, err := rs.permissions.AddSingle(ctx, id, code)
	if err != nil {
		return false, err
	}
	if added {
		rs.snapshots.Invalidate(ctx)
	}
	return added, nil
}

func (rs *RoleService) RemovePermission(ctx context.Context, id uint64, code string) (bool, error) {
	removed, err := rs.permissions.RemoveSingle(ctx, id, code)
	if err != nil {
		return false, err
	}
	if removed {
		rs.snapshots.Invalidate(ctx)
	}
	return removed, nil
}

func (rs *RoleService) ClearPermissions(ctx context.Context, id uint64) (int64, error) {
	n, err := rs.permissions.ClearAll(ctx, id)
	if err != nil {
		return 0, err
	}
	rs.snapshots.Invalidate(ctx)
	return n, nil
}

// ClearUsers unassigns the role from every user.
func (rs *RoleService) ClearUsers(ctx context.Context, id uint64) (int64, error) {
	var n int64
	err := database.Transaction(ctx, rs.db, func(ctx context.Context) error {
		if err := rs.roleRepo.LockForUpdate(ctx, id); err != nil {
			return err
		}
		var err error
		n, err = rs.userRoleRepo.DeleteByRole(ctx, id)
		return err
	})
	if err != nil {
		return 0, err
	}
	rs.snapshots.Invalidate(ctx)
	log.WithContext(ctx).Infow("role cleared from users", "roleId", id, "removed", n)
	return n, nil
}
