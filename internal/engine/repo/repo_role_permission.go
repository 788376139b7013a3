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

package repo

import (
	"context"
	"time"

	"github.com/go-arcade/iam/internal/engine/model"
	"github.com/go-arcade/iam/internal/pkg/assoc"
	"github.com/go-arcade/iam/pkg/database"
	"github.com/go-arcade/iam/pkg/errs"
	"gorm.io/gorm/clause"
)

// PermissionGrant is one role permission row joined with its permission
// code.
type PermissionGrant struct {
	RoleId        uint64
	PermissionId  uint64
	Code          string
	Enabled       bool
	EffectiveFrom *time.Time
	EffectiveTo   *time.Time
}

func (g PermissionGrant) IsEffectiveAt(t time.Time) bool {
	return model.RolePermission{
		Enabled:       g.Enabled,
		EffectiveFrom: g.EffectiveFrom,
		EffectiveTo:   g.EffectiveTo,
	}.IsEffectiveAt(t)
}

// IRolePermissionRepository stores role to permission grants. It doubles
// as the store side of the role permission synchronizer.
type IRolePermissionRepository interface {
	assoc.Links[uint64, uint64]
	GetGrant(ctx context.Context, roleId, permissionId uint64) (*model.RolePermission, error)
	UpdateGrant(ctx context.Context, roleId, permissionId uint64, updates map[string]any) error
	ListGrantsOfRoles(ctx context.Context, roleIds []uint64) ([]PermissionGrant, error)
	CountByPermission(ctx context.Context, permissionId uint64) (int64, error)
}

type RolePermissionRepo struct {
	db         database.IDatabase
	grantModel *model.RolePermission
}

func NewRolePermissionRepo(db database.IDatabase) IRolePermissionRepository {
	return &RolePermissionRepo{
		db:         db,
		grantModel: &model.RolePermission{},
	}
}

func (r *RolePermissionRepo) LockOwner(ctx context.Context, roleId uint64) error {
	return lockRow(ctx, r.db, (&model.Role{}).TableName(), roleId, errs.ErrRoleNotFound)
}

func (r *RolePermissionRepo) ListTargets(ctx context.Context, roleId uint64) ([]uint64, error) {
	var permIds []uint64
	err := database.Conn(ctx, r.db).Model(r.grantModel).
		Where("role_id = ?", roleId).
		Pluck("permission_id", &permIds).Error
	if err != nil {
		return nil, errs.Internal(err)
	}
	return permIds, nil
}

// Link 新授予的权限默认启用且无有效期限制
func (r *RolePermissionRepo) Link(ctx context.Context, roleId uint64, permIds []uint64) error {
	if len(permIds) == 0 {
		return nil
	}
	rows := make([]model.RolePermission, 0, len(permIds))
	for _, id := range permIds {
		rows = append(rows, model.RolePermission{
			RoleId:       roleId,
			PermissionId: id,
			Enabled:      true,
			GrantSource:  model.GrantSourceAdmin,
		})
	}
	err := database.Conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	if err != nil {
		return errs.Internal(err)
	}
	return nil
}

func (r *RolePermissionRepo) Unlink(ctx context.Context, roleId uint64, permIds []uint64) (int64, error) {
	if len(permIds) == 0 {
		return 0, nil
	}
	res := database.Conn(ctx, r.db).
		Where("role_id = ? AND permission_id IN ?", roleId, permIds).
		Delete(r.grantModel)
	if res.Error != nil {
		return 0, errs.Internal(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *RolePermissionRepo) UnlinkAll(ctx context.Context, roleId uint64) (int64, error) {
	res := database.Conn(ctx, r.db).Where("role_id = ?", roleId).Delete(r.grantModel)
	if res.Error != nil {
		return 0, errs.Internal(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *RolePermissionRepo) GetGrant(ctx context.Context, roleId, permissionId uint64) (*model.RolePermission, error) {
	g := &model.RolePermission{}
	err := database.Conn(ctx, r.db).
		Where("role_id = ? AND permission_id = ?", roleId, permissionId).
		First(g).Error
	if err != nil {
		return nil, translate(err, errs.ErrGrantNotFound, nil)
	}
	return g, nil
}

func (r *RolePermissionRepo) UpdateGrant(ctx context.Context, roleId, permissionId uint64, updates map[string]any) error {
	g, err := r.GetGrant(ctx, roleId, permissionId)
	if err != nil {
		return err
	}
	return updateById(ctx, r.db, r.grantModel, r.grantModel.TableName(), g.ID, updates, errs.ErrGrantNotFound, nil)
}

// ListGrantsOfRoles returns grants of enabled permissions held by roleIds
// in one query. Window and grant flag filtering is left to the caller.
func (r *RolePermissionRepo) ListGrantsOfRoles(ctx context.Context, roleIds []uint64) ([]PermissionGrant, error) {
	if len(roleIds) == 0 {
		return nil, nil
	}
	var grants []PermissionGrant
	err := database.Conn(ctx, r.db).Model(r.grantModel).
		Select("t_role_permission.role_id, t_role_permission.permission_id, t_permission.code, " +
			"t_role_permission.enabled, t_role_permission.effective_from, t_role_permission.effective_to").
		Joins("JOIN t_permission ON t_permission.id = t_role_permission.permission_id").
		Where("t_role_permission.role_id IN ? AND t_permission.enabled = ?", roleIds, true).
		Order("t_permission.sort_order ASC, t_permission.id ASC").
		Find(&grants).Error
	if err != nil {
		return nil, errs.Internal(err)
	}
	return grants, nil
}

func (r *RolePermissionRepo) CountByPermission(ctx context.Context, permissionId uint64) (int64, error) {
	n, err := Count(database.Conn(ctx, r.db).Model(r.grantModel).Where("permission_id = ?", permissionId))
	if err != nil {
		return 0, errs.Internal(err)
	}
	return n, nil
}
