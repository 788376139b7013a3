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

	"github.com/go-arcade/iam/internal/engine/model"
	"github.com/go-arcade/iam/internal/pkg/assoc"
	"github.com/go-arcade/iam/pkg/database"
	"github.com/go-arcade/iam/pkg/errs"
	"gorm.io/gorm/clause"
)

// IUserRoleRepository stores user to role links. It doubles as the store
// side of the user role synchronizer.
type IUserRoleRepository interface {
	assoc.Links[uint64, uint64]
	ListRolesOfUser(ctx context.Context, userId uint64) ([]model.Role, error)
	CountByRole(ctx context.Context, roleId uint64) (int64, error)
	DeleteByRole(ctx context.Context, roleId uint64) (int64, error)
}

type UserRoleRepo struct {
	db            database.IDatabase
	userRoleModel *model.UserRole
}

func NewUserRoleRepo(db database.IDatabase) IUserRoleRepository {
	return &UserRoleRepo{
		db:            db,
		userRoleModel: &model.UserRole{},
	}
}

func (r *UserRoleRepo) LockOwner(ctx context.Context, userId uint64) error {
	return lockRow(ctx, r.db, (&model.User{}).TableName(), userId, errs.ErrUserNotFound)
}

func (r *UserRoleRepo) ListTargets(ctx context.Context, userId uint64) ([]uint64, error) {
	var roleIds []uint64
	err := database.Conn(ctx, r.db).Model(r.userRoleModel).
		Where("user_id = ?", userId).
		Pluck("role_id", &roleIds).Error
	if err != nil {
		return nil, errs.Internal(err)
	}
	return roleIds, nil
}

// Link 批量绑定，已存在的绑定忽略
func (r *UserRoleRepo) Link(ctx context.Context, userId uint64, roleIds []uint64) error {
	if len(roleIds) == 0 {
		return nil
	}
	rows := make([]model.UserRole, 0, len(roleIds))
	for _, id := range roleIds {
		rows = append(rows, model.UserRole{UserId: userId, RoleId: id})
	}
	err := database.Conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	if err != nil {
		return errs.Internal(err)
	}
	return nil
}

func (r *UserRoleRepo) Unlink(ctx context.Context, userId uint64, roleIds []uint64) (int64, error) {
	if len(roleIds) == 0 {
		return 0, nil
	}
	res := database.Conn(ctx, r.db).
		Where("user_id = ? AND role_id IN ?", userId, roleIds).
		Delete(r.userRoleModel)
	if res.Error != nil {
		return 0, errs.Internal(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *UserRoleRepo) UnlinkAll(ctx context.Context, userId uint64) (int64, error) {
	res := database.Conn(ctx, r.db).Where("user_id = ?", userId).Delete(r.userRoleModel)
	if res.Error != nil {
		return 0, errs.Internal(res.Error)
	}
	return res.RowsAffected, nil
}

// ListRolesOfUser returns the enabled roles linked to userId ordered by
// sort_order.
func (r *UserRoleRepo) ListRolesOfUser(ctx context.Context, userId uint64) ([]model.Role, error) {
	var roles []model.Role
	err := database.Conn(ctx, r.db).Model(&model.Role{}).
		Select("t_role.*").
		Joins("JOIN t_user_role ON t_user_role.role_id = t_role.id").
		Where("t_user_role.user_id = ? AND t_role.enabled = ?", userId, true).
		Order("t_role.sort_order ASC, t_role.id ASC").
		Find(&roles).Error
	if err != nil {
		return nil, errs.Internal(err)
	}
	return roles, nil
}

func (r *UserRoleRepo) CountByRole(ctx context.Context, roleId uint64) (int64, error) {
	n, err := Count(database.Conn(ctx, r.db).Model(r.userRoleModel).Where("role_id = ?", roleId))
	if err != nil {
		return 0, errs.Internal(err)
	}
	return n, nil
}

func (r *UserRoleRepo) DeleteByRole(ctx context.Context, roleId uint64) (int64, error) {
	res := database.Conn(ctx, r.db).Where("role_id = ?", roleId).Delete(r.userRoleModel)
	if res.Error != nil {
		return 0, errs.Internal(res.Error)
	}
	return res.RowsAffected, nil
}
