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
	"github.com/go-arcade/iam/pkg/database"
	"github.com/go-arcade/iam/pkg/errs"
	"gorm.io/gorm"
)

type IRoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	GetById(ctx context.Context, id uint64) (*model.Role, error)
	GetByCode(ctx context.Context, code string) (*model.Role, error)
	FindByCodes(ctx context.Context, codes []string) ([]model.Role, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, pageNum, pageSize int) ([]model.Role, int64, error)
	Update(ctx context.Context, id uint64, updates map[string]any) error
	SetEnabled(ctx context.Context, id uint64, enabled bool) error
	LockForUpdate(ctx context.Context, id uint64) error
	Delete(ctx context.Context, id uint64) error
}

type RoleRepo struct {
	db        database.IDatabase
	roleModel *model.Role
}

func NewRoleRepo(db database.IDatabase) IRoleRepository {
	return &RoleRepo{
		db:        db,
		roleModel: &model.Role{},
	}
}

// Create 创建角色
func (rr *RoleRepo) Create(ctx context.Context, role *model.Role) error {
	err := database.Conn(ctx, rr.db).Create(role).Error
	return translate(err, nil, errs.ErrDuplicateCode.WithMsg("role code %q already exists", role.Code))
}

// GetById 获取角色
func (rr *RoleRepo) GetById(ctx context.Context, id uint64) (*model.Role, error) {
	role := &model.Role{}
	if err := database.Conn(ctx, rr.db).Where("id = ?", id).First(role).Error; err != nil {
		return nil, translate(err, errs.ErrRoleNotFound, nil)
	}
	return role, nil
}

// GetByCode 根据编码获取角色
func (rr *RoleRepo) GetByCode(ctx context.Context, code string) (*model.Role, error) {
	role := &model.Role{}
	if err := database.Conn(ctx, rr.db).Where("code = ?", code).First(role).Error; err != nil {
		return nil, translate(err, errs.ErrRoleNotFound, nil)
	}
	return role, nil
}

// FindByCodes resolves codes in a single query. Unknown codes are absent
// from the result. Inside a transaction the found rows are share locked.
func (rr *RoleRepo) FindByCodes(ctx context.Context, codes []string) ([]model.Role, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var roles []model.Role
	if err := forShare(ctx, database.Conn(ctx, rr.db)).Where("code IN ?", codes).Find(&roles).Error; err != nil {
		return nil, errs.Internal(err)
	}
	return roles, nil
}

func (rr *RoleRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	n, err := Count(database.Conn(ctx, rr.db).Model(rr.roleModel).Where("code = ?", code))
	if err != nil {
		return false, errs.Internal(err)
	}
	return n > 0, nil
}

// List 分页获取角色列表，按 sort_order 升序
func (rr *RoleRepo) List(ctx context.Context, pageNum, pageSize int) ([]model.Role, int64, error) {
	tx := database.ReadDB(database.Conn(ctx, rr.db)).Model(rr.roleModel).Session(&gorm.Session{})
	total, err := Count(tx)
	if err != nil {
		return nil, 0, errs.Internal(err)
	}
	var roles []model.Role
	err = tx.Scopes(Paginate(pageNum, pageSize)).Order("sort_order ASC, id ASC").Find(&roles).Error
	if err != nil {
		return nil, 0, errs.Internal(err)
	}
	return roles, total, nil
}

// Update 更新角色基本信息，code 不可修改
func (rr *RoleRepo) Update(ctx context.Context, id uint64, updates map[string]any) error {
	delete(updates, "code")
	if len(updates) == 0 {
		ok, err := exists(ctx, rr.db, rr.roleModel.TableName(), id)
		if err != nil {
			return err
		}
		if !ok {
			return errs.ErrRoleNotFound
		}
		return nil
	}
	return updateById(ctx, rr.db, rr.roleModel, rr.roleModel.TableName(), id, updates, errs.ErrRoleNotFound, nil)
}

func (rr *RoleRepo) SetEnabled(ctx context.Context, id uint64, enabled bool) error {
	return rr.Update(ctx, id, map[string]any{"enabled": enabled})
}

func (rr *RoleRepo) LockForUpdate(ctx context.Context, id uint64) error {
	return lockRow(ctx, rr.db, rr.roleModel.TableName(), id, errs.ErrRoleNotFound)
}

// Delete 删除角色
func (rr *RoleRepo) Delete(ctx context.Context, id uint64) error {
	res := database.Conn(ctx, rr.db).Where("id = ?", id).Delete(rr.roleModel)
	if res.Error != nil {
		return errs.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrRoleNotFound
	}
	return nil
}
