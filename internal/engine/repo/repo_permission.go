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

type IPermissionRepository interface {
	Create(ctx context.Context, p *model.Permission) error
	GetById(ctx context.Context, id uint64) (*model.Permission, error)
	GetByCode(ctx context.Context, code string) (*model.Permission, error)
	FindByCodes(ctx context.Context, codes []string) ([]model.Permission, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, groupKey string, pageNum, pageSize int) ([]model.Permission, int64, error)
	Update(ctx context.Context, id uint64, updates map[string]any) error
	SetEnabled(ctx context.Context, id uint64, enabled bool) error
	LockForUpdate(ctx context.Context, id uint64) error
	Delete(ctx context.Context, id uint64) (bool, error)
}

type PermissionRepo struct {
	db              database.IDatabase
	permissionModel *model.Permission
}

func NewPermissionRepo(db database.IDatabase) IPermissionRepository {
	return &PermissionRepo{
		db:              db,
		permissionModel: &model.Permission{},
	}
}

// Create 创建权限点，(system, resource, action) 与 code 均唯一
func (pr *PermissionRepo) Create(ctx context.Context, p *model.Permission) error {
	err := database.Conn(ctx, pr.db).Create(p).Error
	return translate(err, nil, errs.ErrDuplicateCode.WithMsg("permission code %q already exists", p.Code))
}

func (pr *PermissionRepo) GetById(ctx context.Context, id uint64) (*model.Permission, error) {
	p := &model.Permission{}
	if err := database.Conn(ctx, pr.db).Where("id = ?", id).First(p).Error; err != nil {
		return nil, translate(err, errs.ErrPermissionNotFound, nil)
	}
	return p, nil
}

func (pr *PermissionRepo) GetByCode(ctx context.Context, code string) (*model.Permission, error) {
	p := &model.Permission{}
	if err := database.Conn(ctx, pr.db).Where("code = ?", code).First(p).Error; err != nil {
		return nil, translate(err, errs.ErrPermissionNotFound, nil)
	}
	return p, nil
}

func (pr *PermissionRepo) FindByCodes(ctx context.Context, codes []string) ([]model.Permission, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var perms []model.Permission
	if err := forShare(ctx, database.Conn(ctx, pr.db)).Where("code IN ?", codes).Find(&perms).Error; err != nil {
		return nil, errs.Internal(err)
	}
	return perms, nil
}

func (pr *PermissionRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	n, err := Count(database.Conn(ctx, pr.db).Model(pr.permissionModel).Where("code = ?", code))
	if err != nil {
		return false, errs.Internal(err)
	}
	return n > 0, nil
}

// List 分页获取权限点，groupKey 非空时按分组过滤
func (pr *PermissionRepo) List(ctx context.Context, groupKey string, pageNum, pageSize int) ([]model.Permission, int64, error) {
	tx := database.ReadDB(database.Conn(ctx, pr.db)).Model(pr.permissionModel)
	if groupKey != "" {
		tx = tx.Where("group_key = ?", groupKey)
	}
	tx = tx.Session(&gorm.Session{})
	total, err := Count(tx)
	if err != nil {
		return nil, 0, errs.Internal(err)
	}
	var perms []model.Permission
	err = tx.Scopes(Paginate(pageNum, pageSize)).Order("group_key ASC, sort_order ASC, id ASC").Find(&perms).Error
	if err != nil {
		return nil, 0, errs.Internal(err)
	}
	return perms, total, nil
}

// Update 更新基本信息，编码三元组不可修改
func (pr *PermissionRepo) Update(ctx context.Context, id uint64, updates map[string]any) error {
	for _, k := range []string{"system_code", "resource_code", "action_code", "code", "group_key"} {
		delete(updates, k)
	}
	if len(updates) == 0 {
		ok, err := exists(ctx, pr.db, pr.permissionModel.TableName(), id)
		if err != nil {
			return err
		}
		if !ok {
			return errs.ErrPermissionNotFound
		}
		return nil
	}
	return updateById(ctx, pr.db, pr.permissionModel, pr.permissionModel.TableName(), id, updates, errs.ErrPermissionNotFound, nil)
}

func (pr *PermissionRepo) SetEnabled(ctx context.Context, id uint64, enabled bool) error {
	return pr.Update(ctx, id, map[string]any{"enabled": enabled})
}

func (pr *PermissionRepo) LockForUpdate(ctx context.Context, id uint64) error {
	return lockRow(ctx, pr.db, pr.permissionModel.TableName(), id, errs.ErrPermissionNotFound)
}

// Delete reports whether a row was removed.
func (pr *PermissionRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res := database.Conn(ctx, pr.db).Where("id = ?", id).Delete(pr.permissionModel)
	if res.Error != nil {
		return false, errs.Internal(res.Error)
	}
	return res.RowsAffected > 0, nil
}
