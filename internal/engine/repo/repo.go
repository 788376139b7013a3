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
	"errors"

	"github.com/go-arcade/iam/pkg/database"
	"github.com/go-arcade/iam/pkg/errs"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repositories 统一管理所有 repository
type Repositories struct {
	User           IUserRepository
	Role           IRoleRepository
	Permission     IPermissionRepository
	UserRole       IUserRoleRepository
	RolePermission IRolePermissionRepository
}

// NewRepositories 初始化所有 repository
func NewRepositories(db database.IDatabase) *Repositories {
	return &Repositories{
		User:           NewUserRepo(db),
		Role:           NewRoleRepo(db),
		Permission:     NewPermissionRepo(db),
		UserRole:       NewUserRoleRepo(db),
		RolePermission: NewRolePermissionRepo(db),
	}
}

func Count(tx *gorm.DB) (int64, error) {
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Paginate 分页
func Paginate(pageNum, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((pageNum - 1) * pageSize).Limit(pageSize)
	}
}

// translate maps store errors onto catalog errors. notFound is returned for
// a missing row and duplicate for a unique key violation.
func translate(err error, notFound, duplicate *errs.Error) error {
	switch {
	case err == nil:
		return nil
	case notFound != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case duplicate != nil && errors.Is(err, gorm.ErrDuplicatedKey):
		return duplicate.Wrap(err)
	default:
		var appErr *errs.Error
		if errors.As(err, &appErr) {
			return err
		}
		return errs.Internal(err)
	}
}

// lockRow takes an exclusive row lock on table.id inside the current
// transaction. SQLite has no row locks and serializes writers on its own.
func lockRow(ctx context.Context, db database.IDatabase, table string, id uint64, notFound *errs.Error) error {
	tx := database.Conn(ctx, db).Table(table).Select("id").Where("id = ?", id)
	if tx.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var ids []uint64
	if err := tx.Limit(1).Pluck("id", &ids).Error; err != nil {
		return errs.Internal(err)
	}
	if len(ids) == 0 {
		return notFound
	}
	return nil
}

// forShare takes shared locks on the rows read by tx when ctx carries a
// transaction, so a concurrent delete of those rows waits for the commit.
func forShare(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if !database.InTransaction(ctx) || tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "SHARE"})
}

// exists reports whether a row with id is present in table.
func exists(ctx context.Context, db database.IDatabase, table string, id uint64) (bool, error) {
	n, err := Count(database.Conn(ctx, db).Table(table).Where("id = ?", id))
	if err != nil {
		return false, errs.Internal(err)
	}
	return n > 0, nil
}

// updateById applies updates to the row id of table, failing with notFound
// if the row is missing.
func updateById(ctx context.Context, db database.IDatabase, m any, table string, id uint64, updates map[string]any, notFound, duplicate *errs.Error) error {
	res := database.Conn(ctx, db).Model(m).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error, notFound, duplicate)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// MySQL reports zero affected rows when nothing changed
	ok, err := exists(ctx, db, table, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound
	}
	return nil
}
