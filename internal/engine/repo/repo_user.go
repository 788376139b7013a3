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
	"github.com/go-arcade/iam/pkg/database"
	"github.com/go-arcade/iam/pkg/errs"
	"gorm.io/gorm"
)

type IUserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetById(ctx context.Context, id uint64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, pageNum, pageSize int) ([]model.User, int64, error)
	LockForUpdate(ctx context.Context, id uint64) error
	RecordLoginSuccess(ctx context.Context, id uint64, at time.Time) error
	RecordLoginFailure(ctx context.Context, id uint64) error
	SetLockState(ctx context.Context, id uint64, locked bool, lockedAt *time.Time) error
	SetEnabled(ctx context.Context, id uint64, enabled bool) error
	ChangePassword(ctx context.Context, id uint64, hash string, at time.Time) error
	Delete(ctx context.Context, id uint64) error
}

type UserRepo struct {
	db        database.IDatabase
	userModel *model.User
}

func NewUserRepo(db database.IDatabase) IUserRepository {
	return &UserRepo{
		db:        db,
		userModel: &model.User{},
	}
}

// Create 创建用户，用户名冲突返回 DUPLICATE_USERNAME
func (ur *UserRepo) Create(ctx context.Context, u *model.User) error {
	err := database.Conn(ctx, ur.db).Create(u).Error
	return translate(err, nil, errs.ErrDuplicateUsername.WithMsg("username %q already exists", u.Username))
}

func (ur *UserRepo) GetById(ctx context.Context, id uint64) (*model.User, error) {
	u := &model.User{}
	err := database.Conn(ctx, ur.db).Where("id = ?", id).First(u).Error
	if err != nil {
		return nil, translate(err, errs.ErrUserNotFound, nil)
	}
	return u, nil
}

// GetByUsername reads from the primary so that login sees the latest
// failure counter.
func (ur *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u := &model.User{}
	err := database.WriteDB(database.Conn(ctx, ur.db)).Where("username = ?", username).First(u).Error
	if err != nil {
		return nil, translate(err, errs.ErrUserNotFound, nil)
	}
	return u, nil
}

func (ur *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	n, err := Count(database.Conn(ctx, ur.db).Model(ur.userModel).Where("username = ?", username))
	if err != nil {
		return false, errs.Internal(err)
	}
	return n > 0, nil
}

func (ur *UserRepo) List(ctx context.Context, pageNum, pageSize int) ([]model.User, int64, error) {
	tx := database.Conn(ctx, ur.db).Model(ur.userModel).Session(&gorm.Session{})
	total, err := Count(tx)
	if err != nil {
		return nil, 0, errs.Internal(err)
	}
	var users []model.User
	err = tx.Scopes(Paginate(pageNum, pageSize)).Order("id ASC").Find(&users).Error
	if err != nil {
		return nil, 0, errs.Internal(err)
	}
	return users, total, nil
}

func (ur *UserRepo) LockForUpdate(ctx context.Context, id uint64) error {
	return lockRow(ctx, ur.db, ur.userModel.TableName(), id, errs.ErrUserNotFound)
}

// RecordLoginSuccess 登录成功：清零失败次数并解锁
func (ur *UserRepo) RecordLoginSuccess(ctx context.Context, id uint64, at time.Time) error {
	return ur.update(ctx, id, map[string]any{
		"login_fail_count": 0,
		"last_login_at":    at,
		"locked":           false,
		"locked_at":        nil,
	})
}

// RecordLoginFailure 失败次数原子加一
func (ur *UserRepo) RecordLoginFailure(ctx context.Context, id uint64) error {
	return ur.update(ctx, id, map[string]any{
		"login_fail_count": gorm.Expr("login_fail_count + ?", 1),
	})
}

// SetLockState sets the administrative lock. Unlocking also resets the
// failure counter.
func (ur *UserRepo) SetLockState(ctx context.Context, id uint64, locked bool, lockedAt *time.Time) error {
	updates := map[string]any{
		"locked":    locked,
		"locked_at": lockedAt,
	}
	if !locked {
		updates["locked_at"] = nil
		updates["login_fail_count"] = 0
	}
	return ur.update(ctx, id, updates)
}

func (ur *UserRepo) SetEnabled(ctx context.Context, id uint64, enabled bool) error {
	return ur.update(ctx, id, map[string]any{"enabled": enabled})
}

func (ur *UserRepo) ChangePassword(ctx context.Context, id uint64, hash string, at time.Time) error {
	return ur.update(ctx, id, map[string]any{
		"password_hash":       hash,
		"password_changed_at": at,
	})
}

// Delete removes the user row only, role links are cleared by the caller
// in the same transaction.
func (ur *UserRepo) Delete(ctx context.Context, id uint64) error {
	res := database.Conn(ctx, ur.db).Where("id = ?", id).Delete(ur.userModel)
	if res.Error != nil {
		return errs.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}

func (ur *UserRepo) update(ctx context.Context, id uint64, updates map[string]any) error {
	return updateById(ctx, ur.db, ur.userModel, ur.userModel.TableName(), id, updates, errs.ErrUserNotFound, nil)
}
