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
	"time"

	"github.com/go-arcade/iam/internal/engine/model"
	"github.com/go-arcade/iam/internal/engine/repo"
	"github.com/go-arcade/iam/internal/pkg/assoc"
	"github.com/go-arcade/iam/pkg/database"
	"github.com/go-arcade/iam/pkg/errs"
	"github.com/go-arcade/iam/pkg/log"
)

type UserService struct {
	db           database.IDatabase
	userRepo     repo.IUserRepository
	userRoleRepo repo.IUserRoleRepository
	roles        *assoc.Synchronizer[uint64, uint64]
	snapshots    *SnapshotService
	now          func() time.Time
}

func NewUserService(
	db database.IDatabase,
	repos *repo.Repositories,
	roles *assoc.Synchronizer[uint64, uint64],
	snapshots *SnapshotService,
) *UserService {
	return &UserService{
		db:           db,
		userRepo:     repos.User,
		userRoleRepo: repos.UserRole,
		roles:        roles,
		snapshots:    snapshots,
		now:          time.Now,
	}
}

// CreateUser creates an account and, when RoleCodes is present, assigns
// its roles in the same transaction.
func (us *UserService) CreateUser(ctx context.Context, req *model.CreateUserReq) (*model.Profile, error) {
	username := model.NormalizeUsername(req.Username)
	if username == "" {
		return nil, errs.ErrBlankField.WithMsg("username is blank")
	}
	hash, err := getPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Username:     username,
		PasswordHash: hash,
		Enabled:      true,
	}
	if req.Enabled != nil {
		u.Enabled = *req.Enabled
	}

	err = database.Transaction(ctx, us.db, func(ctx context.Context) error {
		taken, err := us.userRepo.ExistsByUsername(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			return errs.ErrDuplicateUsername.WithMsg("username %q already exists", username)
		}
		if err := us.userRepo.Create(ctx, u); err != nil {
			return err
		}
		_, err = us.roles.Replace(ctx, u.ID, req.RoleCodes)
		return err
	})
	if err != nil {
		return nil, err
	}
	us.snapshots.Invalidate(ctx)
	log.WithContext(ctx).Infow("user created", "userId", u.ID, "username", username)
	return us.GetUser(ctx, u.ID)
}

func (us *UserService) GetUser(ctx context.Context, id uint64) (*model.Profile, error) {
	u, err := us.userRepo.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	snap, err := us.snapshots.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.NewProfile(u, snap), nil
}

func (us *UserService) ListUsers(ctx context.Context, pageNum, pageSize int) (*model.Page[model.User], error) {
	pageNum, pageSize = model.NormalizePage(pageNum, pageSize)
	users, total, err := us.userRepo.List(ctx, pageNum, pageSize)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return &model.Page[model.User]{List: users, Total: total, PageNum: pageNum, PageSize: pageSize}, nil
}

func (us *UserService) SetEnabled(ctx context.Context, id uint64, enabled bool) error {
	if err := us.userRepo.SetEnabled(ctx, id, enabled); err != nil {
		return err
	}
	log.WithContext(ctx).Infow("user enabled changed", "userId", id, "enabled", enabled)
	return nil
}

// Lock 管理员锁定账号
func (us *UserService) Lock(ctx context.Context, id uint64) error {
	now := us.now()
	if err := us.userRepo.SetLockState(ctx, id, true, &now); err != nil {
		return err
	}
	log.WithContext(ctx).Infow("user locked", "userId", id)
	return nil
}

// Unlock 解锁并清零失败次数
func (us *UserService) Unlock(ctx context.Context, id uint64) error {
	if err := us.userRepo.SetLockState(ctx, id, false, nil); err != nil {
		return err
	}
	log.WithContext(ctx).Infow("user unlocked", "userId", id)
	return nil
}

func (us *UserService) ResetPassword(ctx context.Context, id uint64, password string) error {
	hash, err := getPassword(password)
	if err != nil {
		return err
	}
	if err := us.userRepo.ChangePassword(ctx, id, hash, us.now()); err != nil {
		return err
	}
	log.WithContext(ctx).Infow("user password reset", "userId", id)
	return nil
}

// ReplaceRoles reconciles the user's roles to codes. A nil codes leaves
// them untouched, an empty list clears them.
func (us *UserService) ReplaceRoles(ctx context.Context, id uint64, codes *[]string) (assoc.Result, error) {
	res, err := us.roles.Replace(ctx, id, codes)
	if err != nil {
		return res, err
	}
	us.snapshots.Invalidate(ctx)
	log.WithContext(ctx).Infow("user roles replaced", "userId", id,
		"added", res.Added, "removed", res.Removed, "kept", res.Kept)
	return res, nil
}

func (us *UserService) AddRole(ctx context.Context, id uint64, code string) (bool, error) {
	added, err := us.roles.AddSingle(ctx, id, code)
	if err != nil {
		return false, err
	}
	if added {
		us.snapshots.Invalidate(ctx)
	}
	return added, nil
}

func (us *UserService) RemoveRole(ctx context.Context, id uint64, code string) (bool, error) {
	removed, err := us.roles.RemoveSingle(ctx, id, code)
	if err != nil {
		return false, err
	}
	if removed {
		us.snapshots.Invalidate(ctx)
	}
	return removed, nil
}

func (us *UserService) ClearRoles(ctx context.Context, id uint64) (int64, error) {
	n, err := us.roles.ClearAll(ctx, id)
	if err != nil {
		return 0, err
	}
	us.snapshots.Invalidate(ctx)
	return n, nil
}

// DeleteUser removes the user and its role links in one transaction.
func (us *UserService) DeleteUser(ctx context.Context, id uint64) error {
	err := database.Transaction(ctx, us.db, func(ctx context.Context) error {
		if err := us.userRepo.LockForUpdate(ctx, id); err != nil {
			return err
		}
		if _, err := us.userRoleRepo.UnlinkAll(ctx, id); err != nil {
			return err
		}
		return us.userRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	us.snapshots.Invalidate(ctx)
	log.WithContext(ctx).Infow("user deleted", "userId", id)
	return nil
}
