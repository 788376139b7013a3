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
	"github.com/go-arcade/iam/pkg/cache"
	"github.com/go-arcade/iam/pkg/database"
	"github.com/go-arcade/iam/pkg/http/jwt"
	"github.com/go-arcade/iam/pkg/metrics"
)

// Services 统一管理所有 service
type Services struct {
	Auth       *AuthService
	User       *UserService
	Role       *RoleService
	Permission *PermissionService
	Snapshot   *SnapshotService
}

// NewServices 初始化所有 service
func NewServices(
	db database.IDatabase,
	c cache.ICache,
	repos *repo.Repositories,
	issuer *jwt.Issuer,
	m *metrics.AuthMetrics,
	snapshotTTL time.Duration,
) *Services {
	snapshots := NewSnapshotService(repos, c, snapshotTTL)
	userRoles := NewUserRoleSync(db, repos, m)
	rolePerms := NewRolePermissionSync(db, repos, m)

	return &Services{
		Auth:       NewAuthService(repos.User, snapshots, issuer, m),
		User:       NewUserService(db, repos, userRoles, snapshots),
		Role:       NewRoleService(db, repos, rolePerms, snapshots),
		Permission: NewPermissionService(db, repos, snapshots),
		Snapshot:   snapshots,
	}
}

func txFunc(db database.IDatabase) assoc.TxFunc {
	return func(ctx context.Context, fn func(ctx context.Context) error) error {
		return database.Transaction(ctx, db, fn)
	}
}

// NewUserRoleSync reconciles a user's roles by role code.
func NewUserRoleSync(db database.IDatabase, repos *repo.Repositories, m *metrics.AuthMetrics) *assoc.Synchronizer[uint64, uint64] {
	return assoc.New(assoc.Config[uint64, uint64]{
		Name:  "user_role",
		Links: repos.UserRole,
		Resolve: func(ctx context.Context, codes []string) ([]assoc.Ref[uint64], error) {
			roles, err := repos.Role.FindByCodes(ctx, codes)
			if err != nil {
				return nil, err
			}
			refs := make([]assoc.Ref[uint64], 0, len(roles))
			for _, r := range roles {
				refs = append(refs, assoc.Ref[uint64]{Code: r.Code, Key: r.ID, Enabled: r.Enabled})
			}
			return refs, nil
		},
		Normalize: model.NormalizeCode,
		Tx:        txFunc(db),
		Observe:   m.SyncChanged,
	})
}

// NewRolePermissionSync reconciles a role's permissions by permission code.
func NewRolePermissionSync(db database.IDatabase, repos *repo.Repositories, m *metrics.AuthMetrics) *assoc.Synchronizer[uint64, uint64] {
	return assoc.New(assoc.Config[uint64, uint64]{
		Name:  "role_permission",
		Links: repos.RolePermission,
		Resolve: func(ctx context.Context, codes []string) ([]assoc.Ref[uint64], error) {
			perms, err := repos.Permission.FindByCodes(ctx, codes)
			if err != nil {
				return nil, err
			}
			refs := make([]assoc.Ref[uint64], 0, len(perms))
			for _, p := range perms {
				refs = append(refs, assoc.Ref[uint64]{Code: p.Code, Key: p.ID, Enabled: p.Enabled})
			}
			return refs, nil
		},
		Normalize: model.NormalizeCode,
		Tx:        txFunc(db),
		Observe:   m.SyncChanged,
	})
}
