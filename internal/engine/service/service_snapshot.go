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
	"fmt"
	"time"

	"github.com/go-arcade/iam/internal/engine/model"
	"github.com/go-arcade/iam/internal/engine/repo"
	"github.com/go-arcade/iam/pkg/cache"
	"github.com/go-arcade/iam/pkg/log"
)

const (
	snapshotEpochKey = "iam:snapshot:epoch"
	snapshotKeyFmt   = "iam:snapshot:%s:%d"
)

// SnapshotService computes the roles and permissions effective for a user.
// Cached snapshots are keyed by an authorization epoch that every
// administrative write bumps, so a change is visible on the next read.
type SnapshotService struct {
	userRoleRepo repo.IUserRoleRepository
	grantRepo    repo.IRolePermissionRepository
	cache        cache.ICache
	query        *cache.CachedQuery[model.Snapshot]
	now          func() time.Time
}

func NewSnapshotService(repos *repo.Repositories, c cache.ICache, ttl time.Duration) *SnapshotService {
	s := &SnapshotService{
		userRoleRepo: repos.UserRole,
		grantRepo:    repos.RolePermission,
		cache:        c,
		now:          time.Now,
	}
	s.query = cache.NewCachedQuery[model.Snapshot](
		c,
		s.cacheKey,
		func(ctx context.Context, params ...any) (model.Snapshot, error) {
			return s.Build(ctx, params[0].(uint64))
		},
		cache.WithTTL[model.Snapshot](ttl),
		cache.WithTTLFunc(func(snap model.Snapshot) (time.Duration, bool) {
			if snap.ValidUntil == nil {
				return 0, false
			}
			return snap.ValidUntil.Sub(s.now()), true
		}),
		cache.WithLogPrefix[model.Snapshot]("[Snapshot]"),
	)
	return s
}

// Get returns the snapshot of userId, served from cache when enabled.
func (s *SnapshotService) Get(ctx context.Context, userId uint64) (model.Snapshot, error) {
	return s.query.Get(ctx, userId)
}

// Build 两次查询：用户角色，然后这些角色的权限
func (s *SnapshotService) Build(ctx context.Context, userId uint64) (model.Snapshot, error) {
	snap := model.Snapshot{RoleCodes: []string{}, PermissionCodes: []string{}}

	roles, err := s.userRoleRepo.ListRolesOfUser(ctx, userId)
	if err != nil {
		return snap, err
	}
	if len(roles) == 0 {
		return snap, nil
	}

	seenRole := make(map[string]struct{}, len(roles))
	roleIds := make([]uint64, 0, len(roles))
	for _, r := range roles {
		if _, ok := seenRole[r.Code]; ok {
			continue
		}
		seenRole[r.Code] = struct{}{}
		snap.RoleCodes = append(snap.RoleCodes, r.Code)
		roleIds = append(roleIds, r.ID)
	}

	grants, err := s.grantRepo.ListGrantsOfRoles(ctx, roleIds)
	if err != nil {
		return snap, err
	}
	now := s.now()
	seenPerm := make(map[string]struct{}, len(grants))
	for _, g := range grants {
		if g.Enabled {
			snap.ValidUntil = earliestAfter(now, snap.ValidUntil, g.EffectiveFrom, g.EffectiveTo)
		}
		if !g.IsEffectiveAt(now) {
			continue
		}
		if _, ok := seenPerm[g.Code]; ok {
			continue
		}
		seenPerm[g.Code] = struct{}{}
		snap.PermissionCodes = append(snap.PermissionCodes, g.Code)
	}
	return snap, nil
}

// earliestAfter returns the earliest of cur and bounds that lies after now.
func earliestAfter(now time.Time, cur *time.Time, bounds ...*time.Time) *time.Time {
	for _, b := range bounds {
		if b == nil || !b.After(now) {
			continue
		}
		if cur == nil || b.Before(*cur) {
			cur = b
		}
	}
	return cur
}

// Invalidate bumps the epoch, orphaning every cached snapshot.
func (s *SnapshotService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, snapshotEpochKey).Err(); err != nil {
		log.WithContext(ctx).Warnw("failed to bump snapshot epoch", "error", err)
	}
}

func (s *SnapshotService) cacheKey(ctx context.Context, params ...any) (string, error) {
	if len(params) != 1 {
		return "", fmt.Errorf("snapshot key wants 1 param, got %d", len(params))
	}
	epoch, err := s.cache.Get(ctx, snapshotEpochKey).Result()
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		epoch = "0"
	case err != nil:
		return "", err
	}
	return fmt.Sprintf(snapshotKeyFmt, epoch, params[0]), nil
}
