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
	"testing"
	"time"

	"github.com/go-arcade/iam/internal/engine/model"
	"github.com/go-arcade/iam/internal/engine/repo/testdb"
	"github.com/go-arcade/iam/pkg/database"
	"github.com/go-arcade/iam/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newRepos(t *testing.T) (*Repositories, database.IDatabase) {
	db := testdb.New(t)
	return NewRepositories(db), db
}

func seedUser(t *testing.T, r *Repositories, name string) *model.User {
	u := &model.User{Username: name, PasswordHash: "x", Enabled: true}
	require.NoError(t, r.User.Create(context.Background(), u))
	return u
}

func seedRole(t *testing.T, r *Repositories, code string, enabled bool, sort int) *model.Role {
	role := &model.Role{Code: code, Name: code, Enabled: enabled, SortOrder: sort}
	require.NoError(t, r.Role.Create(context.Background(), role))
	return role
}

func seedPermission(t *testing.T, r *Repositories, system, resource, action string, enabled bool) *model.Permission {
	p := &model.Permission{
		SystemCode:   system,
		ResourceCode: resource,
		ActionCode:   action,
		Code:         model.PermissionCode(system, resource, action),
		GroupKey:     model.GroupKey(system, resource),
		Name:         action,
		Enabled:      enabled,
	}
	require.NoError(t, r.Permission.Create(context.Background(), p))
	return p
}

func TestUserRepo_LoginCounters(t *testing.T) {
	r, _ := newRepos(t)
	ctx := context.Background()
	u := seedUser(t, r, "alice")

	for i := 0; i < 3; i++ {
		require.NoError(t, r.User.RecordLoginFailure(ctx, u.ID))
	}
	got, err := r.User.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, got.LoginFailCount)
	assert.False(t, got.Locked)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, r.User.SetLockState(ctx, u.ID, true, &now))
	require.NoError(t, r.User.RecordLoginSuccess(ctx, u.ID, now))

	got, err = r.User.GetById(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, got.LoginFailCount)
	assert.False(t, got.Locked)
	assert.Nil(t, got.LockedAt)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, now.Equal(got.LastLoginAt.UTC()))
}

func TestUserRepo_NotFound(t *testing.T) {
	r, _ := newRepos(t)
	ctx := context.Background()

	_, err := r.User.GetByUsername(ctx, "ghost")
	assert.True(t, errors.Is(err, errs.ErrUserNotFound))
	_, err = r.User.GetById(ctx, 42)
	assert.True(t, errors.Is(err, errs.ErrUserNotFound))
	assert.True(t, errors.Is(r.User.SetEnabled(ctx, 42, false), errs.ErrUserNotFound))
	assert.True(t, errors.Is(r.User.RecordLoginFailure(ctx, 42), errs.ErrUserNotFound))
	assert.True(t, errors.Is(r.User.Delete(ctx, 42), errs.ErrUserNotFound))
}

func TestUserRepo_SetEnabledUnchanged(t *testing.T) {
	r, _ := newRepos(t)
	ctx := context.Background()
	u := seedUser(t, r, "bob")

	require.NoError(t, r.User.SetEnabled(ctx, u.ID, true))
	require.NoError(t, r.User.SetEnabled(ctx, u.ID, false))
	got, err := r.User.GetById(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)
}

func TestUserRepo_List(t *testing.T) {
	r, _ := newRepos(t)
	ctx := context.Background()
	for _, n := range []string{"u1", "u2", "u3"} {
		seedUser(t, r, n)
	}

	users, total, err := r.User.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, users, 1)
	assert.Equal(t, "u3", users[0].Username)
}

func TestRoleRepo_FindByCodes(t *testing.T) {
	r, _ := newRepos(t)
	ctx := context.Background()
	seedRole(t, r, "ADMIN", true, 0)
	seedRole(t, r, "DISPATCH", true, 1)

	roles, err := r.Role.FindByCodes(ctx, []string{"ADMIN", "NOPE"})
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "ADMIN", roles[0].Code)

	roles, err = r.Role.FindByCodes(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestRoleRepo_UpdateKeepsCode(t *testing.T) {
	r, _ := newRepos(t)
	ctx := context.Background()
	role := seedRole(t, r, "OPS", true, 0)

	require.NoError(t, r.Role.Update(ctx, role.ID, map[string]any{"code": "HACK", "name": "Operations"}))
	got, err := r.Role.GetById(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, "OPS", got.Code)
	assert.Equal(t, "Operations", got.Name)

	assert.True(t, errors.Is(r.Role.Update(ctx, 99, map[string]any{}), errs.ErrRoleNotFound))
	assert.True(t, errors.Is(r.Role.Delete(ctx, 99), errs.ErrRoleNotFound))
}

func TestPermissionRepo_DeleteMissing(t *testing.T) {
	r, _ := newRepos(t)
	ctx := context.Background()
	p := seedPermission(t, r, "DISPATCH", "ORDER", "VIEW", true)

	removed, err := r.Permission.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = r.Permission.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestPermissionRepo_ListByGroup(t *testing.T) {
	r, _ := newRepos(t)
	ctx := context.Background()
	seedPermission(t, r, "DISPATCH", "ORDER", "VIEW", true)
	seedPermission(t, r, "DISPATCH", "ORDER", "EDIT", true)
	seedPermission(t, r, "DISPATCH", "FLEET", "VIEW", true)

	perms, total, err := r.Permission.List(ctx, "DISPATCH_ORDER", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, perms, 2)
}

func TestUserRoleRepo_Links(t *testing.T) {
	r, db := newRepos(t)
	ctx := context.Background()
	u := seedUser(t, r, "carol")
	a := seedRole(t, r, "A", true, 2)
	b := seedRole(t, r, "B", true, 1)
	c := seedRole(t, r, "C", false, 0)

	err := database.Transaction(ctx, db, func(ctx context.Context) error {
		if err := r.UserRole.LockOwner(ctx, u.ID); err != nil {
			return err
		}
		if err := r.UserRole.Link(ctx, u.ID, []uint64{a.ID, b.ID, c.ID}); err != nil {
			return err
		}
		// duplicate links are ignored
		return r.UserRole.Link(ctx, u.ID, []uint64{a.ID})
	})
	require.NoError(t, err)

	ids, err := r.UserRole.ListTargets(ctx, u.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{a.ID, b.ID, c.ID}, ids)

	roles, err := r.UserRole.ListRolesOfUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "B", roles[0].Code)
	assert.Equal(t, "A", roles[1].Code)

	n, err := r.UserRole.CountByRole(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = r.UserRole.Unlink(ctx, u.ID, []uint64{a.ID, 999})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = r.UserRole.UnlinkAll(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	assert.True(t, errors.Is(r.UserRole.LockOwner(ctx, 404), errs.ErrUserNotFound))
}

func TestRolePermissionRepo_Grants(t *testing.T) {
	r, _ := newRepos(t)
	ctx := context.Background()
	role := seedRole(t, r, "DISPATCHER", true, 0)
	view := seedPermission(t, r, "DISPATCH", "ORDER", "VIEW", true)
	edit := seedPermission(t, r, "DISPATCH", "ORDER", "EDIT", true)
	off := seedPermission(t, r, "DISPATCH", "ORDER", "PURGE", false)

	require.NoError(t, r.RolePermission.Link(ctx, role.ID, []uint64{view.ID, edit.ID, off.ID}))

	g, err := r.RolePermission.GetGrant(ctx, role.ID, view.ID)
	require.NoError(t, err)
	assert.True(t, g.Enabled)
	assert.Equal(t, model.GrantSourceAdmin, g.GrantSource)

	past := time.Now().Add(-time.Hour).UTC()
	require.NoError(t, r.RolePermission.UpdateGrant(ctx, role.ID, edit.ID, map[string]any{"effective_to": past}))

	grants, err := r.RolePermission.ListGrantsOfRoles(ctx, []uint64{role.ID})
	require.NoError(t, err)
	require.Len(t, grants, 2)

	effective := map[string]bool{}
	for _, g := range grants {
		effective[g.Code] = g.IsEffectiveAt(time.Now())
	}
	assert.Equal(t, map[string]bool{"DISPATCH_ORDER_VIEW": true, "DISPATCH_ORDER_EDIT": false}, effective)

	_, err = r.RolePermission.GetGrant(ctx, role.ID, 777)
	assert.True(t, errors.Is(err, errs.ErrGrantNotFound))

	n, err := r.RolePermission.CountByPermission(ctx, view.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	assert.True(t, errors.Is(r.RolePermission.LockOwner(ctx, 404), errs.ErrRoleNotFound))
}

func dryRunMySQL(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "iam:iam@tcp(127.0.0.1:3306)/iam?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestForShare(t *testing.T) {
	db := dryRunMySQL(t)
	ctx := context.Background()

	var roles []model.Role
	stmt := forShare(ctx, db.WithContext(ctx)).Where("code IN ?", []string{"DISPATCH"}).Find(&roles).Statement
	assert.NotContains(t, stmt.SQL.String(), "FOR SHARE")

	txCtx := database.Bind(ctx, db.WithContext(ctx))
	stmt = forShare(txCtx, database.Conn(txCtx, nil)).Where("code IN ?", []string{"DISPATCH"}).Find(&roles).Statement
	assert.Contains(t, stmt.SQL.String(), "FOR SHARE")

	sqlite := testdb.New(t).Database()
	liteCtx := database.Bind(ctx, sqlite.Session(&gorm.Session{DryRun: true}))
	stmt = forShare(liteCtx, database.Conn(liteCtx, nil)).Where("code IN ?", []string{"DISPATCH"}).Find(&roles).Statement
	assert.NotContains(t, stmt.SQL.String(), "FOR SHARE")
}

func TestFindByCodes_InTransaction(t *testing.T) {
	r, db := newRepos(t)
	ctx := context.Background()
	seedRole(t, r, "DISPATCH", true, 1)
	seedPermission(t, r, "FMS", "VEHICLE", "READ", true)

	err := database.Transaction(ctx, db, func(ctx context.Context) error {
		roles, err := r.Role.FindByCodes(ctx, []string{"DISPATCH", "GHOST"})
		require.NoError(t, err)
		assert.Len(t, roles, 1)
		perms, err := r.Permission.FindByCodes(ctx, []string{"FMS_VEHICLE_READ"})
		require.NoError(t, err)
		assert.Len(t, perms, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestPermissionRepo_LockForUpdate(t *testing.T) {
	r, db := newRepos(t)
	ctx := context.Background()
	p := seedPermission(t, r, "FMS", "VEHICLE", "READ", true)

	err := database.Transaction(ctx, db, func(ctx context.Context) error {
		require.NoError(t, r.Permission.LockForUpdate(ctx, p.ID))
		return r.Permission.LockForUpdate(ctx, 404)
	})
	assert.True(t, errors.Is(err, errs.ErrPermissionNotFound))
}
