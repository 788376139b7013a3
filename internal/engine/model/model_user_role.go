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

package model

import "time"

// UserRole 用户角色关联，按主键引用
type UserRole struct {
	BaseModel
	UserId uint64 `gorm:"column:user_id;not null;uniqueIndex:uk_user_role,priority:1" json:"userId"`
	RoleId uint64 `gorm:"column:role_id;not null;uniqueIndex:uk_user_role,priority:2;index:idx_user_role_role" json:"roleId"`
}

func (UserRole) TableName() string {
	return "t_user_role"
}

// RolePermission 角色权限关联，可软撤销并带有效期
type RolePermission struct {
	BaseModel
	RoleId        uint64     `gorm:"column:role_id;not null;uniqueIndex:uk_role_permission,priority:1" json:"roleId"`
	PermissionId  uint64     `gorm:"column:permission_id;not null;uniqueIndex:uk_role_permission,priority:2;index:idx_role_permission_perm" json:"permissionId"`
	Enabled       bool       `gorm:"column:enabled;not null" json:"enabled"`
	EffectiveFrom *time.Time `gorm:"column:effective_from" json:"effectiveFrom,omitempty"`
	EffectiveTo   *time.Time `gorm:"column:effective_to" json:"effectiveTo,omitempty"`
	GrantSource   string     `gorm:"column:grant_source;size:32" json:"grantSource"`
}

func (RolePermission) TableName() string {
	return "t_role_permission"
}

// GrantSourceAdmin marks grants made through the administrative API.
const GrantSourceAdmin = "ADMIN"

// IsEffectiveAt reports whether the grant is enabled and t lies in
// [EffectiveFrom, EffectiveTo). A nil bound is open.
func (rp RolePermission) IsEffectiveAt(t time.Time) bool {
	return rp.Enabled && windowContains(rp.EffectiveFrom, rp.EffectiveTo, t)
}

func windowContains(from, to *time.Time, t time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}
