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

// User 用户表，凭据与安全状态。locked 与 enabled 相互独立，
// loginFailCount 在登录成功后归零
type User struct {
	BaseModel
	Username          string     `gorm:"column:username;size:64;not null;uniqueIndex:uk_user_username" json:"username"`
	PasswordHash      string     `gorm:"column:password_hash;size:128;not null" json:"-"`
	Enabled           bool       `gorm:"column:enabled;not null" json:"enabled"`
	Locked            bool       `gorm:"column:locked;not null" json:"locked"`
	LoginFailCount    int        `gorm:"column:login_fail_count;not null;default:0" json:"loginFailCount"`
	LastLoginAt       *time.Time `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	LockedAt          *time.Time `gorm:"column:locked_at" json:"lockedAt,omitempty"`
	PasswordChangedAt *time.Time `gorm:"column:password_changed_at" json:"passwordChangedAt,omitempty"`
}

func (User) TableName() string {
	return "t_user"
}
