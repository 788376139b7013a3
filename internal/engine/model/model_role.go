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

// Role 角色表，code 创建后不可修改
type Role struct {
	BaseModel
	Code        string `gorm:"column:code;size:64;not null;uniqueIndex:uk_role_code" json:"code"`
	Name        string `gorm:"column:name;size:128;not null" json:"name"`
	Description string `gorm:"column:description;size:512" json:"description"`
	Enabled     bool   `gorm:"column:enabled;not null" json:"enabled"`
	SortOrder   int    `gorm:"column:sort_order;not null;default:0" json:"sortOrder"`
}

func (Role) TableName() string {
	return "t_role"
}
