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

// Permission 权限表，code 由 SYSTEM_RESOURCE_ACTION 三段派生
type Permission struct {
	BaseModel
	SystemCode   string `gorm:"column:system_code;size:32;not null;uniqueIndex:uk_permission_triple,priority:1" json:"systemCode"`
	ResourceCode string `gorm:"column:resource_code;size:64;not null;uniqueIndex:uk_permission_triple,priority:2" json:"resourceCode"`
	ActionCode   string `gorm:"column:action_code;size:32;not null;uniqueIndex:uk_permission_triple,priority:3" json:"actionCode"`
	Code         string `gorm:"column:code;size:130;not null;uniqueIndex:uk_permission_code" json:"code"`
	GroupKey     string `gorm:"column:group_key;size:97;not null;index:idx_permission_group" json:"groupKey"` // 仅用于界面分组
	Name         string `gorm:"column:name;size:128;not null" json:"name"`
	Description  string `gorm:"column:description;size:512" json:"description"`
	Enabled      bool   `gorm:"column:enabled;not null" json:"enabled"`
	SortOrder    int    `gorm:"column:sort_order;not null;default:0" json:"sortOrder"`
}

func (Permission) TableName() string {
	return "t_permission"
}
