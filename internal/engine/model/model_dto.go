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

type LoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Snapshot is the effective authorization of one user at build time.
// ValidUntil is the next grant window boundary after build time, nil when
// no window of the user's grants is still ahead.
type Snapshot struct {
	RoleCodes       []string   `json:"roleCodes"`
	PermissionCodes []string   `json:"permissionCodes"`
	ValidUntil      *time.Time `json:"validUntil,omitempty"`
}

// Profile is the caller view of a user, never carrying the password hash.
type Profile struct {
	Id                uint64     `json:"id"`
	Username          string     `json:"username"`
	Enabled           bool       `json:"enabled"`
	Locked            bool       `json:"locked"`
	LoginFailCount    int        `json:"loginFailCount"`
	LastLoginAt       *time.Time `json:"lastLoginAt,omitempty"`
	PasswordChangedAt *time.Time `json:"passwordChangedAt,omitempty"`
	RoleCodes         []string   `json:"roleCodes"`
	PermissionCodes   []string   `json:"permissionCodes"`
}

func NewProfile(u *User, s Snapshot) *Profile {
	return &Profile{
		Id:                u.ID,
		Username:          u.Username,
		Enabled:           u.Enabled,
		Locked:            u.Locked,
		LoginFailCount:    u.LoginFailCount,
		LastLoginAt:       u.LastLoginAt,
		PasswordChangedAt: u.PasswordChangedAt,
		RoleCodes:         s.RoleCodes,
		PermissionCodes:   s.PermissionCodes,
	}
}

type TokenResp struct {
	AccessToken      string   `json:"accessToken"`
	TokenType        string   `json:"tokenType"`
	ExpiresInSeconds int64    `json:"expiresInSeconds"`
	Profile          *Profile `json:"profile,omitempty"`
}

// CreateUserReq request for creating user. RoleCodes nil leaves the user
// without roles, same as an empty list.
type CreateUserReq struct {
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Enabled   *bool     `json:"enabled"`
	RoleCodes *[]string `json:"roleCodes"`
}

type SetEnabledReq struct {
	Enabled *bool `json:"enabled"`
}

type ResetPasswordReq struct {
	Password string `json:"password"`
}

// ReplaceCodesReq distinguishes an absent codes field (no-op) from an
// empty list (clear all).
type ReplaceCodesReq struct {
	Codes *[]string `json:"codes"`
}

// CreateRoleReq request for creating role
type CreateRoleReq struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int    `json:"sortOrder"`
	Enabled     *bool  `json:"enabled"`
}

// UpdateRoleReq request for updating role, code is immutable
type UpdateRoleReq struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	SortOrder   *int    `json:"sortOrder,omitempty"`
}

type CreatePermissionReq struct {
	SystemCode   string `json:"systemCode"`
	ResourceCode string `json:"resourceCode"`
	ActionCode   string `json:"actionCode"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	SortOrder    int    `json:"sortOrder"`
	Enabled      *bool  `json:"enabled"`
}

type UpdatePermissionReq struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	SortOrder   *int    `json:"sortOrder,omitempty"`
}

// GrantWindowReq enables or disables one role permission and sets its
// validity window. Nil bounds are open.
type GrantWindowReq struct {
	Enabled       *bool      `json:"enabled"`
	EffectiveFrom *time.Time `json:"effectiveFrom"`
	EffectiveTo   *time.Time `json:"effectiveTo"`
}

// Page is one page of a listing.
type Page[T any] struct {
	List     []T   `json:"list"`
	Total    int64 `json:"total"`
	PageNum  int   `json:"pageNum"`
	PageSize int   `json:"pageSize"`
}

// NormalizePage clamps page parameters to 1..100 items.
func NormalizePage(pageNum, pageSize int) (int, int) {
	if pageNum < 1 {
		pageNum = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return pageNum, pageSize
}
