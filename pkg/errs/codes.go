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

package errs

var (
	ErrEmptyInput    = New(KindValidation, "EMPTY_INPUT", "username and password are required")
	ErrInvalidParam  = New(KindValidation, "INVALID_PARAMETER", "invalid request parameters")
	ErrBlankField    = New(KindValidation, "BLANK_FIELD", "required field is blank")
	ErrDisabledCode  = New(KindValidation, "DISABLED_CODE", "code is disabled and cannot be assigned")
	ErrInvalidWindow = New(KindValidation, "INVALID_WINDOW", "effectiveFrom must be before effectiveTo")

	ErrUserNotFound       = New(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrRoleNotFound       = New(KindNotFound, "ROLE_NOT_FOUND", "role not found")
	ErrPermissionNotFound = New(KindNotFound, "PERMISSION_NOT_FOUND", "permission not found")
	ErrGrantNotFound      = New(KindNotFound, "GRANT_NOT_FOUND", "role permission not found")

	ErrDuplicateUsername = New(KindDuplicate, "DUPLICATE_USERNAME", "username already exists")
	ErrDuplicateCode     = New(KindDuplicate, "DUPLICATE_CODE", "code already exists")

	ErrReferenced = New(KindReferenced, "REFERENCED", "entity is still referenced by associations")

	// ErrBadCredentials covers both unknown username and wrong password.
	ErrBadCredentials  = New(KindBadCredentials, "BAD_CREDENTIALS", "invalid username or password")
	ErrAccountDisabled = New(KindDisabled, "ACCOUNT_DISABLED", "account is disabled")
	ErrAccountLocked   = New(KindLocked, "ACCOUNT_LOCKED", "account is locked")
	ErrUnauthorized    = New(KindUnauthorized, "UNAUTHORIZED", "authentication required")
	ErrForbidden       = New(KindForbidden, "FORBIDDEN", "permission denied")
	ErrTokenInvalid    = New(KindTokenInvalid, "TOKEN_INVALID", "token is invalid or expired")

	ErrUnknownCode = New(KindUnknownCode, "UNKNOWN_CODE", "unknown code")
	ErrConcurrent  = New(KindConcurrent, "CONCURRENT_MODIFICATION", "concurrent modification, retry the request")

	ErrInternal = New(KindInternal, "INTERNAL", "internal error, please contact the administrator")
)
