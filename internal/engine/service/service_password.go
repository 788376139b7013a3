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
	"errors"
	"strings"

	"github.com/go-arcade/iam/pkg/errs"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// bcryptCost is lowered in tests.
var bcryptCost = bcrypt.DefaultCost

// dummyHash is compared against when the username does not resolve, so an
// unknown account costs the same as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("iam-dummy-password"), bcrypt.DefaultCost)

func getPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errs.ErrBlankField.WithMsg("password is blank")
	}
	if len(password) < minPasswordLen {
		return "", errs.ErrInvalidParam.WithMsg("password must be at least %d characters", minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", errs.ErrInvalidParam.WithMsg("password must be at most 72 bytes")
		}
		return "", errs.Internal(err)
	}
	return string(hash), nil
}

func comparePassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
